package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitconfig "github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/alexanderjulianmartinez/schema-watch/internal/config"
	"github.com/alexanderjulianmartinez/schema-watch/internal/conformance"
	"github.com/alexanderjulianmartinez/schema-watch/internal/constraint"
	"github.com/alexanderjulianmartinez/schema-watch/internal/expect"
	"github.com/alexanderjulianmartinez/schema-watch/internal/migrations"
	"github.com/alexanderjulianmartinez/schema-watch/internal/report"
	"github.com/alexanderjulianmartinez/schema-watch/internal/source"
	"github.com/alexanderjulianmartinez/schema-watch/internal/source/mysql"
	"github.com/alexanderjulianmartinez/schema-watch/internal/source/postgres"
	"github.com/alexanderjulianmartinez/schema-watch/internal/users"
)

// errChecksFailed means the run completed but found problems.
var errChecksFailed = errors.New("checks failed")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf := kitconfig.New(kitconfig.WithEnvPrefix("SCHEMAWATCH"))
	log := logger.NewFactory(conf).NewLogger().Child("schemawatch")

	if err := run(ctx, conf, log, os.Stdout, os.Args); err != nil {
		if !errors.Is(err, errChecksFailed) {
			log.Errorn("schemawatch failed", obskit.Error(err))
		}
		fmt.Fprintf(os.Stderr, "schemawatch error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, conf *kitconfig.Config, log logger.Logger, out io.Writer, args []string) error {
	if len(args) < 2 {
		printUsage(out)
		return nil
	}

	switch args[1] {
	case "check":
		return runCheck(ctx, conf, log, out, args[2:])
	case "probe":
		return runProbe(ctx, conf, log, out, args[2:])
	case "migrate":
		return runMigrate(log, args[2:])
	case "help", "--help", "-h":
		printUsage(out)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func loadConfig(name string, args []string, extra func(*flag.FlagSet)) (*config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config.yaml")
	if extra != nil {
		extra(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath == "" {
		return nil, fmt.Errorf("missing required flag: --config")
	}
	return config.LoadConfig(*configPath)
}

func runCheck(ctx context.Context, conf *kitconfig.Config, log logger.Logger, out io.Writer, args []string) error {
	var only string
	cfg, err := loadConfig("check", args, func(fs *flag.FlagSet) {
		fs.StringVar(&only, "table", "", "Check a single table from the config")
	})
	if err != nil {
		return err
	}

	tables := cfg.Tables
	if only != "" {
		table, ok := cfg.Table(only)
		if !ok {
			return fmt.Errorf("table %s is not declared in the config", only)
		}
		tables = []config.TableConfig{table}
	}

	inspector, err := openInspector(ctx, conf, log, cfg.Source)
	if err != nil {
		return err
	}
	defer func() { _ = inspector.Close() }()

	checker := conformance.New(conf, log, inspector)

	var failed bool
	for _, table := range tables {
		registry, err := expect.FromConfig(table)
		if err != nil {
			return err
		}
		rep, err := checker.Check(ctx, registry)
		if err != nil {
			return err
		}
		report.Conformance(out, rep)
		failed = failed || rep.Failed()
	}
	if failed {
		return errChecksFailed
	}
	return nil
}

func runProbe(ctx context.Context, conf *kitconfig.Config, log logger.Logger, out io.Writer, args []string) error {
	var only string
	cfg, err := loadConfig("probe", args, func(fs *flag.FlagSet) {
		fs.StringVar(&only, "probe", "", "Run a single probe by name")
	})
	if err != nil {
		return err
	}
	if cfg.Source.Type != config.SourcePostgres {
		return fmt.Errorf("insertion probes require a postgres source, got %s", cfg.Source.Type)
	}

	inspector, err := postgres.Open(ctx, cfg.Source.DSN,
		postgres.WithTimeout(connectTimeout(conf)),
		postgres.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer func() { _ = inspector.Close() }()

	prober := constraint.New(conf, log, users.NewStore(inspector.DB()))

	var results []constraint.ProbeResult
	if only != "" {
		res, err := prober.RunProbe(ctx, only)
		if err != nil {
			return err
		}
		results = []constraint.ProbeResult{res}
	} else {
		results = prober.Run(ctx)
	}
	report.Probes(out, results)

	for _, res := range results {
		if !res.Passed {
			return errChecksFailed
		}
	}
	return nil
}

func runMigrate(log logger.Logger, args []string) error {
	var down bool
	cfg, err := loadConfig("migrate", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&down, "down", false, "Revert the bootstrap migration instead of applying it")
	})
	if err != nil {
		return err
	}
	if cfg.Source.Type != config.SourcePostgres {
		return fmt.Errorf("migrations require a postgres source, got %s", cfg.Source.Type)
	}
	if down {
		return migrations.Down(cfg.Source.DSN, log)
	}
	return migrations.Up(cfg.Source.DSN, log)
}

func openInspector(ctx context.Context, conf *kitconfig.Config, log logger.Logger, src config.SourceConfig) (source.Inspector, error) {
	timeout := connectTimeout(conf)
	switch src.Type {
	case config.SourcePostgres:
		i, err := postgres.Open(ctx, src.DSN,
			postgres.WithSchema(src.Schema),
			postgres.WithTimeout(timeout),
			postgres.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return i, nil
	case config.SourceMySQL:
		i, err := mysql.NewInspector(ctx, src.DSN, src.Schema, timeout, log)
		if err != nil {
			return nil, err
		}
		return i, nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", src.Type)
	}
}

func connectTimeout(conf *kitconfig.Config) time.Duration {
	return conf.GetDurationVar(5, time.Second, "queryTimeout")
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `SchemaWatch - table schema conformance tool

Usage:
  schemawatch check   --config <path> [--table <name>]
  schemawatch probe   --config <path> [--probe <name>]
  schemawatch migrate --config <path> [--down]

Commands:
  check     Compare live column types against the declared schema
  probe     Verify insertion constraints on the users table
  migrate   Apply the bootstrap users table migration
  help      Show this help message
`)
}
