package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseURLEnv is consulted when source.dsn is left empty.
const DatabaseURLEnv = "DATABASE_URL"

// envRef matches the ${VAR} form only, so a bare $ in a password survives.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

const (
	SourcePostgres = "postgres"
	SourceMySQL    = "mysql"
)

type Config struct {
	Source SourceConfig  `yaml:"source"`
	Tables []TableConfig `yaml:"tables"`
}

type SourceConfig struct {
	Type   string `yaml:"type"`
	DSN    string `yaml:"dsn"`
	Schema string `yaml:"schema"`
}

type TableConfig struct {
	Name   string        `yaml:"name"`
	Fields []FieldConfig `yaml:"fields"`
}

type FieldConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	_, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// A missing .env is fine; the environment may already carry DATABASE_URL.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Source.DSN = expandEnvRefs(cfg.Source.DSN)
	if cfg.Source.DSN == "" {
		cfg.Source.DSN = os.Getenv(DatabaseURLEnv)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func expandEnvRefs(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}

// Table returns the table config with the given name.
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, table := range c.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return TableConfig{}, false
}

func (c *Config) validate() error {
	switch c.Source.Type {
	case SourcePostgres:
	case SourceMySQL:
		if c.Source.Schema == "" {
			return errors.New("source.schema is required for mysql")
		}
	default:
		return errors.New("source.type must be postgres or mysql")
	}
	if c.Source.DSN == "" {
		return fmt.Errorf("source.dsn is required (or set %s)", DatabaseURLEnv)
	}
	if len(c.Tables) == 0 {
		return errors.New("at least one table is required")
	}
	seen := map[string]struct{}{}
	for _, table := range c.Tables {
		if table.Name == "" {
			return errors.New("table.name is required")
		}
		if _, ok := seen[table.Name]; ok {
			return fmt.Errorf("table %s declared twice", table.Name)
		}
		seen[table.Name] = struct{}{}
		// The built-in baselines use postgres type names.
		if c.Source.Type == SourceMySQL && len(table.Fields) == 0 {
			return fmt.Errorf("table %s: mysql sources must declare fields", table.Name)
		}
		for _, field := range table.Fields {
			if field.Name == "" || field.Type == "" {
				return fmt.Errorf("table %s: every field needs a name and a type", table.Name)
			}
		}
	}
	return nil
}
