package conformance

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/alexanderjulianmartinez/schema-watch/internal/expect"
	"github.com/alexanderjulianmartinez/schema-watch/internal/source"
)

// Checker fetches a table's live schema and validates it against a registry.
type Checker struct {
	inspector source.Inspector
	log       logger.Logger

	config struct {
		reportUndeclared bool
	}
}

func New(conf *config.Config, log logger.Logger, inspector source.Inspector) *Checker {
	c := &Checker{
		inspector: inspector,
		log:       log.Child("conformance"),
	}
	c.config.reportUndeclared = conf.GetBoolVar(true, "Conformance.reportUndeclaredColumns")
	return c
}

func (c *Checker) Check(ctx context.Context, registry *expect.Registry) (*Report, error) {
	table := registry.Table()
	actual, err := c.inspector.FetchSchema(ctx, table)
	if err != nil {
		c.log.Errorn("Fetching actual schema",
			logger.NewStringField("table", table),
			logger.NewStringField("source", c.inspector.Name()),
			obskit.Error(err),
		)
		return nil, fmt.Errorf("fetch actual schema for %s: %w", table, err)
	}

	report := Validate(registry, actual)
	if !c.config.reportUndeclared {
		report.Issues = lo.Reject(report.Issues, func(iss Issue, _ int) bool { return iss.Kind == KindColumnUnexpected })
	}

	fields := []logger.Field{
		logger.NewStringField("table", table),
		logger.NewIntField("expected", int64(registry.Len())),
		logger.NewIntField("actual", int64(len(actual))),
		logger.NewIntField("issues", int64(len(report.Issues))),
	}
	if report.Failed() {
		c.log.Warnn("Schema does not conform", fields...)
	} else {
		c.log.Infon("Schema conforms", fields...)
	}
	return report, nil
}

