package constraint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/alexanderjulianmartinez/schema-watch/internal/users"
)

// Store is the subset of users.Store the probes need.
type Store interface {
	Insert(ctx context.Context, u users.NewUser) (int64, error)
	InsertReturning(ctx context.Context, u users.NewUser) (users.User, error)
	GetByEmail(ctx context.Context, email string) (users.User, error)
	Count(ctx context.Context) (int64, error)
	Truncate(ctx context.Context) error
}

// ErrUnexpectedOutcome marks a probe whose statement behaved differently
// from what the table contract requires.
var ErrUnexpectedOutcome = errors.New("unexpected outcome")

type ProbeResult struct {
	Name     string
	Passed   bool
	Err      error
	Duration time.Duration
}

type probe struct {
	name string
	run  func(ctx context.Context, p *Prober) error
}

// Prober runs the insertion probes one at a time and truncates the table
// after each of them.
type Prober struct {
	store Store
	log   logger.Logger
	now   func() time.Time

	config struct {
		timeout time.Duration
	}
}

type Opt func(*Prober)

func WithNow(now func() time.Time) Opt {
	return func(p *Prober) { p.now = now }
}

func New(conf *config.Config, log logger.Logger, store Store, opts ...Opt) *Prober {
	p := &Prober{
		store: store,
		log:   log.Child("probe"),
		now:   time.Now,
	}
	p.config.timeout = conf.GetDurationVar(30, time.Second, "Probe.timeout")
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Names lists the probes in execution order.
func Names() []string {
	return lo.Map(probes, func(pr probe, _ int) string { return pr.name })
}

// Run executes every probe in order. A failing probe does not stop the run.
// The table is emptied first; if that fails, every result is marked failed.
func (p *Prober) Run(ctx context.Context) []ProbeResult {
	if err := p.cleanup(ctx); err != nil {
		p.log.Errorn("Could not empty users table before inserting", obskit.Error(err))
		return lo.Map(probes, func(pr probe, _ int) ProbeResult {
			return ProbeResult{Name: pr.name, Err: err}
		})
	}
	results := make([]ProbeResult, 0, len(probes))
	for _, pr := range probes {
		results = append(results, p.runOne(ctx, pr))
	}
	return results
}

// RunProbe executes a single probe by name.
func (p *Prober) RunProbe(ctx context.Context, name string) (ProbeResult, error) {
	pr, ok := lo.Find(probes, func(pr probe) bool { return pr.name == name })
	if !ok {
		return ProbeResult{}, fmt.Errorf("unknown probe %q", name)
	}
	if err := p.cleanup(ctx); err != nil {
		p.log.Errorn("Could not empty users table before inserting", obskit.Error(err))
		return ProbeResult{Name: pr.name, Err: err}, nil
	}
	return p.runOne(ctx, pr), nil
}

func (p *Prober) runOne(ctx context.Context, pr probe) ProbeResult {
	start := p.now()

	probeCtx, cancel := context.WithTimeout(ctx, p.config.timeout)
	defer cancel()

	err := pr.run(probeCtx, p)
	if cleanupErr := p.cleanup(ctx); cleanupErr != nil {
		err = errors.Join(err, cleanupErr)
	}

	res := ProbeResult{
		Name:     pr.name,
		Passed:   err == nil,
		Err:      err,
		Duration: p.now().Sub(start),
	}
	if err != nil {
		p.log.Warnn("Probe failed", logger.NewStringField("probe", pr.name), obskit.Error(err))
	} else {
		p.log.Infon("Probe passed",
			logger.NewStringField("probe", pr.name),
			logger.NewDurationField("duration", res.Duration),
		)
	}
	return res
}

// cleanup leaves the table empty for the next probe.
func (p *Prober) cleanup(ctx context.Context) error {
	if err := p.store.Truncate(ctx); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	count, err := p.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	if count != 0 {
		return fmt.Errorf("cleanup: %w: %d rows left after truncate", ErrUnexpectedOutcome, count)
	}
	return nil
}

// ValidUser is the reference row every probe starts from.
func ValidUser() users.NewUser {
	return users.NewUser{
		Email:     lo.ToPtr("user@example.com"),
		Username:  lo.ToPtr("user"),
		Birthdate: lo.ToPtr("2024-01-02"),
		City:      lo.ToPtr("La Plata"),
		Password:  lo.ToPtr("root"),
	}
}

var probes = []probe{
	{name: "valid_insert", run: probeValidInsert},
	{name: "invalid_email", run: probeInvalidEmail},
	{name: "invalid_birthdate", run: probeInvalidBirthdate},
	{name: "missing_city", run: probeMissingCity},
	{name: "missing_password", run: probeMissingPassword},
	{name: "enabled_defaults_false", run: probeEnabledDefault},
	{name: "updated_at_auto_populated", run: probeUpdatedAtDefault},
}

func probeValidInsert(ctx context.Context, p *Prober) error {
	u := ValidUser()
	affected, err := p.store.Insert(ctx, u)
	if err != nil {
		return err
	}
	if affected != 1 {
		return fmt.Errorf("%w: expected 1 affected row, got %d", ErrUnexpectedOutcome, affected)
	}

	stored, err := p.store.GetByEmail(ctx, *u.Email)
	if err != nil {
		return err
	}
	if stored.Email != *u.Email {
		return fmt.Errorf("%w: read back email %q, inserted %q", ErrUnexpectedOutcome, stored.Email, *u.Email)
	}
	if stored.CreatedAt.Year() != p.now().Year() {
		return fmt.Errorf("%w: created_at %s is not in the current year", ErrUnexpectedOutcome, stored.CreatedAt)
	}
	return nil
}

func probeInvalidEmail(ctx context.Context, p *Prober) error {
	u := ValidUser()
	u.Email = lo.ToPtr("user")
	u.Password = lo.ToPtr("root123")
	return expectViolation(ctx, p, u, func(v *Violation) bool {
		return v.Kind == KindCheck && v.Constraint == "users_email_check"
	}, "check constraint users_email_check")
}

func probeInvalidBirthdate(ctx context.Context, p *Prober) error {
	u := ValidUser()
	u.Birthdate = lo.ToPtr("invalid_date")
	return expectViolation(ctx, p, u, func(v *Violation) bool {
		return v.Kind == KindInvalidDatetime && strings.Contains(v.Message, "invalid input syntax for type date")
	}, "invalid input syntax for type date")
}

func probeMissingCity(ctx context.Context, p *Prober) error {
	u := ValidUser()
	u.City = nil
	return expectViolation(ctx, p, u, func(v *Violation) bool {
		return v.Kind == KindNotNull && v.Column == "city"
	}, `not-null violation on column "city"`)
}

func probeMissingPassword(ctx context.Context, p *Prober) error {
	u := ValidUser()
	u.Password = nil
	return expectViolation(ctx, p, u, func(v *Violation) bool {
		return v.Kind == KindNotNull && v.Column == "password"
	}, `not-null violation on column "password"`)
}

func probeEnabledDefault(ctx context.Context, p *Prober) error {
	u := ValidUser()
	u.Email = lo.ToPtr("enabled@demo.com")
	if _, err := p.store.Insert(ctx, u); err != nil {
		return err
	}
	stored, err := p.store.GetByEmail(ctx, *u.Email)
	if err != nil {
		return err
	}
	if stored.Enabled {
		return fmt.Errorf("%w: enabled defaulted to true", ErrUnexpectedOutcome)
	}
	return nil
}

func probeUpdatedAtDefault(ctx context.Context, p *Prober) error {
	u := ValidUser()
	u.Email = lo.ToPtr("auto@demo.com")
	stored, err := p.store.InsertReturning(ctx, u)
	if err != nil {
		return err
	}
	if stored.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: updated_at was not populated", ErrUnexpectedOutcome)
	}
	return nil
}

func expectViolation(ctx context.Context, p *Prober, u users.NewUser, match func(*Violation) bool, want string) error {
	_, err := p.store.Insert(ctx, u)
	if err == nil {
		return fmt.Errorf("%w: insert succeeded, expected %s", ErrUnexpectedOutcome, want)
	}
	v, ok := Classify(err)
	if !ok {
		return fmt.Errorf("expected %s: %w", want, err)
	}
	if !match(v) {
		return fmt.Errorf("%w: expected %s, got %v", ErrUnexpectedOutcome, want, v)
	}
	return nil
}
