package conformance

import (
	"github.com/samber/lo"

	"github.com/alexanderjulianmartinez/schema-watch/internal/expect"
	"github.com/alexanderjulianmartinez/schema-watch/internal/source"
	"github.com/alexanderjulianmartinez/schema-watch/pkg/types"
)

type Issue struct {
	Table    string
	Column   string
	Kind     string
	Severity string
	Expected string
	Actual   string
	Message  string
}

type Report struct {
	Table    string
	Presence []PresenceResult
	Types    []TypeResult
	Issues   []Issue
}

// Validate checks actual against every expectation in the registry and
// records one issue per failing field.
func Validate(registry *expect.Registry, actual source.ActualSchema) *Report {
	table := registry.Table()
	fields := registry.Fields()
	report := &Report{
		Table:    table,
		Presence: CheckFieldPresence(fields, actual),
		Types:    CheckFieldType(fields, actual),
	}

	if len(actual) == 0 {
		report.addIssue(table, "", KindTableMissing, "", "")
	}

	for _, p := range report.Presence {
		if !p.Present {
			f, _ := registry.Lookup(p.Name)
			report.addIssue(table, p.Name, KindColumnMissing, f.Type, "")
		}
	}
	for _, tr := range report.Types {
		if tr.ActualType != nil && !tr.Matches {
			report.addIssue(table, tr.Name, KindTypeMismatch, tr.ExpectedType, *tr.ActualType)
		}
	}

	declared := lo.SliceToMap(fields, func(f expect.FieldExpectation) (string, struct{}) {
		return f.Name, struct{}{}
	})
	for _, col := range actual.Columns() {
		if _, ok := declared[col]; !ok {
			report.addIssue(table, col, KindColumnUnexpected, "", actual[col])
		}
	}
	return report
}

func (r *Report) addIssue(table, column, kind, expected, actual string) {
	r.Issues = append(r.Issues, Issue{
		Table:    table,
		Column:   column,
		Kind:     kind,
		Severity: SeverityForKind(kind),
		Expected: expected,
		Actual:   actual,
		Message:  MessageForKind(kind, expected, actual),
	})
}

// Failed reports whether any issue is worse than INFO.
func (r *Report) Failed() bool {
	return lo.SomeBy(r.Issues, func(iss Issue) bool { return iss.Severity != SeverityInfo })
}

func (r *Report) IssuesOfKind(kind string) []Issue {
	return lo.Filter(r.Issues, func(iss Issue, _ int) bool { return iss.Kind == kind })
}

func (r *Report) Summary() types.CheckResult {
	status := types.StatusPass
	if r.Failed() {
		status = types.StatusFail
	}
	return types.CheckResult{
		Table:            r.Table,
		ExpectedColumns:  len(r.Presence),
		MissingColumns:   lo.Map(r.IssuesOfKind(KindColumnMissing), issueColumn),
		MismatchedTypes:  lo.Map(r.IssuesOfKind(KindTypeMismatch), issueColumn),
		UndeclaredColumn: lo.Map(r.IssuesOfKind(KindColumnUnexpected), issueColumn),
		SchemaDrift:      len(r.Issues) > 0,
		Status:           status,
	}
}

func issueColumn(iss Issue, _ int) string { return iss.Column }
