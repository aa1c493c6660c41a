package conformance

import (
	"github.com/alexanderjulianmartinez/schema-watch/internal/expect"
	"github.com/alexanderjulianmartinez/schema-watch/internal/source"
)

type PresenceResult struct {
	Name    string
	Present bool
}

type TypeResult struct {
	Name         string
	ExpectedType string
	// ActualType is nil when the column is absent.
	ActualType *string
	Matches    bool
}

// CheckFieldPresence reports, for every expectation and in order, whether the
// column exists. It never stops at the first failure.
func CheckFieldPresence(expectations []expect.FieldExpectation, actual source.ActualSchema) []PresenceResult {
	results := make([]PresenceResult, 0, len(expectations))
	for _, f := range expectations {
		_, ok := actual[f.Name]
		results = append(results, PresenceResult{Name: f.Name, Present: ok})
	}
	return results
}

// CheckFieldType compares each expected type against the catalog type by
// exact string equality. No case-folding or normalization is applied.
func CheckFieldType(expectations []expect.FieldExpectation, actual source.ActualSchema) []TypeResult {
	results := make([]TypeResult, 0, len(expectations))
	for _, f := range expectations {
		res := TypeResult{Name: f.Name, ExpectedType: f.Type}
		if got, ok := actual[f.Name]; ok {
			res.ActualType = &got
			res.Matches = got == f.Type
		}
		results = append(results, res)
	}
	return results
}
