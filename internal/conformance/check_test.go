package conformance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderjulianmartinez/schema-watch/internal/expect"
	"github.com/alexanderjulianmartinez/schema-watch/internal/source"
)

func TestCheckFieldPresence_DoesNotShortCircuit(t *testing.T) {
	expectations := []expect.FieldExpectation{
		{Name: "a", Type: "integer"},
		{Name: "b", Type: "text"},
		{Name: "c", Type: "date"},
	}
	actual := source.ActualSchema{"c": "date"}

	require.Equal(t, []PresenceResult{
		{Name: "a", Present: false},
		{Name: "b", Present: false},
		{Name: "c", Present: true},
	}, CheckFieldPresence(expectations, actual))
}

func TestCheckFieldType(t *testing.T) {
	expectations := []expect.FieldExpectation{
		{Name: "email", Type: "character varying"},
		{Name: "birthdate", Type: "date"},
		{Name: "enabled", Type: "boolean"},
	}
	actual := source.ActualSchema{
		"email":     "character varying",
		"birthdate": "timestamp without time zone",
	}

	results := CheckFieldType(expectations, actual)
	require.Len(t, results, 3)

	require.True(t, results[0].Matches)
	require.Equal(t, "character varying", *results[0].ActualType)

	require.False(t, results[1].Matches)
	require.Equal(t, "date", results[1].ExpectedType)
	require.Equal(t, "timestamp without time zone", *results[1].ActualType)

	require.False(t, results[2].Matches)
	require.Nil(t, results[2].ActualType)
}

func TestCheckFieldType_NoNormalization(t *testing.T) {
	expectations := []expect.FieldExpectation{{Name: "name", Type: "character varying"}}

	for _, reported := range []string{"varchar", "Character Varying", "character varying "} {
		results := CheckFieldType(expectations, source.ActualSchema{"name": reported})
		require.False(t, results[0].Matches, "reported type %q must not match", reported)
	}
}

func TestSeverityForKind(t *testing.T) {
	require.Equal(t, SeverityBlock, SeverityForKind(KindColumnMissing))
	require.Equal(t, SeverityBlock, SeverityForKind(KindTableMissing))
	require.Equal(t, SeverityWarn, SeverityForKind(KindTypeMismatch))
	require.Equal(t, SeverityInfo, SeverityForKind(KindColumnUnexpected))
	require.Equal(t, SeverityInfo, SeverityForKind("something_else"))
	require.Empty(t, MessageForKind("something_else", "", ""))
}
