package conformance

// Severity rules:
// - BLOCK for columns the table is required to have
// - WARN for columns present with the wrong type
// - INFO for columns nobody declared

const (
	SeverityInfo  = "INFO"
	SeverityWarn  = "WARN"
	SeverityBlock = "BLOCK"
)

// Issue kinds.
const (
	KindColumnMissing    = "column_missing"
	KindTypeMismatch     = "type_mismatch"
	KindColumnUnexpected = "column_unexpected"
	KindTableMissing     = "table_missing"
)

func SeverityForKind(kind string) string {
	switch kind {
	case KindColumnMissing, KindTableMissing:
		return SeverityBlock
	case KindTypeMismatch:
		return SeverityWarn
	default:
		return SeverityInfo
	}
}

// MessageForKind returns a concise message for the given issue kind.
func MessageForKind(kind, expected, actual string) string {
	switch kind {
	case KindColumnMissing:
		return "expected column is missing"
	case KindTypeMismatch:
		return "type mismatch: expected " + expected + ", got " + actual
	case KindColumnUnexpected:
		return "column present but not declared (" + actual + ")"
	case KindTableMissing:
		return "table not found in catalog"
	default:
		return ""
	}
}
