package types

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

type CheckResult struct {
	Table            string   `json:"table"`
	ExpectedColumns  int      `json:"expectedColumns"`
	MissingColumns   []string `json:"missingColumns,omitempty"`
	MismatchedTypes  []string `json:"mismatchedTypes,omitempty"`
	UndeclaredColumn []string `json:"undeclaredColumns,omitempty"`
	SchemaDrift      bool     `json:"schemaDrift"`
	Status           string   `json:"status"`
}
