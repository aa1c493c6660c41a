// Package constraint turns database rejections into typed violations and
// runs the insertion probes that prove the users table enforces its rules.
package constraint

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type Kind string

const (
	KindCheck           Kind = "check"
	KindNotNull         Kind = "not_null"
	KindUnique          Kind = "unique"
	KindInvalidDatetime Kind = "invalid_datetime"
	KindInvalidText     Kind = "invalid_text"
)

var kindByCode = map[pq.ErrorCode]Kind{
	"23514": KindCheck,
	"23502": KindNotNull,
	"23505": KindUnique,
	"22007": KindInvalidDatetime,
	"22008": KindInvalidDatetime,
	"22P02": KindInvalidText,
}

// Violation is a row rejected by a rule the database enforces.
type Violation struct {
	Kind       Kind
	Code       string
	Constraint string
	Column     string
	Message    string
	Err        error
}

func (v *Violation) Error() string {
	switch {
	case v.Constraint != "":
		return fmt.Sprintf("%s violation on constraint %q: %s", v.Kind, v.Constraint, v.Message)
	case v.Column != "":
		return fmt.Sprintf("%s violation on column %q: %s", v.Kind, v.Column, v.Message)
	default:
		return fmt.Sprintf("%s violation: %s", v.Kind, v.Message)
	}
}

func (v *Violation) Unwrap() error { return v.Err }

// Classify reports whether err is a constraint violation and, if so, which.
func Classify(err error) (*Violation, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil, false
	}
	kind, ok := kindByCode[pqErr.Code]
	if !ok {
		return nil, false
	}
	return &Violation{
		Kind:       kind,
		Code:       string(pqErr.Code),
		Constraint: pqErr.Constraint,
		Column:     pqErr.Column,
		Message:    pqErr.Message,
		Err:        err,
	}, true
}
