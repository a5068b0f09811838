package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound signals that a city or point of interest does not exist.
// Handlers map it to 404; everything else coming out of a service is a
// store failure and maps to 500.
var ErrNotFound = errors.New("resource not found")

// ErrUnsupportedPatchOp signals a patch operation kind other than replace.
var ErrUnsupportedPatchOp = errors.New("unsupported patch operation")

// FieldViolation names a single field-level rule violation.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found for a candidate, not just
// the first one.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// PatchError signals a malformed patch document (bad path, read-only field,
// unsupported operation). The whole batch is rejected, nothing is applied.
type PatchError struct {
	Reason string
	Err    error
}

func (e *PatchError) Error() string {
	return "invalid patch document: " + e.Reason
}

func (e *PatchError) Unwrap() error {
	return e.Err
}
