package record

import (
	"errors"
	"fmt"
)

// FieldBase collects errors that are not tied to a specific record field,
// such as storage write failures.
const FieldBase = "base"

// Messages attached under FieldBase when a driver write fails. The failure
// itself is logged; callers only see these as data.
const (
	InsertFailedMessage = "insert failed"
	UpdateFailedMessage = "update failed"
)

// Errors maps a field name to the validation messages recorded against it.
// A nil or empty map means the record is valid.
type Errors map[string][]string

// Add appends a message for the given field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Empty reports whether no errors were recorded. Safe on a nil map.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// ErrFilterRequired is returned by DeleteAll when no filter is supplied.
// Deleting a whole collection requires an explicit empty filter.
var ErrFilterRequired = errors.New("record: delete-all requires a filter (pass an empty filter to remove every document)")

// ErrUnsupportedSort is returned by Page for sorts with more than one
// non-identity field. The boundary predicate only disambiguates a single
// primary sort field plus the identity tie-break; composite sorts beyond
// that are rejected instead of paginated incorrectly.
var ErrUnsupportedSort = errors.New("record: keyset pagination supports at most one sort field besides the identity field")

// InvalidIDError reports an id that could not be coerced to the store's
// native key type. Unlike storage write failures it is a hard failure and
// propagates to the caller.
type InvalidIDError struct {
	Value any
	Cause error
}

func (e *InvalidIDError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("record: invalid id %v: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("record: invalid id %v (type %T)", e.Value, e.Value)
}

func (e *InvalidIDError) Unwrap() error {
	return e.Cause
}
