package apperror

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNothingDeleted is returned when a delete request matched no rows.
var ErrNothingDeleted = errors.New("nothing deleted")

// FieldErrors collects validation messages keyed by input field.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Has reports whether the field already carries a message.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Err returns nil when no messages were collected, so callers can `return errs.Err()`.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(f))
	total := 0
	for field, msgs := range f {
		fields = append(fields, field)
		total += len(msgs)
	}
	sort.Strings(fields)
	first := f[fields[0]][0]
	switch rest := total - 1; {
	case rest == 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	case rest > 1:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	default:
		return first
	}
}

// NotFoundError marks a lookup that matched nothing.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// StorageError wraps a failure reported by the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("storage: %v", e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err unless it is nil or already a StorageError.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// AsFieldErrors extracts field level validation messages from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
