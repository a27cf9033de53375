// Package apperr defines the error kinds shared by the intake and plan
// domains. Validation and not-found errors are always handled locally and
// surfaced as field-level messages; persistence errors wrap a collaborator
// failure and are the only kind eligible for user-initiated retry.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-keyed messages for a rejected input. It is
// produced before any collaborator call and never crosses the wire.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidation creates a ValidationError with a single field message.
func NewValidation(field, msg string) *ValidationError {
	v := &ValidationError{Fields: map[string][]string{}}
	v.Add(field, msg)
	return v
}

// Add appends a message for a field.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// HasErrors reports whether any field message was recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// NotFoundError identifies a referenced entity that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (n *NotFoundError) Error() string {
	if n.ID == "" {
		return fmt.Sprintf("%s not found", n.Resource)
	}
	return fmt.Sprintf("%s %s not found", n.Resource, n.ID)
}

// PersistenceError wraps a failed collaborator call. The entity being saved
// is left in its pre-save state; the caller may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (p *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", p.Op, p.Err)
}

func (p *PersistenceError) Unwrap() error { return p.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
