package services

import (
	"sort"
	"strings"
)

// ValidationError carries message keys per input field plus an optional
// form-level key. Handlers localize the keys before rendering.
type ValidationError struct {
	Fields map[string][]string
	Form   string
}

func (e *ValidationError) Error() string {
	if e.Form != "" {
		return "validation failed: " + e.Form
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// Add appends a message key to field.
func (e *ValidationError) Add(field, key string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], key)
}

// Has reports whether field already carries an error.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Err returns e if anything was recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 && e.Form == "" {
		return nil
	}
	return e
}

func fieldError(field, key string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, key)
	return v
}
