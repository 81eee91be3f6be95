// Package envvar provides validated environment variable pairs that can be
// handed to execve without truncation.
package envvar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContainsNUL indicates a string cannot be passed to execve because it
// carries an embedded NUL byte.
var ErrContainsNUL = errors.New("string contains NUL byte")

// ValidationError reports which part of an entry failed validation.
type ValidationError struct {
	Field string // "key", "value", "arg" or "path"
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks that s can be passed through the exec family of calls.
// field names the role of s in the returned error.
func Validate(field, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return &ValidationError{Field: field, Value: s, Err: ErrContainsNUL}
	}
	return nil
}

// EnvVar is a key/value pair known to be safe for execve.
type EnvVar struct {
	key   string
	value string
}

// New validates key and value and returns the pair.
func New(key, value string) (EnvVar, error) {
	if err := Validate("key", key); err != nil {
		return EnvVar{}, err
	}
	if err := Validate("value", value); err != nil {
		return EnvVar{}, err
	}
	return EnvVar{key: key, value: value}, nil
}

// Parse splits a "key=value" entry at the first '='. An entry without '='
// yields an empty value.
func Parse(entry string) (EnvVar, error) {
	key, value, _ := strings.Cut(entry, "=")
	return New(key, value)
}

// FromEnviron converts entries in os.Environ form.
func FromEnviron(environ []string) ([]EnvVar, error) {
	vars := make([]EnvVar, 0, len(environ))
	for _, entry := range environ {
		v, err := Parse(entry)
		if err != nil {
			return nil, fmt.Errorf("inherited environment: %w", err)
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// Key returns the variable name.
func (e EnvVar) Key() string { return e.key }

// Value returns the variable value.
func (e EnvVar) Value() string { return e.value }

// String formats the pair as "key=value", the form execve expects.
func (e EnvVar) String() string {
	return e.key + "=" + e.value
}
