package spec

import (
	"fmt"
	"strings"
)

// NotFoundError indicates the spec file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("spec file not found: %s", e.Path)
}

// ParseError wraps a YAML decoding failure.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError collects every problem found in a decoded spec so the
// author sees them all at once instead of one per run.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid spec: " + strings.Join(e.Problems, "; ")
}
