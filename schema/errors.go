// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package schema

import (
	"errors"
	"fmt"
	"strings"
)

// LoadErrorKind is the stage at which loading a file failed
type LoadErrorKind int

// Load error kinds
const (
	// Reading means the file could not be read
	Reading LoadErrorKind = iota
	// Parsing means the file is not valid YAML or does not decode into the expected types
	Parsing
	// Validating means the file decoded but breaks the schema
	Validating
)

// String implements fmt.Stringer
func (k LoadErrorKind) String() string {
	switch k {
	case Reading:
		return "reading"
	case Parsing:
		return "parsing"
	case Validating:
		return "validating"
	default:
		return fmt.Sprintf("LoadErrorKind(%d)", int(k))
	}
}

// LoadError is returned by every Load function
type LoadError struct {
	Kind LoadErrorKind
	// Messages holds a single message for Reading and Parsing, one per violation for Validating
	Messages []string

	err error
}

// NewReadingError wraps err as a Reading failure
func NewReadingError(err error) *LoadError {
	return &LoadError{Kind: Reading, Messages: []string{err.Error()}, err: err}
}

// NewParsingError wraps err as a Parsing failure
func NewParsingError(err error) *LoadError {
	return &LoadError{Kind: Parsing, Messages: []string{err.Error()}, err: err}
}

// NewValidatingError wraps err as a Validating failure
//
// Errors joined with errors.Join are split into one message each.
func NewValidatingError(err error) *LoadError {
	var msgs []string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
	} else {
		msgs = []string{err.Error()}
	}
	return &LoadError{Kind: Validating, Messages: msgs, err: err}
}

// Error joins the messages with ", "
func (e *LoadError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// Unwrap returns the underlying error
func (e *LoadError) Unwrap() error {
	return e.err
}

// IsLoadError reports whether err is a *LoadError of the given kind
func IsLoadError(err error, kind LoadErrorKind) bool {
	var lErr *LoadError
	return errors.As(err, &lErr) && lErr.Kind == kind
}
