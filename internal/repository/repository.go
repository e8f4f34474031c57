// Package repository reads and writes the CSV redirect configuration.
//
// A configuration is a sequence of "path,target,status" rows. Blank lines and lines starting
// with "#" are ignored, and an optional "url,target,status" header row is skipped. Parsing never
// stops at the first problem: every error found in a file is reported in one pass.
package repository

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// HealthPath is reserved for liveness probes and cannot be configured as a route.
const HealthPath = "/health"

// Sentinel errors matched with errors.Is against a *ConfigError or a combined parse error.
var (
	// ErrMalformedRow - a row is not valid CSV or does not have exactly three fields.
	ErrMalformedRow = errors.New("malformed row")
	// ErrInvalidPath - the path is empty or does not start with "/".
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidTarget - the target is not an absolute URL with scheme and host.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidStatus - the status is not 301, 302, permanent or temporary.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrDuplicatePath - the path was already defined on an earlier row.
	ErrDuplicatePath = errors.New("duplicate path")
	// ErrReservedPath - the path is reserved by the service.
	ErrReservedPath = errors.New("reserved path")
)

// ErrorKind distinguishes configuration errors.
type ErrorKind int

// Kinds of ConfigError.
const (
	MalformedRow ErrorKind = iota + 1
	InvalidPath
	InvalidTarget
	InvalidStatus
	DuplicatePath
	ReservedPath
)

func (k ErrorKind) sentinel() error {
	switch k {
	case MalformedRow:
		return ErrMalformedRow
	case InvalidPath:
		return ErrInvalidPath
	case InvalidTarget:
		return ErrInvalidTarget
	case InvalidStatus:
		return ErrInvalidStatus
	case DuplicatePath:
		return ErrDuplicatePath
	case ReservedPath:
		return ErrReservedPath
	default:
		return nil
	}
}

// String returns the kind as used in messages, e.g. "invalid target".
func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ConfigError describes one problem in a configuration file.
type ConfigError struct {
	// Value: offending value; the raw row for MalformedRow, the path for DuplicatePath.
	Value string
	// Detail: optional extra context, e.g. the field count of a malformed row.
	Detail string
	// Kind: error category.
	Kind ErrorKind
	// Line: 1-based line number; for DuplicatePath the line of the repeat.
	Line int
	// FirstLine: line of the first definition, DuplicatePath only.
	FirstLine int
}

func (e *ConfigError) Error() string {
	switch {
	case e.Kind == DuplicatePath:
		return fmt.Sprintf("line %d: %s %q (first defined on line %d)", e.Line, e.Kind, e.Value, e.FirstLine)
	case e.Detail != "":
		return fmt.Sprintf("line %d: %s %q: %s", e.Line, e.Kind, e.Value, e.Detail)
	default:
		return fmt.Sprintf("line %d: %s %q", e.Line, e.Kind, e.Value)
	}
}

// Unwrap exposes the per-kind sentinel.
func (e *ConfigError) Unwrap() error {
	return e.Kind.sentinel()
}

// Errors flattens an error returned by Parse into its configuration errors ordered by line.
// Errors that are not *ConfigError are dropped.
func Errors(err error) []*ConfigError {
	var out []*ConfigError
	for _, e := range multierr.Errors(err) {
		var ce *ConfigError
		if errors.As(e, &ce) {
			out = append(out, ce)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Line < out[j].Line
	})
	return out
}
