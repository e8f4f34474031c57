package services

import (
	"io"

	"dslf/internal/repository"
	"dslf/internal/storage"
)

// CheckReport - result of a syntax check.
type CheckReport struct {
	// File: checked path, empty for a reader.
	File string
	// Errors: every configuration error in line order.
	Errors []*repository.ConfigError
	// Err: failure to read the file at all, e.g. it does not exist.
	Err error
	// Rules: number of rules loaded, zero when any error was found.
	Rules int
}

// OK reports whether the configuration would load.
func (r CheckReport) OK() bool {
	return r.Err == nil && len(r.Errors) == 0
}

// Checker diagnoses configuration files without network access.
type Checker struct{}

// NewChecker - constructor for Checker.
func NewChecker() *Checker {
	return &Checker{}
}

// Check parses r and reports every configuration error.
func (c *Checker) Check(r io.Reader) CheckReport {
	entries, err := repository.Parse(r)
	return newCheckReport("", len(entries), err)
}

// CheckFile parses the file at path and reports every configuration error.
func (c *Checker) CheckFile(path string) CheckReport {
	entries, err := storage.ReadEntries(path)
	return newCheckReport(path, len(entries), err)
}

func newCheckReport(file string, rules int, err error) CheckReport {
	report := CheckReport{File: file, Rules: rules}
	if err == nil {
		return report
	}
	report.Rules = 0
	report.Errors = repository.Errors(err)
	if len(report.Errors) == 0 {
		report.Err = err
	}
	return report
}
