// Package validation provides structural analysis for parsed programs.
// Unlike the parser's whole-program checks, which stop at the first
// failure, the validator collects every finding so tooling can report
// all of them at once.
package validation

import (
	"errors"
	"fmt"

	"github.com/deflang/go-deflang/lexer"
	"github.com/deflang/go-deflang/parser"
)

// ValidationResult contains the result of validation
type ValidationResult struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
	Info     []Issue `json:"info,omitempty"`
	Summary  Summary `json:"summary"`
}

// Issue represents a validation issue
type Issue struct {
	Severity   string   `json:"severity"` // "error", "warning", "info"
	Category   string   `json:"category"` // "parse", "entry", "call", "function", "parameter", "recursion", "reachability"
	Message    string   `json:"message"`
	Location   []string `json:"location,omitempty"` // Affected functions or source positions
	Suggestion string   `json:"suggestion,omitempty"`
}

// Summary provides an overview of validation
type Summary struct {
	Functions int  `json:"functions"`
	CallSites int  `json:"call_sites"`
	Errors    int  `json:"errors"`
	Warnings  int  `json:"warnings"`
	Entry     bool `json:"entry"`
}

// Validator performs validation checks
type Validator struct {
	prog   *parser.Program
	result *ValidationResult
}

// NewValidator creates a validator for a parsed program
func NewValidator(prog *parser.Program) *Validator {
	return &Validator{
		prog: prog,
		result: &ValidationResult{
			Valid: true,
			Summary: Summary{
				Functions: len(prog.Definitions()),
				CallSites: len(prog.CallSites()),
			},
		},
	}
}

// Validate runs all validation checks. The error findings match the
// parser's whole-program checks; warnings and info go beyond them.
func (v *Validator) Validate() *ValidationResult {
	v.checkEntry()
	v.checkCallSites()
	v.checkDuplicateDefinitions()
	v.checkDuplicateParams()
	v.checkUnusedFunctions()
	v.checkCallCycles()
	v.checkReachability()

	// Set overall validity
	v.result.Valid = len(v.result.Errors) == 0
	v.result.Summary.Errors = len(v.result.Errors)
	v.result.Summary.Warnings = len(v.result.Warnings)
	_, v.result.Summary.Entry = v.prog.Entry()

	return v.result
}

// AddError adds an error issue
func (v *Validator) AddError(category, message string, location []string, suggestion string) {
	v.result.Errors = append(v.result.Errors, Issue{
		Severity:   "error",
		Category:   category,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// AddWarning adds a warning issue
func (v *Validator) AddWarning(category, message string, location []string, suggestion string) {
	v.result.Warnings = append(v.result.Warnings, Issue{
		Severity:   "warning",
		Category:   category,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// AddInfo adds an info issue
func (v *Validator) AddInfo(category, message string, location []string) {
	v.result.Info = append(v.result.Info, Issue{
		Severity: "info",
		Category: category,
		Message:  message,
		Location: location,
	})
}

// ParseFailure wraps a lexer or parser error as a validation result,
// so tooling can report unparseable programs through the same shape.
func ParseFailure(err error) *ValidationResult {
	issue := Issue{
		Severity: "error",
		Category: "parse",
		Message:  err.Error(),
	}

	var lexErr *lexer.LexError
	var parseErr *parser.ParseError
	switch {
	case errors.As(err, &lexErr):
		issue.Location = []string{fmt.Sprintf("line %d col %d", lexErr.Line, lexErr.Col)}
	case errors.As(err, &parseErr):
		if parseErr.Line > 0 {
			issue.Location = []string{fmt.Sprintf("line %d col %d", parseErr.Line, parseErr.Col)}
		}
	}

	return &ValidationResult{
		Errors:  []Issue{issue},
		Summary: Summary{Errors: 1},
	}
}
