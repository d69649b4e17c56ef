// Package engine drives the whole pipeline for one program run: parse,
// check, evaluate, and classify into a single discriminated outcome,
// with optional tracing, caching, and run persistence around it.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/deflang/go-deflang/cache"
	"github.com/deflang/go-deflang/eval"
	"github.com/deflang/go-deflang/parser"
	"github.com/deflang/go-deflang/runstore"
	"github.com/deflang/go-deflang/trace"
	"github.com/deflang/go-deflang/validation"
)

// Outcome classifies what a run produced. Evaluation is attempted only
// after a fully successful parse, so the outcomes are disjoint.
type Outcome int

const (
	// OutcomeEvaluated means the program evaluated to a value.
	OutcomeEvaluated Outcome = iota
	// OutcomeParseFailed means lexing, parsing, or a whole-program
	// check rejected the source.
	OutcomeParseFailed
	// OutcomeDiverged means the recursion guard stopped evaluation.
	OutcomeDiverged
	// OutcomeEvalFailed means evaluation failed for any other reason.
	OutcomeEvalFailed
)

// String returns the snake_case outcome name used in run records and
// CLI output.
func (o Outcome) String() string {
	switch o {
	case OutcomeEvaluated:
		return "evaluated"
	case OutcomeParseFailed:
		return "parse_failed"
	case OutcomeDiverged:
		return "diverged"
	case OutcomeEvalFailed:
		return "eval_failed"
	}
	return "unknown"
}

// Result is the discriminated outcome of one run. Value is set only
// for OutcomeEvaluated; Err and Diagnostic are set for the other three.
type Result struct {
	RunID      string
	Outcome    Outcome
	Value      eval.Value
	Diagnostic string
	Err        error
	Duration   time.Duration
}

// Options configures a run. The zero value parses with the default
// argument limit and evaluates in machine arithmetic with no tracing
// and no persistence.
type Options struct {
	// MaxArguments caps call argument counts; zero means the parser
	// default.
	MaxArguments int

	// Exact evaluates in 256-bit arithmetic with overflow detection
	// instead of wrapping machine integers.
	Exact bool

	// Collector receives trace events when non-nil.
	Collector *trace.Collector

	// Store persists a Record for every run when non-nil, whatever
	// the outcome.
	Store runstore.Store

	// Cache memoizes parsed programs when non-nil.
	Cache *cache.ProgramCache

	// NewID generates run IDs. Defaults to random UUIDs.
	NewID func() string

	// Logger receives run summaries at debug level and store failures
	// at error level. Defaults to slog.Default().
	Logger *slog.Logger
}

// Run parses and evaluates source, classifying the result into one of
// the four outcomes. The Result always carries a run ID and duration.
func Run(source string, opts *Options) *Result {
	if opts == nil {
		opts = &Options{}
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := &Result{RunID: newID()}
	start := time.Now()

	prog, err := parseSource(source, opts)
	if err != nil {
		res.Outcome = OutcomeParseFailed
		res.Err = err
		res.Diagnostic = err.Error()
	} else {
		evalOpts := &eval.Options{Exact: opts.Exact}
		if opts.Collector != nil {
			evalOpts.Tracer = opts.Collector
		}

		value, err := eval.Run(prog, evalOpts)
		var recursion *eval.RecursionError
		switch {
		case err == nil:
			res.Outcome = OutcomeEvaluated
			res.Value = value
		case errors.As(err, &recursion):
			res.Outcome = OutcomeDiverged
			res.Err = err
			res.Diagnostic = err.Error()
		default:
			res.Outcome = OutcomeEvalFailed
			res.Err = err
			res.Diagnostic = err.Error()
		}
	}
	res.Duration = time.Since(start)

	if opts.Store != nil {
		persist(opts.Store, source, res, logger)
	}

	logger.Debug("run complete",
		"run_id", res.RunID,
		"outcome", res.Outcome.String(),
		"duration", res.Duration,
	)
	return res
}

// Check parses source and returns the full validation report instead
// of the first fatal error. Lex and syntax failures, which leave no
// program to validate, come back as a single parse-category issue.
func Check(source string, opts *Options) *validation.ValidationResult {
	if opts == nil {
		opts = &Options{}
	}
	prog, err := parser.ParseDefinitions(source, parserConfig(opts))
	if err != nil {
		return validation.ParseFailure(err)
	}
	return validation.NewValidator(prog).Validate()
}

func parserConfig(opts *Options) *parser.Config {
	cfg := parser.DefaultConfig()
	if opts.MaxArguments > 0 {
		cfg.MaxArguments = opts.MaxArguments
	}
	return cfg
}

func parseSource(source string, opts *Options) (*parser.Program, error) {
	cfg := parserConfig(opts)
	if opts.Cache != nil {
		return opts.Cache.GetOrCompute(source, cfg.MaxArguments, func() (*parser.Program, error) {
			return parser.Parse(source, cfg)
		})
	}
	return parser.Parse(source, cfg)
}

// persist records the run. A storage failure is logged and never masks
// the evaluation result.
func persist(store runstore.Store, source string, res *Result, logger *slog.Logger) {
	rec := &runstore.Record{
		ID:         res.RunID,
		Source:     source,
		Outcome:    res.Outcome.String(),
		Value:      eval.Format(res.Value),
		Diagnostic: res.Diagnostic,
		DurationMs: res.Duration.Milliseconds(),
	}
	if err := store.Save(context.Background(), rec); err != nil {
		logger.Error("failed to persist run", "run_id", res.RunID, "error", err)
	}
}
