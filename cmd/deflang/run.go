package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/deflang/go-deflang/engine"
	"github.com/deflang/go-deflang/eval"
	"github.com/deflang/go-deflang/runstore"
	"github.com/deflang/go-deflang/trace"
)

// runEnvelope is the machine-readable form of a run result.
type runEnvelope struct {
	RunID      string `json:"run_id"`
	Outcome    string `json:"outcome"`
	Value      string `json:"value,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

func run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	maxArgs := fs.Int("max-args", 0, "Maximum parameters per function (0 uses the default of 1)")
	exact := fs.Bool("exact", false, "Evaluate with 256-bit overflow-checked arithmetic")
	traceFile := fs.String("trace", "", "Write the call trace as JSONL to file")
	storeFile := fs.String("store", "", "Record the run in a SQLite store at file")
	outputJSON := fs.Bool("json", false, "Output the result as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: deflang run <program.def|-> [options]

Evaluate a program and print the value of MAIN.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Exit codes:
  0  evaluated
  1  usage or I/O error
  2  parse failed
  3  diverged
  4  evaluation failed

Examples:
  # Evaluate a program file
  deflang run program.def

  # Read the program from stdin
  echo 'DEF MAIN { 1+2*3 } ;' | deflang run -

  # Exact arithmetic with a call trace
  deflang run program.def --exact --trace trace.jsonl

  # Record the run for later inspection
  deflang run program.def --store runs.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("program file required")
	}

	source, err := readSource(fs.Arg(0))
	if err != nil {
		return err
	}

	opts := &engine.Options{MaxArguments: *maxArgs, Exact: *exact}

	var collector *trace.Collector
	if *traceFile != "" {
		collector = trace.NewCollector()
		opts.Collector = collector
	}

	var store *runstore.SQLiteStore
	if *storeFile != "" {
		store, err = runstore.NewSQLiteStore(*storeFile)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		opts.Store = store
	}

	res := engine.Run(source, opts)

	if store != nil {
		if err := store.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}

	if collector != nil {
		f, err := os.Create(*traceFile)
		if err != nil {
			return fmt.Errorf("create trace file: %w", err)
		}
		if err := trace.WriteJSONL(f, collector.Trace(res.RunID)); err != nil {
			f.Close()
			return fmt.Errorf("write trace: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close trace file: %w", err)
		}
	}

	if *outputJSON {
		env := runEnvelope{
			RunID:      res.RunID,
			Outcome:    res.Outcome.String(),
			Diagnostic: res.Diagnostic,
			DurationMs: res.Duration.Milliseconds(),
		}
		if res.Outcome == engine.OutcomeEvaluated {
			env.Value = eval.Format(res.Value)
		}
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	} else {
		switch res.Outcome {
		case engine.OutcomeEvaluated:
			fmt.Println(eval.Format(res.Value))
		case engine.OutcomeDiverged:
			fmt.Println("diverged")
			fmt.Fprintln(os.Stderr, res.Diagnostic)
		default:
			fmt.Fprintln(os.Stderr, res.Diagnostic)
		}
	}

	switch res.Outcome {
	case engine.OutcomeParseFailed:
		os.Exit(2)
	case engine.OutcomeDiverged:
		os.Exit(3)
	case engine.OutcomeEvalFailed:
		os.Exit(4)
	}

	return nil
}
