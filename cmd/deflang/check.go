package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/deflang/go-deflang/engine"
	"github.com/deflang/go-deflang/validation"
)

func check(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	maxArgs := fs.Int("max-args", 0, "Maximum parameters per function (0 uses the default of 1)")
	outputJSON := fs.Bool("json", false, "Output the report as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: deflang check <program.def|-> [options]

Validate a program and report structural issues.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Checks performed:
  - Grammar (the program must parse)
  - Entry function (MAIN must be defined)
  - Call integrity (every call names a defined function with matching arity)
  - Duplicate definitions and parameters (the last one wins)
  - Unused functions (defined but never called)
  - Recursion (call cycles that cannot terminate)
  - Reachability (functions MAIN can never reach)

Examples:
  # Basic validation
  deflang check program.def

  # Output as JSON
  deflang check program.def --json
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

	result := engine.Check(source, &engine.Options{MaxArguments: *maxArgs})

	if *outputJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printCheckReport(result)
	}

	// Exit with error code if validation failed
	if !result.Valid {
		os.Exit(1)
	}

	return nil
}

func printCheckReport(result *validation.ValidationResult) {
	fmt.Println("=== Program Validation ===")

	fmt.Printf("Program: %d functions, %d call sites\n",
		result.Summary.Functions,
		result.Summary.CallSites)

	if result.Summary.Entry {
		fmt.Println("Entry: ✓ MAIN defined")
	} else {
		fmt.Println("Entry: ✗ MAIN missing")
	}
	fmt.Println()

	if len(result.Errors) > 0 {
		fmt.Printf("Errors (%d):\n", len(result.Errors))
		for _, issue := range result.Errors {
			printIssue("✗", issue)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("Warnings (%d):\n", len(result.Warnings))
		for _, issue := range result.Warnings {
			printIssue("⚠", issue)
		}
	}

	if len(result.Info) > 0 {
		fmt.Printf("Info (%d):\n", len(result.Info))
		for _, issue := range result.Info {
			printIssue("ℹ", issue)
		}
	}

	fmt.Println("───────────────────────────────────")
	if result.Valid {
		fmt.Println("✓ Validation PASSED")
	} else {
		fmt.Println("✗ Validation FAILED")
		fmt.Printf("  %d error(s) must be fixed\n", len(result.Errors))
	}
}

func printIssue(mark string, issue validation.Issue) {
	fmt.Printf("  %s [%s] %s\n", mark, issue.Category, issue.Message)
	if len(issue.Location) > 0 {
		fmt.Printf("    Location: %v\n", issue.Location)
	}
	if issue.Suggestion != "" {
		fmt.Printf("    Suggestion: %s\n", issue.Suggestion)
	}
	fmt.Println()
}
