package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		if err := run(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "check":
		if err := check(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "render":
		if err := render(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "prove":
		if err := prove(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "history":
		if err := history(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("deflang version 0.1.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`deflang - evaluator and proof toolchain for DEF programs

Usage:
  deflang <command> [options]

Commands:
  run        Evaluate a program and print its value
  check      Validate a program and report issues
  render     Print a program in canonical form
  prove      Generate a zero-knowledge proof of a program's value
  history    List recorded runs from a store
  help       Show this help message
  version    Show version information

Examples:
  # Evaluate a program
  deflang run program.def

  # Evaluate from stdin with exact arithmetic
  echo 'DEF MAIN { 2+3*4 } ;' | deflang run --exact -

  # Validate and show the report
  deflang check program.def

  # Prove the program's value
  deflang prove program.def

  # Record runs and list them later
  deflang run program.def --store runs.db
  deflang history --store runs.db

For command-specific help, run:
  deflang <command> --help`)
}

// readSource reads program text from a file, or from stdin when the
// path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read program: %w", err)
	}
	return string(data), nil
}
