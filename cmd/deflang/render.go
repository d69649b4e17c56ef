package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/deflang/go-deflang/parser"
)

func render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	maxArgs := fs.Int("max-args", 0, "Maximum parameters per function (0 uses the default of 1)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: deflang render <program.def|-> [options]

Print a program in canonical NAME(params):=body form, one
definition per line in source order.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Normalize a program
  deflang render program.def

  # Render from stdin
  echo 'DEF MAIN { 1+2*3 } ;' | deflang render -
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

	cfg := parser.DefaultConfig()
	if *maxArgs > 0 {
		cfg.MaxArguments = *maxArgs
	}

	// Rendering does not require an entry function, so incomplete
	// programs can be normalized too.
	prog, err := parser.ParseDefinitions(source, cfg)
	if err != nil {
		return fmt.Errorf("parse program: %w", err)
	}

	fmt.Print(prog.Render())
	return nil
}
