package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deflang/go-deflang/circuit"
	"github.com/deflang/go-deflang/eval"
	"github.com/deflang/go-deflang/parser"
)

func prove(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	maxArgs := fs.Int("max-args", 0, "Maximum parameters per function (0 uses the default of 1)")
	programName := fs.String("name", "", "Program name for the proof (inferred from filename if not provided)")
	outputJSON := fs.Bool("json", false, "Output the proof and metadata as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: deflang prove <program.def|-> [options]

Evaluate a program, compile it into an arithmetic circuit, and
generate a Groth16 proof that MAIN evaluates to the printed value.
The proof is verified before it is reported.

Programs are evaluated with exact arithmetic. Recursive programs
cannot be proved.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Prove a program's value
  deflang prove program.def

  # Machine-readable proof output
  deflang prove program.def --json > proof.json
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("program file required")
	}

	programFile := fs.Arg(0)
	source, err := readSource(programFile)
	if err != nil {
		return err
	}

	cfg := parser.DefaultConfig()
	if *maxArgs > 0 {
		cfg.MaxArguments = *maxArgs
	}

	prog, err := parser.Parse(source, cfg)
	if err != nil {
		return fmt.Errorf("parse program: %w", err)
	}

	// The circuit constrains the exact value, so evaluate in exact mode.
	value, err := eval.Run(prog, &eval.Options{Exact: true})
	if err != nil {
		return fmt.Errorf("evaluate program: %w", err)
	}

	// Infer program name if not provided
	name := *programName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(programFile), ".def")
		if name == "-" {
			name = "program"
		}
	}

	prover := circuit.NewProver()
	if err := prover.RegisterProgram(name, prog); err != nil {
		return fmt.Errorf("compile circuit: %w", err)
	}

	result, err := prover.Prove(name, value)
	if err != nil {
		return fmt.Errorf("prove: %w", err)
	}

	if err := prover.VerifyProof(name, value, result.Proof); err != nil {
		return fmt.Errorf("verify proof: %w", err)
	}

	if *outputJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Proof generated and verified\n")
	fmt.Printf("  Program: %s\n", result.Program)
	fmt.Printf("  Value: %s\n", result.Value)
	fmt.Printf("  Constraints: %d\n", result.Constraints)
	fmt.Printf("  Public inputs: %d\n", result.PublicVars)
	fmt.Printf("  Private inputs: %d\n", result.PrivateVars)
	fmt.Printf("  Proof size: %d bytes\n", len(result.Proof))
	fmt.Printf("  Proof time: %dms\n", result.ProofTimeMs)

	return nil
}
