package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/deflang/go-deflang/runstore"
)

func history(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	storeFile := fs.String("store", "", "SQLite store file (required)")
	limit := fs.Int("limit", 20, "Maximum runs to list (0 for all)")
	outputJSON := fs.Bool("json", false, "Output runs as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: deflang history [options]

List recorded runs, newest first.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Show the last 20 runs
  deflang history --store runs.db

  # Show everything as JSON
  deflang history --store runs.db --limit 0 --json
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *storeFile == "" {
		fs.Usage()
		return fmt.Errorf("--store required")
	}

	store, err := runstore.NewSQLiteStore(*storeFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	records, err := store.List(context.Background(), *limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if *outputJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("=== Run History (%d runs) ===\n\n", len(records))

	for _, rec := range records {
		detail := rec.Value
		if rec.Outcome != "evaluated" {
			detail = rec.Diagnostic
		}
		fmt.Printf("%s  %-12s  %s  %s\n",
			rec.CreatedAt.Format(time.RFC3339), rec.Outcome, rec.ID, detail)
	}

	return nil
}
