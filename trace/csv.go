package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{"run_id", "seq", "kind", "function", "call", "line", "col", "value", "depth"}

// WriteCSV writes the trace as CSV with a header row. As with JSONL,
// the run id is carried on every data row.
func WriteCSV(w io.Writer, tr *Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, ev := range tr.Events {
		record := []string{
			tr.RunID,
			strconv.Itoa(ev.Seq),
			string(ev.Kind),
			ev.Function,
			ev.Call,
			strconv.Itoa(ev.Line),
			strconv.Itoa(ev.Col),
			ev.Value,
			strconv.Itoa(ev.Depth),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing event %d: %w", ev.Seq, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a trace written by WriteCSV. The header must match
// exactly.
func ReadCSV(r io.Reader) (*Trace, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return &Trace{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("header has %d columns, want %d", len(header), len(csvHeader))
	}
	for i, col := range header {
		if col != csvHeader[i] {
			return nil, fmt.Errorf("header column %d is %q, want %q", i, col, csvHeader[i])
		}
	}

	tr := &Trace{}
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", lineNum+1, err)
		}
		lineNum++

		ev := Event{
			Kind:     Kind(record[2]),
			Function: record[3],
			Call:     record[4],
			Value:    record[7],
		}
		if ev.Seq, err = parseIntField(lineNum, "seq", record[1]); err != nil {
			return nil, err
		}
		if ev.Line, err = parseIntField(lineNum, "line", record[5]); err != nil {
			return nil, err
		}
		if ev.Col, err = parseIntField(lineNum, "col", record[6]); err != nil {
			return nil, err
		}
		if ev.Depth, err = parseIntField(lineNum, "depth", record[8]); err != nil {
			return nil, err
		}

		if tr.RunID == "" {
			tr.RunID = record[0]
		} else if record[0] != tr.RunID {
			return nil, fmt.Errorf("line %d: run id %q does not match %q", lineNum, record[0], tr.RunID)
		}
		tr.Events = append(tr.Events, ev)
	}
	return tr, nil
}

func parseIntField(line int, name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q: %w", line, name, value, err)
	}
	return n, nil
}
