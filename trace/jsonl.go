package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// jsonlRecord is one JSONL line: the event fields plus the run id,
// so every line is self contained.
type jsonlRecord struct {
	RunID string `json:"run_id"`
	Event
}

// WriteJSONL writes one JSON object per event. A trace with no events
// writes nothing; the run id travels with each event line.
func WriteJSONL(w io.Writer, tr *Trace) error {
	enc := json.NewEncoder(w)
	for _, ev := range tr.Events {
		if err := enc.Encode(jsonlRecord{RunID: tr.RunID, Event: ev}); err != nil {
			return fmt.Errorf("encoding event %d: %w", ev.Seq, err)
		}
	}
	return nil
}

// ReadJSONL parses a trace from JSONL. Blank lines are skipped, and
// every line must carry the same run id.
func ReadJSONL(r io.Reader) (*Trace, error) {
	tr := &Trace{}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		if tr.RunID == "" {
			tr.RunID = rec.RunID
		} else if rec.RunID != tr.RunID {
			return nil, fmt.Errorf("line %d: run id %q does not match %q", lineNum, rec.RunID, tr.RunID)
		}
		tr.Events = append(tr.Events, rec.Event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return tr, nil
}
