package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/doing/internal/presentation/tui"
	"github.com/aretw0/doing/pkg/domain"
)

// TraceEntry is one recorded step.
type TraceEntry struct {
	Seq     int            `json:"seq"`
	Time    time.Time      `json:"time"`
	Doer    string         `json:"doer"`
	Control domain.Control `json:"control"`
	From    domain.State   `json:"from"`
	To      domain.State   `json:"to"`
	Done    bool           `json:"done"`
	Note    string         `json:"note,omitempty"`
}

// Trace records transitions from any number of Doers.
type Trace struct {
	mu      sync.Mutex
	entries []TraceEntry
	pending map[string]string
}

func NewTrace() *Trace {
	return &Trace{pending: make(map[string]string)}
}

// Hooks returns lifecycle callbacks that append to the trace.
// A hook failure is attached as a note to the transition that follows it.
func (t *Trace) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			t.mu.Lock()
			defer t.mu.Unlock()
			note := t.pending[e.DoerName]
			delete(t.pending, e.DoerName)
			t.entries = append(t.entries, TraceEntry{
				Seq:     len(t.entries) + 1,
				Time:    e.Timestamp,
				Doer:    e.DoerName,
				Control: e.Control,
				From:    e.From,
				To:      e.To,
				Done:    e.Done,
				Note:    note,
			})
		},
		OnHookError: func(ctx context.Context, e *domain.HookErrorEvent) {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.pending[e.DoerName] = e.Err
		},
	}
}

// Entries returns a copy of the recorded steps.
func (t *Trace) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TraceEntry(nil), t.entries...)
}

// Markdown renders the trace as a markdown table.
func (t *Trace) Markdown() string {
	entries := t.Entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Seq),
			e.Doer,
			e.Control.String(),
			fmt.Sprintf("%s → %s", e.From, e.To),
			strconv.FormatBool(e.Done),
			e.Note,
		})
	}
	return tui.Table([]string{"#", "doer", "control", "transition", "done", "note"}, rows)
}

// WriteJSON writes the trace as NDJSON, one entry per line.
func (t *Trace) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, e := range t.Entries() {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
