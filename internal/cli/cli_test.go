package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/doing/pkg/adapters/redis"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func decodeTrace(t *testing.T, data []byte) []TraceEntry {
	t.Helper()
	var entries []TraceEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var e TraceEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func lastFor(entries []TraceEntry, doer string) TraceEntry {
	var last TraceEntry
	for _, e := range entries {
		if e.Doer == doer {
			last = e
		}
	}
	return last
}

const mixedPlan = `
tock: 1ms
limit: 5s
doers:
  - name: counter
    recurs: 2
  - name: flaky
    fail_on: recur
`

func TestRun_JSONTrace(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		PlanPath: writePlan(t, mixedPlan),
		JSON:     true,
		Out:      &out,
		ErrOut:   &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scripted failure in recur")

	entries := decodeTrace(t, out.Bytes())
	require.NotEmpty(t, entries)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Seq)
	}

	counter := lastFor(entries, "counter")
	assert.Equal(t, domain.ControlExit, counter.Control)
	assert.Equal(t, domain.StateExited, counter.To)
	assert.True(t, counter.Done)

	flaky := lastFor(entries, "flaky")
	assert.Equal(t, domain.StateAborted, flaky.To)
	assert.Contains(t, flaky.Note, "scripted failure in recur")
}

func TestRun_PanicOnHookIsIsolated(t *testing.T) {
	var out bytes.Buffer
	var err error
	require.NotPanics(t, func() {
		err = Run(context.Background(), RunOptions{
			PlanPath: writePlan(t, "tock: 1ms\nlimit: 5s\ndoers:\n  - name: steady\n    recurs: 3\n  - name: boom\n    panic_on: recur\n"),
			JSON:     true,
			Out:      &out,
			ErrOut:   &bytes.Buffer{},
		})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom: scripted panic in recur")

	entries := decodeTrace(t, out.Bytes())
	steady := lastFor(entries, "steady")
	assert.Equal(t, domain.StateExited, steady.To)
	assert.True(t, steady.Done)

	boom := lastFor(entries, "boom")
	assert.Equal(t, domain.StateAborted, boom.To)
	assert.Contains(t, boom.Note, "scripted panic in recur")
}

func TestRun_MarkdownReport(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		PlanPath: writePlan(t, "tock: 1ms\ndoers:\n  - name: solo\n    recurs: 1\n"),
		Out:      &out,
		ErrOut:   &bytes.Buffer{},
	})
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "plan.yaml")
	assert.Contains(t, report, "Trace")
	assert.Contains(t, report, "solo")
	assert.Contains(t, report, "exited")
}

func TestRun_LimitExitsCleanly(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		PlanPath: writePlan(t, "tock: 1ms\ndoers:\n  - name: forever\n"),
		Limit:    30 * time.Millisecond,
		JSON:     true,
		Out:      &out,
		ErrOut:   &bytes.Buffer{},
	})
	require.NoError(t, err)

	last := lastFor(decodeTrace(t, out.Bytes()), "forever")
	assert.Equal(t, domain.ControlExit, last.Control)
	assert.Equal(t, domain.StateExited, last.To)
	assert.True(t, last.Done)
}

func TestRun_InvalidPlan(t *testing.T) {
	err := Run(context.Background(), RunOptions{
		PlanPath: writePlan(t, "doers:\n  - name: a\n    kind: cron\n"),
		Out:      &bytes.Buffer{},
		ErrOut:   &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestRun_RedisStoreAndServe(t *testing.T) {
	mr := miniredis.RunT(t)

	var health int
	err := Run(context.Background(), RunOptions{
		PlanPath:  writePlan(t, "tock: 1ms\ndoers:\n  - name: stored\n    recurs: 1\n"),
		RedisAddr: mr.Addr(),
		Serve:     "127.0.0.1:0",
		JSON:      true,
		Out:       &bytes.Buffer{},
		ErrOut:    &bytes.Buffer{},
		Ready: func(addr string) {
			resp, err := http.Get("http://" + addr + "/healthz")
			if err == nil {
				health = resp.StatusCode
				resp.Body.Close()
			}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, health)

	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()
	snap, err := store.Load(context.Background(), "stored")
	require.NoError(t, err)
	assert.Equal(t, domain.StateExited, snap.State)
	assert.True(t, snap.Done)

	assert.False(t, mr.Exists("doing:lock:plan.yaml"), "plan lock released")
}

func TestRun_PlanLockedElsewhere(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("doing:lock:plan.yaml", "someone-else"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := Run(ctx, RunOptions{
		PlanPath:  writePlan(t, "doers:\n  - name: a\n"),
		RedisAddr: mr.Addr(),
		Out:       &bytes.Buffer{},
		ErrOut:    &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "being run elsewhere")
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
}

func TestStep_FullCycle(t *testing.T) {
	var out bytes.Buffer
	err := Step(context.Background(), StepOptions{
		Controls: []string{"enter", "recur", "exit"},
		JSON:     true,
		Out:      &out,
		ErrOut:   &bytes.Buffer{},
	})
	require.NoError(t, err)

	entries := decodeTrace(t, out.Bytes())
	require.Len(t, entries, 3)
	assert.Equal(t, domain.StateEntered, entries[0].To)
	assert.Equal(t, domain.StateRecurring, entries[1].To)
	assert.Equal(t, domain.StateExited, entries[2].To)
	assert.True(t, entries[2].Done)
}

func TestStep_UnknownControlAbortsThenExhausts(t *testing.T) {
	var out bytes.Buffer
	err := Step(context.Background(), StepOptions{
		Controls: []string{"recur", "bogus", "recur"},
		Out:      &out,
		ErrOut:   &bytes.Buffer{},
	})
	require.ErrorIs(t, err, domain.ErrExhausted)
	assert.Contains(t, err.Error(), "recur: doer exhausted")

	report := out.String()
	assert.Contains(t, report, "control(-1)")
	assert.Contains(t, report, "recurring → aborted")
	assert.NotContains(t, report, "| 3 |")
}

func TestStep_FailingHook(t *testing.T) {
	var out bytes.Buffer
	err := Step(context.Background(), StepOptions{
		Controls: []string{"enter"},
		FailOn:   "enter",
		Out:      &out,
		ErrOut:   &bytes.Buffer{},
	})
	var hookErr *domain.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, domain.HookEnter, hookErr.Hook)
	assert.Contains(t, out.String(), "aborted")
}

func TestTrace_Markdown(t *testing.T) {
	trace := NewTrace()
	hooks := trace.Hooks()
	ctx := context.Background()

	hooks.OnHookError(ctx, &domain.HookErrorEvent{EventBase: domain.EventBase{DoerName: "a"}, Err: "boom"})
	hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{DoerName: "a"},
		Control:   domain.ControlRecur,
		From:      domain.StateEntered,
		To:        domain.StateAborted,
	})

	md := trace.Markdown()
	assert.Contains(t, md, "| 1 | a | recur | entered → aborted | false | boom |")
	assert.Empty(t, trace.pending)
}

func TestTraceGraph(t *testing.T) {
	entries := []TraceEntry{
		{Doer: "a", Control: domain.ControlEnter, From: domain.StateExited, To: domain.StateEntered},
		{Doer: "a", Control: domain.ControlExit, From: domain.StateEntered, To: domain.StateExited, Done: true},
	}
	md := traceGraph(entries, []domain.Snapshot{{Name: "a", State: domain.StateExited, Done: true}})

	assert.True(t, strings.HasPrefix(md, "```mermaid\n"))
	assert.Contains(t, md, "exited --> entered: enter")
	assert.Contains(t, md, "entered --> exited: exit")
	assert.Contains(t, md, "class entered visited")
	assert.Contains(t, md, "class exited current")
}

func TestGraph(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Graph(context.Background(), &out))
	assert.Contains(t, out.String(), "exited --> aborted: abort")
}
