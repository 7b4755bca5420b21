package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/doing/internal/presentation/graph"
	"github.com/aretw0/doing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeSet_MergesControls(t *testing.T) {
	set := graph.NewEdgeSet()
	set.Add(domain.StateRecurring, domain.StateExited, domain.ControlExit)
	set.Add(domain.StateEntered, domain.StateRecurring, domain.ControlRecur)
	set.Add(domain.StateRecurring, domain.StateExited, domain.ControlExit)
	set.Add(domain.StateEntered, domain.StateAborted, domain.ControlAbort)
	set.Add(domain.StateEntered, domain.StateAborted, domain.Control(9))

	edges := set.Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, graph.Edge{From: domain.StateEntered, To: domain.StateRecurring, Controls: []domain.Control{domain.ControlRecur}}, edges[0])
	assert.Equal(t, []domain.Control{domain.ControlAbort, domain.Control(9)}, edges[1].Controls)
	assert.Equal(t, domain.StateRecurring, edges[2].From)
}

func TestTableEdges(t *testing.T) {
	edges, err := graph.TableEdges(context.Background())
	require.NoError(t, err)

	got := make(map[string]string)
	for _, e := range edges {
		for _, c := range e.Controls {
			got[e.From.String()+"/"+c.String()] = e.To.String()
		}
	}

	want := map[string]string{
		"exited/exit":     "exited",
		"exited/enter":    "entered",
		"exited/recur":    "recurring",
		"exited/abort":    "aborted",
		"entered/exit":    "exited",
		"entered/enter":   "entered",
		"entered/recur":   "recurring",
		"entered/abort":   "aborted",
		"recurring/exit":  "exited",
		"recurring/enter": "entered",
		"recurring/recur": "recurring",
		"recurring/abort": "aborted",
	}
	assert.Equal(t, want, got)
}

func TestGenerateMermaid(t *testing.T) {
	edges := []graph.Edge{
		{From: domain.StateExited, To: domain.StateEntered, Controls: []domain.Control{domain.ControlEnter}},
		{From: domain.StateEntered, To: domain.StateAborted, Controls: []domain.Control{domain.ControlAbort, domain.ControlRecur}},
	}

	got := graph.GenerateMermaid(edges, &graph.Overlay{
		Visited: []domain.State{domain.StateExited, domain.StateEntered, domain.StateExited},
		Current: []domain.State{domain.StateEntered},
	})

	for _, want := range []string{
		"stateDiagram-v2\n",
		"[*] --> exited",
		"exited --> entered: enter",
		"entered --> aborted: abort, recur",
		"aborted --> [*]",
		"class exited visited",
		"class entered current",
	} {
		assert.Contains(t, got, want)
	}
	assert.Equal(t, 1, strings.Count(got, "class exited"))
	assert.NotContains(t, got, "class entered visited")
}

func TestGenerateMermaid_NoOverlay(t *testing.T) {
	got := graph.GenerateMermaid(nil, nil)
	assert.NotContains(t, got, "classDef")
}
