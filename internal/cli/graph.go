package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/doing/internal/presentation/graph"
	"github.com/aretw0/doing/pkg/domain"
)

// Graph writes the Mermaid state diagram of the Doer transition table.
func Graph(ctx context.Context, out io.Writer) error {
	edges, err := graph.TableEdges(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, graph.GenerateMermaid(edges, nil))
	return err
}

// traceGraph renders the transitions a run actually took, highlighting the
// states its doers ended in.
func traceGraph(entries []TraceEntry, final []domain.Snapshot) string {
	set := graph.NewEdgeSet()
	overlay := &graph.Overlay{}
	for _, e := range entries {
		set.Add(e.From, e.To, e.Control)
		overlay.Visited = append(overlay.Visited, e.From, e.To)
	}
	for _, s := range final {
		overlay.Current = append(overlay.Current, s.State)
	}
	return fmt.Sprintf("```mermaid\n%s```\n", graph.GenerateMermaid(set.Edges(), overlay))
}
