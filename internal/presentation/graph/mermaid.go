package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/doing"
	"github.com/aretw0/doing/pkg/domain"
)

// Edge is a state change observed for one or more controls.
type Edge struct {
	From     domain.State
	To       domain.State
	Controls []domain.Control
}

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	Visited []domain.State
	Current []domain.State
}

// EdgeSet merges transitions sharing the same endpoints.
type EdgeSet struct {
	edges map[[2]domain.State]*Edge
}

func NewEdgeSet() *EdgeSet {
	return &EdgeSet{edges: make(map[[2]domain.State]*Edge)}
}

// Add records that control moved a unit from one state to another.
func (s *EdgeSet) Add(from, to domain.State, control domain.Control) {
	key := [2]domain.State{from, to}
	e, ok := s.edges[key]
	if !ok {
		e = &Edge{From: from, To: to}
		s.edges[key] = e
	}
	for _, c := range e.Controls {
		if c == control {
			return
		}
	}
	e.Controls = append(e.Controls, control)
}

// Edges returns the merged edges ordered by source then target state.
func (s *EdgeSet) Edges() []Edge {
	out := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		controls := append([]domain.Control(nil), e.Controls...)
		sort.Slice(controls, func(i, j int) bool { return controls[i] < controls[j] })
		out = append(out, Edge{From: e.From, To: e.To, Controls: controls})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// TableEdges probes a fresh Doer in every non-terminal state with every
// control and returns the transitions it takes.
func TableEdges(ctx context.Context) ([]Edge, error) {
	setup := map[domain.State][]domain.Control{
		domain.StateExited:    nil,
		domain.StateEntered:   {domain.ControlEnter},
		domain.StateRecurring: {domain.ControlRecur},
	}
	controls := []domain.Control{domain.ControlExit, domain.ControlEnter, domain.ControlRecur, domain.ControlAbort}

	set := NewEdgeSet()
	for from, path := range setup {
		for _, control := range controls {
			d := doing.New()
			for _, c := range path {
				if _, err := d.Step(ctx, c); err != nil {
					return nil, fmt.Errorf("reach %s: %w", from, err)
				}
			}
			to, err := d.Step(ctx, control)
			if err != nil && !errors.Is(err, domain.ErrExhausted) {
				return nil, fmt.Errorf("%s on %s: %w", control, from, err)
			}
			set.Add(from, to, control)
		}
	}
	return set.Edges(), nil
}

// GenerateMermaid produces a Mermaid state diagram from edges.
// Exited is the entry point and Aborted the final state. Overlay states get
// the visited and current styles.
func GenerateMermaid(edges []Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", domain.StateExited))

	for _, e := range edges {
		labels := make([]string, len(e.Controls))
		for i, c := range e.Controls {
			labels[i] = c.String()
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s: %s\n", e.From, e.To, strings.Join(labels, ", ")))
	}
	sb.WriteString(fmt.Sprintf("    %s --> [*]\n", domain.StateAborted))

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		current := make(map[domain.State]bool)
		for _, s := range overlay.Current {
			current[s] = true
		}
		seen := make(map[domain.State]bool)
		for _, s := range overlay.Visited {
			if seen[s] || current[s] {
				continue
			}
			seen[s] = true
			sb.WriteString(fmt.Sprintf("    class %s visited\n", s))
		}
		for _, s := range overlay.Current {
			if seen[s] {
				continue
			}
			seen[s] = true
			sb.WriteString(fmt.Sprintf("    class %s current\n", s))
		}
	}

	return sb.String()
}
