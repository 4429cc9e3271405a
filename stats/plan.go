package stats

import (
	"fmt"
	"os"

	"github.com/awalterschulze/gographviz"
)

// PlanDiagram renders a plan (P passes fanning into Q partitions
// each) as a DOT graph at path, for operator inspection. The
// orchestrator writes it at the end of a completed run, after the
// JSON stats dump.
func PlanDiagram(path string, passes, partitions int) error {
	g := gographviz.NewGraph()
	if err := g.SetName("plan"); err != nil {
		return fmt.Errorf("stats: plan diagram: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return fmt.Errorf("stats: plan diagram: %w", err)
	}
	if err := g.AddNode("plan", "run", nil); err != nil {
		return fmt.Errorf("stats: plan diagram: %w", err)
	}
	for p := 0; p < passes; p++ {
		passNode := fmt.Sprintf("pass%d", p)
		if err := g.AddNode("plan", passNode, nil); err != nil {
			return fmt.Errorf("stats: plan diagram: %w", err)
		}
		if err := g.AddEdge("run", passNode, true, nil); err != nil {
			return fmt.Errorf("stats: plan diagram: %w", err)
		}
		for q := 0; q < partitions; q++ {
			partNode := fmt.Sprintf("pass%d_part%d", p, q)
			if err := g.AddNode("plan", partNode, nil); err != nil {
				return fmt.Errorf("stats: plan diagram: %w", err)
			}
			if err := g.AddEdge(passNode, partNode, true, nil); err != nil {
				return fmt.Errorf("stats: plan diagram: %w", err)
			}
		}
	}
	if err := os.WriteFile(path, []byte(g.String()), 0o644); err != nil {
		return fmt.Errorf("stats: write plan diagram %s: %w", path, err)
	}
	return nil
}
