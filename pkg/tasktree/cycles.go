package tasktree

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

// findCycles returns the task ids of every super-task cycle in the batch:
// strongly connected components with more than one task, plus tasks listing
// themselves as parent. Each cycle is sorted; cycles are ordered by first id.
func (b *Batch) findCycles() [][]model.TaskID {
	g := simple.NewDirectedGraph()
	for i := range b.nodes {
		g.AddNode(simple.Node(i))
	}

	var cycles [][]model.TaskID
	for i := range b.nodes {
		for _, child := range b.Children(int32(i)) {
			if int(child) == i {
				cycles = append(cycles, []model.TaskID{b.nodes[i].Task.ID})
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(child)))
		}
	}

	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		ids := make([]model.TaskID, 0, len(component))
		for _, n := range component {
			ids = append(ids, b.nodes[n.ID()].Task.ID)
		}
		slices.Sort(ids)
		cycles = append(cycles, ids)
	}

	slices.SortFunc(cycles, func(a, b []model.TaskID) int {
		return slices.Compare(a, b)
	})
	return slices.CompactFunc(cycles, slices.Equal[[]model.TaskID])
}
