package ops

import (
	"fmt"

	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/partition"
)

// Sc splits one vertex off a component of block. component selects the
// component by index among BlockComponents; -1 takes the first one with at
// least two vertices. A spanning tree of the component is grown depth-first
// from its first vertex, and a random leaf of it moves to block
// MaxLabel()+1.
func (o *Operator) Sc(p *partition.Partition, g *graph.Graph, block, component int) Result {
	var target []int
	for i, comp := range p.BlockComponents(g, block) {
		if len(comp) >= 2 && (component == -1 || i == component) {
			target = comp
			break
		}
	}
	if len(target) < 2 {
		return failed(p, block, -1, "Sc failed: no splittable component found")
	}

	leaves := spanningTreeLeaves(target, g)
	if len(leaves) == 0 {
		leaves = target
	}
	v := leaves[o.rng.IntN(len(leaves))]

	out := p.Clone()
	out.SetLabel(v, p.MaxLabel()+1)
	return succeeded(p, out, g, block, -1, []int{v},
		fmt.Sprintf("Sc: split block %d (moved vertex %d)", block, v))
}

// spanningTreeLeaves returns the vertices of comp, in comp order, that have
// degree one in the depth-first spanning tree rooted at comp[0].
func spanningTreeLeaves(comp []int, g *graph.Graph) []int {
	degree := make(map[int]int, len(comp))
	visited := make(map[int]bool, len(comp))

	var dfs func(u int)
	dfs = func(u int) {
		visited[u] = true
		for _, v := range comp {
			if v != u && !visited[v] && g.HasEdge(u, v) {
				degree[u]++
				degree[v]++
				dfs(v)
			}
		}
	}
	dfs(comp[0])

	var leaves []int
	for _, v := range comp {
		if degree[v] == 1 {
			leaves = append(leaves, v)
		}
	}
	return leaves
}

// Su splits a disconnected block into its components. The first component
// keeps the label; the others get MaxLabel()+1, +2 and so on.
func (o *Operator) Su(p *partition.Partition, g *graph.Graph, block int) Result {
	if !p.HasBlock(block) {
		return failed(p, block, -1, "Su failed: block %d does not exist", block)
	}
	if p.IsBlockConnected(g, block) {
		return failed(p, block, -1, "Su failed: block %d is already connected", block)
	}
	comps := p.BlockComponents(g, block)
	if len(comps) <= 1 {
		return failed(p, block, -1, "Su failed: block %d has only one component", block)
	}

	out := p.Clone()
	next := p.MaxLabel() + 1
	var moved []int
	for _, comp := range comps[1:] {
		for _, v := range comp {
			out.SetLabel(v, next)
			moved = append(moved, v)
		}
		next++
	}
	return succeeded(p, out, g, block, -1, moved,
		fmt.Sprintf("Su: split unconnected block %d into %d blocks", block, len(comps)))
}

// Mu merges b2 into b1 when no edge joins them, then renormalizes.
func (o *Operator) Mu(p *partition.Partition, g *graph.Graph, b1, b2 int) Result {
	if r, bad := checkMerge("Mu", p, b1, b2); bad {
		return r
	}
	if p.AreBlocksConnected(g, b1, b2) {
		return failed(p, b1, b2, "Mu failed: blocks %d and %d are connected", b1, b2)
	}
	out, moved := merge(p, b1, b2)
	return succeeded(p, out, g, b1, b2, moved, fmt.Sprintf("Mu: merged blocks %d and %d", b1, b2))
}

// Mc merges b2 into b1 when some edge joins them, then renormalizes.
func (o *Operator) Mc(p *partition.Partition, g *graph.Graph, b1, b2 int) Result {
	if r, bad := checkMerge("Mc", p, b1, b2); bad {
		return r
	}
	if !p.AreBlocksConnected(g, b1, b2) {
		return failed(p, b1, b2, "Mc failed: blocks %d and %d are not connected", b1, b2)
	}
	out, moved := merge(p, b1, b2)
	return succeeded(p, out, g, b1, b2, moved, fmt.Sprintf("Mc: merged connected blocks %d and %d", b1, b2))
}

func checkMerge(op string, p *partition.Partition, b1, b2 int) (Result, bool) {
	switch {
	case b1 == b2:
		return failed(p, b1, b2, "%s failed: cannot merge block %d with itself", op, b1), true
	case !p.HasBlock(b1):
		return failed(p, b1, b2, "%s failed: block %d does not exist", op, b1), true
	case !p.HasBlock(b2):
		return failed(p, b1, b2, "%s failed: block %d does not exist", op, b2), true
	}
	return Result{}, false
}

func merge(p *partition.Partition, b1, b2 int) (*partition.Partition, []int) {
	moved := p.BlockVertices(b2)
	out := p.Clone()
	out.MergeBlocks(b1, b2)
	out.Renormalize()
	return out, moved
}
