package partition

import (
	"maps"
	"slices"

	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/qi"
)

// =============================================================================
// Quotient Queries
// =============================================================================

// AreBlocksConnected reports whether some graph edge joins a vertex of b1 to
// a vertex of b2. A block is never connected to itself.
func (p *Partition) AreBlocksConnected(g *graph.Graph, b1, b2 int) bool {
	p.checkGraph(g)
	if b1 == b2 {
		return false
	}
	for u, l := range p.labels {
		if l != b1 {
			continue
		}
		for _, v := range g.Neighbors(u) {
			if p.labels[v] == b2 {
				return true
			}
		}
	}
	return false
}

// BlockComponents splits block into its connected components, searching
// breadth-first from each unvisited vertex in ascending order. Vertices of a
// component are listed in discovery order. A block of at most one vertex is
// a single component; an unknown block yields nil.
func (p *Partition) BlockComponents(g *graph.Graph, block int) [][]int {
	p.checkGraph(g)
	return p.components(g, block, p.BlockVertices(block))
}

// components splits the ascending vertex list verts of block.
func (p *Partition) components(g *graph.Graph, block int, verts []int) [][]int {
	if len(verts) <= 1 {
		if verts == nil {
			return nil
		}
		return [][]int{verts}
	}

	visited := make(map[int]bool, len(verts))
	var comps [][]int
	for _, start := range verts {
		if visited[start] {
			continue
		}
		visited[start] = true
		comp := []int{start}
		for i := 0; i < len(comp); i++ {
			for _, v := range g.Neighbors(comp[i]) {
				if !visited[v] && p.labels[v] == block {
					visited[v] = true
					comp = append(comp, v)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// BlockIndependent reports whether no two vertices of block are adjacent.
func (p *Partition) BlockIndependent(g *graph.Graph, block int) bool {
	p.checkGraph(g)
	for u, l := range p.labels {
		if l != block {
			continue
		}
		for _, v := range g.Neighbors(u) {
			if v > u && p.labels[v] == block {
				return false
			}
		}
	}
	return true
}

// Quotient builds the quotient graph of p over g, one vertex per block in
// ascending label order.
func (p *Partition) Quotient(g *graph.Graph) *qi.Quotient {
	p.checkGraph(g)
	ids := p.BlockIDs()
	index := make(map[int]int, len(ids))
	for i, b := range ids {
		index[b] = i
	}
	q := qi.NewQuotient(ids)
	for u, lu := range p.labels {
		for _, v := range g.Neighbors(u) {
			if lv := p.labels[v]; v > u && lv != lu {
				q.Connect(index[lu], index[lv])
			}
		}
	}
	return q
}

// =============================================================================
// Cached Properties
// =============================================================================

// InteriorEdgeCount returns the number of graph edges inside blocks.
func (p *Partition) InteriorEdgeCount(g *graph.Graph) int {
	p.checkGraph(g)
	p.memo.forGraph(g)
	if p.memo.interior < 0 {
		n := 0
		for _, e := range g.Edges() {
			if p.labels[e.U] == p.labels[e.V] {
				n++
			}
		}
		p.memo.interior = n
	}
	return p.memo.interior
}

// IsBlockConnected reports whether block induces a connected subgraph.
func (p *Partition) IsBlockConnected(g *graph.Graph, block int) bool {
	p.checkGraph(g)
	return p.isBlockConnected(g, block, nil)
}

// isBlockConnected memoizes connectivity of block; verts lists its vertices
// when the caller already has them.
func (p *Partition) isBlockConnected(g *graph.Graph, block int, verts []int) bool {
	p.memo.forGraph(g)
	if c, ok := p.memo.connected[block]; ok {
		return c
	}
	if verts == nil {
		verts = p.BlockVertices(block)
	}
	c := len(p.components(g, block, verts)) == 1
	if p.memo.connected == nil {
		p.memo.connected = make(map[int]bool)
	}
	p.memo.connected[block] = c
	return c
}

// IsBlockIndependent is BlockIndependent with memoization.
func (p *Partition) IsBlockIndependent(g *graph.Graph, block int) bool {
	p.checkGraph(g)
	p.memo.forGraph(g)
	if c, ok := p.memo.independent[block]; ok {
		return c
	}
	c := p.BlockIndependent(g, block)
	if p.memo.independent == nil {
		p.memo.independent = make(map[int]bool)
	}
	p.memo.independent[block] = c
	return c
}

// IsConnectedPartition reports whether every block is connected.
func (p *Partition) IsConnectedPartition(g *graph.Graph) bool {
	p.checkGraph(g)
	blocks := p.Blocks()
	for _, b := range slices.Sorted(maps.Keys(blocks)) {
		if !p.isBlockConnected(g, b, blocks[b]) {
			return false
		}
	}
	return true
}

// IsIndependentPartition reports whether every block is independent.
// Every block's entry is filled in one pass over the edges.
func (p *Partition) IsIndependentPartition(g *graph.Graph) bool {
	p.checkGraph(g)
	p.memo.forGraph(g)
	independent := make(map[int]bool)
	for _, l := range p.labels {
		independent[l] = true
	}
	all := true
	for _, e := range g.Edges() {
		if l := p.labels[e.U]; l == p.labels[e.V] {
			independent[l] = false
			all = false
		}
	}
	p.memo.independent = independent
	return all
}

// CalculateProperties fills the memo with every graph-dependent property
// except the qi-number.
func (p *Partition) CalculateProperties(g *graph.Graph) {
	p.InteriorEdgeCount(g)
	p.IsConnectedPartition(g)
	p.IsIndependentPartition(g)
}
