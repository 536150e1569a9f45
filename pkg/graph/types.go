package graph

import (
	"github.com/soniakeys/bits"

	"github.com/matzehuels/qivalidate/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// MaxVertices is the largest vertex count a graph may have. Adjacency is
// dense, n rows of n bits, so a graph at the limit holds 32 MiB of rows.
const MaxVertices = 1 << 14

// =============================================================================
// Graph - Immutable Adjacency View
// =============================================================================

// Graph is an immutable undirected simple graph over vertices 0..n-1 together
// with the critical block count the validation driver coarsens towards.
//
// Adjacency rows are bitsets, so HasEdge is a single word lookup. A Graph is
// safe for concurrent reads; nothing mutates it after New returns.
type Graph struct {
	n         int
	criticalK int
	rows      []bits.Bits
	edges     int
}

// Edge is an undirected edge. Graph methods always report U < V.
type Edge struct {
	U int `json:"u" bson:"u"`
	V int `json:"v" bson:"v"`
}

// New builds a graph with n vertices. Duplicate edges collapse; self-loops
// and out-of-range endpoints are rejected.
func New(n, criticalK int, edges []Edge) (*Graph, error) {
	if n <= 0 || n > MaxVertices {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "invalid number of vertices: %d", n)
	}
	if criticalK < 0 {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "critical k must not be negative: %d", criticalK)
	}

	g := &Graph{n: n, criticalK: criticalK, rows: make([]bits.Bits, n)}
	for v := range g.rows {
		g.rows[v] = bits.New(n)
	}
	for _, e := range edges {
		if err := checkEdge(n, e.U, e.V); err != nil {
			return nil, err
		}
		g.connect(e.U, e.V)
	}
	return g, nil
}

func checkEdge(n, u, v int) error {
	if u < 0 || u >= n || v < 0 || v >= n {
		return errors.New(errors.ErrCodeInvalidGraph, "edge (%d, %d) out of range for %d vertices", u, v, n)
	}
	if u == v {
		return errors.New(errors.ErrCodeInvalidGraph, "self-loop on vertex %d", u)
	}
	return nil
}

func (g *Graph) connect(u, v int) {
	if g.rows[u].Bit(v) == 1 {
		return
	}
	g.rows[u].SetBit(v, 1)
	g.rows[v].SetBit(u, 1)
	g.edges++
}

// NumVertices returns n.
func (g *Graph) NumVertices() int { return g.n }

// CriticalK returns the target block count.
func (g *Graph) CriticalK() int { return g.criticalK }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int { return g.edges }

// HasEdge reports whether u and v are adjacent. Out-of-range vertices panic.
func (g *Graph) HasEdge(u, v int) bool {
	return g.rows[u].Bit(v) == 1
}

// Neighbors returns the neighbours of v in ascending order.
func (g *Graph) Neighbors(v int) []int {
	var out []int
	g.rows[v].IterateOnes(func(u int) bool {
		out = append(out, u)
		return true
	})
	return out
}

// Degree returns the number of neighbours of v.
func (g *Graph) Degree(v int) int {
	d := 0
	g.rows[v].IterateOnes(func(int) bool {
		d++
		return true
	})
	return d
}

// Edges returns every edge once, with U < V, sorted by (U, V).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for u := range g.n {
		g.rows[u].IterateOnes(func(v int) bool {
			if v > u {
				out = append(out, Edge{U: u, V: v})
			}
			return true
		})
	}
	return out
}

// WithCriticalK returns a graph sharing g's adjacency with a different
// target block count.
func (g *Graph) WithCriticalK(k int) *Graph {
	c := *g
	c.criticalK = k
	return &c
}

// =============================================================================
// Document - JSON Representation
// =============================================================================

// Document is the JSON form of a graph used by the HTTP API and stored
// reports.
type Document struct {
	Vertices  int      `json:"vertices" bson:"vertices"`
	CriticalK int      `json:"critical_k" bson:"critical_k"`
	Edges     [][2]int `json:"edges" bson:"edges"`
}

// FromGraph converts a graph to its document form. Edges are sorted.
func FromGraph(g *Graph) Document {
	edges := g.Edges()
	doc := Document{
		Vertices:  g.n,
		CriticalK: g.criticalK,
		Edges:     make([][2]int, len(edges)),
	}
	for i, e := range edges {
		doc.Edges[i] = [2]int{e.U, e.V}
	}
	return doc
}

// ToGraph validates the document and builds the graph.
func (d Document) ToGraph() (*Graph, error) {
	edges := make([]Edge, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = Edge{U: e[0], V: e[1]}
	}
	return New(d.Vertices, d.CriticalK, edges)
}
