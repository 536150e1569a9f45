package qi

import (
	"fmt"
	"slices"

	"github.com/soniakeys/bits"

	"github.com/matzehuels/qivalidate/pkg/coloring"
)

// Quotient is a quotient graph: one vertex per partition block, an edge
// between two blocks iff some graph edge crosses them. Vertices are
// addressed by index 0..Size()-1; Blocks maps each index back to the block
// label it stands for.
type Quotient struct {
	blocks []int
	adj    []bits.Bits
}

// NewQuotient returns an edgeless quotient over the given block labels.
// The slice is copied.
func NewQuotient(blocks []int) *Quotient {
	k := len(blocks)
	q := &Quotient{blocks: slices.Clone(blocks), adj: make([]bits.Bits, k)}
	for i := range q.adj {
		q.adj[i] = bits.New(k)
	}
	return q
}

// NewQuotientSize returns an edgeless quotient over blocks labeled 0..k-1.
func NewQuotientSize(k int) *Quotient {
	blocks := make([]int, k)
	for i := range blocks {
		blocks[i] = i
	}
	return NewQuotient(blocks)
}

// Connect adds the edge i-j. Self-edges are ignored.
func (q *Quotient) Connect(i, j int) {
	if i == j {
		return
	}
	q.adj[i].SetBit(j, 1)
	q.adj[j].SetBit(i, 1)
}

// Adjacent reports whether i and j are joined.
func (q *Quotient) Adjacent(i, j int) bool {
	return q.adj[i].Bit(j) == 1
}

// Size returns the number of blocks k.
func (q *Quotient) Size() int { return len(q.blocks) }

// Blocks returns the block label of every quotient vertex.
func (q *Quotient) Blocks() []int { return slices.Clone(q.blocks) }

// Block returns the block label of quotient vertex i.
func (q *Quotient) Block(i int) int { return q.blocks[i] }

// Index returns the quotient vertex of a block label, or -1.
func (q *Quotient) Index(block int) int {
	return slices.Index(q.blocks, block)
}

// Edges returns every quotient edge as index pairs i < j in ascending order.
func (q *Quotient) Edges() [][2]int {
	var out [][2]int
	for i, row := range q.adj {
		row.IterateOnes(func(j int) bool {
			if j > i {
				out = append(out, [2]int{i, j})
			}
			return true
		})
	}
	return out
}

// EdgeCount returns the number of quotient edges.
func (q *Quotient) EdgeCount() int { return len(q.Edges()) }

// ColoringGraph converts q to the oracle input format, using quotient
// indices as vertex ids.
func (q *Quotient) ColoringGraph() coloring.Graph {
	g := coloring.Graph{
		Vertices:  make([]int, q.Size()),
		Adjacency: make(map[int][]int, q.Size()),
	}
	for i, row := range q.adj {
		g.Vertices[i] = i
		row.IterateOnes(func(j int) bool {
			g.Adjacency[i] = append(g.Adjacency[i], j)
			return true
		})
	}
	return g
}

// String renders the quotient as "k=K edges=[a-b c-d ...]" over block labels.
func (q *Quotient) String() string {
	edges := q.Edges()
	s := fmt.Sprintf("k=%d edges=[", q.Size())
	for n, e := range edges {
		if n > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d-%d", q.blocks[e[0]], q.blocks[e[1]])
	}
	return s + "]"
}
