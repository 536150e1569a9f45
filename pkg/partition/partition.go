package partition

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/qi"
)

// MaxVertices is the largest partition accepted by New and FromLabels.
const MaxVertices = graph.MaxVertices

// Partition assigns every vertex of a graph to a block label.
//
// Derived properties are memoized and dropped on every label change.
// Graph-dependent properties remember the *graph.Graph they were computed
// for and are recomputed when asked about a different one.
type Partition struct {
	labels []int

	// Operation records the operation that produced the partition.
	Operation string
	// OriginalIndex is the position of the partition in an enumeration.
	OriginalIndex int64

	memo memo
}

type memo struct {
	numBlocks int // 0 = not computed

	graph       *graph.Graph
	interior    int // -1 = not computed
	connected   map[int]bool
	independent map[int]bool

	qiGraph     *graph.Graph
	qi          qi.Result
	qiThreshold int
	qiEngine    string // engine signature, or exactSignature
	qiSet       bool
}

func (m *memo) reset() {
	*m = memo{interior: -1}
}

// forGraph points the graph-dependent part of the memo at g, dropping it when
// it was computed for another graph.
func (m *memo) forGraph(g *graph.Graph) {
	if m.graph == g {
		return
	}
	m.graph = g
	m.interior = -1
	m.connected = nil
	m.independent = nil
}

// New returns the identity partition of n vertices: vertex v in block v.
func New(n int) (*Partition, error) {
	if err := checkSize(n); err != nil {
		return nil, err
	}
	labels := make([]int, n)
	for v := range labels {
		labels[v] = v
	}
	return newPartition(labels), nil
}

// FromLabels returns a partition with a copy of labels.
func FromLabels(labels []int) (*Partition, error) {
	if err := checkSize(len(labels)); err != nil {
		return nil, err
	}
	for v, l := range labels {
		if l < 0 {
			return nil, errors.New(errors.ErrCodeInvalidPartition, "vertex %d has negative label %d", v, l)
		}
	}
	return newPartition(slices.Clone(labels)), nil
}

func newPartition(labels []int) *Partition {
	p := &Partition{labels: labels}
	p.memo.reset()
	return p
}

func checkSize(n int) error {
	if n <= 0 {
		return errors.New(errors.ErrCodeInvalidPartition, "partition needs at least one vertex, got %d", n)
	}
	if n > MaxVertices {
		return errors.New(errors.ErrCodeCapacityExceeded, "partition of %d vertices exceeds capacity %d", n, MaxVertices)
	}
	return nil
}

// Clone returns a deep copy, memoized properties included.
func (p *Partition) Clone() *Partition {
	c := &Partition{
		labels:        slices.Clone(p.labels),
		Operation:     p.Operation,
		OriginalIndex: p.OriginalIndex,
		memo:          p.memo,
	}
	c.memo.connected = maps.Clone(p.memo.connected)
	c.memo.independent = maps.Clone(p.memo.independent)
	return c
}

// Size returns the number of vertices.
func (p *Partition) Size() int { return len(p.labels) }

func (p *Partition) checkVertex(v int) {
	if v < 0 || v >= len(p.labels) {
		panic(fmt.Sprintf("partition: vertex %d out of range [0, %d)", v, len(p.labels)))
	}
}

func (p *Partition) checkGraph(g *graph.Graph) {
	if g.NumVertices() != len(p.labels) {
		panic(fmt.Sprintf("partition: graph has %d vertices, partition has %d", g.NumVertices(), len(p.labels)))
	}
}

// Label returns the block of v. It panics if v is out of range.
func (p *Partition) Label(v int) int {
	p.checkVertex(v)
	return p.labels[v]
}

// SetLabel moves v to block label. It panics if v is out of range or label
// is negative.
func (p *Partition) SetLabel(v, label int) {
	p.checkVertex(v)
	if label < 0 {
		panic(fmt.Sprintf("partition: negative label %d for vertex %d", label, v))
	}
	if p.labels[v] != label {
		p.labels[v] = label
		p.memo.reset()
	}
}

// Labels returns a copy of the label assignment.
func (p *Partition) Labels() []int { return slices.Clone(p.labels) }

// MergeBlocks relabels every vertex of block from to into. Merging a block
// with itself does nothing.
func (p *Partition) MergeBlocks(into, from int) {
	if into == from {
		return
	}
	changed := false
	for v, l := range p.labels {
		if l == from {
			p.labels[v] = into
			changed = true
		}
	}
	if changed {
		p.memo.reset()
	}
}

// NumBlocks returns the number of distinct labels.
func (p *Partition) NumBlocks() int {
	if p.memo.numBlocks == 0 {
		seen := make(map[int]struct{}, len(p.labels))
		for _, l := range p.labels {
			seen[l] = struct{}{}
		}
		p.memo.numBlocks = len(seen)
	}
	return p.memo.numBlocks
}

// Blocks maps every block label to its vertices in ascending order.
func (p *Partition) Blocks() map[int][]int {
	blocks := make(map[int][]int)
	for v, l := range p.labels {
		blocks[l] = append(blocks[l], v)
	}
	return blocks
}

// BlockIDs returns the labels in use in ascending order.
func (p *Partition) BlockIDs() []int {
	return slices.Sorted(maps.Keys(p.Blocks()))
}

// BlockVertices returns the vertices of block in ascending order, or nil.
func (p *Partition) BlockVertices(block int) []int {
	var out []int
	for v, l := range p.labels {
		if l == block {
			out = append(out, v)
		}
	}
	return out
}

// BlockSize returns the number of vertices in block.
func (p *Partition) BlockSize(block int) int {
	n := 0
	for _, l := range p.labels {
		if l == block {
			n++
		}
	}
	return n
}

// HasBlock reports whether some vertex carries label block.
func (p *Partition) HasBlock(block int) bool {
	return slices.Contains(p.labels, block)
}

// MaxLabel returns the largest label in use.
func (p *Partition) MaxLabel() int {
	return slices.Max(p.labels)
}
