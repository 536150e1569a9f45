// Package ops transforms partitions by splitting and merging blocks.
//
// The four elementary operations are
//
//   - Sc: move one leaf of a spanning tree of a block component to a new block
//   - Su: split a disconnected block into its components
//   - Mu: merge two blocks with no edge between them
//   - Mc: merge two blocks joined by at least one edge
//
// ScMu and SuMc chain them greedily, and RandomMc drives the
// merge-and-validate loop. No operation mutates its input partition: each
// returns a [Result] holding a fresh partition, also on failure.
//
// An [Operator] carries the random source and the qi engine its results are
// evaluated with. It is not safe for concurrent use; give every goroutine
// its own.
package ops

import (
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/partition"
	"github.com/matzehuels/qivalidate/pkg/qi"
)

// Result is the outcome of an operation.
type Result struct {
	Success     bool
	Partition   *partition.Partition
	Description string
	// EdgeDelta is the interior edge count of Partition minus that of the
	// input.
	EdgeDelta int
	// Block1 and Block2 are the blocks the operation acted on, -1 if unused.
	Block1, Block2 int
	// Moved lists the vertices that changed block.
	Moved []int
}

// Pair is two block labels with A < B.
type Pair struct {
	A, B int
}

func (p Pair) String() string { return fmt.Sprintf("(%d, %d)", p.A, p.B) }

// Operator applies operations with an injected random source and qi engine.
type Operator struct {
	rng    *rand.Rand
	engine *qi.Engine
}

// New returns an Operator. A nil rng is replaced by a randomly seeded one and
// a nil engine by qi.DefaultEngine.
func New(rng *rand.Rand, engine *qi.Engine) *Operator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if engine == nil {
		engine = qi.DefaultEngine()
	}
	return &Operator{rng: rng, engine: engine}
}

// NewSeeded returns an Operator whose random choices are fixed by seed.
func NewSeeded(seed uint64, engine *qi.Engine) *Operator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), engine)
}

// Engine returns the qi engine of the Operator.
func (o *Operator) Engine() *qi.Engine { return o.engine }

func failed(p *partition.Partition, b1, b2 int, format string, args ...any) Result {
	return Result{
		Partition:   p.Clone(),
		Description: fmt.Sprintf(format, args...),
		Block1:      b1,
		Block2:      b2,
	}
}

// succeeded finishes a successful result: the new partition gets its
// properties computed and the operation label, and the delta is taken
// against in.
func succeeded(in, out *partition.Partition, g *graph.Graph, b1, b2 int, moved []int, desc string) Result {
	out.CalculateProperties(g)
	out.Operation = desc
	return Result{
		Success:     true,
		Partition:   out,
		Description: desc,
		EdgeDelta:   out.InteriorEdgeCount(g) - in.InteriorEdgeCount(g),
		Block1:      b1,
		Block2:      b2,
		Moved:       moved,
	}
}
