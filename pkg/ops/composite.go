package ops

import (
	"fmt"
	"slices"

	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/partition"
)

// =============================================================================
// Enumeration
// =============================================================================

// FindAllSc applies Sc to every splittable component of every block, blocks
// in ascending order, and returns the successful results.
func (o *Operator) FindAllSc(p *partition.Partition, g *graph.Graph) []Result {
	var out []Result
	for _, b := range p.BlockIDs() {
		for i, comp := range p.BlockComponents(g, b) {
			if len(comp) < 2 {
				continue
			}
			if r := o.Sc(p, g, b, i); r.Success {
				out = append(out, r)
			}
		}
	}
	return out
}

// FindAllSu applies Su to every disconnected block.
func (o *Operator) FindAllSu(p *partition.Partition, g *graph.Graph) []Result {
	var out []Result
	for _, b := range p.BlockIDs() {
		if p.IsBlockConnected(g, b) {
			continue
		}
		if r := o.Su(p, g, b); r.Success {
			out = append(out, r)
		}
	}
	return out
}

// FindAllMu applies Mu to every qi-pair.
func (o *Operator) FindAllMu(p *partition.Partition, g *graph.Graph) []Result {
	var out []Result
	for _, pr := range QiPairs(p, g) {
		if r := o.Mu(p, g, pr.A, pr.B); r.Success {
			out = append(out, r)
		}
	}
	return out
}

// FindAllMc applies Mc to every connected pair.
func (o *Operator) FindAllMc(p *partition.Partition, g *graph.Graph) []Result {
	var out []Result
	for _, pr := range ConnectedPairs(p, g) {
		if r := o.Mc(p, g, pr.A, pr.B); r.Success {
			out = append(out, r)
		}
	}
	return out
}

// QiPairs returns every pair of blocks with no edge between them.
func QiPairs(p *partition.Partition, g *graph.Graph) []Pair {
	return pairs(p, g, false)
}

// ConnectedPairs returns every pair of blocks joined by an edge.
func ConnectedPairs(p *partition.Partition, g *graph.Graph) []Pair {
	return pairs(p, g, true)
}

// pairs reads a pair list off one quotient, in ascending block order.
// Connected pairs are the quotient edges; qi-pairs are the complement.
func pairs(p *partition.Partition, g *graph.Graph, connected bool) []Pair {
	q := p.Quotient(g)
	var out []Pair
	if connected {
		for _, e := range q.Edges() {
			out = append(out, Pair{A: q.Block(e[0]), B: q.Block(e[1])})
		}
		return out
	}
	k := q.Size()
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if !q.Adjacent(i, j) {
				out = append(out, Pair{A: q.Block(i), B: q.Block(j)})
			}
		}
	}
	return out
}

// =============================================================================
// Selection
// =============================================================================

// scQiThreshold caps the exact qi search when ranking Sc candidates: values
// below it are exact, and reaching it only means "more than 2".
const scQiThreshold = 3

// SelectOptimalSc picks the Sc result to follow with Mu. It prefers results
// whose partition has qi-number 2, and among those the one with the most
// qi-pairs; then the first with a positive qi-number; then the first. It
// returns false when cands is empty.
func (o *Operator) SelectOptimalSc(cands []Result, g *graph.Graph) (Result, bool) {
	switch len(cands) {
	case 0:
		return Result{}, false
	case 1:
		return cands[0], true
	}

	best, bestPairs := -1, -1
	positive := -1
	for i, c := range cands {
		v := c.Partition.ExactQiAtLeast(g, scQiThreshold)
		switch {
		case v == 2:
			if n := len(QiPairs(c.Partition, g)); n > bestPairs {
				best, bestPairs = i, n
			}
		case v > 0 && positive < 0:
			positive = i
		}
	}
	switch {
	case best >= 0:
		return cands[best], true
	case positive >= 0:
		return cands[positive], true
	}
	return cands[0], true
}

// SelectOptimalMuPair picks the qi-pair whose blocks have the fewest other
// merge partners: the pair minimizing the sum of both blocks' qi-pair
// counts. Ties go to the earlier pair.
func SelectOptimalMuPair(qiPairs []Pair) (Pair, bool) {
	switch len(qiPairs) {
	case 0:
		return Pair{A: -1, B: -1}, false
	case 1:
		return qiPairs[0], true
	}

	antiDegree := make(map[int]int)
	for _, pr := range qiPairs {
		antiDegree[pr.A]++
		antiDegree[pr.B]++
	}
	best := qiPairs[0]
	bestSum := antiDegree[best.A] + antiDegree[best.B]
	for _, pr := range qiPairs[1:] {
		if s := antiDegree[pr.A] + antiDegree[pr.B]; s < bestSum {
			best, bestSum = pr, s
		}
	}
	return best, true
}

// =============================================================================
// Composites
// =============================================================================

// ScMu splits with the Sc chosen by SelectOptimalSc, then merges the
// qi-pair chosen by SelectOptimalMuPair.
func (o *Operator) ScMu(p *partition.Partition, g *graph.Graph) Result {
	sc, ok := o.SelectOptimalSc(o.FindAllSc(p, g), g)
	if !ok {
		return failed(p, -1, -1, "ScMu failed: no valid Sc operations available")
	}
	pair, ok := SelectOptimalMuPair(QiPairs(sc.Partition, g))
	if !ok {
		return failed(p, -1, -1, "ScMu failed: no valid Mu operations available after Sc")
	}
	mu := o.Mu(sc.Partition, g, pair.A, pair.B)
	if !mu.Success {
		return failed(p, -1, -1, "ScMu failed: Mu operation failed after successful Sc")
	}
	return combine("ScMu", p, g, sc, mu)
}

// SuMc splits the first disconnected block, then merges the first
// connected pair of the result.
func (o *Operator) SuMc(p *partition.Partition, g *graph.Graph) Result {
	sus := o.FindAllSu(p, g)
	if len(sus) == 0 {
		return failed(p, -1, -1, "SuMc failed: no valid Su operations available")
	}
	su := sus[0]
	conn := ConnectedPairs(su.Partition, g)
	if len(conn) == 0 {
		return failed(p, -1, -1, "SuMc failed: no valid Mc operations available after Su")
	}
	mc := o.Mc(su.Partition, g, conn[0].A, conn[0].B)
	if !mc.Success {
		return failed(p, -1, -1, "SuMc failed: Mc operation failed after successful Su")
	}
	return combine("SuMc", p, g, su, mc)
}

func combine(name string, in *partition.Partition, g *graph.Graph, first, second Result) Result {
	r := second
	r.Description = fmt.Sprintf("%s: %s + %s", name, first.Description, second.Description)
	r.EdgeDelta = second.Partition.InteriorEdgeCount(g) - in.InteriorEdgeCount(g)
	r.Moved = slices.Concat(first.Moved, second.Moved)
	r.Partition.Operation = r.Description
	return r
}

// RandomMc merges a connected pair drawn uniformly at random. With no
// connected pair left it fails and carries an unchanged copy of p, which
// tells the caller that coarsening has stalled.
func (o *Operator) RandomMc(p *partition.Partition, g *graph.Graph) Result {
	conn := ConnectedPairs(p, g)
	if len(conn) == 0 {
		return failed(p, -1, -1, "Mc failed: no connected block pairs")
	}
	pr := conn[o.rng.IntN(len(conn))]
	return o.Mc(p, g, pr.A, pr.B)
}
