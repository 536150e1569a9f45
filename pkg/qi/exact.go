package qi

import "github.com/soniakeys/bits"

// Exact returns the qi-number of q by exhaustive search.
//
// The search covers the blocks with disjoint independent sets. At each level
// the lowest free block is the pivot; every independent set made of the pivot
// and later free blocks is tried, the set is marked used on a fresh copy of
// the free mask, and the search recurses on what is left. A set of size s
// scores s-1. The result equals k - χ(q).
func Exact(q *Quotient) int {
	return ExactAtLeast(q, 0)
}

// ExactAtLeast runs the same search as [Exact] but stops as soon as the best
// score found reaches threshold, and returns threshold in that case. When no
// cover reaches it the search completes and returns the exact qi-number,
// which is then below threshold. A threshold of zero or less disables early
// stopping.
func ExactAtLeast(q *Quotient, threshold int) int {
	k := q.Size()
	if k <= 1 {
		return 0
	}
	s := &search{q: q, threshold: threshold}
	free := bits.New(k)
	for i := range k {
		free.SetBit(i, 1)
	}
	if s.solve(free, k, 0) {
		return threshold
	}
	return s.best
}

type search struct {
	q         *Quotient
	threshold int
	best      int
}

func (s *search) done() bool {
	return s.threshold > 0 && s.best >= s.threshold
}

// solve explores covers of the blocks in free (left of them) given that the
// blocks already covered scored current. It returns true once the search
// can stop early.
func (s *search) solve(free bits.Bits, left, current int) bool {
	if left == 0 {
		if current > s.best {
			s.best = current
		}
		return s.done()
	}
	// The best any cover of the remaining blocks can add is left-1.
	if current+left-1 <= s.best {
		return false
	}

	pivot := free.OneFrom(0)
	rest := bits.New(s.q.Size())
	rest.Set(free)
	rest.SetBit(pivot, 0)

	var cands []int
	rest.IterateOnes(func(b int) bool {
		if !s.q.Adjacent(pivot, b) {
			cands = append(cands, b)
		}
		return true
	})

	return s.extend(rest, left-1, []int{pivot}, cands, 0, current)
}

// extend tries group as it stands and then every independent extension of it
// by cands[from:]. free excludes the group.
func (s *search) extend(free bits.Bits, left int, group, cands []int, from, current int) bool {
	if s.solve(free, left, current+len(group)-1) {
		return true
	}
	for i := from; i < len(cands); i++ {
		c := cands[i]
		if !s.independent(c, group) {
			continue
		}
		next := bits.New(s.q.Size())
		next.Set(free)
		next.SetBit(c, 0)
		if s.extend(next, left-1, append(group, c), cands, i+1, current) {
			return true
		}
	}
	return false
}

func (s *search) independent(b int, group []int) bool {
	for _, g := range group {
		if s.q.Adjacent(b, g) {
			return false
		}
	}
	return true
}
