// Package qi computes the qi-number of a quotient graph.
//
// For a partition with k blocks whose quotient graph is Q, the qi-number is
// k - χ(Q). Equivalently it is the largest value of Σ(|G_i| - 1) over covers
// of Q's vertices by disjoint independent sets G_i.
//
// # Exact Search
//
// [Exact] and [ExactAtLeast] enumerate such covers by backtracking. The
// thresholded variant stops as soon as the threshold is reached, since the
// caller only needs a pass or fail answer.
//
// # Engine
//
// [Engine] picks a strategy by quotient size. Small quotients are searched
// exactly. Large ones are handed to a [coloring.Oracle]; its color count c
// bounds χ(Q) from above, so k - c is a lower bound on the qi-number. When
// the bound reaches the threshold it is returned, otherwise the engine
// reports [Undetermined] instead of starting an exponential search:
//
//	e := qi.DefaultEngine()
//	res := e.Compute(q, required)
//	switch {
//	case !res.Determined():
//	    // partial
//	case res.Value >= required:
//	    // pass
//	default:
//	    // fail
//	}
//
// Oracle failures never escape the engine. They are reported through
// [observability.QiHooks] and treated as a missing bound.
package qi
