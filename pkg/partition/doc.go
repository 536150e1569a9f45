// Package partition models a labeling of graph vertices into blocks.
//
// A [Partition] owns its labels and a memo of derived properties: the block
// count, the interior edge count, per-block connectivity and independence,
// and the qi-number. Every label change drops the memo. Operations that
// produce new partitions clone first and never touch their input.
//
// Vertex indexes are preconditions: out-of-range indexes panic. Sizes are
// checked once, at construction, against [MaxVertices].
//
// # Quotient
//
// [Partition.Quotient] derives the quotient graph consumed by package qi.
// It is rebuilt on every call and never stored.
//
// # Canonical Form
//
// [Partition.Renormalize] renumbers labels to 0..k-1 by first appearance.
// Equality and [Partition.Hash] compare raw labels, so two relabelings of
// the same blocks are different partitions until renormalized.
package partition
