// Package graph provides the immutable graph that every partition and qi
// computation reads, its file formats, and generators for the standard
// validation suite.
//
// # Core Types
//
//   - [Graph]: undirected simple graph on vertices 0..n-1 plus the critical
//     block count (critical k) the validation driver coarsens towards
//   - [Edge]: an undirected edge, always reported with U < V
//   - [Document]: JSON form used by the HTTP API and stored reports
//
// # Text Format
//
// Graph files use the format of the original validation harness:
//
//	10
//	0 1
//	1 2
//	...
//	k=6
//
// The first line is the vertex count, each following line one edge, and the
// k= line the critical block count. Invalid edges (endpoint out of range or
// a self-loop) are skipped and reported as [SkippedEdge] values:
//
//	g, skipped, err := graph.ReadGraphFile("petersen.txt")
//	for _, s := range skipped {
//	    logger.Warn(s.String())
//	}
//
// Files ending in .json are read and written as a [Document] instead.
//
// # Generators
//
// [Generate] builds named families (cycle, wheel, complete, mycielski,
// petersen, octahedral, icosahedral, dodecahedral, grotzsch, chvatal) with
// the critical k values used by the harness. [Suite] returns the standard
// directory layout of test graphs.
//
// # Concurrency
//
// A Graph is never mutated after construction and is safe for concurrent
// use.
package graph
