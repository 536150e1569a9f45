// Package render draws partitions as Graphviz diagrams.
//
// Two views are available:
//
//   - [ModeQuotient]: one node per block and an edge between two blocks
//     whenever a graph edge crosses them. This is the graph the qi engine
//     colors.
//   - [ModeClusters]: the original graph with every block drawn as a
//     cluster around its vertices.
//
// [ToDOT] produces DOT source; [RenderSVG] lays it out in-process with
// [github.com/goccy/go-graphviz]. PDF and PNG conversion shells out to
// rsvg-convert from librsvg.
//
//	dot := render.ToDOT(g, p, render.Options{Oracle: coloring.Dsatur{}})
//	svg, err := render.RenderSVG(ctx, dot)
package render
