package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/qivalidate/pkg/coloring"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/partition"
)

// Mode selects the diagram.
type Mode string

const (
	ModeQuotient Mode = "quotient"
	ModeClusters Mode = "clusters"
)

// Options configures DOT generation.
type Options struct {
	// Mode defaults to ModeQuotient.
	Mode Mode

	// Detailed lists each block's vertices in its quotient label and puts
	// crossing-edge counts on quotient edges.
	Detailed bool

	// Oracle, when set, colors the quotient and fills every block with its
	// color class.
	Oracle coloring.Oracle

	// Title is drawn above the diagram.
	Title string
}

// palette holds the fill colors for color classes; classes beyond it reuse
// colors cyclically.
var palette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

// ToDOT returns Graphviz source for p over g.
func ToDOT(g *graph.Graph, p *partition.Partition, opts Options) string {
	fills := blockFills(g, p, opts.Oracle)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n  splines=true;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}

	switch opts.Mode {
	case ModeClusters:
		buf.WriteString("  layout=fdp;\n")
		buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n\n")
		writeClusters(&buf, g, p, fills)
	default:
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n\n")
		writeQuotient(&buf, g, p, fills, opts.Detailed)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeQuotient(buf *bytes.Buffer, g *graph.Graph, p *partition.Partition, fills map[int]string, detailed bool) {
	for _, b := range p.BlockIDs() {
		attrs := []string{fmt.Sprintf("label=%q", blockLabel(p, b, detailed))}
		if f, ok := fills[b]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", f))
		}
		if !p.IsBlockConnected(g, b) {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
		fmt.Fprintf(buf, "  b%d [%s];\n", b, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	counts := crossings(g, p)
	q := p.Quotient(g)
	for _, e := range q.Edges() {
		a, b := q.Block(e[0]), q.Block(e[1])
		if detailed {
			fmt.Fprintf(buf, "  b%d -- b%d [label=\"%d\"];\n", a, b, counts[[2]int{a, b}])
		} else {
			fmt.Fprintf(buf, "  b%d -- b%d;\n", a, b)
		}
	}
}

func blockLabel(p *partition.Partition, b int, detailed bool) string {
	vs := p.BlockVertices(b)
	if !detailed {
		return fmt.Sprintf("B%d (%d)", b, len(vs))
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("B%d\n{%s}", b, strings.Join(parts, ", "))
}

func writeClusters(buf *bytes.Buffer, g *graph.Graph, p *partition.Partition, fills map[int]string) {
	for _, b := range p.BlockIDs() {
		fmt.Fprintf(buf, "  subgraph cluster_%d {\n", b)
		fmt.Fprintf(buf, "    label=\"B%d\";\n    style=rounded;\n", b)
		if f, ok := fills[b]; ok {
			fmt.Fprintf(buf, "    node [fillcolor=%q];\n", f)
		}
		for _, v := range p.BlockVertices(b) {
			fmt.Fprintf(buf, "    v%d [label=\"%d\"];\n", v, v)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if p.Label(e.U) == p.Label(e.V) {
			fmt.Fprintf(buf, "  v%d -- v%d [penwidth=2];\n", e.U, e.V)
		} else {
			fmt.Fprintf(buf, "  v%d -- v%d [color=grey];\n", e.U, e.V)
		}
	}
}

// crossings counts graph edges per block pair, keyed with the smaller
// label first.
func crossings(g *graph.Graph, p *partition.Partition) map[[2]int]int {
	out := make(map[[2]int]int)
	for _, e := range g.Edges() {
		a, b := p.Label(e.U), p.Label(e.V)
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		out[[2]int{a, b}]++
	}
	return out
}

// blockFills colors the quotient with o. A nil oracle or an oracle error
// leaves every block white.
func blockFills(g *graph.Graph, p *partition.Partition, o coloring.Oracle) map[int]string {
	if o == nil {
		return nil
	}
	q := p.Quotient(g)
	res, err := o.Color(q.ColoringGraph())
	if err != nil {
		return nil
	}
	fills := make(map[int]string, q.Size())
	for i := range q.Size() {
		if c, ok := res.Colors[i]; ok {
			fills[q.Block(i)] = palette[c%len(palette)]
		}
	}
	return fills
}
