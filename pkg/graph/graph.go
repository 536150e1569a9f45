package graph

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/qivalidate/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// SkippedEdge describes an edge line that was read but not added to the
// graph. Loading continues past skipped edges; callers usually log them.
type SkippedEdge struct {
	Line   int
	U, V   int
	Reason string
}

func (s SkippedEdge) String() string {
	return fmt.Sprintf("line %d: invalid edge (%d, %d) ignored: %s", s.Line, s.U, s.V, s.Reason)
}

// MarshalGraph converts a graph to text-format bytes.
// Edges are written sorted, so equal graphs marshal identically.
func MarshalGraph(g *Graph) []byte {
	var buf bytes.Buffer
	_ = writeGraphTo(g, &buf)
	return buf.Bytes()
}

// WriteGraphFile writes a graph to a file. Files ending in .json are written
// as a [Document]; everything else uses the text format.
func WriteGraphFile(g *Graph, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if isJSON(path) {
		return writeDocumentTo(g, f)
	}
	return writeGraphTo(g, f)
}

// WriteGraph writes a graph in the text format to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a graph file. The format is chosen by extension:
// .json files hold a [Document], anything else the text format.
func ReadGraphFile(path string) (*Graph, []SkippedEdge, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s not found", path)
		}
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if isJSON(path) {
		g, err := readDocumentFrom(f)
		return g, nil, err
	}
	return readGraphFrom(f)
}

// ReadGraph decodes a text-format graph.
//
// The format is the vertex count on the first line, one "u v" edge per line
// and an optional "k=K" line carrying the critical block count:
//
//	4
//	0 1
//	1 2
//	k=2
//
// Blank lines and lines starting with # are ignored. Edges with an endpoint
// outside 0..n-1 or with u == v are returned as skipped instead of failing
// the whole read.
func ReadGraph(r io.Reader) (*Graph, []SkippedEdge, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func writeGraphTo(g *Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", g.n)
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "%d %d\n", e.U, e.V)
	}
	fmt.Fprintf(bw, "k=%d\n", g.criticalK)
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func writeDocumentTo(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readDocumentFrom(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph document")
	}
	return doc.ToGraph()
}

func readGraphFrom(r io.Reader) (*Graph, []SkippedEdge, error) {
	sc := bufio.NewScanner(r)

	var (
		n       = -1
		k       = 0
		haveK   bool
		edges   []Edge
		skipped []SkippedEdge
		lineNo  int
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if n < 0 {
			v, err := strconv.Atoi(line)
			if err != nil {
				return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected vertex count, got %q", lineNo, line)
			}
			if v <= 0 || v > MaxVertices {
				return nil, nil, errors.New(errors.ErrCodeInvalidGraph, "invalid number of vertices: %d", v)
			}
			n = v
			continue
		}

		if rest, ok := strings.CutPrefix(line, "k="); ok {
			if haveK {
				return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: duplicate k= line", lineNo)
			}
			v, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil || v < 0 {
				return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: invalid critical k %q", lineNo, rest)
			}
			k, haveK = v, true
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: expected \"u v\", got %q", lineNo, line)
		}
		u, errU := strconv.Atoi(fields[0])
		v, errV := strconv.Atoi(fields[1])
		if errU != nil || errV != nil {
			return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: non-integer edge %q", lineNo, line)
		}
		switch {
		case u < 0 || u >= n || v < 0 || v >= n:
			skipped = append(skipped, SkippedEdge{Line: lineNo, U: u, V: v, Reason: "endpoint out of range"})
		case u == v:
			skipped = append(skipped, SkippedEdge{Line: lineNo, U: u, V: v, Reason: "self-loop"})
		default:
			edges = append(edges, Edge{U: u, V: v})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read: %w", err)
	}
	if n < 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidFormat, "missing vertex count")
	}
	g, err := New(n, k, edges)
	if err != nil {
		return nil, nil, err
	}
	return g, skipped, nil
}
