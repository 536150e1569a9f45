package graph

import (
	"fmt"
	"path"
	"slices"

	"github.com/matzehuels/qivalidate/pkg/errors"
)

// =============================================================================
// Graph Families
// =============================================================================

// Family describes a named graph generator.
type Family struct {
	Name        string
	Description string
	// Sized families take a size parameter; the others are fixed graphs.
	Sized       bool
	DefaultSize int
	MinSize     int
	MaxSize     int

	build func(size int) ([]Edge, int, int) // edges, vertex count, critical k
}

var families = []Family{
	{Name: "cycle", Description: "cycle C_n", Sized: true, DefaultSize: 7, MinSize: 3, MaxSize: MaxVertices, build: cycleEdges},
	{Name: "wheel", Description: "wheel W_n (hub 0 plus an (n-1)-cycle)", Sized: true, DefaultSize: 6, MinSize: 4, MaxSize: MaxVertices, build: wheelEdges},
	{Name: "complete", Description: "complete graph K_n", Sized: true, DefaultSize: 4, MinSize: 1, MaxSize: 2000, build: completeEdges},
	{Name: "mycielski", Description: "Mycielski graph M_n (triangle-free, n-chromatic)", Sized: true, DefaultSize: 4, MinSize: 2, MaxSize: 14, build: mycielskiEdges},
	{Name: "petersen", Description: "Petersen graph (10 vertices, 3-regular)", build: fixed(petersenEdges(), 10, 6)},
	{Name: "octahedral", Description: "octahedral graph (6 vertices, 4-regular)", build: fixed(octahedralEdges(), 6, 5)},
	{Name: "icosahedral", Description: "icosahedral graph (12 vertices, 5-regular)", build: fixed(icosahedralEdges(), 12, 6)},
	{Name: "dodecahedral", Description: "dodecahedral graph (20 vertices, 3-regular)", build: fixed(lcfEdges(20, []int{10, 7, 4, -4, -7, 10, -4, 7, -7, 4}, 2), 20, 5)},
	{Name: "grotzsch", Description: "Grötzsch graph (11 vertices, triangle-free, 4-chromatic)", build: fixed(mycielskian(5, cycleList(5)), 11, 5)},
	{Name: "chvatal", Description: "Chvátal graph (12 vertices, 4-regular, 4-chromatic)", build: fixed(chvatalEdges(), 12, 5)},
}

// Families returns the available generators sorted by name.
func Families() []Family {
	out := slices.Clone(families)
	slices.SortFunc(out, func(a, b Family) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out
}

// LookupFamily finds a generator by name.
func LookupFamily(name string) (Family, bool) {
	for _, f := range families {
		if f.Name == name {
			return f, true
		}
	}
	return Family{}, false
}

// Generate builds a graph of the named family. size is ignored by fixed
// families; zero selects the family default. criticalK < 0 keeps the
// family's default target.
func Generate(name string, size, criticalK int) (*Graph, error) {
	f, ok := LookupFamily(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown graph family %q", name)
	}
	if f.Sized {
		if size == 0 {
			size = f.DefaultSize
		}
		if size < f.MinSize || size > f.MaxSize {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s size must be in [%d, %d], got %d", name, f.MinSize, f.MaxSize, size)
		}
	}
	edges, n, k := f.build(size)
	if criticalK >= 0 {
		k = criticalK
	}
	return New(n, k, edges)
}

// =============================================================================
// Test Suite
// =============================================================================

// SuiteEntry is one file of the standard test suite.
type SuiteEntry struct {
	Path  string // slash-separated, relative to the suite root
	Graph *Graph
}

// Suite returns the standard validation suite: classic graphs under
// special/, cycles under procedural/cycles/ and wheels under
// procedural/families/wheels/.
func Suite() ([]SuiteEntry, error) {
	var out []SuiteEntry
	add := func(dir, file, family string, size int) error {
		g, err := Generate(family, size, -1)
		if err != nil {
			return err
		}
		out = append(out, SuiteEntry{Path: path.Join(dir, file), Graph: g})
		return nil
	}

	for _, name := range []string{"petersen", "octahedral", "icosahedral", "dodecahedral", "grotzsch"} {
		if err := add("special", name+".txt", name, 0); err != nil {
			return nil, err
		}
	}
	for _, n := range []int{7, 9, 11, 15, 20} {
		if err := add("procedural/cycles", fmt.Sprintf("cycle_%d.txt", n), "cycle", n); err != nil {
			return nil, err
		}
	}
	for _, n := range []int{6, 8, 10} {
		if err := add("procedural/families/wheels", fmt.Sprintf("wheel_%d.txt", n), "wheel", n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// =============================================================================
// Constructions
// =============================================================================

func fixed(edges []Edge, n, k int) func(int) ([]Edge, int, int) {
	return func(int) ([]Edge, int, int) { return edges, n, k }
}

func cycleList(n int) []Edge {
	edges := make([]Edge, 0, n)
	for i := range n {
		edges = append(edges, Edge{U: i, V: (i + 1) % n})
	}
	return edges
}

func cycleEdges(n int) ([]Edge, int, int) {
	return cycleList(n), n, max(3, n/2)
}

func wheelEdges(n int) ([]Edge, int, int) {
	rim := n - 1
	edges := make([]Edge, 0, 2*rim)
	for i := 1; i <= rim; i++ {
		edges = append(edges, Edge{U: 0, V: i})
		next := i%rim + 1
		edges = append(edges, Edge{U: i, V: next})
	}
	return edges, n, 4
}

func completeEdges(n int) ([]Edge, int, int) {
	edges := make([]Edge, 0, n*(n-1)/2)
	for u := range n {
		for v := u + 1; v < n; v++ {
			edges = append(edges, Edge{U: u, V: v})
		}
	}
	return edges, n, n
}

// mycielskian applies the Mycielski construction to a graph on n vertices:
// shadow vertex n+v is joined to every neighbour of v, and a centre vertex
// 2n is joined to every shadow.
func mycielskian(n int, edges []Edge) []Edge {
	out := make([]Edge, 0, 3*len(edges)+n)
	out = append(out, edges...)
	for _, e := range edges {
		out = append(out, Edge{U: e.U, V: e.V + n}, Edge{U: e.V, V: e.U + n})
	}
	for v := n; v < 2*n; v++ {
		out = append(out, Edge{U: v, V: 2 * n})
	}
	return out
}

func mycielskiEdges(m int) ([]Edge, int, int) {
	if m == 2 {
		return []Edge{{U: 0, V: 1}}, 2, m + 1
	}
	n, edges := 5, cycleList(5)
	for range m - 3 {
		edges = mycielskian(n, edges)
		n = 2*n + 1
	}
	return edges, n, m + 1
}

// lcfEdges builds a Hamiltonian cubic graph from LCF notation: a cycle on n
// vertices plus chords i -> i+shift.
func lcfEdges(n int, shifts []int, repeats int) []Edge {
	edges := cycleList(n)
	for i := range len(shifts) * repeats {
		v := ((i+shifts[i%len(shifts)])%n + n) % n
		edges = append(edges, Edge{U: i % n, V: v})
	}
	return edges
}

func fromAdjacency(adj map[int][]int) []Edge {
	var edges []Edge
	for u, vs := range adj {
		for _, v := range vs {
			edges = append(edges, Edge{U: u, V: v})
		}
	}
	return edges
}

func petersenEdges() []Edge {
	var edges []Edge
	for i := range 5 {
		edges = append(edges,
			Edge{U: i, V: (i + 1) % 5},
			Edge{U: i, V: i + 5},
			Edge{U: i + 5, V: (i+2)%5 + 5},
		)
	}
	return edges
}

func octahedralEdges() []Edge {
	opposite := map[int]int{0: 5, 5: 0, 1: 4, 4: 1, 2: 3, 3: 2}
	var edges []Edge
	for u := range 6 {
		for v := u + 1; v < 6; v++ {
			if opposite[u] != v {
				edges = append(edges, Edge{U: u, V: v})
			}
		}
	}
	return edges
}

func icosahedralEdges() []Edge {
	return fromAdjacency(map[int][]int{
		0:  {1, 5, 7, 8, 11},
		1:  {2, 5, 6, 8},
		2:  {3, 6, 8, 9},
		3:  {4, 6, 9, 10},
		4:  {5, 6, 10, 11},
		5:  {6, 11},
		7:  {8, 9, 10, 11},
		8:  {9},
		9:  {10},
		10: {11},
	})
}

func chvatalEdges() []Edge {
	return fromAdjacency(map[int][]int{
		0: {1, 4, 6, 9},
		1: {2, 5, 7},
		2: {3, 6, 8},
		3: {4, 7, 9},
		4: {5, 8},
		5: {10, 11},
		6: {10, 11},
		7: {8, 11},
		8: {10},
		9: {10, 11},
	})
}
