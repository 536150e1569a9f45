// Package coloring provides graph-coloring oracles for the qi engine.
//
// An [Oracle] takes an undirected graph as a vertex list plus adjacency
// lists and returns a proper coloring with its color count. The count is an
// upper bound on the chromatic number; the qi engine turns it into a lower
// bound on the qi-number.
//
// Two oracles are provided:
//
//   - [Dsatur]: the saturation-degree greedy heuristic from gonum
//   - [SAT]: an exact chromatic number via repeated k-colorability queries
//     to the gini SAT solver, seeded with the DSATUR bound
//
// Oracles never panic; library failures come back as errors carrying
// [errors.ErrCodeOracleFailed].
package coloring

import (
	"fmt"
	"slices"

	"github.com/matzehuels/qivalidate/pkg/errors"
)

// Graph is the oracle input: vertex ids plus symmetric adjacency lists.
type Graph struct {
	Vertices  []int
	Adjacency map[int][]int
}

// Result is a coloring: vertex id to color in 0..Count-1.
type Result struct {
	Colors map[int]int
	Count  int
}

// Oracle colors graphs.
type Oracle interface {
	Name() string
	Color(g Graph) (Result, error)
}

// Oracle names accepted by ByName.
const (
	NameDsatur = "dsatur"
	NameSAT    = "sat"
)

// ByName returns the oracle registered under name.
func ByName(name string) (Oracle, error) {
	switch name {
	case "", NameDsatur:
		return Dsatur{}, nil
	case NameSAT:
		return SAT{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown coloring oracle %q (want %s or %s)", name, NameDsatur, NameSAT)
}

// Verify checks that r colors every vertex of g, that adjacent vertices get
// different colors and that colors stay below r.Count.
func Verify(g Graph, r Result) error {
	for _, v := range g.Vertices {
		c, ok := r.Colors[v]
		if !ok {
			return fmt.Errorf("vertex %d is uncolored", v)
		}
		if c < 0 || c >= r.Count {
			return fmt.Errorf("vertex %d has color %d outside [0, %d)", v, c, r.Count)
		}
		for _, u := range g.Adjacency[v] {
			if r.Colors[u] == c {
				return fmt.Errorf("adjacent vertices %d and %d share color %d", v, u, c)
			}
		}
	}
	return nil
}

// normalize renumbers colors to 0..k-1 in order of first use over the sorted
// vertex list, so results are comparable across oracles.
func normalize(vertices []int, colors map[int]int) Result {
	sorted := slices.Clone(vertices)
	slices.Sort(sorted)
	remap := make(map[int]int)
	out := Result{Colors: make(map[int]int, len(colors))}
	for _, v := range sorted {
		c, ok := colors[v]
		if !ok {
			continue
		}
		nc, seen := remap[c]
		if !seen {
			nc = len(remap)
			remap[c] = nc
		}
		out.Colors[v] = nc
	}
	out.Count = len(remap)
	return out
}
