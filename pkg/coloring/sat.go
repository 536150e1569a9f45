package coloring

import (
	"slices"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/matzehuels/qivalidate/pkg/errors"
)

// SAT computes the chromatic number exactly. It starts from the DSATUR
// coloring and asks the gini solver whether one color fewer suffices until
// the answer is UNSAT. With a positive Timeout a query that runs out of time
// ends the descent and the best coloring found so far is returned, which is
// still a valid upper bound.
type SAT struct {
	Timeout time.Duration
}

// Name implements Oracle.
func (SAT) Name() string { return NameSAT }

// Color implements Oracle.
func (s SAT) Color(g Graph) (res Result, err error) {
	best, err := Dsatur{}.Color(g)
	if err != nil {
		return Result{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeOracleFailed, "sat solver panicked: %v", r)
		}
	}()

	vertices := slices.Clone(g.Vertices)
	slices.Sort(vertices)
	for c := best.Count - 1; c >= 1; c-- {
		colors, status := s.solve(vertices, g.Adjacency, c)
		if status != 1 {
			break
		}
		best = normalize(vertices, colors)
	}
	return best, nil
}

// solve encodes "g is c-colorable" with one variable per (vertex, color):
// every vertex takes at least one and at most one color, adjacent vertices
// never share one, and vertex i may only use colors 0..i.
func (s SAT) solve(vertices []int, adj map[int][]int, c int) (map[int]int, int) {
	solver := gini.New()
	index := make(map[int]int, len(vertices))
	lits := make([][]z.Lit, len(vertices))
	for i, v := range vertices {
		index[v] = i
		lits[i] = make([]z.Lit, c)
		for j := range c {
			lits[i][j] = solver.Lit()
		}
	}

	clause := func(ms ...z.Lit) {
		for _, m := range ms {
			solver.Add(m)
		}
		solver.Add(z.LitNull)
	}

	for i := range vertices {
		clause(lits[i]...)
		for j := range c {
			for l := j + 1; l < c; l++ {
				clause(lits[i][j].Not(), lits[i][l].Not())
			}
			if j > i {
				clause(lits[i][j].Not())
			}
		}
	}
	for i, v := range vertices {
		for _, u := range adj[v] {
			k, ok := index[u]
			if !ok || k <= i {
				continue
			}
			for j := range c {
				clause(lits[i][j].Not(), lits[k][j].Not())
			}
		}
	}

	var status int
	if s.Timeout > 0 {
		status = solver.Try(s.Timeout)
	} else {
		status = solver.Solve()
	}
	if status != 1 {
		return nil, status
	}

	colors := make(map[int]int, len(vertices))
	for i, v := range vertices {
		for j := range c {
			if solver.Value(lits[i][j]) {
				colors[v] = j
				break
			}
		}
	}
	return colors, status
}
