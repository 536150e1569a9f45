package coloring

import (
	"fmt"

	"gonum.org/v1/gonum/graph/coloring"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/matzehuels/qivalidate/pkg/errors"
)

// Dsatur colors with the saturation-degree greedy heuristic.
type Dsatur struct{}

// Name implements Oracle.
func (Dsatur) Name() string { return NameDsatur }

// Color implements Oracle.
func (Dsatur) Color(g Graph) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeOracleFailed, "dsatur panicked: %v", r)
		}
	}()

	if len(g.Vertices) == 0 {
		return Result{Colors: map[int]int{}}, nil
	}

	ug := toUndirected(g)
	_, colors, cerr := coloring.Dsatur(ug, nil)
	if cerr != nil {
		return Result{}, errors.Wrap(errors.ErrCodeOracleFailed, cerr, "dsatur")
	}

	raw := make(map[int]int, len(colors))
	for id, c := range colors {
		raw[int(id)] = c
	}
	res = normalize(g.Vertices, raw)
	if len(res.Colors) != len(g.Vertices) {
		return Result{}, errors.New(errors.ErrCodeOracleFailed, "dsatur colored %d of %d vertices", len(res.Colors), len(g.Vertices))
	}
	return res, nil
}

func toUndirected(g Graph) *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for _, v := range g.Vertices {
		ug.AddNode(simple.Node(v))
	}
	for _, v := range g.Vertices {
		for _, u := range g.Adjacency[v] {
			if u == v {
				panic(fmt.Sprintf("self-loop on vertex %d", v))
			}
			ug.SetEdge(simple.Edge{F: simple.Node(v), T: simple.Node(u)})
		}
	}
	return ug
}
