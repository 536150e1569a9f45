package graph_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/qivalidate/pkg/graph"
)

func ExampleWriteGraph() {
	g, err := graph.New(4, 2, []graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 2, V: 3}, {U: 3, V: 0}})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	if err := graph.WriteGraph(g, os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// 4
	// 0 1
	// 0 3
	// 1 2
	// 2 3
	// k=2
}

func ExampleReadGraph() {
	input := `5
0 1
1 2
2 2
3 9
k=3
`
	g, skipped, err := graph.ReadGraph(strings.NewReader(input))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("vertices=%d edges=%d k=%d\n", g.NumVertices(), g.EdgeCount(), g.CriticalK())
	for _, s := range skipped {
		fmt.Println(s)
	}
	// Output:
	// vertices=5 edges=2 k=3
	// line 4: invalid edge (2, 2) ignored: self-loop
	// line 5: invalid edge (3, 9) ignored: endpoint out of range
}

func ExampleGenerate() {
	g, err := graph.Generate("petersen", 0, -1)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Printf("vertices=%d edges=%d k=%d\n", g.NumVertices(), g.EdgeCount(), g.CriticalK())
	// Output:
	// vertices=10 edges=15 k=6
}
