package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// path0to5 is the path 0-1-2-3-4-5 plus the chord 0-5.
func path0to5(t *testing.T) *Partition {
	return mustLabels(t, 0, 0, 1, 0, 2, 1)
}

func TestAreBlocksConnected(t *testing.T) {
	g := mustGraph(t, 6, 2, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5}, [2]int{0, 5})
	p := path0to5(t)

	tests := []struct {
		b1, b2 int
		want   bool
	}{
		{0, 1, true},  // 1-2
		{1, 0, true},  // symmetric
		{0, 2, true},  // 3-4
		{1, 2, true},  // 4-5
		{0, 0, false}, // never to itself
		{0, 9, false}, // unknown block
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.AreBlocksConnected(g, tt.b1, tt.b2), "(%d, %d)", tt.b1, tt.b2)
	}

	sparse := mustGraph(t, 4, 2, [2]int{0, 1}, [2]int{2, 3})
	q := mustLabels(t, 0, 0, 1, 1)
	assert.False(t, q.AreBlocksConnected(sparse, 0, 1))
}

func TestBlockComponents(t *testing.T) {
	// 0-1 2-3-4 5, all in block 0; 6 alone in block 1
	g := mustGraph(t, 7, 2, [2]int{0, 1}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 6})
	p := mustLabels(t, 0, 0, 0, 0, 0, 0, 1)

	assert.Equal(t, [][]int{{0, 1}, {2, 3, 4}, {5}}, p.BlockComponents(g, 0))
	assert.Equal(t, [][]int{{6}}, p.BlockComponents(g, 1))
	assert.Nil(t, p.BlockComponents(g, 7))

	assert.False(t, p.IsBlockConnected(g, 0))
	assert.True(t, p.IsBlockConnected(g, 1))
	assert.False(t, p.IsConnectedPartition(g))
}

func TestBlockComponentsDiscoveryOrder(t *testing.T) {
	// star centered at 3 inside one block
	g := mustGraph(t, 5, 1, [2]int{3, 0}, [2]int{3, 1}, [2]int{3, 4}, [2]int{1, 2})
	p := mustLabels(t, 0, 0, 0, 0, 0)
	assert.Equal(t, [][]int{{0, 3, 1, 4, 2}}, p.BlockComponents(g, 0))
}

func TestBlockIndependent(t *testing.T) {
	g := mustGraph(t, 4, 2, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 0})
	p := mustLabels(t, 0, 1, 0, 1)
	assert.True(t, p.BlockIndependent(g, 0))
	assert.True(t, p.IsBlockIndependent(g, 1))
	assert.True(t, p.IsIndependentPartition(g))

	q := mustLabels(t, 0, 0, 1, 1)
	assert.False(t, q.BlockIndependent(g, 0))
	assert.False(t, q.IsIndependentPartition(g))
	assert.True(t, q.IsConnectedPartition(g))
}

func TestQuotient(t *testing.T) {
	g := mustGraph(t, 6, 2, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5}, [2]int{0, 5})
	p := mustLabels(t, 4, 4, 1, 4, 7, 1)

	q := p.Quotient(g)
	assert.Equal(t, 3, q.Size())
	assert.Equal(t, []int{1, 4, 7}, q.Blocks())
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {1, 2}}, q.Edges())
	assert.Equal(t, "k=3 edges=[1-4 1-7 4-7]", q.String())
}

func TestCalculateProperties(t *testing.T) {
	g := mustGraph(t, 4, 2, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 0})
	p := mustLabels(t, 0, 0, 1, 1)
	p.CalculateProperties(g)

	assert.Equal(t, 2, p.memo.interior)
	assert.Equal(t, map[int]bool{0: true, 1: true}, p.memo.connected)
	assert.Equal(t, map[int]bool{0: false}, p.memo.independent)
}
