package ops

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/partition"
)

func mustGraph(t *testing.T, n int, edges ...[2]int) *graph.Graph {
	t.Helper()
	es := make([]graph.Edge, len(edges))
	for i, e := range edges {
		es[i] = graph.Edge{U: e[0], V: e[1]}
	}
	g, err := graph.New(n, 1, es)
	require.NoError(t, err)
	return g
}

func mustLabels(t *testing.T, labels ...int) *partition.Partition {
	t.Helper()
	p, err := partition.FromLabels(labels)
	require.NoError(t, err)
	return p
}

func fourCycle(t *testing.T) *graph.Graph {
	return mustGraph(t, 4, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 0})
}

func path(t *testing.T, n int) *graph.Graph {
	var edges [][2]int
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return mustGraph(t, n, edges...)
}

func identity(t *testing.T, n int) *partition.Partition {
	t.Helper()
	p, err := partition.New(n)
	require.NoError(t, err)
	return p
}

func TestMuOnConnectedPairFails(t *testing.T) {
	g := fourCycle(t)
	p := identity(t, 4)
	before := p.String()

	r := NewSeeded(1, nil).Mu(p, g, 0, 1)
	assert.False(t, r.Success)
	assert.Equal(t, "Mu failed: blocks 0 and 1 are connected", r.Description)
	assert.Equal(t, before, p.String())
	require.NotNil(t, r.Partition)
	assert.True(t, r.Partition.Equal(p))
	assert.NotSame(t, p, r.Partition)
}

func TestMcOnUnconnectedPairFails(t *testing.T) {
	g := fourCycle(t)
	p := identity(t, 4)

	r := NewSeeded(1, nil).Mc(p, g, 0, 2)
	assert.False(t, r.Success)
	assert.Equal(t, "Mc failed: blocks 0 and 2 are not connected", r.Description)
	assert.Equal(t, "[0-1-2-3]", p.String())
}

func TestMergeSuccess(t *testing.T) {
	g := fourCycle(t)
	o := NewSeeded(1, nil)

	mu := o.Mu(identity(t, 4), g, 0, 2)
	require.True(t, mu.Success)
	assert.Equal(t, "Mu: merged blocks 0 and 2", mu.Description)
	assert.Equal(t, []int{0, 1, 0, 2}, mu.Partition.Labels())
	assert.Equal(t, []int{2}, mu.Moved)
	assert.Equal(t, 0, mu.EdgeDelta)
	assert.Equal(t, 0, mu.Block1)
	assert.Equal(t, 2, mu.Block2)
	assert.Equal(t, mu.Description, mu.Partition.Operation)

	mc := o.Mc(identity(t, 4), g, 0, 1)
	require.True(t, mc.Success)
	assert.Equal(t, "Mc: merged connected blocks 0 and 1", mc.Description)
	assert.Equal(t, []int{0, 0, 1, 2}, mc.Partition.Labels())
	assert.Equal(t, 1, mc.EdgeDelta)
}

func TestMergePreconditions(t *testing.T) {
	g := fourCycle(t)
	p := identity(t, 4)
	o := NewSeeded(1, nil)

	tests := []struct {
		name string
		r    Result
		want string
	}{
		{"MuSelf", o.Mu(p, g, 1, 1), "Mu failed: cannot merge block 1 with itself"},
		{"McSelf", o.Mc(p, g, 2, 2), "Mc failed: cannot merge block 2 with itself"},
		{"MuMissingFirst", o.Mu(p, g, 9, 1), "Mu failed: block 9 does not exist"},
		{"McMissingSecond", o.Mc(p, g, 0, 7), "Mc failed: block 7 does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.r.Success)
			assert.Equal(t, tt.want, tt.r.Description)
		})
	}
}

func TestMergePreservesVertices(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 13))
	o := NewSeeded(2, nil)

	for trial := range 40 {
		n := 3 + r.IntN(8)
		var edges [][2]int
		for u := range n {
			for v := u + 1; v < n; v++ {
				if r.Float64() < 0.35 {
					edges = append(edges, [2]int{u, v})
				}
			}
		}
		g := mustGraph(t, n, edges...)
		labels := make([]int, n)
		for v := range labels {
			labels[v] = r.IntN(n)
		}
		p := mustLabels(t, labels...)
		ids := p.BlockIDs()

		for i, a := range ids {
			for _, b := range ids[i+1:] {
				mu, mc := o.Mu(p, g, a, b), o.Mc(p, g, a, b)
				require.NotEqual(t, mu.Success, mc.Success, "trial %d blocks %d %d", trial, a, b)
				res := mu
				if mc.Success {
					res = mc
				}
				out := res.Partition

				assert.Equal(t, labels, p.Labels(), "input mutated")
				require.Equal(t, n, out.Size())
				assert.Equal(t, p.NumBlocks()-1, out.NumBlocks())
				assert.True(t, out.IsCanonical())

				// merged blocks share a label, every other pairing is kept
				for u := range n {
					for v := range n {
						same := labels[u] == labels[v]
						merged := (labels[u] == a || labels[u] == b) && (labels[v] == a || labels[v] == b)
						assert.Equal(t, same || merged, out.Label(u) == out.Label(v))
					}
				}
			}
		}
	}
}

func TestSc(t *testing.T) {
	g := path(t, 3)
	p := mustLabels(t, 0, 0, 0)

	for seed := range uint64(10) {
		r := NewSeeded(seed, nil).Sc(p, g, 0, -1)
		require.True(t, r.Success)
		require.Len(t, r.Moved, 1)
		v := r.Moved[0]
		assert.Contains(t, []int{0, 2}, v, "only path ends are spanning-tree leaves")
		assert.Equal(t, 1, r.Partition.Label(v))
		assert.Equal(t, 2, r.Partition.NumBlocks())
		assert.Equal(t, -1, r.EdgeDelta)
		assert.True(t, strings.HasPrefix(r.Description, "Sc: split block 0 (moved vertex "))
	}
	assert.Equal(t, []int{0, 0, 0}, p.Labels())
}

func TestScComponentIndex(t *testing.T) {
	// block 0 = {0,1} + {3,4}; block 1 = {2}
	g := mustGraph(t, 5, [2]int{0, 1}, [2]int{1, 2}, [2]int{3, 4})
	p := mustLabels(t, 0, 0, 1, 0, 0)
	o := NewSeeded(3, nil)

	r := o.Sc(p, g, 0, 1)
	require.True(t, r.Success)
	assert.Contains(t, []int{3, 4}, r.Moved[0])
	assert.Equal(t, 2, r.Partition.Label(r.Moved[0]))

	assert.False(t, o.Sc(p, g, 1, -1).Success)
	assert.False(t, o.Sc(p, g, 0, 5).Success)
	f := o.Sc(identity(t, 5), g, 0, -1)
	assert.Equal(t, "Sc failed: no splittable component found", f.Description)
}

func TestSpanningTreeLeaves(t *testing.T) {
	// star centered at 0 plus the edge 1-2
	g := mustGraph(t, 4, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}, [2]int{1, 2})
	// DFS from 0: 0-1, 1-2, back to 0, 0-3 -> leaves 2 and 3
	assert.Equal(t, []int{2, 3}, spanningTreeLeaves([]int{0, 1, 2, 3}, g))
}

func TestSu(t *testing.T) {
	g := path(t, 4)
	p := mustLabels(t, 0, 1, 0, 0)
	o := NewSeeded(1, nil)

	r := o.Su(p, g, 0)
	require.True(t, r.Success)
	assert.Equal(t, "Su: split unconnected block 0 into 2 blocks", r.Description)
	assert.Equal(t, []int{0, 1, 2, 2}, r.Partition.Labels())
	assert.Equal(t, []int{2, 3}, r.Moved)
	assert.Equal(t, 0, r.EdgeDelta)

	f := o.Su(p, g, 1)
	assert.False(t, f.Success)
	assert.Equal(t, "Su failed: block 1 is already connected", f.Description)

	assert.Equal(t, "Su failed: block 4 does not exist", o.Su(p, g, 4).Description)
}

func TestPairs(t *testing.T) {
	g := fourCycle(t)
	p := identity(t, 4)
	assert.Equal(t, []Pair{{0, 2}, {1, 3}}, QiPairs(p, g))
	assert.Equal(t, []Pair{{0, 1}, {0, 3}, {1, 2}, {2, 3}}, ConnectedPairs(p, g))

	o := NewSeeded(1, nil)
	assert.Len(t, o.FindAllMu(p, g), 2)
	assert.Len(t, o.FindAllMc(p, g), 4)
	assert.Empty(t, o.FindAllSu(p, g))
	assert.Empty(t, o.FindAllSc(p, g))
}

func TestFindAllSc(t *testing.T) {
	g := mustGraph(t, 5, [2]int{0, 1}, [2]int{1, 2}, [2]int{3, 4})
	p := mustLabels(t, 0, 0, 1, 0, 0)
	got := NewSeeded(4, nil).FindAllSc(p, g)
	require.Len(t, got, 2)
	assert.Contains(t, []int{0, 1}, got[0].Moved[0])
	assert.Contains(t, []int{3, 4}, got[1].Moved[0])
}

func TestSelectOptimalMuPair(t *testing.T) {
	tests := []struct {
		name   string
		pairs  []Pair
		want   Pair
		wantOK bool
	}{
		{"Empty", nil, Pair{-1, -1}, false},
		{"Single", []Pair{{2, 5}}, Pair{2, 5}, true},
		{"FewestPartners", []Pair{{0, 1}, {0, 2}, {3, 4}}, Pair{3, 4}, true},
		{"TieKeepsFirst", []Pair{{0, 2}, {1, 3}, {0, 3}}, Pair{0, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectOptimalMuPair(tt.pairs)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectOptimalSc(t *testing.T) {
	c4 := fourCycle(t)
	p5 := path(t, 5)
	o := NewSeeded(1, nil)
	cand := func(labels ...int) Result {
		return Result{Success: true, Partition: mustLabels(t, labels...)}
	}

	t.Run("Empty", func(t *testing.T) {
		_, ok := o.SelectOptimalSc(nil, c4)
		assert.False(t, ok)
	})

	t.Run("PrefersQiTwo", func(t *testing.T) {
		cands := []Result{cand(0, 0, 1, 1), cand(0, 1, 0, 2), cand(0, 1, 2, 3)}
		got, ok := o.SelectOptimalSc(cands, c4)
		require.True(t, ok)
		assert.Equal(t, []int{0, 1, 2, 3}, got.Partition.Labels())
		assert.Equal(t, 2, got.Partition.QiNumber())
	})

	t.Run("FallsBackToPositive", func(t *testing.T) {
		cands := []Result{cand(0, 0, 1, 1), cand(0, 1, 0, 2)}
		got, _ := o.SelectOptimalSc(cands, c4)
		assert.Equal(t, []int{0, 1, 0, 2}, got.Partition.Labels())
	})

	t.Run("FallsBackToFirst", func(t *testing.T) {
		cands := []Result{cand(0, 0, 1, 1), cand(0, 1, 0, 1)}
		got, _ := o.SelectOptimalSc(cands, c4)
		assert.Equal(t, []int{0, 0, 1, 1}, got.Partition.Labels())
	})

	t.Run("MostQiPairs", func(t *testing.T) {
		// both have qi 2; the path quotient has 3 qi-pairs, the 4-cycle 2
		cycleQuotient := cand(0, 1, 2, 3, 0)
		pathQuotient := cand(0, 1, 2, 3, 3)
		got, _ := o.SelectOptimalSc([]Result{cycleQuotient, pathQuotient}, p5)
		assert.Same(t, pathQuotient.Partition, got.Partition)

		tie := cand(0, 0, 1, 2, 3)
		got, _ = o.SelectOptimalSc([]Result{pathQuotient, tie}, p5)
		assert.Same(t, pathQuotient.Partition, got.Partition)
	})
}

func TestSelectOptimalScBeyondExactLimit(t *testing.T) {
	// K18 without the edges 0-1, 2-3 and 4-5: both candidates have 17
	// blocks, more than the default engine searches exactly.
	missing := map[[2]int]bool{{0, 1}: true, {2, 3}: true, {4, 5}: true}
	var edges [][2]int
	for u := 0; u < 18; u++ {
		for v := u + 1; v < 18; v++ {
			if !missing[[2]int{u, v}] {
				edges = append(edges, [2]int{u, v})
			}
		}
	}
	g := mustGraph(t, 18, edges...)

	merged := func(a, b int) Result {
		labels := make([]int, 18)
		for v := range labels {
			labels[v] = v
		}
		labels[b] = a
		p := mustLabels(t, labels...)
		p.Renormalize()
		return Result{Success: true, Partition: p}
	}
	qiThree := merged(16, 17)
	qiTwo := merged(0, 1)
	require.Greater(t, qiTwo.Partition.NumBlocks(), NewSeeded(1, nil).Engine().Limit())

	got, ok := NewSeeded(1, nil).SelectOptimalSc([]Result{qiThree, qiTwo}, g)
	require.True(t, ok)
	assert.Same(t, qiTwo.Partition, got.Partition)
	assert.Equal(t, 2, got.Partition.QiNumber())
	assert.Equal(t, 3, qiThree.Partition.QiNumber())
}

func TestPairsFollowQuotient(t *testing.T) {
	g := path(t, 6)
	p := mustLabels(t, 4, 4, 1, 7, 7, 2)
	assert.Equal(t, []Pair{{1, 4}, {1, 7}, {2, 7}}, ConnectedPairs(p, g))
	assert.Equal(t, []Pair{{1, 2}, {2, 4}, {4, 7}}, QiPairs(p, g))
}

func TestScMu(t *testing.T) {
	o := NewSeeded(7, nil)

	t.Run("Success", func(t *testing.T) {
		g := path(t, 4)
		p := mustLabels(t, 0, 0, 1, 1)
		r := o.ScMu(p, g)
		require.True(t, r.Success, r.Description)
		assert.True(t, strings.HasPrefix(r.Description, "ScMu: Sc: split block 0 (moved vertex "))
		assert.Contains(t, r.Description, " + Mu: merged blocks ")
		assert.Equal(t, 2, r.Partition.NumBlocks())
		assert.Equal(t, r.Partition.InteriorEdgeCount(g)-p.InteriorEdgeCount(g), r.EdgeDelta)
		assert.GreaterOrEqual(t, len(r.Moved), 2)
		assert.Equal(t, []int{0, 0, 1, 1}, p.Labels())
	})

	t.Run("NoSc", func(t *testing.T) {
		r := o.ScMu(identity(t, 4), fourCycle(t))
		assert.False(t, r.Success)
		assert.Equal(t, "ScMu failed: no valid Sc operations available", r.Description)
	})

	t.Run("NoMu", func(t *testing.T) {
		k3 := mustGraph(t, 3, [2]int{0, 1}, [2]int{1, 2}, [2]int{0, 2})
		r := o.ScMu(mustLabels(t, 0, 0, 0), k3)
		assert.False(t, r.Success)
		assert.Equal(t, "ScMu failed: no valid Mu operations available after Sc", r.Description)
	})
}

func TestSuMc(t *testing.T) {
	o := NewSeeded(7, nil)

	t.Run("Success", func(t *testing.T) {
		g := path(t, 4)
		p := mustLabels(t, 0, 1, 0, 0)
		r := o.SuMc(p, g)
		require.True(t, r.Success, r.Description)
		assert.Equal(t, "SuMc: Su: split unconnected block 0 into 2 blocks + Mc: merged connected blocks 0 and 1", r.Description)
		assert.Equal(t, []int{0, 0, 1, 1}, r.Partition.Labels())
		assert.Equal(t, 1, r.EdgeDelta)
		assert.Equal(t, []int{2, 3, 1}, r.Moved)
	})

	t.Run("NoSu", func(t *testing.T) {
		r := o.SuMc(identity(t, 4), fourCycle(t))
		assert.Equal(t, "SuMc failed: no valid Su operations available", r.Description)
	})

	t.Run("NoMc", func(t *testing.T) {
		r := o.SuMc(mustLabels(t, 0, 0), mustGraph(t, 2))
		assert.Equal(t, "SuMc failed: no valid Mc operations available after Su", r.Description)
	})
}

func TestRandomMc(t *testing.T) {
	g := fourCycle(t)
	p := identity(t, 4)

	r := NewSeeded(5, nil).RandomMc(p, g)
	require.True(t, r.Success)
	assert.Equal(t, 3, r.Partition.NumBlocks())
	assert.True(t, p.AreBlocksConnected(g, r.Block1, r.Block2))

	stalled := NewSeeded(5, nil).RandomMc(identity(t, 3), mustGraph(t, 3))
	assert.False(t, stalled.Success)
	assert.Equal(t, 3, stalled.Partition.NumBlocks())
}

func TestRandomMcIsReproducible(t *testing.T) {
	g := mustGraph(t, 6, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3}, [2]int{3, 4}, [2]int{4, 5}, [2]int{5, 0}, [2]int{0, 3})
	run := func(seed uint64) []string {
		o := NewSeeded(seed, nil)
		p := identity(t, 6)
		var trace []string
		for p.NumBlocks() > 1 {
			r := o.RandomMc(p, g)
			require.True(t, r.Success)
			p = r.Partition
			trace = append(trace, p.String())
		}
		return trace
	}
	assert.Equal(t, run(42), run(42))
}

func TestRandomMcOnLargePath(t *testing.T) {
	if testing.Short() {
		t.Skip("large graph")
	}
	const n = 3000
	g := path(t, n)
	o := NewSeeded(5, nil)
	p := identity(t, n)

	start := time.Now()
	for i := range 30 {
		r := o.RandomMc(p, g)
		require.True(t, r.Success, r.Description)
		require.Equal(t, n-i-1, r.Partition.NumBlocks())
		assert.True(t, r.Partition.IsConnectedPartition(g))
		p = r.Partition
	}
	// each step is linear in the graph plus the quotient
	assert.Less(t, time.Since(start), 5*time.Second)
}
