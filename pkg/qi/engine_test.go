package qi

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qivalidate/pkg/coloring"
	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/observability"
)

func build(k int, edges [][2]int) *Quotient {
	q := NewQuotientSize(k)
	for _, e := range edges {
		q.Connect(e[0], e[1])
	}
	return q
}

func cycle(k int) *Quotient {
	q := NewQuotientSize(k)
	for i := range k {
		q.Connect(i, (i+1)%k)
	}
	return q
}

func complete(k int) *Quotient {
	q := NewQuotientSize(k)
	for i := range k {
		for j := i + 1; j < k; j++ {
			q.Connect(i, j)
		}
	}
	return q
}

func petersen() *Quotient {
	q := NewQuotientSize(10)
	for i := range 5 {
		q.Connect(i, (i+1)%5)
		q.Connect(i, i+5)
		q.Connect(i+5, (i+2)%5+5)
	}
	return q
}

func random(r *rand.Rand, k int, p float64) *Quotient {
	q := NewQuotientSize(k)
	for i := range k {
		for j := i + 1; j < k; j++ {
			if r.Float64() < p {
				q.Connect(i, j)
			}
		}
	}
	return q
}

// chromatic computes χ(q) by trying 1, 2, ... colors with plain backtracking.
func chromatic(q *Quotient) int {
	k := q.Size()
	if k == 0 {
		return 0
	}
	colors := make([]int, k)
	var try func(v, c int) bool
	try = func(v, c int) bool {
		if v == k {
			return true
		}
		for col := range c {
			ok := true
			for u := range v {
				if q.Adjacent(u, v) && colors[u] == col {
					ok = false
					break
				}
			}
			if ok {
				colors[v] = col
				if try(v+1, c) {
					return true
				}
			}
		}
		return false
	}
	for c := 1; ; c++ {
		if try(0, c) {
			return c
		}
	}
}

func TestExactKnownGraphs(t *testing.T) {
	tests := []struct {
		name string
		q    *Quotient
		want int
	}{
		{"Empty", NewQuotientSize(0), 0},
		{"Single", NewQuotientSize(1), 0},
		{"TwoIsolated", NewQuotientSize(2), 1},
		{"Edge", build(2, [][2]int{{0, 1}}), 0},
		{"FourCycle", cycle(4), 2},
		{"FiveCycle", cycle(5), 2},
		{"K4", complete(4), 0},
		{"Edgeless6", NewQuotientSize(6), 5},
		{"Petersen", petersen(), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Exact(tt.q))
		})
	}
}

func TestExactMatchesChromatic(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for k := 2; k <= 9; k++ {
		for _, p := range []float64{0.2, 0.5, 0.8} {
			for trial := range 4 {
				q := random(r, k, p)
				t.Run(fmt.Sprintf("k%d_p%.1f_%d", k, p, trial), func(t *testing.T) {
					assert.Equal(t, k-chromatic(q), Exact(q), "quotient %s", q)
				})
			}
		}
	}
}

func TestExactMatchesSATUpToLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive search on large quotients")
	}
	r := rand.New(rand.NewPCG(13, 17))
	for k := 10; k <= DefaultExactLimit; k++ {
		for _, p := range []float64{0.3, 0.5, 0.8} {
			for trial := range 2 {
				q := random(r, k, p)
				t.Run(fmt.Sprintf("k%d_p%.1f_%d", k, p, trial), func(t *testing.T) {
					res, err := coloring.SAT{}.Color(q.ColoringGraph())
					require.NoError(t, err)
					assert.Equal(t, k-res.Count, Exact(q), "quotient %s", q)
				})
			}
		}
	}
}

func TestExactAtLeastEarlyStop(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for trial := range 30 {
		q := random(r, 3+trial%8, 0.4)
		truth := Exact(q)
		for threshold := 1; threshold <= q.Size(); threshold++ {
			got := ExactAtLeast(q, threshold)
			if threshold <= truth {
				assert.GreaterOrEqual(t, got, threshold, "quotient %s threshold %d", q, threshold)
				assert.LessOrEqual(t, got, truth)
			} else {
				assert.Equal(t, truth, got, "quotient %s threshold %d", q, threshold)
			}
		}
	}
}

func TestExactAtLeastNonPositiveThresholdIsExact(t *testing.T) {
	q := petersen()
	assert.Equal(t, 7, ExactAtLeast(q, 0))
	assert.Equal(t, 7, ExactAtLeast(q, -3))
}

// stubOracle returns a fixed count with a trivially proper coloring, or err.
type stubOracle struct {
	count int
	err   error
	calls int
}

func (o *stubOracle) Name() string { return "stub" }

func (o *stubOracle) Color(g coloring.Graph) (coloring.Result, error) {
	o.calls++
	if o.err != nil {
		return coloring.Result{}, o.err
	}
	r := coloring.Result{Colors: make(map[int]int), Count: o.count}
	for i, v := range g.Vertices {
		r.Colors[v] = i % o.count
	}
	return r, nil
}

// improperOracle claims one color for everything.
type improperOracle struct{}

func (improperOracle) Name() string { return "improper" }

func (improperOracle) Color(g coloring.Graph) (coloring.Result, error) {
	r := coloring.Result{Colors: make(map[int]int), Count: 1}
	for _, v := range g.Vertices {
		r.Colors[v] = 0
	}
	return r, nil
}

func TestEngineCompute(t *testing.T) {
	edgeless20 := NewQuotientSize(20)

	tests := []struct {
		name       string
		engine     *Engine
		q          *Quotient
		threshold  int
		wantValue  int
		wantMethod Method
	}{
		{"Trivial", DefaultEngine(), NewQuotientSize(1), 5, 0, MethodTrivial},
		{"NoThreshold", DefaultEngine(), cycle(4), 0, 2, MethodExact},
		{"SmallExact", DefaultEngine(), cycle(4), 2, 2, MethodExact},
		{"SmallBelowThreshold", DefaultEngine(), complete(4), 1, 0, MethodExact},
		{"HeuristicClears", &Engine{Oracle: &stubOracle{count: 4}}, edgeless20, 10, 16, MethodHeuristic},
		{"HeuristicShort", &Engine{Oracle: &stubOracle{count: 15}}, edgeless20, 10, Undetermined, MethodUndetermined},
		{"OracleFails", &Engine{Oracle: &stubOracle{err: errors.New(errors.ErrCodeOracleFailed, "boom")}}, edgeless20, 3, Undetermined, MethodUndetermined},
		{"ImproperColoring", &Engine{Oracle: improperOracle{}}, cycle(20), 3, Undetermined, MethodUndetermined},
		{"LowLimit", &Engine{ExactLimit: 4}, cycle(6), 2, 4, MethodHeuristic},
		{"NilEngine", nil, cycle(4), 1, 1, MethodExact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.engine.Compute(tt.q, tt.threshold)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.wantMethod, got.Method)
		})
	}
}

func TestEngineOracleFirst(t *testing.T) {
	t.Run("BoundClears", func(t *testing.T) {
		o := &stubOracle{count: 2}
		e := &Engine{Oracle: o, OracleFirst: true}
		got := e.Compute(cycle(6), 3)
		assert.Equal(t, Result{Value: 4, Method: MethodHeuristic, Colors: 2}, got)
		assert.Equal(t, 1, o.calls)
	})

	t.Run("FallsBackToExactOnShortBound", func(t *testing.T) {
		o := &stubOracle{count: 6}
		e := &Engine{Oracle: o, OracleFirst: true}
		got := e.Compute(cycle(6), 3)
		assert.Equal(t, MethodExact, got.Method)
		assert.Equal(t, 3, got.Value)
	})

	t.Run("FallsBackToExactOnFailure", func(t *testing.T) {
		o := &stubOracle{err: errors.New(errors.ErrCodeOracleFailed, "boom")}
		e := &Engine{Oracle: o, OracleFirst: true}
		got := e.Compute(complete(5), 1)
		assert.Equal(t, Result{Value: 0, Method: MethodExact}, got)
	})
}

func TestEngineHeuristicIsSound(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))
	e := &Engine{Oracle: coloring.Dsatur{}, ExactLimit: 2}
	for trial := range 20 {
		q := random(r, 10, 0.3)
		truth := Exact(q)
		for threshold := 1; threshold <= truth+2; threshold++ {
			got := e.Compute(q, threshold)
			if !got.Determined() {
				continue
			}
			require.Equal(t, MethodHeuristic, got.Method)
			assert.GreaterOrEqual(t, got.Value, threshold, "trial %d", trial)
			assert.LessOrEqual(t, got.Value, truth, "trial %d", trial)
		}
	}
}

type recordingQiHooks struct {
	observability.NoopQiHooks
	computed []string
	failures []string
}

func (h *recordingQiHooks) OnQiComputed(_ int, method string, _ int, _ time.Duration) {
	h.computed = append(h.computed, method)
}

func (h *recordingQiHooks) OnOracleFailure(oracle string, _ int, _ error) {
	h.failures = append(h.failures, oracle)
}

func TestEngineEmitsHooks(t *testing.T) {
	h := &recordingQiHooks{}
	observability.SetQiHooks(h)
	defer observability.Reset()

	e := &Engine{Oracle: &stubOracle{err: errors.New(errors.ErrCodeOracleFailed, "boom")}}
	e.Compute(cycle(4), 1)
	e.Compute(NewQuotientSize(20), 3)

	assert.Equal(t, []string{"exact", "undetermined"}, h.computed)
	assert.Equal(t, []string{"stub"}, h.failures)
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine("sat", 12)
	require.NoError(t, err)
	assert.Equal(t, coloring.NameSAT, e.Oracle.Name())
	assert.Equal(t, 12, e.ExactLimit)

	_, err = NewEngine("sat", 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = NewEngine("nope", 16)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestEngineSignature(t *testing.T) {
	var nilEngine *Engine
	assert.Equal(t, "dsatur:16", nilEngine.Signature())
	assert.Equal(t, "dsatur:16", DefaultEngine().Signature())
	assert.Equal(t, "sat:12:oracle-first", (&Engine{Oracle: coloring.SAT{}, ExactLimit: 12, OracleFirst: true}).Signature())
}
