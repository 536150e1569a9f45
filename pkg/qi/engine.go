package qi

import (
	"fmt"
	"time"

	"github.com/matzehuels/qivalidate/pkg/coloring"
	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/observability"
)

// Undetermined is the qi value reported when the engine can neither prove
// the threshold nor afford the exact search.
const Undetermined = -1

// DefaultExactLimit is the largest quotient the engine searches exactly
// when a threshold is given.
const DefaultExactLimit = 16

// Method names how a [Result] was obtained.
type Method string

const (
	MethodTrivial      Method = "trivial"
	MethodExact        Method = "exact"
	MethodHeuristic    Method = "heuristic"
	MethodUndetermined Method = "undetermined"
)

// Result is the outcome of one engine call.
type Result struct {
	// Value is the qi-number, a lower bound that already clears the
	// threshold, or Undetermined.
	Value  int    `json:"value"`
	Method Method `json:"method"`
	// Colors is the oracle's color count on the heuristic path, else 0.
	Colors int `json:"colors,omitempty"`
}

// Determined reports whether Value carries a number.
func (r Result) Determined() bool { return r.Value != Undetermined }

// Engine chooses between exact search and the coloring oracle.
// The zero value uses DSATUR and DefaultExactLimit.
type Engine struct {
	Oracle     coloring.Oracle
	ExactLimit int

	// OracleFirst consults the oracle before exact search on thresholded
	// calls of any size. Quotients within the exact limit still fall back to
	// exact search when the oracle fails or its bound falls short.
	OracleFirst bool
}

// DefaultEngine returns an engine with the DSATUR oracle and the default
// exact limit.
func DefaultEngine() *Engine {
	return &Engine{Oracle: coloring.Dsatur{}, ExactLimit: DefaultExactLimit}
}

// NewEngine returns an engine for the named oracle.
func NewEngine(oracle string, exactLimit int) (*Engine, error) {
	o, err := coloring.ByName(oracle)
	if err != nil {
		return nil, err
	}
	if exactLimit < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "exact limit must be at least 1, got %d", exactLimit)
	}
	return &Engine{Oracle: o, ExactLimit: exactLimit}, nil
}

// Limit is the largest quotient size searched exactly.
func (e *Engine) Limit() int {
	if e == nil || e.ExactLimit <= 0 {
		return DefaultExactLimit
	}
	return e.ExactLimit
}

func (e *Engine) oracleFirst() bool {
	return e != nil && e.OracleFirst
}

func (e *Engine) oracle() coloring.Oracle {
	if e == nil || e.Oracle == nil {
		return coloring.Dsatur{}
	}
	return e.Oracle
}

// Signature names the settings that can change a thresholded result, for
// scoping cached values: "dsatur:16", or "sat:12:oracle-first".
func (e *Engine) Signature() string {
	s := fmt.Sprintf("%s:%d", e.oracle().Name(), e.Limit())
	if e.oracleFirst() {
		s += ":oracle-first"
	}
	return s
}

// Compute returns the qi-number of q as far as threshold requires.
//
// A threshold of zero or less asks for the exact value at any size. Otherwise
// quotients up to the exact limit are searched with [ExactAtLeast]; larger
// ones are colored by the oracle, and k minus the color count is returned
// when it reaches threshold. Short of that the result is Undetermined. A
// returned value that is at least threshold never exceeds the true
// qi-number.
func (e *Engine) Compute(q *Quotient, threshold int) Result {
	start := time.Now()
	res := e.compute(q, threshold)
	observability.Qi().OnQiComputed(q.Size(), string(res.Method), res.Value, time.Since(start))
	return res
}

func (e *Engine) compute(q *Quotient, threshold int) Result {
	k := q.Size()
	switch {
	case k <= 1:
		return Result{Value: 0, Method: MethodTrivial}
	case threshold <= 0:
		return Result{Value: Exact(q), Method: MethodExact}
	case k <= e.Limit() && !e.oracleFirst():
		return Result{Value: ExactAtLeast(q, threshold), Method: MethodExact}
	}

	oracle := e.oracle()
	c, err := colorCount(oracle, q)
	if err != nil {
		observability.Qi().OnOracleFailure(oracle.Name(), k, err)
		if k <= e.Limit() {
			return Result{Value: ExactAtLeast(q, threshold), Method: MethodExact}
		}
		return Result{Value: Undetermined, Method: MethodUndetermined}
	}
	if lower := k - c; lower >= threshold {
		return Result{Value: lower, Method: MethodHeuristic, Colors: c}
	}
	if k <= e.Limit() {
		return Result{Value: ExactAtLeast(q, threshold), Method: MethodExact}
	}
	return Result{Value: Undetermined, Method: MethodUndetermined, Colors: c}
}

// colorCount asks the oracle for a coloring of q and checks it is proper.
func colorCount(o coloring.Oracle, q *Quotient) (int, error) {
	g := q.ColoringGraph()
	r, err := o.Color(g)
	if err != nil {
		return 0, err
	}
	if err := coloring.Verify(g, r); err != nil {
		return 0, errors.Wrap(errors.ErrCodeOracleFailed, err, "%s returned an improper coloring", o.Name())
	}
	return r.Count, nil
}
