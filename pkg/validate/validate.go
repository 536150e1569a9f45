// Package validate runs the merge-and-validate loop over a graph.
//
// Starting from the identity partition, a run merges a random pair of
// connected blocks (Mc) until the partition has critical_k blocks. After
// each merge it checks that the qi-number of the new partition is at least
// k - critical_k + 1, where k is the current block count, and records the
// check as a [report.Step].
//
// # Verdicts
//
// A step passes when qi reaches the required value, fails when qi is known
// to be below it, and is partial when the engine left qi undetermined. The
// first failed step ends the run. The run outcome is FAIL if any step after
// the identity (or the final partition) failed, PARTIAL if none failed but
// some were undetermined, and PASS otherwise. The identity step is recorded
// for reference only, unless it is also the final partition.
//
// # Usage
//
//	runner := validate.NewRunner(qi.DefaultEngine(), fileCache, time.Hour, logger)
//	rep, err := runner.Run(ctx, g, validate.Options{Seed: 42})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(rep.Outcome)
//
// A Runner holds no per-run state and may be shared between goroutines;
// see [Runner.RunBatch].
package validate

import (
	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/report"
)

// Strategies.
const (
	// StrategyMc merges a uniformly random connected pair per step.
	StrategyMc = "mc"
)

// Options controls one run.
type Options struct {
	// Name labels the graph in the report, usually its file name.
	Name string

	// Seed fixes the random merges. Runs with the same graph, seed and
	// engine produce identical reports apart from IDs and timings.
	Seed uint64

	// CriticalK overrides the graph's critical_k when positive.
	CriticalK int

	// MaxSteps stops the run after that many merges. Zero means no limit.
	MaxSteps int

	// Strategy selects the coarsening operation; empty means StrategyMc.
	Strategy string

	// NoCache skips cache reads and writes.
	NoCache bool

	// Progress, when set, is called with every recorded step.
	Progress func(report.Step)
}

// criticalK resolves the target block count for g.
func (o *Options) criticalK(g *graph.Graph) (int, error) {
	k := g.CriticalK()
	if o.CriticalK > 0 {
		k = o.CriticalK
	}
	if k < 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "critical_k is required (the graph has no k= line)")
	}
	return k, nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Strategy == "" {
		o.Strategy = StrategyMc
	}
	if o.Strategy != StrategyMc {
		return errors.New(errors.ErrCodeInvalidInput, "unknown strategy %q (want %s)", o.Strategy, StrategyMc)
	}
	if o.CriticalK < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "critical_k cannot be negative: %d", o.CriticalK)
	}
	if o.MaxSteps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max steps cannot be negative: %d", o.MaxSteps)
	}
	return nil
}
