package validate

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qivalidate/pkg/cache"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/observability"
	"github.com/matzehuels/qivalidate/pkg/ops"
	"github.com/matzehuels/qivalidate/pkg/partition"
	"github.com/matzehuels/qivalidate/pkg/qi"
	"github.com/matzehuels/qivalidate/pkg/report"
)

// Runner executes validation runs with a shared engine and cache.
type Runner struct {
	Engine *qi.Engine
	Store  *cache.QiStore
	Logger *log.Logger
}

// NewRunner returns a Runner. A nil engine means qi.DefaultEngine, a nil
// cache disables caching and a nil logger discards output. Cache keys are
// scoped by the engine signature.
func NewRunner(engine *qi.Engine, c cache.Cache, ttl time.Duration, logger *log.Logger) *Runner {
	if engine == nil {
		engine = qi.DefaultEngine()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keyer := cache.NewScopedKeyer(nil, engine.Signature()+":")
	return &Runner{
		Engine: engine,
		Store:  cache.NewQiStore(c, keyer, ttl),
		Logger: logger,
	}
}

// GraphHash identifies g in cache keys and reports.
func GraphHash(g *graph.Graph) string {
	return cache.Hash(graph.MarshalGraph(g))
}

// Qi computes the qi result of p over g at threshold, reading and filling
// the cache unless noCache is set. The result is also stored on p. hit
// reports a cache hit. Cache failures are logged and otherwise ignored.
func (r *Runner) Qi(ctx context.Context, g *graph.Graph, graphHash string, p *partition.Partition, threshold int, noCache bool) (res qi.Result, hit bool) {
	labels := p.Labels()
	if !noCache {
		cached, ok, err := r.Store.Get(ctx, graphHash, labels, threshold)
		if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		if ok {
			p.SetQiResult(r.Engine, g, threshold, cached)
			return cached, true
		}
	}

	res = p.CalculateQiNumberWith(r.Engine, g, threshold)
	if !noCache {
		if err := r.Store.Put(ctx, graphHash, labels, threshold, res); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		}
	}
	return res, false
}

// Run validates g and returns the report. The returned error is non-nil
// for invalid options and for cancellation; a cancelled run still returns
// the report recorded so far.
func (r *Runner) Run(ctx context.Context, g *graph.Graph, opts Options) (*report.Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	criticalK, err := opts.criticalK(g)
	if err != nil {
		return nil, err
	}
	if criticalK != g.CriticalK() {
		g = g.WithCriticalK(criticalK)
	}
	p, err := partition.New(g.NumVertices())
	if err != nil {
		return nil, err
	}
	p.Operation = "identity"

	rep := report.New()
	rep.Seed = opts.Seed
	rep.Strategy = opts.Strategy
	rep.Graph = report.Graph{
		Name:      opts.Name,
		Vertices:  g.NumVertices(),
		Edges:     g.EdgeCount(),
		CriticalK: criticalK,
		Hash:      GraphHash(g),
	}

	start := time.Now()
	hooks := observability.Validation()
	hooks.OnRunStart(ctx, rep.ID, g.NumVertices(), criticalK)
	logger := r.Logger.With("run", rep.ID[:8])
	logger.Info("validation started", "graph", opts.Name, "vertices", g.NumVertices(), "critical_k", criticalK, "seed", opts.Seed)

	op := ops.NewSeeded(opts.Seed, r.Engine)
	runErr := r.loop(ctx, logger, g, p, op, criticalK, opts, rep)

	finish(rep)
	rep.Duration = time.Since(start)
	hooks.OnRunComplete(ctx, rep.ID, string(rep.Outcome), len(rep.Steps), rep.Duration, runErr)
	logger.Info("validation finished",
		"outcome", rep.Outcome,
		"steps", len(rep.Steps),
		"final_blocks", rep.FinalBlocks,
		"duration", rep.Duration)
	return rep, runErr
}

func (r *Runner) loop(ctx context.Context, logger *log.Logger, g *graph.Graph, p *partition.Partition,
	op *ops.Operator, criticalK int, opts Options, rep *report.Report) error {
	record := func(p *partition.Partition) report.Step {
		s := r.check(ctx, g, rep, p, criticalK, opts.NoCache)
		s.Index = len(rep.Steps)
		rep.Steps = append(rep.Steps, s)
		logger.Debug("step",
			"index", s.Index,
			"blocks", s.Blocks,
			"qi", s.Qi,
			"required", s.Required,
			"verdict", s.Verdict,
			"method", s.Method)
		if opts.Progress != nil {
			opts.Progress(s)
		}
		return s
	}

	record(p)
	for p.NumBlocks() > criticalK {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.MaxSteps > 0 && len(rep.Steps) > opts.MaxSteps {
			rep.Truncated = true
			logger.Warn("step limit reached", "max_steps", opts.MaxSteps, "blocks", p.NumBlocks())
			return nil
		}

		next := op.RandomMc(p, g)
		if !next.Success || next.Partition.NumBlocks() == p.NumBlocks() {
			rep.Stalled = true
			logger.Warn("no more Mc operations available", "blocks", p.NumBlocks())
			return nil
		}
		p = next.Partition

		if s := record(p); s.Verdict == report.VerdictFail {
			logger.Error("qi below required threshold", "blocks", s.Blocks, "qi", s.Qi, "required", s.Required)
			return nil
		}
	}
	return nil
}

// check validates one partition.
func (r *Runner) check(ctx context.Context, g *graph.Graph, rep *report.Report, p *partition.Partition, criticalK int, noCache bool) report.Step {
	start := time.Now()
	k := p.NumBlocks()
	required := k - criticalK + 1
	// Any qi clears a non-positive requirement; threshold 1 keeps the
	// search bounded instead of exact.
	threshold := max(required, 1)

	res, hit := r.Qi(ctx, g, rep.Graph.Hash, p, threshold, noCache)

	s := report.Step{
		Blocks:    k,
		Qi:        res.Value,
		Required:  required,
		Verdict:   verdict(res, required),
		Method:    res.Method,
		Partition: p.String(),
		Operation: p.Operation,
		CacheHit:  hit,
		Duration:  time.Since(start),
	}
	observability.Validation().OnStep(ctx, rep.ID, s.Blocks, s.Qi, s.Required, string(s.Verdict), s.Duration)
	return s
}

func verdict(res qi.Result, required int) report.Verdict {
	switch {
	case required <= 0:
		return report.VerdictPass
	case !res.Determined():
		return report.VerdictPartial
	case res.Value >= required:
		return report.VerdictPass
	}
	return report.VerdictFail
}

// finish fills the final fields and the outcome. The identity step only
// counts when it is also the last one.
func finish(rep *report.Report) {
	if len(rep.Steps) == 0 {
		rep.Outcome = report.VerdictPartial
		return
	}
	last := rep.Steps[len(rep.Steps)-1]
	rep.FinalBlocks = last.Blocks
	rep.FinalQi = last.Qi
	rep.FinalRequired = last.Required

	judged := rep.Steps[1:]
	if len(judged) == 0 {
		judged = rep.Steps
	}
	rep.Outcome = report.VerdictPass
	for _, s := range judged {
		switch s.Verdict {
		case report.VerdictFail:
			rep.Outcome = report.VerdictFail
			return
		case report.VerdictPartial:
			rep.Outcome = report.VerdictPartial
		}
	}
}
