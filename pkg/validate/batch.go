package validate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/report"
)

// Job is one graph of a batch.
type Job struct {
	Name  string
	Graph *graph.Graph
}

// RunBatch validates every job with at most concurrency runs in flight
// (values below 1 mean 1). Job i runs with seed opts.Seed+i and its own
// name; reports come back in job order. The first error cancels the
// remaining runs and is returned. opts.Progress, when set, is called from
// several goroutines.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job, opts Options, concurrency int) ([]*report.Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	reports := make([]*report.Report, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, job := range jobs {
		g.Go(func() error {
			o := opts
			o.Name = job.Name
			o.Seed = opts.Seed + uint64(i)
			rep, err := r.Run(gctx, job.Graph, o)
			reports[i] = rep
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
