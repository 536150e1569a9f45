package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/report"
	"github.com/matzehuels/qivalidate/pkg/validate"
)

type validateFlags struct {
	criticalK   int
	seed        uint64
	maxSteps    int
	noCache     bool
	save        bool
	json        bool
	concurrency int
}

func (c *CLI) validateCommand() *cobra.Command {
	var f validateFlags

	cmd := &cobra.Command{
		Use:   "validate <graph>...",
		Short: "Run the merge-and-validate loop on graph files",
		Long: `Validate coarsens the identity partition of each graph by random Mc merges
until critical_k blocks remain, checking qi >= k - critical_k + 1 after every
merge.

Exit status is 0 when every graph passes, 1 when any step failed and 2 when
no step failed but some qi-number could not be determined.`,
		Example: `  qivalidate validate special/petersen.txt
  qivalidate validate --seed 7 --critical-k 4 cycle_9.txt
  qivalidate validate --concurrency 8 --save procedural/cycles/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				f.seed = cfg.Seed
			}
			if !cmd.Flags().Changed("concurrency") {
				f.concurrency = cfg.Concurrency
			}
			return c.runValidate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, f)
		},
	}

	cmd.Flags().IntVarP(&f.criticalK, "critical-k", "k", 0, "target block count (overrides the k= line)")
	cmd.Flags().Uint64VarP(&f.seed, "seed", "s", 0, "random seed (default from config)")
	cmd.Flags().IntVar(&f.maxSteps, "max-steps", 0, "stop after this many merges (0 = no limit)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not read or write the qi cache")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the report")
	cmd.Flags().BoolVar(&f.json, "json", false, "print reports as JSON")
	cmd.Flags().IntVarP(&f.concurrency, "concurrency", "j", 0, "graphs validated in parallel (default from config)")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, out, errOut io.Writer, paths []string, f validateFlags) error {
	jobs := make([]validate.Job, len(paths))
	for i, path := range paths {
		g, err := c.loadGraph(path)
		if err != nil {
			return err
		}
		jobs[i] = validate.Job{Name: filepath.Base(path), Graph: g}
	}

	runner, closeCache, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return err
	}
	defer closeCache()

	opts := validate.Options{
		Seed:      f.seed,
		CriticalK: f.criticalK,
		MaxSteps:  f.maxSteps,
		NoCache:   f.noCache,
	}

	prog := newProgress(c.Logger)
	var reports []*report.Report
	if len(jobs) == 1 {
		rep, err := c.validateOne(ctx, out, errOut, runner, jobs[0], opts, f.json)
		if rep != nil {
			reports = []*report.Report{rep}
		}
		if err != nil {
			return err
		}
	} else {
		spin := newSpinner(ctx, errOut, fmt.Sprintf("Validating %d graphs...", len(jobs)))
		spin.Start()
		reports, err = runner.RunBatch(ctx, jobs, opts, f.concurrency)
		spin.Stop()
		if err != nil {
			return err
		}
		if !f.json {
			printBatch(out, reports)
		}
	}
	prog.done(fmt.Sprintf("Validated %d graph(s)", len(reports)))

	if f.save {
		if err := c.saveReports(ctx, out, reports, f.json); err != nil {
			return err
		}
	}
	if f.json {
		if err := writeReportsJSON(out, reports); err != nil {
			return err
		}
	}
	if code := exitCodeFor(reports); code != ExitPass {
		return &ExitError{Code: code}
	}
	return nil
}

// validateOne runs a single graph, printing step lines as they are checked
// unless asJSON is set.
func (c *CLI) validateOne(ctx context.Context, out, errOut io.Writer, runner *validate.Runner, job validate.Job, opts validate.Options, asJSON bool) (*report.Report, error) {
	opts.Name = job.Name
	g := job.Graph

	var spin *Spinner
	if asJSON {
		spin = newSpinner(ctx, errOut, "Validating "+job.Name+"...")
		opts.Progress = func(s report.Step) {
			spin.Update(fmt.Sprintf("Validating %s: %d blocks, qi %s", job.Name, s.Blocks, formatQi(s.Qi)))
		}
		spin.Start()
		defer spin.Stop()
	} else {
		k := g.CriticalK()
		if opts.CriticalK > 0 {
			k = opts.CriticalK
		}
		fmt.Fprintln(out, StyleTitle.Render(job.Name))
		printDetail(out, "Loaded graph with %d vertices, %d edges, k'=%d", g.NumVertices(), g.EdgeCount(), k)
		printDetail(out, "Seed %d, engine %s", opts.Seed, runner.Engine.Signature())
		fmt.Fprintln(out)
		opts.Progress = func(s report.Step) { printStep(out, s) }
	}

	rep, err := runner.Run(ctx, g, opts)
	if err != nil {
		return rep, err
	}
	if spin != nil {
		spin.Stop()
	}
	if !asJSON {
		printSummary(out, rep)
	}
	return rep, nil
}

func (c *CLI) saveReports(ctx context.Context, out io.Writer, reports []*report.Report, quiet bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	store, err := cfg.OpenReports(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, rep := range reports {
		if err := store.Save(ctx, rep); err != nil {
			return err
		}
		c.Logger.Debug("saved report", "id", rep.ID, "graph", rep.Graph.Name)
		if !quiet {
			printInfo(out, "Saved report %s", StyleValue.Render(rep.ID))
		}
	}
	return nil
}

func writeReportsJSON(w io.Writer, reports []*report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		return enc.Encode(reports[0])
	}
	return enc.Encode(reports)
}

// exitCodeFor returns the worst outcome's exit code.
func exitCodeFor(reports []*report.Report) int {
	code := ExitPass
	for _, rep := range reports {
		switch rep.Outcome {
		case report.VerdictFail:
			return ExitFail
		case report.VerdictPartial:
			code = ExitPartial
		}
	}
	return code
}

// printBatch prints one table row per report.
func printBatch(w io.Writer, reports []*report.Report) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, len(reports))
	for i, rep := range reports {
		rows[i] = []string{
			rep.Graph.Name,
			fmt.Sprint(rep.Graph.Vertices),
			fmt.Sprint(rep.Graph.CriticalK),
			fmt.Sprint(rep.Seed),
			fmt.Sprint(len(rep.Steps) - 1),
			fmt.Sprintf("%d / %s", rep.FinalBlocks, formatQi(rep.FinalQi)),
			string(rep.Outcome),
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Graph", "n", "k'", "Seed", "Merges", "Final k / qi", "Outcome").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 6 && row < len(reports) {
				return verdictStyle(reports[row].Outcome)
			}
			return lipgloss.NewStyle()
		})
	fmt.Fprintln(w, t.Render())

	var pass, fail, partial int
	for _, rep := range reports {
		switch rep.Outcome {
		case report.VerdictPass:
			pass++
		case report.VerdictFail:
			fail++
		default:
			partial++
		}
	}
	fmt.Fprintf(w, "%s  %s  %s\n",
		StyleSuccess.Render(fmt.Sprintf("%d passed", pass)),
		StyleError.Render(fmt.Sprintf("%d failed", fail)),
		StyleWarning.Render(fmt.Sprintf("%d partial", partial)))
}
