package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/ops"
	"github.com/matzehuels/qivalidate/pkg/partition"
)

// opNames lists the operations accepted by "qivalidate ops".
var opNames = []string{"sc", "su", "mu", "mc", "scmu", "sumc", "random-mc"}

type opsFlags struct {
	labels    string
	block     int
	block2    int
	component int
	seed      uint64
	all       bool
}

func (c *CLI) opsCommand() *cobra.Command {
	var f opsFlags

	cmd := &cobra.Command{
		Use:   "ops <graph> <" + strings.Join(opNames, "|") + ">",
		Short: "Apply one partition operation and print the result",
		Long: `Ops applies an elementary or composite operation to a partition of the graph.

  sc         move a spanning-tree leaf of a block component to a new block
  su         split a disconnected block into its components
  mu         merge two blocks with no edge between them
  mc         merge two blocks joined by an edge
  scmu       best Sc followed by the best Mu
  sumc       first Su followed by the first Mc
  random-mc  Mc on a random connected pair

With --all, sc, su, mu and mc are tried on every applicable block or pair and
all successful results are listed.`,
		Example: `  qivalidate ops petersen.txt mc --labels 0,0,1,2,3,4,5,6,7,8 --block 0 --block2 1
  qivalidate ops c5.txt su --labels 0,1,0,1,0 --block 0
  qivalidate ops wheel_6.txt mu --all --labels 0,1,2,3,4,5`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: opNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				f.seed = cfg.Seed
			}
			engine, err := cfg.Engine()
			if err != nil {
				return err
			}
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			p, err := parseLabels(f.labels, g)
			if err != nil {
				return err
			}
			op := ops.NewSeeded(f.seed, engine)
			out := cmd.OutOrStdout()

			if f.all {
				results, err := findAll(op, args[1], p, g)
				if err != nil {
					return err
				}
				printInfo(out, "%d successful %s operation(s) on %s", len(results), args[1], p.String())
				for _, r := range results {
					printResult(out, op, g, p, r)
				}
				return nil
			}

			r, err := applyOp(op, args[1], p, g, f)
			if err != nil {
				return err
			}
			printResult(out, op, g, p, r)
			if !r.Success {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.labels, "labels", "l", "", "comma-separated block label per vertex (default identity)")
	cmd.Flags().IntVarP(&f.block, "block", "b", -1, "block to act on (sc, su) or first block to merge (mu, mc)")
	cmd.Flags().IntVar(&f.block2, "block2", -1, "second block to merge (mu, mc)")
	cmd.Flags().IntVar(&f.component, "component", -1, "component index for sc (-1 = first splittable)")
	cmd.Flags().Uint64VarP(&f.seed, "seed", "s", 0, "random seed (default from config)")
	cmd.Flags().BoolVar(&f.all, "all", false, "try every block or pair (sc, su, mu, mc)")

	return cmd
}

func applyOp(op *ops.Operator, name string, p *partition.Partition, g *graph.Graph, f opsFlags) (ops.Result, error) {
	needBlock := func() error {
		if f.block < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s needs --block", name)
		}
		return nil
	}
	needPair := func() error {
		if f.block < 0 || f.block2 < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s needs --block and --block2", name)
		}
		return nil
	}

	switch name {
	case "sc":
		if err := needBlock(); err != nil {
			return ops.Result{}, err
		}
		return op.Sc(p, g, f.block, f.component), nil
	case "su":
		if err := needBlock(); err != nil {
			return ops.Result{}, err
		}
		return op.Su(p, g, f.block), nil
	case "mu":
		if err := needPair(); err != nil {
			return ops.Result{}, err
		}
		return op.Mu(p, g, f.block, f.block2), nil
	case "mc":
		if err := needPair(); err != nil {
			return ops.Result{}, err
		}
		return op.Mc(p, g, f.block, f.block2), nil
	case "scmu":
		return op.ScMu(p, g), nil
	case "sumc":
		return op.SuMc(p, g), nil
	case "random-mc":
		return op.RandomMc(p, g), nil
	}
	return ops.Result{}, unknownOp(name)
}

func findAll(op *ops.Operator, name string, p *partition.Partition, g *graph.Graph) ([]ops.Result, error) {
	switch name {
	case "sc":
		return op.FindAllSc(p, g), nil
	case "su":
		return op.FindAllSu(p, g), nil
	case "mu":
		return op.FindAllMu(p, g), nil
	case "mc":
		return op.FindAllMc(p, g), nil
	}
	if slices.Contains(opNames, name) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--all is not supported for %s", name)
	}
	return nil, unknownOp(name)
}

func unknownOp(name string) error {
	return errors.New(errors.ErrCodeInvalidInput, "unknown operation %q (want one of %s)", name, strings.Join(opNames, ", "))
}

func printResult(w io.Writer, op *ops.Operator, g *graph.Graph, in *partition.Partition, r ops.Result) {
	if !r.Success {
		printError(w, "%s", r.Description)
		return
	}
	printSuccess(w, "%s", r.Description)
	printDetail(w, "%s %s %s", in.String(), iconArrow, r.Partition.String())
	details := []string{
		fmt.Sprintf("%d blocks", r.Partition.NumBlocks()),
		fmt.Sprintf("edge delta %+d", r.EdgeDelta),
	}
	if len(r.Moved) > 0 {
		details = append(details, "moved "+joinInts(r.Moved))
	}
	details = append(details, describeQi(op, g, r.Partition))
	if r.Partition.IsConnectedPartition(g) {
		details = append(details, "connected")
	}
	printDetail(w, "%s", strings.Join(details, " · "))
}

// describeQi evaluates p with the operator's engine at the threshold the
// validation loop would use; without a critical k the threshold is 1.
func describeQi(op *ops.Operator, g *graph.Graph, p *partition.Partition) string {
	threshold := 1
	if k := g.CriticalK(); k > 0 {
		threshold = max(p.NumBlocks()-k+1, 1)
	}
	res := p.CalculateQiNumberWith(op.Engine(), g, threshold)
	switch {
	case !res.Determined():
		return "qi undetermined"
	case res.Value >= threshold:
		return fmt.Sprintf("qi >= %d", res.Value)
	}
	return fmt.Sprintf("qi = %d", res.Value)
}
