package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/validate"
)

func (c *CLI) qiCommand() *cobra.Command {
	var (
		labels    string
		threshold int
		noCache   bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "qi <graph>",
		Short: "Compute the qi-number of a partition",
		Long: `Qi prints k - χ(Q) for the quotient graph Q of a partition with k blocks.

Without --threshold the value is exact, which needs the partition to have at
most exact_limit blocks. With --threshold N the search stops as soon as N is
reached, and larger quotients are bounded with the coloring oracle.`,
		Example: `  qivalidate qi petersen.txt
  qivalidate qi --labels 0,0,1,1,2 c5.txt
  qivalidate qi --threshold 3 dodecahedral.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			p, err := parseLabels(labels, g)
			if err != nil {
				return err
			}
			runner, closeCache, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer closeCache()
			if threshold <= 0 && p.NumBlocks() > runner.Engine.Limit() {
				return errors.New(errors.ErrCodeCapacityExceeded,
					"exact qi needs at most %d blocks, partition has %d; pass --threshold", runner.Engine.Limit(), p.NumBlocks())
			}

			prog := newProgress(c.Logger)
			res, hit := runner.Qi(ctx, g, validate.GraphHash(g), p, threshold, noCache)
			c.Logger.Debug("qi computed", "blocks", p.NumBlocks(), "method", res.Method, "cached", hit, "duration", prog.elapsed())

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"partition": p.String(),
					"blocks":    p.NumBlocks(),
					"threshold": threshold,
					"result":    res,
					"cache_hit": hit,
				})
			}

			printKeyValue(out, "Partition", p.String())
			printKeyValue(out, "Blocks", p.NumBlocks())
			printKeyValue(out, "Quotient", p.Quotient(g).String())
			value := formatQi(res.Value)
			if threshold > 0 && res.Value >= threshold {
				value = fmt.Sprintf("%s (>= %d, stopped early)", value, threshold)
			}
			printKeyValue(out, "qi", value)
			printKeyValue(out, "Method", res.Method)
			if res.Colors > 0 {
				printKeyValue(out, "Colors", res.Colors)
			}
			if hit {
				printDetail(out, "cached")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&labels, "labels", "l", "", "comma-separated block label per vertex (default identity)")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "stop once qi reaches this value (0 = exact)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not read or write the qi cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}
