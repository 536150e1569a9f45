package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/graph"
)

func (c *CLI) generateCommand() *cobra.Command {
	var (
		size      int
		criticalK int
		output    string
	)

	cmd := &cobra.Command{
		Use:   "generate <family>",
		Short: "Write a graph from a named family",
		Long: `Generate writes a graph of a built-in family in the text format, or as a JSON
document when the output file ends in .json. Run "qivalidate generate list"
for the families and their default sizes.`,
		Example: `  qivalidate generate petersen -o petersen.txt
  qivalidate generate cycle -n 9 --critical-k 4
  qivalidate generate suite ./graphs`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			var names []string
			for _, f := range graph.Families() {
				names = append(names, f.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.Generate(args[0], size, criticalK)
			if err != nil {
				return err
			}
			if output == "" {
				return graph.WriteGraph(g, cmd.OutOrStdout())
			}
			if err := graph.WriteGraphFile(g, output); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Generated %s (%d vertices, %d edges, k'=%d)", args[0], g.NumVertices(), g.EdgeCount(), g.CriticalK())
			printFile(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", 0, "size of sized families (0 = family default)")
	cmd.Flags().IntVarP(&criticalK, "critical-k", "k", -1, "critical_k to write (-1 = family default)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	cmd.AddCommand(c.generateListCommand())
	cmd.AddCommand(c.generateSuiteCommand())

	return cmd
}

func (c *CLI) generateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the graph families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, f := range graph.Families() {
				desc := f.Description
				if f.Sized {
					desc = fmt.Sprintf("%s, n in [%d, %d], default %d", desc, f.MinSize, f.MaxSize, f.DefaultSize)
				}
				printKeyValue(out, f.Name, desc)
			}
			return nil
		},
	}
}

func (c *CLI) generateSuiteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suite <dir>",
		Short: "Write the standard test suite of graphs",
		Long: `Suite writes the standard graphs below dir:

  special/                    petersen, octahedral, icosahedral, dodecahedral, grotzsch
  procedural/cycles/          cycle_7 to cycle_20
  procedural/families/wheels/ wheel_6 to wheel_10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := graph.Suite()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				path := filepath.Join(args[0], filepath.FromSlash(e.Path))
				if err := graph.WriteGraphFile(e.Graph, path); err != nil {
					return err
				}
				c.Logger.Debug("wrote graph", "path", path, "vertices", e.Graph.NumVertices())
			}
			printSuccess(out, "Wrote %d graphs to %s", len(entries), args[0])
			dirs := map[string]int{}
			var order []string
			for _, e := range entries {
				d := e.Path[:strings.LastIndex(e.Path, "/")]
				if dirs[d] == 0 {
					order = append(order, d)
				}
				dirs[d]++
			}
			for _, d := range order {
				printDetail(out, "%-28s %d", d+"/", dirs[d])
			}
			return nil
		},
	}
}
