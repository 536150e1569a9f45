package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/report"
)

func (c *CLI) reportsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and inspect stored validation reports",
	}
	cmd.AddCommand(c.reportsListCommand())
	cmd.AddCommand(c.reportsShowCommand())
	cmd.AddCommand(c.reportsDeleteCommand())
	return cmd
}

// withReports opens the configured store for the duration of fn.
func (c *CLI) withReports(cmd *cobra.Command, fn func(report.Store) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	store, err := cfg.OpenReports(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) reportsListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the newest reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReports(cmd, func(store report.Store) error {
				reps, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(reps) == 0 {
					printInfo(out, "No reports stored")
					return nil
				}

				headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
				rows := make([][]string, len(reps))
				for i, r := range reps {
					rows[i] = []string{
						shortID(r.ID),
						r.CreatedAt.Local().Format(time.DateTime),
						r.Graph.Name,
						fmt.Sprint(r.Seed),
						fmt.Sprint(len(r.Steps)),
						string(r.Outcome),
					}
				}
				t := table.New().
					Border(lipgloss.RoundedBorder()).
					BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
					Headers("ID", "Created", "Graph", "Seed", "Steps", "Outcome").
					Rows(rows...).
					StyleFunc(func(row, col int) lipgloss.Style {
						if row == -1 {
							return headerStyle
						}
						if col == 5 && row < len(reps) {
							return verdictStyle(reps[row].Outcome)
						}
						return lipgloss.NewStyle()
					})
				fmt.Fprintln(out, t.Render())
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of reports")
	return cmd
}

func (c *CLI) reportsShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReports(cmd, func(store report.Store) error {
				rep, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(rep)
				}

				fmt.Fprintln(out, StyleTitle.Render(rep.Graph.Name))
				printKeyValue(out, "ID", rep.ID)
				printKeyValue(out, "Created", rep.CreatedAt.Local().Format(time.DateTime))
				printKeyValue(out, "Graph", fmt.Sprintf("%d vertices, %d edges, k'=%d", rep.Graph.Vertices, rep.Graph.Edges, rep.Graph.CriticalK))
				printKeyValue(out, "Seed", rep.Seed)
				printKeyValue(out, "Duration", rep.Duration.Round(time.Millisecond))
				printRule(out, 48)
				for _, s := range rep.Steps {
					printStep(out, s)
				}
				printSummary(out, rep)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (c *CLI) reportsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReports(cmd, func(store report.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Deleted report %s", args[0])
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
