package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/graph"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// GraphListModel - Interactive graph file selection
// =============================================================================

// GraphFile is one entry of the picker.
type GraphFile struct {
	Path      string // relative to the picker root
	Vertices  int
	Edges     int
	CriticalK int
	Err       error
}

// GraphListModel is the bubbletea model of "qivalidate pick".
type GraphListModel struct {
	Files    []GraphFile
	Cursor   int
	Selected *GraphFile
	Height   int
	Offset   int
}

// NewGraphListModel creates a picker over files.
func NewGraphListModel(files []GraphFile) GraphListModel {
	return GraphListModel{Files: files, Height: 15}
}

func (m GraphListModel) Init() tea.Cmd {
	return nil
}

func (m GraphListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Files) == 0 {
				return m, nil
			}
			f := m.Files[m.Cursor]
			if f.Err != nil {
				return m, nil
			}
			m.Selected = &f
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m GraphListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ validate  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Files))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		f := m.Files[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		if f.Err != nil {
			rows = append(rows, []string{cursor, f.Path, "—", "—", "—"})
			continue
		}
		k := "—"
		if f.CriticalK > 0 {
			k = fmt.Sprint(f.CriticalK)
		}
		rows = append(rows, []string{cursor, f.Path, fmt.Sprint(f.Vertices), fmt.Sprint(f.Edges), k})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Graph", "n", "m", "k'").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Files) {
				return lipgloss.NewStyle()
			}
			switch {
			case m.Files[idx].Err != nil:
				return lipgloss.NewStyle().Foreground(colorRed)
			case idx == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			case m.Files[idx].CriticalK == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Files)), len(m.Files))))
	return b.String()
}

// scanGraphs lists the graph files below root, sorted by path.
func scanGraphs(root string) ([]GraphFile, error) {
	var files []GraphFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || errors.ValidateGraphFilename(d.Name()) != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		f := GraphFile{Path: filepath.ToSlash(rel)}
		if g, _, err := graph.ReadGraphFile(path); err != nil {
			f.Err = err
		} else {
			f.Vertices, f.Edges, f.CriticalK = g.NumVertices(), g.EdgeCount(), g.CriticalK()
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "scan %s", root)
	}
	slices.SortFunc(files, func(a, b GraphFile) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

// =============================================================================
// pick command
// =============================================================================

func (c *CLI) pickCommand() *cobra.Command {
	var f validateFlags

	cmd := &cobra.Command{
		Use:   "pick [dir]",
		Short: "Pick a graph file interactively and validate it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			files, err := scanGraphs(root)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				printInfo(cmd.OutOrStdout(), "No graph files (.txt, .json) below %s", root)
				return nil
			}

			prog := tea.NewProgram(NewGraphListModel(files), tea.WithContext(cmd.Context()), tea.WithOutput(os.Stderr))
			final, err := prog.Run()
			if err != nil {
				return err
			}
			sel := final.(GraphListModel).Selected
			if sel == nil {
				return nil
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				f.seed = cfg.Seed
			}
			path := filepath.Join(root, filepath.FromSlash(sel.Path))
			return c.runValidate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), []string{path}, f)
		},
	}

	cmd.Flags().IntVarP(&f.criticalK, "critical-k", "k", 0, "target block count (overrides the k= line)")
	cmd.Flags().Uint64VarP(&f.seed, "seed", "s", 0, "random seed (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "do not read or write the qi cache")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the report")

	return cmd
}
