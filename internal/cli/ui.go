package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/qivalidate/pkg/report"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary
	colorGreen  = lipgloss.Color("35")  // Green - pass
	colorYellow = lipgloss.Color("220") // Amber - partial
	colorRed    = lipgloss.Color("167") // Soft red - fail
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(colorRed)

	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, StyleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, StyleError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, StyleWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, StyleDim.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key string, value any) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(fmt.Sprint(value)))
}

// =============================================================================
// Validation Output
// =============================================================================

func verdictStyle(v report.Verdict) lipgloss.Style {
	switch v {
	case report.VerdictPass:
		return StyleSuccess
	case report.VerdictFail:
		return StyleError
	}
	return StyleWarning
}

// formatQi renders a qi value, "?" when undetermined.
func formatQi(v int) string {
	if v < 0 {
		return "?"
	}
	return fmt.Sprint(v)
}

// printStep prints one checked partition:
//
//	Step 3 (size 7): qi = 4 (qi >= 4 required) PASS
func printStep(w io.Writer, s report.Step) {
	head := "Initial partition"
	if s.Index > 0 {
		head = fmt.Sprintf("Step %d", s.Index)
	}
	line := fmt.Sprintf("%s (size %s): qi = %s (qi >= %d required) %s",
		head,
		StyleNumber.Render(fmt.Sprint(s.Blocks)),
		StyleValue.Render(formatQi(s.Qi)),
		s.Required,
		verdictStyle(s.Verdict).Render(string(s.Verdict)))
	if s.CacheHit {
		line += " " + StyleDim.Render("cached")
	}
	fmt.Fprintln(w, line)
}

// printSummary prints the final lines of a run.
func printSummary(w io.Writer, rep *report.Report) {
	fmt.Fprintln(w)
	printKeyValue(w, "Final size", rep.FinalBlocks)
	printKeyValue(w, "Final qi", formatQi(rep.FinalQi))
	printKeyValue(w, "Required", rep.FinalRequired)
	if rep.Stalled {
		printWarning(w, "No more Mc operations available, stopped at size %d", rep.FinalBlocks)
	}
	if rep.Truncated {
		printWarning(w, "Step limit reached at size %d", rep.FinalBlocks)
	}

	name := rep.Graph.Name
	switch rep.Outcome {
	case report.VerdictPass:
		printSuccess(w, "%s: validation successful, qi > k - k' throughout", name)
	case report.VerdictFail:
		printError(w, "%s: validation failed, qi below required threshold", name)
	default:
		printWarning(w, "%s: validation partial, %d step(s) undetermined", name, rep.Undetermined())
	}
}

// printRule prints a dim horizontal separator.
func printRule(w io.Writer, width int) {
	fmt.Fprintln(w, StyleDim.Render(strings.Repeat("─", width)))
}
