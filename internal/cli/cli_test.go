package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qivalidate/pkg/config"
	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/report"
)

// starText is K(1,5) with hub 0; every Mc keeps the quotient a star.
const starText = "6\n0 1\n0 2\n0 3\n0 4\n0 5\nk=3\n"

// isolate points every config, cache and data directory into a fresh temp
// dir and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv(config.EnvConfig, "")
	return home
}

func writeGraph(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitPass},
		{"fail", &ExitError{Code: ExitFail}, ExitFail},
		{"partial", &ExitError{Code: ExitPartial}, ExitPartial},
		{"wrapped", fmt.Errorf("run: %w", &ExitError{Code: ExitPartial}), ExitPartial},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), ExitCanceled},
		{"other", errors.New(errors.ErrCodeInvalidGraph, "bad"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseLabels(t *testing.T) {
	g, err := graph.Generate("cycle", 5, 3)
	require.NoError(t, err)

	p, err := parseLabels("", g)
	require.NoError(t, err)
	assert.Equal(t, 5, p.NumBlocks())

	p, err = parseLabels("0, 1,0,1 ,2", g)
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumBlocks())

	tests := []struct {
		name  string
		input string
	}{
		{"not a number", "0,1,x,1,2"},
		{"too short", "0,1"},
		{"negative", "0,1,0,1,-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLabels(tt.input, g)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeInvalidPartition, errors.GetCode(err))
		})
	}
}

func TestValidateCommand(t *testing.T) {
	dir := isolate(t)
	star := writeGraph(t, dir, "star.txt", starText)

	out, err := execute(t, "validate", "--seed", "7", star)
	require.NoError(t, err)
	assert.Contains(t, out, "Initial partition (size 6): qi = 4 (qi >= 4 required) PASS")
	assert.Contains(t, out, "Step 3 (size 3)")
	assert.Contains(t, out, "star.txt: validation successful")
}

func TestValidateCommandFails(t *testing.T) {
	dir := isolate(t)
	star := writeGraph(t, dir, "star.txt", starText)

	out, err := execute(t, "validate", "--critical-k", "1", star)
	require.Error(t, err)
	assert.Equal(t, ExitFail, ExitCode(err))
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "validation failed")
}

func TestValidateCommandJSON(t *testing.T) {
	dir := isolate(t)
	star := writeGraph(t, dir, "star.txt", starText)

	out, err := execute(t, "validate", "--json", "--no-cache", "--seed", "7", star)
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, report.VerdictPass, rep.Outcome)
	assert.Equal(t, "star.txt", rep.Graph.Name)
	assert.Equal(t, uint64(7), rep.Seed)
	assert.Len(t, rep.Steps, 4)
	assert.Equal(t, 3, rep.FinalBlocks)
}

func TestValidateCommandBatch(t *testing.T) {
	dir := isolate(t)
	a := writeGraph(t, dir, "a.txt", starText)
	b := writeGraph(t, dir, "b.txt", starText)

	out, err := execute(t, "validate", "-j", "2", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "b.txt")
	assert.Contains(t, out, "2 passed")
}

func TestValidateCommandMissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "validate", filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
	assert.Equal(t, 1, ExitCode(err))
}

func TestQiCommand(t *testing.T) {
	dir := isolate(t)
	star := writeGraph(t, dir, "star.txt", starText)

	type qiOutput struct {
		Blocks int `json:"blocks"`
		Result struct {
			Value  int    `json:"value"`
			Method string `json:"method"`
		} `json:"result"`
		CacheHit bool `json:"cache_hit"`
	}
	run := func(args ...string) qiOutput {
		out, err := execute(t, append([]string{"qi", "--json"}, args...)...)
		require.NoError(t, err)
		var got qiOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		return got
	}

	first := run(star)
	assert.Equal(t, 6, first.Blocks)
	assert.Equal(t, 4, first.Result.Value)
	assert.Equal(t, "exact", first.Result.Method)
	assert.False(t, first.CacheHit)

	second := run(star)
	assert.Equal(t, 4, second.Result.Value)
	assert.True(t, second.CacheHit)

	merged := run("--labels", "0,0,1,2,3,4", "--no-cache", star)
	assert.Equal(t, 5, merged.Blocks)
	assert.Equal(t, 3, merged.Result.Value)
	assert.False(t, merged.CacheHit)
}

func TestQiCommandText(t *testing.T) {
	dir := isolate(t)
	star := writeGraph(t, dir, "star.txt", starText)

	out, err := execute(t, "qi", "--no-cache", star)
	require.NoError(t, err)
	assert.Contains(t, out, "Partition")
	assert.Contains(t, out, "[0-1-2-3-4-5]")
	assert.Contains(t, out, "exact")
}

func TestQiCommandTooLarge(t *testing.T) {
	dir := isolate(t)
	cycle := filepath.Join(dir, "cycle.txt")
	_, err := execute(t, "generate", "cycle", "-n", "20", "-o", cycle)
	require.NoError(t, err)

	_, err = execute(t, "qi", "--no-cache", cycle)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCapacityExceeded, errors.GetCode(err))
}

func TestOpsCommand(t *testing.T) {
	dir := isolate(t)
	c5 := filepath.Join(dir, "c5.txt")
	_, err := execute(t, "generate", "cycle", "-n", "5", "-k", "3", "-o", c5)
	require.NoError(t, err)

	out, err := execute(t, "ops", c5, "mc", "--block", "0", "--block2", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "4 blocks")
	assert.Contains(t, out, "qi >= 2")

	// Blocks 0 and 1 share an edge, so Mu refuses them.
	_, err = execute(t, "ops", c5, "mu", "--block", "0", "--block2", "1")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	_, err = execute(t, "ops", c5, "mc", "--block", "0")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))

	_, err = execute(t, "ops", c5, "split")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))

	out, err = execute(t, "ops", c5, "mc", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "5 successful mc operation(s)")
}

func TestGenerateCommand(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "generate", "petersen")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "10\n"), "got %q", out)
	assert.Contains(t, out, "k=")

	out, err = execute(t, "generate", "list")
	require.NoError(t, err)
	for _, f := range graph.Families() {
		assert.Contains(t, out, f.Name)
	}

	suite := filepath.Join(dir, "graphs")
	_, err = execute(t, "generate", "suite", suite)
	require.NoError(t, err)
	entries, err := graph.Suite()
	require.NoError(t, err)
	for _, e := range entries {
		assert.FileExists(t, filepath.Join(suite, filepath.FromSlash(e.Path)))
	}

	_, err = execute(t, "generate", "nonsense")
	require.Error(t, err)
}

func TestRenderCommandDOT(t *testing.T) {
	dir := isolate(t)
	star := writeGraph(t, dir, "star.txt", starText)

	out, err := execute(t, "render", star, "--labels", "0,0,1,1,2,2")
	require.NoError(t, err)
	assert.Contains(t, out, "graph G {")

	dot := filepath.Join(dir, "star.dot")
	_, err = execute(t, "render", star, "--merges", "2", "-o", dot)
	require.NoError(t, err)
	assert.FileExists(t, dot)

	_, err = execute(t, "render", star, "--mode", "sideways")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestReportsCommands(t *testing.T) {
	dir := isolate(t)
	star := writeGraph(t, dir, "star.txt", starText)

	out, err := execute(t, "reports", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No reports stored")

	out, err = execute(t, "validate", "--save", "--json", "--seed", "7", star)
	require.NoError(t, err)
	var saved report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &saved))
	require.NotEmpty(t, saved.ID)

	out, err = execute(t, "reports", "list")
	require.NoError(t, err)
	assert.Contains(t, out, saved.ID[:8])
	assert.Contains(t, out, "star.txt")

	out, err = execute(t, "reports", "show", saved.ID, "--json")
	require.NoError(t, err)
	var shown report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, saved.ID, shown.ID)
	assert.Len(t, shown.Steps, len(saved.Steps))

	out, err = execute(t, "reports", "show", saved.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Initial partition")

	_, err = execute(t, "reports", "delete", saved.ID)
	require.NoError(t, err)

	_, err = execute(t, "reports", "show", saved.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeReportNotFound, errors.GetCode(err))
}

func TestCacheCommands(t *testing.T) {
	home := isolate(t)
	star := writeGraph(t, home, "star.txt", starText)

	out, err := execute(t, "cache", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "cache", config.AppName), strings.TrimSpace(out))

	_, err = execute(t, "qi", star)
	require.NoError(t, err)

	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 cached entries")
}

func TestConfigCommands(t *testing.T) {
	home := isolate(t)

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "No config file found")

	path := filepath.Join(home, "qivalidate.toml")
	require.NoError(t, os.WriteFile(path, []byte("seed = 9\nexact_limit = 12\n"), 0o644))

	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "seed = 9")
	assert.Contains(t, out, "exact_limit = 12")

	out, err = execute(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	_, err = execute(t, "--config", filepath.Join(home, "absent.toml"), "config", "show")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "qivalidate")
		})
	}
	_, err := execute(t, "completion", "tcsh")
	require.Error(t, err)
}
