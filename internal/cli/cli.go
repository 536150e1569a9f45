// Package cli implements the qivalidate command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/buildinfo"
	"github.com/matzehuels/qivalidate/pkg/cache"
	"github.com/matzehuels/qivalidate/pkg/config"
	"github.com/matzehuels/qivalidate/pkg/errors"
	"github.com/matzehuels/qivalidate/pkg/graph"
	"github.com/matzehuels/qivalidate/pkg/partition"
	"github.com/matzehuels/qivalidate/pkg/validate"
)

// =============================================================================
// Constants
// =============================================================================

const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Exit codes of "qivalidate validate".
const (
	ExitPass     = 0
	ExitFail     = 1
	ExitPartial  = 2
	ExitCanceled = 130
)

// ExitError ends the process with Code and prints nothing.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return "exit status " + strconv.Itoa(e.Code) }

// ExitCode maps the error returned by the root command to a process exit
// code.
func ExitCode(err error) int {
	var exit *ExitError
	switch {
	case err == nil:
		return ExitPass
	case stderrors.As(err, &exit):
		return exit.Code
	case stderrors.Is(err, context.Canceled):
		return ExitCanceled
	}
	return 1
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "qivalidate checks qi-numbers along random partition coarsenings",
		Long: `qivalidate coarsens the identity partition of a graph by merging connected
blocks until critical_k blocks remain, and checks after every merge that the
qi-number of the partition is at least k - critical_k + 1.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/qivalidate/config.toml)")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.qiCommand())
	root.AddCommand(c.opsCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.reportsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path())
	}
	c.cfg = cfg
	return cfg, nil
}

// newRunner builds a runner from the configuration. An unreachable cache
// backend is logged and replaced by no cache. The returned func closes the
// cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*validate.Runner, func(), error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	engine, err := cfg.Engine()
	if err != nil {
		return nil, nil, err
	}

	ch := cache.NewNullCache()
	if !noCache {
		opened, err := cfg.OpenCache(ctx)
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "err", errors.UserMessage(err))
		} else {
			ch = opened
		}
	}
	runner := validate.NewRunner(engine, ch, cfg.Cache.TTL.Duration, c.Logger)
	return runner, func() { _ = ch.Close() }, nil
}

// loadGraph reads a graph file and logs the edges it skipped.
func (c *CLI) loadGraph(path string) (*graph.Graph, error) {
	g, skipped, err := graph.ReadGraphFile(path)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		c.Logger.Warn("skipped edge", "file", path, "edge", s.String())
	}
	c.Logger.Debug("loaded graph", "file", path, "vertices", g.NumVertices(), "edges", g.EdgeCount(), "critical_k", g.CriticalK())
	return g, nil
}

// parseLabels parses "0,0,1,2" into a partition of g. An empty string gives
// the identity partition.
func parseLabels(s string, g *graph.Graph) (*partition.Partition, error) {
	if strings.TrimSpace(s) == "" {
		return partition.New(g.NumVertices())
	}
	fields := strings.Split(s, ",")
	labels := make([]int, len(fields))
	for i, f := range fields {
		l, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidPartition, "label %d: %q is not an integer", i, f)
		}
		labels[i] = l
	}
	if err := errors.ValidateLabels(labels, g.NumVertices()); err != nil {
		return nil, err
	}
	return partition.FromLabels(labels)
}

// joinInts formats a vertex list as "{0, 3, 5}".
func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}
