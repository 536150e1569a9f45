package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/observability"
	"github.com/matzehuels/qivalidate/pkg/observability/prom"
	"github.com/matzehuels/qivalidate/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		graphDir string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation API over HTTP",
		Long: `Serve exposes validation, qi computation and stored reports as a JSON API.
Prometheus metrics are served on /metrics. The server shuts down gracefully on
SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("graph-dir") {
				cfg.Server.GraphDir = graphDir
			}

			ctx := cmd.Context()
			runner, closeCache, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer closeCache()

			reports, err := cfg.OpenReports(ctx)
			if err != nil {
				return err
			}
			defer reports.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			metrics := prom.New(reg)
			observability.SetValidationHooks(metrics)
			observability.SetQiHooks(metrics)
			observability.SetCacheHooks(metrics)
			observability.SetServerHooks(metrics)
			defer observability.Reset()

			srv := server.New(server.Config{
				Addr:           cfg.Server.Addr,
				GraphDir:       cfg.Server.GraphDir,
				RequestTimeout: cfg.Server.RequestTimeout.Duration,
				MaxVertices:    cfg.Server.MaxVertices,
			}, runner,
				server.WithReports(reports),
				server.WithMetrics(reg),
				server.WithLogger(c.Logger),
			)

			printInfo(cmd.OutOrStdout(), "Listening on %s", cfg.Server.Addr)
			printDetail(cmd.OutOrStdout(), "Engine: %s, graphs from %s", runner.Engine.Signature(), cfg.Server.GraphDir)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&graphDir, "graph-dir", "", "directory graph paths resolve against (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "serve without the qi cache")

	return cmd
}
