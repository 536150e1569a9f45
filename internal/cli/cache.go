package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qivalidate/pkg/cache"
	"github.com/matzehuels/qivalidate/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the qi-result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached qi results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			ch, err := cfg.OpenCache(cmd.Context())
			if err != nil {
				return err
			}
			defer ch.Close()

			out := cmd.OutOrStdout()
			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo(out, "Cache backend %q holds nothing to clear", cfg.Cache.Backend)
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess(out, "Cleared %d cached entries", n)
			printDetail(out, "Backend: %s", describeCache(cfg))
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeCache(cfg))
			return nil
		},
	}
}

// describeCache names the cache location: a directory, a redis address or
// "none".
func describeCache(cfg *config.Config) string {
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return config.BackendNone
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d", cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return "unknown (" + err.Error() + ")"
	}
	return dir
}
