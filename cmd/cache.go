package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/contactmesh/geodetect/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the search cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cache.Open(cmd.Context(), cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		mem, ok := store.(*cache.Memory)
		if !ok {
			return eris.Errorf("cache driver %q does not expose stats", cfg.Cache.Driver)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(mem.Stats()), "encode stats")
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := cache.Open(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		purger, ok := store.(cache.Purger)
		if !ok {
			return eris.Errorf("cache driver %q does not support purge", cfg.Cache.Driver)
		}

		removed, err := purger.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("cache purge complete", zap.Int64("removed", removed))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
