package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/contactmesh/geodetect/internal/cache"
	"github.com/contactmesh/geodetect/internal/config"
	"github.com/contactmesh/geodetect/internal/detect"
	"github.com/contactmesh/geodetect/pkg/places"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geodetect",
	Short: "Geospatial event detection for contact networks",
	Long:  "Detects events near contact submission locations, clusters them into coherent venues, and generates ranked contact-group suggestions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// env holds the wired pipeline collaborators for one command invocation.
type env struct {
	Detector *detect.Detector
	Cache    cache.Cache
}

func (e *env) Close() {
	if err := e.Cache.Close(); err != nil {
		zap.L().Warn("cache close failed", zap.Error(err))
	}
}

func initDetector(ctx context.Context) (*env, error) {
	if cfg.Places.APIKey == "" {
		return nil, eris.New("places.api_key is required (GEODETECT_PLACES_API_KEY)")
	}

	store, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	client := places.NewClient(cfg.Places.APIKey, places.WithBaseURL(cfg.Places.BaseURL))

	detector, err := detect.New(cfg, client, store)
	if err != nil {
		store.Close() //nolint:errcheck
		return nil, err
	}
	return &env{Detector: detector, Cache: store}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
