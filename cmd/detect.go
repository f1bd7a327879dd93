package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/contactmesh/geodetect/internal/model"
)

var (
	detectInput      string
	detectOutput     string
	detectRadius     float64
	detectTextSearch bool
	detectMaxResults int
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run one detection pass over a JSON request",
	Long:  "Reads a detection request (locations, radius, event types) from a file or stdin, runs the pipeline, and writes the result as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initDetector(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var in io.Reader = os.Stdin
		if detectInput != "" {
			f, err := os.Open(detectInput)
			if err != nil {
				return eris.Wrap(err, "open input")
			}
			defer f.Close() //nolint:errcheck
			in = f
		}

		var req model.DetectionRequest
		if err := json.NewDecoder(in).Decode(&req); err != nil {
			return eris.Wrap(err, "decode request")
		}

		// Flags override the request body.
		if detectRadius > 0 {
			req.RadiusMeters = detectRadius
		}
		if cmd.Flags().Changed("text-search") {
			req.IncludeTextSearch = detectTextSearch
		}
		if detectMaxResults > 0 {
			req.MaxResults = detectMaxResults
		}

		result, err := env.Detector.Detect(ctx, req)
		if err != nil {
			return err
		}

		zap.L().Info("detection complete",
			zap.Int("events", len(result.Events)),
			zap.Int("clusters", len(result.Clusters)),
			zap.Int("suggestions", len(result.Suggestions)),
		)

		var out io.Writer = os.Stdout
		if detectOutput != "" {
			f, err := os.Create(detectOutput)
			if err != nil {
				return eris.Wrap(err, "create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "encode result")
	},
}

func init() {
	detectCmd.Flags().StringVarP(&detectInput, "input", "i", "", "request JSON file (default stdin)")
	detectCmd.Flags().StringVarP(&detectOutput, "output", "o", "", "result JSON file (default stdout)")
	detectCmd.Flags().Float64Var(&detectRadius, "radius", 0, "search radius in meters (overrides request)")
	detectCmd.Flags().BoolVar(&detectTextSearch, "text-search", false, "include contextual text search (overrides request)")
	detectCmd.Flags().IntVar(&detectMaxResults, "max-results", 0, "cap on suggestions (overrides request)")
	rootCmd.AddCommand(detectCmd)
}
