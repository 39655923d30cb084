// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openkpis/sheetsync/internal/pipeline"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the catalog indexes from existing documents",
	Long: `Index scans data-layer/ and rewrites static/indexes/{category}.json for
the kpis, events and dimensions categories and for every other category
directory present. Documents that cannot be parsed are skipped.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	results, err := pipeline.New(cfg, os.Stdout).Reindex(cmd.Context())
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d index(es) could not be written", failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
