// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openkpis/sheetsync/internal/pipeline"
	"github.com/openkpis/sheetsync/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <source>",
	Short: "Convert a workbook into documents, rebuild indexes, and generate the site",
	Long: `Convert reads every sheet of the source workbook (.xlsx, or a single .csv
sheet) and writes one YAML document per row under data-layer/{category}/.
KPI, Events and Dimensions sheets map to kpis/, events/ and dimensions/; any
other sheet maps to a directory named after it.

After all sheets are written, the catalog index for every category is
rebuilt and the site generator runs. A sheet or row that fails is reported
and skipped; the run fails only if no document was written or the generator
fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")

	// With --json, stdout carries only the encoded summary.
	progress := cmd.OutOrStdout()
	if jsonOutput {
		progress = cmd.ErrOrStderr()
	}

	summary, runErr := pipeline.New(cfg, progress).Run(cmd.Context(), args[0])

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else {
		printRunSummary(cmd.OutOrStdout(), summary)
	}

	return runErr
}

func printRunSummary(w io.Writer, s types.RunSummary) {
	if len(s.Sheets) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%-20s  %-16s  %7s  %7s  %6s\n", "Sheet", "Category", "Written", "Skipped", "Failed")
	fmt.Fprintln(w, strings.Repeat("-", 64))
	for _, sh := range s.Sheets {
		name := sh.Sheet
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		fmt.Fprintf(w, "%-20s  %-16s  %7d  %7d  %6d\n", name, sh.Category,
			sh.Count(types.OutcomeWritten), sh.Count(types.OutcomeSkipped), sh.Count(types.OutcomeFailed))
	}

	for _, ix := range s.Indexes {
		switch {
		case ix.Err != nil:
			fmt.Fprintf(w, "index %-14s  failed: %v\n", ix.Category, ix.Err)
		case ix.Skipped:
			fmt.Fprintf(w, "index %-14s  no documents\n", ix.Category)
		default:
			fmt.Fprintf(w, "index %-14s  %d records\n", ix.Category, ix.Records)
		}
	}
}

func init() {
	convertCmd.Flags().Bool("skip-generation", false, "do not run the site generator after indexing")
	convertCmd.Flags().String("collision", string(types.CollisionOverwrite), "duplicate filename policy: overwrite, suffix, or reject")
	convertCmd.Flags().Bool("store", false, "load the catalog database from the rebuilt indexes")
	convertCmd.Flags().Bool("json", false, "print the run summary as JSON")

	viper.BindPFlag("generation.skip", convertCmd.Flags().Lookup("skip-generation"))
	viper.BindPFlag("conversion.collision", convertCmd.Flags().Lookup("collision"))
	viper.BindPFlag("catalog.sync", convertCmd.Flags().Lookup("store"))

	rootCmd.AddCommand(convertCmd)
}
