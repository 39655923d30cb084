// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openkpis/sheetsync/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the site generator",
	Long: `Generate runs the configured generator command (by default
node scripts/generate-from-yaml.js) in the project root, streaming its
output.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	return pipeline.New(cfg, os.Stdout).Generate(cmd.Context())
}

func init() {
	generateCmd.Flags().String("command", "", "generator executable (default: node)")
	generateCmd.Flags().StringSlice("arg", nil, "generator argument, repeatable (default: scripts/generate-from-yaml.js)")

	viper.BindPFlag("generation.command", generateCmd.Flags().Lookup("command"))
	viper.BindPFlag("generation.args", generateCmd.Flags().Lookup("arg"))

	rootCmd.AddCommand(generateCmd)
}
