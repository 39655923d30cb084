// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the sheetsync CLI. It converts the
// OpenKPIs master spreadsheet into per-entity YAML documents, rebuilds the
// catalog indexes the site reads, and triggers site generation.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openkpis/sheetsync/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the sheetsync CLI.
var rootCmd = &cobra.Command{
	Use:   "sheetsync",
	Short: "Convert the OpenKPIs spreadsheet into catalog documents and indexes",
	Long: `sheetsync turns the OpenKPIs master workbook into one YAML document per
row under data-layer/{category}/, rebuilds static/indexes/{category}.json
from those documents, and runs the site generator.

Each stage is also available on its own: convert runs the whole pipeline,
index rebuilds the indexes from existing documents, generate runs only the
generator, and catalog maintains a searchable SQLite copy of the indexes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file in the working directory supplies SHEETSYNC_* settings.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./sheetsync.yaml or ~/.config/sheetsync/sheetsync.yaml)")
	rootCmd.PersistentFlags().String("project-root", ".", "site project root (contains data-layer/, static/indexes/, scripts/)")

	viper.BindPFlag("project_root", rootCmd.PersistentFlags().Lookup("project-root"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("sheetsync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sheetsync"))
		}
	}

	viper.SetEnvPrefix("SHEETSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig builds the run configuration: the default layout under the
// project root, overridden by the config file, environment and flags.
func pipelineConfig() (types.PipelineConfig, error) {
	def := types.DefaultPipelineConfig(viper.GetString("project_root"))
	setDefaults(def)

	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = def.ProjectRoot
	}
	if !cfg.Conversion.Collision.Valid() {
		return cfg, fmt.Errorf("unknown collision policy %q: use overwrite, suffix or reject", cfg.Conversion.Collision)
	}
	return cfg, nil
}

// setDefaults registers def with viper so that unset flags do not mask it.
func setDefaults(def types.PipelineConfig) {
	viper.SetDefault("conversion.documents_dir", def.Conversion.DocumentsDir)
	viper.SetDefault("conversion.extension", def.Conversion.Extension)
	viper.SetDefault("conversion.collision", string(def.Conversion.Collision))
	viper.SetDefault("index.documents_dir", def.Index.DocumentsDir)
	viper.SetDefault("index.indexes_dir", def.Index.IndexesDir)
	viper.SetDefault("generation.command", def.Generation.Command)
	viper.SetDefault("generation.args", def.Generation.Args)
	viper.SetDefault("generation.work_dir", def.Generation.WorkDir)
	viper.SetDefault("generation.skip", def.Generation.Skip)
	viper.SetDefault("catalog.db_path", def.Catalog.DBPath)
	viper.SetDefault("catalog.indexes_dir", def.Catalog.IndexesDir)
	viper.SetDefault("catalog.max_results", def.Catalog.MaxResults)
	viper.SetDefault("catalog.sync", def.Catalog.Sync)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
