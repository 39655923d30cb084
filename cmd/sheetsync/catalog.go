// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openkpis/sheetsync/internal/catalog"
	"github.com/openkpis/sheetsync/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the catalog database (store, search, export)",
	Long: `Catalog manages a local SQLite copy of the index artifacts in
static/indexes/. Use subcommands to load it, search it, or export it.`,
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Load the index artifacts into the catalog database",
	Long: `Store reads every static/indexes/{category}.json artifact into the
catalog database. Categories whose artifact is unchanged since the last load
are skipped; changed ones are replaced in full.`,
	Args: cobra.NoArgs,
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	store, _, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d index artifact(s) failed to load", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog by text, category and tag",
	Long: `Search matches the query against record ids, titles, descriptions and
tags. Title matches are listed first. --category restricts results to one
index and --tag (repeatable) requires every given tag.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	store, _, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --category, or --tag")
	}

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []catalog.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-12s  %-30s  %-40s  %s\n", "Rank", "Category", "ID", "Title", "Tags")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		id := r.ID
		if len(id) > 30 {
			id = id[:27] + "..."
		}
		title := r.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-12s  %-30s  %-40s  %s\n",
			i+1, r.Section, id, title, strings.Join(r.Tags, ", "))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the catalog (or a filtered subset) to a file, by default
catalog/export.yaml or catalog/export.json. Supports the same filters as
search.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, cfg, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if output == "" {
		output = filepath.Join(filepath.Dir(cfg.DBPath), "export."+format)
	}

	switch format {
	case "yaml":
		err = store.ExportYAML(cmd.Context(), opts, output)
	case "json":
		err = store.ExportJSON(cmd.Context(), opts, output)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", output)
	return nil
}

// --- shared helpers ---

func openCatalog() (*catalog.Store, types.CatalogConfig, error) {
	cfg, err := pipelineConfig()
	if err != nil {
		return nil, cfg.Catalog, err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	return store, cfg.Catalog, err
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	category, _ := cmd.Flags().GetString("category")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:      queryText,
		Section:    category,
		Tags:       tags,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("db", "", "catalog database path (default: {project-root}/catalog/catalog.db)")
	catalogCmd.PersistentFlags().Int("max-results", 20, "default maximum number of search results")

	viper.BindPFlag("catalog.db_path", catalogCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("catalog.max_results", catalogCmd.PersistentFlags().Lookup("max-results"))

	// Search flags.
	catalogSearchCmd.Flags().String("query", "", "text to search for")
	catalogSearchCmd.Flags().String("category", "", "filter by category (kpis, events, dimensions, ...)")
	catalogSearchCmd.Flags().StringSlice("tag", nil, "filter by tag, repeatable (all must match)")
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("output", "", "output file")
	catalogExportCmd.Flags().String("query", "", "text filter for partial export")
	catalogExportCmd.Flags().String("category", "", "filter by category for partial export")
	catalogExportCmd.Flags().StringSlice("tag", nil, "filter by tag for partial export")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
