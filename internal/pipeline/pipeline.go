// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a full conversion: spreadsheet to documents, documents
// to catalog indexes, then the downstream generation step.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/openkpis/sheetsync/internal/catalog"
	"github.com/openkpis/sheetsync/internal/emit"
	"github.com/openkpis/sheetsync/internal/generate"
	"github.com/openkpis/sheetsync/internal/sheet"
	"github.com/openkpis/sheetsync/pkg/types"
)

// Pipeline holds the configuration and collaborators for a run.
type Pipeline struct {
	cfg     types.PipelineConfig
	w       io.Writer
	trigger generate.Trigger
}

// New returns a Pipeline for cfg. Progress lines and generator output go to w.
func New(cfg types.PipelineConfig, w io.Writer) *Pipeline {
	if w == nil {
		w = io.Discard
	}
	return &Pipeline{
		cfg:     cfg,
		w:       w,
		trigger: generate.NewCommandTrigger(cfg.Generation, w, w),
	}
}

// WithTrigger replaces the generation trigger.
func (p *Pipeline) WithTrigger(t generate.Trigger) *Pipeline {
	p.trigger = t
	return p
}

// Run converts source and refreshes everything downstream of it.
//
// An unreadable source fails the run before anything is written. If no sheet
// produces a document the run stops with types.ErrNoDocuments and indexes
// are left untouched. Index write failures and catalog sync failures are
// logged and do not fail the run. A generation failure is returned after
// documents and indexes have been persisted.
func (p *Pipeline) Run(ctx context.Context, source string) (types.RunSummary, error) {
	summary := types.RunSummary{RunID: uuid.NewString(), Source: source}

	wb, err := sheet.Open(source)
	if err != nil {
		return summary, err
	}
	defer wb.Close()

	fmt.Fprintf(p.w, "run %s: converting %s\n", summary.RunID, source)

	em := emit.NewEmitter(p.cfg.Conversion, p.w)
	for _, name := range wb.Sheets() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		tbl, err := wb.ReadSheet(name)
		if err != nil {
			summary.Sheets = append(summary.Sheets, types.SheetResult{
				Sheet:    name,
				Category: emit.ConfigFor(name).Category,
				Err:      err,
			})
			fmt.Fprintf(p.w, "failed  sheet %s: %v\n", name, err)
			continue
		}
		summary.Sheets = append(summary.Sheets, em.EmitSheet(tbl))
	}

	if !summary.Succeeded() {
		fmt.Fprintf(p.w, "no documents written from %s\n", source)
		return summary, fmt.Errorf("%w: %s", types.ErrNoDocuments, source)
	}

	summary.Indexes = p.index(mergeCategories(emit.Categories(), em.Categories()))

	if p.cfg.Catalog.Sync {
		if err := p.syncCatalog(ctx); err != nil {
			fmt.Fprintf(p.w, "failed  catalog sync: %v\n", err)
		} else {
			summary.CatalogSynced = true
		}
	}

	fmt.Fprintf(p.w, "\nsheets: %d/%d succeeded, documents: %d\n",
		summary.SheetsSucceeded(), len(summary.Sheets), summary.Documents())

	if p.cfg.Generation.Skip {
		return summary, nil
	}
	if err := p.trigger.Run(ctx); err != nil {
		fmt.Fprintf(p.w, "failed  generation: %v\n", err)
		return summary, err
	}
	summary.Generated = true
	return summary, nil
}

// Reindex rebuilds the indexes for the known categories plus every category
// directory present in the document tree.
func (p *Pipeline) Reindex(ctx context.Context) ([]types.IndexResult, error) {
	found, err := catalog.DiscoverCategories(p.cfg.Index.DocumentsDir)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.index(mergeCategories(emit.Categories(), found)), nil
}

// Generate runs only the generation step.
func (p *Pipeline) Generate(ctx context.Context) error {
	return p.trigger.Run(ctx)
}

func (p *Pipeline) index(categories []string) []types.IndexResult {
	ix := catalog.NewIndexer(p.cfg.Index, p.w)
	return ix.IndexAll(categories)
}

func (p *Pipeline) syncCatalog(ctx context.Context) error {
	store, err := catalog.NewStore(p.cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Ingest(ctx, p.w)
	return err
}

// mergeCategories returns base followed by the entries of extra not already
// present.
func mergeCategories(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, c := range list {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
