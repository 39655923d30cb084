// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog builds the per-category catalog indexes from the document
// tree and maintains the SQLite catalog database loaded from them.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openkpis/sheetsync/internal/document"
	"github.com/openkpis/sheetsync/internal/normalize"
	"github.com/openkpis/sheetsync/pkg/types"
)

// TagFields are the document fields whose values become index tags, in the
// order they are collected. industry and category values follow them.
var TagFields = []string{"alias", "kpi_alias", "aliases", "tags", "keywords"}

// TitleFields are tried in order for an index record's title.
var TitleFields = []string{"title", "name", "kpi_name"}

// documentExts are the file extensions scanned in a category directory.
var documentExts = []string{".yml", ".yaml"}

// Indexer projects documents into index records and writes one JSON index
// artifact per category.
type Indexer struct {
	docsDir    string
	indexesDir string
	w          io.Writer
}

// NewIndexer returns an Indexer for cfg. Progress lines go to w.
func NewIndexer(cfg types.IndexConfig, w io.Writer) *Indexer {
	if w == nil {
		w = io.Discard
	}
	return &Indexer{docsDir: cfg.DocumentsDir, indexesDir: cfg.IndexesDir, w: w}
}

// IndexAll indexes each category in order.
func (ix *Indexer) IndexAll(categories []string) []types.IndexResult {
	results := make([]types.IndexResult, 0, len(categories))
	for _, c := range categories {
		results = append(results, ix.IndexCategory(c))
	}
	return results
}

// IndexCategory regenerates the index artifact for one category. A missing
// category directory is skipped without error. Documents that cannot be
// parsed are skipped and recorded in the result.
func (ix *Indexer) IndexCategory(category string) types.IndexResult {
	res := types.IndexResult{Category: category}
	dir := filepath.Join(ix.docsDir, category)

	files, err := documentFiles(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.Skipped = true
			return res
		}
		res.Err = fmt.Errorf("listing documents for %s: %w", category, err)
		fmt.Fprintf(ix.w, "failed  index %s: %v\n", category, err)
		return res
	}

	records := make([]types.IndexRecord, 0, len(files))
	for _, name := range files {
		doc, err := document.ReadFile(filepath.Join(dir, name))
		if err != nil {
			perr := fmt.Errorf("%w: %s/%s: %v", types.ErrDocumentParse, category, name, err)
			res.Docs = append(res.Docs, types.DocResult{
				File: name, Outcome: types.OutcomeSkipped, Reason: err.Error(), Err: perr,
			})
			fmt.Fprintf(ix.w, "skipped %s/%s: %v\n", category, name, err)
			continue
		}
		if doc.Len() == 0 {
			res.Docs = append(res.Docs, types.DocResult{
				File: name, Outcome: types.OutcomeSkipped, Reason: "empty document",
			})
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		records = append(records, Project(doc, stem))
		res.Docs = append(res.Docs, types.DocResult{File: name, Outcome: types.OutcomeWritten})
	}

	path := filepath.Join(ix.indexesDir, category+".json")
	if err := writeIndex(path, records); err != nil {
		res.Err = fmt.Errorf("%w: %s: %v", types.ErrIndexWrite, category, err)
		fmt.Fprintf(ix.w, "failed  index %s: %v\n", category, err)
		return res
	}

	res.Path = path
	res.Records = len(records)
	fmt.Fprintf(ix.w, "indexed %s (%d records) -> %s\n", category, len(records), path)
	return res
}

// DiscoverCategories returns the category directories present under
// docsDir, sorted. Hidden directories are ignored. A missing docsDir yields
// no categories.
func DiscoverCategories(docsDir string) ([]string, error) {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// documentFiles lists document files in dir, sorted by name.
func documentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range documentExts {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// writeIndex replaces the artifact at path via a temporary file and rename.
func writeIndex(path string, records []types.IndexRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Project builds the index record for a document. stem is the document's
// filename without extension.
func Project(doc document.Document, stem string) types.IndexRecord {
	id := stem
	if v, ok := doc.Get("id"); ok {
		if s, ok := v.First(); ok && s != "" {
			id = s
		}
	}

	return types.IndexRecord{
		ID:          id,
		Title:       firstText(doc, TitleFields...),
		Description: firstText(doc, "description"),
		Slug:        "/" + id,
		Category:    passthrough(doc, "category", []string{}),
		Industry:    passthrough(doc, "industry", ""),
		Featured:    passthrough(doc, "featured", false),
		Added:       passthrough(doc, "added", nil),
		Tags:        CollectTags(doc),
	}
}

// CollectTags gathers tag strings from TagFields, then industry and
// category. Lists are flattened, falsy values dropped, and duplicates removed
// by exact string comparison: "Sales" and "sales" are both kept.
func CollectTags(doc document.Document) []string {
	fields := append(append([]string(nil), TagFields...), "industry", "category")

	seen := make(map[string]bool)
	tags := []string{}
	for _, f := range fields {
		v, ok := doc.Get(f)
		if !ok || !truthy(v) {
			continue
		}
		items := []any{v.Scalar()}
		if v.IsList() {
			items = items[:0]
			for _, s := range v.List() {
				items = append(items, s)
			}
		}
		for _, it := range items {
			if !truthyScalar(it) {
				continue
			}
			tag := fmt.Sprint(it)
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// firstText returns the first present field as text. Lists are joined with
// ", ", undoing the comma split applied at conversion.
func firstText(doc document.Document, fields ...string) string {
	for _, f := range fields {
		v, ok := doc.Get(f)
		if !ok {
			continue
		}
		if v.IsList() {
			return strings.Join(v.List(), ", ")
		}
		return fmt.Sprint(v.Scalar())
	}
	return ""
}

func passthrough(doc document.Document, field string, def any) any {
	v, ok := doc.Get(field)
	if !ok {
		return def
	}
	return v.Interface()
}

func truthy(v normalize.Value) bool {
	if v.IsList() {
		return len(v.List()) > 0
	}
	return truthyScalar(v.Scalar())
}

func truthyScalar(x any) bool {
	switch t := x.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return true
}
