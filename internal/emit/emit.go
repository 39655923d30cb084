// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit writes one YAML document per spreadsheet row into the
// category directory configured for its sheet.
package emit

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/openkpis/sheetsync/internal/document"
	"github.com/openkpis/sheetsync/internal/normalize"
	"github.com/openkpis/sheetsync/internal/sheet"
	"github.com/openkpis/sheetsync/pkg/types"
)

// Emitter writes documents under a documents root. It remembers the
// filenames written during its lifetime to apply the collision policy, so
// one Emitter should serve one run.
type Emitter struct {
	docsDir string
	ext     string
	policy  types.CollisionPolicy
	w       io.Writer

	// taken maps category/name to the row that wrote it.
	taken      map[string]takenBy
	categories []string
}

type takenBy struct {
	sheet string
	row   int
}

// NewEmitter returns an Emitter for cfg. Progress lines go to w.
func NewEmitter(cfg types.ConversionConfig, w io.Writer) *Emitter {
	ext := strings.TrimPrefix(cfg.Extension, ".")
	if ext == "" {
		ext = types.DefaultExtension
	}
	policy := cfg.Collision
	if !policy.Valid() {
		policy = types.CollisionOverwrite
	}
	if w == nil {
		w = io.Discard
	}
	return &Emitter{
		docsDir: cfg.DocumentsDir,
		ext:     ext,
		policy:  policy,
		w:       w,
		taken:   make(map[string]takenBy),
	}
}

// Categories returns the categories written to so far, in first-write order.
func (e *Emitter) Categories() []string {
	return append([]string(nil), e.categories...)
}

// BuildDocument normalizes every cell of row in column order and drops
// absent values.
func BuildDocument(columns []string, row sheet.Row) document.Document {
	var doc document.Document
	for _, col := range columns {
		raw, ok := row[col]
		if !ok {
			continue
		}
		if v, ok := normalize.Normalize(raw); ok {
			doc.Set(col, v)
		}
	}
	return doc
}

// EmitSheet writes one document per row of t. A failing row is recorded and
// does not stop later rows. An empty table yields a result wrapping
// types.ErrSheetEmpty.
func (e *Emitter) EmitSheet(t *sheet.Table) types.SheetResult {
	cfg := ConfigFor(t.Name)
	result := types.SheetResult{Sheet: t.Name, Category: cfg.Category}

	if t.Empty() {
		result.Err = fmt.Errorf("%w: %s", types.ErrSheetEmpty, t.Name)
		fmt.Fprintf(e.w, "skipped sheet %s: no data rows\n", t.Name)
		return result
	}

	for i, row := range t.Rows {
		idx := i
		if i < len(t.Index) {
			idx = t.Index[i]
		}
		result.Rows = append(result.Rows, e.EmitRow(cfg, t.Name, t.Columns, row, idx))
	}

	fmt.Fprintf(e.w, "sheet %s -> %s: %d written, %d failed\n",
		t.Name, cfg.Category, result.Count(types.OutcomeWritten), result.Count(types.OutcomeFailed))
	return result
}

// EmitRow normalizes and writes a single row.
func (e *Emitter) EmitRow(cfg SheetConfig, sheetName string, columns []string, row sheet.Row, rowIndex int) types.RowResult {
	res := types.RowResult{Row: rowIndex}

	doc := BuildDocument(columns, row)
	if doc.Len() == 0 {
		res.Outcome = types.OutcomeSkipped
		res.Reason = "no values"
		fmt.Fprintf(e.w, "skipped %s row %d: no values\n", sheetName, rowIndex)
		return res
	}

	name := Sanitize(DeriveIdentifier(doc, cfg, sheetName, rowIndex))
	key := cfg.Category + "/" + name

	if prev, dup := e.taken[key]; dup {
		switch e.policy {
		case types.CollisionReject:
			res.ID = name
			res.Outcome = types.OutcomeFailed
			res.Err = fmt.Errorf("%w: %s row %d: identifier %q already written by %s row %d",
				types.ErrRowProcessing, sheetName, rowIndex, name, prev.sheet, prev.row)
			res.Reason = res.Err.Error()
			fmt.Fprintf(e.w, "failed  %s row %d: duplicate identifier %s\n", sheetName, rowIndex, name)
			return res
		case types.CollisionSuffix:
			name, key = e.nextFree(cfg.Category, name)
		default:
			res.Overwrote = true
			res.Reason = fmt.Sprintf("overwrote document from %s row %d", prev.sheet, prev.row)
		}
	}

	path := filepath.Join(e.docsDir, cfg.Category, name+"."+e.ext)
	if err := document.WriteFile(path, doc); err != nil {
		res.ID = name
		res.Outcome = types.OutcomeFailed
		res.Err = fmt.Errorf("%w: %s row %d: %v", types.ErrRowProcessing, sheetName, rowIndex, err)
		res.Reason = err.Error()
		fmt.Fprintf(e.w, "failed  %s row %d: %v\n", sheetName, rowIndex, err)
		return res
	}

	e.taken[key] = takenBy{sheet: sheetName, row: rowIndex}
	e.noteCategory(cfg.Category)

	res.ID = name
	res.Path = path
	res.Outcome = types.OutcomeWritten
	if res.Overwrote {
		fmt.Fprintf(e.w, "overwrote %s (row %d, %s)\n", path, rowIndex, res.Reason)
	} else {
		fmt.Fprintf(e.w, "written %s (row %d)\n", path, rowIndex)
	}
	return res
}

func (e *Emitter) nextFree(category, name string) (string, string) {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		key := category + "/" + candidate
		if _, dup := e.taken[key]; !dup {
			return candidate, key
		}
	}
}

func (e *Emitter) noteCategory(category string) {
	for _, c := range e.categories {
		if c == category {
			return
		}
	}
	e.categories = append(e.categories, category)
}
