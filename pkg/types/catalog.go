// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// IndexRecord is the catalog projection of one document, as consumed by the
// site's catalog and search pages.
type IndexRecord struct {
	// ID is the document's id field, else its filename stem.
	ID string `json:"id" yaml:"id"`

	// Title is the first present of title, name, kpi_name.
	Title string `json:"title" yaml:"title"`

	Description string `json:"description" yaml:"description"`

	// Slug is "/" + ID.
	Slug string `json:"slug" yaml:"slug"`

	// Tags are gathered from alias-like fields plus industry and category,
	// deduplicated by exact string equality in first-seen order.
	Tags []string `json:"tags" yaml:"tags"`

	// Category, Industry, Featured and Added pass through from the document
	// and may hold a string, a list of strings, or another scalar.
	Category any `json:"category" yaml:"category"`
	Industry any `json:"industry" yaml:"industry"`
	Featured any `json:"featured" yaml:"featured"`
	Added    any `json:"added" yaml:"added"`
}

// Outcome is the result of processing one row or one document.
type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// RowResult records what happened to one spreadsheet row.
type RowResult struct {
	// Row is the zero-based data row index within the sheet.
	Row int `json:"row" yaml:"row"`

	// ID is the sanitized identifier the row was written under.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Path is the document file written. Empty unless Outcome is written.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// Reason explains a skip or failure, or notes an overwrite.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Overwrote is set when the row replaced a document written earlier in the run.
	Overwrote bool `json:"overwrote,omitempty" yaml:"overwrote,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// SheetResult aggregates the row results of one sheet.
type SheetResult struct {
	Sheet    string      `json:"sheet" yaml:"sheet"`
	Category string      `json:"category" yaml:"category"`
	Rows     []RowResult `json:"rows" yaml:"rows"`

	// Err is set when the sheet as a whole was skipped (ErrSheetEmpty) or
	// could not be read.
	Err error `json:"-" yaml:"-"`
}

// Count returns the number of rows with the given outcome.
func (r SheetResult) Count(o Outcome) int {
	n := 0
	for _, row := range r.Rows {
		if row.Outcome == o {
			n++
		}
	}
	return n
}

// Succeeded reports whether at least one row produced a document.
func (r SheetResult) Succeeded() bool {
	return r.Count(OutcomeWritten) > 0
}

// DocResult records what happened to one document during indexing.
type DocResult struct {
	File    string  `json:"file" yaml:"file"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Reason  string  `json:"reason,omitempty" yaml:"reason,omitempty"`
	Err     error   `json:"-" yaml:"-"`
}

// IndexResult records the indexing of one category.
type IndexResult struct {
	Category string `json:"category" yaml:"category"`

	// Path is the artifact written. Empty when skipped or failed.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Records is the number of index records in the artifact.
	Records int `json:"records" yaml:"records"`

	// Skipped is set when the category directory did not exist.
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	Docs []DocResult `json:"docs,omitempty" yaml:"docs,omitempty"`

	// Err wraps ErrIndexWrite when the artifact could not be written. It is
	// also set, without ErrIndexWrite, when the documents could not be listed.
	Err error `json:"-" yaml:"-"`
}

// RunSummary is the outcome of a full pipeline run.
type RunSummary struct {
	RunID   string        `json:"run_id" yaml:"run_id"`
	Source  string        `json:"source" yaml:"source"`
	Sheets  []SheetResult `json:"sheets" yaml:"sheets"`
	Indexes []IndexResult `json:"indexes" yaml:"indexes"`

	// CatalogSynced is set when the catalog database was loaded from the
	// fresh index artifacts.
	CatalogSynced bool `json:"catalog_synced" yaml:"catalog_synced"`

	// Generated is set when the generation step ran and succeeded.
	Generated bool `json:"generated" yaml:"generated"`
}

// SheetsSucceeded returns the number of sheets that produced at least one document.
func (s RunSummary) SheetsSucceeded() int {
	n := 0
	for _, sh := range s.Sheets {
		if sh.Succeeded() {
			n++
		}
	}
	return n
}

// Succeeded reports whether the conversion produced any document at all.
func (s RunSummary) Succeeded() bool {
	return s.SheetsSucceeded() > 0
}

// Documents returns the total number of documents written in the run.
func (s RunSummary) Documents() int {
	n := 0
	for _, sh := range s.Sheets {
		n += sh.Count(OutcomeWritten)
	}
	return n
}
