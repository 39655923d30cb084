// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Pipeline error taxonomy. Stages wrap these with context; callers test with errors.Is.
var (
	// ErrSourceUnavailable means the spreadsheet source is missing or unparsable. Fatal.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSheetEmpty means a sheet had no usable rows. The sheet is skipped.
	ErrSheetEmpty = errors.New("sheet empty")

	// ErrRowProcessing means a single row could not be normalized or written.
	ErrRowProcessing = errors.New("row processing failed")

	// ErrDocumentParse means a document file could not be parsed during indexing.
	ErrDocumentParse = errors.New("document parse failed")

	// ErrIndexWrite means a category index artifact could not be written.
	ErrIndexWrite = errors.New("index write failed")

	// ErrGenerationInvocation means the external generation process failed or is missing.
	ErrGenerationInvocation = errors.New("generation invocation failed")

	// ErrNoDocuments means no sheet produced a document: the run is a total failure.
	ErrNoDocuments = errors.New("no documents produced")
)
