// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openkpis/sheetsync/internal/document"
)

var (
	disallowed  = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s-]`)
	separatorRe = regexp.MustCompile(`[-\s]+`)
)

// Unnamed is returned by Sanitize when nothing usable remains.
const Unnamed = "unnamed"

// Sanitize makes raw safe for use as a filename: characters other than word
// characters, whitespace and hyphens are removed, runs of whitespace and
// hyphens become one underscore, the result is lower-cased and stripped of
// leading and trailing underscores. It never returns an empty string.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = disallowed.ReplaceAllString(s, "")
	s = separatorRe.ReplaceAllString(s, "_")
	s = strings.ToLower(s)
	s = strings.Trim(s, "_")
	if s == "" {
		return Unnamed
	}
	return s
}

// DeriveIdentifier picks the raw identifier for a row: the primary field,
// then the fallback field, each using the first element of a list, then a
// synthesized "{prefix}_{rowIndex}" where prefix is the lower-cased sheet
// name.
func DeriveIdentifier(doc document.Document, cfg SheetConfig, sheetName string, rowIndex int) string {
	for _, field := range []string{cfg.IDField, cfg.FallbackIDField} {
		if field == "" {
			continue
		}
		v, ok := doc.Get(field)
		if !ok {
			continue
		}
		if id, ok := v.First(); ok && strings.TrimSpace(id) != "" {
			return id
		}
	}
	return fmt.Sprintf("%s_%d", strings.ToLower(strings.TrimSpace(sheetName)), rowIndex)
}
