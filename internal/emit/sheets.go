// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import "strings"

// SheetKind identifies a sheet with a known layout.
type SheetKind string

const (
	SheetUnknown    SheetKind = ""
	SheetKPI        SheetKind = "KPI"
	SheetEvents     SheetKind = "Events"
	SheetDimensions SheetKind = "Dimensions"
)

// SheetConfig maps a sheet to its category directory and identifier fields.
type SheetConfig struct {
	// Category is the directory under the documents root.
	Category string

	// IDField is the column tried first for the document identifier.
	IDField string

	// FallbackIDField is tried when IDField is absent or empty.
	FallbackIDField string
}

var sheetTable = map[SheetKind]SheetConfig{
	SheetKPI:        {Category: "kpis", IDField: "id", FallbackIDField: "name"},
	SheetEvents:     {Category: "events", IDField: "id", FallbackIDField: "name"},
	SheetDimensions: {Category: "dimensions", IDField: "id", FallbackIDField: "name"},
}

// knownSheets fixes the iteration order of the table.
var knownSheets = []SheetKind{SheetKPI, SheetEvents, SheetDimensions}

// KindOf returns the kind for a sheet name. Matching is exact.
func KindOf(sheetName string) SheetKind {
	k := SheetKind(sheetName)
	if _, ok := sheetTable[k]; ok {
		return k
	}
	return SheetUnknown
}

// ConfigFor returns the configuration for a sheet. Unknown sheets map to a
// category named after the lower-cased sheet and use "name" as identifier.
func ConfigFor(sheetName string) SheetConfig {
	if cfg, ok := sheetTable[KindOf(sheetName)]; ok {
		return cfg
	}
	return SheetConfig{
		Category:        fallbackCategory(sheetName),
		IDField:         "name",
		FallbackIDField: "name",
	}
}

// Categories returns the configured categories in table order.
func Categories() []string {
	out := make([]string, 0, len(knownSheets))
	for _, k := range knownSheets {
		out = append(out, sheetTable[k].Category)
	}
	return out
}

func fallbackCategory(sheetName string) string {
	c := strings.ToLower(strings.TrimSpace(sheetName))
	c = strings.Join(strings.Fields(c), "_")
	if c == "" || c == "." || c == ".." || strings.ContainsAny(c, `/\`) {
		return Sanitize(sheetName)
	}
	return c
}
