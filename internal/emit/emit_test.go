// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package emit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkpis/sheetsync/internal/document"
	"github.com/openkpis/sheetsync/internal/normalize"
	"github.com/openkpis/sheetsync/internal/sheet"
	"github.com/openkpis/sheetsync/pkg/types"
)

func newTestEmitter(t *testing.T, policy types.CollisionPolicy) (*Emitter, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	var log bytes.Buffer
	e := NewEmitter(types.ConversionConfig{DocumentsDir: dir, Collision: policy}, &log)
	return e, dir, &log
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Revenue Growth", "revenue_growth"},
		{"  Average Order Value (AOV) ", "average_order_value_aov"},
		{"add-to-cart", "add_to_cart"},
		{"a - - b", "a_b"},
		{"__leading and trailing__", "leading_and_trailing"},
		{"Click-Through Rate %", "click_through_rate"},
		{"Café Visits", "café_visits"},
		{"", Unnamed},
		{"   ", Unnamed},
		{"!!!", Unnamed},
		{"---", Unnamed},
		{"___", Unnamed},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeNeverEmpty(t *testing.T) {
	inputs := []string{"", " ", "\t\n", "-", "_", "()", "#$%^&*", "- _ -", " ", "a", "..", "/"}
	for _, in := range inputs {
		got := Sanitize(in)
		assert.NotEmpty(t, got, "input %q", in)
		assert.NotContains(t, got, "/", "input %q", in)
		assert.NotContains(t, got, ".", "input %q", in)
	}
}

func TestDeriveIdentifier(t *testing.T) {
	cfg := SheetConfig{Category: "kpis", IDField: "id", FallbackIDField: "name"}

	doc := func(fields ...document.Field) document.Document {
		return document.Document{Fields: fields}
	}

	tests := []struct {
		name string
		doc  document.Document
		want string
	}{
		{
			name: "primary field",
			doc:  doc(document.Field{Name: "id", Value: normalize.Scalar("arpu")}, document.Field{Name: "name", Value: normalize.Scalar("ARPU")}),
			want: "arpu",
		},
		{
			name: "primary list uses first element",
			doc:  doc(document.Field{Name: "id", Value: normalize.List("first", "second")}),
			want: "first",
		},
		{
			name: "fallback field",
			doc:  doc(document.Field{Name: "name", Value: normalize.Scalar("Revenue Growth")}),
			want: "Revenue Growth",
		},
		{
			name: "empty primary list falls back",
			doc:  doc(document.Field{Name: "id", Value: normalize.List()}, document.Field{Name: "name", Value: normalize.List("Churn", "Rate")}),
			want: "Churn",
		},
		{
			name: "numeric identifier",
			doc:  doc(document.Field{Name: "id", Value: normalize.Scalar(1042)}),
			want: "1042",
		},
		{
			name: "synthesized",
			doc:  doc(document.Field{Name: "description", Value: normalize.Scalar("orphan")}),
			want: "kpi_7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveIdentifier(tt.doc, cfg, "KPI", 7))
		})
	}
}

func TestConfigFor(t *testing.T) {
	assert.Equal(t, SheetConfig{Category: "kpis", IDField: "id", FallbackIDField: "name"}, ConfigFor("KPI"))
	assert.Equal(t, "events", ConfigFor("Events").Category)
	assert.Equal(t, "dimensions", ConfigFor("Dimensions").Category)

	unknown := ConfigFor("Dashboards")
	assert.Equal(t, SheetConfig{Category: "dashboards", IDField: "name", FallbackIDField: "name"}, unknown)

	assert.Equal(t, "data_sources", ConfigFor("Data  Sources").Category)
	assert.Equal(t, SheetUnknown, KindOf("kpi"), "matching is exact")
	assert.Equal(t, "ab", ConfigFor("a/b").Category)

	assert.Equal(t, []string{"kpis", "events", "dimensions"}, Categories())
}

func TestEmitSheetScenario(t *testing.T) {
	e, dir, _ := newTestEmitter(t, types.CollisionOverwrite)

	tbl := &sheet.Table{
		Name:    "KPI",
		Columns: []string{"id", "name", "description"},
		Rows: []sheet.Row{
			{"id": "arpu", "name": "Average Revenue Per User"},
			{"description": "row without identifiers"},
		},
		Index: []int{0, 1},
	}

	res := e.EmitSheet(tbl)
	require.NoError(t, res.Err)
	assert.Equal(t, "kpis", res.Category)
	assert.True(t, res.Succeeded())
	require.Len(t, res.Rows, 2)

	assert.FileExists(t, filepath.Join(dir, "kpis", "arpu.yml"))
	assert.FileExists(t, filepath.Join(dir, "kpis", "kpi_1.yml"))
	assert.Equal(t, "arpu", res.Rows[0].ID)
	assert.Equal(t, "kpi_1", res.Rows[1].ID)
	assert.Equal(t, []string{"kpis"}, e.Categories())
}

func TestEmitRoundTrip(t *testing.T) {
	e, dir, _ := newTestEmitter(t, types.CollisionOverwrite)

	tbl := &sheet.Table{
		Name:    "Metrics",
		Columns: []string{"name", "tags", "blank"},
		Rows:    []sheet.Row{{"name": "Revenue Growth", "tags": "finance, growth", "blank": "   "}},
		Index:   []int{0},
	}
	res := e.EmitSheet(tbl)
	require.True(t, res.Succeeded())

	path := filepath.Join(dir, "metrics", "revenue_growth.yml")
	require.Equal(t, path, res.Rows[0].Path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "name: Revenue Growth\ntags:\n"), "got %q", data)
	assert.Contains(t, string(data), "- finance\n")
	assert.NotContains(t, string(data), "blank")

	got, err := document.ReadFile(path)
	require.NoError(t, err)
	want := document.Document{Fields: []document.Field{
		{Name: "name", Value: normalize.Scalar("Revenue Growth")},
		{Name: "tags", Value: normalize.List("finance", "growth")},
	}}
	assert.True(t, want.Equal(got), "got %v", got.Map())
}

func TestEmitSheetEmpty(t *testing.T) {
	e, dir, log := newTestEmitter(t, types.CollisionOverwrite)

	res := e.EmitSheet(&sheet.Table{Name: "Events", Columns: []string{"id"}})
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, types.ErrSheetEmpty))
	assert.False(t, res.Succeeded())
	assert.Contains(t, log.String(), "skipped sheet Events")
	assert.NoDirExists(t, filepath.Join(dir, "events"))
}

func collisionTable() *sheet.Table {
	return &sheet.Table{
		Name:    "Events",
		Columns: []string{"id", "source"},
		Rows: []sheet.Row{
			{"id": "Purchase", "source": "web"},
			{"id": "purchase", "source": "app"},
			{"id": "PURCHASE", "source": "pos"},
		},
		Index: []int{0, 1, 2},
	}
}

func TestEmitCollisionPolicies(t *testing.T) {
	t.Run("overwrite", func(t *testing.T) {
		e, dir, log := newTestEmitter(t, types.CollisionOverwrite)
		res := e.EmitSheet(collisionTable())

		assert.Equal(t, 3, res.Count(types.OutcomeWritten))
		assert.False(t, res.Rows[0].Overwrote)
		assert.True(t, res.Rows[1].Overwrote)
		assert.True(t, res.Rows[2].Overwrote)
		assert.Contains(t, res.Rows[2].Reason, "row 1")
		assert.Contains(t, log.String(), "overwrote")

		doc, err := document.ReadFile(filepath.Join(dir, "events", "purchase.yml"))
		require.NoError(t, err)
		src, _ := doc.Get("source")
		assert.Equal(t, "pos", src.Scalar(), "last row wins")
	})

	t.Run("suffix", func(t *testing.T) {
		e, dir, _ := newTestEmitter(t, types.CollisionSuffix)
		res := e.EmitSheet(collisionTable())

		assert.Equal(t, 3, res.Count(types.OutcomeWritten))
		assert.Equal(t, []string{"purchase", "purchase_2", "purchase_3"},
			[]string{res.Rows[0].ID, res.Rows[1].ID, res.Rows[2].ID})
		for _, name := range []string{"purchase", "purchase_2", "purchase_3"} {
			assert.FileExists(t, filepath.Join(dir, "events", name+".yml"))
		}
	})

	t.Run("reject", func(t *testing.T) {
		e, dir, _ := newTestEmitter(t, types.CollisionReject)
		res := e.EmitSheet(collisionTable())

		assert.Equal(t, 1, res.Count(types.OutcomeWritten))
		assert.Equal(t, 2, res.Count(types.OutcomeFailed))
		assert.True(t, errors.Is(res.Rows[1].Err, types.ErrRowProcessing))
		assert.True(t, res.Succeeded())

		doc, err := document.ReadFile(filepath.Join(dir, "events", "purchase.yml"))
		require.NoError(t, err)
		src, _ := doc.Get("source")
		assert.Equal(t, "web", src.Scalar(), "first row kept")
	})
}

func TestEmitRowFailureDoesNotStopSheet(t *testing.T) {
	e, dir, log := newTestEmitter(t, types.CollisionOverwrite)

	// A directory where the first document should go makes its write fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dimensions", "country.yml"), 0o755))

	tbl := &sheet.Table{
		Name:    "Dimensions",
		Columns: []string{"id"},
		Rows:    []sheet.Row{{"id": "country"}, {"id": "device"}},
		Index:   []int{0, 1},
	}
	res := e.EmitSheet(tbl)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, types.OutcomeFailed, res.Rows[0].Outcome)
	assert.True(t, errors.Is(res.Rows[0].Err, types.ErrRowProcessing))
	assert.Equal(t, types.OutcomeWritten, res.Rows[1].Outcome)
	assert.True(t, res.Succeeded())
	assert.FileExists(t, filepath.Join(dir, "dimensions", "device.yml"))
	assert.True(t, strings.Contains(log.String(), "failed  Dimensions row 0"))
}

func TestEmitRowWithoutValuesIsSkipped(t *testing.T) {
	e, _, _ := newTestEmitter(t, types.CollisionOverwrite)
	res := e.EmitRow(ConfigFor("KPI"), "KPI", []string{"id"}, sheet.Row{"id": "  "}, 4)
	assert.Equal(t, types.OutcomeSkipped, res.Outcome)
	assert.Empty(t, res.Path)
}

func TestBuildDocumentKeepsColumnOrder(t *testing.T) {
	doc := BuildDocument(
		[]string{"zeta", "alpha", "missing", "mid"},
		sheet.Row{"mid": 3, "alpha": "a, b", "zeta": true},
	)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, doc.Names())
	v, _ := doc.Get("alpha")
	assert.Equal(t, []string{"a", "b"}, v.List())
}
