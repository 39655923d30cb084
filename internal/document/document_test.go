// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkpis/sheetsync/internal/normalize"
)

func TestRoundTripKeepsOrderAndTypes(t *testing.T) {
	var d Document
	d.Set("name", normalize.Scalar("Revenue Growth"))
	d.Set("tags", normalize.List("finance", "growth"))
	d.Set("weight", normalize.Scalar(3))
	d.Set("ratio", normalize.Scalar(0.25))
	d.Set("featured", normalize.Scalar(true))
	d.Set("code", normalize.Scalar("007"))
	d.Set("flag", normalize.Scalar("true"))
	d.Set("added", normalize.Scalar("2024-03-01"))
	d.Set("notes", normalize.Scalar("line one\nline two"))

	path := filepath.Join(t.TempDir(), "nested", "doc.yml")
	require.NoError(t, WriteFile(path, d))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, d.Names(), got.Names())
	assert.True(t, d.Equal(got), "got %v", got.Map())
}

func TestSetReplacesInPlace(t *testing.T) {
	var d Document
	d.Set("a", normalize.Scalar(1))
	d.Set("b", normalize.Scalar(2))
	d.Set("a", normalize.Scalar(3))

	assert.Equal(t, []string{"a", "b"}, d.Names())
	v, ok := d.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v.Scalar())

	_, ok = d.Get("missing")
	assert.False(t, ok)
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]any
		wantErr bool
	}{
		{name: "empty input", input: "", want: map[string]any{}},
		{name: "comment only", input: "# nothing\n", want: map[string]any{}},
		{
			name:  "nulls and empty strings dropped",
			input: "id: arpu\nadded: null\ndescription: ''\ntags: []\n",
			want:  map[string]any{"id": "arpu"},
		},
		{
			name:  "sequence of mixed scalars becomes strings",
			input: "aliases: [ARPU, 2024, true]\n",
			want:  map[string]any{"aliases": []string{"ARPU", "2024", "true"}},
		},
		{name: "not a mapping", input: "- a\n- b\n", wantErr: true},
		{name: "malformed", input: "key: [unclosed\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Map())
		})
	}
}
