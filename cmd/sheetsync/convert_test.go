// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeKPIWorkbook(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("KPI")
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SetSheetRow("KPI", "A1", &[]any{"ID", "Name", "Tags"}))
	require.NoError(t, f.SetSheetRow("KPI", "A2", &[]any{"arpu", "ARPU", "finance, growth"}))
	require.NoError(t, f.SetSheetRow("KPI", "A3", &[]any{"churn_rate", "Churn Rate", "retention"}))

	path := filepath.Join(dir, "openkpis.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestConvertJSONOutput(t *testing.T) {
	resetViper(t)
	root := t.TempDir()
	viper.Set("project_root", root)
	viper.Set("generation.skip", true)

	var stdout, stderr bytes.Buffer
	convertCmd.SetOut(&stdout)
	convertCmd.SetErr(&stderr)
	convertCmd.SetContext(context.Background())
	require.NoError(t, convertCmd.Flags().Set("json", "true"))
	t.Cleanup(func() {
		convertCmd.SetOut(nil)
		convertCmd.SetErr(nil)
		_ = convertCmd.Flags().Set("json", "false")
	})

	require.NoError(t, runConvert(convertCmd, []string{writeKPIWorkbook(t, root)}))

	var summary struct {
		RunID  string `json:"run_id"`
		Sheets []struct {
			Sheet    string `json:"sheet"`
			Category string `json:"category"`
			Rows     []struct {
				Outcome string `json:"outcome"`
			} `json:"rows"`
		} `json:"sheets"`
		Indexes []struct {
			Category string `json:"category"`
			Records  int    `json:"records"`
		} `json:"indexes"`
		Generated bool `json:"generated"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary), "stdout must hold only the summary: %s", stdout.String())

	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Sheets, 1)
	assert.Equal(t, "kpis", summary.Sheets[0].Category)
	assert.Len(t, summary.Sheets[0].Rows, 2)
	records := make(map[string]int)
	for _, ix := range summary.Indexes {
		records[ix.Category] = ix.Records
	}
	assert.Equal(t, 2, records["kpis"])
	assert.False(t, summary.Generated)

	assert.Contains(t, stderr.String(), "sheets: 1/1 succeeded", "progress goes to stderr")
}

func TestConvertTableOutput(t *testing.T) {
	resetViper(t)
	root := t.TempDir()
	viper.Set("project_root", root)
	viper.Set("generation.skip", true)

	var stdout bytes.Buffer
	convertCmd.SetOut(&stdout)
	convertCmd.SetContext(context.Background())
	t.Cleanup(func() { convertCmd.SetOut(nil) })

	require.NoError(t, runConvert(convertCmd, []string{writeKPIWorkbook(t, root)}))

	out := stdout.String()
	assert.Contains(t, out, "sheets: 1/1 succeeded")
	assert.Contains(t, out, "index kpis")
	assert.Contains(t, out, "2 records")
}
