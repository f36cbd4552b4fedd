package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/couchcryptid/inmet-scraper/internal/adapter/parquetfile"
	"github.com/couchcryptid/inmet-scraper/internal/domain"
	"github.com/couchcryptid/inmet-scraper/internal/inmettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYear(t *testing.T, dir string, year, rows int) {
	t.Helper()
	table, err := domain.ParseStationCSV(bytes.NewReader(inmettest.StationFile(year, rows)))
	require.NoError(t, err)
	w := parquetfile.NewWriter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, w.WriteTable(domain.OutputPath(dir, year), table))
}

func TestRun_AllPresent(t *testing.T) {
	dir := t.TempDir()
	writeYear(t, dir, 2019, 24)
	writeYear(t, dir, 2020, 12)

	var out bytes.Buffer
	code := run(context.Background(), &out, dir, 2019, 2020)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "2019: 24 rows, 6 columns")
	assert.Contains(t, out.String(), "2020: 12 rows, 6 columns")
	assert.Contains(t, out.String(), "All checks passed.")
}

func TestRun_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeYear(t, dir, 2019, 5)
	require.NoError(t, os.WriteFile(domain.OutputPath(dir, 2021), []byte("not parquet"), 0o600))

	var out bytes.Buffer
	code := run(context.Background(), &out, dir, 2019, 2021)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "2020: no artifact")
	assert.Contains(t, out.String(), "--- Parquet readability ---")
	assert.Contains(t, out.String(), "Inspection FAILED.")
}
