package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `{
	"number": "INV-0001",
	"date": "2024-03-01",
	"dueDate": "2024-03-31",
	"template": "classic",
	"companyName": "Acme Studio",
	"clientName": "Globex",
	"clientEmail": "billing@globex.test",
	"items": [{"id": "a", "description": "Design work", "quantity": 2, "rate": 150}],
	"taxRate": 10
}`

// run executes invoicectl against the file store in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	argv := append([]string{"invoicectl", "--storage", "file", "--data-dir", dir}, args...)
	err := app.RunContext(context.Background(), argv)
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, "invoicectl %s", strings.Join(args, " "))
	return out
}

func saveSample(t *testing.T, dir string) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "invoice.json")
	require.NoError(t, os.WriteFile(src, []byte(sampleInvoice), 0o600))

	var saved struct {
		ID    string `json:"id"`
		Total string `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, dir, "save", src)), &saved))
	require.NotEmpty(t, saved.ID)
	return saved.ID
}

func TestInvoices(t *testing.T) {
	dir := t.TempDir()
	id := saveSample(t, dir)

	out := mustRun(t, dir, "list")
	assert.Contains(t, out, "INV-0001")
	assert.Contains(t, out, "Globex")
	assert.Contains(t, out, "$330.00")

	assert.Contains(t, mustRun(t, dir, "search", "globex"), id)
	assert.NotContains(t, mustRun(t, dir, "search", "initech"), id)

	assert.Contains(t, mustRun(t, dir, "list", "--status", "pending"), id)
	assert.NotContains(t, mustRun(t, dir, "list", "--status", "paid"), id)
	assert.Contains(t, mustRun(t, dir, "list", "--from", "2024-03-01", "--to", "2024-03-31"), id)
	assert.NotContains(t, mustRun(t, dir, "list", "--from", "2024-04-01"), id)

	assert.Equal(t, "INV-0001 paid\n", mustRun(t, dir, "toggle", id))
	assert.Contains(t, mustRun(t, dir, "list", "--status", "paid"), id)

	assert.Contains(t, mustRun(t, dir, "show", id), `"clientName": "Globex"`)
	assert.Contains(t, mustRun(t, dir, "stats"), "Paid")

	dup := mustRun(t, dir, "duplicate", id)
	assert.Contains(t, dup, "INV-0002")

	mustRun(t, dir, "delete", id)
	_, err := run(t, dir, "show", id)
	require.Error(t, err)
}

func TestInvalidArguments(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"show"},
		{"list", "--status", "overdue"},
		{"list", "--from", "March"},
		{"save", filepath.Join(dir, "missing.json")},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := run(t, dir, args...)
			require.Error(t, err)
		})
	}

	_, err := run(t, dir, "--storage", "tape", "list")
	require.Error(t, err)
}

func TestExportImport(t *testing.T) {
	src := t.TempDir()
	saveSample(t, src)

	for _, tt := range []struct {
		name string
		args []string
	}{
		{name: "Snapshot", args: nil},
		{name: "Backup", args: []string{"--backup"}},
		{name: "Gzip", args: []string{"--gzip"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			archive := filepath.Join(t.TempDir(), "export")
			mustRun(t, src, append([]string{"export", "--out", archive}, tt.args...)...)

			dst := t.TempDir()
			out := mustRun(t, dst, "import", archive)
			assert.Contains(t, out, "imported 1 invoices")
			assert.Contains(t, mustRun(t, dst, "list"), "INV-0001")
		})
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	id := saveSample(t, dir)

	html := mustRun(t, dir, "render-html", id)
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "INV-0001")

	fragment := mustRun(t, dir, "render-html", "--fragment", "--theme", "minimal", id)
	assert.NotContains(t, fragment, "<html")
	assert.Contains(t, fragment, "Globex")

	pdfPath := filepath.Join(t.TempDir(), "out.pdf")
	mustRun(t, dir, "render-pdf", "--out", pdfPath, id)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	// A second save reuses the number, so file names must not collide.
	saveSample(t, dir)
	outDir := filepath.Join(t.TempDir(), "pdf")
	out := mustRun(t, dir, "render-all", "--dir", outDir, "--concurrency", "2")
	assert.Contains(t, out, "rendered 2 invoices")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "seeded 4 invoices\n", mustRun(t, dir, "seed", "--count", "4"))

	out := mustRun(t, dir, "list")
	for _, number := range []string{"INV-0001", "INV-0002", "INV-0003", "INV-0004"} {
		assert.Contains(t, out, number)
	}
	assert.Contains(t, mustRun(t, dir, "list", "--status", "paid"), "INV-0003")

	_, err := run(t, dir, "seed", "--count", "0")
	require.Error(t, err)
}
