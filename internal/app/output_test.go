package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winfs/internal/model"
	"winfs/internal/tags"
)

func sampleEdits() tags.Report {
	return tags.Report{Files: []tags.FileResult{
		{Path: "/Music/a.mp3", Changes: []tags.Change{{Frame: "TIT2", Before: "a (Live)", After: "a"}}},
		{Path: "/Music/b.mp3"},
		{Path: "/Music/cover.jpg", Skipped: true},
		{Path: "/Music/c.mp3", Err: errors.New("permission denied")},
	}}
}

func TestPrinterEdits(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).Edits(sampleEdits())

	out := buf.String()
	assert.Contains(t, out, model.IconEdited+" /Music/a.mp3")
	assert.Contains(t, out, `TIT2: "a (Live)" → "a"`)
	assert.Contains(t, out, model.IconUnchanged+" /Music/b.mp3")
	assert.Contains(t, out, "(not .mp3)")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "1 edited, 1 failed")
}

func TestPrinterEditsDryRun(t *testing.T) {
	r := sampleEdits()
	r.DryRun = true

	var buf bytes.Buffer
	NewPrinter(&buf, true).Edits(r)
	assert.Contains(t, buf.String(), "Dry run, nothing written")
	assert.Contains(t, buf.String(), model.IconDryRun+" /Music/a.mp3")
}

func TestPrinterReportSkipped(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).Report(model.SearchReport{
		Glob:    "/Music/*",
		Matches: []model.Match{{Path: "/Music/a.mp3", Display: "/Music/a.mp3"}},
		Skipped: 2,
	})

	out := buf.String()
	assert.Contains(t, out, "Searching /Music/*")
	assert.Contains(t, out, "1 match (2 unreadable skipped)")
}

func TestPrinterJSONCarriesEditErrors(t *testing.T) {
	var buf bytes.Buffer
	report := model.SearchReport{Path: "/Music", Glob: "/Music/*", Matches: []model.Match{}}
	require.NoError(t, NewPrinter(&buf, true).JSON(report, sampleEdits()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "/Music", doc["path"])
	assert.Equal(t, []any{}, doc["matches"])

	edits, ok := doc["edits"].([]any)
	require.True(t, ok)
	require.Len(t, edits, 4)
	assert.Equal(t, "permission denied", edits[3].(map[string]any)["error"])
	assert.Equal(t, true, edits[2].(map[string]any)["skipped"])
}
