// Package tags edits ID3v2 text frames of mp3 files in bulk.
package tags

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

var (
	ErrUnknownTag = errors.New("unknown tag")
	ErrEmptyEdit  = errors.New("edit needs a replacement or a find string")
)

// Ext is the only extension the editor touches.
const Ext = ".mp3"

// frameNames maps friendly tag names to id3v2 frame descriptions, resolved
// per tag version with Tag.CommonID. "artist" also rewrites the album artist.
var frameNames = map[string][]string{
	"artist": {"Lead artist/Lead performer/Soloist/Performing group", "Band/Orchestra/Accompaniment"},
	"title":  {"Title/Songname/Content description"},
	"album":  {"Album/Movie/Show title"},
	"genre":  {"Content type"},
	"year":   {"Year"},
}

// Edit describes one change applied to every file.
type Edit struct {
	// Tag is a friendly name (artist, title, album, genre, year) or a raw
	// text frame id such as TCOM.
	Tag string
	// Find, when set, limits the edit to replacing this substring.
	Find    string
	Replace string
}

// Validate checks the edit before any file is opened.
func (e Edit) Validate() error {
	if _, ok := frameNames[strings.ToLower(e.Tag)]; !ok && !isTextFrameID(e.Tag) {
		return errors.Wrapf(ErrUnknownTag, "%q", e.Tag)
	}
	if e.Find == "" && e.Replace == "" {
		return ErrEmptyEdit
	}
	return nil
}

func isTextFrameID(id string) bool {
	if len(id) != 4 || id[0] != 'T' || id == "TXXX" {
		return false
	}
	for _, r := range id {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Change is one frame rewrite.
type Change struct {
	Frame  string `json:"frame"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string   `json:"path"`
	Changes []Change `json:"changes,omitempty"`
	Skipped bool     `json:"skipped,omitempty"`
	Err     error    `json:"-"`
}

// Report collects per-file outcomes. A failing file never aborts the batch.
type Report struct {
	Files  []FileResult
	DryRun bool
}

// Edited counts files with at least one change.
func (r Report) Edited() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil && len(f.Changes) > 0 {
			n++
		}
	}
	return n
}

// Failed returns the results that carry an error.
func (r Report) Failed() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Editor applies Edits.
type Editor struct {
	logger *log.Logger
	dryRun bool
}

// NewEditor returns an editor. With dryRun set nothing is written.
func NewEditor(logger *log.Logger, dryRun bool) *Editor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Editor{logger: logger, dryRun: dryRun}
}

// Apply runs edit over files. Only an invalid edit or a cancelled context
// return an error; per-file problems end up in the Report.
func (e *Editor) Apply(ctx context.Context, files []string, edit Edit) (Report, error) {
	if err := edit.Validate(); err != nil {
		return Report{}, err
	}

	report := Report{DryRun: e.dryRun}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !strings.EqualFold(filepath.Ext(f), Ext) {
			e.logger.Debug("not an mp3, skipping", "path", f)
			report.Files = append(report.Files, FileResult{Path: f, Skipped: true})
			continue
		}
		res := e.applyFile(f, edit)
		if res.Err != nil {
			e.logger.Error("tag write failed", "path", f, "err", res.Err)
		}
		report.Files = append(report.Files, res)
	}
	return report, nil
}

func (e *Editor) applyFile(path string, edit Edit) FileResult {
	res := FileResult{Path: path}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		res.Err = errors.Wrapf(err, "open %s", path)
		return res
	}
	defer tag.Close()

	res.Changes = EditTag(tag, edit)
	if len(res.Changes) == 0 || e.dryRun {
		return res
	}
	if err := tag.Save(); err != nil {
		res.Err = errors.Wrapf(err, "save %s", path)
	}
	return res
}

// EditTag applies edit to an in-memory tag and returns what changed.
func EditTag(tag *id3v2.Tag, edit Edit) []Change {
	var changes []Change
	for _, id := range frameIDs(tag, edit.Tag) {
		before := tag.GetTextFrame(id).Text
		after := edit.Replace
		if edit.Find != "" {
			after = strings.ReplaceAll(before, edit.Find, edit.Replace)
		}
		if after == before {
			continue
		}
		tag.AddTextFrame(id, tag.DefaultEncoding(), after)
		changes = append(changes, Change{Frame: id, Before: before, After: after})
	}
	return changes
}

func frameIDs(tag *id3v2.Tag, name string) []string {
	descs, ok := frameNames[strings.ToLower(name)]
	if !ok {
		return []string{name}
	}
	ids := make([]string, 0, len(descs))
	for _, d := range descs {
		ids = append(ids, tag.CommonID(d))
	}
	return ids
}
