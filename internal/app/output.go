package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"winfs/internal/model"
	"winfs/internal/tags"
)

// Printer renders results for people or, with JSON, for scripts.
type Printer struct {
	w io.Writer

	cyan   *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	dim    *color.Color
}

// NewPrinter writes to w. Colors follow fatih/color's terminal detection
// unless plain is set.
func NewPrinter(w io.Writer, plain bool) *Printer {
	p := &Printer{
		w:      w,
		cyan:   color.New(color.FgCyan, color.Bold),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		dim:    color.New(color.Faint),
	}
	if plain {
		for _, c := range []*color.Color{p.cyan, p.green, p.red, p.yellow, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

// Report prints the search header and one line per hit.
func (p *Printer) Report(r model.SearchReport) {
	p.cyan.Fprintf(p.w, "Searching %s\n", r.Glob)
	if r.WorkDir != "" {
		p.dim.Fprintf(p.w, "  in %s\n", r.WorkDir)
	}

	if r.EngineFailure != "" {
		p.red.Fprintf(p.w, "%s search failed, no matches: %s\n", model.IconFailed, r.EngineFailure)
		return
	}
	if len(r.Matches) == 0 {
		p.yellow.Fprintln(p.w, "No matches.")
		return
	}

	for _, m := range r.Matches {
		fmt.Fprintf(p.w, "  %s %s\n", model.IconMatch, m.Display)
	}
	fmt.Fprintf(p.w, "\n%d ", len(r.Matches))
	p.green.Fprint(p.w, plural(len(r.Matches), "match", "matches"))
	if r.Skipped > 0 {
		p.dim.Fprintf(p.w, " (%d unreadable skipped)", r.Skipped)
	}
	fmt.Fprintln(p.w)
}

// Edits prints the tag editor report.
func (p *Printer) Edits(r tags.Report) {
	if len(r.Files) == 0 {
		return
	}
	edited := model.IconEdited
	if r.DryRun {
		edited = model.IconDryRun
		p.yellow.Fprintln(p.w, "\nDry run, nothing written:")
	} else {
		fmt.Fprintln(p.w)
	}

	for _, f := range r.Files {
		switch {
		case f.Err != nil:
			p.red.Fprintf(p.w, "  %s %s: %v\n", model.IconFailed, f.Path, f.Err)
		case f.Skipped:
			p.dim.Fprintf(p.w, "  %s %s (not %s)\n", model.IconSkipped, f.Path, tags.Ext)
		case len(f.Changes) == 0:
			p.dim.Fprintf(p.w, "  %s %s\n", model.IconUnchanged, f.Path)
		default:
			p.green.Fprintf(p.w, "  %s %s\n", edited, f.Path)
			for _, c := range f.Changes {
				fmt.Fprintf(p.w, "      %s: %q → %q\n", c.Frame, c.Before, c.After)
			}
		}
	}

	fmt.Fprintf(p.w, "\n%d edited", r.Edited())
	if failed := len(r.Failed()); failed > 0 {
		p.red.Fprintf(p.w, ", %d failed", failed)
	}
	fmt.Fprintln(p.w)
}

// jsonReport is the --json document.
type jsonReport struct {
	model.SearchReport
	Edits  []jsonEdit `json:"edits,omitempty"`
	DryRun bool       `json:"dry_run,omitempty"`
}

type jsonEdit struct {
	tags.FileResult
	Error string `json:"error,omitempty"`
}

// JSON writes the search and edit reports as one indented document.
func (p *Printer) JSON(r model.SearchReport, edits tags.Report) error {
	doc := jsonReport{SearchReport: r, DryRun: edits.DryRun}
	for _, f := range edits.Files {
		e := jsonEdit{FileResult: f}
		if f.Err != nil {
			e.Error = f.Err.Error()
		}
		doc.Edits = append(doc.Edits, e)
	}

	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
