// Package logging builds the one logger the rest of winfs receives.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w. verbose forces debug output regardless
// of level.
func New(w io.Writer, level log.Level, verbose bool) *log.Logger {
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "winfs",
		ReportTimestamp: verbose,
		ReportCaller:    verbose,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
