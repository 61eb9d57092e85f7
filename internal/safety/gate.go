// Package safety decides whether a NormalizedPath may be searched and edited.
//
// Paths on the primary volume (rooted at "/") are denied when a rule of the
// forbidden path table matches. Paths on any other drive are always allowed:
// there is no per-drive table.
package safety

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"winfs/internal/pathnorm"
)

// ErrForbiddenPath is wrapped by every ForbiddenError.
var ErrForbiddenPath = errors.New("forbidden system path")

// ForbiddenError reports which rule vetoed a path.
type ForbiddenError struct {
	Path string
	Rule Rule
}

func (e *ForbiddenError) Error() string {
	if e.Rule.Kind == RuleRoot {
		return fmt.Sprintf("%s: %q is the root of the system drive", ErrForbiddenPath, e.Path)
	}
	return fmt.Sprintf("%s: %q matches %s rule %q", ErrForbiddenPath, e.Path, e.Rule.Kind, e.Rule.Pattern)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbiddenPath }

// Verdict is the gate's decision for one path. It is never cached.
type Verdict struct {
	Path string
	Safe bool
	// Rule is the rule that fired, nil for safe paths.
	Rule *Rule
}

// Gate evaluates paths against an immutable Table.
type Gate struct {
	table  Table
	logger *log.Logger
}

// NewGate returns a gate over table. A nil logger discards output.
func NewGate(table Table, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Gate{table: table, logger: logger}
}

// WithinPrimaryDrive reports whether p lives on the collapsed primary volume.
func (g *Gate) WithinPrimaryDrive(p string) bool {
	root, _ := pathnorm.SplitRoot(strings.TrimSpace(p))
	return strings.HasPrefix(root, "/")
}

// Forbidden returns the first rule matching p: root, then segments, then prefixes.
func (g *Gate) Forbidden(p string) (Rule, bool) {
	rule, ok := g.table.first(p)
	if ok {
		g.logger.Warn("forbidden system path", "path", p, "rule", rule.Kind, "pattern", rule.Pattern)
	}
	return rule, ok
}

// Check returns the verdict for p.
func (g *Gate) Check(p string) Verdict {
	if !g.WithinPrimaryDrive(p) {
		return Verdict{Path: p, Safe: true}
	}
	if rule, ok := g.Forbidden(p); ok {
		return Verdict{Path: p, Safe: false, Rule: &rule}
	}
	return Verdict{Path: p, Safe: true}
}

// IsSafe is !WithinPrimaryDrive(p) || !Forbidden(p).
func (g *Gate) IsSafe(p string) bool {
	return g.Check(p).Safe
}

// Require returns a *ForbiddenError when p is not safe.
func (g *Gate) Require(p string) error {
	v := g.Check(p)
	if v.Safe {
		return nil
	}
	return &ForbiddenError{Path: p, Rule: *v.Rule}
}
