// Package search enumerates the files described by a scope.Scope.
//
// Matching is case-insensitive. A "/**/" in a pattern also matches zero
// directories, and names starting with a dot are never matched. Unreadable
// entries are skipped and counted rather than failing the search.
package search

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"winfs/internal/scope"
)

// ErrEngineFailure marks an internal fault of the engine, as opposed to a
// search that simply matched nothing.
var ErrEngineFailure = errors.New("enumeration engine failure")

// Result is the outcome of one search.
type Result struct {
	// Paths are host paths in lexical order.
	Paths []string
	// Skipped counts entries that could not be read.
	Skipped int
}

// Engine walks the filesystem for a Scope.
type Engine struct {
	logger *log.Logger
}

// NewEngine returns an engine. A nil logger discards output.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{logger: logger}
}

// Find runs the search. An empty Result with a nil error means no matches.
func (e *Engine) Find(ctx context.Context, s scope.Scope) (Result, error) {
	exclude, err := compileAll(s.Exclude)
	if err != nil {
		return Result{}, err
	}
	if s.SingleFile {
		return e.findFile(s, exclude)
	}

	include, err := compilePattern(s)
	if err != nil {
		return Result{}, err
	}

	base := walkBase(s)
	singleLevel := !strings.Contains(s.Pattern, "**")
	e.logger.Debug("search", "base", base, "glob", s.Glob(), "workdir", s.WorkDir)

	var res Result
	walkErr := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == base {
				return errors.Wrapf(ErrEngineFailure, "walk %s: %v", base, err)
			}
			// permission denied and friends: hide and move on
			res.Skipped++
			e.logger.Debug("skipping unreadable entry", "path", p, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == base {
			return nil
		}

		isDir := d.IsDir()
		if strings.HasPrefix(d.Name(), ".") {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		rel := strings.ToLower(matchPath(s, p))
		if isDir && exclude.match(rel+"/") || exclude.match(rel) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		if include.match(rel) && ((isDir && s.MatchDirs) || (!isDir && s.MatchFiles)) {
			res.Paths = append(res.Paths, p)
		}
		if isDir && singleLevel {
			return filepath.SkipDir
		}
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, ErrEngineFailure) {
			return Result{}, walkErr
		}
		return Result{}, errors.Wrap(walkErr, "search interrupted")
	}

	sort.Strings(res.Paths)
	return res, nil
}

func (e *Engine) findFile(s scope.Scope, exclude matcher) (Result, error) {
	p := filepath.FromSlash(s.Root)
	info, err := os.Stat(p)
	if err != nil {
		return Result{}, errors.Wrapf(ErrEngineFailure, "stat %s: %v", s.Root, err)
	}
	if info.IsDir() || exclude.match(strings.ToLower(s.Root)) {
		return Result{}, nil
	}
	return Result{Paths: []string{p}}, nil
}

// walkBase is the host directory the walk starts from.
func walkBase(s scope.Scope) string {
	if !s.Pivoted() {
		return filepath.FromSlash(s.Root)
	}
	return filepath.FromSlash(s.WorkDir + strings.TrimPrefix(s.Root, "/"))
}

// matchPath is p in the form the scope's glob is written in: slash
// separated, relative to the pivoted drive root when there is one.
func matchPath(s scope.Scope, p string) string {
	if !s.Pivoted() {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(filepath.FromSlash(s.WorkDir), p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return "/" + filepath.ToSlash(rel)
}

type matcher []glob.Glob

func (m matcher) match(p string) bool {
	for _, g := range m {
		if g.Match(p) {
			return true
		}
	}
	return false
}

// compilePattern quotes the literal root and extension so folder names such
// as "Best of [2020]" are not read as character classes.
func compilePattern(s scope.Scope) (matcher, error) {
	pattern := glob.QuoteMeta(strings.ToLower(s.Root)) +
		strings.ToLower(s.Pattern) +
		glob.QuoteMeta(strings.ToLower(s.Ext))
	return compileGlobstar(pattern)
}

func compileAll(patterns []string) (matcher, error) {
	var m matcher
	for _, p := range patterns {
		g, err := compileGlobstar(strings.ToLower(p))
		if err != nil {
			return nil, err
		}
		m = append(m, g...)
	}
	return m, nil
}

// compileGlobstar compiles pattern plus a variant where every "/**/" matches
// zero directories, the way shell globstar does.
func compileGlobstar(pattern string) (matcher, error) {
	variants := []string{pattern}
	if collapsed := strings.ReplaceAll(pattern, "/**/", "/"); collapsed != pattern {
		variants = append(variants, collapsed)
	}
	var m matcher
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return nil, errors.Wrapf(ErrEngineFailure, "pattern %q: %v", v, err)
		}
		m = append(m, g)
	}
	return m, nil
}
