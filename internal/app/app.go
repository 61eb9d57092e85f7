// Package app wires the path pipeline, the safety gate, the search and the
// tag editor into one command invocation.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"winfs/internal/config"
	"winfs/internal/logging"
	"winfs/internal/model"
	"winfs/internal/pathnorm"
	"winfs/internal/prompt"
	"winfs/internal/safety"
	"winfs/internal/scope"
	"winfs/internal/search"
	"winfs/internal/tags"
)

var (
	// ErrNoUsablePath means neither the arguments, the working directory nor
	// the prompt produced a path that passed normalization and the gate.
	ErrNoUsablePath = errors.New("no usable path")
	ErrUsage        = errors.New("invalid arguments")
)

// Exit codes.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitNoPath    = 2
	ExitForbidden = 3
)

// PathError explains why an input produced no usable path. It matches both
// ErrNoUsablePath and the underlying cause.
type PathError struct {
	Input string
	Err   error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("no usable path %q: %v", e.Input, e.Err)
}

func (e *PathError) Unwrap() []error { return []error{ErrNoUsablePath, e.Err} }

// ExitCode maps a Run error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, safety.ErrForbiddenPath):
		return ExitForbidden
	case errors.Is(err, ErrNoUsablePath):
		return ExitNoPath
	default:
		return ExitError
	}
}

// Interactive reports whether prompting is possible: both ends are
// terminals and the user did not opt out.
func Interactive(in, out *os.File, noPrompt bool) bool {
	if noPrompt {
		return false
	}
	return isTerminal(in) && isTerminal(out)
}

func isTerminal(f *os.File) bool {
	return f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Options are the per-invocation arguments.
type Options struct {
	// Path is the raw --path value; PathSet reports whether the flag was given.
	Path    string
	PathSet bool
	Ext     string
	Recurse bool
	// Edit is applied to every mp3 hit when Edit.Tag is set.
	Edit        tags.Edit
	JSON        bool
	Interactive bool
}

func (o Options) validate() error {
	if o.Edit.Tag == "" {
		if o.Edit.Find != "" || o.Edit.Replace != "" {
			return errors.Wrap(ErrUsage, "--find and --replace need --tag")
		}
		return nil
	}
	return errors.Wrap(o.Edit.Validate(), "invalid tag edit")
}

// AskFunc asks the user for a path.
type AskFunc func(ctx context.Context, req prompt.Request) (string, error)

// App holds the collaborators of one invocation.
type App struct {
	norm     *pathnorm.Normalizer
	gate     *safety.Gate
	resolver *scope.Resolver
	engine   *search.Engine
	editor   *tags.Editor
	out      *Printer
	logger   *log.Logger

	ask     AskFunc
	getwd   func() (string, error)
	resolve pathnorm.ResolveFunc
}

// Option customizes an App.
type Option func(*App)

// WithAsk replaces the terminal prompt.
func WithAsk(ask AskFunc) Option {
	return func(a *App) { a.ask = ask }
}

// WithGetwd replaces os.Getwd.
func WithGetwd(getwd func() (string, error)) Option {
	return func(a *App) { a.getwd = getwd }
}

// WithResolve replaces host symlink resolution.
func WithResolve(resolve pathnorm.ResolveFunc) Option {
	return func(a *App) { a.resolve = resolve }
}

// New builds an App from a detected configuration.
func New(cfg *config.Config, out *Printer, logger *log.Logger, dryRun bool, opts ...Option) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	a := &App{
		out:    out,
		logger: logger,
		ask: func(ctx context.Context, req prompt.Request) (string, error) {
			return prompt.Ask(ctx, req)
		},
		getwd: os.Getwd,
	}
	for _, opt := range opts {
		opt(a)
	}

	norm, err := pathnorm.New(pathnorm.Options{
		PrimaryVolume: cfg.PrimaryVolume,
		BashRoot:      cfg.BashRoot,
		Logger:        logger,
		Resolve:       a.resolve,
	})
	if err != nil {
		return nil, err
	}
	a.norm = norm
	a.gate = safety.NewGate(cfg.SafetyTable(), logger)
	a.resolver = scope.NewResolver(cfg.Exclusions(), scope.WithLogger(logger))
	a.engine = search.NewEngine(logger)
	a.editor = tags.NewEditor(logger, dryRun)
	return a, nil
}

// Run performs one invocation.
func (a *App) Run(ctx context.Context, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	path, err := a.searchPath(ctx, opts)
	if err != nil {
		return err
	}

	report, err := a.search(ctx, path, opts)
	if err != nil {
		return err
	}

	var edits tags.Report
	if opts.Edit.Tag != "" && len(report.Matches) > 0 {
		edits, err = a.editor.Apply(ctx, report.Paths(), opts.Edit)
		if err != nil {
			return err
		}
	}

	if opts.JSON {
		return a.out.JSON(report, edits)
	}
	a.out.Report(report)
	if opts.Edit.Tag != "" {
		a.out.Edits(edits)
	}
	return nil
}

// searchPath settles on a safe NormalizedPath, prompting when allowed.
func (a *App) searchPath(ctx context.Context, opts Options) (string, error) {
	if !opts.PathSet {
		p, err := a.workingDir()
		if err == nil {
			a.logger.Debug("using working directory", "path", p)
			return p, nil
		}
		a.logger.Warn("working directory is not usable", "err", err)
		return a.promptOr(ctx, opts, "", err)
	}

	raw := strings.TrimSpace(opts.Path)
	if raw == "" {
		return a.promptOr(ctx, opts, raw, errors.New("--path is empty"))
	}

	p, err := a.norm.UserPath(ctx, raw)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return a.promptOr(ctx, opts, raw, err)
	}
	// an explicit forbidden path is never re-prompted
	if err := a.gate.Require(p); err != nil {
		return "", err
	}
	return p, nil
}

func (a *App) workingDir() (string, error) {
	cwd, err := a.getwd()
	if err != nil {
		return "", errors.Wrap(err, "get working directory")
	}
	p, err := a.norm.WorkingDir(cwd)
	if err != nil {
		return "", err
	}
	if err := a.gate.Require(p); err != nil {
		return "", err
	}
	return p, nil
}

// promptOr asks for a path when interactive, otherwise fails with cause.
func (a *App) promptOr(ctx context.Context, opts Options, input string, cause error) (string, error) {
	if !opts.Interactive {
		if errors.Is(cause, safety.ErrForbiddenPath) {
			return "", cause
		}
		return "", &PathError{Input: input, Err: cause}
	}

	p, err := a.ask(ctx, prompt.Request{
		Message:     "Where should winfs search?",
		Placeholder: ". (current directory)",
		Reason:      cause.Error(),
		Validate:    a.validateAnswer,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &PathError{Input: input, Err: err}
	}
	return p, nil
}

// validateAnswer runs a prompt answer through the same pipeline and gate as
// --path. An empty or "." answer means the working directory.
func (a *App) validateAnswer(ctx context.Context, answer string) (string, error) {
	switch strings.TrimSpace(answer) {
	case "", ".", "./", `.\`:
		return a.workingDir()
	}
	p, err := a.norm.UserPath(ctx, strings.TrimSpace(answer))
	if err != nil {
		return "", err
	}
	if err := a.gate.Require(p); err != nil {
		return "", err
	}
	return p, nil
}

// search resolves the scope, runs the engine and renders the hits.
func (a *App) search(ctx context.Context, path string, opts Options) (model.SearchReport, error) {
	s, err := a.resolver.Resolve(path, opts.Ext, opts.Recurse)
	if err != nil {
		return model.SearchReport{}, err
	}
	report := model.SearchReport{Path: path, WorkDir: s.WorkDir, Glob: s.Glob(), Matches: []model.Match{}}

	res, err := a.engine.Find(ctx, s)
	switch {
	case errors.Is(err, search.ErrEngineFailure):
		a.logger.Error("search failed", "glob", s.Glob(), "err", err)
		report.EngineFailure = err.Error()
		return report, nil
	case err != nil:
		return model.SearchReport{}, err
	}

	report.Skipped = res.Skipped
	for _, p := range res.Paths {
		display, err := a.norm.FilesystemResult(p)
		if err != nil {
			a.logger.Debug("result not normalized", "path", p, "err", err)
			display = pathnorm.ToPosix(p)
		}
		report.Matches = append(report.Matches, model.Match{Path: p, Display: display})
	}
	return report, nil
}
