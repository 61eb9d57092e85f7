// Package pathnorm turns untrusted path strings into NormalizedPaths.
//
// A NormalizedPath uses forward slashes only. A root on the primary volume
// is collapsed to a single leading "/", while secondary drives keep their
// "X:/" prefix. Windows path grammar is applied on every host, so the same
// input normalizes the same way everywhere.
package pathnorm

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"winfs/internal/pipe"
)

// DefaultPrimaryVolume is used when the host reports no system drive.
const DefaultPrimaryVolume = "C"

// ResolveFunc canonicalizes an existing path (symlinks, "." and "..").
type ResolveFunc func(path string) (string, error)

// Options configures a Normalizer.
type Options struct {
	// PrimaryVolume is the system drive letter, with or without a colon.
	PrimaryVolume string
	// BashRoot is the prefix an interactive shell substitutes for "/".
	BashRoot string
	Logger   *log.Logger
	// Resolve replaces host symlink resolution; tests use it to fake a filesystem.
	Resolve ResolveFunc
}

// Normalizer owns the transforms and the three named pipelines built from them.
type Normalizer struct {
	primary  string
	bashRoot string
	logger   *log.Logger
	resolve  ResolveFunc

	filesystemResult pipe.Func[string]
	workingDir       pipe.Func[string]
	userPath         pipe.Stage[string]
}

// New validates opts and assembles the pipelines.
func New(opts Options) (*Normalizer, error) {
	primary := strings.TrimSuffix(strings.TrimSpace(opts.PrimaryVolume), ":")
	if primary == "" {
		primary = DefaultPrimaryVolume
	}
	if r := []rune(primary); len(r) != 1 || !IsCasedLetter(r[0]) {
		return nil, errors.Errorf("primary volume %q is not a drive letter", opts.PrimaryVolume)
	}

	n := &Normalizer{
		primary:  primary,
		bashRoot: cleanBashRoot(opts.BashRoot),
		logger:   opts.Logger,
		resolve:  opts.Resolve,
	}
	if n.logger == nil {
		n.logger = log.New(io.Discard)
	}
	if n.resolve == nil {
		n.resolve = resolveHost
	}

	n.filesystemResult = pipe.Sync(
		n.CollapsePrimaryRoot,
		pipe.Pure(ToPosix),
	)
	n.workingDir = pipe.Sync(
		pipe.Pure(n.StripBashRoot),
		n.filesystemResult,
	)
	n.userPath = pipe.Async(
		pipe.Lift(pipe.Pure(n.StripBashRoot)),
		pipe.Lift(n.ResolveFileURL),
		n.ResolveSymlinks,
		pipe.Lift(n.filesystemResult),
		pipe.Lift(pipe.Tap(func(p string) {
			n.logger.Debug("normalized user path", "path", p)
		})),
	)
	return n, nil
}

// PrimaryVolume returns the configured system drive letter.
func (n *Normalizer) PrimaryVolume() string { return n.primary }

// FilesystemResult normalizes a path reported by the enumeration engine.
// Those paths are trusted to exist and be well formed.
func (n *Normalizer) FilesystemResult(p string) (string, error) {
	return n.filesystemResult(p)
}

// WorkingDir normalizes the process working directory, which is always
// absolute and never a file URL.
func (n *Normalizer) WorkingDir(p string) (string, error) {
	return n.workingDir(p)
}

// UserPath normalizes a path from the command line or the prompt. Any
// failure means there is no usable path.
func (n *Normalizer) UserPath(ctx context.Context, p string) (string, error) {
	return n.userPath(ctx, p)
}

func cleanBashRoot(root string) string {
	root = strings.ReplaceAll(strings.TrimSpace(root), `\`, "/")
	return strings.TrimRight(root, "/")
}
