// Package scope turns a safe NormalizedPath into the exact search the
// enumeration engine should run.
package scope

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"winfs/internal/pathnorm"
)

const (
	recursivePattern   = "**/*"
	singleLevelPattern = "*"
)

// ErrNotNormalized is returned for paths without a root token.
var ErrNotNormalized = errors.New("path is not normalized")

// DefaultExclusions are always handed to the engine, on top of the Safety
// Gate: system and profile folders plus large trees nobody wants to edit.
var DefaultExclusions = []string{
	// files
	"**/*ntuser*",
	"**/*.dat",
	"**/*.sys",
	"**/*msdownld.tmp",
	"**/*recovery.txt",
	// folders
	"**/AppData/**",
	"**/Application Data/**",
	"**/$AVG/**",
	"**/$Recycle.Bin/**",
	"**/System Volume Information/**",
	"**/Windows/**",
	"**/Local Settings/**",
	"**/ProgramData/**",
	"**/Program Files/**",
	"**/Program Files (x86)/**",
	"**/Recovery/**",
	"**/PerfLogs/**",
	"**/Documents and Settings/**",
	"**/node_modules/**",
	"/Config.Msi/**",
}

// Scope describes one enumeration. It is built per invocation and passed
// by value, so the engine cannot change what the resolver decided.
type Scope struct {
	// WorkDir is the drive root the engine pivots into ("D:/"), or "" on
	// the primary volume.
	WorkDir string
	// Root is the search root, relative to WorkDir when pivoted.
	Root       string
	Pattern    string
	Ext        string
	Recurse    bool
	MatchFiles bool
	MatchDirs  bool
	// SingleFile means Root is one existing file and nothing else is searched.
	SingleFile bool
	Exclude    []string
}

// Glob is the full pattern the engine matches, relative to WorkDir.
func (s Scope) Glob() string {
	return s.Root + s.Pattern + s.Ext
}

// Pivoted reports whether the engine has to change into a drive root.
func (s Scope) Pivoted() bool {
	return s.WorkDir != ""
}

// StatFunc reports file metadata for a host path.
type StatFunc func(string) (fs.FileInfo, error)

// Option configures a Resolver.
type Option func(*Resolver)

// WithStat replaces os.Stat, mainly for tests.
func WithStat(stat StatFunc) Option {
	return func(r *Resolver) { r.stat = stat }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// Resolver builds Scopes.
type Resolver struct {
	exclude []string
	stat    StatFunc
	logger  *log.Logger
}

// NewResolver returns a resolver that attaches exclude to every Scope.
func NewResolver(exclude []string, opts ...Option) *Resolver {
	r := &Resolver{
		exclude: append([]string(nil), exclude...),
		stat:    statHost,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// Resolve derives the Scope for a NormalizedPath already judged safe.
func (r *Resolver) Resolve(path, ext string, recurse bool) (Scope, error) {
	path = strings.TrimSpace(path)
	root, rest := pathnorm.SplitRoot(path)
	if root == "" {
		return Scope{}, errors.Wrapf(ErrNotNormalized, "%q", path)
	}

	s := Scope{
		Recurse:    recurse,
		MatchFiles: true,
		MatchDirs:  true,
		Exclude:    append([]string(nil), r.exclude...),
	}
	rest = strings.TrimRight(rest, "/")

	var concrete string
	if letter := pathnorm.DriveLetter(path); letter != "" {
		// Secondary drives become the engine's working directory so the
		// drive letter never reaches the case-insensitive matcher.
		s.WorkDir = letter + ":/"
		concrete = s.WorkDir + rest
		if rest != "" {
			s.Root = "/" + rest
		}
		// an empty Root searches the drive from its root
		s.Pattern = "/" + pick(recurse, recursivePattern, singleLevelPattern)
		r.logger.Debug("drive pivot", "workdir", s.WorkDir, "root", s.Root)
	} else if rest == "" {
		concrete = "/"
		s.Root = "/"
		s.Pattern = pick(recurse, recursivePattern, singleLevelPattern)
		r.logger.Debug("root level search", "recurse", recurse)
	} else {
		concrete = "/" + rest
		s.Root = concrete
		s.Pattern = "/" + pick(recurse, recursivePattern, singleLevelPattern)
	}

	if r.isFile(concrete) {
		r.logger.Debug("file path detected", "path", concrete)
		return Scope{
			Root:       concrete,
			MatchFiles: true,
			SingleFile: true,
			Exclude:    s.Exclude,
		}, nil
	}

	if s.Ext = NormalizeExt(ext); s.Ext != "" {
		// *.mp3 must not match a folder called "album.mp3"
		s.MatchDirs = false
	}
	return s, nil
}

func (r *Resolver) isFile(p string) bool {
	info, err := r.stat(p)
	if err != nil {
		r.logger.Debug("stat failed, treating as directory", "path", p, "err", err)
		return false
	}
	return info.Mode().IsRegular()
}

// NormalizeExt lower-cases an extension and makes sure it starts with a dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func statHost(p string) (fs.FileInfo, error) {
	return os.Stat(filepath.FromSlash(p))
}
