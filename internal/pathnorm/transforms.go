package pathnorm

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// StripBashRoot removes the root an interactive shell injects when the user
// types a bare "/" (Git Bash turns it into its own install directory).
func (n *Normalizer) StripBashRoot(p string) string {
	if n.bashRoot == "" || len(p) < len(n.bashRoot) {
		return p
	}
	if strings.ReplaceAll(p[:len(n.bashRoot)], `\`, "/") != n.bashRoot {
		return p
	}
	rest := p[len(n.bashRoot):]
	if rest != "" && !isSeparator(rest[0]) {
		// "C:/Program Files/GitHub" is not under the shell root
		return p
	}
	if strings.Trim(rest, `/\`) == "" {
		return "/"
	}
	return rest
}

// ResolveFileURL decodes a file: URL into a plain path. It must run before
// CollapsePrimaryRoot, which would otherwise read "file:" as a drive.
func (n *Normalizer) ResolveFileURL(p string) (string, error) {
	if len(p) < len("file:") || !strings.EqualFold(p[:len("file:")], "file:") {
		return p, nil
	}
	n.logger.Debug("path is a file URL", "url", p)

	u, err := url.Parse(p)
	if err != nil {
		return "", errors.Wrapf(ErrMalformedInput, "file URL %q: %v", p, err)
	}

	decoded := u.Path
	if u.Opaque != "" {
		// file:C:/Music has no slashes after the scheme
		if decoded, err = url.PathUnescape(u.Opaque); err != nil {
			return "", errors.Wrapf(ErrMalformedInput, "file URL %q: %v", p, err)
		}
	}

	// file:///C:/Music decodes to /C:/Music
	if len(decoded) > 2 && decoded[0] == '/' {
		if r, size := utf8.DecodeRuneInString(decoded[1:]); IsCasedLetter(r) &&
			len(decoded) > 1+size && decoded[1+size] == ':' {
			decoded = decoded[1:]
		}
	}

	if host := u.Host; host != "" && !strings.EqualFold(host, "localhost") {
		decoded = "//" + host + decoded
	}
	if decoded == "" {
		return "", errors.Wrapf(ErrMalformedInput, "file URL %q has no path", p)
	}

	root, rest := SplitRoot(decoded)
	return root + strings.TrimRight(rest, `/\`), nil
}

// CollapsePrimaryRoot rewrites a primary-volume root ("C:\", "c:/", ...) to
// a single "/" and keeps the rest of the path verbatim. Paths that begin with
// another drive letter are left alone. Applying it twice equals applying it once.
func (n *Normalizer) CollapsePrimaryRoot(p string) (string, error) {
	if r, _ := utf8.DecodeRuneInString(p); IsCasedLetter(r) &&
		!strings.EqualFold(string(r), n.primary) {
		return p, nil
	}

	root, rest := SplitRoot(p)
	if root == "" {
		n.logger.Error("empty path root", "path", p)
		return "", errors.Wrapf(ErrEmptyRoot, "path %q", p)
	}

	spelling, ok := lookupRoot(root, n.primary)
	if !ok {
		n.logger.Error("unclassified path root", "root", root, "path", p,
			"err", ErrMalformedInput)
		return p, nil
	}

	switch spelling.kind {
	case rootCollapsed:
		return p, nil
	case rootUnusual:
		n.logger.Warn("unexpected path root", "root", root, "path", p)
	}
	return "/" + rest, nil
}

// ResolveSymlinks canonicalizes p through the filesystem. It fails when the
// path does not exist.
func (n *Normalizer) ResolveSymlinks(_ context.Context, p string) (string, error) {
	return n.resolve(p)
}

// ToPosix replaces every separator with "/". Drive letters stay intact.
func ToPosix(p string) string {
	return strings.Map(func(r rune) rune {
		if r == '\\' || r == os.PathSeparator {
			return '/'
		}
		return r
	}, p)
}

func resolveHost(p string) (string, error) {
	abs, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		return "", errors.Wrapf(err, "absolute path of %q", p)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.Wrapf(ErrNonexistentPath, "%q", p)
		}
		return "", errors.Wrapf(err, "resolve %q", p)
	}
	return resolved, nil
}
