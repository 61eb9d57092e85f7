package pathnorm

import "github.com/pkg/errors"

var (
	// ErrMalformedInput marks a path whose structure could not be classified
	// (an unknown root spelling or an undecodable file URL).
	ErrMalformedInput = errors.New("malformed path")

	// ErrEmptyRoot is returned when a path has no root token at all.
	ErrEmptyRoot = errors.New("empty path root")

	// ErrNonexistentPath is returned when symlink resolution finds no target.
	ErrNonexistentPath = errors.New("path does not exist")
)
