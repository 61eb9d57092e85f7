package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winfs/internal/scope"
)

// makeTree creates files (and directories ending in "/") under a temp dir.
func makeTree(t *testing.T, entries ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, e := range entries {
		p := filepath.Join(dir, filepath.FromSlash(e))
		if e[len(e)-1] == '/' {
			require.NoError(t, os.MkdirAll(p, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("data"), 0644))
	}
	return dir
}

func rels(t *testing.T, base string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(base, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

var musicTree = []string{
	"Music/a.mp3",
	"Music/B.MP3",
	"Music/cover.jpg",
	"Music/album.mp3/",
	"Music/album.mp3/track.mp3",
	"Music/Live/c.mp3",
	"Music/Live/deep/d.mp3",
	"Music/.cache/e.mp3",
	"Music/AppData/f.mp3",
	"Music/NTUSER.DAT",
	"Music/[2020] Best/g.mp3",
}

func resolve(t *testing.T, path, ext string, recurse bool, exclude []string) scope.Scope {
	t.Helper()
	s, err := scope.NewResolver(exclude).Resolve(filepath.ToSlash(path), ext, recurse)
	require.NoError(t, err)
	return s
}

func TestFindRecursiveWithExtension(t *testing.T) {
	dir := makeTree(t, musicTree...)
	music := filepath.Join(dir, "Music")

	res, err := NewEngine(nil).Find(context.Background(), resolve(t, music, "mp3", true, scope.DefaultExclusions))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"B.MP3",
		"Live/c.mp3",
		"Live/deep/d.mp3",
		"[2020] Best/g.mp3",
		"a.mp3",
		"album.mp3/track.mp3",
	}, rels(t, music, res.Paths))
}

func TestFindSingleLevel(t *testing.T) {
	dir := makeTree(t, musicTree...)
	music := filepath.Join(dir, "Music")

	res, err := NewEngine(nil).Find(context.Background(), resolve(t, music, "mp3", false, scope.DefaultExclusions))
	require.NoError(t, err)
	assert.Equal(t, []string{"B.MP3", "a.mp3"}, rels(t, music, res.Paths))
}

func TestFindWithoutExtensionIncludesDirectories(t *testing.T) {
	dir := makeTree(t, musicTree...)
	music := filepath.Join(dir, "Music")

	res, err := NewEngine(nil).Find(context.Background(), resolve(t, music, "", false, scope.DefaultExclusions))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"B.MP3", "Live", "[2020] Best", "a.mp3", "album.mp3", "cover.jpg",
	}, rels(t, music, res.Paths))
}

func TestFindWithoutExclusions(t *testing.T) {
	dir := makeTree(t, musicTree...)
	music := filepath.Join(dir, "Music")

	res, err := NewEngine(nil).Find(context.Background(), resolve(t, music, "mp3", true, nil))
	require.NoError(t, err)
	assert.Contains(t, rels(t, music, res.Paths), "AppData/f.mp3")
	assert.NotContains(t, rels(t, music, res.Paths), ".cache/e.mp3")
}

func TestFindSingleFile(t *testing.T) {
	dir := makeTree(t, musicTree...)
	file := filepath.Join(dir, "Music", "Live", "c.mp3")

	s := resolve(t, file, "flac", true, scope.DefaultExclusions)
	require.True(t, s.SingleFile)

	res, err := NewEngine(nil).Find(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []string{file}, res.Paths)
}

func TestFindSingleFileExcluded(t *testing.T) {
	dir := makeTree(t, musicTree...)
	file := filepath.Join(dir, "Music", "NTUSER.DAT")

	res, err := NewEngine(nil).Find(context.Background(), resolve(t, file, "", false, scope.DefaultExclusions))
	require.NoError(t, err)
	assert.Empty(t, res.Paths)
}

func TestFindPivotedWorkDir(t *testing.T) {
	dir := makeTree(t, musicTree...)

	s := scope.Scope{
		WorkDir:    filepath.ToSlash(dir) + "/",
		Root:       "/Music",
		Pattern:    "/**/*",
		Ext:        ".mp3",
		MatchFiles: true,
		Exclude:    []string{"**/Live/**"},
	}
	res, err := NewEngine(nil).Find(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Music/AppData/f.mp3",
		"Music/B.MP3",
		"Music/[2020] Best/g.mp3",
		"Music/a.mp3",
		"Music/album.mp3/track.mp3",
	}, rels(t, dir, res.Paths))
}

func TestFindNoMatchesIsNotAnError(t *testing.T) {
	dir := makeTree(t, "empty/")

	res, err := NewEngine(nil).Find(context.Background(), resolve(t, filepath.Join(dir, "empty"), "mp3", true, nil))
	require.NoError(t, err)
	assert.Empty(t, res.Paths)
}

func TestFindMissingRootIsEngineFailure(t *testing.T) {
	dir := t.TempDir()

	s := scope.Scope{Root: filepath.ToSlash(filepath.Join(dir, "gone")), Pattern: "/*", MatchFiles: true}
	_, err := NewEngine(nil).Find(context.Background(), s)
	assert.ErrorIs(t, err, ErrEngineFailure)
}

func TestFindBadExclusionIsEngineFailure(t *testing.T) {
	dir := makeTree(t, "x/a.mp3")

	s := resolve(t, filepath.Join(dir, "x"), "", true, []string{"[unclosed"})
	_, err := NewEngine(nil).Find(context.Background(), s)
	assert.ErrorIs(t, err, ErrEngineFailure)
}

func TestFindHonoursCancelledContext(t *testing.T) {
	dir := makeTree(t, musicTree...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil).Find(ctx, resolve(t, filepath.Join(dir, "Music"), "", true, nil))
	assert.ErrorIs(t, err, context.Canceled)
}
