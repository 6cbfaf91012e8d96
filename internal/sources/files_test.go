package sources

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sourceIDs(s *FileSet) []string {
	var out []string
	for _, src := range s.Sources() {
		out = append(out, src.ID())
	}
	return out
}

func TestFileSetAddDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a")
	writeFile(t, filepath.Join(dir, "sub", "b.go"), "package b")
	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: main")

	set := NewFileSet(Options{})
	require.NoError(t, set.Add(dir))

	assert.Equal(t, []string{
		filepath.Join(dir, "a.go"),
		filepath.Join(dir, "sub", "b.go"),
	}, set.Paths())
}

func TestFileSetKeepsOrderAndDedupes(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	set := NewFileSet(Options{})
	require.NoError(t, set.Add(b, a, b))

	assert.Equal(t, []string{b, a}, sourceIDs(set))
	assert.Equal(t, 2, set.Len())
}

func TestFileSetRelativePathsBecomeAbsolute(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rel.txt"), "x")
	t.Chdir(dir)

	set := NewFileSet(Options{})
	require.NoError(t, set.Add("rel.txt"))

	paths := set.Paths()
	require.Len(t, paths, 1)
	assert.True(t, filepath.IsAbs(paths[0]))
}

func TestFileSetMissingPath(t *testing.T) {
	set := NewFileSet(Options{})
	err := set.Add(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestFileSetExclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.go"), "x")
	writeFile(t, filepath.Join(dir, "skip.log"), "x")

	set := NewFileSet(Options{Exclude: []string{"*.log"}})
	require.NoError(t, set.Add(dir))

	assert.Equal(t, []string{filepath.Join(dir, "keep.go")}, set.Paths())
}

func TestFileSetReservedIDs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeFile(t, a, "x")
	writeFile(t, b, "x")

	set := NewFileSet(Options{})
	require.NoError(t, set.Add(a, b))
	set.Reserve(a)

	assert.Equal(t, []string{b}, sourceIDs(set))
}

func TestFileSetRemove(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeFile(t, a, "x")
	writeFile(t, b, "x")

	set := NewFileSet(Options{})
	require.NoError(t, set.Add(a, b))
	set.Remove(a)
	set.Remove("/not/there")

	assert.Equal(t, []string{b}, set.Paths())
}

func TestEligible(t *testing.T) {
	assert.True(t, Eligible("/tmp/x"))
	assert.False(t, Eligible(""))
	assert.False(t, Eligible("*far-results*"))
	assert.False(t, Eligible("relative/path"))
}

func TestFileContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	writeFile(t, path, "hello")

	f := &File{path: path}
	got, err := f.Content()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	writeFile(t, path, "changed")
	got, err = f.Content()
	require.NoError(t, err)
	assert.Equal(t, "changed", got)
}

func TestFileContentErrors(t *testing.T) {
	dir := t.TempDir()

	big := filepath.Join(dir, "big")
	writeFile(t, big, strings.Repeat("x", 100))
	_, err := (&File{path: big, maxSize: 10}).Content()
	assert.ErrorIs(t, err, ErrTooLarge)

	bin := filepath.Join(dir, "bin")
	writeFile(t, bin, "ab\x00cd")
	_, err = (&File{path: bin}).Content()
	assert.ErrorIs(t, err, ErrBinary)

	_, err = (&File{path: filepath.Join(dir, "gone")}).Content()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	untracked := filepath.Join(dir, "other.txt")
	writeFile(t, a, "one")

	w, err := Watch(context.Background(), []string{a}, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, untracked, "ignored")
	writeFile(t, a, "two")
	writeFile(t, a, "three")

	select {
	case batch := <-w.Changes():
		assert.Equal(t, []string{a}, batch)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherCloseEndsChanges(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	writeFile(t, a, "one")

	w, err := Watch(context.Background(), []string{a}, 0)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	select {
	case _, ok := <-w.Changes():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("changes channel not closed")
	}
}
