package controller

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestDirSaver_SavesUnderName(t *testing.T) {
	dir := t.TempDir()
	path, err := DirSaver{Dir: dir}.Save("summary.txt", strings.NewReader("content"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "summary.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
	assert.Equal(t, []string{"summary.txt"}, listDir(t, dir))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o044, "expected group/other read bits")
}

func TestDirSaver_NumbersTakenNames(t *testing.T) {
	dir := t.TempDir()
	s := DirSaver{Dir: dir}

	var paths []string
	for _, body := range []string{"a", "b", "c"} {
		p, err := s.Save("summary.txt", strings.NewReader(body))
		require.NoError(t, err)
		paths = append(paths, filepath.Base(p))
	}

	assert.Equal(t, []string{"summary.txt", "summary (1).txt", "summary (2).txt"}, paths)
	data, err := os.ReadFile(filepath.Join(dir, "summary (2).txt"))
	require.NoError(t, err)
	assert.Equal(t, "c", string(data))
}

func TestDirSaver_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	path, err := DirSaver{Dir: dir}.Save("summary.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestDirSaver_StripsDirectoriesFromName(t *testing.T) {
	dir := t.TempDir()
	path, err := DirSaver{Dir: dir}.Save("../../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.txt"), path)
}

type brokenReader struct{ sent bool }

func (r *brokenReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestDirSaver_FailedTransferLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := DirSaver{Dir: dir}.Save("summary.txt", &brokenReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, listDir(t, dir), "temp file must be released and no summary published")
}

func TestDirSaver_EmptyPayload(t *testing.T) {
	dir := t.TempDir()
	path, err := DirSaver{Dir: dir}.Save("summary.txt", io.LimitReader(strings.NewReader("ignored"), 0))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	f := LocalFile(path)
	assert.Equal(t, "notes.txt", f.Name)

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}
