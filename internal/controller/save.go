package controller

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const maxNameAttempts = 1000

// DirSaver saves payloads into a directory. Content is streamed into a
// temporary file first and only then published under the requested name, so
// a failed transfer never leaves a partial summary.txt behind. Taken names get
// a " (n)" suffix, the way browsers name repeated downloads.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(name string, r io.Reader) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".docsum-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// Gone after a successful rename; cleans up on every other path.
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	target, err := reserve(dir, filepath.Base(name))
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("publish %s: %w", filepath.Base(target), err)
	}
	return target, nil
}

// reserve creates an empty placeholder at the first free candidate name.
func reserve(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reserve %s: %w", candidate, err)
		}
		f.Close()
		return path, nil
	}
	return "", fmt.Errorf("reserve %s: no free name after %d attempts", name, maxNameAttempts)
}
