package controller

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// File is one selected file: a display name plus a way to read its content.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// LocalFile selects a file from the local filesystem.
func LocalFile(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesFile selects in-memory content under the given name.
func BytesFile(name string, data []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
