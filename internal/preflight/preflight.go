// Package preflight inspects a file locally before it is uploaded: whether the
// summarizer accepts its type, whether it is within the upload limit, how much
// text it holds and how many summary parts the server will likely return.
// Its findings are advisory; they never block a submission.
package preflight

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsum/internal/chunker"
)

// Warnings, worded the way the summarizer words its own rejections.
const (
	WarnUnsupported = "Unsupported file type."
	WarnNoText      = "No text could be extracted from file."
)

// Options mirrors the server-side limits the client knows about.
type Options struct {
	AcceptedExtensions []string
	MaxUploadBytes     int64
	ChunkChars         int
}

// Report is the outcome of one inspection.
type Report struct {
	Name     string
	Ext      string
	Bytes    int64
	Accepted bool
	TooLarge bool
	Chars    int
	Tokens   int
	Parts    int
	Warnings []string
}

// Inspect reads r (at most MaxUploadBytes+1 bytes) and reports on it. Only a
// read failure is returned as an error; extraction problems become warnings.
func Inspect(name string, r io.Reader, opts Options) (Report, error) {
	rep := Report{
		Name: filepath.Base(name),
		Ext:  strings.ToLower(filepath.Ext(name)),
	}
	rep.Accepted = len(opts.AcceptedExtensions) == 0 || slices.Contains(opts.AcceptedExtensions, rep.Ext)
	if !rep.Accepted {
		rep.Warnings = append(rep.Warnings, WarnUnsupported)
	}

	src := r
	if opts.MaxUploadBytes > 0 {
		src = io.LimitReader(r, opts.MaxUploadBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return rep, fmt.Errorf("read %s: %w", rep.Name, err)
	}
	rep.Bytes = int64(len(data))

	if opts.MaxUploadBytes > 0 && rep.Bytes > opts.MaxUploadBytes {
		rep.TooLarge = true
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("File exceeds the upload limit of %d bytes.", opts.MaxUploadBytes))
		return rep, nil
	}

	text, err := ForFile(name).Extract(bytes.NewReader(data), rep.Name)
	if err != nil {
		rep.Warnings = append(rep.Warnings, "Text extraction failed: "+err.Error())
		return rep, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		rep.Warnings = append(rep.Warnings, WarnNoText)
		return rep, nil
	}

	rep.Chars = utf8.RuneCountInString(text)
	rep.Tokens = chunker.EstimateTokens(text)
	rep.Parts = chunker.Count(text, opts.ChunkChars)
	return rep, nil
}
