package preflight

import (
	"io"
	"path/filepath"
	"strings"
)

// Extractor pulls the plain text the summarizer would see out of a document.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// ForFile picks the extractor for a filename. Unknown extensions are read as
// plain text.
func ForFile(filename string) Extractor {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return MarkdownExtractor{}
	case ".html", ".htm":
		return HTMLExtractor{}
	case ".csv":
		return CSVExtractor{}
	case ".pdf":
		return PDFExtractor{}
	case ".docx":
		return DOCXExtractor{}
	default:
		return TextExtractor{}
	}
}

// TextExtractor reads UTF-8 text, dropping invalid byte sequences.
type TextExtractor struct{}

func (TextExtractor) Extract(r io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// joinBlocks joins non-blank blocks with a blank line between them.
func joinBlocks(blocks []string) string {
	var b strings.Builder
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
	}
	return b.String()
}
