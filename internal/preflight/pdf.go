package preflight

import (
	"bytes"
	"fmt"
	"io"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor reads the plain text of every page with ledongthuc/pdf.
type PDFExtractor struct{}

func (PDFExtractor) Extract(r io.Reader, _ string) (text string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	// The PDF reader panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("read pdf: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, pageText)
	}
	return joinBlocks(pages), nil
}
