package preflight

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor returns the visible body text of an HTML page, one block per
// block-level element.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(r io.Reader, _ string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var blocks []string
	var current strings.Builder
	flush := func() {
		blocks = append(blocks, strings.Join(strings.Fields(current.String()), " "))
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(n.Data)
			current.WriteByte(' ')
			return
		case html.ElementNode:
			switch n.Data {
			case "head", "script", "style", "noscript", "template":
				return
			}
		}
		block := n.Type == html.ElementNode && isBlock(n.Data)
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()

	return joinBlocks(blocks), nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "li", "ul", "ol", "table", "tr",
		"blockquote", "pre", "br", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
