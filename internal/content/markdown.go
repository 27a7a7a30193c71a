package content

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// TOC depth range.
const (
	minTOCDepth = 2
	maxTOCDepth = 4
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// bodyStats is what the listing layer needs from the markdown body.
type bodyStats struct {
	headings []Heading
	words    int
}

// analyzeBody walks the markdown AST once. Headings are collected only when
// withHeadings is set. Code blocks do not count as words.
func analyzeBody(src []byte, withHeadings bool) bodyStats {
	doc := md.Parser().Parse(text.NewReader(src))

	var stats bodyStats
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			if withHeadings && node.Level >= minTOCDepth && node.Level <= maxTOCDepth {
				stats.headings = append(stats.headings, Heading{
					Depth: node.Level,
					Slug:  headingID(node),
					Text:  nodeText(node, src),
				})
			}
		case *ast.Text:
			stats.words += countWords(node.Segment.Value(src))
		case *ast.String:
			stats.words += countWords(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return stats
}

func headingID(h *ast.Heading) string {
	id, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	if b, ok := id.([]byte); ok {
		return string(b)
	}
	return ""
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(nodeText(c, src))
		}
	}
	return b.String()
}

func countWords(b []byte) int {
	return len(strings.FieldsFunc(string(b), func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '\'' && r != '-')
	}))
}

func readingMinutes(words, perMinute int) int {
	if words == 0 {
		return 0
	}
	return (words + perMinute - 1) / perMinute
}
