package normalize

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// plainText parses src as Markdown and returns its readable text. Headings
// are wrapped in pause markers, block quotes, rules, skipped code blocks and
// blank-line separated blocks become paragraph markers, and blocks on
// adjacent lines stay on separate lines.
func plainText(src string) string {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	w := &plainWriter{source: source}
	w.blocks(doc)
	return w.String()
}

type plainWriter struct {
	strings.Builder
	source []byte
}

func (w *plainWriter) blocks(parent ast.Node) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if c != parent.FirstChild() {
			if c.HasBlankPreviousLines() {
				w.WriteString(markParagraph)
			} else {
				w.WriteString("\n")
			}
		}
		w.block(c)
	}
}

func (w *plainWriter) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		mark := markMinor
		if n.Level <= 2 {
			mark = markMajor
		}
		w.WriteString(mark)
		w.inlines(n)
		w.WriteString(mark)

	case *ast.FencedCodeBlock:
		w.WriteString(markParagraph)

	case *ast.CodeBlock:
		// Indented text is usually prose that kept its indentation.
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			w.Write(seg.Value(w.source))
		}

	case *ast.HTMLBlock:
		return

	case *ast.ThematicBreak:
		w.WriteString(markParagraph)

	case *ast.Blockquote:
		w.WriteString(markParagraph)
		w.blocks(n)
		w.WriteString(markParagraph)

	default:
		if c := n.FirstChild(); c != nil && c.Type() == ast.TypeInline {
			w.inlines(n)
			return
		}
		w.blocks(n)
	}
}

func (w *plainWriter) inlines(parent ast.Node) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		w.inline(c)
	}
}

func (w *plainWriter) inline(n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		w.Write(util.UnescapePunctuations(n.Segment.Value(w.source)))
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.WriteByte('\n')
		}

	case *ast.String:
		w.Write(n.Value)

	case *ast.CodeSpan:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				w.Write(t.Segment.Value(w.source))
			case *ast.String:
				w.Write(t.Value)
			}
		}

	case *ast.Image, *ast.AutoLink, *ast.RawHTML:
		return

	default:
		// Emphasis, links and strikethrough keep only their text.
		w.inlines(n)
	}
}
