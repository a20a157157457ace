package flow

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// RenderMarkdown parses source with goldmark and feeds headings, paragraphs
// and list items through the pagination engine.
func (e *Engine) RenderMarkdown(ctx context.Context, source string) error {
	if !e.ready {
		return ErrNotInitialized
	}
	md := goldmark.New()
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))
	return e.walkMarkdown(ctx, doc, src)
}

func (e *Engine) walkMarkdown(ctx context.Context, node ast.Node, source []byte) error {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		var err error
		switch n := child.(type) {
		case *ast.Heading:
			err = e.renderMarkdownHeading(ctx, n, source)
		case *ast.Paragraph:
			err = e.renderMarkdownParagraph(ctx, n, source)
		case *ast.List:
			err = e.walkMarkdown(ctx, n, source)
		case *ast.ListItem:
			err = e.renderMarkdownListItem(ctx, n, source)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) renderMarkdownHeading(ctx context.Context, n *ast.Heading, source []byte) error {
	size := e.headingSize(n.Level)
	if err := e.AddParagraph(ctx, string(n.Text(source)), AtSize(size)); err != nil {
		return err
	}
	return e.DrawLine(ctx, "", e.textSize)
}

func (e *Engine) headingSize(level int) float64 {
	switch {
	case level <= 1:
		return e.textSize * 2.0
	case level == 2:
		return e.textSize * 1.5
	default:
		return e.textSize * 1.25
	}
}

func (e *Engine) renderMarkdownParagraph(ctx context.Context, n *ast.Paragraph, source []byte) error {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
			continue
		}
		// Inline markup (emphasis, code spans, links) renders as plain text.
		sb.WriteString(string(child.Text(source)))
	}
	if err := e.AddParagraph(ctx, sb.String()); err != nil {
		return err
	}
	return e.DrawLine(ctx, "", e.textSize)
}

// renderMarkdownListItem flows every block of the item: the first block gets
// the bullet, later blocks continue indented, nested lists recurse.
func (e *Engine) renderMarkdownListItem(ctx context.Context, n *ast.ListItem, source []byte) error {
	prefix := "• "
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if list, ok := child.(*ast.List); ok {
			if err := e.walkMarkdown(ctx, list, source); err != nil {
				return err
			}
			prefix = "  "
			continue
		}
		if err := e.AddParagraph(ctx, prefix+markdownBlockText(child, source)); err != nil {
			return err
		}
		prefix = "  "
	}
	return nil
}

func markdownBlockText(n ast.Node, source []byte) string {
	if t, ok := n.(*ast.Text); ok {
		return string(t.Segment.Value(source))
	}
	return string(n.Text(source))
}
