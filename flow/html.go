package flow

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderHTML parses source and feeds headings, paragraphs and list items
// through the pagination engine.
func (e *Engine) RenderHTML(ctx context.Context, source string) error {
	if !e.ready {
		return ErrNotInitialized
	}
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return err
	}
	return e.walkHTML(ctx, doc)
}

func (e *Engine) walkHTML(ctx context.Context, n *html.Node) error {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			return e.renderHTMLHeading(ctx, n)
		case atom.P:
			return e.renderHTMLParagraph(ctx, n)
		case atom.Li:
			return e.renderHTMLListItem(ctx, n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := e.walkHTML(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) renderHTMLHeading(ctx context.Context, n *html.Node) error {
	level := 4
	switch n.DataAtom {
	case atom.H1:
		level = 1
	case atom.H2:
		level = 2
	case atom.H3:
		level = 3
	}
	size := e.headingSize(level)
	if err := e.AddParagraph(ctx, extractText(n), AtSize(size)); err != nil {
		return err
	}
	return e.DrawLine(ctx, "", e.textSize)
}

func (e *Engine) renderHTMLParagraph(ctx context.Context, n *html.Node) error {
	if err := e.AddParagraph(ctx, extractText(n)); err != nil {
		return err
	}
	return e.DrawLine(ctx, "", e.textSize)
}

func (e *Engine) renderHTMLListItem(ctx context.Context, n *html.Node) error {
	return e.AddParagraph(ctx, "• "+extractText(n))
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
