// Package builder is the document capability surface the text-flow engine
// writes through: page allocation, cursor movement, font embedding and text
// drawing. The concrete implementation records content-stream operations into
// the semantic document model for the writer to serialize.
package builder

import (
	"fmt"

	"github.com/wudi/textflow/fonts"
	"github.com/wudi/textflow/ir/semantic"
)

// DocumentBuilder allocates pages and fonts and assembles the final document.
type DocumentBuilder interface {
	AddPage(size PaperSize) PageBuilder
	EmbedStandardFont(name string) (FontRef, error)
	WordBreaks() []rune
	SetInfo(info *semantic.DocumentInfo) DocumentBuilder
	Build() (*semantic.Document, error)
}

// PageBuilder draws onto a single page and tracks its cursor position.
type PageBuilder interface {
	Width() float64
	Height() float64
	X() float64
	Y() float64
	MoveTo(x, y float64)
	MoveDown(dy float64)
	SetFont(font FontRef)
	DrawText(text string, opts TextOptions)
}

// FontRef measures text for a resolved font. Both *fonts.Metrics and
// *fonts.TrueType satisfy it.
type FontRef interface {
	Name() string
	HeightAtSize(size float64) float64
	WidthOfTextAtSize(text string, size float64) float64
}

// TextOptions configures a single text draw. The vertical position is the
// page's current cursor; LineHeight sets the text leading when positive.
type TextOptions struct {
	X          float64
	Size       float64
	LineHeight float64
}

// PaperSize is a page size preset in points.
type PaperSize struct {
	Width  float64
	Height float64
}

var (
	A4     = PaperSize{Width: 595.28, Height: 841.89}
	Letter = PaperSize{Width: 612, Height: 792}
	Legal  = PaperSize{Width: 612, Height: 1008}
)

// Option configures a document builder.
type Option func(*documentBuilder)

// WithWordBreaks overrides the default word-break character set.
func WithWordBreaks(breaks []rune) Option {
	return func(b *documentBuilder) {
		b.wordBreaks = append([]rune(nil), breaks...)
	}
}

type documentBuilder struct {
	pages      []*semantic.Page
	info       *semantic.DocumentInfo
	wordBreaks []rune
	resNames   map[string]string
	resCount   int
}

type pageBuilder struct {
	parent *documentBuilder
	page   *semantic.Page
	x, y   float64
	font   FontRef
}

// NewBuilder constructs a DocumentBuilder.
func NewBuilder(opts ...Option) DocumentBuilder {
	b := &documentBuilder{
		wordBreaks: []rune{' ', '\t', '\n', '\r'},
		resNames:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *documentBuilder) AddPage(size PaperSize) PageBuilder {
	p := &semantic.Page{
		MediaBox: semantic.Rectangle{LLX: 0, LLY: 0, URX: size.Width, URY: size.Height},
	}
	b.pages = append(b.pages, p)
	return &pageBuilder{parent: b, page: p, x: 0, y: size.Height}
}

func (b *documentBuilder) EmbedStandardFont(name string) (FontRef, error) {
	m, err := fonts.Standard(name)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (b *documentBuilder) WordBreaks() []rune {
	return append([]rune(nil), b.wordBreaks...)
}

func (b *documentBuilder) SetInfo(info *semantic.DocumentInfo) DocumentBuilder {
	b.info = info
	return b
}

func (b *documentBuilder) Build() (*semantic.Document, error) {
	for i, p := range b.pages {
		p.Index = i
	}
	return &semantic.Document{Pages: b.pages, Info: b.info}, nil
}

// resourceName assigns a stable per-document resource name for a font.
func (b *documentBuilder) resourceName(f FontRef) string {
	if name, ok := b.resNames[f.Name()]; ok {
		return name
	}
	b.resCount++
	name := fmt.Sprintf("F%d", b.resCount)
	b.resNames[f.Name()] = name
	return name
}

func resourceFont(f FontRef) *semantic.Font {
	switch tt := f.(type) {
	case *fonts.TrueType:
		return &semantic.Font{Subtype: "TrueType", BaseFont: tt.Name(), FontFile: tt.Data()}
	case *fonts.ShapedTrueType:
		return &semantic.Font{Subtype: "TrueType", BaseFont: tt.Name(), FontFile: tt.Data()}
	}
	return &semantic.Font{Subtype: "Type1", BaseFont: f.Name(), Encoding: "WinAnsiEncoding"}
}

// fallbackFont backs DrawText on pages where no font was set.
var fallbackFont = mustStandardFont("Helvetica")

func mustStandardFont(name string) FontRef {
	f, err := fonts.Standard(name)
	if err != nil {
		panic(err)
	}
	return f
}

func (p *pageBuilder) Width() float64  { return p.page.MediaBox.Width() }
func (p *pageBuilder) Height() float64 { return p.page.MediaBox.Height() }
func (p *pageBuilder) X() float64      { return p.x }
func (p *pageBuilder) Y() float64      { return p.y }

func (p *pageBuilder) MoveTo(x, y float64) {
	p.x = x
	p.y = y
}

func (p *pageBuilder) MoveDown(dy float64) {
	p.y -= dy
}

func (p *pageBuilder) SetFont(font FontRef) {
	if font == nil {
		return
	}
	p.font = font
	p.registerFont(font)
}

func (p *pageBuilder) DrawText(text string, opts TextOptions) {
	font := p.font
	if font == nil {
		font = fallbackFont
		p.font = font
	}
	resName := p.registerFont(font)
	size := opts.Size
	if size <= 0 {
		size = 12
	}

	ops := p.contentOps()
	*ops = append(*ops, semantic.Operation{Operator: "BT"})
	*ops = append(*ops, semantic.Operation{
		Operator: "Tf",
		Operands: []semantic.Operand{
			semantic.NameOperand{Value: resName},
			semantic.NumberOperand{Value: size},
		},
	})
	if opts.LineHeight > 0 {
		*ops = append(*ops, semantic.Operation{
			Operator: "TL",
			Operands: []semantic.Operand{semantic.NumberOperand{Value: opts.LineHeight}},
		})
	}
	*ops = append(*ops, semantic.Operation{
		Operator: "Td",
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: opts.X},
			semantic.NumberOperand{Value: p.y},
		},
	})
	*ops = append(*ops, semantic.Operation{
		Operator: "Tj",
		Operands: []semantic.Operand{semantic.StringOperand{Value: []byte(text)}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "ET"})
}

func (p *pageBuilder) registerFont(font FontRef) string {
	resName := p.parent.resourceName(font)
	if p.page.Resources == nil {
		p.page.Resources = &semantic.Resources{}
	}
	if p.page.Resources.Fonts == nil {
		p.page.Resources.Fonts = make(map[string]*semantic.Font)
	}
	if _, ok := p.page.Resources.Fonts[resName]; !ok {
		p.page.Resources.Fonts[resName] = resourceFont(font)
	}
	return resName
}

func (p *pageBuilder) contentOps() *[]semantic.Operation {
	if len(p.page.Contents) == 0 {
		p.page.Contents = append(p.page.Contents, semantic.ContentStream{})
	}
	return &p.page.Contents[0].Operations
}
