// Package semantic holds the in-memory document model produced by the builder
// and consumed by the writer. It is a deliberately small slice of the PDF
// object model: pages, their content streams, and the font resources the
// text-flow engine needs.
package semantic

// Document is the root of the model.
type Document struct {
	Pages []*Page
	Info  *DocumentInfo
}

// DocumentInfo carries the optional Info dictionary entries.
type DocumentInfo struct {
	Title    string
	Author   string
	Creator  string
	Producer string
}

// Rectangle is an axis-aligned box in default user space units.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the vertical extent of the rectangle.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Page is a single page with its resources and content.
type Page struct {
	Index     int
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// Resources holds the page-level resource dictionaries.
type Resources struct {
	Fonts map[string]*Font
}

// Font describes a font resource. Standard fonts carry no file; embedded
// TrueType fonts keep their program in FontFile.
type Font struct {
	Subtype  string
	BaseFont string
	Encoding string
	FontFile []byte
}

// ContentStream is an ordered list of content operations.
type ContentStream struct {
	Operations []Operation
}

// Operation is a single content-stream operator with its operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is a content-stream operand value.
type Operand interface{ isOperand() }

// NameOperand is a /Name operand.
type NameOperand struct{ Value string }

// NumberOperand is a numeric operand.
type NumberOperand struct{ Value float64 }

// StringOperand is a literal string operand.
type StringOperand struct{ Value []byte }

func (NameOperand) isOperand()   {}
func (NumberOperand) isOperand() {}
func (StringOperand) isOperand() {}
