// Package writer serializes a semantic document to PDF 1.7 bytes: numbered
// objects, cross-reference table and trailer. Content streams are rendered
// from the recorded operations; Flate compression is optional.
package writer

import (
	"context"
	"io"

	"github.com/wudi/textflow/ir/semantic"
	"github.com/wudi/textflow/observability"
)

// ContentFilter selects the encoding applied to content streams.
type ContentFilter int

const (
	FilterNone ContentFilter = iota
	FilterFlate
)

// Config controls serialization. A nil Tracer discards every span.
type Config struct {
	ContentFilter ContentFilter
	Tracer        observability.Tracer
}

// Writer serializes documents.
type Writer interface {
	Write(ctx context.Context, doc *semantic.Document, w io.Writer, cfg Config) error
}

// New constructs a Writer.
func New() Writer { return &impl{} }
