package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wudi/textflow/builder"
	"github.com/wudi/textflow/observability"
)

// ErrNotInitialized is returned by drawing operations invoked before Init has
// completed.
var ErrNotInitialized = errors.New("flow: engine not initialized")

// Margins defines the writable area insets in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// PageFunc is invoked synchronously each time a page is created, including
// the first. The hook may draw on the new page (headers, footers); an error
// aborts the operation that triggered the page.
type PageFunc func(ctx context.Context, e *Engine, pageNumber int) error

// Engine is the pagination state machine. It owns the cursor on the current
// page, decides per line whether to advance the page, and delegates wrapping
// to BreakIntoLines. Operations on one engine must be invoked sequentially;
// there is no internal locking.
type Engine struct {
	doc    builder.DocumentBuilder
	log    observability.Logger
	tracer observability.Tracer

	textSize    float64
	margins     Margins
	lineSpacing float64
	paper       builder.PaperSize
	configFont  builder.FontRef
	onPage      PageFunc

	font       builder.FontRef
	page       builder.PageBuilder
	pageNumber int
	ready      bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithTextSize sets the default text size.
func WithTextSize(size float64) Option {
	return func(e *Engine) { e.textSize = size }
}

// WithMargins sets the page margins.
func WithMargins(m Margins) Option {
	return func(e *Engine) { e.margins = m }
}

// WithLineSpacing sets the spacing added below each line.
func WithLineSpacing(spacing float64) Option {
	return func(e *Engine) { e.lineSpacing = spacing }
}

// WithFont sets an explicit font; without it the engine embeds standard
// Helvetica on first use.
func WithFont(font builder.FontRef) Option {
	return func(e *Engine) { e.configFont = font }
}

// WithPaperSize sets the preset used for every page the engine allocates.
func WithPaperSize(paper builder.PaperSize) Option {
	return func(e *Engine) { e.paper = paper }
}

// OnPage registers the page-boundary hook.
func OnPage(fn PageFunc) Option {
	return func(e *Engine) { e.onPage = fn }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(log observability.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithTracer sets the tracer; the default discards every span.
func WithTracer(tracer observability.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// New constructs an engine writing through doc. Init must run before any
// drawing operation.
func New(doc builder.DocumentBuilder, opts ...Option) *Engine {
	e := &Engine{
		doc:         doc,
		log:         observability.NopLogger{},
		tracer:      observability.NopTracer(),
		textSize:    10,
		margins:     Margins{Top: 60, Bottom: 25, Left: 25, Right: 25},
		lineSpacing: 2,
		paper:       builder.A4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init resolves the engine font, creates the first page, positions the cursor
// at the top-left writable corner and fires the page hook with page number 1.
// Calling Init on a ready engine is a no-op.
func (e *Engine) Init(ctx context.Context) error {
	if e.ready {
		return nil
	}
	if err := e.ensureFont(); err != nil {
		return err
	}
	e.ready = true
	if err := e.firstPage(ctx); err != nil {
		e.ready = false
		return err
	}
	return nil
}

// firstPage allocates page 1, or reuses the already-allocated page when an
// earlier Init attempt failed in the page hook, so a retried Init neither
// leaves an orphan page nor skips page number 1.
func (e *Engine) firstPage(ctx context.Context) error {
	if e.page != nil {
		e.page.MoveTo(e.margins.Left, e.page.Height()-e.margins.Top)
		return e.firePageHook(ctx)
	}
	return e.newPage(ctx)
}

// ensureFont resolves the active font once and caches it for the engine's
// lifetime.
func (e *Engine) ensureFont() error {
	if e.font != nil {
		return nil
	}
	if e.configFont != nil {
		e.font = e.configFont
		return nil
	}
	font, err := e.doc.EmbedStandardFont("Helvetica")
	if err != nil {
		return fmt.Errorf("flow: resolve default font: %w", err)
	}
	e.font = font
	return nil
}

func (e *Engine) newPage(ctx context.Context) error {
	page := e.doc.AddPage(e.paper)
	e.pageNumber++
	page.SetFont(e.font)
	page.MoveTo(e.margins.Left, page.Height()-e.margins.Top)
	e.page = page
	e.log.Debug("page created", observability.Int("page", e.pageNumber))
	return e.firePageHook(ctx)
}

func (e *Engine) firePageHook(ctx context.Context) error {
	if e.onPage == nil {
		return nil
	}
	if err := e.onPage(ctx, e, e.pageNumber); err != nil {
		return fmt.Errorf("flow: page %d hook: %w", e.pageNumber, err)
	}
	return nil
}

// DrawLine draws one already-wrapped line at the given size. If the line no
// longer fits above the bottom margin a new page is created first. Empty
// lines consume vertical space but issue no draw call.
func (e *Engine) DrawLine(ctx context.Context, line string, size float64) error {
	if !e.ready {
		return ErrNotInitialized
	}
	if size <= 0 {
		return fmt.Errorf("flow: invalid text size %g", size)
	}
	height := e.font.HeightAtSize(size)
	if e.page.Y()-(height+e.lineSpacing) < e.margins.Bottom {
		if err := e.newPage(ctx); err != nil {
			return err
		}
	}
	e.page.MoveDown(height)
	if line != "" {
		e.page.DrawText(line, builder.TextOptions{
			X:          e.page.X(),
			Size:       size,
			LineHeight: height + e.lineSpacing,
		})
	}
	e.page.MoveDown(e.lineSpacing)
	return nil
}

// ParagraphOption configures a single AddParagraph call.
type ParagraphOption func(*paragraphConfig)

type paragraphConfig struct {
	size float64
}

// AtSize overrides the engine's default text size for one paragraph.
func AtSize(size float64) ParagraphOption {
	return func(c *paragraphConfig) { c.size = size }
}

// AddParagraph wraps text at the currently available width and draws the
// resulting lines in order. Empty input draws nothing and leaves the cursor
// untouched. Lines already drawn are not rolled back if a later line fails.
func (e *Engine) AddParagraph(ctx context.Context, text string, opts ...ParagraphOption) error {
	if !e.ready {
		return ErrNotInitialized
	}
	ctx, span := e.tracer.StartSpan(ctx, "flow.AddParagraph")
	defer span.Finish()
	start := time.Now()

	lineCount, err := e.addParagraph(ctx, text, opts...)
	span.SetTag(observability.MetricLineCount, lineCount)
	span.SetTag(observability.MetricPageCount, e.pageNumber)
	span.SetTag(observability.MetricLayoutDuration, time.Since(start))
	if err != nil {
		span.SetError(err)
	}
	return err
}

func (e *Engine) addParagraph(ctx context.Context, text string, opts ...ParagraphOption) (int, error) {
	cfg := paragraphConfig{size: e.textSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.size <= 0 {
		return 0, fmt.Errorf("flow: invalid text size %g", cfg.size)
	}
	width, err := e.AvailableWidth()
	if err != nil {
		return 0, err
	}
	lines := BreakIntoLines(text, cfg.size, width, e.doc.WordBreaks(), e.font.WidthOfTextAtSize)
	for _, line := range lines {
		if err := e.DrawLine(ctx, line, cfg.size); err != nil {
			return len(lines), err
		}
	}
	e.log.Debug("paragraph laid out",
		observability.Int("lines", len(lines)),
		observability.Float64("size", cfg.size))
	return len(lines), nil
}

// AvailableWidth returns the horizontal space left of the right margin at the
// current cursor position.
func (e *Engine) AvailableWidth() (float64, error) {
	if !e.ready {
		return 0, ErrNotInitialized
	}
	return e.page.Width() - (e.page.X() + e.margins.Right), nil
}

// PageNumber returns the 1-based number of the current page, or 0 before
// Init.
func (e *Engine) PageNumber() int { return e.pageNumber }

// Page returns the current page builder, or nil before Init.
func (e *Engine) Page() builder.PageBuilder { return e.page }

// Font returns the resolved font, or nil before Init.
func (e *Engine) Font() builder.FontRef { return e.font }

// Margins returns the configured margins.
func (e *Engine) Margins() Margins { return e.margins }

// TextSize returns the configured default text size.
func (e *Engine) TextSize() float64 { return e.textSize }

// LineSpacing returns the configured inter-line spacing.
func (e *Engine) LineSpacing() float64 { return e.lineSpacing }
