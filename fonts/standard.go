// Package fonts provides the width and height metrics the text-flow engine
// measures with: a built-in subset of the standard 14 fonts, TrueType metrics
// extracted with x/image/font/sfnt, and shaped measurement backed by
// go-text/typesetting for embedded faces.
package fonts

import "fmt"

// Metrics exposes character metrics for one of the built-in standard fonts.
// All values are in 1/1000 em and scale linearly with the text size.
type Metrics struct {
	name         string
	bboxTop      float64
	bboxBottom   float64
	widths       *[printableCount]int16
	fixedWidth   float64
	defaultWidth float64
}

const (
	printableFirst = ' '
	printableLast  = '~'
	printableCount = printableLast - printableFirst + 1
)

// Standard returns metrics for one of the built-in standard fonts:
// Helvetica, Helvetica-Bold, Times-Roman or Courier.
func Standard(name string) (*Metrics, error) {
	m, ok := standardMetrics[name]
	if !ok {
		return nil, fmt.Errorf("fonts: unknown standard font %q", name)
	}
	return m, nil
}

// StandardNames lists the built-in standard font names.
func StandardNames() []string {
	return []string{"Helvetica", "Helvetica-Bold", "Times-Roman", "Courier"}
}

// Name returns the PostScript base font name.
func (m *Metrics) Name() string { return m.name }

// HeightAtSize returns the rendered line height at the given size, derived
// from the font bounding box.
func (m *Metrics) HeightAtSize(size float64) float64 {
	return (m.bboxTop - m.bboxBottom) / 1000 * size
}

// WidthOfTextAtSize returns the advance width of text at the given size.
// Characters outside the built-in table use the font's default advance.
func (m *Metrics) WidthOfTextAtSize(text string, size float64) float64 {
	var sum float64
	for _, r := range text {
		sum += m.advance(r)
	}
	return sum / 1000 * size
}

func (m *Metrics) advance(r rune) float64 {
	if m.fixedWidth > 0 {
		return m.fixedWidth
	}
	if r >= printableFirst && r <= printableLast {
		return float64(m.widths[r-printableFirst])
	}
	return m.defaultWidth
}

// AFM advance widths for the printable ASCII range, chars 0x20..0x7E.
var helveticaWidths = [printableCount]int16{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [printableCount]int16{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

var timesRomanWidths = [printableCount]int16{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278, 564, 564, 564, 444,
	921, 722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722,
	556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611, 333, 278, 333, 469, 500,
	333, 444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500,
	500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}

var standardMetrics = map[string]*Metrics{
	"Helvetica": {
		name:         "Helvetica",
		bboxTop:      931,
		bboxBottom:   -225,
		widths:       &helveticaWidths,
		defaultWidth: 556,
	},
	"Helvetica-Bold": {
		name:         "Helvetica-Bold",
		bboxTop:      962,
		bboxBottom:   -228,
		widths:       &helveticaBoldWidths,
		defaultWidth: 556,
	},
	"Times-Roman": {
		name:         "Times-Roman",
		bboxTop:      898,
		bboxBottom:   -218,
		widths:       &timesRomanWidths,
		defaultWidth: 500,
	},
	"Courier": {
		name:       "Courier",
		bboxTop:    805,
		bboxBottom: -250,
		fixedWidth: 600,
	},
}
