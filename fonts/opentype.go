package fonts

import (
	"fmt"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// TrueType exposes metrics for a parsed TrueType/OpenType font. It offers the
// same measurement surface as the built-in standard fonts, so an embedded face
// can drive the text-flow engine directly.
type TrueType struct {
	name    string
	data    []byte
	font    *sfnt.Font
	buf     sfnt.Buffer
	upem    float64
	ppem    fixed.Int26_6
	ascent  float64
	descent float64
}

// LoadTrueType parses a TrueType/OpenType font and extracts the metrics the
// engine needs. The full font program is retained for embedding.
func LoadTrueType(name string, data []byte) (*TrueType, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("fonts: truetype font data is empty")
	}
	font, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fonts: parse truetype: %w", err)
	}
	unitsPerEm := font.UnitsPerEm()
	if unitsPerEm == 0 {
		return nil, fmt.Errorf("fonts: invalid unitsPerEm")
	}
	tt := &TrueType{
		name: name,
		data: data,
		font: font,
		upem: float64(unitsPerEm),
		ppem: fixed.Int26_6(unitsPerEm << 6),
	}
	if ps, _ := font.Name(&tt.buf, sfnt.NameIDPostScript); len(ps) > 0 {
		tt.name = ps
	}
	metrics, err := font.Metrics(&tt.buf, tt.ppem, xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("fonts: truetype metrics: %w", err)
	}
	tt.ascent = tt.scale(metrics.Ascent)
	tt.descent = -tt.scale(metrics.Descent)
	return tt, nil
}

// Name returns the PostScript name of the font.
func (tt *TrueType) Name() string { return tt.name }

// Data returns the raw font program.
func (tt *TrueType) Data() []byte { return tt.data }

// HeightAtSize returns the rendered line height at the given size.
func (tt *TrueType) HeightAtSize(size float64) float64 {
	return (tt.ascent - tt.descent) / 1000 * size
}

// WidthOfTextAtSize returns the advance width of text at the given size.
// Glyph advances come straight from the hmtx table; runes with no glyph use
// the missing-glyph advance.
func (tt *TrueType) WidthOfTextAtSize(text string, size float64) float64 {
	var sum float64
	for _, r := range text {
		idx, err := tt.font.GlyphIndex(&tt.buf, r)
		if err != nil {
			idx = 0
		}
		adv, err := tt.font.GlyphAdvance(&tt.buf, idx, tt.ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		sum += tt.scale(adv)
	}
	return sum / 1000 * size
}

// scale converts a fixed-point value at upem ppem into 1/1000 em units.
func (tt *TrueType) scale(v fixed.Int26_6) float64 {
	return float64(v) * 1000.0 / (64.0 * tt.upem)
}
