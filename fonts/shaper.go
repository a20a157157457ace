package fonts

import (
	"bytes"
	"fmt"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// Shaper measures text by shaping it with HarfBuzz. Summed glyph advances
// account for ligatures and contextual forms that naive per-rune advance
// lookups miss, which matters for scripts like Arabic or Devanagari.
type Shaper struct {
	face   *gofont.Face
	shaper shaping.HarfbuzzShaper
}

// NewShaper parses a TrueType/OpenType font for shaped measurement.
func NewShaper(data []byte) (*Shaper, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("fonts: shaper font data is empty")
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fonts: parse face: %w", err)
	}
	return &Shaper{face: face}, nil
}

// Measure returns the shaped advance width of text at the given size.
func (s *Shaper) Measure(text string, size float64) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	script := detectScript(runes)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      s.face,
		// Shape at 1000 units per em so advances come out in 1/1000 em.
		Size:     fixed.Int26_6(1000 * 64),
		Script:   script,
		Language: language.DefaultLanguage(),
	}
	output := s.shaper.Shape(input)
	var sum float64
	for _, g := range output.Glyphs {
		sum += float64(g.XAdvance) / 64.0
	}
	return sum / 1000 * size
}

// ShapedTrueType measures text by shaping it while exposing the same surface
// as TrueType, so shaped widths can drive the flow engine directly.
type ShapedTrueType struct {
	*TrueType
	shaper *Shaper
}

// LoadShapedTrueType parses a TrueType/OpenType font for shaped measurement.
// Heights and the embedded font program come from the plain TrueType metrics;
// widths go through the shaper.
func LoadShapedTrueType(name string, data []byte) (*ShapedTrueType, error) {
	tt, err := LoadTrueType(name, data)
	if err != nil {
		return nil, err
	}
	shaper, err := NewShaper(data)
	if err != nil {
		return nil, err
	}
	return &ShapedTrueType{TrueType: tt, shaper: shaper}, nil
}

// WidthOfTextAtSize returns the shaped advance width of text at the given
// size.
func (f *ShapedTrueType) WidthOfTextAtSize(text string, size float64) float64 {
	return f.shaper.Measure(text, size)
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	bestScript := language.Latin
	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			bestScript = script
		}
	}
	return bestScript
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Devanagari, r):
		return language.Devanagari
	case unicode.Is(unicode.Thai, r):
		return language.Thai
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	}
	return language.Unknown
}
