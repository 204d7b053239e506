// Package caption measures caption text with the exact face later used to
// draw it. A Layout is computed once per render and shared by the border
// builder (gap width) and the text pass (drawing), so the two can never
// disagree about the font.
package caption

import (
	"fmt"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/image-framer/pkg/types"
	"github.com/menta2k/image-framer/pkg/units"
)

// Spec is the caption typography in device pixels.
type Spec struct {
	Family string
	SizePx float64
	Bold   bool
}

// SpecFor derives the caption typography from a frame configuration.
func SpecFor(cfg types.FrameConfig) Spec {
	return Spec{
		Family: cfg.FontFamily,
		SizePx: units.PtToPx(cfg.FontSizePt),
		Bold:   cfg.Bold,
	}
}

// String composes the CSS font shorthand "[bold ]<size>px <family>".
func (s Spec) String() string {
	prefix := ""
	if s.Bold {
		prefix = "bold "
	}
	return prefix + strconv.FormatFloat(s.SizePx, 'f', -1, 64) + "px " + s.Family
}

// Layout is a measured caption ready to be drawn.
type Layout struct {
	Text     string
	Spec     Spec
	Font     string  // composed font string, see Spec.String
	Resolved string  // family name the font cache matched
	Width    float64 // advance width in device pixels

	face font.Face
}

// Empty reports whether there is no caption to draw.
func (l *Layout) Empty() bool {
	return l == nil || l.Text == ""
}

// Face returns the face the caption was measured with. It is nil for an
// empty caption.
func (l *Layout) Face() font.Face {
	if l == nil {
		return nil
	}
	return l.face
}

// Close releases the face.
func (l *Layout) Close() error {
	if l == nil || l.face == nil {
		return nil
	}
	err := l.face.Close()
	l.face = nil
	return err
}

// Measure builds the Layout for text. An empty caption yields a zero-width
// layout without a face.
func (fc *FontCache) Measure(text string, spec Spec) (*Layout, error) {
	l := &Layout{Text: text, Spec: spec, Font: spec.String()}
	if text == "" || !(spec.SizePx > 0) {
		return l, nil
	}

	f, resolved := fc.Resolve(spec.Family, spec.Bold)
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size: spec.SizePx,
		// At 72 DPI the face size is already in pixels.
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face for %q: %w", l.Font, err)
	}

	l.face = face
	l.Resolved = resolved
	l.Width = toFloat(font.MeasureString(face, text))
	return l, nil
}

// VerticalMetrics returns the ascent and descent of the face in pixels.
func (l *Layout) VerticalMetrics() (ascent, descent float64) {
	if l.Face() == nil {
		return 0, 0
	}
	m := l.face.Metrics()
	return toFloat(m.Ascent), toFloat(m.Descent)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
