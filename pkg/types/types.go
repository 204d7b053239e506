// Package types holds the values shared by the framing packages.
package types

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidConfig is returned when a FrameConfig cannot be rendered
var ErrInvalidConfig = errors.New("invalid frame configuration")

// Rect is an axis-aligned rectangle in device pixels
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Point is a position in device pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FrameConfig describes the border and caption style of a composition.
// It is a value type: editors produce a new value per change instead of
// mutating one shared by an in-flight render.
type FrameConfig struct {
	LineThicknessPx float64 `yaml:"line_thickness_px" json:"line_thickness_px"`
	MarginMM        float64 `yaml:"margin_mm" json:"margin_mm"`
	CaptionText     string  `yaml:"caption_text" json:"caption_text"`
	FontFamily      string  `yaml:"font_family" json:"font_family"`
	FontSizePt      float64 `yaml:"font_size_pt" json:"font_size_pt"`
	Bold            bool    `yaml:"bold" json:"bold"`
	TextColor       string  `yaml:"text_color" json:"text_color"`
	LineColor       string  `yaml:"line_color" json:"line_color"`
	Rounded         bool    `yaml:"rounded" json:"rounded"`
	CornerRadiusMM  float64 `yaml:"corner_radius_mm" json:"corner_radius_mm"`
}

// DefaultFrameConfig returns the style used when nothing is configured
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		LineThicknessPx: 2,
		MarginMM:        15,
		FontFamily:      "Georgia, serif",
		FontSizePt:      24,
		TextColor:       "#333333",
		LineColor:       "#333333",
		Rounded:         false,
		CornerRadiusMM:  5,
	}
}

// WithCaption returns a copy of the configuration with a new caption
func (c FrameConfig) WithCaption(text string) FrameConfig {
	c.CaptionText = text
	return c
}

// Validate checks that every numeric field is finite and that both colors
// parse. Negative sizes are accepted; the geometry clamps them to 0.
func (c FrameConfig) Validate() error {
	numbers := []struct {
		name  string
		value float64
	}{
		{"line_thickness_px", c.LineThicknessPx},
		{"margin_mm", c.MarginMM},
		{"font_size_pt", c.FontSizePt},
		{"corner_radius_mm", c.CornerRadiusMM},
	}
	for _, n := range numbers {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, n.name)
		}
	}

	if _, err := ParseHexColor(c.TextColor); err != nil {
		return fmt.Errorf("%w: text_color: %v", ErrInvalidConfig, err)
	}
	if _, err := ParseHexColor(c.LineColor); err != nil {
		return fmt.Errorf("%w: line_color: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SourceImage is a decoded photo handed to the renderer. The renderer only
// reads it.
type SourceImage struct {
	Name   string      `json:"name"`
	Image  image.Image `json:"-"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
}

// NewSourceImage wraps img, taking its intrinsic size from the bounds
func NewSourceImage(name string, img image.Image) *SourceImage {
	s := &SourceImage{Name: name, Image: img}
	if img != nil {
		b := img.Bounds()
		s.Width, s.Height = b.Dx(), b.Dy()
	}
	return s
}

// AspectRatio returns height/width, or 0 for an empty image
func (s *SourceImage) AspectRatio() float64 {
	if s == nil || s.Width <= 0 || s.Height <= 0 {
		return 0
	}
	return float64(s.Height) / float64(s.Width)
}
