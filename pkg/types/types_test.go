package types

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}},
		{"00ff00", color.NRGBA{0, 255, 0, 255}},
		{"#f0a", color.NRGBA{255, 0, 170, 255}},
		{"#0000ff80", color.NRGBA{0, 0, 255, 128}},
		{"#abcd", color.NRGBA{0xaa, 0xbb, 0xcc, 0xdd}},
		{" #333333 ", color.NRGBA{0x33, 0x33, 0x33, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "#12", "#ggg", "red", "#1234567"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestFrameConfigValidate(t *testing.T) {
	require.NoError(t, DefaultFrameConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*FrameConfig)
	}{
		{"nan margin", func(c *FrameConfig) { c.MarginMM = math.NaN() }},
		{"infinite thickness", func(c *FrameConfig) { c.LineThicknessPx = math.Inf(-1) }},
		{"infinite font size", func(c *FrameConfig) { c.FontSizePt = math.Inf(1) }},
		{"bad line color", func(c *FrameConfig) { c.LineColor = "blue" }},
		{"bad text color", func(c *FrameConfig) { c.TextColor = "#12" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFrameConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestFrameConfigValidateAllowsNegativeGeometry(t *testing.T) {
	cfg := DefaultFrameConfig()
	cfg.MarginMM = -5
	cfg.CornerRadiusMM = -3
	cfg.LineThicknessPx = -1
	cfg.FontSizePt = -10
	assert.NoError(t, cfg.Validate())
}

func TestWithCaptionCopies(t *testing.T) {
	base := DefaultFrameConfig()
	next := base.WithCaption("Summer 2024")

	assert.Equal(t, "", base.CaptionText)
	assert.Equal(t, "Summer 2024", next.CaptionText)
}

func TestSourceImage(t *testing.T) {
	src := NewSourceImage("beach", image.NewRGBA(image.Rect(0, 0, 400, 300)))
	assert.Equal(t, 400, src.Width)
	assert.Equal(t, 300, src.Height)
	assert.InDelta(t, 0.75, src.AspectRatio(), 1e-9)

	var empty *SourceImage
	assert.Equal(t, 0.0, empty.AspectRatio())
	assert.Equal(t, 0.0, NewSourceImage("none", nil).AspectRatio())
}
