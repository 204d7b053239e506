package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-framer/pkg/caption"
	"github.com/menta2k/image-framer/pkg/types"
	"github.com/menta2k/image-framer/pkg/units"
)

// smallPage keeps tests fast: 50mm x 70mm at 300 DPI
var smallPage = units.PageFromMM(50, 70)

func newTestRenderer(page units.Page) *Renderer {
	return NewWithConfig(Config{Page: page, FontCache: caption.NewEmbeddedFontCache()})
}

func testConfig() types.FrameConfig {
	cfg := types.DefaultFrameConfig()
	cfg.FontFamily = "Go"
	cfg.FontSizePt = 8
	cfg.LineColor = "#ff0000"
	cfg.TextColor = "#0000ff"
	return cfg
}

// createTestImage creates a solid-color photo
func createTestImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func isRed(c color.RGBA) bool   { return c.R > 200 && c.G < 60 && c.B < 60 }
func isBlue(c color.RGBA) bool  { return c.B > 200 && c.R < 60 && c.G < 60 }
func isWhite(c color.RGBA) bool { return c.R > 245 && c.G > 245 && c.B > 245 }

func countPixels(img *image.RGBA, match func(color.RGBA) bool) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if match(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func TestRenderA4Geometry(t *testing.T) {
	r := newTestRenderer(units.A4())
	cfg := testConfig()

	comp, err := r.Render(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 2480, comp.Image.Bounds().Dx())
	assert.Equal(t, 3508, comp.Image.Bounds().Dy())
	assert.InDelta(t, 177.17, comp.Border.Rect.X, 0.01)
	assert.InDelta(t, 177.17, comp.Border.Rect.Y, 0.01)
	assert.InDelta(t, 2125.67, comp.Border.Rect.W, 0.01)
	assert.InDelta(t, 3153.67, comp.Border.Rect.H, 0.01)

	// Line 6.25px thick: a row straddled by the bottom edge is solid line color
	row := int(math.Floor(comp.Border.Rect.Bottom()))
	assert.True(t, isRed(comp.Image.RGBAAt(1240, row)))
	assert.True(t, isWhite(comp.Image.RGBAAt(1240, row+10)))
}

func TestRenderBackgroundOnlyWithoutImage(t *testing.T) {
	r := newTestRenderer(smallPage)
	comp, err := r.Render(testConfig(), nil)
	require.NoError(t, err)

	assert.False(t, comp.HasFit)
	assert.True(t, isWhite(comp.Image.RGBAAt(smallPage.Width/2, smallPage.Height/2)))
	assert.True(t, isWhite(comp.Image.RGBAAt(2, 2)))
}

func TestRenderFitsImage(t *testing.T) {
	r := newTestRenderer(smallPage)
	src := types.NewSourceImage("green", createTestImage(100, 100, color.RGBA{0, 200, 0, 255}))

	comp, err := r.Render(testConfig(), src)
	require.NoError(t, err)
	require.True(t, comp.HasFit)

	assert.Equal(t, float64(smallPage.Width), comp.Fit.W)
	assert.Equal(t, float64(smallPage.Width), comp.Fit.H)

	center := comp.Image.RGBAAt(smallPage.Width/2, smallPage.Height/2)
	assert.InDelta(t, 0, int(center.R), 2)
	assert.InDelta(t, 200, int(center.G), 2)
	assert.InDelta(t, 0, int(center.B), 2)

	// Letterbox above the photo keeps the background
	assert.True(t, isWhite(comp.Image.RGBAAt(smallPage.Width/2, 10)))
}

func TestRenderDoesNotMutateSource(t *testing.T) {
	img := createTestImage(40, 30, color.RGBA{10, 20, 30, 255})
	before := append([]uint8(nil), img.(*image.RGBA).Pix...)

	_, err := newTestRenderer(smallPage).Render(testConfig().WithCaption("Hello"), types.NewSourceImage("x", img))
	require.NoError(t, err)

	assert.Equal(t, before, img.(*image.RGBA).Pix)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := newTestRenderer(smallPage)
	cfg := testConfig().WithCaption("Lisbon 2024")
	cfg.Rounded = true
	src := types.NewSourceImage("gradient", createGradient(320, 200))

	first, err := r.Render(cfg, src)
	require.NoError(t, err)
	second, err := r.Render(cfg, src)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first.Image.Pix, second.Image.Pix))
	assert.NotSame(t, first.Image, second.Image)
}

func TestRenderCaptionBreaksBorder(t *testing.T) {
	r := newTestRenderer(smallPage)
	cfg := testConfig()
	cfg.FontSizePt = 12

	plain, err := r.Render(cfg, nil)
	require.NoError(t, err)
	captioned, err := r.Render(cfg.WithCaption("Framed"), nil)
	require.NoError(t, err)

	require.Greater(t, captioned.Caption.Width, 0.0)
	assert.InDelta(t, 1.10*captioned.Caption.Width, captioned.Border.Gap, 1e-9)
	assert.Equal(t, "50px Go", captioned.Caption.Font)
	assert.Equal(t, caption.FallbackFamily, captioned.Caption.Resolved)

	// Halfway between the text edge and the gap edge there is neither line nor text
	centerX := float64(smallPage.Width) / 2
	x := int((centerX + captioned.Caption.Width/2 + captioned.Border.Start.X) / 2)
	row := int(math.Floor(captioned.Border.Rect.Bottom()))

	assert.True(t, isRed(plain.Image.RGBAAt(x, row)))
	assert.True(t, isWhite(captioned.Image.RGBAAt(x, row)))

	// Text is drawn in the text color, the plain render has none
	assert.Greater(t, countPixels(captioned.Image, isBlue), 0)
	assert.Equal(t, 0, countPixels(plain.Image, isBlue))

	// Caption is centered horizontally
	assert.InDelta(t, centerX, captioned.Caption.Origin.X+captioned.Caption.Width/2, 1e-9)
}

func TestRenderEmptyCaptionClosesBorder(t *testing.T) {
	comp, err := newTestRenderer(smallPage).Render(testConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, comp.Border.Gap)
	assert.True(t, comp.Border.Closed())
	assert.Equal(t, "", comp.Caption.Text)
	assert.Equal(t, 0.0, comp.Caption.Width)
}

func TestRenderCorners(t *testing.T) {
	r := newTestRenderer(smallPage)
	cfg := testConfig()
	cfg.CornerRadiusMM = 5

	sharp, err := r.Render(cfg, nil)
	require.NoError(t, err)
	cfg.Rounded = true
	rounded, err := r.Render(cfg, nil)
	require.NoError(t, err)

	vx := int(sharp.Border.Rect.X)
	vy := int(sharp.Border.Rect.Y)
	assert.True(t, isRed(sharp.Image.RGBAAt(vx, vy)))
	assert.True(t, isWhite(rounded.Image.RGBAAt(vx, vy)))
	assert.InDelta(t, units.MMToPx(5), rounded.Border.Radius, 1e-9)
	assert.Equal(t, 0.0, sharp.Border.Radius)
}

func TestRenderZeroThickness(t *testing.T) {
	cfg := testConfig()
	cfg.LineThicknessPx = 0

	comp, err := newTestRenderer(smallPage).Render(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, countPixels(comp.Image, isRed))
}

func TestRenderNegativeGeometryClamps(t *testing.T) {
	r := newTestRenderer(smallPage)

	cfg := testConfig()
	cfg.MarginMM = -5
	comp, err := r.Render(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Rect{X: 0, Y: 0, W: float64(smallPage.Width), H: float64(smallPage.Height)}, comp.Border.Rect)
	assert.True(t, isRed(comp.Image.RGBAAt(1, smallPage.Height/2)))

	cfg = testConfig()
	cfg.Rounded = true
	cfg.CornerRadiusMM = -3
	comp, err = r.Render(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, comp.Border.Radius)
	assert.True(t, isRed(comp.Image.RGBAAt(int(comp.Border.Rect.X), int(comp.Border.Rect.Y))))

	cfg = testConfig()
	cfg.LineThicknessPx = -2
	comp, err = r.Render(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, countPixels(comp.Image, isRed))
}

func TestRenderInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MarginMM = math.NaN()

	comp, err := newTestRenderer(smallPage).Render(cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidConfig))
	assert.Nil(t, comp)
}

func TestRenderNoSurface(t *testing.T) {
	r := NewWithConfig(Config{Page: units.Page{Width: 0, Height: 100}, FontCache: caption.NewEmbeddedFontCache()})
	_, err := r.Render(testConfig(), nil)
	assert.True(t, errors.Is(err, ErrNoSurface))
}

func createGradient(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / width), uint8(y * 255 / height), 128, 255})
		}
	}
	return img
}

func BenchmarkRenderA4(b *testing.B) {
	r := newTestRenderer(units.A4())
	cfg := testConfig().WithCaption("Benchmark")
	src := types.NewSourceImage("gradient", createGradient(1200, 800))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Render(cfg, src); err != nil {
			b.Fatal(err)
		}
	}
}
