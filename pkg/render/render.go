// Package render composes a photo, its border and its caption onto a fresh
// page-sized surface.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/image-framer/pkg/border"
	"github.com/menta2k/image-framer/pkg/caption"
	"github.com/menta2k/image-framer/pkg/fit"
	"github.com/menta2k/image-framer/pkg/types"
	"github.com/menta2k/image-framer/pkg/units"
)

// ErrNoSurface is returned when the page geometry leaves nothing to draw on.
var ErrNoSurface = errors.New("no drawing surface")

// miterLimit matches the canvas default.
const miterLimit = 10

// Config holds renderer settings that do not change per composition.
type Config struct {
	Page       units.Page
	Background color.Color
	FontCache  *caption.FontCache
	Logger     *slog.Logger
}

// Renderer produces Compositions. It keeps no per-render state, so one
// Renderer may serve concurrent renders; each call owns its own surface.
type Renderer struct {
	config Config
}

// New creates a Renderer for an A4 page with system fonts
func New() *Renderer {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Renderer, filling unset fields with defaults
func NewWithConfig(config Config) *Renderer {
	if config.Page == (units.Page{}) {
		config.Page = units.A4()
	}
	if config.Background == nil {
		config.Background = color.White
	}
	if config.FontCache == nil {
		config.FontCache = caption.NewFontCache()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Renderer{config: config}
}

// Page returns the output geometry
func (r *Renderer) Page() units.Page {
	return r.config.Page
}

// Composition is one rendered page together with the geometry it was built from.
type Composition struct {
	Image   *image.RGBA
	Fit     types.Rect // zero when no photo was drawn
	HasFit  bool
	Border  border.Path
	Caption CaptionInfo
}

// CaptionInfo describes the drawn caption
type CaptionInfo struct {
	Text     string
	Font     string
	Resolved string
	Width    float64
	Origin   types.Point // baseline start of the text
}

// Render draws cfg with an optional source photo onto a new surface.
// Invalid configuration draws nothing and returns an error wrapping
// types.ErrInvalidConfig.
func (r *Renderer) Render(cfg types.FrameConfig, src *types.SourceImage) (*Composition, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	page := r.config.Page
	if page.Empty() {
		return nil, fmt.Errorf("%w: page %dx%d", ErrNoSurface, page.Width, page.Height)
	}
	// Validate guarantees both colors parse.
	lineColor, _ := types.ParseHexColor(cfg.LineColor)
	textColor, _ := types.ParseHexColor(cfg.TextColor)

	pageW, pageH := float64(page.Width), float64(page.Height)
	canvas := image.NewRGBA(image.Rect(0, 0, page.Width, page.Height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: r.config.Background}, image.Point{}, draw.Src)

	comp := &Composition{Image: canvas}

	if src != nil && src.Image != nil {
		if rect, ok := fit.ContainImage(pageW, pageH, src.Width, src.Height); ok {
			if drawImage(canvas, src.Image, rect) {
				comp.Fit, comp.HasFit = rect, true
			} else {
				r.config.Logger.Debug("Fit rectangle rounds to zero pixels, skipping photo", "name", src.Name)
			}
		}
	}

	margin := units.MMToPx(cfg.MarginMM)
	thickness := units.CSSPxToDevicePx(cfg.LineThicknessPx)
	radius := 0.0
	if cfg.Rounded {
		radius = units.MMToPx(cfg.CornerRadiusMM)
	}

	layout, err := r.config.FontCache.Measure(cfg.CaptionText, caption.SpecFor(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to measure caption: %w", err)
	}
	defer layout.Close()

	path := border.Build(border.Params{
		PageWidth:  pageW,
		PageHeight: pageH,
		Margin:     margin,
		Radius:     radius,
		Gap:        border.GapFor(layout.Text, layout.Width),
	})
	comp.Border = path

	strokePath(canvas, path, thickness, lineColor)

	comp.Caption = CaptionInfo{Text: layout.Text, Font: layout.Font, Resolved: layout.Resolved, Width: layout.Width}
	if !layout.Empty() && layout.Face() != nil {
		comp.Caption.Origin = drawCaption(canvas, layout, pageW/2, path.Rect.Bottom(), textColor)
	}

	return comp, nil
}

// drawImage scales img into rect on dst. It reports false when the rectangle
// is smaller than one pixel.
func drawImage(dst draw.Image, img image.Image, rect types.Rect) bool {
	x0, y0, x1, y1 := fit.PixelBounds(rect)
	w, h := x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return false
	}
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	draw.Draw(dst, image.Rect(x0, y0, x1, y1), scaled, image.Point{}, draw.Over)
	return true
}

// strokePath strokes the border outline with butt caps and miter joins.
func strokePath(dst draw.Image, path border.Path, thickness float64, c color.Color) {
	if !(thickness > 0) {
		return
	}
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	stroker := rasterx.NewStroker(b.Dx(), b.Dy(), scanner)
	stroker.SetStroke(
		toFixed(thickness),
		fixed.Int26_6(miterLimit<<6),
		rasterx.ButtCap, rasterx.ButtCap,
		rasterx.FlatGap, rasterx.Miter,
	)

	pen := &strokePen{adder: stroker}
	path.Trace(pen)
	stroker.Stop(path.Closed())
	stroker.SetColor(c)
	stroker.Draw()
}

// drawCaption draws the caption centered on centerX with its em box
// vertically centered on lineY, and returns the baseline origin.
func drawCaption(dst draw.Image, layout *caption.Layout, centerX, lineY float64, c color.Color) types.Point {
	ascent, descent := layout.VerticalMetrics()
	origin := types.Point{
		X: centerX - layout.Width/2,
		Y: lineY + (ascent-descent)/2,
	}

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: layout.Face(),
		Dot:  fixed.Point26_6{X: toFixed(origin.X), Y: toFixed(origin.Y)},
	}
	d.DrawString(layout.Text)
	return origin
}

// strokePen feeds border.Path drawing commands into a rasterx adder,
// dropping segments that collapse to a single point.
type strokePen struct {
	adder   rasterx.Adder
	current fixed.Point26_6
}

func (p *strokePen) MoveTo(pt types.Point) {
	p.current = toFixedP(pt)
	p.adder.Start(p.current)
}

func (p *strokePen) LineTo(pt types.Point) {
	to := toFixedP(pt)
	if to == p.current {
		return
	}
	p.adder.Line(to)
	p.current = to
}

func (p *strokePen) CubeTo(c1, c2, pt types.Point) {
	to := toFixedP(pt)
	if to == p.current {
		return
	}
	p.adder.CubeBezier(toFixedP(c1), toFixedP(c2), to)
	p.current = to
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func toFixedP(pt types.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: toFixed(pt.X), Y: toFixed(pt.Y)}
}
