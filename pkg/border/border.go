// Package border builds the frame outline: a rounded rectangle whose bottom
// edge is interrupted by a centered gap reserved for the caption.
package border

import (
	"math"

	"github.com/menta2k/image-framer/pkg/types"
)

// GapPadding is the gap width relative to the measured caption width
// (5% of clearance on each side of the text).
const GapPadding = 1.10

// Params describes the outline in device pixels.
type Params struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Radius     float64
	Gap        float64
}

// Corner is a quarter arc joining two edges of the border.
type Corner struct {
	Vertex     types.Point // the sharp corner of the border rectangle
	Center     types.Point // arc center, inset from Vertex by the radius
	StartAngle float64     // radians, y axis pointing down
	EndAngle   float64
}

// Path is an open outline starting at the right end of the gap, running
// along the bottom, up the right side, across the top, down the left side
// and back along the bottom to the left end of the gap.
type Path struct {
	Rect   types.Rect
	Radius float64 // effective radius after clamping
	Gap    float64 // requested gap width

	Start   types.Point
	End     types.Point
	Corners [4]Corner // bottom-right, top-right, top-left, bottom-left
}

// GapFor returns the gap width for a caption measured at textWidth pixels.
// An empty caption never opens a gap.
func GapFor(caption string, textWidth float64) float64 {
	if caption == "" || !(textWidth > 0) {
		return 0
	}
	return textWidth * GapPadding
}

// ClampRadius limits a corner radius so the arcs fit the rectangle.
func ClampRadius(radius, w, h float64) float64 {
	r := math.Min(radius, math.Min(w/2, h/2))
	if !(r > 0) {
		return 0
	}
	return r
}

// Build computes the outline for p. Degenerate input never fails: a negative
// rectangle collapses to zero size, an oversized radius is clamped and a gap
// wider than the bottom edge removes the straight part of that edge.
func Build(p Params) Path {
	margin := nonNegative(p.Margin)
	w := math.Max(0, p.PageWidth-2*margin)
	h := math.Max(0, p.PageHeight-2*margin)
	rect := types.Rect{X: margin, Y: margin, W: w, H: h}

	r := ClampRadius(p.Radius, w, h)
	gap := nonNegative(p.Gap)

	left, top := rect.X, rect.Y
	right, bottom := rect.Right(), rect.Bottom()
	centerX := left + w/2

	start := types.Point{X: math.Min(centerX+gap/2, right-r), Y: bottom}
	end := types.Point{X: math.Max(centerX-gap/2, left+r), Y: bottom}

	return Path{
		Rect:   rect,
		Radius: r,
		Gap:    gap,
		Start:  start,
		End:    end,
		Corners: [4]Corner{
			{
				Vertex:     types.Point{X: right, Y: bottom},
				Center:     types.Point{X: right - r, Y: bottom - r},
				StartAngle: math.Pi / 2,
				EndAngle:   0,
			},
			{
				Vertex:     types.Point{X: right, Y: top},
				Center:     types.Point{X: right - r, Y: top + r},
				StartAngle: 0,
				EndAngle:   -math.Pi / 2,
			},
			{
				Vertex:     types.Point{X: left, Y: top},
				Center:     types.Point{X: left + r, Y: top + r},
				StartAngle: -math.Pi / 2,
				EndAngle:   -math.Pi,
			},
			{
				Vertex:     types.Point{X: left, Y: bottom},
				Center:     types.Point{X: left + r, Y: bottom - r},
				StartAngle: -math.Pi,
				EndAngle:   -3 * math.Pi / 2,
			},
		},
	}
}

// Closed reports whether the two ends of the outline meet, which happens
// when there is no gap.
func (p Path) Closed() bool {
	return p.Start == p.End
}

// Pen receives the outline as drawing commands.
type Pen interface {
	MoveTo(p types.Point)
	LineTo(p types.Point)
	CubeTo(c1, c2, p types.Point)
}

// Trace emits the outline to pen. Every corner is emitted as a cubic arc,
// including zero-radius corners, which collapse onto the vertex.
func (p Path) Trace(pen Pen) {
	pen.MoveTo(p.Start)
	for _, c := range p.Corners {
		pen.LineTo(arcPoint(c.Center, p.Radius, c.StartAngle))
		c1, c2, to := arcControls(c.Center, p.Radius, c.StartAngle, c.EndAngle)
		pen.CubeTo(c1, c2, to)
	}
	pen.LineTo(p.End)
}

func arcPoint(c types.Point, r, angle float64) types.Point {
	return types.Point{X: c.X + r*math.Cos(angle), Y: c.Y + r*math.Sin(angle)}
}

// arcControls approximates the arc from a0 to a1 (at most a quarter turn)
// with a single cubic Bézier.
func arcControls(c types.Point, r, a0, a1 float64) (types.Point, types.Point, types.Point) {
	k := 4.0 / 3.0 * math.Tan((a1-a0)/4)
	p0 := arcPoint(c, r, a0)
	p3 := arcPoint(c, r, a1)
	c1 := types.Point{X: p0.X - k*r*math.Sin(a0), Y: p0.Y + k*r*math.Cos(a0)}
	c2 := types.Point{X: p3.X + k*r*math.Sin(a1), Y: p3.Y - k*r*math.Cos(a1)}
	return c1, c2, p3
}

func nonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}
