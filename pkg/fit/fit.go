// Package fit computes where a photo goes on the page.
package fit

import (
	"math"

	"github.com/menta2k/image-framer/pkg/types"
)

// Contain computes the centered rectangle that fits an image with aspect
// ratio r (height/width) inside a pageW x pageH box without cropping.
// The rectangle touches the page on the constraining axis and is
// letterboxed on the other. An empty page or a non-positive ratio yields a
// zero rectangle.
func Contain(pageW, pageH, r float64) types.Rect {
	if !(pageW > 0) || !(pageH > 0) || !(r > 0) || math.IsInf(r, 0) {
		return types.Rect{}
	}
	var drawW, drawH float64
	if r > pageH/pageW {
		// Image is relatively taller than the page
		drawH = pageH
		drawW = pageH / r
	} else {
		drawW = pageW
		drawH = pageW * r
	}

	return types.Rect{
		X: (pageW - drawW) / 2,
		Y: (pageH - drawH) / 2,
		W: drawW,
		H: drawH,
	}
}

// ContainImage computes the draw rectangle for an image of srcW x srcH pixels.
// It returns false when there is nothing to draw: an empty source or page.
func ContainImage(pageW, pageH float64, srcW, srcH int) (types.Rect, bool) {
	if srcW <= 0 || srcH <= 0 || !(pageW > 0) || !(pageH > 0) {
		return types.Rect{}, false
	}
	r := float64(srcH) / float64(srcW)
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return types.Rect{}, false
	}
	return Contain(pageW, pageH, r), true
}

// PixelBounds snaps a draw rectangle to whole pixels. Both edges are rounded
// independently so adjacent rectangles never overlap or leave a seam.
func PixelBounds(r types.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Round(r.X))
	y0 = int(math.Round(r.Y))
	x1 = int(math.Round(r.Right()))
	y1 = int(math.Round(r.Bottom()))
	return x0, y0, x1, y1
}
