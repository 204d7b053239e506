// Package units converts physical print units to device pixels at the fixed
// output resolution and derives the page geometry from them.
package units

import "math"

// DPI is the output raster resolution.
const DPI = 300

const (
	mmPerInch    = 25.4
	ptPerInch    = 72.0
	cssPxPerInch = 96.0
)

// Physical A4 portrait page.
const (
	PageWidthMM  = 210
	PageHeightMM = 297
)

// MMToPx converts millimeters to device pixels.
func MMToPx(mm float64) float64 {
	return nonNegative(mm) * (DPI / mmPerInch)
}

// PtToPx converts typographic points to device pixels.
func PtToPx(pt float64) float64 {
	return nonNegative(pt) * (DPI / ptPerInch)
}

// CSSPxToDevicePx scales a length authored in nominal 96 DPI pixels to device pixels.
func CSSPxToDevicePx(px float64) float64 {
	return nonNegative(px) * (DPI / cssPxPerInch)
}

// nonNegative maps negative and NaN inputs to 0 so downstream geometry
// degrades to a zero-size draw instead of failing.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

// Page is the output surface size in whole device pixels
type Page struct {
	Width  int
	Height int
}

// A4 returns the page geometry for 210mm x 297mm at DPI, rounded to whole pixels.
func A4() Page {
	return PageFromMM(PageWidthMM, PageHeightMM)
}

// PageFromMM returns the page geometry for an arbitrary physical size
func PageFromMM(widthMM, heightMM float64) Page {
	return Page{
		Width:  int(math.Round(MMToPx(widthMM))),
		Height: int(math.Round(MMToPx(heightMM))),
	}
}

// AspectRatio returns height/width
func (p Page) AspectRatio() float64 {
	if p.Width <= 0 {
		return 0
	}
	return float64(p.Height) / float64(p.Width)
}

// Empty reports whether the page has no drawable area
func (p Page) Empty() bool {
	return p.Width <= 0 || p.Height <= 0
}
