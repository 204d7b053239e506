package main

import (
	"github.com/spf13/cobra"

	"github.com/menta2k/image-framer/pkg/types"
)

// styleFlags override the frame section of the config file
type styleFlags struct {
	caption   string
	margin    float64
	thickness float64
	font      string
	fontSize  float64
	bold      bool
	textColor string
	lineColor string
	rounded   bool
	radius    float64
}

func addStyleFlags(cmd *cobra.Command, s *styleFlags) {
	f := cmd.Flags()
	f.StringVarP(&s.caption, "caption", "c", "", "caption text (empty draws a closed border)")
	f.Float64Var(&s.margin, "margin", 0, "border margin in mm")
	f.Float64Var(&s.thickness, "thickness", 0, "border line thickness in CSS px")
	f.StringVar(&s.font, "font", "", `caption font family list, e.g. "Georgia, serif"`)
	f.Float64Var(&s.fontSize, "font-size", 0, "caption size in pt")
	f.BoolVar(&s.bold, "bold", false, "bold caption")
	f.StringVar(&s.textColor, "text-color", "", "caption color (#rgb or #rrggbb)")
	f.StringVar(&s.lineColor, "line-color", "", "border color (#rgb or #rrggbb)")
	f.BoolVar(&s.rounded, "rounded", false, "round the border corners")
	f.Float64Var(&s.radius, "radius", 0, "corner radius in mm")
}

// apply returns base with every flag the user set applied
func (s *styleFlags) apply(cmd *cobra.Command, base types.FrameConfig) types.FrameConfig {
	f := cmd.Flags()
	if f.Changed("caption") {
		base.CaptionText = s.caption
	}
	if f.Changed("margin") {
		base.MarginMM = s.margin
	}
	if f.Changed("thickness") {
		base.LineThicknessPx = s.thickness
	}
	if f.Changed("font") {
		base.FontFamily = s.font
	}
	if f.Changed("font-size") {
		base.FontSizePt = s.fontSize
	}
	if f.Changed("bold") {
		base.Bold = s.bold
	}
	if f.Changed("text-color") {
		base.TextColor = s.textColor
	}
	if f.Changed("line-color") {
		base.LineColor = s.lineColor
	}
	if f.Changed("rounded") {
		base.Rounded = s.rounded
	}
	if f.Changed("radius") {
		base.CornerRadiusMM = s.radius
	}
	return base
}
