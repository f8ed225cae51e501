// Package render draws the tools' products to PNG: skew-T diagrams,
// meteograms, cross-sections, and storm report maps.
package render

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// writePNG renders a plot onto a fresh canvas of the given size and writes
// the PNG encoding to w.
func writePNG(p *plot.Plot, width, height vg.Length, w io.Writer) error {
	img := vgimg.New(width, height)
	p.Draw(draw.New(img))
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// roundUpBase pads x by one base step and rounds to the nearest base.
func roundUpBase(x, base float64) float64 {
	return base * math.Round((x+base)/base)
}

// roundDownBase pads x down by one base step and rounds to the nearest base.
func roundDownBase(x, base float64) float64 {
	return base * math.Round((x-base)/base)
}
