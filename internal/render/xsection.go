package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/anthony-illenden/METR-Compilation/internal/interpolate"
	"github.com/anthony-illenden/METR-Compilation/internal/xsect"
)

const xsectPBottom = 1030.0

// CrossSection renders the section: red potential temperature contours every
// 5 K, faded green mixing ratio contours every 2 g/kg, terrain fill, and the
// observed wind barbs at each station column. The PNG is written to w.
func CrossSection(sec *xsect.Section, title string, w io.Writer) error {
	if len(sec.Stations) < 2 {
		return fmt.Errorf("cross-section render: %d stations", len(sec.Stations))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Pressure (mb)"
	p.X.Min, p.X.Max = sec.X[0], sec.X[len(sec.X)-1]
	p.Y.Min, p.Y.Max = 100, xsectPBottom
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LogScale{}}
	p.Y.Tick.Marker = plot.ConstantTicks(pressureTicks())
	p.X.Tick.Marker = plot.ConstantTicks(stationTicks(sec))

	// Smoothing matches the plotted product: light for theta, heavier for
	// the noisier moisture field.
	theta := interpolate.GaussianSmooth(sec.Fields[xsect.FieldTheta], 1.0)
	mixRat := interpolate.GaussianSmooth(sec.Fields[xsect.FieldMixingRatio], 2.0)

	thetaC := plotter.NewContour(newSectionGrid(sec, theta), contourLevels(0, 500, 5), nil)
	thetaC.LineStyles = []draw.LineStyle{{Color: color.NRGBA{R: 0xff, A: 0xff}, Width: vg.Points(1)}}
	p.Add(thetaC)

	mixC := plotter.NewContour(newSectionGrid(sec, mixRat), contourLevels(0, 40, 2), nil)
	// darkgreen, half faded
	mixC.LineStyles = []draw.LineStyle{{Color: color.NRGBA{G: 0x64, A: 0x80}, Width: vg.Points(1)}}
	p.Add(mixC)

	if err := addTerrain(p, sec); err != nil {
		return err
	}

	for _, st := range sec.Stations {
		column, err := plotter.NewLine(plotter.XYs{
			{X: st.Dist, Y: xsectPBottom}, {X: st.Dist, Y: 100},
		})
		if err != nil {
			return err
		}
		column.Color = color.Black
		column.Width = vg.Points(2)
		p.Add(column)

		var bx, by, bu, bv []float64
		for i := 0; i < len(st.Pressure); i += 4 {
			if st.Pressure[i] > xsectPBottom || st.Pressure[i] < 100 {
				continue
			}
			bx = append(bx, st.Dist)
			by = append(by, st.Pressure[i])
			bu = append(bu, st.U[i])
			bv = append(bv, st.V[i])
		}
		p.Add(newBarbs(bx, by, bu, bv))
	}

	return writePNG(p, 15*vg.Inch, 10*vg.Inch, w)
}

// addTerrain fills from the station elevation curve down to the bottom axis.
func addTerrain(p *plot.Plot, sec *xsect.Section) error {
	xys := make(plotter.XYs, 0, len(sec.Stations)+2)
	for _, st := range sec.Stations {
		xys = append(xys, plotter.XY{X: st.Dist, Y: math.Min(st.Terrain, xsectPBottom)})
	}
	xys = append(xys,
		plotter.XY{X: sec.Stations[len(sec.Stations)-1].Dist, Y: xsectPBottom},
		plotter.XY{X: sec.Stations[0].Dist, Y: xsectPBottom},
	)

	terrain, err := plotter.NewPolygon(xys)
	if err != nil {
		return err
	}
	// saddlebrown
	terrain.Color = color.NRGBA{R: 0x8b, G: 0x45, B: 0x13, A: 0xff}
	terrain.LineStyle.Color = color.NRGBA{}
	p.Add(terrain)
	return nil
}

func stationTicks(sec *xsect.Section) []plot.Tick {
	ticks := make([]plot.Tick, len(sec.Stations))
	for i, st := range sec.Stations {
		ticks[i] = plot.Tick{Value: st.Dist, Label: st.ID}
	}
	return ticks
}

func contourLevels(start, stop, step float64) []float64 {
	var levels []float64
	for v := start; v <= stop; v += step {
		levels = append(levels, v)
	}
	return levels
}

// sectionGrid adapts a section field to the contour plotter's grid interface.
// Rows are presented bottom-up so the y coordinate ascends.
type sectionGrid struct {
	x      []float64
	levels []float64 // ascending
	z      [][]float64
}

func newSectionGrid(sec *xsect.Section, field [][]float64) sectionGrid {
	n := len(sec.Levels)
	levels := make([]float64, n)
	z := make([][]float64, n)
	for i := 0; i < n; i++ {
		levels[i] = sec.Levels[n-1-i]
		z[i] = field[n-1-i]
	}
	return sectionGrid{x: sec.X, levels: levels, z: z}
}

func (g sectionGrid) Dims() (c, r int)   { return len(g.x), len(g.levels) }
func (g sectionGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g sectionGrid) X(c int) float64    { return g.x[c] }
func (g sectionGrid) Y(r int) float64    { return g.levels[r] }
