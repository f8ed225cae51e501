package render

import (
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/geo"
)

// Warning fill colors by VTEC phenomena code.
var warningColors = map[string]color.NRGBA{
	"TO": {R: 0xff, A: 0xff},                   // red
	"SV": {R: 0xff, G: 0xff, A: 0xff},          // yellow
	"FF": {G: 0x80, A: 0xff},                   // green
	"MA": {R: 0xff, G: 0xa5, A: 0xff},          // orange
	"DS": {R: 0xa5, G: 0x2a, B: 0x2a, A: 0xff}, // brown
}

// warningOrder stacks tornado warnings on top, marine at the bottom.
var warningOrder = map[string]int{"MA": 1, "DS": 2, "FF": 3, "SV": 4, "TO": 5}

// StormMapInput is everything drawn on the verification map. Extent is
// lon west, lon east, lat south, lat north in degrees.
type StormMapInput struct {
	Title    string
	Reports  []domain.StormReport
	Warnings []domain.Warning
	States   []domain.Ring
	Extent   [4]float64
}

// StormMap renders warning polygons and storm report markers on a Lambert
// conformal map and writes the PNG to w.
func StormMap(in StormMapInput, w io.Writer) error {
	extent := in.Extent
	if extent == [4]float64{} {
		extent = [4]float64{-85.5, -82, 41.5, 44}
	}
	proj := geo.NewLambertConformal(-85.6, 44.3, 30, 60)

	p := plot.New()
	p.Title.Text = in.Title
	p.HideAxes()
	setMapExtent(p, proj, extent)

	gray := color.NRGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	for _, ring := range in.States {
		l, err := plotter.NewLine(projectRing(proj, ring, true))
		if err != nil {
			return err
		}
		l.Color = gray
		l.Width = vg.Points(1)
		p.Add(l)
	}

	if err := addWarnings(p, proj, in.Warnings); err != nil {
		return err
	}
	if err := addReports(p, proj, in.Reports); err != nil {
		return err
	}
	p.Legend.Top = true

	// Near-square extent; leave a little height for the title.
	return writePNG(p, 12*vg.Inch, 12.4*vg.Inch, w)
}

// setMapExtent fits the axis ranges around the projected extent rectangle.
// The rectangle's edges curve under the projection, so each edge is sampled.
func setMapExtent(p *plot.Plot, proj geo.LambertConformal, extent [4]float64) {
	lonW, lonE, latS, latN := extent[0], extent[1], extent[2], extent[3]
	first := true
	const steps = 24
	for i := 0; i <= steps; i++ {
		f := float64(i) / steps
		for _, pt := range [][2]float64{
			{lonW + f*(lonE-lonW), latS},
			{lonW + f*(lonE-lonW), latN},
			{lonW, latS + f*(latN-latS)},
			{lonE, latS + f*(latN-latS)},
		} {
			x, y := proj.Forward(pt[0], pt[1])
			if first {
				p.X.Min, p.X.Max = x, x
				p.Y.Min, p.Y.Max = y, y
				first = false
				continue
			}
			if x < p.X.Min {
				p.X.Min = x
			}
			if x > p.X.Max {
				p.X.Max = x
			}
			if y < p.Y.Min {
				p.Y.Min = y
			}
			if y > p.Y.Max {
				p.Y.Max = y
			}
		}
	}
}

// addWarnings draws the polygons bottom-up in severity order with event ID
// labels, and one legend entry per phenomena present.
func addWarnings(p *plot.Plot, proj geo.LambertConformal, warnings []domain.Warning) error {
	sorted := append([]domain.Warning(nil), warnings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return warningOrder[sorted[i].Phenomena] < warningOrder[sorted[j].Phenomena]
	})

	var (
		labelXYs  plotter.XYs
		labelText []string
		inLegend  = make(map[string]bool)
	)
	for _, warn := range sorted {
		fill, ok := warningColors[warn.Phenomena]
		if !ok {
			fill = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
		}
		for _, ring := range warn.Outline {
			if len(ring) < 3 {
				continue
			}
			poly, err := plotter.NewPolygon(projectRing(proj, ring, false))
			if err != nil {
				return err
			}
			poly.Color = fill
			poly.LineStyle = draw.LineStyle{Color: color.Black, Width: vg.Points(1)}
			p.Add(poly)

			x, y := proj.Forward(ring[0].Lon, ring[0].Lat)
			labelXYs = append(labelXYs, plotter.XY{X: x, Y: y})
			labelText = append(labelText, strconv.Itoa(warn.EventID))

			if !inLegend[warn.Phenomena] {
				inLegend[warn.Phenomena] = true
				p.Legend.Add(domain.PhenomenaName(warn.Phenomena), poly)
			}
		}
	}

	if len(labelXYs) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labelText})
		if err != nil {
			return err
		}
		p.Add(labels)
	}
	return nil
}

// addReports scatters the reports grouped by legend category.
func addReports(p *plot.Plot, proj geo.LambertConformal, reports []domain.StormReport) error {
	byCategory := make(map[domain.ReportCategory]plotter.XYs)
	for _, r := range reports {
		x, y := proj.Forward(r.Lon, r.Lat)
		cat := r.Category()
		byCategory[cat] = append(byCategory[cat], plotter.XY{X: x, Y: y})
	}

	// Stable legend order, emphasized categories after their base ones.
	for _, cat := range []domain.ReportCategory{
		domain.CategoryTornado,
		domain.CategoryHail,
		domain.CategoryLargeHail,
		domain.CategoryWind,
		domain.CategoryHighWind,
	} {
		xys, ok := byCategory[cat]
		if !ok {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		s.GlyphStyle = reportGlyph(cat)
		p.Add(s)
		p.Legend.Add(reportLegend(cat), s)
	}
	return nil
}

func reportGlyph(cat domain.ReportCategory) draw.GlyphStyle {
	style := draw.GlyphStyle{Radius: vg.Points(5), Shape: draw.CircleGlyph{}}
	switch cat {
	case domain.CategoryTornado:
		style.Color = color.NRGBA{R: 0xff, A: 0xb3}
	case domain.CategoryHail:
		style.Color = color.NRGBA{G: 0x80, A: 0xb3}
	case domain.CategoryLargeHail:
		style.Color = color.NRGBA{A: 0xb3}
		style.Shape = draw.PyramidGlyph{}
		style.Radius = vg.Points(6)
	case domain.CategoryWind:
		style.Color = color.NRGBA{B: 0xff, A: 0xb3}
	case domain.CategoryHighWind:
		style.Color = color.NRGBA{A: 0xb3}
		style.Shape = draw.BoxGlyph{}
	}
	return style
}

func reportLegend(cat domain.ReportCategory) string {
	switch cat {
	case domain.CategoryTornado:
		return "Tornado Report"
	case domain.CategoryHail:
		return "Hail Report"
	case domain.CategoryLargeHail:
		return fmt.Sprintf("Large Hail Report (%.0f\"+)", domain.LargeHailInches)
	case domain.CategoryWind:
		return "Wind Report"
	default:
		return fmt.Sprintf("High Wind Report (%.0f mph+)", domain.HighWindMPH)
	}
}

// projectRing converts a lon/lat ring to projected XYs, optionally leaving it
// open for drawing as a line.
func projectRing(proj geo.LambertConformal, ring domain.Ring, closeRing bool) plotter.XYs {
	xys := make(plotter.XYs, 0, len(ring)+1)
	for _, pt := range ring {
		x, y := proj.Forward(pt.Lon, pt.Lat)
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	if closeRing && len(xys) > 0 && xys[0] != xys[len(xys)-1] {
		xys = append(xys, xys[0])
	}
	return xys
}
