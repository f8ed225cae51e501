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
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/anthony-illenden/METR-Compilation/internal/domain"
	"github.com/anthony-illenden/METR-Compilation/internal/metcalc"
)

// Skew-T geometry: x is temperature skewed by the log-pressure distance from
// the bottom axis, so isotherms lean right at roughly 45 degrees.
const (
	skewFactor  = 38.0
	skewPBottom = 1050.0
	skewPTop    = 100.0
	skewTMin    = -40.0
	skewTMax    = 50.0
)

func skewX(tC, p float64) float64 {
	return tC + skewFactor*math.Log(skewPBottom/p)
}

// mixingRatios are the g/kg values whose saturation lines appear in the
// background, bunched tighter at small values where they matter.
var mixingRatios = []float64{0.1, 0.2, 0.4, 0.6, 1, 1.5, 2, 3, 4, 6, 8, 10, 13, 16, 20, 25, 30, 36, 42}

// SkewTInput is a sounding plus its derived traces. Parcel and WetBulb are in
// °C at the profile's levels; either may be empty to skip that trace. PLFC of
// zero means no level of free convection was found.
type SkewTInput struct {
	Profile domain.Profile
	Parcel  []float64
	WetBulb []float64
	PLFC    float64
	Title   string
}

// SkewT renders a skew-T log-p diagram with a hodograph inset and writes the
// PNG to w.
func SkewT(in SkewTInput, w io.Writer) error {
	prof := in.Profile
	if err := prof.Validate(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = in.Title
	p.X.Label.Text = "Temperature (C)"
	p.Y.Label.Text = "Pressure (mb)"
	p.X.Min, p.X.Max = skewTMin, skewTMax
	p.Y.Min, p.Y.Max = skewPTop, skewPBottom
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LogScale{}}
	p.Y.Tick.Marker = plot.ConstantTicks(pressureTicks())
	p.X.Tick.Marker = plot.ConstantTicks(temperatureTicks())

	if err := addSkewBackground(p); err != nil {
		return err
	}

	if len(in.Parcel) == len(prof.Pressure) {
		if err := addBuoyancyShading(p, prof, in.Parcel, in.PLFC); err != nil {
			return err
		}
	}

	if err := addSkewLine(p, prof.Pressure, prof.Temperature,
		color.NRGBA{R: 0xff, A: 0xff}, vg.Points(2), nil); err != nil {
		return err
	}
	if err := addSkewLine(p, prof.Pressure, prof.Dewpoint,
		color.NRGBA{G: 0x80, A: 0xff}, vg.Points(2), nil); err != nil {
		return err
	}
	if len(in.WetBulb) == len(prof.Pressure) {
		// lightskyblue
		if err := addSkewLine(p, prof.Pressure, in.WetBulb,
			color.NRGBA{R: 0x87, G: 0xce, B: 0xfa, A: 0xff}, vg.Points(1), nil); err != nil {
			return err
		}
	}
	if len(in.Parcel) == len(prof.Pressure) {
		dashes := []vg.Length{vg.Points(5), vg.Points(3)}
		if err := addSkewLine(p, prof.Pressure, in.Parcel,
			color.NRGBA{A: 0xff}, vg.Points(2), dashes); err != nil {
			return err
		}
	}

	u, v := prof.UV()
	p.Add(marginBarbs(prof.Pressure, u, v, 2))

	img := vgimg.New(9*vg.Inch, 9*vg.Inch)
	dc := draw.New(img)
	p.Draw(dc)

	// Hodograph inset, top right 40% of the canvas.
	hodo, err := hodographPlot(u, v, prof.WindSpeed)
	if err != nil {
		return err
	}
	cw := dc.Max.X - dc.Min.X
	ch := dc.Max.Y - dc.Min.Y
	hodo.Draw(draw.Crop(dc, cw*0.58, -cw*0.02, ch*0.58, -ch*0.02))

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// addSkewLine plots a temperature-like trace in skewed coordinates, dropping
// NaN levels and anything outside the pressure window.
func addSkewLine(p *plot.Plot, pres, vals []float64, c color.Color, width vg.Length, dashes []vg.Length) error {
	xys := make(plotter.XYs, 0, len(pres))
	for i := range pres {
		if math.IsNaN(vals[i]) || pres[i] > skewPBottom || pres[i] < skewPTop {
			continue
		}
		xys = append(xys, plotter.XY{X: skewX(vals[i], pres[i]), Y: pres[i]})
	}
	if len(xys) < 2 {
		return nil
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = width
	l.Dashes = dashes
	p.Add(l)
	return nil
}

// addSkewBackground draws the reference families: gray isotherms, orange-red
// dry adiabats, green moist adiabats, and dotted blue mixing ratio lines.
func addSkewBackground(p *plot.Plot) error {
	samples := pressureSamples(skewPBottom, skewPTop, 10)

	for t := -100.0; t <= skewTMax; t += 10 {
		xys := make(plotter.XYs, len(samples))
		for i, pr := range samples {
			xys[i] = plotter.XY{X: skewX(t, pr), Y: pr}
		}
		if err := addBackgroundLine(p, xys, color.NRGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}, vg.Points(0.5), nil); err != nil {
			return err
		}
	}

	for t0 := 233.0; t0 < 533; t0 += 10 {
		xys := make(plotter.XYs, len(samples))
		for i, pr := range samples {
			xys[i] = plotter.XY{X: skewX(metcalc.KToC(metcalc.DryLapse(pr, t0, 1000)), pr), Y: pr}
		}
		// orangered, strongly faded
		if err := addBackgroundLine(p, xys, color.NRGBA{R: 0xff, G: 0x45, A: 0x40}, vg.Points(1), nil); err != nil {
			return err
		}
	}

	moistSamples := pressureSamples(1000, skewPTop, 10)
	for t0 := 233.0; t0 < 400; t0 += 5 {
		xys := make(plotter.XYs, len(moistSamples))
		tK := t0
		prev := moistSamples[0]
		for i, pr := range moistSamples {
			tK = metcalc.MoistLapse(pr, tK, prev)
			prev = pr
			xys[i] = plotter.XY{X: skewX(metcalc.KToC(tK), pr), Y: pr}
		}
		if err := addBackgroundLine(p, xys, color.NRGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0x40}, vg.Points(1), nil); err != nil {
			return err
		}
	}

	dotted := []vg.Length{vg.Points(1), vg.Points(3)}
	for _, wgkg := range mixingRatios {
		var xys plotter.XYs
		for pr := 1000.0; pr >= 500; pr -= 50 {
			e := metcalc.VaporPressureFromMixingRatio(pr, wgkg/1000)
			td := metcalc.DewpointFromVaporPressure(e)
			xys = append(xys, plotter.XY{X: skewX(td, pr), Y: pr})
		}
		// dodgerblue
		if err := addBackgroundLine(p, xys, color.NRGBA{R: 0x1e, G: 0x90, B: 0xff, A: 0xff}, vg.Points(1), dotted); err != nil {
			return err
		}
	}
	return nil
}

func addBackgroundLine(p *plot.Plot, xys plotter.XYs, c color.Color, width vg.Length, dashes []vg.Length) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = width
	l.Dashes = dashes
	p.Add(l)
	return nil
}

// addBuoyancyShading fills the area between the environment and parcel
// traces: red where the parcel is warmer (CAPE), blue where it is cooler
// below the LFC (CIN).
func addBuoyancyShading(p *plot.Plot, prof domain.Profile, parcel []float64, pLFC float64) error {
	anyP := func(float64) bool { return true }
	belowLFC := anyP
	if pLFC > 0 {
		belowLFC = func(pr float64) bool { return pr >= pLFC }
	}

	// tab:red and tab:blue, translucent
	capeFill := color.NRGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0x66}
	cinFill := color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0x66}

	for _, region := range []struct {
		positive bool
		within   func(float64) bool
		fill     color.NRGBA
	}{
		{positive: true, within: anyP, fill: capeFill},
		{positive: false, within: belowLFC, fill: cinFill},
	} {
		for _, xys := range buoyancyPolys(prof.Pressure, prof.Temperature, parcel, region.positive, region.within) {
			poly, err := plotter.NewPolygon(xys)
			if err != nil {
				return err
			}
			poly.Color = region.fill
			poly.LineStyle.Color = color.NRGBA{}
			p.Add(poly)
		}
	}
	return nil
}

// buoyancyPolys cuts the area between the environment and parcel traces into
// one polygon per level pair, splitting segments at sign crossings so shading
// never spills across the zero-buoyancy point.
func buoyancyPolys(pres, env, parcel []float64, positive bool, within func(float64) bool) []plotter.XYs {
	holds := func(d float64) bool {
		if positive {
			return d > 0
		}
		return d < 0
	}
	pt := func(v, pr float64) plotter.XY {
		return plotter.XY{X: skewX(v, pr), Y: pr}
	}

	var polys []plotter.XYs
	for i := 0; i+1 < len(pres); i++ {
		if !within(pres[i]) || !within(pres[i+1]) ||
			pres[i] > skewPBottom || pres[i+1] < skewPTop {
			continue
		}
		d0 := parcel[i] - env[i]
		d1 := parcel[i+1] - env[i+1]
		h0, h1 := holds(d0), holds(d1)
		if !h0 && !h1 {
			continue
		}

		p0, p1 := pres[i], pres[i+1]
		switch {
		case h0 && h1:
			polys = append(polys, plotter.XYs{
				pt(env[i], p0), pt(env[i+1], p1), pt(parcel[i+1], p1), pt(parcel[i], p0),
			})
		case h0:
			pc, vc := buoyancyCrossing(p0, p1, env[i], env[i+1], d0, d1)
			polys = append(polys, plotter.XYs{pt(env[i], p0), pt(vc, pc), pt(parcel[i], p0)})
		default:
			pc, vc := buoyancyCrossing(p0, p1, env[i], env[i+1], d0, d1)
			polys = append(polys, plotter.XYs{pt(vc, pc), pt(env[i+1], p1), pt(parcel[i+1], p1)})
		}
	}
	return polys
}

// buoyancyCrossing locates the zero of the parcel-environment difference
// between two levels, linear in ln pressure.
func buoyancyCrossing(p0, p1, e0, e1, d0, d1 float64) (pc, vc float64) {
	f := d0 / (d0 - d1)
	lnp := math.Log(p0) + f*(math.Log(p1)-math.Log(p0))
	return math.Exp(lnp), e0 + f*(e1-e0)
}

// marginBarbs builds the right-margin wind staff, one barb per stride levels.
func marginBarbs(pres []float64, u, v []float64, stride int) *barbs {
	var bx, by, bu, bv []float64
	for i := 0; i < len(pres); i += stride {
		if pres[i] > skewPBottom || pres[i] < skewPTop {
			continue
		}
		bx = append(bx, skewTMax-4)
		by = append(by, pres[i])
		bu = append(bu, u[i])
		bv = append(bv, v[i])
	}
	return newBarbs(bx, by, bu, bv)
}

// hodographPlot draws the compact hodograph: range rings every 20 kt out to
// 80, trace segments colored by wind speed.
func hodographPlot(u, v, speed []float64) (*plot.Plot, error) {
	h := plot.New()
	h.HideAxes()
	h.X.Min, h.X.Max = -80, 80
	h.Y.Min, h.Y.Max = -80, 80

	gray := color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}
	for _, axis := range []plotter.XYs{
		{{X: -80, Y: 0}, {X: 80, Y: 0}},
		{{X: 0, Y: -80}, {X: 0, Y: 80}},
	} {
		l, err := plotter.NewLine(axis)
		if err != nil {
			return nil, err
		}
		l.Color = gray
		l.Width = vg.Points(0.5)
		h.Add(l)
	}
	for r := 20.0; r <= 80; r += 20 {
		ring := make(plotter.XYs, 65)
		for i := range ring {
			a := 2 * math.Pi * float64(i) / 64
			ring[i] = plotter.XY{X: r * math.Cos(a), Y: r * math.Sin(a)}
		}
		l, err := plotter.NewLine(ring)
		if err != nil {
			return nil, err
		}
		l.Color = gray
		l.Width = vg.Points(0.5)
		h.Add(l)
	}

	for i := 0; i+1 < len(u); i++ {
		seg, err := plotter.NewLine(plotter.XYs{
			{X: u[i], Y: v[i]}, {X: u[i+1], Y: v[i+1]},
		})
		if err != nil {
			return nil, err
		}
		seg.Color = speedColor(speed[i])
		seg.Width = vg.Points(2)
		h.Add(seg)
	}
	return h, nil
}

// speedColor buckets wind speed into the hodograph trace colors.
func speedColor(kt float64) color.Color {
	switch {
	case kt < 20:
		return color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	case kt < 40:
		return color.NRGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	case kt < 60:
		return color.NRGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	default:
		return color.NRGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	}
}

func pressureTicks() []plot.Tick {
	var ticks []plot.Tick
	for pr := 1000.0; pr >= 100; pr -= 100 {
		ticks = append(ticks, plot.Tick{Value: pr, Label: fmt.Sprintf("%.0f", pr)})
	}
	return ticks
}

func temperatureTicks() []plot.Tick {
	var ticks []plot.Tick
	for t := skewTMin; t <= skewTMax; t += 10 {
		ticks = append(ticks, plot.Tick{Value: t, Label: fmt.Sprintf("%.0f", t)})
	}
	return ticks
}

// pressureSamples returns pressures from bottom down to top every step hPa.
func pressureSamples(bottom, top, step float64) []float64 {
	var out []float64
	for pr := bottom; pr >= top; pr -= step {
		out = append(out, pr)
	}
	return out
}
