package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// barbs plots conventional wind barbs: a staff pointing upwind carrying
// pennants for 50 kt, full ticks for 10 kt, and half ticks for 5 kt. Speeds
// under 2.5 kt draw as a calm circle. The plotter does not contribute to the
// axis ranges; callers place barbs inside ranges set by other data.
type barbs struct {
	x, y []float64 // data coordinates
	u, v []float64 // kt

	style draw.LineStyle
	size  vg.Length // staff length
}

func newBarbs(x, y, u, v []float64) *barbs {
	return &barbs{
		x: x, y: y, u: u, v: v,
		style: draw.LineStyle{Color: color.Black, Width: vg.Points(0.7)},
		size:  vg.Points(18),
	}
}

func (b *barbs) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i := range b.x {
		pt := vg.Point{X: trX(b.x[i]), Y: trY(b.y[i])}
		if !c.Contains(pt) {
			continue
		}
		b.drawOne(c, pt, b.u[i], b.v[i])
	}
}

func (b *barbs) drawOne(c draw.Canvas, base vg.Point, u, v float64) {
	speed := math.Hypot(u, v)
	if speed < 2.5 {
		b.circle(c, base, vg.Points(2))
		return
	}

	// Staff unit vector points upwind.
	sx := vg.Length(-u / speed)
	sy := vg.Length(-v / speed)
	// Tick unit vector, perpendicular to the staff.
	px := -sy
	py := sx

	tip := vg.Point{X: base.X + sx*b.size, Y: base.Y + sy*b.size}
	c.StrokeLine2(b.style, base.X, base.Y, tip.X, tip.Y)

	// Round to the nearest 5 kt and decompose.
	rounded := 5 * math.Round(speed/5)
	pennants := int(rounded / 50)
	fulls := int(math.Mod(rounded, 50) / 10)
	halves := int(math.Mod(rounded, 10) / 5)

	full := b.size * 0.4
	gap := b.size * 0.16
	pos := vg.Length(0) // distance back from the staff tip

	at := func(d vg.Length) vg.Point {
		return vg.Point{X: tip.X - sx*d, Y: tip.Y - sy*d}
	}

	for i := 0; i < pennants; i++ {
		p0 := at(pos)
		p1 := at(pos + gap)
		apex := vg.Point{X: p0.X + px*full, Y: p0.Y + py*full}
		c.FillPolygon(b.style.Color, []vg.Point{p0, apex, p1})
		pos += gap * 1.5
	}
	for i := 0; i < fulls; i++ {
		p0 := at(pos)
		c.StrokeLine2(b.style, p0.X, p0.Y, p0.X+px*full, p0.Y+py*full)
		pos += gap
	}
	for i := 0; i < halves; i++ {
		if pos == 0 {
			// A lone half barb sits one gap down the staff.
			pos += gap
		}
		p0 := at(pos)
		c.StrokeLine2(b.style, p0.X, p0.Y, p0.X+px*full/2, p0.Y+py*full/2)
		pos += gap
	}
}

func (b *barbs) circle(c draw.Canvas, at vg.Point, r vg.Length) {
	var pth vg.Path
	pth.Move(vg.Point{X: at.X + r, Y: at.Y})
	pth.Arc(at, r, 0, 2*math.Pi)
	pth.Close()
	c.SetLineStyle(b.style)
	c.Stroke(pth)
}
