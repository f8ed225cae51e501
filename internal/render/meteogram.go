package render

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// MeteogramInput holds the hourly surface trace for one forecast point.
// Times are the valid times; TempF and DewpointF run parallel to them.
type MeteogramInput struct {
	Times     []time.Time
	TempF     []float64
	DewpointF []float64
	Title     string
	Local     *time.Location // axis label timezone; nil means UTC
}

// Meteogram renders filled air and dewpoint temperature traces and writes the
// PNG to w.
func Meteogram(in MeteogramInput, w io.Writer) error {
	if len(in.Times) == 0 {
		return fmt.Errorf("meteogram: no timesteps")
	}
	if len(in.TempF) != len(in.Times) || len(in.DewpointF) != len(in.Times) {
		return fmt.Errorf("meteogram: ragged series: %d times, %d temps, %d dewpoints",
			len(in.Times), len(in.TempF), len(in.DewpointF))
	}

	loc := in.Local
	if loc == nil {
		loc = time.UTC
	}

	lo, hi := in.DewpointF[0], in.TempF[0]
	for i := range in.Times {
		if in.DewpointF[i] < lo {
			lo = in.DewpointF[i]
		}
		if in.TempF[i] > hi {
			hi = in.TempF[i]
		}
	}

	graph := chart.Chart{
		Title:  in.Title,
		Width:  1100,
		Height: 700,
		XAxis: chart.XAxis{
			Name: "Date time",
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				return chart.TimeFromFloat64(f).In(loc).Format("3:04 PM")
			},
		},
		YAxis: chart.YAxis{
			Name: "Temperature (F)",
			// Rounded limits pad the traces by one 5 degree step.
			Range: &chart.ContinuousRange{
				Min: roundDownBase(lo, 5),
				Max: roundUpBase(hi, 5),
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
				StrokeWidth: 1,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Air Temperature",
				XValues: in.Times,
				YValues: in.TempF,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 0xff, A: 0xff},
					StrokeWidth: 2,
					// lightcoral fill under the trace
					FillColor: drawing.Color{R: 0xf0, G: 0x80, B: 0x80, A: 0xa0},
				},
			},
			chart.TimeSeries{
				Name:    "Dewpoint",
				XValues: in.Times,
				YValues: in.DewpointF,
				Style: chart.Style{
					StrokeColor: drawing.Color{G: 0x80, A: 0xff},
					StrokeWidth: 2,
					// lightgreen fill under the trace
					FillColor: drawing.Color{R: 0x90, G: 0xee, B: 0x90, A: 0xa0},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render meteogram: %w", err)
	}
	return nil
}
