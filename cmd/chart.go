package cmd

import (
	"bytes"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var chartBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// boroughPalette colors one line per borough, in sorted-name order.
var boroughPalette = []color.Color{
	chartBlue,
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 140, G: 86, B: 75, A: 255},
	color.RGBA{R: 227, G: 119, B: 194, A: 255},
	color.RGBA{R: 127, G: 127, B: 127, A: 255},
}

// weekXYs positions points on the index of their week in sortedWeeks.
func weekXYs(points []dataPoint, sortedWeeks []string) plotter.XYs {
	idx := make(map[string]int, len(sortedWeeks))
	for i, w := range sortedWeeks {
		idx[w] = i
	}
	var pts plotter.XYs
	for _, p := range points {
		x, ok := idx[p.week]
		if !ok || math.IsNaN(p.value) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(x), Y: p.value})
	}
	return pts
}

// volumeChart plots one line per borough of weekly trip volume.
func volumeChart(title string, series map[string][]dataPoint, sortedWeeks []string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid())

	for i, name := range sortedEntityNames(series) {
		pts := weekXYs(series[name], sortedWeeks)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = boroughPalette[i%len(boroughPalette)]
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	setWeekAxis(p, sortedWeeks)
	return p, nil
}

// boroughChart plots a single series with point markers.
func boroughChart(title string, points []dataPoint, sortedWeeks []string) (*plot.Plot, error) {
	pts := weekXYs(points, sortedWeeks)

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid())

	if len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = chartBlue
		line.Width = vg.Points(2)

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		scatter.Color = chartBlue
		scatter.Radius = vg.Points(3)
		scatter.Shape = draw.CircleGlyph{}
		p.Add(line, scatter)
	}

	setWeekAxis(p, sortedWeeks)
	return p, nil
}

func setWeekAxis(p *plot.Plot, sortedWeeks []string) {
	p.X.Tick.Marker = weekTicks(sortedWeeks)
	p.X.Min = -0.5
	p.X.Max = float64(len(sortedWeeks)) - 0.5
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Tick.Marker = compactTicks{}
}

// renderPNG encodes p as a PNG image of the given size.
func renderPNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// maxWeekLabels bounds how many x-axis ticks carry a label.
const maxWeekLabels = 12

// weekTicks places one tick per week and labels every nth so at most
// maxWeekLabels are shown. ISO dates are shortened to "Jan 06".
type weekTicks []string

func (wt weekTicks) Ticks(_, _ float64) []plot.Tick {
	every := max(1, (len(wt)+maxWeekLabels-1)/maxWeekLabels)
	ticks := make([]plot.Tick, len(wt))
	for i, w := range wt {
		ticks[i].Value = float64(i)
		if i%every == 0 {
			ticks[i].Label = weekLabel(w)
		}
	}
	return ticks
}

func weekLabel(week string) string {
	t, err := time.Parse(time.DateOnly, week)
	if err != nil {
		return week
	}
	return t.Format("Jan 02")
}

// compactTicks relabels gonum's default ticks with formatCompact.
type compactTicks struct{ plot.DefaultTicks }

func (c compactTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := c.DefaultTicks.Ticks(lo, hi)
	for i, t := range ticks {
		if t.IsMinor() {
			continue
		}
		ticks[i].Label = formatCompact(t.Value)
	}
	return ticks
}
