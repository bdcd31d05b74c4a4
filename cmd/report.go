package cmd

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"

	"github.com/zalepa/fleetkpi/kpi"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

const (
	pageWidth  = 8.5 * vg.Inch
	pageHeight = 11 * vg.Inch
	pdfMargin  = 0.75 * vg.Inch
)

// Report implements the "report" subcommand: write a PDF with a summary page
// followed by one weekly-volume chart page per borough.
func Report(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dir := fs.String("dir", "", "data directory (default $DATA_DIR)")
	out := fs.String("pdf", "kpi-report.pdf", "output PDF file path")
	envFile := fs.String("env", "", "env file to load before the environment")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fleetkpi report [dir] [--pdf report.pdf]\n\nWrite a PDF KPI report.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*dir = fs.Arg(0)
	}

	cfg, log := setup(*envFile, os.Stderr)
	d := loadDashboard(cfg, *dir, log)

	if err := renderPDF(*out, d); err != nil {
		log.WithError(err).Error("writing PDF")
		os.Exit(1)
	}
	info, err := inspectPDF(*out)
	if err != nil {
		log.WithError(err).WithField("path", *out).Error("written PDF is unreadable")
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d pages, source %s)\n", *out, info.pages, d.Source)
}

func renderPDF(path string, d kpi.Dashboard) error {
	series, weeks := boroughSeries(d.WeeklyByBorough)
	sortedWeeks := sortWeeks(weeks)
	names := sortedEntityNames(series)

	c := vgpdf.New(pageWidth, pageHeight)
	drawSummaryPages(c, d, series, names, sortedWeeks)

	for _, name := range names {
		c.NextPage()
		p, err := boroughChart("Weekly Trip Volume - "+name, series[name], sortedWeeks)
		if err != nil {
			return fmt.Errorf("chart for %s: %w", name, err)
		}
		drawOnPage(c, p)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func drawOnPage(c *vgpdf.Canvas, p *plot.Plot) {
	dc := draw.New(c)
	area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
	p.Draw(area)
}

const (
	summaryRowHeight = 0.30 * vg.Inch
	nameColWidth     = 2.2 * vg.Inch
	valueColWidth    = 0.9 * vg.Inch
	kpiLineHeight    = 0.25 * vg.Inch
)

type summaryRow struct {
	name   string
	points []dataPoint
	isSep  bool
}

// drawSummaryPages writes the KPI block and the per-borough sparkline table,
// continuing onto further pages when the table does not fit.
func drawSummaryPages(c *vgpdf.Canvas, d kpi.Dashboard, series map[string][]dataPoint, names []string, sortedWeeks []string) {
	usableW := pageWidth - 2*pdfMargin
	usableH := pageHeight - 2*pdfMargin
	sparkColWidth := usableW - nameColWidth - valueColWidth
	maxRowsPerPage := int((usableH - 0.5*vg.Inch) / summaryRowHeight)

	const title = "NYC Taxi Weekly KPIs"
	weekRange := "no weekly data"
	if n := len(sortedWeeks); n > 0 {
		weekRange = fmt.Sprintf("%s to %s (%d weeks)", sortedWeeks[0], sortedWeeks[n-1], n)
	}

	var rows []summaryRow
	for _, n := range names {
		rows = append(rows, summaryRow{name: n, points: series[n]})
	}
	if total := citywide(series, sortedWeeks); len(names) > 1 && len(total) > 0 {
		rows = append(rows, summaryRow{isSep: true}, summaryRow{name: "CITYWIDE", points: total})
	}

	pageNum := 0
	rowIdx := 0
	for pageNum == 0 || rowIdx < len(rows) {
		if pageNum > 0 {
			c.NextPage()
		}
		pageNum++

		dc := draw.New(c)
		area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)

		var yTop vg.Length
		rowsThisPage := maxRowsPerPage
		if pageNum == 1 {
			yTop = area.Max.Y
			fillText(area, title, vg.Points(14), area.Min.X, yTop-vg.Points(14), color.Black)
			fillText(area, "Source: "+d.Source+"   "+weekRange, vg.Points(10), area.Min.X, yTop-0.35*vg.Inch, color.Gray{Y: 100})

			y := yTop - 0.8*vg.Inch
			for _, kv := range summaryLines(d.Summary) {
				fillText(area, kv[0], vg.Points(10), area.Min.X, y, color.Gray{Y: 80})
				fillText(area, kv[1], vg.Points(10), area.Min.X+nameColWidth, y, color.Black)
				y -= kpiLineHeight
			}

			headerY := y - 0.2*vg.Inch
			fillText(area, "Borough", vg.Points(10), area.Min.X, headerY, color.Gray{Y: 80})
			fillText(area, "Latest", vg.Points(10), area.Min.X+nameColWidth, headerY, color.Gray{Y: 80})
			fillText(area, "Trend", vg.Points(10), area.Min.X+nameColWidth+valueColWidth, headerY, color.Gray{Y: 80})

			sepY := headerY - vg.Points(6)
			strokeHLine(area, area.Min.X, area.Min.X+usableW, sepY, color.Gray{Y: 180})

			yTop = sepY - vg.Points(4)
			rowsThisPage = int((yTop - area.Min.Y) / summaryRowHeight)
		} else {
			yTop = area.Max.Y - vg.Points(8)
			fillText(area, title+" (continued)", vg.Points(10), area.Min.X, yTop, color.Gray{Y: 100})
			yTop -= 0.25 * vg.Inch
		}

		drawn := 0
		for rowIdx < len(rows) && drawn < rowsThisPage {
			r := rows[rowIdx]
			rowIdx++
			if r.isSep {
				y := yTop - vg.Length(drawn)*summaryRowHeight - vg.Points(4)
				strokeHLine(area, area.Min.X, area.Min.X+usableW, y, color.Gray{Y: 180})
				continue
			}
			y := yTop - vg.Length(drawn)*summaryRowHeight - summaryRowHeight*0.65
			fillText(area, r.name, vg.Points(9), area.Min.X, y, color.Black)

			vals := alignValues(r.points, sortedWeeks)
			fillText(area, formatNum(latestValue(vals)), vg.Points(9), area.Min.X+nameColWidth, y, color.Black)

			sparkX := area.Min.X + nameColWidth + valueColWidth
			sparkY := yTop - vg.Length(drawn)*summaryRowHeight - summaryRowHeight + vg.Points(2)
			sparkArea := draw.Canvas{
				Canvas: area.Canvas,
				Rectangle: vg.Rectangle{
					Min: vg.Point{X: sparkX, Y: sparkY},
					Max: vg.Point{X: sparkX + sparkColWidth, Y: sparkY + summaryRowHeight - vg.Points(3)},
				},
			}
			drawSparkline(sparkArea, vals)

			drawn++
		}
	}
}

// summaryLines returns label/value pairs for the KPI block.
func summaryLines(s kpi.Summary) [][2]string {
	return [][2]string{
		{"Total revenue", "$" + formatNum(math.Round(s.TotalRevenue))},
		{"Total trips", formatNum(math.Round(s.TotalTrips))},
		{"Avg trip distance", formatFixed(s.AvgTripDistance, 1) + " mi"},
		{"Peak-hour trips", formatFixed(s.PeakHourTripPct, 1) + "%"},
		{"Minutes per mile", formatFixed(s.AvgMinutesPerMile, 1)},
		{"Revenue per mile", "$" + formatFixed(s.AvgRevenuePerMile, 2)},
		{"Night trips", formatFixed(s.NightTripPct, 1) + "%"},
		{"Avg fare", "$" + formatFixed(s.AvgFare, 2)},
	}
}

// drawSparkline draws vals as a thin line with the latest value marked. Fewer
// than two points draw nothing.
func drawSparkline(c draw.Canvas, vals []float64) {
	idx := make([]string, len(vals))
	pts := make([]dataPoint, 0, len(vals))
	for i, v := range vals {
		idx[i] = strconv.Itoa(i)
		pts = append(pts, dataPoint{week: idx[i], value: v})
	}
	xys := weekXYs(pts, idx)
	lo, hi, ok := valueRange(vals)
	if !ok || len(xys) < 2 {
		return
	}

	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = color.Transparent

	line, err := plotter.NewLine(xys)
	if err != nil {
		return
	}
	line.Color = chartBlue
	line.Width = vg.Points(1.5)
	last, err := plotter.NewScatter(xys[len(xys)-1:])
	if err != nil {
		return
	}
	last.Color = chartBlue
	last.Radius = vg.Points(1.5)
	last.Shape = draw.CircleGlyph{}
	p.Add(line, last)

	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	p.X.Min, p.X.Max = 0, float64(len(vals)-1)
	p.Y.Min, p.Y.Max = lo-pad, hi+pad
	p.Draw(c)
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	c.FillText(sty, vg.Point{X: x, Y: y}, txt)
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}
