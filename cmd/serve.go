package cmd

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"html/template"
	"math"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/zalepa/fleetkpi/kpi"
	"gonum.org/v1/plot/vg"
)

//go:embed dashboard.html
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

type seriesResponse struct {
	Title  string       `json:"title"`
	Weeks  []string     `json:"weeks"`
	Series []seriesData `json:"series"`
}

type seriesData struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

type dashboardView struct {
	Source  string
	Summary [][2]string
	Weeks   []string
	Rows    []dashboardRow
}

type dashboardRow struct {
	Borough string
	Values  []string
	Latest  string
	Trend   string
}

// Serve implements the "serve" subcommand.
func Serve(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dir := fs.String("dir", "", "data directory (default $DATA_DIR)")
	addr := fs.String("addr", "", "listen address (default $ADDRESS)")
	envFile := fs.String("env", "", "env file to load before the environment")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fleetkpi serve [dir] [--addr :3000]\n\nServe the KPI dashboard and JSON API.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*dir = fs.Arg(0)
	}

	cfg, log := setup(*envFile, os.Stdout)
	if *addr == "" {
		*addr = cfg.Address
	}

	agg := kpi.NewAggregator(cfg.KPIOptions(*dir), log)
	app := newServer(agg, cfg.ReadTimeout, log)

	log.WithFields(logrus.Fields{
		"address": *addr,
		"dir":     cfg.KPIOptions(*dir).Dir,
	}).Info("starting server")
	if err := app.Listen(*addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// newServer builds the HTTP app. Every request re-reads the sources, so files
// dropped into the data directory show up without a restart.
func newServer(agg *kpi.Aggregator, timeout time.Duration, log logrus.FieldLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "fleetkpi",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.WithFields(logrus.Fields{
				"requestId": requestid.FromContext(c),
				"path":      c.Path(),
				"code":      code,
			}).WithError(err).Error("request error")
			return c.Status(code).JSON(fiber.Map{
				"code":    code,
				"message": err.Error(),
				"status":  "error",
			})
		},
	})

	app.Use(requestid.New())
	app.Use(recover.New())

	load := func(c fiber.Ctx) kpi.Dashboard {
		ctx, cancel := context.WithTimeout(c.Context(), timeout)
		defer cancel()
		return agg.Aggregate(ctx)
	}

	app.Get("/", func(c fiber.Ctx) error {
		var buf bytes.Buffer
		if err := dashboardTmpl.Execute(&buf, buildDashboardView(load(c))); err != nil {
			return err
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	})

	app.Get("/api/data", func(c fiber.Ctx) error {
		return c.JSON(load(c))
	})

	app.Get("/api/series", func(c fiber.Ctx) error {
		d := load(c)
		series, weeks := boroughSeries(d.WeeklyByBorough)
		if b := c.Query("borough"); b != "" {
			pts, ok := series[b]
			if !ok {
				return fiber.NewError(fiber.StatusNotFound, "unknown borough "+b)
			}
			series = map[string][]dataPoint{b: pts}
		}
		return c.JSON(buildSeriesResponse("Weekly Trip Volume", series, sortWeeks(weeks)))
	})

	app.Get("/chart.png", func(c fiber.Ctx) error {
		d := load(c)
		series, weeks := boroughSeries(d.WeeklyByBorough)
		p, err := volumeChart("Weekly Trip Volume by Borough", series, sortWeeks(weeks))
		if err != nil {
			return err
		}
		img, err := renderPNG(p, 9*vg.Inch, 4.5*vg.Inch)
		if err != nil {
			return err
		}
		c.Type("png")
		return c.Send(img)
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return app
}

func buildSeriesResponse(title string, series map[string][]dataPoint, sortedWeeks []string) seriesResponse {
	resp := seriesResponse{
		Title:  title,
		Weeks:  sortedWeeks,
		Series: []seriesData{},
	}
	for _, name := range sortedEntityNames(series) {
		aligned := alignValues(series[name], sortedWeeks)
		values := make([]*float64, len(aligned))
		for i, v := range aligned {
			if !math.IsNaN(v) {
				f := v
				values[i] = &f
			}
		}
		resp.Series = append(resp.Series, seriesData{Name: name, Values: values})
	}
	return resp
}

func buildDashboardView(d kpi.Dashboard) dashboardView {
	series, weeks := boroughSeries(d.WeeklyByBorough)
	sortedWeeks := sortWeeks(weeks)
	view := dashboardView{
		Source:  d.Source,
		Summary: summaryLines(d.Summary),
		Weeks:   sortedWeeks,
	}
	for _, name := range sortedEntityNames(series) {
		vals := alignValues(series[name], sortedWeeks)
		row := dashboardRow{
			Borough: name,
			Latest:  formatNum(latestValue(vals)),
			Trend:   sparkline(vals),
		}
		for _, v := range vals {
			row.Values = append(row.Values, formatNum(v))
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
