package cmd

import (
	"flag"
	"fmt"
	"os"
)

// Summary implements the "summary" subcommand: aggregate the data directory
// and print the headline KPIs and a per-borough trend table.
func Summary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	dir := fs.String("dir", "", "data directory (default $DATA_DIR)")
	envFile := fs.String("env", "", "env file to load before the environment")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fleetkpi summary [dir] [flags]\n\nPrint the KPI summary for a data directory.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*dir = fs.Arg(0)
	}

	cfg, log := setup(*envFile, os.Stderr)
	d := loadDashboard(cfg, *dir, log)

	printSummary(os.Stdout, d)
	series, weeks := boroughSeries(d.WeeklyByBorough)
	renderTable(os.Stdout, "Weekly Trip Volume by Borough", series, sortWeeks(weeks))
}
