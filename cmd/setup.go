package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/zalepa/fleetkpi/config"
	"github.com/zalepa/fleetkpi/kpi"
	"github.com/zalepa/fleetkpi/logger"
)

// setup loads configuration (plus envFile when set) and builds the logger.
// Configuration errors are fatal.
func setup(envFile string, out io.Writer) (*config.Config, *logrus.Logger) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Caller: cfg.LogCaller,
		Output: out,
	})
	return cfg, log
}

// loadDashboard runs one aggregation bounded by the configured read timeout.
func loadDashboard(cfg *config.Config, dir string, log logrus.FieldLogger) kpi.Dashboard {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ReadTimeout)
	defer cancel()
	return kpi.NewAggregator(cfg.KPIOptions(dir), log).Aggregate(ctx)
}
