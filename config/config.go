package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/zalepa/fleetkpi/kpi"
)

// Config holds the settings shared by all subcommands.
type Config struct {
	Address          string        `env:"ADDRESS" envDefault:":3000" validate:"required"`
	DataDir          string        `env:"DATA_DIR" envDefault:"data" validate:"required"`
	ConsolidatedFile string        `env:"KPI_DASHBOARD_FILE" envDefault:"gold_kpi_dashboard.json" validate:"required"`
	WeeklyFile       string        `env:"KPI_WEEKLY_FILE" envDefault:"gold_kpi_weekly.json" validate:"required"`
	ColumnarMatch    string        `env:"KPI_COLUMNAR_MATCH" envDefault:"gold" validate:"required"`
	ReadTimeout      time.Duration `env:"KPI_READ_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn warning error"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
	LogFile          string        `env:"LOG_FILE"`
	LogCaller        bool          `env:"LOG_CALLER" envDefault:"false"`
}

// Load reads the optional env files (".env" when none are given), then the
// environment, and validates the result. Variables already set in the
// environment win over the files.
func Load(files ...string) (*Config, error) {
	explicit := len(files) > 0
	if !explicit {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// KPIOptions returns the aggregator options for dir, or for DataDir when dir
// is empty.
func (c *Config) KPIOptions(dir string) kpi.Options {
	if dir == "" {
		dir = c.DataDir
	}
	return kpi.Options{
		Dir:              dir,
		ConsolidatedFile: c.ConsolidatedFile,
		WeeklyFile:       c.WeeklyFile,
		ColumnarMatch:    c.ColumnarMatch,
	}
}
