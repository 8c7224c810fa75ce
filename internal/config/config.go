// Package config loads simulator settings from the environment and the
// command line.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/signalsfoundry/epidemic-simulator/core"
	"github.com/signalsfoundry/epidemic-simulator/model"
)

// Task types.
const (
	TaskSingle  = "single"
	TaskAverage = "average"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// PopulationErrorMessage is shown when the city cannot be parsed.
const PopulationErrorMessage = "people in the city must be susceptible ('S')," +
	" recovered ('R'), vaccinated ('V'), or infected ('Ix', where x is an integer)"

// Config holds simulator command configuration.
type Config struct {
	City                 string  `env:"EPIDEMIC_CITY"`
	DaysContagious       int     `env:"EPIDEMIC_DAYS_CONTAGIOUS"       envDefault:"2"`
	RandomSeed           *int64  `env:"EPIDEMIC_RANDOM_SEED"`
	VaccineEffectiveness float64 `env:"EPIDEMIC_VACCINE_EFFECTIVENESS" envDefault:"0"`
	NumTrials            int     `env:"EPIDEMIC_NUM_TRIALS"            envDefault:"1"`
	TaskType             string  `env:"EPIDEMIC_TASK_TYPE"             envDefault:"single"`
	Debug                bool    `env:"EPIDEMIC_DEBUG"`
	MetricsFile          string  `env:"EPIDEMIC_METRICS_FILE"`
	Format               string  `env:"EPIDEMIC_OUTPUT_FORMAT"         envDefault:"text"`
}

// ParseConfig reads the environment, then lets flags and the positional
// city argument override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.DaysContagious, "days-contagious", cfg.DaysContagious, "number of days a person stays infected")
	setSeed := func(v string) error {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q", v)
		}
		cfg.RandomSeed = &seed
		return nil
	}
	fs.Func("random-seed", "seed for the first trial (default: drawn from crypto/rand)", setSeed)
	fs.Func("random_seed", "alias for -random-seed", setSeed)
	fs.Float64Var(&cfg.VaccineEffectiveness, "vaccine-effectiveness", cfg.VaccineEffectiveness, "chance in [0,1] that a susceptible person is vaccinated")
	fs.IntVar(&cfg.NumTrials, "num-trials", cfg.NumTrials, "number of trials for the average task")
	fs.StringVar(&cfg.TaskType, "task-type", cfg.TaskType, "task to run: single or average")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log every simulated day")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics to this file after the run")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format: text or json")

	// flag stops at the first positional argument; keep parsing after it
	// so flags may follow CITY.
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return Config{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	switch len(positional) {
	case 0:
	case 1:
		cfg.City = positional[0]
	default:
		return Config{}, fmt.Errorf("expected a single CITY argument, got %d", len(positional))
	}
	cfg.TaskType = strings.ToLower(cfg.TaskType)
	cfg.Format = strings.ToLower(cfg.Format)
	return cfg, nil
}

// Validate checks everything except the city, which Population handles.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.City) == "" {
		errs = append(errs, errors.New("CITY is required"))
	}
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.NumTrials <= 0 {
		errs = append(errs, fmt.Errorf("num trials must be positive: got %d", c.NumTrials))
	}
	switch c.TaskType {
	case TaskSingle, TaskAverage:
	default:
		errs = append(errs, fmt.Errorf("task type must be %q or %q: got %q", TaskSingle, TaskAverage, c.TaskType))
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("format must be %q or %q: got %q", FormatText, FormatJSON, c.Format))
	}
	return errors.Join(errs...)
}

// Params returns the simulation constants.
func (c Config) Params() core.Params {
	return core.Params{
		DaysContagious:       c.DaysContagious,
		VaccineEffectiveness: c.VaccineEffectiveness,
	}
}

// Population decodes the city.
func (c Config) Population() (model.Population, error) {
	return model.ParsePopulation(c.City)
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
