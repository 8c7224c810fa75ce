package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalsfoundry/epidemic-simulator/core"
	"github.com/signalsfoundry/epidemic-simulator/internal/config"
	"github.com/signalsfoundry/epidemic-simulator/internal/logging"
	"github.com/signalsfoundry/epidemic-simulator/internal/observability"
	"github.com/signalsfoundry/epidemic-simulator/internal/random"
	"github.com/signalsfoundry/epidemic-simulator/kb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		stop()
		config.Exitf("Error: %v", err)
	}
}

type singleOutput struct {
	Task       string   `json:"task"`
	Seed       int64    `json:"seed"`
	FinalCity  []string `json:"final_city"`
	Days       int      `json:"days_simulated"`
	Vaccinated int      `json:"vaccinated"`
}

type averageOutput struct {
	Task        string        `json:"task"`
	StartSeed   int64         `json:"start_seed"`
	Trials      int           `json:"trials"`
	AverageDays float64       `json:"average_days"`
	Runs        []trialOutput `json:"runs"`
}

type trialOutput struct {
	Seed       int64 `json:"seed"`
	Days       int   `json:"days_simulated"`
	Vaccinated int   `json:"vaccinated"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: simulator [flags] CITY")
		fmt.Fprintln(fs.Output(), "CITY is a comma-separated list of S, R, V or I<days>.")
		fs.PrintDefaults()
	}

	cfg, err := config.ParseConfig(fs, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	city, err := cfg.Population()
	if err != nil {
		return fmt.Errorf("%s: %w", config.PopulationErrorMessage, err)
	}

	logCfg, err := logging.ConfigFromEnv()
	if err != nil {
		return err
	}
	if cfg.Debug {
		logCfg.Level = "debug"
	}
	logCfg.Output = stderr
	ctx, log := logging.WithRunLogger(ctx, logging.New(logCfg))
	ctx = logging.ContextWithLogger(ctx, log)

	tracingCfg, err := observability.TracingConfigFromEnv()
	if err != nil {
		return err
	}
	tracingCfg.Writer = stderr
	shutdown, err := observability.InitTracing(ctx, tracingCfg, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	collector, err := observability.NewSimulationCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	seed, err := resolveSeed(cfg.RandomSeed)
	if err != nil {
		return err
	}
	if cfg.RandomSeed == nil {
		log.Info(ctx, "no seed given; drew one", logging.Int64("seed", seed))
	}

	opts := []core.RunOption{
		core.WithMetricsRecorder(collector),
		core.WithDayLogging(cfg.Debug),
	}

	switch cfg.TaskType {
	case config.TaskSingle:
		if cfg.Format == config.FormatText {
			fmt.Fprintln(stdout, "Running one simulation...")
		}
		res, err := core.Run(ctx, city, cfg.Params(), seed, opts...)
		if err != nil {
			return err
		}
		if cfg.Format == config.FormatJSON {
			err = writeJSON(stdout, singleOutput{
				Task:       cfg.TaskType,
				Seed:       seed,
				FinalCity:  res.Final.Strings(),
				Days:       res.Days,
				Vaccinated: res.Vaccinated,
			})
			if err != nil {
				return err
			}
		} else {
			fmt.Fprintln(stdout, "Final city:", res.Final.String())
			fmt.Fprintln(stdout, "Days simulated:", res.Days)
		}
	case config.TaskAverage:
		if cfg.Format == config.FormatText {
			fmt.Fprintln(stdout, "Running multiple trials...")
		}
		ledger := kb.NewTrialLedger()
		if cfg.Debug {
			unsubscribe := ledger.Subscribe(func(e kb.Event) {
				log.Debug(ctx, "trial recorded",
					logging.Int("trial", e.Trial.Index),
					logging.Int64("seed", e.Trial.Seed),
					logging.Int("days", e.Trial.Days),
				)
			})
			defer unsubscribe()
		}
		avg, err := core.AverageDuration(ctx, city, cfg.Params(), seed, cfg.NumTrials,
			append(opts, core.WithTrialLedger(ledger))...)
		if err != nil {
			return err
		}
		if cfg.Format == config.FormatJSON {
			out := averageOutput{
				Task:        cfg.TaskType,
				StartSeed:   seed,
				Trials:      cfg.NumTrials,
				AverageDays: avg,
			}
			for _, tr := range ledger.Trials() {
				out.Runs = append(out.Runs, trialOutput{Seed: tr.Seed, Days: tr.Days, Vaccinated: tr.Vaccinated})
			}
			err = writeJSON(stdout, out)
			if err != nil {
				return err
			}
		} else {
			fmt.Fprintf(stdout, "Over %d trial(s), on average, it took %3.1f days for the number of infections to reach zero\n",
				cfg.NumTrials, avg)
		}
	}

	if cfg.MetricsFile != "" {
		if err := writeMetrics(cfg.MetricsFile, collector); err != nil {
			return err
		}
		log.Debug(ctx, "wrote metrics", logging.String("path", cfg.MetricsFile))
	}
	return nil
}

func resolveSeed(explicit *int64) (int64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return random.NewSeed()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeMetrics(path string, collector *observability.SimulationCollector) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file %q: %w", path, err)
	}
	if err := collector.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
