package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalsfoundry/epidemic-simulator/internal/logging"
	"github.com/signalsfoundry/epidemic-simulator/kb"
	"github.com/signalsfoundry/epidemic-simulator/model"
	"github.com/signalsfoundry/epidemic-simulator/timectrl"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/signalsfoundry/epidemic-simulator/core"

var (
	// ErrInvalidDaysContagious is returned when the contagious period is not positive.
	ErrInvalidDaysContagious = errors.New("days contagious must be positive")
	// ErrInvalidEffectiveness is returned when vaccine effectiveness is outside [0,1].
	ErrInvalidEffectiveness = errors.New("vaccine effectiveness must be within [0,1]")
	// ErrEmptyPopulation is returned when the city has nobody in it.
	ErrEmptyPopulation = errors.New("population is empty")
	// ErrSeedOverflow is returned when a run of trial seeds would pass math.MaxInt64.
	ErrSeedOverflow = errors.New("trial seeds overflow int64")
)

// Params are the simulation-wide constants of a trial.
type Params struct {
	// DaysContagious is how many days an infected person stays infectious.
	DaysContagious int
	// VaccineEffectiveness is the chance a susceptible person ends up vaccinated.
	VaccineEffectiveness float64
}

// Validate rejects parameters the model does not define.
func (p Params) Validate() error {
	if p.DaysContagious <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDaysContagious, p.DaysContagious)
	}
	// Written so that NaN fails too.
	if !(p.VaccineEffectiveness >= 0 && p.VaccineEffectiveness <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidEffectiveness, p.VaccineEffectiveness)
	}
	return nil
}

// Result is the outcome of a single trial.
type Result struct {
	Final        model.Population
	Days         int
	Seed         int64
	Vaccinated   int
	PeakInfected int
}

// MetricsRecorder receives trial outcomes. observability.SimulationCollector
// implements it.
type MetricsRecorder interface {
	ObserveTrial(days, vaccinated, peakInfected int)
	SetAverageDays(avg float64)
}

type runOptions struct {
	log        logging.Logger
	metrics    MetricsRecorder
	listeners  []timectrl.Listener
	dayLogging bool
	ledger     *kb.TrialLedger
}

// RunOption customises Run and AverageDuration.
type RunOption func(*runOptions)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) RunOption {
	return func(o *runOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) RunOption {
	return func(o *runOptions) {
		o.metrics = m
	}
}

// WithDayListener registers a callback invoked after every simulated day.
func WithDayListener(fn timectrl.Listener) RunOption {
	return func(o *runOptions) {
		if fn != nil {
			o.listeners = append(o.listeners, fn)
		}
	}
}

// WithDayLogging logs every day's population at debug level when enabled.
func WithDayLogging(enabled bool) RunOption {
	return func(o *runOptions) {
		o.dayLogging = enabled
	}
}

// WithTrialLedger makes AverageDuration record every trial into ledger,
// which must be empty. Run ignores it.
func WithTrialLedger(ledger *kb.TrialLedger) RunOption {
	return func(o *runOptions) {
		o.ledger = ledger
	}
}

func buildOptions(opts []RunOption) runOptions {
	var o runOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// logger prefers an explicit WithLogger, then one stored on ctx.
func (o runOptions) logger(ctx context.Context) logging.Logger {
	if o.log != nil {
		return o.log
	}
	if l := logging.LoggerFromContext(ctx); l != nil {
		return l
	}
	return logging.Noop()
}

// Run simulates one trial: it vaccinates the initial population with a
// random source seeded from seed, then advances whole days until nobody is
// infected or MaxDays days have passed. Reaching the bound is not an error.
// The initial population is never modified.
func Run(ctx context.Context, initial model.Population, params Params, seed int64, opts ...RunOption) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}
	if len(initial) == 0 {
		return Result{}, ErrEmptyPopulation
	}
	o := buildOptions(opts)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "simulation.run", trace.WithAttributes(
		attribute.Int64("simulation.seed", seed),
		attribute.Int("simulation.population", len(initial)),
		attribute.Int("simulation.days_contagious", params.DaysContagious),
		attribute.Float64("simulation.vaccine_effectiveness", params.VaccineEffectiveness),
	))
	defer span.End()

	log := o.logger(ctx).With(logging.Int64("seed", seed))

	pop := Vaccinate(initial, params.VaccineEffectiveness, NewRand(seed))
	vaccinated := countNewlyVaccinated(initial, pop)

	clock := timectrl.NewDayClock(MaxDays(initial, params))
	for _, fn := range o.listeners {
		clock.AddListener(fn)
	}
	if o.dayLogging {
		clock.AddListener(func(day int, p model.Population) {
			log.Debug(ctx, "day simulated",
				logging.Int("day", day),
				logging.String("city", p.String()),
				logging.Int("infected", CountInfected(p)),
			)
		})
	}

	peak := CountInfected(pop)
	log.Debug(ctx, "trial starting",
		logging.Int("vaccinated", vaccinated),
		logging.Int("infected", peak),
		logging.Int("max_days", clock.Limit()),
	)

	for !clock.Exhausted() {
		if CountInfected(pop) == 0 {
			break
		}
		pop = SimulateOneDay(pop, params.DaysContagious)
		clock.Advance(pop)
		if n := CountInfected(pop); n > peak {
			peak = n
		}
	}

	res := Result{
		Final:        pop,
		Days:         clock.Day(),
		Seed:         seed,
		Vaccinated:   vaccinated,
		PeakInfected: peak,
	}

	counts := pop.Counts()
	remaining := counts[model.Infected]
	span.SetAttributes(
		attribute.Int("simulation.days_elapsed", res.Days),
		attribute.Int("simulation.vaccinated", vaccinated),
		attribute.Int("simulation.peak_infected", peak),
		attribute.Int("simulation.remaining_infected", remaining),
		attribute.Int("simulation.final_susceptible", counts[model.Susceptible]),
		attribute.Int("simulation.final_recovered", counts[model.Recovered]),
		attribute.Int("simulation.final_vaccinated", counts[model.Vaccinated]),
	)
	if remaining > 0 {
		span.AddEvent("day bound reached")
		log.Warn(ctx, "day bound reached with infections remaining",
			logging.Int("days", res.Days),
			logging.Int("infected", remaining),
		)
	}
	log.Debug(ctx, "trial finished", logging.Int("days", res.Days))

	if o.metrics != nil {
		o.metrics.ObserveTrial(res.Days, vaccinated, peak)
	}
	span.SetStatus(codes.Ok, "")
	return res, nil
}
