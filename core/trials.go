package core

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/epidemic-simulator/internal/logging"
	"github.com/signalsfoundry/epidemic-simulator/kb"
	"github.com/signalsfoundry/epidemic-simulator/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AverageDuration runs numTrials trials from the same initial population
// with seeds startSeed, startSeed+1, ... in that order and returns the mean
// number of days simulated. numTrials must be positive; anything else is a
// programming error and panics. Seeds never wrap: a progression that would
// pass math.MaxInt64 is rejected with ErrSeedOverflow.
func AverageDuration(ctx context.Context, initial model.Population, params Params, startSeed int64, numTrials int, opts ...RunOption) (float64, error) {
	if numTrials <= 0 {
		panic(fmt.Sprintf("core: AverageDuration requires numTrials > 0, got %d", numTrials))
	}
	if err := params.Validate(); err != nil {
		return 0, err
	}
	if startSeed > math.MaxInt64-int64(numTrials-1) {
		return 0, fmt.Errorf("%w: start seed %d with %d trials", ErrSeedOverflow, startSeed, numTrials)
	}
	o := buildOptions(opts)

	ledger := o.ledger
	if ledger == nil {
		ledger = kb.NewTrialLedger()
	}
	if ledger.Len() != 0 {
		return 0, fmt.Errorf("trial ledger already holds %d trials", ledger.Len())
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "simulation.average", trace.WithAttributes(
		attribute.Int64("simulation.start_seed", startSeed),
		attribute.Int("simulation.trials", numTrials),
	))
	defer span.End()

	for i := 0; i < numTrials; i++ {
		seed := startSeed + int64(i)
		res, err := Run(ctx, initial, params, seed, opts...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, fmt.Errorf("trial %d (seed %d): %w", i, seed, err)
		}
		if err := ledger.Record(kb.TrialRecord{
			Index:      i,
			Seed:       seed,
			Days:       res.Days,
			Vaccinated: res.Vaccinated,
		}); err != nil {
			return 0, fmt.Errorf("record trial %d: %w", i, err)
		}
	}

	avg, err := ledger.MeanDays()
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Float64("simulation.average_days", avg))
	o.logger(ctx).Info(ctx, "trials complete",
		logging.Int("trials", numTrials),
		logging.Int64("start_seed", startSeed),
		logging.Float64("average_days", avg),
	)
	if o.metrics != nil {
		o.metrics.SetAverageDays(avg)
	}
	span.SetStatus(codes.Ok, "")
	return avg, nil
}
