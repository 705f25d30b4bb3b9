package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/gravsim/internal/dynamo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SweepResult summarizes one run of a time step sweep.
type SweepResult struct {
	Dt                   float64
	StepsTaken           int
	EnergyDrift          float64
	MomentumDrift        float64
	AngularMomentumDrift float64
	ClosestApproach      float64
	Err                  error
}

// Sweep runs base once per time step, at most workers at a time, each on
// its own copy of the preset ensemble. A run that diverges is reported in
// its SweepResult; setup failures and cancellation abort the sweep.
// Results are in the order of dts.
func Sweep(ctx context.Context, registry *Registry, base Config, dts []float64, workers int, logger *zap.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	for _, dt := range dts {
		if !(dt > 0) {
			return nil, fmt.Errorf("sweep dt %g: %w", dt, dynamo.ErrNonPositiveStep)
		}
	}

	results := make([]SweepResult, len(dts))
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	logger.Debug("sweep started", zap.String("preset", base.Preset), zap.Int("runs", len(dts)), zap.Int("workers", workers))

	for i, dt := range dts {
		i, dt := i, dt
		g.Go(func() error {
			cfg := base
			cfg.Dt = dt
			cfg.Trajectory = false

			exp := New(cfg, registry, logger.With(zap.Float64("dt", dt)))
			if err := exp.Setup(); err != nil {
				return fmt.Errorf("dt %g: %w", dt, err)
			}

			res, err := exp.Run(groupCtx)
			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return err
			}

			out := SweepResult{Dt: dt, Err: err}
			if res != nil {
				out.StepsTaken = res.StepsTaken
				out.EnergyDrift = res.EnergyDrift
				out.MomentumDrift = res.Metrics["momentum_drift"]
				out.AngularMomentumDrift = res.Metrics["angular_momentum_drift"]
				out.ClosestApproach = res.Metrics["closest_approach"]
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
