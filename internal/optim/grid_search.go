// Package optim searches run parameters for the combination that minimizes
// a metric, such as the largest time step that keeps energy drift low.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
)

// ErrNoCandidate is returned when no combination produced a finite metric.
var ErrNoCandidate = errors.New("optim: no successful candidate")

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// Build creates a ready-to-run experiment for one parameter combination.
type Build func(params map[string]float64) (*experiment.Experiment, error)

// Trial is one evaluated combination.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type SearchResult struct {
	Best   map[string]float64
	Value  float64
	Trials []Trial
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid of %d names and %d ranges: %w", len(params), len(ranges), dynamo.ErrParameterBounds)
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("empty range for %s: %w", params[i], dynamo.ErrParameterBounds)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// DtSoftening is the grid used by the tune command.
func DtSoftening(dts, softenings []float64) (*GridSearch, error) {
	if len(softenings) == 0 {
		softenings = []float64{0}
	}
	return NewGridSearch([]string{"dt", "softening"}, [][]float64{dts, softenings})
}

// Search runs every combination and returns the one with the smallest
// metricName. Failed runs and non-finite values are recorded in the trials
// and skipped; cancellation aborts the search.
func (g *GridSearch) Search(ctx context.Context, build Build, metricName string) (*SearchResult, error) {
	res := &SearchResult{Value: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, res); err != nil {
		return nil, err
	}
	if res.Best == nil {
		return res, ErrNoCandidate
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Build,
	metricName string,
	res *SearchResult,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		trial := Trial{Params: current, Value: math.NaN()}
		defer func() { res.Trials = append(res.Trials, trial) }()

		exp, err := build(current)
		if err != nil {
			trial.Err = err
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			trial.Err = err
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			trial.Err = fmt.Errorf("metric %q not observed", metricName)
			return nil
		}
		trial.Value = val
		if !math.IsNaN(val) && !math.IsInf(val, 0) && val < res.Value {
			res.Value = val
			res.Best = current
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, res); err != nil {
			return err
		}
	}
	return nil
}

// Within returns the trials whose value is at most tolerance, largest dt
// first.
func (r *SearchResult) Within(tolerance float64) []Trial {
	var out []Trial
	for _, t := range r.Trials {
		if t.Err == nil && t.Value <= tolerance {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Params["dt"] > out[j].Params["dt"]
	})
	return out
}
