package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binaryBuild(registry *experiment.Registry) Build {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		exp := experiment.New(experiment.Config{
			Preset:    "binary",
			Dt:        params["dt"],
			Softening: params["softening"],
			Duration:  2,
		}, registry, nil)
		return exp, exp.Setup()
	}
}

func TestNewGridSearch_Validates(t *testing.T) {
	_, err := NewGridSearch(nil, nil)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)

	_, err = NewGridSearch([]string{"dt"}, [][]float64{{}})
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)

	_, err = NewGridSearch([]string{"dt", "softening"}, [][]float64{{0.1}})
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestSearch_SmallerStepDriftsLess(t *testing.T) {
	g, err := DtSoftening([]float64{0.05, 0.005}, nil)
	require.NoError(t, err)

	res, err := g.Search(context.Background(), binaryBuild(experiment.NewRegistry()), "energy_drift")
	require.NoError(t, err)

	require.Len(t, res.Trials, 2)
	assert.Equal(t, 0.005, res.Best["dt"])
	assert.Equal(t, 0.0, res.Best["softening"])
	assert.Less(t, res.Value, res.Trials[0].Value)

	within := res.Within(1)
	require.Len(t, within, 2)
	assert.Equal(t, 0.05, within[0].Params["dt"])
}

func TestSearch_RecordsFailures(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{0.01, 0.02}})
	require.NoError(t, err)

	boom := errors.New("boom")
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		return nil, boom
	}

	res, err := g.Search(context.Background(), build, "energy_drift")
	assert.ErrorIs(t, err, ErrNoCandidate)
	require.Len(t, res.Trials, 2)
	for _, tr := range res.Trials {
		assert.ErrorIs(t, tr.Err, boom)
	}
}

func TestSearch_UnknownMetric(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{0.01}})
	require.NoError(t, err)

	res, err := g.Search(context.Background(), binaryBuild(experiment.NewRegistry()), "entropy")
	assert.ErrorIs(t, err, ErrNoCandidate)
	require.Len(t, res.Trials, 1)
	assert.Error(t, res.Trials[0].Err)
}

func TestSearch_Cancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"dt"}, [][]float64{{0.01}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Search(ctx, binaryBuild(experiment.NewRegistry()), "energy_drift")
	assert.ErrorIs(t, err, context.Canceled)
}
