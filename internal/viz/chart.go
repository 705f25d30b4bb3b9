package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/metrics"
)

const (
	DefaultChartWidth  = 80
	DefaultChartHeight = 10
)

// Series extracts one diagnostic from each sample.
type Series func(metrics.Sample) float64

var (
	KineticSeries   Series = func(s metrics.Sample) float64 { return s.Kinetic }
	PotentialSeries Series = func(s metrics.Sample) float64 { return s.Potential }
	TotalSeries     Series = func(s metrics.Sample) float64 { return s.Total }
	AngularSeries   Series = func(s metrics.Sample) float64 { return s.AngularMomentum }
	MomentumSeries  Series = func(s metrics.Sample) float64 { return s.Momentum.Len() }
)

// SeriesByName maps CLI names to series.
var SeriesByName = map[string]Series{
	"kinetic":   KineticSeries,
	"potential": PotentialSeries,
	"total":     TotalSeries,
	"angular":   AngularSeries,
	"momentum":  MomentumSeries,
}

// Values applies series to samples, skipping non-finite values.
func Values(samples []metrics.Sample, series Series) []float64 {
	out := make([]float64, 0, len(samples))
	for _, smp := range samples {
		v := series(smp)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Chart plots values with asciigraph. It returns "" when there is nothing
// to plot.
func Chart(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width <= 0 {
		width = DefaultChartWidth
	}
	if height <= 0 {
		height = DefaultChartHeight
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}

// EnergyChart plots the relative total energy error of the samples.
func EnergyChart(samples []metrics.Sample, width, height int) string {
	if len(samples) == 0 {
		return ""
	}
	e0 := samples[0].Total
	scale := math.Abs(e0)
	if scale == 0 {
		scale = 1
	}
	rel := Values(samples, func(s metrics.Sample) float64 { return (s.Total - e0) / scale })
	return Chart(rel, "relative energy error", width, height)
}
