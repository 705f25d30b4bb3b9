package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
)

type Registry struct {
	presets     map[string]*config.Preset
	integrators map[string]func() sim.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		presets:     make(map[string]*config.Preset),
		integrators: make(map[string]func() sim.Integrator),
	}

	for name, p := range config.Presets {
		r.presets[name] = p
	}
	r.integrators["verlet"] = func() sim.Integrator { return integrators.NewVerlet() }

	return r
}

// RegisterPreset adds or replaces a preset.
func (r *Registry) RegisterPreset(p *config.Preset) {
	r.presets[p.Name] = p
}

func (r *Registry) GetPreset(name string) (*config.Preset, error) {
	p, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownPreset)
	}
	return p, nil
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownIntegrator)
	}
	return fn(), nil
}

func (r *Registry) ListPresets() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the metrics observed on every run. The stability
// bound is ten times the initial extent of the ensemble.
func (r *Registry) DefaultMetrics(setup sim.Setup) []metrics.Metric {
	cm := metrics.CenterOfMass(setup.Particles)
	extent := 0.0
	for i := range setup.Particles {
		extent = math.Max(extent, dynamo.Distance(cm, setup.Particles[i].Position))
	}
	if extent == 0 {
		extent = 1
	}

	return []metrics.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
		metrics.NewAngularMomentumDrift(),
		metrics.NewStability(10 * extent),
		metrics.NewClosestApproach(),
	}
}
