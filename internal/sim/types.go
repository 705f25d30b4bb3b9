package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
)

// Params are the global constants of a simulation.
type Params struct {
	G           float64 `json:"g" yaml:"g"`
	Dt          float64 `json:"dt" yaml:"dt"`
	Restitution float64 `json:"restitution" yaml:"restitution"`
	Softening   float64 `json:"softening" yaml:"softening"`
	Collisions  bool    `json:"collisions" yaml:"collisions"`
}

func (p Params) Validate() error {
	if !(p.Dt > 0) || math.IsInf(p.Dt, 0) {
		return fmt.Errorf("dt %g: %w", p.Dt, dynamo.ErrNonPositiveStep)
	}
	if p.Restitution < 0 || p.Restitution > 1 || math.IsNaN(p.Restitution) {
		return fmt.Errorf("restitution %g not in [0,1]: %w", p.Restitution, dynamo.ErrParameterBounds)
	}
	if p.Softening < 0 || math.IsNaN(p.Softening) {
		return fmt.Errorf("softening %g: %w", p.Softening, dynamo.ErrParameterBounds)
	}
	if math.IsNaN(p.G) || math.IsInf(p.G, 0) {
		return fmt.Errorf("gravitational constant %g: %w", p.G, dynamo.ErrParameterBounds)
	}
	return nil
}

// Setup is a named initial configuration: the ensemble snapshot and the
// constants it was built for.
type Setup struct {
	Name      string
	Particles []physics.Particle
	Params    Params
}

// Phase is the orchestrator state.
type Phase int

const (
	Paused Phase = iota
	Running
)

func (p Phase) String() string {
	switch p {
	case Paused:
		return "paused"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Integrator advances every particle of an ensemble by one tick.
type Integrator interface {
	Name() string
	Integrate(ps []physics.Particle, dt float64)
}

// Observer is notified after every completed tick.
type Observer interface {
	OnStep(f metrics.Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f metrics.Frame)

func (fn ObserverFunc) OnStep(f metrics.Frame) { fn(f) }

// RunOptions control a batch run.
type RunOptions struct {
	// SampleEvery records a diagnostics sample every n ticks. Zero means 1.
	SampleEvery int
	// ValidateState stops the run when a position becomes NaN or Inf.
	ValidateState bool
	// Trajectory records particle positions alongside every sample.
	Trajectory bool
}

// Snapshot is the set of particle positions at one sampled instant.
type Snapshot struct {
	Time      float64
	Positions []dynamo.Vec2
}

type Result struct {
	Samples     []metrics.Sample
	Trajectory  []Snapshot
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}

// Final returns the last diagnostics sample, or the zero Sample.
func (r *Result) Final() metrics.Sample {
	if len(r.Samples) == 0 {
		return metrics.Sample{}
	}
	return r.Samples[len(r.Samples)-1]
}

func positions(ps []physics.Particle) []dynamo.Vec2 {
	out := make([]dynamo.Vec2, len(ps))
	for i := range ps {
		out[i] = ps[i].Position
	}
	return out
}

func validState(ps []physics.Particle) bool {
	for i := range ps {
		if !ps[i].Position.IsValid() || !ps[i].PrevPosition.IsValid() {
			return false
		}
	}
	return true
}
