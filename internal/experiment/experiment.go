package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
	"go.uber.org/zap"
)

type Config struct {
	Preset        string
	Integrator    string
	Dt            float64 // zero keeps the preset's
	Duration      float64 // zero keeps the preset's
	Softening     float64 // zero keeps the preset's
	SampleEvery   int
	Seed          int64
	ValidateState bool
	Trajectory    bool
	// RandomSpawns adds that many resting particles of random mass, placed
	// uniformly in a square of half-width SpawnArea around the origin.
	RandomSpawns  int
	SpawnArea     float64
}

type Experiment struct {
	cfg        Config
	registry   *Registry
	logger     *zap.Logger
	randSource *rand.Rand

	simulation *sim.Simulation
	setup      sim.Setup
	duration   float64
}

func New(cfg Config, registry *Registry, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{
		cfg:        cfg,
		registry:   registry,
		logger:     logger,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Setup resolves the preset and integrator and builds the simulation.
func (e *Experiment) Setup() error {
	p, err := e.registry.GetPreset(e.cfg.Preset)
	if err != nil {
		return err
	}
	name := e.cfg.Integrator
	if name == "" {
		name = "verlet"
	}
	integ, err := e.registry.GetIntegrator(name)
	if err != nil {
		return err
	}

	params := p.Params
	if e.cfg.Dt > 0 {
		params.Dt = e.cfg.Dt
	}
	if e.cfg.Softening > 0 {
		params.Softening = e.cfg.Softening
	}
	e.duration = p.Duration
	if e.cfg.Duration > 0 {
		e.duration = e.cfg.Duration
	}

	setup, err := config.BuildSetup(p.Name, params, p.Bodies)
	if err != nil {
		return err
	}

	s, err := sim.New(setup,
		sim.WithIntegrator(integ),
		sim.WithLogger(e.logger.With(zap.String("preset", p.Name))),
		sim.WithMetrics(e.registry.DefaultMetrics(setup)...),
	)
	if err != nil {
		return err
	}

	for i := 0; i < e.cfg.RandomSpawns; i++ {
		area := e.cfg.SpawnArea
		if area <= 0 {
			area = 1
		}
		pos := dynamo.Vec2{
			X: (2*e.randSource.Float64() - 1) * area,
			Y: (2*e.randSource.Float64() - 1) * area,
		}
		if _, err := s.SpawnRandom(e.randSource, pos); err != nil {
			return fmt.Errorf("random spawn %d: %w", i, err)
		}
	}

	e.setup = setup
	e.simulation = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulation == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulation.Run(ctx, e.duration, sim.RunOptions{
		SampleEvery:   e.cfg.SampleEvery,
		ValidateState: e.cfg.ValidateState,
		Trajectory:    e.cfg.Trajectory,
	})
}

// Simulation returns the underlying simulation for adding observers.
func (e *Experiment) Simulation() *sim.Simulation { return e.simulation }

func (e *Experiment) Duration() float64 { return e.duration }

// Labels returns the labels of the simulated particles, hidden ones
// included.
func (e *Experiment) Labels() []string {
	if e.simulation == nil {
		return nil
	}
	ps := e.simulation.Particles()
	labels := make([]string, len(ps))
	for i := range ps {
		labels[i] = ps[i].Label
	}
	return labels
}

// Visible counts the particles with a displayable label.
func (e *Experiment) Visible() int {
	if e.simulation == nil {
		return 0
	}
	n := 0
	for _, p := range e.simulation.Particles() {
		if p.Visible() {
			n++
		}
	}
	return n
}
