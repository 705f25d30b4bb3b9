package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"go.uber.org/zap"
)

const (
	speedUpFactor  = 21.0 / 20.0
	slowDownFactor = 20.0 / 21.0

	// MaxRandomMass bounds the mass of randomly spawned particles.
	MaxRandomMass = 10.0

	// MaxRunSteps bounds the number of ticks a single Run may take.
	MaxRunSteps = 1 << 30
)

// Simulation owns a particle ensemble and advances it tick by tick. It is
// not safe for concurrent use.
type Simulation struct {
	name       string
	initial    []physics.Particle
	particles  []physics.Particle
	params     Params
	defaultDt  float64
	elapsed    float64
	steps      int
	phase      Phase
	nextID     uint64
	integrator Integrator
	metrics    []metrics.Metric
	observers  []Observer
	logger     *zap.Logger
}

type Option func(*Simulation)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithIntegrator(i Integrator) Option {
	return func(s *Simulation) {
		if i != nil {
			s.integrator = i
		}
	}
}

func WithMetrics(ms ...metrics.Metric) Option {
	return func(s *Simulation) { s.metrics = append(s.metrics, ms...) }
}

func WithObservers(os ...Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, os...) }
}

// New validates setup and returns a paused simulation at t=0.
func New(setup Setup, opts ...Option) (*Simulation, error) {
	s := &Simulation{
		integrator: integrators.NewVerlet(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(setup); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer)     { s.observers = append(s.observers, o) }

// SetMetrics replaces the metric set and resets the new metrics.
func (s *Simulation) SetMetrics(ms ...metrics.Metric) {
	s.metrics = ms
	for _, m := range s.metrics {
		m.Reset()
	}
}

// MetricNames lists the names of the observed metrics in order.
func (s *Simulation) MetricNames() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	return names
}

func (s *Simulation) Name() string                  { return s.name }
func (s *Simulation) Params() Params                { return s.params }
func (s *Simulation) Phase() Phase                  { return s.phase }
func (s *Simulation) Elapsed() float64              { return s.elapsed }
func (s *Simulation) Steps() int                    { return s.steps }
func (s *Simulation) Dt() float64                   { return s.params.Dt }
func (s *Simulation) DefaultDt() float64            { return s.defaultDt }
func (s *Simulation) Len() int                      { return len(s.particles) }
func (s *Simulation) IntegratorName() string        { return s.integrator.Name() }
func (s *Simulation) Particles() []physics.Particle { return physics.Clone(s.particles) }

// Frame returns a read-only view of the current state.
func (s *Simulation) Frame() metrics.Frame {
	return metrics.Frame{
		Particles: s.particles,
		G:         s.params.G,
		Dt:        s.params.Dt,
		Time:      s.elapsed,
		Step:      s.steps,
	}
}

func (s *Simulation) load(setup Setup) error {
	if err := setup.Params.Validate(); err != nil {
		return fmt.Errorf("setup %q: %w", setup.Name, err)
	}
	var next uint64 = 1
	for i := range setup.Particles {
		p := &setup.Particles[i]
		if !(p.Mass > 0) {
			return fmt.Errorf("setup %q: particle %d: %w", setup.Name, i, dynamo.ErrNonPositiveMass)
		}
		if p.Radius < 0 {
			return fmt.Errorf("setup %q: particle %d: %w", setup.Name, i, dynamo.ErrNegativeRadius)
		}
		if p.ID >= next {
			next = p.ID + 1
		}
	}

	s.name = setup.Name
	s.initial = physics.Clone(setup.Particles)
	if s.initial == nil {
		s.initial = []physics.Particle{}
	}
	s.params = setup.Params
	s.defaultDt = setup.Params.Dt
	s.nextID = next
	s.restore()
	return nil
}

func (s *Simulation) restore() {
	s.particles = physics.Clone(s.initial)
	s.params.Dt = s.defaultDt
	s.elapsed = 0
	s.steps = 0
	s.phase = Paused
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Step runs one tick regardless of phase: overlap separation, force
// accumulation and collision response, integration, then the clock.
func (s *Simulation) Step() {
	p := s.params
	if p.Collisions {
		physics.ResolveOverlaps(s.particles)
	}
	physics.AccumulateForces(s.particles, p.G, p.Softening, p.Collisions)
	if p.Collisions {
		physics.ResolveCollisions(s.particles, p.Restitution, p.Dt)
	}
	s.integrator.Integrate(s.particles, p.Dt)

	s.elapsed += p.Dt
	s.steps++

	if len(s.metrics) == 0 && len(s.observers) == 0 {
		return
	}
	f := s.Frame()
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, o := range s.observers {
		o.OnStep(f)
	}
}

// Tick steps the simulation if it is running and reports whether it did.
func (s *Simulation) Tick() bool {
	if s.phase != Running {
		return false
	}
	s.Step()
	return true
}

func (s *Simulation) Toggle() Phase {
	if s.phase == Running {
		s.Pause()
	} else {
		s.Resume()
	}
	return s.phase
}

func (s *Simulation) Pause() {
	if s.phase == Paused {
		return
	}
	s.phase = Paused
	s.logger.Debug("simulation paused", zap.String("setup", s.name), zap.Float64("t", s.elapsed))
}

func (s *Simulation) Resume() {
	if s.phase == Running {
		return
	}
	s.phase = Running
	s.logger.Debug("simulation running", zap.String("setup", s.name), zap.Float64("t", s.elapsed))
}

// Reset restores the initial ensemble and the default tick duration.
func (s *Simulation) Reset() {
	s.restore()
	s.logger.Debug("simulation reset", zap.String("setup", s.name), zap.Int("particles", len(s.particles)))
}

// Switch replaces the active configuration. Non-empty ms replace the metric
// set, for metrics whose bounds depend on the ensemble. On error the
// current configuration and metrics are left untouched.
func (s *Simulation) Switch(setup Setup, ms ...metrics.Metric) error {
	prev := *s
	if len(ms) > 0 {
		s.metrics = ms
	}
	if err := s.load(setup); err != nil {
		*s = prev
		return err
	}
	s.logger.Debug("setup switched",
		zap.String("from", prev.name),
		zap.String("to", s.name),
		zap.Int("particles", len(s.particles)),
		zap.Float64("dt", s.params.Dt),
	)
	return nil
}

// ChangeSpeed sets a new tick duration, rebuilding every PrevPosition so
// each particle keeps the velocity it had under the old duration.
func (s *Simulation) ChangeSpeed(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("change speed to %g: %w", dt, dynamo.ErrNonPositiveStep)
	}
	old := s.params.Dt
	for i := range s.particles {
		v := s.particles[i].Velocity(old)
		s.particles[i].SetVelocity(v, dt)
	}
	s.params.Dt = dt
	s.logger.Debug("time step changed", zap.Float64("from", old), zap.Float64("to", dt))
	return nil
}

func (s *Simulation) SpeedUp() error {
	return s.ChangeSpeed(s.params.Dt * speedUpFactor)
}

func (s *Simulation) SlowDown() error {
	return s.ChangeSpeed(s.params.Dt * slowDownFactor)
}

// SpeedRatio reports the current tick duration relative to the default.
func (s *Simulation) SpeedRatio() float64 {
	return s.params.Dt / s.defaultDt
}

// Spawn adds a particle between ticks and returns its ID. Spawned
// particles are not part of the snapshot restored by Reset.
func (s *Simulation) Spawn(pos, vel dynamo.Vec2, mass, radius float64, label string) (uint64, error) {
	p, err := physics.NewParticle(pos, vel, mass, radius, s.params.Dt, label)
	if err != nil {
		return 0, fmt.Errorf("spawn: %w", err)
	}
	p.ID = s.nextID
	s.nextID++
	s.particles = append(s.particles, p)
	s.logger.Debug("particle spawned",
		zap.Uint64("id", p.ID),
		zap.Float64("mass", mass),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
	)
	return p.ID, nil
}

// SpawnRandom adds a resting, unlabelled particle at pos whose mass is a
// whole number drawn from [1, MaxRandomMass). Its radius is sqrt(mass).
func (s *Simulation) SpawnRandom(rng *rand.Rand, pos dynamo.Vec2) (uint64, error) {
	mass := math.Trunc(rng.Float64() * MaxRandomMass)
	if mass == 0 {
		mass = 1
	}
	return s.Spawn(pos, dynamo.Vec2{}, mass, math.Sqrt(mass), physics.HiddenLabel)
}

// Run ticks until the elapsed time reaches until, independent of phase.
// On cancellation the partial result is returned with ctx.Err().
func (s *Simulation) Run(ctx context.Context, until float64, opts RunOptions) (*Result, error) {
	if math.IsNaN(until) || math.IsInf(until, 0) || until < s.elapsed {
		return nil, fmt.Errorf("run until t=%g from t=%g: %w", until, s.elapsed, dynamo.ErrParameterBounds)
	}
	every := opts.SampleEvery
	if every <= 0 {
		every = 1
	}

	dt := s.params.Dt
	n := math.Ceil((until-s.elapsed)/dt - 1e-9)
	if n > MaxRunSteps {
		return nil, fmt.Errorf("run until t=%g needs %g steps of %g, limit %d: %w",
			until, n, dt, MaxRunSteps, dynamo.ErrParameterBounds)
	}
	steps := int(math.Max(n, 0))

	result := &Result{
		Samples: make([]metrics.Sample, 0, steps/every+2),
		Metrics: make(map[string]float64),
	}
	start := s.Frame()
	for _, m := range s.metrics {
		m.Reset()
		m.Observe(start)
	}

	sample := func() {
		f := s.Frame()
		result.Samples = append(result.Samples, metrics.Measure(f))
		if opts.Trajectory {
			result.Trajectory = append(result.Trajectory, Snapshot{Time: s.elapsed, Positions: positions(s.particles)})
		}
	}

	s.logger.Debug("run started",
		zap.String("setup", s.name),
		zap.Int("steps", steps),
		zap.Float64("until", until),
	)

	sample()
	first := result.Samples[0].Total
	var runErr error

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		s.Step()
		result.StepsTaken++

		if opts.ValidateState && !validState(s.particles) {
			runErr = &dynamo.SimulationError{Step: s.steps, Time: s.elapsed, Wrapped: dynamo.ErrInvalidState}
			break
		}
		if result.StepsTaken%every == 0 {
			sample()
		}
	}

	if result.StepsTaken%every != 0 {
		sample()
	}

	last := result.Final().Total
	if first != 0 {
		result.EnergyDrift = math.Abs(last-first) / math.Abs(first)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if runErr != nil {
		s.logger.Debug("run stopped", zap.Int("steps", result.StepsTaken), zap.Error(runErr))
		return result, runErr
	}
	s.logger.Debug("run finished",
		zap.Int("steps", result.StepsTaken),
		zap.Float64("energy_drift", result.EnergyDrift),
	)
	return result, nil
}
