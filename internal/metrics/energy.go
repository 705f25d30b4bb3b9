package metrics

import "math"

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

// Energy reports the mean total energy over the observed frames.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f Frame) {
	e.totalEnergy += TotalEnergy(f.Particles, f.G, f.Dt)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift reports the largest relative deviation of total energy from
// the first observed frame.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f Frame) {
	energy := TotalEnergy(f.Particles, f.G, f.Dt)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift reports the largest change of total linear momentum from
// the first observed frame, in kg·m/s.
type MomentumDrift struct {
	name     string
	initialX float64
	initialY float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(f Frame) {
	p := LinearMomentum(f.Particles, f.Dt)
	if m.samples == 0 {
		m.initialX, m.initialY = p.X, p.Y
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Hypot(p.X-m.initialX, p.Y-m.initialY))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initialX, m.initialY = 0, 0
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift reports the largest relative deviation of angular
// momentum about the centre of mass.
type AngularMomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(f Frame) {
	l := AngularMomentum(f.Particles, f.Dt)
	if a.samples == 0 {
		a.initial = l
	}
	a.samples++
	if a.initial != 0 {
		a.maxDrift = math.Max(a.maxDrift, math.Abs(l-a.initial)/math.Abs(a.initial))
	}
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
