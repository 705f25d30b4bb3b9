package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

func twoBodyFrame(t *testing.T) Frame {
	t.Helper()
	ps, err := physics.NewBuilder(0.1).
		Add(dynamo.Vec2{}, dynamo.Vec2{}, 4, 0, "a").
		Add(dynamo.Vec2{X: 2}, dynamo.Vec2{Y: 3}, 1, 0, "b").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return Frame{Particles: ps, G: 1, Dt: 0.1}
}

func TestEnergyMean(t *testing.T) {
	m := NewEnergy()
	f := twoBodyFrame(t)

	m.Observe(f)
	e1 := m.Value()

	expected := 0.5*1*9 - 4.0*1/2
	if math.Abs(e1-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, e1)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()
	f := twoBodyFrame(t)

	m.Observe(f)
	if m.Value() != 0 {
		t.Errorf("expected no drift after one frame, got %v", m.Value())
	}

	moved := physics.Clone(f.Particles)
	moved[1].Position.X = 4
	moved[1].PrevPosition.X = 4
	m.Observe(Frame{Particles: moved, G: f.G, Dt: f.Dt})

	e0 := TotalEnergy(f.Particles, 1, 0.1)
	e1 := TotalEnergy(moved, 1, 0.1)
	want := math.Abs(e1-e0) / math.Abs(e0)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("drift = %v, want %v", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()
	f := twoBodyFrame(t)
	m.Observe(f)
	m.Observe(f)
	if m.Value() > 1e-12 {
		t.Errorf("expected no momentum drift, got %v", m.Value())
	}

	kicked := physics.Clone(f.Particles)
	kicked[0].SetVelocity(dynamo.Vec2{X: 1}, f.Dt)
	m.Observe(Frame{Particles: kicked, G: f.G, Dt: f.Dt})
	if math.Abs(m.Value()-4) > 1e-9 {
		t.Errorf("expected drift 4, got %v", m.Value())
	}
}

func TestAngularMomentumDrift(t *testing.T) {
	m := NewAngularMomentumDrift()
	f := twoBodyFrame(t)
	m.Observe(f)
	m.Observe(f)
	if m.Value() > 1e-12 {
		t.Errorf("expected no drift, got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestStability(t *testing.T) {
	s := NewStability(5)
	f := twoBodyFrame(t)
	s.Observe(f)

	far := physics.Clone(f.Particles)
	far[1].Position.X = 100
	s.Observe(Frame{Particles: far, G: 1, Dt: 0.1})

	if math.Abs(s.Value()-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %v", s.Value())
	}
	s.Reset()
	if s.Value() != 1 {
		t.Errorf("expected 1 after reset, got %v", s.Value())
	}
}

func TestClosestApproach(t *testing.T) {
	c := NewClosestApproach()
	if c.Value() != 0 {
		t.Errorf("expected 0 before observations, got %v", c.Value())
	}

	f := twoBodyFrame(t)
	c.Observe(f)
	if math.Abs(c.Value()-2) > 1e-12 {
		t.Errorf("expected 2, got %v", c.Value())
	}

	c.Reset()
	if c.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", c.Value())
	}
}
