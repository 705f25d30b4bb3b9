package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

func TestKineticEnergy(t *testing.T) {
	f := twoBodyFrame(t)
	if got := KineticEnergy(f.Particles, f.Dt); math.Abs(got-4.5) > 1e-9 {
		t.Errorf("KE = %v, want 4.5", got)
	}
}

func TestPotentialEnergy(t *testing.T) {
	f := twoBodyFrame(t)
	if got := PotentialEnergy(f.Particles, 2); math.Abs(got+4) > 1e-12 {
		t.Errorf("PE = %v, want -4", got)
	}
}

func TestPotentialEnergy_Coincident(t *testing.T) {
	ps := []physics.Particle{
		{Position: dynamo.Vec2{X: 1}, Mass: 1},
		{Position: dynamo.Vec2{X: 1}, Mass: 1},
	}
	got := PotentialEnergy(ps, 1)
	if got != 0 || math.IsInf(got, 0) {
		t.Errorf("expected 0 for coincident pair, got %v", got)
	}
}

func TestLinearMomentum(t *testing.T) {
	f := twoBodyFrame(t)
	p := LinearMomentum(f.Particles, f.Dt)
	if math.Abs(p.X) > 1e-12 || math.Abs(p.Y-3) > 1e-9 {
		t.Errorf("P = %v, want (0, 3)", p)
	}
}

func TestCenterOfMass(t *testing.T) {
	f := twoBodyFrame(t)
	cm := CenterOfMass(f.Particles)
	if math.Abs(cm.X-0.4) > 1e-12 || cm.Y != 0 {
		t.Errorf("CM = %v, want (0.4, 0)", cm)
	}
	if CenterOfMass(nil) != (dynamo.Vec2{}) {
		t.Error("expected origin for empty ensemble")
	}
}

func TestAngularMomentum(t *testing.T) {
	f := twoBodyFrame(t)
	// about CM (0.4, 0): body b at r=(1.6, 0) with v=(0,3), mass 1
	if got := AngularMomentum(f.Particles, f.Dt); math.Abs(got-4.8) > 1e-9 {
		t.Errorf("L = %v, want 4.8", got)
	}
}

func TestAngularMomentum_TranslationInvariant(t *testing.T) {
	f := twoBodyFrame(t)
	shifted := physics.Clone(f.Particles)
	offset := dynamo.Vec2{X: 1e3, Y: -250}
	for i := range shifted {
		shifted[i].Position = shifted[i].Position.Add(offset)
		shifted[i].PrevPosition = shifted[i].PrevPosition.Add(offset)
	}

	a := AngularMomentum(f.Particles, f.Dt)
	b := AngularMomentum(shifted, f.Dt)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("expected translation invariance, got %v vs %v", a, b)
	}
}

func TestMeasure(t *testing.T) {
	f := twoBodyFrame(t)
	f.Time = 3
	s := Measure(f)
	if s.Time != 3 {
		t.Errorf("expected time 3, got %v", s.Time)
	}
	if math.Abs(s.Total-(s.Kinetic+s.Potential)) > 1e-12 {
		t.Errorf("total %v != KE %v + PE %v", s.Total, s.Kinetic, s.Potential)
	}
}
