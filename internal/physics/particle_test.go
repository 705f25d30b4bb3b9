package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func TestNewParticle(t *testing.T) {
	p, err := NewParticle(dynamo.Vec2{X: 10, Y: 5}, dynamo.Vec2{X: 2, Y: -1}, 3, 0.5, 0.1, "probe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := dynamo.Vec2{X: 10 - 0.2, Y: 5 + 0.1}
	if math.Abs(p.PrevPosition.X-want.X) > 1e-12 || math.Abs(p.PrevPosition.Y-want.Y) > 1e-12 {
		t.Errorf("PrevPosition = %v, want %v", p.PrevPosition, want)
	}

	v := p.Velocity(0.1)
	if math.Abs(v.X-2) > 1e-9 || math.Abs(v.Y+1) > 1e-9 {
		t.Errorf("Velocity = %v, want (2, -1)", v)
	}
	if p.Force != (dynamo.Vec2{}) {
		t.Errorf("expected zero force, got %v", p.Force)
	}
}

func TestNewParticle_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mass   float64
		radius float64
		dt     float64
		want   error
	}{
		{"zero mass", 0, 1, 1, dynamo.ErrNonPositiveMass},
		{"negative mass", -2, 1, 1, dynamo.ErrNonPositiveMass},
		{"NaN mass", math.NaN(), 1, 1, dynamo.ErrNonPositiveMass},
		{"negative radius", 1, -1, 1, dynamo.ErrNegativeRadius},
		{"zero dt", 1, 1, 0, dynamo.ErrNonPositiveStep},
		{"negative dt", 1, 1, -0.5, dynamo.ErrNonPositiveStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParticle(dynamo.Vec2{}, dynamo.Vec2{}, tt.mass, tt.radius, tt.dt, "x")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParticle_SetVelocity(t *testing.T) {
	p, _ := NewParticle(dynamo.Vec2{X: 1, Y: 1}, dynamo.Vec2{}, 1, 0, 2, "")
	p.SetVelocity(dynamo.Vec2{X: 3, Y: 4}, 2)

	v := p.Velocity(2)
	if math.Abs(v.X-3) > 1e-12 || math.Abs(v.Y-4) > 1e-12 {
		t.Errorf("Velocity = %v, want (3, 4)", v)
	}
}

func TestParticle_Visible(t *testing.T) {
	tests := []struct {
		label   string
		visible bool
	}{
		{"Earth", true},
		{HiddenLabel, false},
		{"", false},
	}
	for _, tt := range tests {
		p := Particle{Label: tt.label}
		if got := p.Visible(); got != tt.visible {
			t.Errorf("Visible(%q) = %v, want %v", tt.label, got, tt.visible)
		}
	}
}

func TestBuilder(t *testing.T) {
	ps, err := NewBuilder(1).
		Add(dynamo.Vec2{}, dynamo.Vec2{}, 5, 1, "a").
		Add(dynamo.Vec2{X: 10}, dynamo.Vec2{Y: 1}, 1, 1, "b").
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if len(ps) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(ps))
	}
	if ps[0].ID != 1 || ps[1].ID != 2 {
		t.Errorf("expected sequential ids 1,2 got %d,%d", ps[0].ID, ps[1].ID)
	}
}

func TestBuilder_KeepsFirstError(t *testing.T) {
	b := NewBuilder(1).
		Add(dynamo.Vec2{}, dynamo.Vec2{}, 0, 1, "bad").
		Add(dynamo.Vec2{}, dynamo.Vec2{}, 1, -1, "worse")

	_, err := b.Build()
	if !errors.Is(err, dynamo.ErrNonPositiveMass) {
		t.Errorf("expected mass error, got %v", err)
	}
}

func TestBuilder_Empty(t *testing.T) {
	ps, err := NewBuilder(1).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps == nil || len(ps) != 0 {
		t.Errorf("expected empty non-nil ensemble, got %v", ps)
	}
}

func TestClone(t *testing.T) {
	ps := []Particle{{ID: 1, Mass: 1}}
	c := Clone(ps)
	c[0].Mass = 5
	if ps[0].Mass != 1 {
		t.Error("clone shares backing array")
	}
	if Clone(nil) != nil {
		t.Error("expected nil clone of nil")
	}
}
