package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

func TestVerletRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pos  dynamo.Vec2
		vel  dynamo.Vec2
		dt   float64
	}{
		{"unit", dynamo.Vec2{}, dynamo.Vec2{X: 1, Y: 0}, 1},
		{"small step", dynamo.Vec2{X: 3, Y: -2}, dynamo.Vec2{X: -0.4, Y: 2.5}, 0.01},
		{"orbital", dynamo.Vec2{X: 3.844e8}, dynamo.Vec2{Y: 1018.27}, 1000},
	}

	integ := NewVerlet()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := physics.NewParticle(tt.pos, tt.vel, 1, 0, tt.dt, "")
			if err != nil {
				t.Fatalf("particle: %v", err)
			}
			start := p.Position

			ps := []physics.Particle{p}
			integ.Integrate(ps, tt.dt)

			got := ps[0].Position.Sub(start).Scale(1 / tt.dt)
			tol := 1e-9 * math.Max(1, tt.vel.Len())
			if math.Abs(got.X-tt.vel.X) > tol || math.Abs(got.Y-tt.vel.Y) > tol {
				t.Errorf("velocity after step = %v, want %v", got, tt.vel)
			}
			if ps[0].PrevPosition != start {
				t.Errorf("PrevPosition = %v, want %v", ps[0].PrevPosition, start)
			}
		})
	}
}

func TestVerletConstantAcceleration(t *testing.T) {
	const dt = 0.01
	const g = -9.81
	p, _ := physics.NewParticle(dynamo.Vec2{}, dynamo.Vec2{X: 1, Y: 10}, 2, 0, dt, "")
	ps := []physics.Particle{p}

	integ := NewVerlet()
	steps := 100
	for i := 0; i < steps; i++ {
		ps[0].Force = dynamo.Vec2{Y: g * ps[0].Mass}
		integ.Integrate(ps, dt)
	}

	// x_n = x0 + v0·n·dt + a·dt²·n(n+1)/2 for this position-history start
	n := float64(steps)
	wantY := 10*n*dt + g*dt*dt*n*(n+1)/2
	if math.Abs(ps[0].Position.Y-wantY) > 1e-9 {
		t.Errorf("y after %d steps = %.9f, want %.9f", steps, ps[0].Position.Y, wantY)
	}
	if math.Abs(ps[0].Position.X-n*dt) > 1e-9 {
		t.Errorf("x after %d steps = %.9f, want %.9f", steps, ps[0].Position.X, n*dt)
	}
}

func TestVerletHarmonicEnergyBounded(t *testing.T) {
	const dt = 0.01
	p, _ := physics.NewParticle(dynamo.Vec2{X: 1}, dynamo.Vec2{}, 1, 0, dt, "")
	ps := []physics.Particle{p}
	integ := NewVerlet()

	energy := func() float64 {
		v := ps[0].Position.Sub(ps[0].PrevPosition).Scale(1 / dt)
		return 0.5*v.Len2() + 0.5*ps[0].Position.Len2()
	}

	e0 := 0.5
	for i := 0; i < 10000; i++ {
		ps[0].Force = ps[0].Position.Scale(-1)
		integ.Integrate(ps, dt)
		if math.Abs(energy()-e0) > 0.01 {
			t.Fatalf("step %d: energy drifted to %v", i, energy())
		}
	}
}
