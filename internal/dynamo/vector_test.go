package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestVec2_Arithmetic(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{4, 6}

	if got := a.Add(b); got != (Vec2{5, 8}) {
		t.Errorf("Add failed: got %v", got)
	}
	if got := b.Sub(a); got != (Vec2{3, 4}) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := a.Scale(2); got != (Vec2{2, 4}) {
		t.Errorf("Scale failed: got %v", got)
	}
	if got := a.Neg(); got != (Vec2{-1, -2}) {
		t.Errorf("Neg failed: got %v", got)
	}
	if got := a.Dot(b); got != 16 {
		t.Errorf("Dot failed: got %v", got)
	}
	if got := a.Cross(b); got != -2 {
		t.Errorf("Cross failed: got %v", got)
	}
	if got := b.Sub(a).Len(); got != 5 {
		t.Errorf("Len failed: got %v", got)
	}
	if got := Distance(a, b); got != 5 {
		t.Errorf("Distance failed: got %v", got)
	}
}

func TestVec2_Unit(t *testing.T) {
	u, ok := Vec2{3, 4}.Unit()
	if !ok {
		t.Fatal("expected ok for non-zero vector")
	}
	if math.Abs(u.Len()-1) > 1e-15 {
		t.Errorf("expected unit length, got %v", u.Len())
	}

	z, ok := Vec2{}.Unit()
	if ok {
		t.Error("expected !ok for zero vector")
	}
	if z != (Vec2{}) {
		t.Errorf("expected zero vector, got %v", z)
	}
}

func TestVec2_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec2
		valid bool
	}{
		{"zero", Vec2{}, true},
		{"normal", Vec2{1.5, -2}, true},
		{"NaN x", Vec2{math.NaN(), 0}, false},
		{"+Inf y", Vec2{0, math.Inf(1)}, false},
		{"-Inf x", Vec2{math.Inf(-1), 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 1.5, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected errors.Is to match wrapped error")
	}
	if err.Error() == "" {
		t.Error("expected non-empty message")
	}
}
