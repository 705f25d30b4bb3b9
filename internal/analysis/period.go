package analysis

import (
	"errors"
	"fmt"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/sim"
)

// ErrNoPeriod is returned when a series is too short or flat to show a
// periodicity.
var ErrNoPeriod = errors.New("analysis: no dominant period")

// DominantPeriod returns the period of the strongest spectral component of
// values sampled every interval seconds.
func DominantPeriod(values []float64, interval float64) (float64, error) {
	if len(values) < 4 || !(interval > 0) {
		return 0, ErrNoPeriod
	}

	ps := PowerSpectrum(values)
	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 {
		return 0, ErrNoPeriod
	}

	n := 2 * len(ps)
	return float64(n) * interval / float64(maxIdx), nil
}

// OrbitPeriod estimates the period of particle body around particle
// center from the x offset between them in a recorded trajectory. Every
// snapshot must hold both particles.
func OrbitPeriod(traj []sim.Snapshot, body, center int) (float64, error) {
	if len(traj) < 2 {
		return 0, ErrNoPeriod
	}

	xs := make([]float64, len(traj))
	for i, snap := range traj {
		n := len(snap.Positions)
		if body < 0 || body >= n || center < 0 || center >= n {
			return 0, fmt.Errorf("snapshot %d (t=%g): particle index out of range [0,%d): %w",
				i, snap.Time, n, dynamo.ErrParameterBounds)
		}
		xs[i] = snap.Positions[body].X - snap.Positions[center].X
	}
	return DominantPeriod(xs, traj[1].Time-traj[0].Time)
}
