// Package analysis extracts periodicities from recorded runs.
//
// [PowerSpectrum] is a radix-2 FFT magnitude spectrum; [DominantPeriod]
// picks the strongest non-constant bin of an evenly sampled series, which
// for a bound orbit is the orbital period:
//
//	traj, _ := store.LoadTrajectory(runID)
//	period, err := analysis.OrbitPeriod(traj, 1, 0)
package analysis
