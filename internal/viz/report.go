package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/storage"
)

func row(s Styles, label, value string) string {
	return s.Label.Render(fmt.Sprintf("%-18s", label)) + value
}

// RunSummary renders the metadata of a stored run as a bordered panel.
func RunSummary(s Styles, meta *storage.RunMetadata) string {
	status := s.Good.Render("stable")
	if meta.Diverged {
		status = s.Bad.Render("diverged")
	}

	lines := []string{
		s.Title.Render(meta.ID),
		row(s, "preset", s.Value.Render(meta.Preset)),
		row(s, "integrator", s.Value.Render(meta.Integrator)),
		row(s, "particles", s.Value.Render(fmt.Sprintf("%d", meta.Particles))),
		row(s, "dt", s.Value.Render(fmt.Sprintf("%g", meta.Params.Dt))),
		row(s, "duration", s.Value.Render(fmt.Sprintf("%g", meta.Duration))),
		row(s, "steps", s.Value.Render(fmt.Sprintf("%d", meta.StepsTaken))),
		row(s, "energy drift", s.Drift(fmt.Sprintf("%.3e", meta.EnergyDrift), meta.EnergyDrift)),
		row(s, "status", status),
	}
	if len(meta.Labels) > 0 {
		lines = append(lines, row(s, "bodies", s.Muted.Render(strings.Join(meta.Labels, ", "))))
	}
	return s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Diagnostics renders one sample as a panel of conserved quantities.
func Diagnostics(s Styles, smp metrics.Sample) string {
	num := func(v float64) string { return s.Value.Render(fmt.Sprintf("%.6e", v)) }
	lines := []string{
		s.Title.Render(fmt.Sprintf("t = %g", smp.Time)),
		row(s, "kinetic", num(smp.Kinetic)),
		row(s, "potential", num(smp.Potential)),
		row(s, "total", num(smp.Total)),
		row(s, "momentum", s.Value.Render(fmt.Sprintf("(%.6e, %.6e)", smp.Momentum.X, smp.Momentum.Y))),
		row(s, "angular momentum", num(smp.AngularMomentum)),
	}
	return s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SweepTable renders one line per time step of a sweep.
func SweepTable(s Styles, results []experiment.SweepResult) string {
	var b strings.Builder
	header := fmt.Sprintf("%-12s %8s %12s %12s %12s %14s", "DT", "STEPS", "ENERGY", "MOMENTUM", "ANGULAR", "CLOSEST")
	b.WriteString(s.Header.Render(header))
	b.WriteString("\n")

	for _, r := range results {
		dt := fmt.Sprintf("%-12g", r.Dt)
		if r.Err != nil {
			b.WriteString(dt + " " + s.Bad.Render(r.Err.Error()) + "\n")
			continue
		}
		closest := "-"
		if !math.IsInf(r.ClosestApproach, 0) && !math.IsNaN(r.ClosestApproach) {
			closest = fmt.Sprintf("%.4g", r.ClosestApproach)
		}
		fmt.Fprintf(&b, "%s %8d %s %s %s %14s\n",
			dt, r.StepsTaken,
			s.Drift(fmt.Sprintf("%12.3e", r.EnergyDrift), r.EnergyDrift),
			s.Drift(fmt.Sprintf("%12.3e", r.MomentumDrift), r.MomentumDrift),
			s.Drift(fmt.Sprintf("%12.3e", r.AngularMomentumDrift), r.AngularMomentumDrift),
			closest)
	}
	return b.String()
}
