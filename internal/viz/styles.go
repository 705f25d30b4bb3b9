package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Drift thresholds for coloring relative conservation errors.
const (
	DriftGood = 1e-6
	DriftWarn = 1e-3
)

type Styles struct {
	Title  lipgloss.Style
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Good   lipgloss.Style
	Warn   lipgloss.Style
	Bad    lipgloss.Style
	Panel  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Title),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Title).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Label: lipgloss.NewStyle().Foreground(t.Label),
		Value: lipgloss.NewStyle().Foreground(t.Value).Bold(true),
		Muted: lipgloss.NewStyle().Foreground(t.Muted),
		Good:  lipgloss.NewStyle().Foreground(t.Good).Bold(true),
		Warn:  lipgloss.NewStyle().Foreground(t.Warn).Bold(true),
		Bad:   lipgloss.NewStyle().Foreground(t.Bad).Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
	}
}

// Drift renders a relative conservation error colored by severity.
func (s Styles) Drift(text string, drift float64) string {
	switch {
	case math.IsNaN(drift) || math.IsInf(drift, 0) || drift > DriftWarn:
		return s.Bad.Render(text)
	case drift > DriftGood:
		return s.Warn.Render(text)
	default:
		return s.Good.Render(text)
	}
}

// Sparkline renders values as a one-line bar chart at most width runes wide.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	rng := max - min
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - min) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx < 0 || math.IsNaN(norm) {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		result.WriteRune(chars[idx])
	}
	return result.String()
}

func Separator(s Styles, width int) string {
	if width < 8 {
		return s.Muted.Render(strings.Repeat("─", width))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return s.Muted.Render(left + " ◆ " + right)
}
