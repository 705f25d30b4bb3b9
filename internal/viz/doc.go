// Package viz renders run results for the terminal: lipgloss styled
// summaries and tables, and asciigraph charts of the diagnostics series.
//
// Styles derive from a [Theme]; colors are dropped automatically when the
// output is not a terminal.
package viz
