// Package viz renders dimer curves and study results in the terminal.
//
//   - [PlotCurve], [PlotCurves]: asciigraph line plots of sweep curves
//   - [CutoffSummary], [ElasticSummary]: lipgloss summary panels
//   - [Explorer]: Bubble Tea viewer for tuning an ideal brittle solid
//
// # Key Bindings
//
//	j/k   - Select parameter
//	h/l   - Decrease/increase parameter
//	enter - Type a value
//	m     - Cycle cutoff mode (none, spline, step)
//	f     - Toggle energy/force plot
//	t     - Cycle color themes
//	?     - Toggle full help
//	q     - Quit
package viz
