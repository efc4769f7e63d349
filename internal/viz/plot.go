package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dimerlab/internal/sweep"
)

const (
	DefaultPlotHeight = 12
	DefaultPlotWidth  = 80
)

func caption(c *sweep.Curve) string {
	if c.Len() == 0 {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s vs r, r in [%.4g, %.4g]", c.Kind, c.R[0], c.R[c.Len()-1])
}

// PlotCurve renders one curve. Curves longer than width are resampled by
// asciigraph.
func PlotCurve(c *sweep.Curve, height, width int) string {
	if c == nil || c.Len() == 0 {
		return ""
	}
	return asciigraph.Plot(c.Values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption(c)),
	)
}

// PlotCurves overlays curves sharing a distance grid, one color each.
func PlotCurves(curves []*sweep.Curve, height, width int) string {
	var kept []*sweep.Curve
	for _, c := range curves {
		if c != nil && c.Len() > 0 {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return ""
	case 1:
		return PlotCurve(kept[0], height, width)
	}

	series := make([][]float64, len(kept))
	legends := make([]string, len(kept))
	for i, c := range kept {
		series[i] = c.Values
		legends[i] = string(c.Kind)
	}
	colors := []asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow, asciigraph.Green}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors[:min(len(series), len(colors))]...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(caption(kept[0])),
	)
}
