// Package export writes stored curves in formats for other tools.
package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/dimerlab/internal/sweep"
)

var ErrNothingToDraw = errors.New("export: need at least two points")

var DefaultColors = []string{"#00ccff", "#ff66cc", "#ffcc00", "#00ff88"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b bounds) padded() bounds {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	if rx == 0 {
		rx = 1
	}
	if ry == 0 {
		ry = 1
	}
	return bounds{b.minX - rx*0.05, b.maxX + rx*0.05, b.minY - ry*0.1, b.maxY + ry*0.1}
}

// CurvesToSVG draws curves as polylines on shared axes, one color per
// curve, with a zero line when zero is in range.
func CurvesToSVG(curves []*sweep.Curve, width, height int) (string, error) {
	var drawn []*sweep.Curve
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, c := range curves {
		if c == nil || c.Len() < 2 {
			continue
		}
		drawn = append(drawn, c)
		lo, hi := c.Bounds()
		b.minX, b.maxX = math.Min(b.minX, c.R[0]), math.Max(b.maxX, c.R[c.Len()-1])
		b.minY, b.maxY = math.Min(b.minY, lo), math.Max(b.maxY, hi)
	}
	if len(drawn) == 0 {
		return "", ErrNothingToDraw
	}
	b = b.padded()

	px := func(x float64) float64 { return (x - b.minX) / (b.maxX - b.minX) * float64(width) }
	py := func(y float64) float64 { return float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if b.minY < 0 && b.maxY > 0 {
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-dasharray="4 4"/>
`, py(0), width, py(0))
	}

	for i, c := range drawn {
		color := DefaultColors[i%len(DefaultColors)]
		fmt.Fprintf(&sb, `<path data-kind="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, c.Kind, color)
		for j := range c.R {
			if j > 0 {
				sb.WriteString(" L")
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", px(c.R[j]), py(c.Values[j]))
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16*(i+1), color, c.Kind)
	}

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}
