package viz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dimerlab/internal/cutoff"
	"github.com/san-kum/dimerlab/internal/elastic"
)

var (
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Row is one label/value line of a summary panel.
type Row struct {
	Label string
	Value string
}

func Summary(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Label))
	}
	var b strings.Builder
	b.WriteString(Title.Render(title))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-*s", width, r.Label)))
		b.WriteString("  ")
		b.WriteString(MetricValue.Render(r.Value))
	}
	return Panel.Render(b.String())
}

func CutoffSummary(res *cutoff.Result) string {
	return Summary("adjusted cutoff", []Row{
		{"nominal", fmt.Sprintf("%.6g", res.Nominal)},
		{"adjusted", fmt.Sprintf("%.6g", res.Cutoff)},
		{"index", fmt.Sprintf("%d", res.Index)},
		{"converged force", fmt.Sprintf("%.6g", res.Converged)},
		{"tolerance", fmt.Sprintf("%.3g", res.Tolerance)},
	})
}

func ElasticSummary(c elastic.Constants) string {
	return Summary("elastic constants", []Row{
		{"E", fmt.Sprintf("%.6g", c.E)},
		{"nu", fmt.Sprintf("%.6g", c.Nu)},
		{"K", fmt.Sprintf("%.6g", c.K)},
		{"C11", fmt.Sprintf("%.6g", c.C11)},
		{"C12", fmt.Sprintf("%.6g", c.C12)},
		{"C44", fmt.Sprintf("%.6g", c.C44)},
	})
}

func MetricsSummary(title string, m map[string]float64) string {
	rows := make([]Row, 0, len(m))
	for _, name := range SortedKeys(m) {
		rows = append(rows, Row{Label: name, Value: fmt.Sprintf("%.6g", m[name])})
	}
	return Summary(title, rows)
}

func SortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// SparklineChart renders values as a one-line sparkline, sampled to width.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		c := string(chars[min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)])
		switch {
		case norm > 0.7:
			b.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			b.WriteString(SparkMid.Render(c))
		default:
			b.WriteString(SparkLow.Render(c))
		}
	}
	return b.String()
}

func Separator(width int) string {
	mid := width / 2
	return Subtle.Render(strings.Repeat("─", max(mid-3, 0)) + " ◆ " + strings.Repeat("─", max(width-mid-3, 0)))
}
