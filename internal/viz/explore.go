package viz

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/dimerlab/internal/calc"
	"github.com/san-kum/dimerlab/internal/elastic"
	"github.com/san-kum/dimerlab/internal/geom"
	"github.com/san-kum/dimerlab/internal/potential"
	"github.com/san-kum/dimerlab/internal/sweep"
)

type cutoffMode int

const (
	modePlain cutoffMode = iota
	modeSpline
	modeStep
)

func (m cutoffMode) String() string {
	switch m {
	case modeSpline:
		return "spline taper"
	case modeStep:
		return "step"
	}
	return "none"
}

var explorerParams = []string{"k", "a", "rc"}

const explorerStep = 0.01

// Explorer is an interactive view of an ideal brittle solid dimer: it
// re-evaluates the energy and force curves whenever a parameter changes.
type Explorer struct {
	params    map[string]float64
	cursor    int
	editing   bool
	editBuf   string
	mode      cutoffMode
	showForce bool
	theme     int
	points    int
	width     int
	height    int
	energy    *sweep.Curve
	force     *sweep.Curve
	constants elastic.Constants
	err       error
	evaluator *sweep.Evaluator
	help      help.Model
}

func NewExplorer(p *potential.IdealBrittleSolid) Explorer {
	h := help.New()
	h.Styles.ShortKey, h.Styles.FullKey = KeyHint, KeyHint
	e := Explorer{
		params:    map[string]float64{"k": p.K, "a": p.A, "rc": p.Rc},
		points:    DefaultPlotWidth,
		width:     DefaultPlotWidth,
		height:    24,
		evaluator: sweep.NewEvaluator(),
		help:      h,
	}
	e.recompute()
	return e
}

func (e Explorer) Init() tea.Cmd { return nil }

func (e Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return e.handleKey(msg)
	case tea.WindowSizeMsg:
		e.width, e.height = msg.Width, msg.Height
		e.help.Width = msg.Width
	}
	return e, nil
}

func (e Explorer) handleKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	if e.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(e.editBuf, 64); err == nil {
				e.params[explorerParams[e.cursor]] = v
				e.recompute()
			}
			e.editing, e.editBuf = false, ""
		case "esc":
			e.editing, e.editBuf = false, ""
		case "backspace":
			if len(e.editBuf) > 0 {
				e.editBuf = e.editBuf[:len(e.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					e.editBuf += s
				}
			}
		}
		return e, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return e, tea.Quit
	case key.Matches(msg, keys.Up):
		if e.cursor > 0 {
			e.cursor--
		}
	case key.Matches(msg, keys.Down):
		if e.cursor < len(explorerParams)-1 {
			e.cursor++
		}
	case key.Matches(msg, keys.Dec):
		e.params[explorerParams[e.cursor]] -= explorerStep
		e.recompute()
	case key.Matches(msg, keys.Inc):
		e.params[explorerParams[e.cursor]] += explorerStep
		e.recompute()
	case key.Matches(msg, keys.Edit):
		e.editing, e.editBuf = true, strconv.FormatFloat(e.params[explorerParams[e.cursor]], 'g', -1, 64)
	case key.Matches(msg, keys.Mode):
		e.mode = (e.mode + 1) % 3
		e.recompute()
	case key.Matches(msg, keys.Force):
		e.showForce = !e.showForce
	case key.Matches(msg, keys.Theme):
		e.theme = (e.theme + 1) % len(AllThemes)
	case key.Matches(msg, keys.Help):
		e.help.ShowAll = !e.help.ShowAll
	}
	return e, nil
}

func (e *Explorer) pair(p *potential.IdealBrittleSolid) potential.Pair {
	switch e.mode {
	case modeSpline:
		return potential.Smooth(p)
	case modeStep:
		return potential.Stepped(p)
	}
	return p
}

// recompute refreshes curves and constants. Invalid parameters leave the
// previous curves in place and set err.
func (e *Explorer) recompute() {
	p, err := potential.NewIdealBrittleSolid(e.params["k"], e.params["a"], e.params["rc"])
	if err != nil {
		e.err = err
		return
	}
	s, err := sweep.Linspace(0.5*p.A, 1.25*p.Rc, max(e.points, 2))
	if err != nil {
		e.err = err
		return
	}

	ctx := context.Background()
	c := calc.NewPair(e.pair(p))
	g := geom.NewDimer("X", s.Min(), geom.DefaultCell)
	energy, err := e.evaluator.Energies(ctx, c, g, s)
	if err != nil {
		e.err = err
		return
	}
	x1, _, err := e.evaluator.Forces(ctx, c, g, s)
	if err != nil {
		e.err = err
		return
	}
	constants, err := elastic.ForIBS(p)
	if err != nil {
		e.err = err
		return
	}

	e.energy, e.force, e.constants, e.err = energy, x1, constants, nil
}

func (e Explorer) View() string {
	th := AllThemes[e.theme]
	var b strings.Builder

	b.WriteString("\n  " + th.title().Render("DIMERLAB") + "  " + th.muted().Render("ideal brittle solid, cutoff: "+e.mode.String()) + "\n\n")
	for i, name := range explorerParams {
		val := fmt.Sprintf("%8.4f", e.params[name])
		if e.editing && i == e.cursor {
			val = fmt.Sprintf("%8s", e.editBuf+"_")
		}
		if i == e.cursor {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", th.accent().Render("▸"), white.Render(fmt.Sprintf("%-4s", name)), magenta.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", dim.Render(fmt.Sprintf("%-4s", name)), dim.Render(val)))
		}
	}

	b.WriteString("\n  " + MetricLabel.Render("E ") + MetricValue.Render(fmt.Sprintf("%.4f", e.constants.E)) +
		MetricLabel.Render("  nu ") + MetricValue.Render(fmt.Sprintf("%.2f", e.constants.Nu)) +
		MetricLabel.Render("  C11 ") + MetricValue.Render(fmt.Sprintf("%.4f", e.constants.C11)) +
		MetricLabel.Render("  C44 ") + MetricValue.Render(fmt.Sprintf("%.4f", e.constants.C44)) + "\n\n")

	curve := e.energy
	if e.showForce {
		curve = e.force
	}
	if curve != nil {
		b.WriteString(PlotCurve(curve, max(min(e.height-16, DefaultPlotHeight), 4), max(e.width-12, 20)))
		b.WriteString("\n  " + SparklineChart(curve.Values, max(e.width-4, 10)) + "\n")
	}

	if e.err != nil {
		b.WriteString("\n  " + th.err().Render(e.err.Error()) + "\n")
	}

	b.WriteString("\n  " + e.help.View(keys) + "\n")
	return b.String()
}

// RunExplorer blocks until the user quits.
func RunExplorer(p *potential.IdealBrittleSolid) error {
	_, err := tea.NewProgram(NewExplorer(p), tea.WithAltScreen()).Run()
	return err
}
