// Package experiment turns a validated config into a dimer study: it builds
// the calculator stack, runs sweeps and cutoff searches, and describes the
// run for storage.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/san-kum/dimerlab/internal/calc"
	"github.com/san-kum/dimerlab/internal/config"
	"github.com/san-kum/dimerlab/internal/converge"
	"github.com/san-kum/dimerlab/internal/cutoff"
	"github.com/san-kum/dimerlab/internal/elastic"
	"github.com/san-kum/dimerlab/internal/geom"
	"github.com/san-kum/dimerlab/internal/metrics"
	"github.com/san-kum/dimerlab/internal/storage"
	"github.com/san-kum/dimerlab/internal/sweep"
)

type Experiment struct {
	cfg       *config.Config
	calc      calc.Calculator
	cache     *calc.Cached
	evaluator *sweep.Evaluator
	logger    *slog.Logger
	metrics   *calc.Metrics
	db        *badger.DB
}

type Option func(*Experiment)

// WithMetrics wraps the calculator so every call is counted and timed.
func WithMetrics(m *calc.Metrics) Option {
	return func(e *Experiment) { e.metrics = m }
}

// WithCache memoizes calculator results in db.
func WithCache(db *badger.DB) Option {
	return func(e *Experiment) { e.db = db }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func New(cfg *config.Config, reg *Registry, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if reg == nil {
		reg = NewRegistry()
	}

	c, err := reg.GetCalculator(cfg.Potential, e.logger)
	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		c = calc.NewInstrumented(c, cfg.Potential.Kind, e.metrics)
	}
	if e.db != nil {
		e.cache = calc.NewCached(c, e.db, cacheNamespace(cfg.Potential))
		e.cache.Logger = e.logger
		c = e.cache
	}
	e.calc = c
	e.evaluator = sweep.NewEvaluator(sweep.WithWorkers(cfg.Workers), sweep.WithLogger(e.logger))
	return e, nil
}

func cacheNamespace(p config.PotentialConfig) string {
	if p.Kind == "exec" {
		return fmt.Sprintf("exec:%s %s", p.Command, strings.Join(p.Args, " "))
	}
	return fmt.Sprintf("%s:k=%g,a=%g,rc=%g,inner=%g", p.Kind, p.K, p.A, p.Rc, p.TaperInner)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Calculator() calc.Calculator { return e.calc }

// CacheStats reports hits and misses, or zeros when no cache is attached.
func (e *Experiment) CacheStats() (hits, misses int64) {
	if e.cache == nil {
		return 0, 0
	}
	return e.cache.Stats()
}

// Sweep returns the explicit distances if configured, else the linspace.
func (e *Experiment) Sweep() (*sweep.Sweep, error) {
	sc := e.cfg.Sweep
	if len(sc.Distances) > 0 {
		return sweep.New(sc.Distances)
	}
	return sweep.Linspace(sc.Start, sc.Stop, sc.Points)
}

func (e *Experiment) dimer(s *sweep.Sweep) *geom.Geometry {
	return geom.NewDimer(e.cfg.Species, s.Min(), e.cfg.Cell)
}

type CurveResult struct {
	Energy  *sweep.Curve
	X1      *sweep.Curve
	X2      *sweep.Curve
	Metrics map[string]float64
}

func (r *CurveResult) Curves() []*sweep.Curve {
	return []*sweep.Curve{r.Energy, r.X1, r.X2}
}

// Curve evaluates energy and both x forces over the configured sweep and
// reduces them with the default curve metrics.
func (e *Experiment) Curve(ctx context.Context) (*CurveResult, error) {
	s, err := e.Sweep()
	if err != nil {
		return nil, err
	}
	g := e.dimer(s)

	energy, err := e.evaluator.Energies(ctx, e.calc, g, s)
	if err != nil {
		return nil, fmt.Errorf("energy curve: %w", err)
	}
	x1, x2, err := e.evaluator.Forces(ctx, e.calc, g, s)
	if err != nil {
		return nil, fmt.Errorf("force curve: %w", err)
	}
	m, err := metrics.Collect(energy, x1, x2, metrics.Default()...)
	if err != nil {
		return nil, err
	}
	return &CurveResult{Energy: energy, X1: x1, X2: x2, Metrics: m}, nil
}

// Cutoff runs the adjusted cutoff search. A non-positive tol falls back to
// the configured tolerance.
func (e *Experiment) Cutoff(ctx context.Context, tol float64) (*cutoff.Result, error) {
	if tol <= 0 {
		tol = e.cfg.Cutoff.Tolerance
	}
	det, err := converge.ByName(e.cfg.Cutoff.Detector, e.cfg.Cutoff.Window)
	if err != nil {
		return nil, err
	}

	est := cutoff.NewEstimator()
	est.Nominal = e.cfg.Cutoff.Nominal
	est.Points = e.cfg.Cutoff.Points
	est.Species = e.cfg.Species
	est.Cell = e.cfg.Cell
	est.Detector = det
	est.Evaluator = e.evaluator
	est.Logger = e.logger
	return est.AdjustedCutoff(ctx, e.calc, tol)
}

// Elastic derives the continuum constants of the configured ideal brittle
// solid. External engines have no closed form.
func (e *Experiment) Elastic() (elastic.Constants, error) {
	if e.cfg.Potential.Kind == "exec" {
		return elastic.Constants{}, fmt.Errorf("elastic constants need an ideal brittle solid, got %s", e.cfg.Potential.Kind)
	}
	p, err := e.cfg.IBS()
	if err != nil {
		return elastic.Constants{}, err
	}
	return elastic.ForIBS(p)
}

// Metadata describes this experiment for storage.
func (e *Experiment) Metadata(command string) storage.RunMetadata {
	p := e.cfg.Potential
	meta := storage.RunMetadata{
		Name:    e.cfg.Name,
		Command: command,
		Workers: e.cfg.Workers,
	}
	if p.Kind == "exec" {
		meta.Potential = strings.TrimSpace("exec " + p.Command + " " + strings.Join(p.Args, " "))
		return meta
	}
	meta.Potential = fmt.Sprintf("%s(k=%g, a=%g, rc=%g)", p.Kind, p.K, p.A, p.Rc)
	meta.Params = map[string]float64{"k": p.K, "a": p.A, "rc": p.Rc}
	if p.Kind == "ibs_smooth" {
		meta.Params["taper_inner"] = p.TaperInner
	}
	return meta
}
