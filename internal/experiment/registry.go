package experiment

import (
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/time/rate"

	"github.com/san-kum/dimerlab/internal/calc"
	"github.com/san-kum/dimerlab/internal/config"
	"github.com/san-kum/dimerlab/internal/potential"
)

type Factory func(cfg config.PotentialConfig, logger *slog.Logger) (calc.Calculator, error)

// Registry maps the potential kinds accepted in config files to calculator
// constructors.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.Register("ibs", func(cfg config.PotentialConfig, _ *slog.Logger) (calc.Calculator, error) {
		p, err := potential.NewIdealBrittleSolid(cfg.K, cfg.A, cfg.Rc)
		if err != nil {
			return nil, err
		}
		return calc.NewPair(p), nil
	})
	r.Register("ibs_smooth", func(cfg config.PotentialConfig, _ *slog.Logger) (calc.Calculator, error) {
		p, err := potential.NewIdealBrittleSolid(cfg.K, cfg.A, cfg.Rc)
		if err != nil {
			return nil, err
		}
		taper := &potential.SplineTaper{Inner: cfg.TaperInner, Outer: cfg.Rc}
		if err := taper.Validate(); err != nil {
			return nil, err
		}
		return calc.NewPair(&potential.Cutoffed{Pot: p, Fn: taper}), nil
	})
	r.Register("ibs_step", func(cfg config.PotentialConfig, _ *slog.Logger) (calc.Calculator, error) {
		p, err := potential.NewIdealBrittleSolid(cfg.K, cfg.A, cfg.Rc)
		if err != nil {
			return nil, err
		}
		return calc.NewPair(potential.Stepped(p)), nil
	})
	r.Register("exec", func(cfg config.PotentialConfig, logger *slog.Logger) (calc.Calculator, error) {
		if cfg.Command == "" {
			return nil, fmt.Errorf("exec calculator needs a command")
		}
		c := &calc.Exec{Command: cfg.Command, Args: cfg.Args, Logger: logger}
		if cfg.RateLimit > 0 {
			c.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
		}
		return c, nil
	})

	return r
}

// Register adds or replaces the constructor for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

func (r *Registry) GetCalculator(cfg config.PotentialConfig, logger *slog.Logger) (calc.Calculator, error) {
	fn, ok := r.factories[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown potential: %s", cfg.Kind)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return fn(cfg, logger)
}

func (r *Registry) ListPotentials() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
