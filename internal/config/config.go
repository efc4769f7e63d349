package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hjson/hjson-go"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dimerlab/internal/potential"
)

const (
	DefaultSpecies   = "X"
	DefaultCell      = 50.0
	DefaultK         = 1.0
	DefaultA         = 1.0
	DefaultStart     = 0.5
	DefaultStop      = 2.0
	DefaultPoints    = 301
	DefaultTolerance = 1e-6
	DefaultCutPoints = 1000
	DefaultWorkers   = 1
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Name      string          `yaml:"name" json:"name"`
	Species   string          `yaml:"species" json:"species" validate:"required"`
	Cell      float64         `yaml:"cell" json:"cell" validate:"gt=0"`
	Workers   int             `yaml:"workers" json:"workers" validate:"gte=1,lte=256"`
	Potential PotentialConfig `yaml:"potential" json:"potential"`
	Sweep     SweepConfig     `yaml:"sweep" json:"sweep"`
	Cutoff    CutoffConfig    `yaml:"cutoff" json:"cutoff"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
}

type PotentialConfig struct {
	Kind       string   `yaml:"kind" json:"kind" validate:"oneof=ibs ibs_smooth ibs_step exec"`
	K          float64  `yaml:"k" json:"k" validate:"gte=0"`
	A          float64  `yaml:"a" json:"a" validate:"gte=0"`
	Rc         float64  `yaml:"rc" json:"rc" validate:"gte=0"`
	TaperInner float64  `yaml:"taper_inner" json:"taper_inner" validate:"gte=0"`
	Command    string   `yaml:"command,omitempty" json:"command,omitempty" validate:"required_if=Kind exec"`
	Args       []string `yaml:"args,omitempty" json:"args,omitempty"`
	// RateLimit caps engine launches per second; 0 means unlimited.
	RateLimit float64 `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty" validate:"gte=0"`
}

type SweepConfig struct {
	Start     float64   `yaml:"start" json:"start" validate:"gt=0"`
	Stop      float64   `yaml:"stop" json:"stop" validate:"gtfield=Start"`
	Points    int       `yaml:"points" json:"points" validate:"gte=2"`
	Distances []float64 `yaml:"distances,omitempty" json:"distances,omitempty" validate:"omitempty,dive,gt=0"`
}

type CutoffConfig struct {
	Tolerance float64 `yaml:"tolerance" json:"tolerance" validate:"gt=0"`
	Points    int     `yaml:"points" json:"points" validate:"gte=2"`
	Nominal   float64 `yaml:"nominal" json:"nominal" validate:"gte=0"`
	Detector  string  `yaml:"detector" json:"detector" validate:"omitempty,oneof=tail_mean window"`
	Window    int     `yaml:"window" json:"window" validate:"gte=0"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Name:    "ibs",
		Species: DefaultSpecies,
		Cell:    DefaultCell,
		Workers: DefaultWorkers,
		Potential: PotentialConfig{
			Kind: "ibs",
			K:    DefaultK,
			A:    DefaultA,
			Rc:   potential.RealisticCutoff,
		},
		Sweep: SweepConfig{
			Start:  DefaultStart,
			Stop:   DefaultStop,
			Points: DefaultPoints,
		},
		Cutoff: CutoffConfig{
			Tolerance: DefaultTolerance,
			Points:    DefaultCutPoints,
			Detector:  "tail_mean",
		},
	}
}

// Load reads a YAML or HJSON (by .hjson extension) file over DefaultConfig
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".hjson") {
		err = unmarshalHJSON(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshalHJSON(data []byte, cfg *Config) error {
	var m map[string]interface{}
	if err := hjson.Unmarshal(data, &m); err != nil {
		return err
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, cfg)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Potential.Kind != "exec" {
		if _, err := c.IBS(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if c.Cutoff.Detector == "window" && c.Cutoff.Window < 1 {
		return fmt.Errorf("%w: window detector needs cutoff.window >= 1", ErrInvalidConfig)
	}
	return nil
}

// IBS returns the ideal brittle solid described by the potential section.
func (c *Config) IBS() (*potential.IdealBrittleSolid, error) {
	return potential.NewIdealBrittleSolid(c.Potential.K, c.Potential.A, c.Potential.Rc)
}
