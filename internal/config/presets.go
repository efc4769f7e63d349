package config

import (
	"sort"

	"github.com/san-kum/dimerlab/internal/potential"
)

func ibsPreset(name, kind string, rc float64) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Potential.Kind = kind
	cfg.Potential.Rc = rc
	cfg.Sweep.Start = 0.5 * rc
	cfg.Sweep.Stop = 1.25 * rc
	return cfg
}

// Presets cover the two reference cutoffs: 1.2 for realistic crack
// propagation, 1.01 only to reproduce reference data.
var Presets = map[string]*Config{
	"realistic":        ibsPreset("realistic", "ibs", potential.RealisticCutoff),
	"realistic_smooth": ibsPreset("realistic_smooth", "ibs_smooth", potential.RealisticCutoff),
	"realistic_step":   ibsPreset("realistic_step", "ibs_step", potential.RealisticCutoff),
	"reference":        ibsPreset("reference", "ibs", potential.ReferenceMatchCutoff),
	"reference_smooth": ibsPreset("reference_smooth", "ibs_smooth", potential.ReferenceMatchCutoff),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
