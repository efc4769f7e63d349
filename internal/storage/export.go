package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/dimerlab/internal/sweep"
)

type ExportData struct {
	Meta   *RunMetadata   `json:"meta"`
	Curves []*sweep.Curve `json:"curves"`
}

// ExportJSON writes a run's metadata and curves as one JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	curves, err := s.LoadCurves(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: meta, Curves: curves})
}

// ExportCSV copies a run's curve table to w.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	f, err := os.Open(s.CurvePath(runID))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
