package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/dimerlab/internal/sweep"
)

const (
	metadataFile = "metadata.json"
	curveFile    = "curve.csv"
)

var (
	ErrNoCurves      = errors.New("storage: no curves to save")
	ErrGridMismatch  = errors.New("storage: curves do not share a distance grid")
	ErrMalformedFile = errors.New("storage: malformed curve file")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Command   string             `json:"command"`
	Potential string             `json:"potential"`
	Timestamp time.Time          `json:"timestamp"`
	Points    int                `json:"points"`
	Workers   int                `json:"workers"`
	Kinds     []sweep.Kind       `json:"kinds"`
	Params    map[string]float64 `json:"params,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes meta and the curves into a fresh run directory and returns the
// run ID. All curves must share the same distance grid.
func (s *Store) Save(meta RunMetadata, curves ...*sweep.Curve) (string, error) {
	if len(curves) == 0 {
		return "", ErrNoCurves
	}
	grid := curves[0].R
	for _, c := range curves[1:] {
		if !sameGrid(grid, c.R) {
			return "", fmt.Errorf("%w: %s has %d points, %s has %d",
				ErrGridMismatch, curves[0].Kind, len(grid), c.Kind, len(c.R))
		}
	}

	name := meta.Name
	if name == "" {
		name = meta.Command
	}
	runID := fmt.Sprintf("%s_%s", name, uuid.NewString())
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Name = name
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Points = len(grid)
	meta.Kinds = make([]sweep.Kind, len(curves))
	for i, c := range curves {
		meta.Kinds[i] = c.Kind
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCurves(filepath.Join(runDir, curveFile), curves); err != nil {
		return "", err
	}
	return runID, nil
}

func sameGrid(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCurves(path string, curves []*sweep.Curve) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"r"}
	for _, c := range curves {
		header = append(header, string(c.Kind))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, r := range curves[0].R {
		row := []string{strconv.FormatFloat(r, 'g', -1, 64)}
		for _, c := range curves {
			row = append(row, strconv.FormatFloat(c.Values[i], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadCurves reads the curves of a run back in column order.
func (s *Store) LoadCurves(runID string) ([]*sweep.Curve, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), curveFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) < 2 || records[0][0] != "r" {
		return nil, fmt.Errorf("%w: %s", ErrMalformedFile, runID)
	}

	header := records[0]
	curves := make([]*sweep.Curve, len(header)-1)
	for i, kind := range header[1:] {
		curves[i] = &sweep.Curve{
			Kind:   sweep.Kind(kind),
			R:      make([]float64, 0, len(records)-1),
			Values: make([]float64, 0, len(records)-1),
		}
	}

	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedFile, runID, line+2, err)
			}
			vals[j] = v
		}
		for j, c := range curves {
			c.R = append(c.R, vals[0])
			c.Values = append(c.Values, vals[j+1])
		}
	}
	return curves, nil
}

// CurvePath is the CSV file backing runID.
func (s *Store) CurvePath(runID string) string {
	return filepath.Join(s.Dir(runID), curveFile)
}
