package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/dimerlab/internal/sweep"
)

func testCurves() (*sweep.Curve, *sweep.Curve) {
	r := []float64{0.8, 1.0, 1.2}
	x1 := &sweep.Curve{Kind: sweep.KindForceX1, R: r, Values: []float64{-0.1, 0, 0}}
	x2 := &sweep.Curve{Kind: sweep.KindForceX2, R: r, Values: []float64{0.1, 0, 0}}
	return x1, x2
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	x1, x2 := testCurves()
	runID, err := st.Save(RunMetadata{
		Name:      "ibs",
		Command:   "curve",
		Potential: "ibs(k=1, a=1, rc=1.2)",
		Params:    map[string]float64{"k": 1, "a": 1, "rc": 1.2},
	}, x1, x2)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "ibs_") {
		t.Errorf("expected run id prefixed with name, got %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("expected id %q, got %q", runID, meta.ID)
	}
	if meta.Points != 3 {
		t.Errorf("expected 3 points, got %d", meta.Points)
	}
	if meta.Params["rc"] != 1.2 {
		t.Errorf("expected rc 1.2, got %f", meta.Params["rc"])
	}
	if len(meta.Kinds) != 2 || meta.Kinds[1] != sweep.KindForceX2 {
		t.Errorf("unexpected kinds %v", meta.Kinds)
	}

	curves, err := st.LoadCurves(runID)
	if err != nil {
		t.Fatalf("load curves failed: %v", err)
	}
	if len(curves) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(curves))
	}
	for i, want := range []*sweep.Curve{x1, x2} {
		got := curves[i]
		if got.Kind != want.Kind {
			t.Errorf("curve %d: expected kind %s, got %s", i, want.Kind, got.Kind)
		}
		for j := range want.R {
			if got.R[j] != want.R[j] || got.Values[j] != want.Values[j] {
				t.Errorf("curve %d point %d: got (%g, %g), want (%g, %g)",
					i, j, got.R[j], got.Values[j], want.R[j], want.Values[j])
			}
		}
	}
}

func TestStoreSave_Errors(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Save(RunMetadata{Name: "empty"}); err != ErrNoCurves {
		t.Errorf("expected ErrNoCurves, got %v", err)
	}

	x1, _ := testCurves()
	short := &sweep.Curve{Kind: sweep.KindEnergy, R: []float64{0.8}, Values: []float64{1}}
	if _, err := st.Save(RunMetadata{Name: "bad"}, x1, short); err == nil {
		t.Error("expected grid mismatch error")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	x1, _ := testCurves()
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := st.Save(RunMetadata{Name: "old", Timestamp: older}, x1); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(RunMetadata{Name: "new"}, x1); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Name != "new" {
		t.Errorf("expected newest run first, got %s", runs[0].Name)
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	x1, _ := testCurves()
	runID, err := st.Save(RunMetadata{Name: "layout"}, x1)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	data, err := os.ReadFile(filepath.Join(runDir, "curve.csv"))
	if err != nil {
		t.Fatalf("curve.csv not created: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "r,force_x1" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "0.8,-0.1" {
		t.Errorf("unexpected first row %q", lines[1])
	}
}

func TestStoreExport(t *testing.T) {
	st := New(t.TempDir())
	x1, x2 := testCurves()
	runID, err := st.Save(RunMetadata{Name: "export", Command: "curve"}, x1, x2)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var csvBuf bytes.Buffer
	if err := st.ExportCSV(runID, &csvBuf); err != nil {
		t.Fatalf("export csv failed: %v", err)
	}
	if !strings.HasPrefix(csvBuf.String(), "r,force_x1,force_x2\n") {
		t.Errorf("unexpected csv %q", csvBuf.String())
	}

	var jsonBuf bytes.Buffer
	if err := st.ExportJSON(runID, &jsonBuf); err != nil {
		t.Fatalf("export json failed: %v", err)
	}
	var data ExportData
	if err := json.Unmarshal(jsonBuf.Bytes(), &data); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if data.Meta.ID != runID || len(data.Curves) != 2 {
		t.Errorf("unexpected export %+v", data)
	}
}

func TestLoadCurves_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runDir := filepath.Join(tmpDir, "broken")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "curve.csv"), []byte("r,energy\n1.0,abc\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.LoadCurves("broken"); err == nil {
		t.Error("expected error for malformed value")
	}
}
