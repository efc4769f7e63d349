package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dimerlab/internal/converge"
	"github.com/san-kum/dimerlab/internal/elastic"
	"github.com/san-kum/dimerlab/internal/geom"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestElasticJSON(t *testing.T) {
	out, _, err := execute(t, "elastic", "--json", "--k", "2")
	require.NoError(t, err)

	var c elastic.Constants
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.InDelta(t, 2*5*math.Sqrt(3)/4, c.E, 1e-12)
	assert.Equal(t, 0.25, c.Nu)
}

func TestCurveListExport(t *testing.T) {
	data := t.TempDir()

	out, stderr, err := execute(t, "curve", "--data", data, "--distances", "0.8,1.0,1.2", "--metrics")
	require.NoError(t, err)
	require.Contains(t, out, "run id: ")
	assert.Contains(t, stderr, "dimerlab_calculator_calls_total")
	runID := strings.TrimSpace(out[strings.LastIndex(out, "run id: ")+len("run id: "):])

	out, _, err = execute(t, "list", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "ibs(k=1, a=1, rc=1.2)")

	out, _, err = execute(t, "export-csv", runID, "--data", data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "r,energy,force_x1,force_x2", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0.8,0,-0.0999"), lines[1])

	path := filepath.Join(t.TempDir(), "run.json")
	_, _, err = execute(t, "export-json", runID, "--data", data, "-o", path)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), runID)

	out, _, err = execute(t, "export-svg", runID, "--data", data)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "<path "))

	out, _, err = execute(t, "show", runID, "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "force_x2 vs r")
	assert.Contains(t, out, "equilibrium_r")

	out, _, err = execute(t, "show", runID, "--data", data, "--from", "0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "energy vs r, r in [1, 1.2]")
	assert.NotContains(t, out, "r in [0.8")

	out, _, err = execute(t, "show", runID, "--data", data, "--from", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "energy: no points in [2, +Inf]")
}

func TestCurveExploratory(t *testing.T) {
	out, _, err := execute(t, "curve", "--data", t.TempDir(), "--exploratory", "--no-save")
	require.NoError(t, err)
	assert.Contains(t, out, "energy vs r, r in [0.5, 5]")
}

func TestCurveRejectsSmallCell(t *testing.T) {
	_, _, err := execute(t, "curve", "--data", t.TempDir(), "--cell", "2", "--no-save",
		"--distances", "0.8,1.0,1.5,1.8")
	assert.ErrorIs(t, err, geom.ErrMalformedGeometry)
}

func TestCurveNoSave(t *testing.T) {
	data := t.TempDir()
	out, _, err := execute(t, "curve", "--data", data, "--points", "20", "--no-save", "--workers", "3")
	require.NoError(t, err)
	assert.NotContains(t, out, "run id")

	out, _, err = execute(t, "list", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "no runs found")
}

func TestCutoff_IdealBrittleSolid(t *testing.T) {
	_, _, err := execute(t, "cutoff", "--data", t.TempDir(), "--no-save")
	assert.True(t, errors.Is(err, converge.ErrNotConverged), "got %v", err)
}

func TestConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.hjson")
	require.NoError(t, os.WriteFile(path, []byte("{\n  potential: {\n    kind: ibs\n    rc: 1.01\n  }\n}\n"), 0644))

	out, _, err := execute(t, "elastic", "--json", "--config", path, "--a", "0.5", "--rc", "0.6")
	require.NoError(t, err)
	var c elastic.Constants
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.InDelta(t, 5*math.Sqrt(3)/4/0.5, c.E, 1e-12)
}

func TestPresets(t *testing.T) {
	out, _, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "realistic")
	assert.Contains(t, out, "1.01")

	_, _, err = execute(t, "elastic", "--preset", "nonexistent")
	assert.ErrorContains(t, err, "unknown preset")
}

func TestInvalidFlags(t *testing.T) {
	_, _, err := execute(t, "curve", "--no-save", "--rc", "0.5")
	assert.Error(t, err)

	_, _, err = execute(t, "elastic", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")

	_, _, err = execute(t, "elastic", "--profile", "gpu")
	assert.ErrorContains(t, err, "unknown profile mode")
}
