package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfig_ReRunsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	require.NoError(t, os.WriteFile(path, []byte("species: X\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchConfig(ctx, path, func() error {
			calls <- struct{}{}
			return nil
		})
	}()

	// The watcher registers asynchronously; keep touching the file until
	// a run is observed.
	tick := time.NewTicker(2 * watchDebounce)
	defer tick.Stop()
	deadline := time.After(5 * time.Second)
wait:
	for {
		select {
		case <-calls:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("species: Y\n"), 0o644))
		case <-deadline:
			t.Fatal("no re-run after config write")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatchRequiresConfig(t *testing.T) {
	_, _, err := execute(t, "curve", "--watch", "--no-save", "--data", t.TempDir())
	assert.ErrorIs(t, err, errWatchNeedsConfig)
}
