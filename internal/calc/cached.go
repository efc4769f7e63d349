package calc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/san-kum/dimerlab/internal/geom"
)

// Cached memoizes calculator results in Badger. Keys are the exact geometry,
// so only bit-identical positions hit. Failures are never cached, and a
// failed cache write is logged without failing the evaluation.
type Cached struct {
	// Logger receives cache write failures; slog.Default() when nil.
	Logger *slog.Logger

	next      Calculator
	db        *badger.DB
	namespace string

	hits   atomic.Int64
	misses atomic.Int64
}

// OpenCache opens (or creates) a Badger store at dir. An empty dir gives an
// in-memory store.
func OpenCache(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache %q: %w", dir, err)
	}
	return db, nil
}

// NewCached wraps next. namespace separates entries from different
// calculators sharing one store.
func NewCached(next Calculator, db *badger.DB, namespace string) *Cached {
	return &Cached{next: next, db: db, namespace: namespace}
}

func (c *Cached) Unwrap() Calculator { return c.next }

func (c *Cached) Stats() (hits, misses int64) { return c.hits.Load(), c.misses.Load() }

func (c *Cached) Energy(ctx context.Context, g *geom.Geometry) (float64, error) {
	key, err := c.key(g, "energy")
	if err != nil {
		return 0, err
	}
	var resp EngineResponse
	if ok, err := c.get(key, &resp); err != nil {
		return 0, err
	} else if ok && resp.Energy != nil {
		c.hits.Add(1)
		return *resp.Energy, nil
	}
	c.misses.Add(1)

	e, err := c.next.Energy(ctx, g)
	if err != nil {
		return 0, err
	}
	c.store(key, EngineResponse{Energy: &e})
	return e, nil
}

func (c *Cached) Forces(ctx context.Context, g *geom.Geometry) ([]geom.Vec3, error) {
	key, err := c.key(g, "forces")
	if err != nil {
		return nil, err
	}
	var resp EngineResponse
	if ok, err := c.get(key, &resp); err != nil {
		return nil, err
	} else if ok && len(resp.Forces) == g.NumAtoms() {
		c.hits.Add(1)
		return resp.Forces, nil
	}
	c.misses.Add(1)

	f, err := c.next.Forces(ctx, g)
	if err != nil {
		return nil, err
	}
	c.store(key, EngineResponse{Forces: f})
	return f, nil
}

func (c *Cached) key(g *geom.Geometry, want string) ([]byte, error) {
	body, err := json.Marshal(EngineRequest{
		Species:   g.Species,
		Cell:      g.Cell,
		Positions: g.Positions,
		Want:      want,
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(c.namespace+"/"), body...), nil
}

func (c *Cached) get(key []byte, out *EngineResponse) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache read: %w", err)
	}
	return true, nil
}

func (c *Cached) store(key []byte, resp EngineResponse) {
	if err := c.put(key, resp); err != nil {
		c.logger().Warn("calculator cache", slog.String("namespace", c.namespace), slog.Any("err", err))
	}
}

func (c *Cached) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Cached) put(key []byte, resp EngineResponse) error {
	val, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	}); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}
