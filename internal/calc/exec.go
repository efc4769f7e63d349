package calc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"golang.org/x/time/rate"

	"github.com/san-kum/dimerlab/internal/geom"
)

var ErrEngine = errors.New("calc: external engine failure")

// Exec runs an external simulation engine once per evaluation. The engine
// reads an EngineRequest as JSON on stdin and writes an EngineResponse as
// JSON on stdout.
type Exec struct {
	Command string
	Args    []string
	Env     []string
	// Limiter, if set, throttles engine launches.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

type EngineRequest struct {
	Species   string      `json:"species"`
	Cell      float64     `json:"cell"`
	Positions []geom.Vec3 `json:"positions"`
	Want      string      `json:"want"`
}

type EngineResponse struct {
	Energy *float64    `json:"energy,omitempty"`
	Forces []geom.Vec3 `json:"forces,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (c *Exec) Energy(ctx context.Context, g *geom.Geometry) (float64, error) {
	resp, err := c.call(ctx, g, "energy")
	if err != nil {
		return 0, err
	}
	if resp.Energy == nil {
		return 0, fmt.Errorf("%w: response has no energy", ErrEngine)
	}
	return *resp.Energy, nil
}

func (c *Exec) Forces(ctx context.Context, g *geom.Geometry) ([]geom.Vec3, error) {
	resp, err := c.call(ctx, g, "forces")
	if err != nil {
		return nil, err
	}
	if len(resp.Forces) != g.NumAtoms() {
		return nil, fmt.Errorf("%w: expected %d force vectors, got %d", ErrEngine, g.NumAtoms(), len(resp.Forces))
	}
	return resp.Forces, nil
}

func (c *Exec) call(ctx context.Context, g *geom.Geometry, want string) (*EngineResponse, error) {
	req, err := json.Marshal(EngineRequest{
		Species:   g.Species,
		Cell:      g.Cell,
		Positions: g.Positions,
		Want:      want,
	})
	if err != nil {
		return nil, err
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(req)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger().Debug("engine call", slog.String("command", c.Command), slog.String("want", want))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrEngine, c.Command, err, bytes.TrimSpace(stderr.Bytes()))
	}

	var resp EngineResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrEngine, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrEngine, resp.Error)
	}
	return &resp, nil
}

func (c *Exec) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
