package calc

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/dimerlab/internal/geom"
)

const metricsNamespace = "dimerlab"

type Metrics struct {
	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers calculator metrics with reg. A nil reg gets a private
// registry, which keeps tests independent of the global one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "calculator",
			Name:      "calls_total",
			Help:      "Calculator evaluations by calculator, operation and result",
		}, []string{"calculator", "op", "result"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "calculator",
			Name:      "duration_seconds",
			Help:      "Calculator evaluation latency",
			Buckets:   []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
		}, []string{"calculator", "op"}),
	}
}

// Instrumented counts and times every call to the wrapped calculator.
type Instrumented struct {
	next    Calculator
	name    string
	metrics *Metrics
}

func NewInstrumented(next Calculator, name string, m *Metrics) *Instrumented {
	return &Instrumented{next: next, name: name, metrics: m}
}

func (c *Instrumented) Unwrap() Calculator { return c.next }

func (c *Instrumented) Energy(ctx context.Context, g *geom.Geometry) (float64, error) {
	start := time.Now()
	e, err := c.next.Energy(ctx, g)
	c.observe("energy", start, err)
	return e, err
}

func (c *Instrumented) Forces(ctx context.Context, g *geom.Geometry) ([]geom.Vec3, error) {
	start := time.Now()
	f, err := c.next.Forces(ctx, g)
	c.observe("forces", start, err)
	return f, err
}

func (c *Instrumented) observe(op string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.metrics.Calls.WithLabelValues(c.name, op, result).Inc()
	c.metrics.Duration.WithLabelValues(c.name, op).Observe(time.Since(start).Seconds())
}
