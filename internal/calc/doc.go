// Package calc provides energy/force calculators for dimer geometries.
//
// Every calculator implements [Calculator]:
//
//   - [Pair]: analytic evaluation of a [potential.Pair]
//   - [Exec]: delegates to an external simulation engine over stdin/stdout
//   - [Instrumented]: records call counts and latency in Prometheus
//   - [Cached]: memoizes results in a Badger store keyed by geometry
//
// Wrappers compose, so an expensive engine is usually run as
// Instrumented(Cached(Exec)).
package calc
