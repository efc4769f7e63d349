// Package potential provides analytic pair potentials and the cutoff
// functions used to shape them.
//
//   - [IdealBrittleSolid]: truncated quadratic bond used in fracture studies
//   - [SplineTaper]: smooth C1 decay to zero at the outer radius
//   - [Step]: hard cut, for comparison runs only
//   - [Cutoffed]: product of a potential and a cutoff function
//
// All types implement [Pair] and are safe for concurrent use.
//
// # Reference cutoffs
//
// [RealisticCutoff] gives realistic crack propagation and stable energy
// minimization. [ReferenceMatchCutoff] reproduces the behavior of an external
// reference implementation and is not meant for production runs.
package potential
