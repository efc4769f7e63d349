// Package geom provides the two-atom geometry probed by potential sweeps.
//
// A [Geometry] holds a species label, per-atom positions, and a cubic cell
// edge. Sweeps require the dimer shape produced by [NewDimer]: exactly two
// atoms with the fixed-cell constraint in effect, so periodic images never
// interact and the cell never rescales during an evaluation.
//
//	g := geom.NewDimer("Si", 1.0, 50.0)
//	if err := g.ValidateDimer(); err != nil {
//	    return err
//	}
package geom
