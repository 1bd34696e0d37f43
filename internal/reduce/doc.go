// Package reduce implements the per-exposure reduction pipeline: decoding
// the sparse-encoded response matrix, folding in the effective area,
// converting raw counts into calibrated differential flux, harmonizing the
// background units of the two detector families, and joining the external
// observation metadata.
//
// The numeric kernels (DecodeMatrix, Threshold, FoldEffectiveArea, Flux,
// EffectiveCounts, SolidAngle) are pure functions over domain values. The
// Pipeline type wires them together with the infrastructure ports for one
// end-to-end single-pass reduction of one exposure.
package reduce
