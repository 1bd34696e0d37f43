// Package domain contains the core domain entities and value objects for
// specred.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (FITS I/O, file system, logging)
// and contains only the data model of a single detector exposure.
//
// # Entities
//
//   - [Spectrum]: per-channel science counts plus the exposure scalars
//   - [EnergyGrid]: input and output energy bin edges from the response file
//   - [GroupEncoding]: the sparse group encoding of the response matrix
//   - [ResponseMatrix]: the dense, area-folded detector response
//   - [RawBackground]: quiescent background values as stored on disk
//   - [ObservationMetadata]: joined per-observation astrophysical scalars
//   - [CalibratedRecord]: the write-once output of a full reduction
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
