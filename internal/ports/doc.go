// Package ports defines the interfaces (ports) that connect the reduction
// core to infrastructure adapters.
//
// Ports are the boundaries between the pipeline and the outside world: they
// state what the core needs from FITS files, the metadata table, and the
// record store without saying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [CalibrationSource]: loads the four per-exposure calibration tables
//   - [MetadataSource]: looks up per-observation astrophysical metadata
//   - [RecordStore]: persists and retrieves calibrated records atomically
//
// The pipeline (internal/reduce) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// FITS, CSV, and file-system backends. This separation keeps the numeric
// core testable with in-memory fakes.
package ports
