// Package tasks runs playlist exports with real-time progress reporting.
//
// # Core Operations
//
//  1. [ExportEngine.Export] : Write one playlist, resolved by id or name, in a single format
//  2. [ExportEngine.BulkExport] : Write every playlist concurrently and record the outcome in export_manifest.json
//
// Bulk exports use a worker pool fed by a rate-limited dispatcher. Markdown exports download custom cover images,
// so the limiter keeps a large library from hammering image hosts. A failed playlist is recorded in the
// manifest and does not stop the others.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
