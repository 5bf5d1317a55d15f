// Package tasks runs long playlist operations with progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes many stored playlists to disk with a fixed pool of workers. Each playlist is
// loaded with its tracks, written through the formatter package, and recorded in a JSON manifest. One
// playlist failing does not stop the others.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Updates use select with default, so a slow or
// missing reader never blocks the export.
package tasks
