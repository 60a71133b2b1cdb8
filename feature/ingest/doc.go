// Package ingest implements the CSV-to-relational ingestion pipeline.
//
// It loads pipe-delimited claim CSV files into the database and keeps the
// database in step with the files on disk:
//
//  1. Parser: converts delimited rows into typed records, coercing money
//     and date fields to null on blank/"nan"/unparseable input and rejecting
//     only rows whose primary key is missing or invalid.
//  2. Monitor: fingerprints every source file (md5 + mtime + size) and
//     compares against a cached snapshot to detect changed, added, or
//     removed files.
//  3. BulkLoader: batch-inserts parsed rows with ignore-on-conflict
//     semantics, in overwrite or append mode.
//  4. Orchestrator: runs check-then-reload cycles, loading both record
//     kinds inside a single transaction so a failed reload leaves the
//     tables untouched. Overlapping triggers serialize via singleflight.
//
// # HTTP Endpoints
//
//   - GET  /data/status : Source file inventory plus database row counts.
//   - GET  /data/check  : Run change detection against the cached snapshot.
//   - POST /data/reload : Force a full reload of both tables.
package ingest
