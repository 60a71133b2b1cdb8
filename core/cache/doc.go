// Package cache provides the key-value store used for the change-detection
// snapshot and reload bookkeeping.
//
// Two backends are available:
//
//   - memory: an in-process map with per-key expiry. The default, and what
//     tests inject.
//   - redis: a shared store for multi-instance deployments.
//
// Both implement the Store interface with get/set/expiry semantics, so the
// ingestion monitor never depends on process-wide mutable state.
package cache
