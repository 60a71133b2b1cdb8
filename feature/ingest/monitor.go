package ingest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"claims-tracker/core/cache"

	"go.uber.org/zap"
)

const (
	// snapshotKey is the cache key holding the path→fingerprint snapshot.
	snapshotKey = "csv_file_hashes"
	// lastReloadKey is the cache key holding the last successful reload time.
	lastReloadKey = "last_data_reload"
	// snapshotTTL bounds how long a stale snapshot is trusted. After the
	// window passes without a check, every file reads as changed again.
	snapshotTTL = time.Hour
)

// Fingerprint identifies a file's content state. The triple is compared
// field by field so a degenerate hash alone cannot mask a real change.
type Fingerprint struct {
	Hash     string `json:"hash"`
	Modified int64  `json:"modified"`
	Size     int64  `json:"size"`
}

// Snapshot maps file paths to fingerprints.
type Snapshot map[string]Fingerprint

// FileStatus describes one source file for the status endpoint.
type FileStatus struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// DataStatus summarizes the source directory for the status endpoint.
type DataStatus struct {
	TotalFiles   int          `json:"total_files"`
	LastModified *time.Time   `json:"last_modified"`
	Files        []FileStatus `json:"files"`
}

// Monitor watches the data directory for CSV changes.
type Monitor struct {
	dataDir string
	store   cache.Store
	logger  *zap.Logger
}

// NewMonitor creates a monitor over dataDir with the given snapshot store.
func NewMonitor(dataDir string, store cache.Store, logger *zap.Logger) *Monitor {
	return &Monitor{dataDir: dataDir, store: store, logger: logger}
}

// fileFingerprint computes the md5/mtime/size fingerprint of one file.
func fileFingerprint(path string) (Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fingerprint{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	sum := md5.Sum(data)
	return Fingerprint{
		Hash:     hex.EncodeToString(sum[:]),
		Modified: info.ModTime().UnixNano(),
		Size:     info.Size(),
	}, nil
}

// scan fingerprints every CSV file in the data directory. A missing
// directory is treated as zero files; unreadable files are logged and
// skipped so one bad file cannot block change detection.
func (m *Monitor) scan() Snapshot {
	snapshot := make(Snapshot)

	paths, err := filepath.Glob(filepath.Join(m.dataDir, "*.csv"))
	if err != nil {
		return snapshot
	}
	for _, path := range paths {
		fp, err := fileFingerprint(path)
		if err != nil {
			m.logger.Error("Failed to read source file", zap.String("file", path), zap.Error(err))
			continue
		}
		snapshot[path] = fp
	}
	return snapshot
}

// CheckForChanges compares the current directory state against the cached
// snapshot and returns every changed, added, or removed path. The cached
// snapshot is replaced unconditionally before returning, even when no
// changes are found.
func (m *Monitor) CheckForChanges(ctx context.Context) ([]string, Snapshot, error) {
	current := m.scan()

	cached := make(Snapshot)
	if raw, ok, err := m.store.Get(ctx, snapshotKey); err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot: %w", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			// A corrupt snapshot is discarded; every file reads as new.
			m.logger.Warn("Discarding unreadable snapshot", zap.Error(err))
			cached = make(Snapshot)
		}
	}

	var changed []string
	for path, fp := range current {
		prev, seen := cached[path]
		if !seen {
			m.logger.Info("New file detected", zap.String("file", path))
			changed = append(changed, path)
			continue
		}
		if fp.Hash != prev.Hash || fp.Modified != prev.Modified || fp.Size != prev.Size {
			m.logger.Info("Change detected", zap.String("file", path))
			changed = append(changed, path)
		}
	}
	for path := range cached {
		if _, ok := current[path]; !ok {
			m.logger.Info("File deleted", zap.String("file", path))
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)

	raw, err := json.Marshal(current)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := m.store.Set(ctx, snapshotKey, string(raw), snapshotTTL); err != nil {
		return nil, nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	return changed, current, nil
}

// DataStatus reports the current state of the source directory.
func (m *Monitor) DataStatus() *DataStatus {
	snapshot := m.scan()

	status := &DataStatus{
		TotalFiles: len(snapshot),
		Files:      make([]FileStatus, 0, len(snapshot)),
	}

	var latest time.Time
	paths := make([]string, 0, len(snapshot))
	for path := range snapshot {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fp := snapshot[path]
		modified := time.Unix(0, fp.Modified).UTC()
		if modified.After(latest) {
			latest = modified
		}
		status.Files = append(status.Files, FileStatus{
			Name:     filepath.Base(path),
			Size:     fp.Size,
			Modified: modified,
		})
	}
	if !latest.IsZero() {
		status.LastModified = &latest
	}
	return status
}

// LastReload returns the last successful reload time recorded in the cache,
// if one is known.
func (m *Monitor) LastReload(ctx context.Context) (*time.Time, error) {
	raw, ok, err := m.store.Get(ctx, lastReloadKey)
	if err != nil || !ok {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, nil
	}
	return &t, nil
}

// recordReload stores the reload completion time with the snapshot TTL.
func (m *Monitor) recordReload(ctx context.Context, at time.Time) error {
	return m.store.Set(ctx, lastReloadKey, at.Format(time.RFC3339Nano), snapshotTTL)
}
