package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"claims-tracker/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// FetchResult summarizes one bucket pull.
type FetchResult struct {
	Downloaded []string `json:"downloaded"`
	Skipped    []string `json:"skipped"`
}

// Fetcher downloads claim CSV drops from an object storage bucket into the
// local data directory where the monitor and loader pick them up.
type Fetcher struct {
	client  storage.Client
	bucket  string
	prefix  string
	dataDir string
	logger  *zap.Logger
}

// NewFetcher creates a fetcher for the given bucket and data directory.
func NewFetcher(client storage.Client, bucket, prefix, dataDir string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		dataDir: dataDir,
		logger:  logger,
	}
}

// Fetch lists the bucket and downloads every CSV object into the data
// directory. Objects without a .csv extension are skipped. The download is
// written to a temp file first and renamed so the monitor never fingerprints
// a half-written file.
func (f *Fetcher) Fetch(ctx context.Context) (*FetchResult, error) {
	ok, err := f.client.BucketExists(ctx, f.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", f.bucket, err)
	}
	if !ok {
		return nil, fmt.Errorf("bucket %q does not exist", f.bucket)
	}

	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	result := &FetchResult{}
	objects := f.client.ListObjects(ctx, f.bucket, minio.ListObjectsOptions{
		Prefix:    f.prefix,
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return result, fmt.Errorf("failed to list bucket %q: %w", f.bucket, obj.Err)
		}
		name := path.Base(obj.Key)
		if !strings.EqualFold(filepath.Ext(name), ".csv") {
			result.Skipped = append(result.Skipped, obj.Key)
			continue
		}
		if err := f.download(ctx, obj.Key, filepath.Join(f.dataDir, name)); err != nil {
			return result, err
		}
		f.logger.Info("downloaded source file",
			zap.String("object", obj.Key),
			zap.String("file", name),
			zap.Int64("size", obj.Size))
		result.Downloaded = append(result.Downloaded, name)
	}
	return result, nil
}

func (f *Fetcher) download(ctx context.Context, key, dest string) error {
	reader, err := f.client.GetObject(ctx, f.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer reader.Close()

	tmp, err := os.CreateTemp(f.dataDir, ".fetch-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to download object %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move %q into place: %w", key, err)
	}
	return nil
}
