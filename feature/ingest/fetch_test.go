package ingest_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claims-tracker/core/storage/mocks"
	"claims-tracker/feature/ingest"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func objectChannel(objects ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objects))
	for _, obj := range objects {
		ch <- obj
	}
	close(ch)
	return ch
}

func TestFetcher_Fetch(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("DownloadsCSVObjects", func(t *testing.T) {
		dir := t.TempDir()
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "claims-data").Return(true, nil)
		client.On("ListObjects", mock.Anything, "claims-data", mock.Anything).Return(objectChannel(
			minio.ObjectInfo{Key: "drops/claim_list_data.csv", Size: 18},
			minio.ObjectInfo{Key: "drops/readme.txt", Size: 4},
		))
		client.On("GetObject", mock.Anything, "claims-data", "drops/claim_list_data.csv", mock.Anything).
			Return(io.NopCloser(strings.NewReader("id|status\n1|Denied\n")), nil)

		fetcher := ingest.NewFetcher(client, "claims-data", "drops/", dir, logger)
		result, err := fetcher.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"claim_list_data.csv"}, result.Downloaded)
		assert.Equal(t, []string{"drops/readme.txt"}, result.Skipped)

		data, err := os.ReadFile(filepath.Join(dir, "claim_list_data.csv"))
		require.NoError(t, err)
		assert.Equal(t, "id|status\n1|Denied\n", string(data))

		client.AssertExpectations(t)
	})

	t.Run("MissingBucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "claims-data").Return(false, nil)

		fetcher := ingest.NewFetcher(client, "claims-data", "", t.TempDir(), logger)
		_, err := fetcher.Fetch(ctx)
		assert.Error(t, err)
	})

	t.Run("ListErrorSurfaces", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "claims-data").Return(true, nil)
		client.On("ListObjects", mock.Anything, "claims-data", mock.Anything).Return(objectChannel(
			minio.ObjectInfo{Err: errors.New("access denied")},
		))

		fetcher := ingest.NewFetcher(client, "claims-data", "", t.TempDir(), logger)
		_, err := fetcher.Fetch(ctx)
		assert.Error(t, err)
	})

	t.Run("NoTempFileLeftBehind", func(t *testing.T) {
		dir := t.TempDir()
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "claims-data").Return(true, nil)
		client.On("ListObjects", mock.Anything, "claims-data", mock.Anything).Return(objectChannel(
			minio.ObjectInfo{Key: "claim_list_data.csv", Size: 5},
		))
		client.On("GetObject", mock.Anything, "claims-data", "claim_list_data.csv", mock.Anything).
			Return(nil, errors.New("connection reset"))

		fetcher := ingest.NewFetcher(client, "claims-data", "", dir, logger)
		_, err := fetcher.Fetch(ctx)
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
