package ingest_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"claims-tracker/core/cache"
	"claims-tracker/feature/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	db := newTestDB(t)
	dir := t.TempDir()
	cfg := ingest.Config{
		DataDir:         dir,
		ClaimListFile:   "claim_list_data.csv",
		ClaimDetailFile: "claim_detail_data.csv",
	}
	svc := ingest.NewService(db, cache.NewMemoryStore(), zap.NewNop(), cfg)

	app := fiber.New()
	ingest.NewHandler(svc).RegisterRoutes(app)
	return app, dir
}

func TestHandleStatus(t *testing.T) {
	app, dir := setupTestApp(t)
	writeFile(t, dir, "claim_list_data.csv", claimListCSV)

	resp, err := app.Test(httptest.NewRequest("GET", "/data/status", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 1, body["total_files"])
	assert.EqualValues(t, 0, body["total_claims"])
}

func TestHandleCheckChanges(t *testing.T) {
	app, dir := setupTestApp(t)
	writeFile(t, dir, "claim_list_data.csv", claimListCSV)

	resp, err := app.Test(httptest.NewRequest("GET", "/data/check", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["changes_detected"])

	resp, err = app.Test(httptest.NewRequest("GET", "/data/check", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["changes_detected"])
}

func TestHandleForceReload(t *testing.T) {
	app, dir := setupTestApp(t)
	writeFile(t, dir, "claim_list_data.csv", claimListCSV)
	writeFile(t, dir, "claim_detail_data.csv", claimDetailCSV)

	resp, err := app.Test(httptest.NewRequest("POST", "/data/reload", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 2, body["claims_loaded"])
	assert.EqualValues(t, 1, body["details_loaded"])

	// The status endpoint reflects the loaded rows.
	resp, err = app.Test(httptest.NewRequest("GET", "/data/status", nil))
	require.NoError(t, err)
	var status map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.EqualValues(t, 2, status["total_claims"])
}
