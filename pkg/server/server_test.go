package server

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shelfscan/shelfscan/pkg/config"
	"github.com/shelfscan/shelfscan/pkg/metadata"
	"github.com/shelfscan/shelfscan/pkg/migrations"
	"github.com/shelfscan/shelfscan/pkg/scans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// Every :memory: connection is its own database; keep the pool at one.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	cfg := config.NewForTest()
	scanService := scans.NewService(db, metadata.NewResolverWithProviders(), cfg.Policy)

	srv, err := New(cfg, db, scanService)
	require.NoError(t, err)

	return srv.Handler
}

func TestServer_UnknownRoute(t *testing.T) {
	handler := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	payload := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "NOT_FOUND", payload["code"])
}

func TestServer_ScanRouteWired(t *testing.T) {
	handler := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"scanner_id":"shelf-a"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	payload := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "MISSING_ISBN", payload["code"])
}
