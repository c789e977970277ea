package books

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/shelfscan/shelfscan/pkg/binder"
	"github.com/shelfscan/shelfscan/pkg/config"
	"github.com/shelfscan/shelfscan/pkg/errcodes"
	"github.com/shelfscan/shelfscan/pkg/scans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestServer(t *testing.T, db *bun.DB) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	scanService := scans.NewService(db, nil, config.NewForTest().Policy)
	RegisterRoutes(e.Group("/api"), db, scanService)

	return e
}

func performRequest(t *testing.T, e *echo.Echo, path string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, strings.NewReader(""))
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	payload := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return rr.Code, payload
}

func TestListBooksHandler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	now := time.Now()
	insertTestBook(t, db, "9780134190440", "The Go Programming Language", now, true)
	insertTestBook(t, db, "9781491941959", "Go in Practice", now.Add(-time.Hour), true)

	e := newTestServer(t, db)
	code, payload := performRequest(t, e, "/api/books?limit=1")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), payload["total"])
	books, ok := payload["books"].([]interface{})
	require.True(t, ok)
	require.Len(t, books, 1)
	book := books[0].(map[string]interface{})
	assert.Equal(t, "9780134190440", book["isbn"])
}

func TestRetrieveBookHandler(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	insertTestBook(t, db, "9780134190440", "The Go Programming Language", time.Now(), true)

	e := newTestServer(t, db)

	code, payload := performRequest(t, e, "/api/books/9780134190440")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "The Go Programming Language", payload["title"])

	code, payload = performRequest(t, e, "/api/books/9781491941959")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", payload["code"])

	// Malformed codes read as an unknown book, not a validation error.
	code, _ = performRequest(t, e, "/api/books/not-an-isbn")
	assert.Equal(t, http.StatusNotFound, code)
}
