package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shelfscan/shelfscan/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, requests *atomic.Int64) *Session {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"scan_id":"abc","book":{"isbn":"9780134670942","title":"The Pragmatic Programmer"}}`))
	}))
	t.Cleanup(srv.Close)

	policy := config.NewForTest().Policy
	policy.DebounceWindow = 50 * time.Millisecond

	return NewSession("shelf-a", NewClient(srv.URL, time.Second), policy)
}

func TestSessionDetect_SubmitsValidCode(t *testing.T) {
	t.Parallel()
	session := newTestSession(t, nil)

	result := session.Detect(context.Background(), "978-0-13-467094-2")
	require.NotNil(t, result)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	require.NotNil(t, result.Book)
	assert.Equal(t, "The Pragmatic Programmer", result.Book.Title)
}

func TestSessionDetect_InvalidCodeNeverSubmits(t *testing.T) {
	t.Parallel()
	var requests atomic.Int64
	session := newTestSession(t, &requests)

	result := session.Detect(context.Background(), "12345")
	require.NotNil(t, result)
	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Equal(t, "INVALID_ISBN", result.Code)
	assert.Equal(t, int64(0), requests.Load())

	// A rejected detection does not consume the debounce slot.
	result = session.Detect(context.Background(), "9780134670942")
	require.NotNil(t, result)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, int64(1), requests.Load())
}

func TestSessionDetect_DebouncesRepeatScans(t *testing.T) {
	t.Parallel()
	var requests atomic.Int64
	session := newTestSession(t, &requests)

	require.NotNil(t, session.Detect(context.Background(), "9780134670942"))
	assert.Nil(t, session.Detect(context.Background(), "9780134670942"), "repeat inside the window is suppressed")
	assert.Equal(t, int64(1), requests.Load())

	time.Sleep(80 * time.Millisecond)
	require.NotNil(t, session.Detect(context.Background(), "9780134670942"))
	assert.Equal(t, int64(2), requests.Load())
}
