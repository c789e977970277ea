package scans

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shelfscan/shelfscan/pkg/config"
	"github.com/shelfscan/shelfscan/pkg/database"
	"github.com/shelfscan/shelfscan/pkg/metadata"
	"github.com/shelfscan/shelfscan/pkg/migrations"
	"github.com/shelfscan/shelfscan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// Every :memory: connection is its own database; keep the pool at one.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testPolicy() *config.Policy {
	return config.NewForTest().Policy
}

type stubProvider struct {
	mu  sync.Mutex
	md  *metadata.BookMetadata
	err error

	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Lookup(_ context.Context, _ string) (*metadata.BookMetadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.md, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func testMetadata() *metadata.BookMetadata {
	return &metadata.BookMetadata{
		Title:     "The Go Programming Language",
		Authors:   []string{"Alan A. A. Donovan", "Brian W. Kernighan"},
		Publisher: pointerutil.String("Addison-Wesley"),
		PageCount: pointerutil.Int(380),
	}
}

func TestSubmit_EnrichesNewBook(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	provider := &stubProvider{md: testMetadata()}
	svc := NewService(db, provider, testPolicy())

	result, err := svc.Submit(ctx, "9780134190440", "shelf-a")
	require.NoError(t, err)
	require.NotEmpty(t, result.ScanID)
	assert.Empty(t, result.Warning)

	require.NotNil(t, result.Book)
	assert.Equal(t, "9780134190440", result.Book.ISBN)
	assert.Equal(t, "The Go Programming Language", result.Book.Title)
	assert.Equal(t, []string{"Alan A. A. Donovan", "Brian W. Kernighan"}, result.Book.Authors)
	assert.Equal(t, 1, result.Book.ScanCount)
	assert.True(t, result.Book.Enriched())

	event := &models.ScanEvent{}
	err = db.NewSelect().Model(event).Where("id = ?", result.ScanID).Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9780134190440", event.ISBN)
	assert.Equal(t, "shelf-a", event.ScannerID)
}

func TestSubmit_ProviderFailureStillRecordsScan(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	provider := &stubProvider{err: errors.New("upstream timeout")}
	svc := NewService(db, provider, testPolicy())

	result, err := svc.Submit(ctx, "9780134190440", "shelf-a")
	require.NoError(t, err)
	assert.Nil(t, result.Book)
	assert.Equal(t, "metadata lookup failed; scan was recorded", result.Warning)

	// The scan event survives the enrichment failure.
	count, err := db.NewSelect().Model((*models.ScanEvent)(nil)).Where("isbn = ?", "9780134190440").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A stub book row is still created so the scan counts somewhere.
	book := &models.Book{}
	err = db.NewSelect().Model(book).Where("isbn = ?", "9780134190440").Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, book.ScanCount)
	assert.False(t, book.Enriched())
}

func TestSubmit_NotFoundWarning(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	provider := &stubProvider{err: metadata.ErrNotFound}
	svc := NewService(db, provider, testPolicy())

	result, err := svc.Submit(ctx, "9780134190440", "shelf-a")
	require.NoError(t, err)
	assert.Nil(t, result.Book)
	assert.Equal(t, "no metadata found for this ISBN; scan was recorded", result.Warning)
}

func TestSubmit_RepeatScanIncrementsCount(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	provider := &stubProvider{md: testMetadata()}
	svc := NewService(db, provider, testPolicy())

	first, err := svc.Submit(ctx, "9780134190440", "shelf-a")
	require.NoError(t, err)
	second, err := svc.Submit(ctx, "9780134190440", "shelf-b")
	require.NoError(t, err)
	assert.NotEqual(t, first.ScanID, second.ScanID)

	require.NotNil(t, second.Book)
	assert.Equal(t, 2, second.Book.ScanCount)

	events, err := db.NewSelect().Model((*models.ScanEvent)(nil)).Where("isbn = ?", "9780134190440").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, events)

	books, err := db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, books)

	// The book is already enriched, so the second scan skips the lookup.
	assert.Equal(t, 1, provider.callCount())
}

func TestSubmit_RefreshOnScan(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	provider := &stubProvider{md: testMetadata()}
	policy := testPolicy()
	policy.RefreshOnScan = true
	svc := NewService(db, provider, policy)

	_, err := svc.Submit(ctx, "9780134190440", "shelf-a")
	require.NoError(t, err)

	// A failed refresh keeps the existing metadata and stays quiet.
	provider.err = errors.New("upstream timeout")
	result, err := svc.Submit(ctx, "9780134190440", "shelf-a")
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	require.NotNil(t, result.Book)
	assert.Equal(t, 2, result.Book.ScanCount)
	assert.Equal(t, 2, provider.callCount())
}

func TestSubmit_RetriesStubEnrichment(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	provider := &stubProvider{err: errors.New("upstream timeout")}
	svc := NewService(db, provider, testPolicy())

	_, err := svc.Submit(ctx, "9780134190440", "shelf-a")
	require.NoError(t, err)

	// The book is a stub, so the next scan looks the metadata up again.
	provider.mu.Lock()
	provider.err = nil
	provider.md = testMetadata()
	provider.mu.Unlock()

	result, err := svc.Submit(ctx, "9780134190440", "shelf-a")
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	require.NotNil(t, result.Book)
	assert.Equal(t, "The Go Programming Language", result.Book.Title)
	assert.Equal(t, 2, result.Book.ScanCount)
}

func TestSubmit_ConcurrentSameISBN(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// A file-backed database so every connection sees the same data; with
	// :memory: each connection gets its own database.
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "concurrency.sqlite")

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)

	provider := &stubProvider{md: testMetadata()}
	svc := NewService(db, provider, cfg.Policy)

	const submitters = 2
	var wg sync.WaitGroup
	errs := make([]error, submitters)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, "9780134190440", "shelf-a")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// Both submissions land on the same row and neither increment is lost.
	var books []*models.Book
	err = db.NewSelect().Model(&books).Where("isbn = ?", "9780134190440").Scan(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 2, books[0].ScanCount)

	events, err := db.NewSelect().Model((*models.ScanEvent)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, events)
}
