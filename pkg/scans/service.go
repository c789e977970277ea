package scans

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfscan/shelfscan/pkg/config"
	"github.com/shelfscan/shelfscan/pkg/errcodes"
	"github.com/shelfscan/shelfscan/pkg/metadata"
	"github.com/shelfscan/shelfscan/pkg/models"
	"github.com/uptrace/bun"
)

type ListScanEventsOptions struct {
	Limit     *int
	Offset    *int
	ISBN      *string
	ScannerID *string
}

// SubmitResult is the outcome of one scan submission. Book is nil when
// metadata enrichment failed; Warning carries the reason and the scan event
// is recorded regardless.
type SubmitResult struct {
	ScanID  string
	Book    *models.Book
	Warning string
}

type Service struct {
	db       *bun.DB
	resolver metadata.Provider
	policy   *config.Policy
}

func NewService(db *bun.DB, resolver metadata.Provider, policy *config.Policy) *Service {
	return &Service{db: db, resolver: resolver, policy: policy}
}

// Submit records a scan of a normalized ISBN. The scan event write is the one
// guarantee: it happens first and is never rolled back by enrichment
// failures. The book row is then upserted with an atomic increment so
// concurrent submissions of the same ISBN never lose a count.
func (svc *Service) Submit(ctx context.Context, isbn, scannerID string) (*SubmitResult, error) {
	now := time.Now()

	event := &models.ScanEvent{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ISBN:      isbn,
		ScannerID: scannerID,
		ScannedAt: now,
	}
	_, err := svc.db.NewInsert().Model(event).Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "insert scan event")
	}

	result := &SubmitResult{ScanID: event.ID}

	book, err := svc.retrieveBook(ctx, isbn)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	needsEnrichment := book == nil || !book.Enriched() || svc.policy.RefreshOnScan

	var md *metadata.BookMetadata
	var warning string
	if needsEnrichment {
		md, err = svc.resolver.Lookup(ctx, isbn)
		if err != nil {
			md = nil
			if errors.Is(err, metadata.ErrNotFound) {
				warning = "no metadata found for this ISBN; scan was recorded"
			} else {
				warning = "metadata lookup failed; scan was recorded"
			}
			logger.FromContext(ctx).Err(err).Warn("enrichment failed", logger.Data{"isbn": isbn})
		}
	}

	if err := svc.upsertBook(ctx, isbn, now, md); err != nil {
		return nil, errors.WithStack(err)
	}

	book, err = svc.retrieveBook(ctx, isbn)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if book.Enriched() {
		// A failed refresh of an already-enriched book keeps the existing
		// metadata and is not surfaced as a warning.
		result.Book = book
		return result, nil
	}

	// The scan landed but the book is a stub, so the response carries a
	// warning and no book payload.
	result.Warning = warning
	return result, nil
}

// upsertBook inserts or atomically increments the book row for an ISBN. The
// increment happens in SQL, not read-modify-write, so two concurrent
// submissions both land. Metadata columns are only touched when a fresh
// lookup succeeded.
func (svc *Service) upsertBook(ctx context.Context, isbn string, now time.Time, md *metadata.BookMetadata) error {
	book := &models.Book{
		CreatedAt:         now,
		UpdatedAt:         now,
		ISBN:              isbn,
		Authors:           []string{},
		QuantityAvailable: 1,
		ScanCount:         1,
		FirstScannedAt:    now,
		LastScannedAt:     now,
	}

	q := svc.db.NewInsert().
		Model(book).
		On("CONFLICT (isbn) DO UPDATE").
		Set("scan_count = b.scan_count + 1").
		Set("last_scanned_at = EXCLUDED.last_scanned_at").
		Set("updated_at = EXCLUDED.updated_at")

	if md != nil {
		applyMetadata(book, md, now)
		q = q.
			Set("title = EXCLUDED.title").
			Set("subtitle = EXCLUDED.subtitle").
			Set("authors = EXCLUDED.authors").
			Set("publisher = EXCLUDED.publisher").
			Set("published_date = EXCLUDED.published_date").
			Set("description = EXCLUDED.description").
			Set("page_count = EXCLUDED.page_count").
			Set("categories = EXCLUDED.categories").
			Set("language = EXCLUDED.language").
			Set("thumbnail_url = EXCLUDED.thumbnail_url").
			Set("small_thumbnail_url = EXCLUDED.small_thumbnail_url").
			Set("average_rating = EXCLUDED.average_rating").
			Set("ratings_count = EXCLUDED.ratings_count").
			Set("enriched_at = EXCLUDED.enriched_at")
	}

	_, err := q.Exec(ctx)
	return errors.Wrap(err, "upsert book")
}

func applyMetadata(book *models.Book, md *metadata.BookMetadata, now time.Time) {
	book.Title = md.Title
	book.Subtitle = md.Subtitle
	if md.Authors != nil {
		book.Authors = md.Authors
	}
	book.Publisher = md.Publisher
	book.PublishedDate = md.PublishedDate
	book.Description = md.Description
	book.PageCount = md.PageCount
	book.Categories = md.Categories
	book.Language = md.Language
	book.ThumbnailURL = md.ThumbnailURL
	book.SmallThumbnailURL = md.SmallThumbnailURL
	book.AverageRating = md.AverageRating
	book.RatingsCount = md.RatingsCount
	book.EnrichedAt = &now
}

// Enrich retries the metadata lookup for a book and fills in its columns on
// success. Used by the background worker to backfill stubs whose lookup
// failed at scan time.
func (svc *Service) Enrich(ctx context.Context, book *models.Book) error {
	md, err := svc.resolver.Lookup(ctx, book.ISBN)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	applyMetadata(book, md, now)
	book.UpdatedAt = now

	_, err = svc.db.NewUpdate().
		Model(book).
		Column(
			"title", "subtitle", "authors", "publisher", "published_date",
			"description", "page_count", "categories", "language",
			"thumbnail_url", "small_thumbnail_url", "average_rating",
			"ratings_count", "enriched_at", "updated_at",
		).
		WherePK().
		Exec(ctx)
	return errors.Wrap(err, "update book")
}

func (svc *Service) retrieveBook(ctx context.Context, isbn string) (*models.Book, error) {
	book := &models.Book{}
	err := svc.db.NewSelect().
		Model(book).
		Where("b.isbn = ?", isbn).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.WithStack(err)
	}
	return book, nil
}

// RetrieveScanEvent returns one scan event by ID.
func (svc *Service) RetrieveScanEvent(ctx context.Context, id string) (*models.ScanEvent, error) {
	event := &models.ScanEvent{}
	err := svc.db.NewSelect().
		Model(event).
		Where("se.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Scan event")
		}
		return nil, errors.WithStack(err)
	}
	return event, nil
}

// ListScanEvents lists scan events, most recent first.
func (svc *Service) ListScanEvents(ctx context.Context, opts ListScanEventsOptions) ([]*models.ScanEvent, int, error) {
	var events []*models.ScanEvent

	q := svc.db.NewSelect().
		Model(&events).
		Order("se.scanned_at DESC")

	if opts.ISBN != nil {
		q = q.Where("se.isbn = ?", *opts.ISBN)
	}
	if opts.ScannerID != nil {
		q = q.Where("se.scanner_id = ?", *opts.ScannerID)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return events, total, nil
}

// CountScanEvents returns the number of scan events recorded for an ISBN.
func (svc *Service) CountScanEvents(ctx context.Context, isbn string) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.ScanEvent)(nil)).
		Where("isbn = ?", isbn).
		Count(ctx)
	return count, errors.WithStack(err)
}
