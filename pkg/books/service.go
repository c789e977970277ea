package books

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shelfscan/shelfscan/pkg/errcodes"
	"github.com/shelfscan/shelfscan/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID   *int
	ISBN *string
}

type ListBooksOptions struct {
	Limit    *int
	Offset   *int
	Search   *string
	Enriched *bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.ISBN != nil {
		q = q.Where("b.isbn = ?", *opts.ISBN)
	}

	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Book")
	} else if err != nil {
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.last_scanned_at DESC")

	if opts.Search != nil {
		search := "%" + *opts.Search + "%"
		q = q.Where("(b.title LIKE ? OR b.isbn LIKE ? OR b.authors LIKE ?)", search, search, search)
	}
	if opts.Enriched != nil {
		if *opts.Enriched {
			q = q.Where("b.enriched_at IS NOT NULL")
		} else {
			q = q.Where("b.enriched_at IS NULL")
		}
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}
