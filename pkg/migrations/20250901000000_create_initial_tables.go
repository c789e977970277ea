package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				isbn TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				subtitle TEXT,
				authors TEXT NOT NULL DEFAULT '[]',
				publisher TEXT,
				published_date TEXT,
				description TEXT,
				page_count INTEGER,
				categories TEXT,
				language TEXT,
				thumbnail_url TEXT,
				small_thumbnail_url TEXT,
				average_rating REAL,
				ratings_count INTEGER,
				quantity_available INTEGER NOT NULL DEFAULT 0,
				scan_count INTEGER NOT NULL DEFAULT 0,
				first_scanned_at TIMESTAMPTZ NOT NULL,
				last_scanned_at TIMESTAMPTZ NOT NULL,
				enriched_at TIMESTAMPTZ
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		// The upsert that keeps scan_count in step with scan_events conflicts
		// on this index.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_books_isbn ON books (isbn)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_books_enriched_at ON books (enriched_at)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE scan_events (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				isbn TEXT NOT NULL,
				scanner_id TEXT NOT NULL,
				scanned_at TIMESTAMPTZ NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_scan_events_isbn ON scan_events (isbn)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_scan_events_scanned_at ON scan_events (scanned_at)`)
		return errors.WithStack(err)
	}
	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE scan_events`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`DROP TABLE books`)
		return errors.WithStack(err)
	}
	Migrations.MustRegister(up, down)
}
