package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Book is one inventory row, keyed by normalized ISBN. It is created on the
// first successful scan of an ISBN and only ever mutated by the ingestion
// pipeline (scan counters) and the enrichment worker (metadata columns).
// Authors and Categories are stored as JSON text columns.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID                int        `bun:",pk,nullzero" json:"-"`
	CreatedAt         time.Time  `json:"-"`
	UpdatedAt         time.Time  `json:"-"`
	ISBN              string     `bun:",nullzero" json:"isbn"`
	Title             string     `json:"title"`
	Subtitle          *string    `json:"subtitle,omitempty"`
	Authors           []string   `json:"authors"`
	Publisher         *string    `json:"publisher,omitempty"`
	PublishedDate     *string    `json:"published_date,omitempty"`
	Description       *string    `json:"description,omitempty"`
	PageCount         *int       `json:"page_count,omitempty"`
	Categories        []string   `json:"categories,omitempty"`
	Language          *string    `json:"language,omitempty"`
	ThumbnailURL      *string    `json:"thumbnail_url,omitempty"`
	SmallThumbnailURL *string    `json:"small_thumbnail_url,omitempty"`
	AverageRating     *float64   `json:"average_rating,omitempty"`
	RatingsCount      *int       `json:"ratings_count,omitempty"`
	QuantityAvailable int        `json:"quantity_available"`
	ScanCount         int        `json:"scan_count"`
	FirstScannedAt    time.Time  `json:"first_scanned_at"`
	LastScannedAt     time.Time  `json:"last_scanned_at"`
	EnrichedAt        *time.Time `json:"enriched_at,omitempty"`
}

// Enriched reports whether a metadata lookup has ever succeeded for this
// book. Rows with EnrichedAt unset are stubs created when the provider was
// unavailable on first scan.
func (b *Book) Enriched() bool {
	return b.EnrichedAt != nil
}
