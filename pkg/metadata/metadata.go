// Package metadata resolves ISBNs to bibliographic metadata via external
// providers.
package metadata

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a provider has no record for an ISBN. Any
// other error from Lookup is a provider failure (network, quota, 5xx) and is
// treated as transient by callers.
var ErrNotFound = errors.New("book metadata not found")

// BookMetadata is the provider-neutral enrichment result. Pointer fields
// distinguish "not set" from "empty".
type BookMetadata struct {
	Title             string
	Subtitle          *string
	Authors           []string
	Publisher         *string
	PublishedDate     *string
	Description       *string
	PageCount         *int
	Categories        []string
	Language          *string
	ThumbnailURL      *string
	SmallThumbnailURL *string
	AverageRating     *float64
	RatingsCount      *int
}

// Provider looks up bibliographic metadata for a normalized ISBN.
type Provider interface {
	// Name returns the human-readable name of the provider.
	Name() string

	// Lookup returns the metadata for an ISBN, ErrNotFound when the
	// provider has no record, or any other error on provider failure.
	Lookup(ctx context.Context, isbn string) (*BookMetadata, error)
}
