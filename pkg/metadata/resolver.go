package metadata

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shelfscan/shelfscan/pkg/config"
)

// Resolver fans an ISBN lookup across providers in priority order. The first
// hit wins; a provider failure falls through to the next provider so a single
// flaky upstream doesn't take enrichment down.
type Resolver struct {
	providers []Provider
}

// NewResolver builds a resolver from the configured provider names. Unknown
// names are skipped.
func NewResolver(policy *config.Policy) *Resolver {
	providers := make([]Provider, 0, len(policy.Providers))
	for _, name := range policy.Providers {
		switch name {
		case "googlebooks":
			opts := []GoogleBooksOption{}
			if policy.GoogleBooksAPIKey != "" {
				opts = append(opts, WithGoogleBooksAPIKey(policy.GoogleBooksAPIKey))
			}
			providers = append(providers, NewGoogleBooks(policy.ProviderTimeout, opts...))
		case "openlibrary":
			providers = append(providers, NewOpenLibrary(policy.ProviderTimeout))
		}
	}
	return &Resolver{providers: providers}
}

// NewResolverWithProviders builds a resolver from explicit providers, mainly
// for tests and the worker.
func NewResolverWithProviders(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

var _ Provider = (*Resolver)(nil)

func (r *Resolver) Name() string {
	return "resolver"
}

// Lookup queries each provider in order. All providers reporting NotFound
// yields ErrNotFound; otherwise the last provider failure is returned.
func (r *Resolver) Lookup(ctx context.Context, isbn string) (*BookMetadata, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	misses := 0
	for _, provider := range r.providers {
		start := time.Now()
		md, err := provider.Lookup(ctx, isbn)
		if err == nil {
			return md, nil
		}
		if errors.Is(err, ErrNotFound) {
			misses++
			continue
		}
		log.Err(err).Warn("metadata provider failed", logger.Data{
			"provider": provider.Name(),
			"isbn":     isbn,
			"duration": time.Since(start).String(),
		})
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	if misses > 0 || len(r.providers) > 0 {
		return nil, errors.WithStack(ErrNotFound)
	}
	return nil, errors.New("no metadata providers configured")
}
