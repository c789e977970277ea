package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooks is a Provider backed by the Google Books volumes API.
type GoogleBooks struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Provider = (*GoogleBooks)(nil)

// GoogleBooksOption customizes a GoogleBooks provider.
type GoogleBooksOption func(*GoogleBooks)

// WithGoogleBooksBaseURL overrides the API base URL, mainly for tests.
func WithGoogleBooksBaseURL(url string) GoogleBooksOption {
	return func(p *GoogleBooks) {
		p.baseURL = url
	}
}

// WithGoogleBooksAPIKey sets an API key. Unauthenticated requests work with
// a lower quota.
func WithGoogleBooksAPIKey(key string) GoogleBooksOption {
	return func(p *GoogleBooks) {
		p.apiKey = key
	}
}

// NewGoogleBooks creates a Google Books provider with a bounded request
// timeout and a 1 rps rate limit.
func NewGoogleBooks(timeout time.Duration, opts ...GoogleBooksOption) *GoogleBooks {
	p := &GoogleBooks{
		baseURL:    googleBooksBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GoogleBooks) Name() string {
	return "Google Books"
}

// googleBooksResponse matches the Google Books API response structure.
type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Subtitle      string   `json:"subtitle"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
			PageCount     int      `json:"pageCount"`
			Categories    []string `json:"categories"`
			Language      string   `json:"language"`
			AverageRating float64  `json:"averageRating"`
			RatingsCount  int      `json:"ratingsCount"`
			ImageLinks    struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (p *GoogleBooks) Lookup(ctx context.Context, isbn string) (*BookMetadata, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	url := fmt.Sprintf("%s/volumes?q=isbn:%s", p.baseURL, isbn)
	if p.apiKey != "" {
		url = fmt.Sprintf("%s&key=%s", url, p.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "google books request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("google books returned status %d", resp.StatusCode)
	}

	var result googleBooksResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decoding google books response")
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return nil, errors.WithStack(ErrNotFound)
	}

	// Use the first item; Google orders by relevance and an ISBN query
	// rarely matches more than one volume.
	vol := result.Items[0].VolumeInfo

	md := &BookMetadata{
		Title:   vol.Title,
		Authors: vol.Authors,
	}
	if vol.Subtitle != "" {
		md.Subtitle = &vol.Subtitle
	}
	if vol.Publisher != "" {
		md.Publisher = &vol.Publisher
	}
	if vol.PublishedDate != "" {
		md.PublishedDate = &vol.PublishedDate
	}
	if vol.Description != "" {
		md.Description = &vol.Description
	}
	if vol.PageCount > 0 {
		md.PageCount = &vol.PageCount
	}
	if len(vol.Categories) > 0 {
		md.Categories = vol.Categories
	}
	if vol.Language != "" {
		md.Language = &vol.Language
	}
	if vol.AverageRating > 0 {
		md.AverageRating = &vol.AverageRating
	}
	if vol.RatingsCount > 0 {
		md.RatingsCount = &vol.RatingsCount
	}
	if thumb := vol.ImageLinks.Thumbnail; thumb != "" {
		// Remove the zoom parameter for a higher quality image.
		thumb = strings.Replace(thumb, "zoom=1", "zoom=0", 1)
		md.ThumbnailURL = &thumb
	}
	if small := vol.ImageLinks.SmallThumbnail; small != "" {
		md.SmallThumbnailURL = &small
	}

	return md, nil
}
