package metadata

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"
)

const openLibraryBaseURL = "https://openlibrary.org"

// OpenLibrary is a Provider backed by the Open Library books API.
type OpenLibrary struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Provider = (*OpenLibrary)(nil)

// OpenLibraryOption customizes an OpenLibrary provider.
type OpenLibraryOption func(*OpenLibrary)

// WithOpenLibraryBaseURL overrides the API base URL, mainly for tests.
func WithOpenLibraryBaseURL(url string) OpenLibraryOption {
	return func(p *OpenLibrary) {
		p.baseURL = url
	}
}

// NewOpenLibrary creates an Open Library provider with a bounded request
// timeout and a 1 rps rate limit.
func NewOpenLibrary(timeout time.Duration, opts ...OpenLibraryOption) *OpenLibrary {
	p := &OpenLibrary{
		baseURL:    openLibraryBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenLibrary) Name() string {
	return "Open Library"
}

// openLibraryBook matches one entry of the jscmd=data response.
type openLibraryBook struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Cover struct {
		Large string `json:"large"`
		Small string `json:"small"`
	} `json:"cover"`
	Subjects []struct {
		Name string `json:"name"`
	} `json:"subjects"`
	NumberOfPages int    `json:"number_of_pages"`
	PublishDate   string `json:"publish_date"`
}

func (p *OpenLibrary) Lookup(ctx context.Context, isbn string) (*BookMetadata, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	bibkey := "ISBN:" + isbn
	url := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data", p.baseURL, bibkey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "open library request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("open library returned status %d", resp.StatusCode)
	}

	// The response is a map keyed by bibkey; a miss is an empty object.
	result := map[string]openLibraryBook{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decoding open library response")
	}

	book, ok := result[bibkey]
	if !ok {
		return nil, errors.WithStack(ErrNotFound)
	}

	md := &BookMetadata{
		Title: book.Title,
	}
	if book.Subtitle != "" {
		md.Subtitle = &book.Subtitle
	}
	for _, author := range book.Authors {
		md.Authors = append(md.Authors, author.Name)
	}
	if len(book.Publishers) > 0 && book.Publishers[0].Name != "" {
		md.Publisher = &book.Publishers[0].Name
	}
	if book.PublishDate != "" {
		md.PublishedDate = &book.PublishDate
	}
	if book.NumberOfPages > 0 {
		md.PageCount = &book.NumberOfPages
	}
	for _, subject := range book.Subjects {
		md.Categories = append(md.Categories, subject.Name)
	}
	if book.Cover.Large != "" {
		md.ThumbnailURL = &book.Cover.Large
	}
	if book.Cover.Small != "" {
		md.SmallThumbnailURL = &book.Cover.Small
	}

	return md, nil
}
