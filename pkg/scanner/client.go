package scanner

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shelfscan/shelfscan/pkg/models"
)

// Client submits scans to the ingestion endpoint. It never retries on its
// own; a retry is the user scanning again.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type submitRequest struct {
	ISBN      string `json:"isbn"`
	ScannerID string `json:"scanner_id"`
}

type submitResponse struct {
	Success bool         `json:"success"`
	ScanID  string       `json:"scan_id"`
	Book    *models.Book `json:"book"`
	Warning string       `json:"warning"`
	Error   string       `json:"error"`
	Code    string       `json:"code"`
}

// Submit posts one scan and maps the response envelope to a terminal Result.
// Transport failures come back as a retryable failure rather than an error;
// every detection the debouncer accepted ends in an explicit Result.
func (c *Client) Submit(ctx context.Context, isbn, scannerID string) *Result {
	body, err := json.Marshal(submitRequest{ISBN: isbn, ScannerID: scannerID})
	if err != nil {
		return failure(err.Error(), "UNKNOWN", false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/scan", bytes.NewReader(body))
	if err != nil {
		return failure(err.Error(), "UNKNOWN", false)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure("network error", "NETWORK_ERROR", true)
	}
	defer resp.Body.Close()

	var payload submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return failure(errors.Wrap(err, "decode response").Error(), "UNKNOWN", false)
	}

	if payload.Success {
		if payload.Warning != "" {
			return partialSuccess(payload.Warning)
		}
		return success(payload.Book)
	}

	switch payload.Code {
	case "INVALID_ISBN":
		return failure("not a valid ISBN", payload.Code, false)
	case "MISSING_ISBN":
		return failure("ISBN is required", payload.Code, false)
	}

	message := payload.Error
	if message == "" {
		message = resp.Status
	}
	code := payload.Code
	if code == "" {
		code = "UNKNOWN"
	}
	return failure(message, code, false)
}
