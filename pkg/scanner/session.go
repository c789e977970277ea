package scanner

import (
	"context"

	"github.com/shelfscan/shelfscan/pkg/config"
	"github.com/shelfscan/shelfscan/pkg/isbn"
)

// Session owns the per-device pipeline from raw barcode detection to a
// rendered result: validate, debounce, submit. One session per physical
// scanner; sessions never share state.
type Session struct {
	scannerID string
	policy    *config.Policy
	debouncer *Debouncer
	client    *Client
}

func NewSession(scannerID string, client *Client, policy *config.Policy) *Session {
	return &Session{
		scannerID: scannerID,
		policy:    policy,
		debouncer: NewDebouncer(policy.DebounceWindow),
		client:    client,
	}
}

// Detect feeds a raw barcode payload through the pipeline. A nil result
// means the detection was suppressed by the debouncer and nothing was
// submitted; every other path returns a terminal Result.
func (s *Session) Detect(ctx context.Context, raw string) *Result {
	validate := isbn.Validate
	if s.policy.StrictChecksum {
		validate = isbn.ValidateStrict
	}
	code, err := validate(raw)
	if err != nil {
		// Invalid detections never consume the debounce slot.
		return failure("not a valid ISBN", "INVALID_ISBN", false)
	}

	if !s.debouncer.Accept(code) {
		return nil
	}
	defer s.debouncer.Complete()

	ctx, cancel := context.WithTimeout(ctx, s.policy.SubmitTimeout)
	defer cancel()

	return s.client.Submit(ctx, code, s.scannerID)
}
