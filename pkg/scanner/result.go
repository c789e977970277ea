package scanner

import (
	"github.com/shelfscan/shelfscan/pkg/models"
)

type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomePartialSuccess Outcome = "partial_success"
	OutcomeFailure        Outcome = "failure"
)

// Result is the terminal state of one submission, rendered to the user.
// Book is only set on full success. Retryable means a re-scan may succeed
// without the user correcting anything.
type Result struct {
	Outcome   Outcome
	Book      *models.Book
	Message   string
	Code      string
	Retryable bool
}

func success(book *models.Book) *Result {
	return &Result{Outcome: OutcomeSuccess, Book: book}
}

func partialSuccess(message string) *Result {
	return &Result{Outcome: OutcomePartialSuccess, Message: message, Code: "PROVIDER_FAILURE"}
}

func failure(message, code string, retryable bool) *Result {
	return &Result{Outcome: OutcomeFailure, Message: message, Code: code, Retryable: retryable}
}
