package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	Details  string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	te.Details = err.Details
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// MissingISBN returns a 400 error for scan submissions without an isbn field.
func MissingISBN() error {
	return &Error{
		http.StatusBadRequest,
		"ISBN is required.",
		"MISSING_ISBN",
		"",
	}
}

// InvalidISBN returns a 400 error for codes that don't normalize to a
// well-formed ISBN-10 or ISBN-13.
func InvalidISBN(code string) error {
	return &Error{
		http.StatusBadRequest,
		"Not a valid ISBN.",
		"INVALID_ISBN",
		fmt.Sprintf("%q is not a valid ISBN-10 or ISBN-13", code),
	}
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		"NOT_FOUND",
		"",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"UNSUPPORTED_MEDIA_TYPE",
		"",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Unknown Parameter %q", param),
		"UNKNOWN_PARAMETER",
		"",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"VALIDATION_TYPE_ERROR",
		"",
	}
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"VALIDATION_ERROR",
		"",
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"MALFORMED_PAYLOAD",
		"",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"EMPTY_REQUEST_BODY",
		"",
	}
}
