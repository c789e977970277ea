// Package isbn normalizes and validates scanned ISBN barcodes.
package isbn

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrInvalid is returned when a scanned code is not a well-formed ISBN-10 or
// ISBN-13 after normalization.
var ErrInvalid = errors.New("invalid ISBN")

// Type represents the kind of ISBN a code normalized to.
type Type string

const (
	TypeISBN10 Type = "isbn_10"
	TypeISBN13 Type = "isbn_13"
)

// Normalize strips whitespace, hyphens, and the ISBN prefix from a scanned
// code and uppercases it. Nothing else is removed; any other character
// survives so validation rejects it.
func Normalize(value string) string {
	value = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "ISBN:")
	value = strings.TrimPrefix(value, "ISBN")

	var result strings.Builder
	for _, r := range value {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// Validate normalizes a scanned code and checks that it is format-valid: ten
// characters where the last may be an X check digit, or thirteen digits. It
// does not verify check digits; barcodes that pass a scanner are format-valid
// far more often than they are checksum-valid, and strictness is a policy
// decision. See ValidateStrict.
func Validate(value string) (string, error) {
	normalized := Normalize(value)

	switch len(normalized) {
	case 10:
		for i, r := range normalized {
			if unicode.IsDigit(r) {
				continue
			}
			if r == 'X' && i == 9 {
				continue
			}
			return "", errors.WithStack(ErrInvalid)
		}
		return normalized, nil
	case 13:
		for _, r := range normalized {
			if !unicode.IsDigit(r) {
				return "", errors.WithStack(ErrInvalid)
			}
		}
		return normalized, nil
	default:
		return "", errors.WithStack(ErrInvalid)
	}
}

// ValidateStrict is Validate plus check digit verification. Scanner noise can
// produce codes that look like ISBNs but fail the checksum, so strict mode
// rejects those before they reach the server.
func ValidateStrict(value string) (string, error) {
	normalized, err := Validate(value)
	if err != nil {
		return "", err
	}

	switch len(normalized) {
	case 10:
		if !checksum10(normalized) {
			return "", errors.WithStack(ErrInvalid)
		}
	case 13:
		if !checksum13(normalized) {
			return "", errors.WithStack(ErrInvalid)
		}
	}
	return normalized, nil
}

// DetectType reports whether a normalized code is an ISBN-10 or ISBN-13.
// The code must already be format-valid.
func DetectType(normalized string) Type {
	if len(normalized) == 10 {
		return TypeISBN10
	}
	return TypeISBN13
}

// checksum10 validates an ISBN-10 check digit.
// ISBN-10 uses modulo 11 with weights 10,9,8,7,6,5,4,3,2,1.
func checksum10(isbn string) bool {
	var sum int
	for i, r := range isbn {
		var digit int
		if r == 'X' {
			digit = 10
		} else {
			digit = int(r - '0')
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// checksum13 validates an ISBN-13 check digit.
// ISBN-13 uses alternating weights of 1 and 3.
func checksum13(isbn string) bool {
	var sum int
	for i, r := range isbn {
		digit := int(r - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return sum%10 == 0
}
