package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/leadchat/pkg/domain"
)

// Every host passes visitor input through here before it reaches a session:
// option values and session IDs with SanitizeInput, lead forms with
// SanitizeLead.

var (
	// DefaultMaxInputSize is 4KB, far above any name or email.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "LEADCHAT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return.
// Oversized input is rejected, never truncated.
func SanitizeInput(input string) (string, error) {
	if limit := MaxInputSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !isSafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

// SanitizeLead cleans every lead field and folds line breaks and tabs into
// single spaces. The fields end up in relay subjects and mail headers, which
// must stay on one line.
func SanitizeLead(fields domain.LeadFields) (domain.LeadFields, error) {
	for _, f := range []*string{&fields.Name, &fields.Email, &fields.Company, &fields.Phone} {
		clean, err := SanitizeInput(*f)
		if err != nil {
			return domain.LeadFields{}, err
		}
		*f = strings.Join(strings.Fields(clean), " ")
	}
	return fields, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// MaxInputSize returns the active limit, honoring EnvMaxInputSize when it
// holds a positive integer.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
