package security

import (
	"regexp"
	"strings"
)

const DefaultMaxMessageLength = 10000

type ValidationCode string

const (
	ValidationOK        ValidationCode = ""
	ValidationEmpty     ValidationCode = "EMPTY"
	ValidationTooLong   ValidationCode = "TOO_LONG"
	ValidationMalicious ValidationCode = "MALICIOUS_CONTENT"
)

// blocklist covers the XSS/injection shapes we refuse outright.
// Heuristic by nature; extend the slice rather than the call sites.
var blocklistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script\b[^>]*>(.*?)</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)vbscript:`),
	regexp.MustCompile(`(?i)onload=`),
	regexp.MustCompile(`(?i)onerror=`),
	regexp.MustCompile(`(?i)onclick=`),
}

// InputValidator rejects malformed, oversized, or malicious messages
// before they can reach the provider.
type InputValidator struct {
	maxLength int
}

func NewInputValidator(maxLength int) *InputValidator {
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}
	return &InputValidator{maxLength: maxLength}
}

func (v *InputValidator) MaxLength() int {
	return v.maxLength
}

// ValidateMessage checks emptiness, then length, then the pattern
// blocklist. A message exactly at the max length passes. The length
// check deliberately runs before the pattern scan so oversized input
// is rejected without scanning it.
func (v *InputValidator) ValidateMessage(message string) (bool, ValidationCode) {
	if strings.TrimSpace(message) == "" {
		return false, ValidationEmpty
	}

	if len(message) > v.maxLength {
		return false, ValidationTooLong
	}

	for _, pattern := range blocklistPatterns {
		if pattern.MatchString(message) {
			return false, ValidationMalicious
		}
	}

	return true, ValidationOK
}

// Sanitize strips ASCII control characters except newline and tab,
// then trims surrounding whitespace. Never fails.
func Sanitize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
