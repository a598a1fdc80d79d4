package security

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact_Email(t *testing.T) {
	r := NewRedactor(true)

	out := r.Redact("contact me at jane.doe+test@example.co.uk please")
	assert.Equal(t, "contact me at [REDACTED] please", out)
	assert.NotContains(t, out, "@")
}

func TestRedact_Phone(t *testing.T) {
	r := NewRedactor(true)

	for _, text := range []string{
		"call 555-123-4567",
		"call (555) 123-4567",
		"call +1 555 123 4567",
		"call 555.123.4567",
	} {
		out := r.Redact(text)
		assert.Equal(t, "call [REDACTED]", out, "input %q", text)
	}
}

func TestRedact_SSN(t *testing.T) {
	r := NewRedactor(true)

	out := r.Redact("my ssn is 123-45-6789 ok")
	assert.Equal(t, "my ssn is [REDACTED] ok", out)
}

func TestRedact_MultipleOccurrences(t *testing.T) {
	r := NewRedactor(true)

	out := r.Redact("a@b.com and c@d.org wrote 123-45-6789")
	assert.Equal(t, "[REDACTED] and [REDACTED] wrote [REDACTED]", out)
}

func TestRedact_Disabled(t *testing.T) {
	r := NewRedactor(false)

	text := "mail a@b.com ssn 123-45-6789"
	assert.Equal(t, text, r.Redact(text))
}

func TestRedact_NoPII(t *testing.T) {
	r := NewRedactor(true)

	text := "How did I sleep this week?"
	assert.Equal(t, text, r.Redact(text))
}

func TestRedact_CustomRule(t *testing.T) {
	r := NewRedactor(true)
	r.AddRule(RedactRule{
		Name:        "order-id",
		Pattern:     regexp.MustCompile(`ORD-\d{6}`),
		Replacement: RedactionPlaceholder,
	})

	assert.Equal(t, "order [REDACTED] shipped", r.Redact("order ORD-123456 shipped"))
}
