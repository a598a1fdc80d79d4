package security

import "regexp"

const RedactionPlaceholder = "[REDACTED]"

// RedactRule is one pattern→replacement step. Rules run in order so
// new PII shapes can be appended without touching call sites.
type RedactRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

func defaultRedactRules() []RedactRule {
	return []RedactRule{
		{
			Name:        "email",
			Pattern:     regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
			Replacement: RedactionPlaceholder,
		},
		{
			Name:        "phone",
			Pattern:     regexp.MustCompile(`(\+\d{1,2}\s?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`),
			Replacement: RedactionPlaceholder,
		},
		{
			Name:        "ssn",
			Pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Replacement: RedactionPlaceholder,
		},
	}
}

// Redactor replaces PII-shaped substrings in text echoed back to
// clients. Disabled instances pass text through untouched.
type Redactor struct {
	rules   []RedactRule
	enabled bool
}

func NewRedactor(enabled bool) *Redactor {
	return &Redactor{
		rules:   defaultRedactRules(),
		enabled: enabled,
	}
}

func (r *Redactor) Enabled() bool {
	return r.enabled
}

// AddRule appends a custom rule, applied after the defaults.
func (r *Redactor) AddRule(rule RedactRule) {
	r.rules = append(r.rules, rule)
}

func (r *Redactor) Redact(text string) string {
	if !r.enabled || text == "" {
		return text
	}

	redacted := text
	for _, rule := range r.rules {
		redacted = rule.Pattern.ReplaceAllString(redacted, rule.Replacement)
	}
	return redacted
}
