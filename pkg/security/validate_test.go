package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessage_LengthBoundary(t *testing.T) {
	v := NewInputValidator(100)

	ok, code := v.ValidateMessage(strings.Repeat("a", 100))
	assert.True(t, ok)
	assert.Equal(t, ValidationOK, code)

	ok, code = v.ValidateMessage(strings.Repeat("a", 101))
	assert.False(t, ok)
	assert.Equal(t, ValidationTooLong, code)
}

func TestValidateMessage_Empty(t *testing.T) {
	v := NewInputValidator(0)

	for _, msg := range []string{"", "   ", "\n\t"} {
		ok, code := v.ValidateMessage(msg)
		assert.False(t, ok, "message %q", msg)
		assert.Equal(t, ValidationEmpty, code)
	}
}

func TestValidateMessage_Blocklist(t *testing.T) {
	v := NewInputValidator(0)

	malicious := []string{
		"<script>alert(1)</script>",
		"<SCRIPT src=x>payload</SCRIPT>",
		"click javascript:alert(1)",
		"vbscript:msgbox",
		"<img onload=hack()>",
		"<img onerror=hack()>",
		"<a onclick=hack()>",
	}
	for _, msg := range malicious {
		ok, code := v.ValidateMessage(msg)
		assert.False(t, ok, "message %q", msg)
		assert.Equal(t, ValidationMalicious, code, "message %q", msg)
	}
}

func TestValidateMessage_BenignContent(t *testing.T) {
	v := NewInputValidator(0)

	benign := []string{
		"How did I sleep this week?",
		"My script for the play is ready",
		"I clicked the button and nothing happened",
		"переведи это сообщение",
	}
	for _, msg := range benign {
		ok, code := v.ValidateMessage(msg)
		assert.True(t, ok, "message %q", msg)
		assert.Equal(t, ValidationOK, code)
	}
}

func TestValidateMessage_OversizedSkipsPatternScan(t *testing.T) {
	v := NewInputValidator(10)

	// oversized AND malicious still reports the length failure
	ok, code := v.ValidateMessage("<script>alert(1)</script>")
	assert.False(t, ok)
	assert.Equal(t, ValidationTooLong, code)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello world", Sanitize("  hello world  "))
	assert.Equal(t, "line1\nline2\ttabbed", Sanitize("line1\nline2\ttabbed"))
	assert.Equal(t, "clean", Sanitize("cl\x00ean\x07"))
	assert.Equal(t, "", Sanitize("\x01\x02\x03"))
}
