package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalizer_Get(t *testing.T) {
	var langs []string
	for k := range ALLOW_LANG {
		langs = append(langs, k)
	}
	l := NewLocalizer(langs...)

	assert.Equal(t, "Message cannot be empty or whitespace only", l.Get("en", ERROR_MESSAGE_EMPTY))
	assert.Equal(t, "Too many requests. Please wait a moment.", l.Get("en", ERROR_TOO_MANY_REQUESTS))
	assert.NotEqual(t, ERROR_MESSAGE_EMPTY, l.Get("zh-CN", ERROR_MESSAGE_EMPTY))
}

func TestLocalizer_FallsBackToID(t *testing.T) {
	l := NewLocalizer("en")

	assert.Equal(t, "no.such.key", l.Get("en", "no.such.key"))
	assert.Equal(t, ERROR_INTERNAL, l.Get("fr", ERROR_INTERNAL))
}
