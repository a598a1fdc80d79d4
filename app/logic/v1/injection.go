package v1

import (
	"context"

	"github.com/companion-ai/relay/pkg/security"
)

const (
	TOKEN_CONTEXT_KEY       = "__relay.access_token"
	CORRELATION_CONTEXT_KEY = "correlation_id"
)

// InjectTokenClaim get user token claims from context
func InjectTokenClaim(ctx context.Context) (security.TokenClaims, bool) {
	val, ok := ctx.Value(TOKEN_CONTEXT_KEY).(security.TokenClaims)
	return val, ok
}

func InjectCorrelationID(ctx context.Context) string {
	val, _ := ctx.Value(CORRELATION_CONTEXT_KEY).(string)
	return val
}
