package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/companion-ai/relay/app/core"
	v1 "github.com/companion-ai/relay/app/logic/v1"
	"github.com/companion-ai/relay/app/response"
	"github.com/companion-ai/relay/pkg/errors"
	"github.com/companion-ai/relay/pkg/i18n"
	"github.com/companion-ai/relay/pkg/safe"
	"github.com/companion-ai/relay/pkg/security"
	"github.com/companion-ai/relay/pkg/utils"
)

const (
	AUTH_TOKEN_HEADER_KEY     = "Authorization"
	ADMIN_TOKEN_HEADER_KEY    = "X-Admin-Token"
	CORRELATION_ID_HEADER_KEY = "X-Correlation-ID"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// CorrelationID accepts the client-supplied header or mints a fresh
// id, and echoes it back so the client can correlate its own logs.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := strings.TrimSpace(c.GetHeader(CORRELATION_ID_HEADER_KEY))
		if cid == "" {
			cid = utils.GenRandomID()
		}
		c.Set(response.CorrelationIDKey, cid)
		c.Set(v1.CORRELATION_CONTEXT_KEY, cid)
		c.Header(CORRELATION_ID_HEADER_KEY, cid)
	}
}

// Recover turns handler panics into a plain 500 instead of tearing
// down the connection.
func Recover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				safe.LogPanic(r, "http handler")
				response.APIError(c, errors.New("middleware.Recover", i18n.ERROR_INTERNAL, nil).Code(http.StatusInternalServerError))
			}
		}()
		c.Next()
	}
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Admin-Token, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Type, X-Correlation-ID")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

// HTTPSEnforcer rejects plain-HTTP requests when the deployment
// demands TLS. Proxied deployments signal the original scheme through
// X-Forwarded-Proto.
func HTTPSEnforcer(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.Cfg().Security.HTTPSOnly {
			return
		}
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			return
		}
		response.APIError(c, errors.New("middleware.HTTPSEnforcer", i18n.ERROR_HTTPS_REQUIRED, nil).Code(http.StatusForbidden))
	}
}

// Authorization validates the bearer token when auth is enabled.
// Deployments without a configured secret run open.
func Authorization(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := appCore.Cfg().Security
		if !cfg.AuthRequired {
			return
		}

		tokenValue := strings.TrimPrefix(c.GetHeader(AUTH_TOKEN_HEADER_KEY), "Bearer ")
		if tokenValue == "" {
			response.APIError(c, errors.New("middleware.Authorization.empty", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
			return
		}

		claims, err := security.VerifyToken(tokenValue, []byte(cfg.JWTSecret))
		if err != nil {
			response.APIError(c, errors.New("middleware.Authorization.verify", i18n.ERROR_UNAUTHORIZED, err).Code(http.StatusUnauthorized))
			return
		}

		c.Set(v1.TOKEN_CONTEXT_KEY, *claims)
	}
}

// AdminRequired gates the dashboard maintenance endpoints behind the
// shared admin token.
func AdminRequired(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(ADMIN_TOKEN_HEADER_KEY)
		if token == "" || token != appCore.Cfg().Security.AdminToken {
			response.APIError(c, errors.New("middleware.AdminRequired", i18n.ERROR_ADMIN_REQUIRED, nil).Code(http.StatusForbidden))
			return
		}
	}
}

// UseLimit applies the sliding-window limiter keyed by genKeyFunc.
// Rejected requests are not recorded against the windows.
func UseLimit(appCore *core.Core, operation string, genKeyFunc func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.Limiter().Allow(genKeyFunc(c)) {
			appCore.Metrics().RateLimitedInc(operation)
			response.APIError(c, errors.New("middleware.limiter", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}
