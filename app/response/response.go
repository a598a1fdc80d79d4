package response

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/companion-ai/relay/pkg/errors"
	"github.com/companion-ai/relay/pkg/i18n"
	"github.com/companion-ai/relay/pkg/llm"
)

func ProvideResponseLocalizer(l i18n.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("i18n", l)
	}
}

func InjectResponseLocalizer(c *gin.Context) i18n.Localizer {
	return c.MustGet("i18n").(i18n.Localizer)
}

const (
	CorrelationIDKey = "correlation_id"
)

// ErrorBody is the single error envelope every failed request returns.
type ErrorBody struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
	Retryable     bool   `json:"retryable"`
	RetryAfter    int    `json:"retryAfter,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func GetLangFromRequestOrDefault(c *gin.Context) string {
	lang := c.Request.Header.Get("Accept-Language")
	if lang == "zh" {
		lang = "zh-CN"
	}
	if i18n.ALLOW_LANG[lang] {
		return lang
	}
	return i18n.DEFAULT_LANG
}

// APIError aborts the request with the error envelope. Provider errors
// keep their classified code verbatim; service errors are mapped from
// their HTTP status and localized.
func APIError(c *gin.Context, err error) {
	c.Abort()

	body := ErrorBody{
		CorrelationID: c.GetString(CorrelationIDKey),
	}
	httpStatus := http.StatusInternalServerError

	switch e := err.(type) {
	case *llm.Error:
		body.Code = string(e.Code)
		body.Message = e.Message
		body.Retryable = e.Retryable
		body.RetryAfter = e.RetryAfter
		httpStatus = providerHTTPStatus(e)
	case *errors.CustomizedError:
		l := InjectResponseLocalizer(c)
		httpStatus = e.GetCode()
		key := e.Message()
		body.Code = codeForKey(key, httpStatus)
		body.Message = l.Get(GetLangFromRequestOrDefault(c), key)
		body.Retryable = retryableStatus(httpStatus)
	default:
		body.Code = codeForStatus(httpStatus)
		body.Message = err.Error()
	}

	c.JSON(httpStatus, ErrorResponse{Error: body})
	printErrorLog(c, httpStatus, body, err)
}

// APISuccess responds 200 with the payload as the body, unwrapped.
func APISuccess(c *gin.Context, payload interface{}) {
	c.Abort()
	if payload == nil {
		payload = struct{}{}
	}
	c.JSON(http.StatusOK, payload)
	printSuccessLog(c)
}

// providerHTTPStatus keeps the upstream status when it is a valid HTTP
// code and falls back to 502 for transport-level failures.
func providerHTTPStatus(e *llm.Error) int {
	if e.Status >= http.StatusBadRequest {
		return e.Status
	}
	return http.StatusBadGateway
}

// messageKeyCodes maps i18n message keys to their envelope codes where
// the code is more specific than the HTTP status alone can express.
var messageKeyCodes = map[string]string{
	i18n.ERROR_INVALIDARGUMENT:   "INVALID_REQUEST",
	i18n.ERROR_MESSAGE_EMPTY:     "INVALID_REQUEST",
	i18n.ERROR_MESSAGE_TOO_LONG:  "MESSAGE_TOO_LONG",
	i18n.ERROR_MESSAGE_MALICIOUS: "MALICIOUS_CONTENT",
	i18n.ERROR_HTTPS_REQUIRED:    "HTTPS_REQUIRED",
	i18n.ERROR_ADMIN_REQUIRED:    "ADMIN_REQUIRED",
	i18n.ERROR_NOT_FOUND:         "NOT_FOUND",
	i18n.ERROR_TOO_MANY_REQUESTS: "RATE_LIMIT",
	i18n.ERROR_UNAUTHORIZED:      "UNAUTHORIZED",
}

func codeForKey(key string, status int) string {
	if code, ok := messageKeyCodes[key]; ok {
		return code
	}
	return codeForStatus(status)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "UNAUTHORIZED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusRequestTimeout:
		return "TIMEOUT"
	case http.StatusTooManyRequests:
		return "RATE_LIMIT"
	default:
		return "SERVER_ERROR"
	}
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status >= http.StatusInternalServerError
}

func printErrorLog(c *gin.Context, status int, body ErrorBody, err error) {
	logFields := map[string]any{
		"request_uri":    c.Request.URL.Path,
		"end_time":       time.Now().Unix(),
		"status":         status,
		"code":           body.Code,
		"correlation_id": body.CorrelationID,
		"error":          err.Error(),
	}
	slog.Error("response error", slog.Any("fields", logFields))
}

func printSuccessLog(c *gin.Context) {
	logFields := map[string]any{
		"request_uri":    c.Request.URL.Path,
		"end_time":       time.Now().Unix(),
		"correlation_id": c.GetString(CorrelationIDKey),
	}
	slog.Info("request success", slog.Any("fields", logFields))
}
