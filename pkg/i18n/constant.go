package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_UNAUTHORIZED      = "error.unauthorized"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"
	ERROR_HTTPS_REQUIRED    = "error.httpsRequired"
	ERROR_ADMIN_REQUIRED    = "error.adminRequired"

	ERROR_MESSAGE_EMPTY     = "error.message.empty"
	ERROR_MESSAGE_TOO_LONG  = "error.message.tooLong"
	ERROR_MESSAGE_MALICIOUS = "error.message.malicious"

	ERROR_LLM_UNAVAILABLE = "error.llm.unavailable"
	ERROR_LLM_TIMEOUT     = "error.llm.timeout"
)
