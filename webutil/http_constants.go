package webutil

const (
	// Header Keys
	HeaderContentType    = "Content-Type"
	HeaderAuthorization  = "Authorization"
	HeaderSchedulerToken = "X-Scheduler-Token"

	// Content Types
	ContentTypeJSONUTF8      = "application/json; charset=utf-8"
	ContentTypeTextPlainUTF8 = "text/plain; charset=utf-8"
	ContentTypeHTMLUTF8      = "text/html; charset=utf-8"
)
