package webutil

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Link describes one operation reachable from a resource.
type Link struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Links maps a relation name to the operation it names.
type Links map[string]Link

func RespondWithError(w http.ResponseWriter, httpErr *HTTPError) {
	RespondWithJSON(w, httpErr.Code, httpErr.Body())
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("Failed to marshal JSON response", zap.Error(err))
		w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"INTERNAL_SERVER_ERROR","message":"Internal Server Error"}`))
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondNoContent writes a bare 204.
func RespondNoContent(w http.ResponseWriter) {
	w.Header().Del(HeaderContentType)
	w.WriteHeader(http.StatusNoContent)
}
