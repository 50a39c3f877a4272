package webutil

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to the standard http.HandlerFunc signature.
// It executes the AppHandler and handles any returned error by logging appropriately
// and sending a standardized JSON error response.
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		err := handler(ww, r)
		if err == nil {
			// The handler is assumed to have written its own successful response.
			return
		}

		// Check if response headers have already been written by the handler
		// (which shouldn't happen if errors are returned correctly).
		if ww.Status() != 0 {
			zap.L().Warn("Handler returned error after writing response header",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Int("status", ww.Status()),
				zap.Error(err),
			)
			// Cannot send another response, just log.
			return
		}

		RespondWithAppError(ww, r, err)
	}
}

// RespondWithAppError classifies err, logs it and writes the JSON error body.
func RespondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := ToHTTPError(err)

	fields := []zap.Field{
		zap.Int("status", httpErr.Code),
		zap.String("code", httpErr.ErrCode),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}

	switch {
	case httpErr.Code >= http.StatusInternalServerError:
		zap.L().Error("Server error response", append(fields, zap.Error(err))...)
	default:
		// Log the underlying cause if present and different from the public message
		if cause := errors.Unwrap(httpErr); cause != nil && cause.Error() != httpErr.Message {
			fields = append(fields, zap.NamedError("cause", cause))
		}
		zap.L().Info("Client error response", fields...)
	}

	RespondWithError(w, httpErr)
}

// ToHTTPError maps any error to the HTTPError that should be sent.
func ToHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		// This is an HTTPError we explicitly created (e.g., ErrBadRequest, ErrNotFound)
		return httpErr
	case errors.Is(err, sql.ErrNoRows):
		// Specific handling for sql.ErrNoRows from datastore layer -> 404 Not Found
		return ErrNotFoundWrap("", "", err)
	default:
		// Any other error is treated as an internal server error
		return NewHTTPErrorWrap(http.StatusInternalServerError, CodeInternalServer, msgInternalServer, err)
	}
}
