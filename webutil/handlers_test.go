package webutil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMakeHandler_HTTPError(t *testing.T) {
	h := MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		return ErrBadRequest(CodeInvalidDate, "Invalid date format. Try YYYY-MM-DD").
			WithDetails(map[string]any{"deadline": "tomorrow"})
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ContentTypeJSONUTF8, rec.Header().Get(HeaderContentType))
	body := decodeError(t, rec)
	assert.Equal(t, CodeInvalidDate, body.Code)
	assert.Equal(t, "Invalid date format. Try YYYY-MM-DD", body.Message)
	assert.Equal(t, "tomorrow", body.Details["deadline"])
}

func TestMakeHandler_WrappedHTTPError(t *testing.T) {
	h := MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		return fmt.Errorf("lookup: %w", ErrNotFound(CodeTaskNotFound, "Task not found"))
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeTaskNotFound, decodeError(t, rec).Code)
}

func TestMakeHandler_NoRows(t *testing.T) {
	h := MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		return fmt.Errorf("query: %w", sql.ErrNoRows)
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, rec).Code)
}

func TestMakeHandler_UnexpectedError(t *testing.T) {
	h := MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("connection reset by peer")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, CodeInternalServer, body.Code)
	assert.NotContains(t, body.Message, "connection reset")
}

func TestMakeHandler_ErrorAfterWrite(t *testing.T) {
	h := MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		RespondWithJSON(w, http.StatusCreated, map[string]int{"id": 1})
		return errors.New("late failure")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())
}

func TestRespondNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set(HeaderContentType, ContentTypeJSONUTF8)

	RespondNoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderContentType))
	assert.Zero(t, rec.Body.Len())
}
