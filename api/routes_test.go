package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coreybb/mylist/auth"
	"github.com/coreybb/mylist/delivery"
	"github.com/coreybb/mylist/models"
	rh "github.com/coreybb/mylist/route-handlers"
	"github.com/coreybb/mylist/scheduler"
	"github.com/coreybb/mylist/webutil"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type emptyReminders struct{}

func (emptyReminders) GetRemindersDueOn(context.Context, models.Date) ([]models.Reminder, error) {
	return nil, nil
}

type nopTransport struct{}

func (nopTransport) Type() string                                 { return "nop" }
func (nopTransport) Send(context.Context, delivery.Message) error { return nil }

func newRouter(t *testing.T, db Pinger, withScheduler bool) http.Handler {
	t.Helper()
	tokens := auth.NewTokenService([]byte("routes-test-secret"), 0)
	deps := Dependencies{
		Users:  rh.NewUserHandler(nil, tokens, 4, zap.NewNop()),
		Tasks:  rh.NewTaskHandler(nil, zap.NewNop()),
		Gate:   auth.NewGate(tokens, nil, zap.NewNop()),
		DB:     db,
		Logger: zap.NewNop(),
	}
	if withScheduler {
		deps.Scheduler = scheduler.New(emptyReminders{}, nopTransport{}, zap.NewNop(), scheduler.Options{})
		deps.SchedulerToken = "tick-token"
	}
	return SetupRoutes(deps)
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := serve(newRouter(t, stubPinger{}, false), httptest.NewRequest(http.MethodGet, healthPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = serve(newRouter(t, stubPinger{err: errors.New("down")}, false), httptest.NewRequest(http.MethodGet, healthPath, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProtectedRoutesRequireAuthorization(t *testing.T) {
	router := newRouter(t, stubPinger{}, false)

	routes := []struct{ method, path string }{
		{http.MethodGet, currentUserPath},
		{http.MethodPatch, currentUserPath},
		{http.MethodDelete, currentUserPath},
		{http.MethodGet, tasksBasePath},
		{http.MethodPost, tasksBasePath},
		{http.MethodGet, tasksBasePath + "/1"},
		{http.MethodPatch, tasksBasePath + "/1"},
		{http.MethodDelete, tasksBasePath + "/1"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := serve(router, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), webutil.CodeMissingAuthHeader)
			assert.Equal(t, webutil.ContentTypeJSONUTF8, rec.Header().Get(webutil.HeaderContentType))
		})
	}
}

func TestSchedulerTick(t *testing.T) {
	t.Run("not mounted without a token", func(t *testing.T) {
		rec := serve(newRouter(t, stubPinger{}, false), httptest.NewRequest(http.MethodPost, schedulerTickPath, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	router := newRouter(t, stubPinger{}, true)

	t.Run("rejects a wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, schedulerTickPath, nil)
		req.Header.Set(webutil.HeaderSchedulerToken, "guess")
		rec := serve(router, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("runs with the shared token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, schedulerTickPath, nil)
		req.Header.Set(webutil.HeaderSchedulerToken, "tick-token")
		rec := serve(router, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"status_code":200,"body":"Notifications sent successfully"}`, rec.Body.String())
	})

	t.Run("bearer tokens do not reach it", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, schedulerTickPath, nil)
		req.Header.Set(webutil.HeaderAuthorization, "Bearer tick-token")
		rec := serve(router, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
