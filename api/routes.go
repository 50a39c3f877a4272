package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/coreybb/mylist/auth"
	rh "github.com/coreybb/mylist/route-handlers"
	"github.com/coreybb/mylist/scheduler"
	"github.com/coreybb/mylist/webutil"
)

const (
	usersBasePath     = "/users"
	currentUserPath   = "/users/me"
	tokenPath         = "/auth/token"
	tasksBasePath     = "/tasks"
	healthPath        = "/healthz"
	schedulerTickPath = "/scheduler/tick"
)

const (
	paramID = "id" // General parameter name for resource IDs

	defaultRequestTimeout = 30 * time.Second
	healthCheckTimeout    = 2 * time.Second
)

// Pinger reports database reachability. *sqlx.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Dependencies is everything the router mounts. Scheduler is optional;
// the tick endpoint exists only when both Scheduler and SchedulerToken
// are set.
type Dependencies struct {
	Users          *rh.UserHandler
	Tasks          *rh.TaskHandler
	Gate           *auth.Gate
	DB             Pinger
	Scheduler      *scheduler.Scheduler
	SchedulerToken string
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

func SetupRoutes(deps Dependencies) http.Handler {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Logger))                                        // Log every request
	r.Use(middleware.Recoverer)                                              // Recover from panics
	r.Use(middleware.Timeout(timeout))                                       // Set a timeout context for requests
	r.Use(SetHeader(webutil.HeaderContentType, webutil.ContentTypeJSONUTF8)) // Default Content-Type

	// Public account routes
	r.Post(usersBasePath, webutil.MakeHandler(deps.Users.HandleRegister))
	r.Post(tokenPath, webutil.MakeHandler(deps.Users.HandleLogin))

	// Everything else requires a bearer token
	r.Group(func(r chi.Router) {
		r.Use(deps.Gate.Middleware)
		configureCurrentUserRoutes(r, deps.Users)
		configureTaskRoutes(r, deps.Tasks)
	})

	if deps.Scheduler != nil && deps.SchedulerToken != "" {
		r.With(RequireSharedToken(webutil.HeaderSchedulerToken, deps.SchedulerToken)).
			Post(schedulerTickPath, deps.Scheduler.HandleTick)
	}

	// Health check endpoint
	r.Get(healthPath, handleHealthCheck(deps.DB))

	return r
}

// Helper for constructing paths with a parameter
func pathWithParam(basePath string, paramName string) string {
	if basePath == "" {
		return "/{" + paramName + "}"
	}
	return basePath + "/{" + paramName + "}"
}

// --- Current User Routes ---
func configureCurrentUserRoutes(r chi.Router, handler *rh.UserHandler) {
	r.Get(currentUserPath, webutil.MakeHandler(handler.HandleGetCurrentUser))
	r.Patch(currentUserPath, webutil.MakeHandler(handler.HandleUpdateCurrentUser))
	r.Delete(currentUserPath, webutil.MakeHandler(handler.HandleDeleteCurrentUser))
}

// --- Task Routes ---
func configureTaskRoutes(r chi.Router, handler *rh.TaskHandler) {
	specificTaskPath := pathWithParam("", paramID) // e.g., "/{id}"

	r.Route(tasksBasePath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleListTasks))
		r.Post("/", webutil.MakeHandler(handler.HandleCreateTask))
		r.Route(specificTaskPath, func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(handler.HandleGetTask))
			r.Patch("/", webutil.MakeHandler(handler.HandleUpdateTask))
			r.Delete("/", webutil.MakeHandler(handler.HandleDeleteTask))
		})
	})
}

// --- Utility Functions ---

// handleHealthCheck responds OK when the database answers a ping.
func handleHealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				zap.L().Warn("Health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("database unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
