// Package routehandlers implements the account and task HTTP endpoints.
package routehandlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coreybb/mylist/auth"
	"github.com/coreybb/mylist/models"
	"github.com/coreybb/mylist/webutil"
)

// UserStore is the persistence the account handlers need.
// *datastore.UserRepository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID int64) error
}

// TaskStore is the persistence the task handlers need. Every method is
// scoped to the owning user. *datastore.TaskRepository satisfies it.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskForUser(ctx context.Context, userID, taskID int64) (*models.Task, error)
	ListTasks(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return webutil.ErrBadRequestWrap("", "Invalid request payload: "+err.Error(), err)
	}
	return nil
}

// callerID returns the user ID placed in the context by auth.Gate.
func callerID(r *http.Request) (int64, error) {
	userID, ok := auth.CallerID(r.Context())
	if !ok {
		return 0, webutil.ErrUnauthorized(webutil.CodeMissingAuthHeader, "Missing Authorization header")
	}
	return userID, nil
}
