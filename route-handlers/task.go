package routehandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coreybb/mylist/credentials"
	"github.com/coreybb/mylist/datastore"
	"github.com/coreybb/mylist/models"
	"github.com/coreybb/mylist/webutil"
)

// Query parameters accepted by HandleListTasks.
const (
	QueryKeyword   = "keyword_pattern"
	QueryStartDate = "start_date"
	QueryEndDate   = "end_date"
)

type TaskHandler struct {
	Tasks  TaskStore
	Logger *zap.Logger
}

func NewTaskHandler(tasks TaskStore, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Logger: logger}
}

type createTaskRequest struct {
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

type updateTaskRequest struct {
	Description *string `json:"description,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
}

type taskResponse struct {
	Task  models.Task   `json:"task"`
	Links webutil.Links `json:"links"`
}

func newTaskResponse(task models.Task, self webutil.Link) taskResponse {
	return taskResponse{Task: task, Links: taskLinks(task.ID, self)}
}

func (h *TaskHandler) HandleGetTask(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		return err
	}

	task, err := h.loadTask(r, userID, taskID)
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, newTaskResponse(*task, link(http.MethodGet, taskPath(task.ID))))
	return nil
}

func (h *TaskHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}

	query := r.URL.Query()
	filter := models.TaskFilter{Keyword: query.Get(QueryKeyword)}
	if filter.StartDate, err = optionalDate(query.Get(QueryStartDate), QueryStartDate); err != nil {
		return err
	}
	if filter.EndDate, err = optionalDate(query.Get(QueryEndDate), QueryEndDate); err != nil {
		return err
	}

	tasks, err := h.Tasks.ListTasks(r.Context(), userID, filter)
	if err != nil {
		return fmt.Errorf("failed to list tasks for user %d: %w", userID, err)
	}

	responses := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, newTaskResponse(task, link(http.MethodGet, taskPath(task.ID))))
	}
	webutil.RespondWithJSON(w, http.StatusOK, responses)
	return nil
}

func (h *TaskHandler) HandleCreateTask(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	defer r.Body.Close()

	if err := validateDescription(req.Description); err != nil {
		return err
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return err
	}

	newTask := models.Task{
		UserID:      userID,
		Description: req.Description,
		Deadline:    deadline,
	}
	if err := h.Tasks.CreateTask(r.Context(), &newTask); err != nil {
		return fmt.Errorf("failed to create task for user %d: %w", userID, err)
	}

	h.Logger.Debug("Task created", zap.Int64("user_id", userID), zap.Int64("task_id", newTask.ID))
	webutil.RespondWithJSON(w, http.StatusCreated, newTaskResponse(newTask, link(http.MethodPost, pathTasks)))
	return nil
}

// HandleUpdateTask applies the supplied fields. Omitted fields keep their
// stored values.
func (h *TaskHandler) HandleUpdateTask(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	defer r.Body.Close()

	task, err := h.loadTask(r, userID, taskID)
	if err != nil {
		return err
	}

	updated := *task
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return err
		}
		updated.Description = *req.Description
	}
	if req.Deadline != nil {
		deadline, err := parseDeadline(*req.Deadline)
		if err != nil {
			return err
		}
		updated.Deadline = deadline
	}

	if err := h.Tasks.UpdateTask(r.Context(), &updated); err != nil {
		if errors.Is(err, datastore.ErrTaskNotFound) {
			return taskNotFound(taskID, err)
		}
		return fmt.Errorf("failed to update task %d: %w", taskID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, newTaskResponse(updated, link(http.MethodPatch, taskPath(taskID))))
	return nil
}

func (h *TaskHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	taskID, err := taskIDParam(r)
	if err != nil {
		return err
	}

	if err := h.Tasks.DeleteTask(r.Context(), userID, taskID); err != nil {
		if errors.Is(err, datastore.ErrTaskNotFound) {
			return taskNotFound(taskID, err)
		}
		return fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}

	webutil.RespondNoContent(w)
	return nil
}

func (h *TaskHandler) loadTask(r *http.Request, userID, taskID int64) (*models.Task, error) {
	task, err := h.Tasks.GetTaskForUser(r.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, datastore.ErrTaskNotFound) {
			return nil, taskNotFound(taskID, err)
		}
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}
	return task, nil
}

// taskIDParam reads the {id} path segment. A non-numeric ID is reported
// the same way as a missing task.
func taskIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	taskID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || taskID <= 0 {
		return 0, webutil.ErrNotFound(webutil.CodeTaskNotFound, "Task not found").
			WithDetails(map[string]any{"task_id": raw})
	}
	return taskID, nil
}

func taskNotFound(taskID int64, cause error) error {
	return webutil.ErrNotFoundWrap(webutil.CodeTaskNotFound, "Task not found", cause).
		WithDetails(map[string]any{"task_id": taskID})
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return webutil.ErrBadRequest(webutil.CodeInvalidDescription, "Description is required")
	}
	if utf8.RuneCountInString(description) > models.MaxDescriptionLength {
		return webutil.ErrBadRequest(webutil.CodeInvalidDescription,
			fmt.Sprintf("Description must be at most %d characters", models.MaxDescriptionLength))
	}
	return nil
}

func parseDeadline(value string) (models.Date, error) {
	deadline, err := credentials.ParseDate(value)
	if err != nil {
		return models.Date{}, webutil.ErrBadRequestWrap(webutil.CodeInvalidDate, "Date must be in YYYY-MM-DD format", err).
			WithDetails(map[string]any{"deadline": value})
	}
	return deadline, nil
}

func optionalDate(value, param string) (*models.Date, error) {
	if value == "" {
		return nil, nil
	}
	date, err := credentials.ParseDate(value)
	if err != nil {
		return nil, webutil.ErrBadRequestWrap(webutil.CodeInvalidDate, "Date must be in YYYY-MM-DD format", err).
			WithDetails(map[string]any{param: value})
	}
	return &date, nil
}
