package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/coreybb/mylist/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateTask inserts task and sets its generated ID.
func (r *TaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (user_id, description, deadline)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, task.UserID, task.Description, task.Deadline).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// GetTaskForUser returns the task only if userID owns it; otherwise
// ErrTaskNotFound, whether or not the ID exists.
func (r *TaskRepository) GetTaskForUser(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	query := `
		SELECT id, user_id, description, deadline
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, taskID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}
	return &task, nil
}

// ListTasks returns the user's tasks matching every constraint in filter,
// ordered by deadline then ID.
func (r *TaskRepository) ListTasks(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	query, args, err := buildListQuery(userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build task query: %w", err)
	}

	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query tasks for user %d: %w", userID, err)
	}
	return tasks, nil
}

func buildListQuery(userID int64, filter models.TaskFilter) (string, []any, error) {
	qb := psql.
		Select("id", "user_id", "description", "deadline").
		From("tasks").
		Where(sq.Eq{"user_id": userID})

	if filter.Keyword != "" {
		qb = qb.Where(sq.ILike{"description": "%" + likeEscaper.Replace(filter.Keyword) + "%"})
	}
	if filter.StartDate != nil {
		qb = qb.Where(sq.GtOrEq{"deadline": *filter.StartDate})
	}
	if filter.EndDate != nil {
		qb = qb.Where(sq.LtOrEq{"deadline": *filter.EndDate})
	}

	return qb.OrderBy("deadline", "id").ToSql()
}

// UpdateTask writes description and deadline, scoped to the owning user.
func (r *TaskRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET description = $3, deadline = $4
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, task.ID, task.UserID, task.Description, task.Deadline)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	return expectOneRow(result, ErrTaskNotFound)
}

// DeleteTask removes the task if userID owns it.
func (r *TaskRepository) DeleteTask(ctx context.Context, userID, taskID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}
	return expectOneRow(result, ErrTaskNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
