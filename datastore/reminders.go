package datastore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coreybb/mylist/models"
)

type ReminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// GetRemindersDueOn returns every task due on day whose owner has
// notifications enabled, ordered by recipient email then task ID.
func (r *ReminderRepository) GetRemindersDueOn(ctx context.Context, day models.Date) ([]models.Reminder, error) {
	query := `
		SELECT t.user_id, t.id AS task_id, u.email, t.description
		FROM tasks t
		JOIN users u ON u.id = t.user_id
		WHERE t.deadline = $1 AND u.notifications = $2
		ORDER BY u.email, t.id
	`
	var reminders []models.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, day, models.NotificationsEnabled); err != nil {
		return nil, fmt.Errorf("failed to query reminders due %s: %w", day, err)
	}
	return reminders, nil
}
