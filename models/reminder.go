package models

// Reminder is one task due on the reminder day, joined with the owner's email.
type Reminder struct {
	UserID      int64  `db:"user_id"`
	TaskID      int64  `db:"task_id"`
	Email       string `db:"email"`
	Description string `db:"description"`
}
