package models

import (
	"encoding/json"
	"fmt"
)

// NotificationStatus defines whether a user receives reminder emails.
// It is stored and serialized as an integer (1 enabled, 0 disabled).
type NotificationStatus int

const (
	NotificationsDisabled NotificationStatus = 0
	NotificationsEnabled  NotificationStatus = 1
)

// Enabled reports whether reminder emails should be sent.
func (s NotificationStatus) Enabled() bool {
	return s == NotificationsEnabled
}

// Toggle returns the opposite status.
func (s NotificationStatus) Toggle() NotificationStatus {
	if s.Enabled() {
		return NotificationsDisabled
	}
	return NotificationsEnabled
}

func (s NotificationStatus) MarshalJSON() ([]byte, error) {
	if s.Enabled() {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (s *NotificationStatus) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("notification status must be 0 or 1: %w", err)
	}
	switch v {
	case 0:
		*s = NotificationsDisabled
	case 1:
		*s = NotificationsEnabled
	default:
		return fmt.Errorf("notification status must be 0 or 1, got %d", v)
	}
	return nil
}

type User struct {
	ID            int64              `json:"id" db:"id"`
	Email         string             `json:"email" db:"email"`
	PasswordHash  string             `json:"-" db:"password"` // Never exposed in API responses
	Notifications NotificationStatus `json:"notifications" db:"notifications"`
}
