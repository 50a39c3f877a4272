package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the only accepted wire format for task deadlines.
const DateLayout = "2006-01-02"

// MaxDescriptionLength mirrors the VARCHAR(500) description column.
const MaxDescriptionLength = 500

// Date is a calendar day without a time-of-day component. The underlying
// time is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = NewDate(t)
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		return fmt.Errorf("cannot scan NULL into Date")
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	*d = NewDate(t)
	return nil
}

// Value implements driver.Valuer; dates travel as ISO strings so the
// server never applies a time zone conversion.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

type Task struct {
	ID          int64  `json:"id" db:"id"`
	UserID      int64  `json:"-" db:"user_id"`
	Description string `json:"description" db:"description"`
	Deadline    Date   `json:"deadline" db:"deadline"`
}

// TaskFilter narrows a task listing. Zero values mean "no constraint";
// all set constraints must hold.
type TaskFilter struct {
	Keyword   string
	StartDate *Date
	EndDate   *Date
}
