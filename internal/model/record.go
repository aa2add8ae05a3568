package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const displayLayout = "2006-01-02 15:04:05"

// localLayouts are ISO-8601 forms without an offset; they are read in local time.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Record is the persisted form of a Task.
type Record struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	CreatedAt   string `json:"created_at" yaml:"created_at"`
	DueDate     string `json:"due_date" yaml:"due_date"`
	Completed   bool   `json:"completed" yaml:"completed"`
}

func (t *Task) Record() Record {
	return Record{
		ID:          t.id,
		Title:       t.title,
		Description: t.description,
		CreatedAt:   FormatTimestamp(t.createdAt),
		DueDate:     FormatTimestamp(t.dueAt),
		Completed:   t.completed,
	}
}

// FromRecord rebuilds a task from persisted data. Only the timestamps are
// checked, since they have to parse; the field rules are not re-applied.
func FromRecord(r Record) (*Task, error) {
	createdAt, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("task %d created_at: %w", r.ID, err)
	}
	dueAt, err := ParseTimestamp(r.DueDate)
	if err != nil {
		return nil, fmt.Errorf("task %d due_date: %w", r.ID, err)
	}
	return NewTask(r.ID, r.Title, r.Description, createdAt, dueAt, r.Completed), nil
}

func (t *Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Record())
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	decoded, err := FromRecord(r)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// FormatTimestamp renders t as RFC 3339 with nanoseconds.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// ParseTimestamp accepts RFC 3339, offset-less date-times and bare dates.
// A bare date means local midnight.
func ParseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed, nil
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", value)
}
