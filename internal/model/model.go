package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 30
	MaxDescriptionLength = 300
)

// Task is a single to-do item. Fields are only changed through the Change*
// methods so that the length and due date rules hold after every mutation.
type Task struct {
	id          int
	title       string
	description string
	createdAt   time.Time
	dueAt       time.Time
	completed   bool
}

// NewTask builds a task from already trusted values. It performs no
// validation; callers creating tasks from user input validate first.
func NewTask(id int, title, description string, createdAt, dueAt time.Time, completed bool) *Task {
	return &Task{
		id:          id,
		title:       title,
		description: description,
		createdAt:   createdAt,
		dueAt:       dueAt,
		completed:   completed,
	}
}

func (t *Task) ID() int              { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) Description() string  { return t.description }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) DueAt() time.Time     { return t.dueAt }
func (t *Task) Completed() bool      { return t.completed }

func (t *Task) ChangeTitle(newTitle string) error {
	if err := ValidateTitle(newTitle); err != nil {
		return err
	}
	t.title = newTitle
	return nil
}

func (t *Task) ChangeDescription(newDescription string) error {
	if err := ValidateDescription(newDescription); err != nil {
		return err
	}
	t.description = newDescription
	return nil
}

// ChangeDueDate replaces the due date, rejecting dates before the current moment.
func (t *Task) ChangeDueDate(newDueAt time.Time) error {
	return t.ChangeDueDateAt(newDueAt, time.Now())
}

// ChangeDueDateAt is ChangeDueDate with an explicit notion of now.
func (t *Task) ChangeDueDateAt(newDueAt, now time.Time) error {
	if err := ValidateDueDate(newDueAt, now); err != nil {
		return err
	}
	t.dueAt = newDueAt
	return nil
}

func (t *Task) MarkCompleted(completed bool) {
	t.completed = completed
}

func (t *Task) String() string {
	return fmt.Sprintf("id %d, title %s, description %s, created at %s, due %s, completed: %t",
		t.id, t.title, t.description,
		t.createdAt.Format(displayLayout), t.dueAt.Format(displayLayout), t.completed)
}

func ValidateTitle(title string) error {
	return validateLength("title", title, MaxTitleLength)
}

func ValidateDescription(description string) error {
	return validateLength("description", description, MaxDescriptionLength)
}

// ValidateDueDate accepts now and anything after it.
func ValidateDueDate(dueAt, now time.Time) error {
	if dueAt.Before(now) {
		return &ValidationError{Field: "due_date", Err: fmt.Errorf("%s is in the past", dueAt.Format(time.RFC3339))}
	}
	return nil
}

func validateLength(field, value string, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 {
		return &ValidationError{Field: field, Err: fmt.Errorf("must not be empty")}
	}
	if n > maxLen {
		return &ValidationError{Field: field, Err: fmt.Errorf("must be at most %d characters, got %d", maxLen, n)}
	}
	return nil
}

// Filter narrows a task listing.
type Filter struct {
	Query     string `json:"query"`
	Completed *bool  `json:"completed"`
}

// Match reports whether the task satisfies every set criterion. Query matches
// title or description case-insensitively.
func (f Filter) Match(task *Task) bool {
	if f.Completed != nil && task.completed != *f.Completed {
		return false
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.title), query) ||
		strings.Contains(strings.ToLower(task.description), query)
}
