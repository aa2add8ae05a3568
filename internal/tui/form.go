package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/tasks"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldTitle = iota
	fieldDescription
	fieldDue
)

func buildFormFields(task *model.Task, dateLayout string) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Description"},
		{Label: fmt.Sprintf("Due (%s)", dateLayout)},
	}

	if task == nil {
		fields[fieldDue].Value = time.Now().AddDate(0, 0, 1).Format(dateLayout)
		return fields
	}

	fields[fieldTitle].Value = task.Title()
	fields[fieldDescription].Value = task.Description()
	fields[fieldDue].Value = task.DueAt().Format(dateLayout)
	return fields
}

// parseDue reads value in the configured layout first and falls back to the
// ISO-8601 forms accepted everywhere else.
func parseDue(value, dateLayout string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if parsed, err := time.ParseInLocation(dateLayout, trimmed, time.Local); err == nil {
		return parsed, nil
	}
	parsed, err := model.ParseTimestamp(trimmed)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: "due_date", Err: fmt.Errorf("invalid due date %q", value)}
	}
	return parsed, nil
}

// formChanges turns an edit form into the changes to apply to task. Title and
// description are validated up front and the due date change comes first, so
// a rejected form leaves the task untouched.
func formChanges(task *model.Task, fields []formField, dateLayout string) ([]tasks.Change, error) {
	title := strings.TrimSpace(fields[fieldTitle].Value)
	description := strings.TrimSpace(fields[fieldDescription].Value)
	if err := model.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := model.ValidateDescription(description); err != nil {
		return nil, err
	}

	var changes []tasks.Change
	if due := strings.TrimSpace(fields[fieldDue].Value); due != task.DueAt().Format(dateLayout) {
		dueAt, err := parseDue(due, dateLayout)
		if err != nil {
			return nil, err
		}
		changes = append(changes, tasks.DueDateChange(dueAt))
	}
	if title != task.Title() {
		changes = append(changes, tasks.TitleChange(title))
	}
	if description != task.Description() {
		changes = append(changes, tasks.DescriptionChange(description))
	}
	return changes, nil
}
