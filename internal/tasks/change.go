package tasks

import (
	"fmt"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

// Aspect names the task field changed by an update.
type Aspect string

const (
	AspectTitle       Aspect = "title"
	AspectDescription Aspect = "description"
	AspectDueDate     Aspect = "due_date"
	AspectComplete    Aspect = "complete_task"
)

var Aspects = []Aspect{AspectTitle, AspectDescription, AspectDueDate, AspectComplete}

func ParseAspect(value string) (Aspect, error) {
	for _, aspect := range Aspects {
		if string(aspect) == value {
			return aspect, nil
		}
	}
	return "", &model.InvalidAspectError{Aspect: value}
}

// Change is one of TitleChange, DescriptionChange, DueDateChange or
// CompletedChange.
type Change interface {
	Aspect() Aspect
	apply(task *model.Task, now time.Time) error
}

type TitleChange string

func (c TitleChange) Aspect() Aspect { return AspectTitle }

func (c TitleChange) apply(task *model.Task, _ time.Time) error {
	return task.ChangeTitle(string(c))
}

type DescriptionChange string

func (c DescriptionChange) Aspect() Aspect { return AspectDescription }

func (c DescriptionChange) apply(task *model.Task, _ time.Time) error {
	return task.ChangeDescription(string(c))
}

type DueDateChange time.Time

func (c DueDateChange) Aspect() Aspect { return AspectDueDate }

func (c DueDateChange) apply(task *model.Task, now time.Time) error {
	return task.ChangeDueDateAt(time.Time(c), now)
}

type CompletedChange bool

func (c CompletedChange) Aspect() Aspect { return AspectComplete }

func (c CompletedChange) apply(task *model.Task, _ time.Time) error {
	task.MarkCompleted(bool(c))
	return nil
}

// ParseChange checks that args holds exactly one value of the type the aspect
// expects: string for title and description, time.Time for due_date and bool
// for complete_task.
func ParseChange(aspect string, args ...any) (Change, error) {
	parsed, err := ParseAspect(aspect)
	if err != nil {
		return nil, err
	}
	if len(args) != 1 {
		return nil, &model.ValidationError{
			Field: aspect,
			Err:   fmt.Errorf("expected a single argument, got %d", len(args)),
		}
	}

	arg := args[0]
	switch parsed {
	case AspectTitle:
		if value, ok := arg.(string); ok {
			return TitleChange(value), nil
		}
	case AspectDescription:
		if value, ok := arg.(string); ok {
			return DescriptionChange(value), nil
		}
	case AspectDueDate:
		if value, ok := arg.(time.Time); ok {
			return DueDateChange(value), nil
		}
	case AspectComplete:
		if value, ok := arg.(bool); ok {
			return CompletedChange(value), nil
		}
	}
	return nil, &model.ValidationError{
		Field: aspect,
		Err:   fmt.Errorf("unexpected argument type %T", arg),
	}
}
