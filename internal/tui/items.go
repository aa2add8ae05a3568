package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

type listMode int

const (
	modeAll listMode = iota
	modePending
	modeDone
)

func (m listMode) String() string {
	switch m {
	case modePending:
		return "pending"
	case modeDone:
		return "done"
	default:
		return "all"
	}
}

func (m listMode) next() listMode {
	return (m + 1) % 3
}

func (m listMode) completed() *bool {
	switch m {
	case modePending:
		value := false
		return &value
	case modeDone:
		value := true
		return &value
	default:
		return nil
	}
}

func formatTaskSummary(task *model.Task, dateLayout string) string {
	check := " "
	if task.Completed() {
		check = "x"
	}
	return fmt.Sprintf("[%s] #%d %s | due %s (%s)", check, task.ID(), task.Title(),
		task.DueAt().Format(dateLayout), humanize.Time(task.DueAt()))
}

func formatTaskDetail(task *model.Task, dateLayout string) string {
	state := "pending"
	if task.Completed() {
		state = "completed"
	}
	lines := []string{
		fmt.Sprintf("ID:          %d", task.ID()),
		fmt.Sprintf("Title:       %s", task.Title()),
		fmt.Sprintf("State:       %s", state),
		fmt.Sprintf("Created:     %s (%s)", task.CreatedAt().Format(dateLayout), humanize.Time(task.CreatedAt())),
		fmt.Sprintf("Due:         %s (%s)", task.DueAt().Format(dateLayout), humanize.Time(task.DueAt())),
		"",
		task.Description(),
	}
	return strings.Join(lines, "\n")
}

func countCompleted(list []*model.Task) int {
	count := 0
	for _, task := range list {
		if task.Completed() {
			count++
		}
	}
	return count
}
