package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestManager() *Manager {
	return NewManager(WithClock(func() time.Time { return fixedNow }))
}

func tomorrow() string {
	return fixedNow.Add(24 * time.Hour).Format(time.RFC3339)
}

func TestCreateAssignsFields(t *testing.T) {
	m := newTestManager()

	task, err := m.Create("Buy milk", "2%, one gallon", fixedNow.AddDate(0, 0, 2).Format("2006-01-02"))
	require.NoError(t, err)

	assert.Equal(t, 1, task.ID())
	assert.Equal(t, "Buy milk", task.Title())
	assert.Equal(t, "2%, one gallon", task.Description())
	assert.False(t, task.Completed())
	assert.True(t, task.CreatedAt().Equal(fixedNow))
	assert.Equal(t, 1, m.Len())
}

func TestCreateWithWallClock(t *testing.T) {
	m := NewManager()
	before := time.Now()

	task, err := m.Create("Buy milk", "2%, one gallon", time.Now().Add(48*time.Hour).Format(time.RFC3339))
	require.NoError(t, err)

	assert.WithinDuration(t, before, task.CreatedAt(), time.Second)
	assert.False(t, task.Completed())
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		description string
		due         string
	}{
		{name: "past due date", title: "Task", description: "Desc", due: fixedNow.Add(-24 * time.Hour).Format(time.RFC3339)},
		{name: "unparsable due date", title: "Task", description: "Desc", due: "next week"},
		{name: "empty title", title: "", description: "Desc", due: tomorrow()},
		{name: "long title", title: "0123456789012345678901234567890", description: "Desc", due: tomorrow()},
		{name: "empty description", title: "Task", description: "", due: tomorrow()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestManager()
			_, err := m.Create(tc.title, tc.description, tc.due)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.Equal(t, 0, m.Len())
		})
	}
}

func TestCreateAcceptsDueDateAtNow(t *testing.T) {
	m := newTestManager()
	_, err := m.Create("Now", "due right now", fixedNow.Format(time.RFC3339Nano))
	require.NoError(t, err)
}

func TestIDsAreMonotonicPerManager(t *testing.T) {
	first := newTestManager()
	second := newTestManager()

	a, err := first.Create("A", "a", tomorrow())
	require.NoError(t, err)
	_, err = first.Create("bad", "b", "nope")
	require.Error(t, err)
	b, err := first.Create("B", "b", tomorrow())
	require.NoError(t, err)
	_, err = first.Delete(b.ID())
	require.NoError(t, err)
	c, err := first.Create("C", "c", tomorrow())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, []int{a.ID(), b.ID(), c.ID()})

	other, err := second.Create("Other", "o", tomorrow())
	require.NoError(t, err)
	assert.Equal(t, 1, other.ID())
}

func TestGetNotFound(t *testing.T) {
	m := newTestManager()
	_, err := m.Get(999)

	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 999, nf.ID)

	_, err = m.Create("Task", "Desc", tomorrow())
	require.NoError(t, err)
	_, err = m.Get(2)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	newDue := fixedNow.Add(72 * time.Hour)
	cases := []struct {
		name   string
		aspect string
		arg    any
		check  func(t *testing.T, task *model.Task)
	}{
		{name: "title", aspect: "title", arg: "New Title", check: func(t *testing.T, task *model.Task) {
			assert.Equal(t, "New Title", task.Title())
		}},
		{name: "description", aspect: "description", arg: "New Description", check: func(t *testing.T, task *model.Task) {
			assert.Equal(t, "New Description", task.Description())
		}},
		{name: "due date", aspect: "due_date", arg: newDue, check: func(t *testing.T, task *model.Task) {
			assert.True(t, task.DueAt().Equal(newDue))
		}},
		{name: "complete", aspect: "complete_task", arg: true, check: func(t *testing.T, task *model.Task) {
			assert.True(t, task.Completed())
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestManager()
			created, err := m.Create("Task", "Desc", tomorrow())
			require.NoError(t, err)

			updated, err := m.Update(created.ID(), tc.aspect, tc.arg)
			require.NoError(t, err)

			got, err := m.Get(created.ID())
			require.NoError(t, err)
			assert.Same(t, updated, got)
			tc.check(t, got)
		})
	}
}

func TestUpdateErrors(t *testing.T) {
	m := newTestManager()
	task, err := m.Create("Task", "Desc", tomorrow())
	require.NoError(t, err)

	_, err = m.Update(task.ID(), "bogus", "x")
	assert.ErrorIs(t, err, model.ErrInvalidAspect)

	_, err = m.Update(42, "bogus", "x")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = m.Update(task.ID(), "title")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = m.Update(task.ID(), "title", "a", "b")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = m.Update(task.ID(), "due_date", tomorrow())
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = m.Update(task.ID(), "complete_task", "yes")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = m.Update(task.ID(), "due_date", fixedNow.Add(-time.Minute))
	assert.ErrorIs(t, err, model.ErrValidation)

	assert.Equal(t, "Task", task.Title())
	assert.False(t, task.Completed())
}

func TestApplyTypedChanges(t *testing.T) {
	m := newTestManager()
	task, err := m.Create("Task", "Desc", tomorrow())
	require.NoError(t, err)

	_, err = m.Apply(task.ID(), TitleChange("Renamed"))
	require.NoError(t, err)
	_, err = m.Apply(task.ID(), CompletedChange(true))
	require.NoError(t, err)
	_, err = m.Apply(task.ID(), DescriptionChange(""))
	assert.ErrorIs(t, err, model.ErrValidation)

	assert.Equal(t, "Renamed", task.Title())
	assert.Equal(t, "Desc", task.Description())
	assert.True(t, task.Completed())
}

func TestParseChange(t *testing.T) {
	due := fixedNow.Add(time.Hour)

	change, err := ParseChange("due_date", due)
	require.NoError(t, err)
	assert.Equal(t, AspectDueDate, change.Aspect())
	assert.Equal(t, DueDateChange(due), change)

	change, err = ParseChange("complete_task", false)
	require.NoError(t, err)
	assert.Equal(t, CompletedChange(false), change)

	_, err = ParseChange("Title", "x")
	var ia *model.InvalidAspectError
	require.ErrorAs(t, err, &ia)
	assert.Equal(t, "Title", ia.Aspect)
}

func TestComplete(t *testing.T) {
	m := newTestManager()
	task, err := m.Create("Task", "Desc", tomorrow())
	require.NoError(t, err)

	_, err = m.Complete(task.ID())
	require.NoError(t, err)
	assert.True(t, task.Completed())

	_, err = m.Complete(task.ID() + 1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDelete(t *testing.T) {
	m := newTestManager()
	first, err := m.Create("First", "1", tomorrow())
	require.NoError(t, err)
	second, err := m.Create("Second", "2", tomorrow())
	require.NoError(t, err)

	deleted, err := m.Delete(first.ID())
	require.NoError(t, err)
	assert.Same(t, first, deleted)
	assert.Equal(t, []*model.Task{second}, m.List())
	for _, stale := range m.tasks[len(m.tasks):cap(m.tasks)] {
		assert.Nil(t, stale, "removed task still referenced by the backing array")
	}

	_, err = m.Get(first.ID())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteMissingLeavesCollection(t *testing.T) {
	m := newTestManager()
	task, err := m.Create("Only", "one", tomorrow())
	require.NoError(t, err)

	_, err = m.Delete(task.ID() + 10)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, []*model.Task{task}, m.List())
}

func TestListPreservesInsertionOrder(t *testing.T) {
	m := newTestManager()
	assert.Empty(t, m.List())

	titles := []string{"zeta", "alpha", "mid"}
	for _, title := range titles {
		_, err := m.Create(title, "d", tomorrow())
		require.NoError(t, err)
	}

	listed := m.List()
	require.Len(t, listed, 3)
	for i, task := range listed {
		assert.Equal(t, titles[i], task.Title())
	}

	listed[0] = nil
	assert.NotNil(t, m.List()[0])
}

func TestFilter(t *testing.T) {
	m := newTestManager()
	milk, err := m.Create("Buy milk", "2%, one gallon", tomorrow())
	require.NoError(t, err)
	bread, err := m.Create("Bake bread", "sourdough", tomorrow())
	require.NoError(t, err)
	_, err = m.Complete(bread.ID())
	require.NoError(t, err)

	done := true
	assert.Equal(t, []*model.Task{milk}, m.Filter(model.Filter{Query: "gallon"}))
	assert.Equal(t, []*model.Task{bread}, m.Filter(model.Filter{Completed: &done}))
	assert.Len(t, m.Filter(model.Filter{}), 2)
}
