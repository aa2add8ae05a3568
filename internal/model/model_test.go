package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTask() *Task {
	now := time.Now()
	return NewTask(1, "Sample Task", "This is a sample task", now, now.Add(24*time.Hour), false)
}

func TestChangeTitle(t *testing.T) {
	cases := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{name: "single char", title: "A"},
		{name: "valid", title: "New Title"},
		{name: "max length", title: strings.Repeat("A", MaxTitleLength)},
		{name: "multibyte max length", title: strings.Repeat("é", MaxTitleLength)},
		{name: "empty", title: "", wantErr: true},
		{name: "too long", title: strings.Repeat("A", MaxTitleLength+1), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := sampleTask()
			err := task.ChangeTitle(tc.title)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Equal(t, "Sample Task", task.Title())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.title, task.Title())
		})
	}
}

func TestChangeDescription(t *testing.T) {
	cases := []struct {
		name        string
		description string
		wantErr     bool
	}{
		{name: "valid", description: "New Description"},
		{name: "max length", description: strings.Repeat("d", MaxDescriptionLength)},
		{name: "empty", description: "", wantErr: true},
		{name: "too long", description: strings.Repeat("d", MaxDescriptionLength+1), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := sampleTask()
			err := task.ChangeDescription(tc.description)
			if tc.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "description", verr.Field)
				assert.Equal(t, "This is a sample task", task.Description())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.description, task.Description())
		})
	}
}

func TestChangeDueDateAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("future", func(t *testing.T) {
		task := sampleTask()
		due := now.Add(24 * time.Hour)
		require.NoError(t, task.ChangeDueDateAt(due, now))
		assert.True(t, task.DueAt().Equal(due))
	})

	t.Run("exactly now", func(t *testing.T) {
		task := sampleTask()
		require.NoError(t, task.ChangeDueDateAt(now, now))
		assert.True(t, task.DueAt().Equal(now))
	})

	t.Run("one nanosecond in the past", func(t *testing.T) {
		task := sampleTask()
		before := task.DueAt()
		err := task.ChangeDueDateAt(now.Add(-time.Nanosecond), now)
		assert.ErrorIs(t, err, ErrValidation)
		assert.True(t, task.DueAt().Equal(before))
	})
}

func TestChangeDueDateUsesWallClock(t *testing.T) {
	task := sampleTask()
	assert.ErrorIs(t, task.ChangeDueDate(time.Now().Add(-24*time.Hour)), ErrValidation)
	require.NoError(t, task.ChangeDueDate(time.Now().Add(24*time.Hour)))
}

func TestMarkCompleted(t *testing.T) {
	task := sampleTask()
	task.MarkCompleted(true)
	assert.True(t, task.Completed())
	task.MarkCompleted(false)
	assert.False(t, task.Completed())
}

func TestRecordRoundTrip(t *testing.T) {
	task := sampleTask()
	record := task.Record()

	assert.Equal(t, task.ID(), record.ID)
	assert.Equal(t, FormatTimestamp(task.CreatedAt()), record.CreatedAt)
	assert.Equal(t, FormatTimestamp(task.DueAt()), record.DueDate)

	restored, err := FromRecord(record)
	require.NoError(t, err)
	assert.Equal(t, record, restored.Record())
	assert.True(t, restored.CreatedAt().Equal(task.CreatedAt()))
}

func TestUnmarshalTrustsPersistedData(t *testing.T) {
	data := []byte(`{"id": 7, "title": "", "description": "x", "created_at": "2020-01-01T08:00:00", "due_date": "2020-01-02", "completed": true}`)

	var task Task
	require.NoError(t, json.Unmarshal(data, &task))

	assert.Equal(t, 7, task.ID())
	assert.Equal(t, "", task.Title())
	assert.True(t, task.Completed())
	assert.True(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.Local).Equal(task.DueAt()))
}

func TestUnmarshalRejectsBadTimestamp(t *testing.T) {
	data := []byte(`{"id": 1, "title": "t", "description": "d", "created_at": "yesterday", "due_date": "2020-01-02", "completed": false}`)
	var task Task
	assert.Error(t, json.Unmarshal(data, &task))
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2026-10-17":                       time.Date(2026, 10, 17, 0, 0, 0, 0, time.Local),
		"2026-10-17T09:30":                 time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local),
		"2026-10-17T09:30:15.123456":       time.Date(2026, 10, 17, 9, 30, 15, 123456000, time.Local),
		"2026-10-17 09:30:15":              time.Date(2026, 10, 17, 9, 30, 15, 0, time.Local),
		"2026-10-17T09:30:15Z":             time.Date(2026, 10, 17, 9, 30, 15, 0, time.UTC),
		"2026-10-17T09:30:15.5+02:00":      time.Date(2026, 10, 17, 7, 30, 15, 500000000, time.UTC),
		" 2026-10-17T09:30:15.000000001Z ": time.Date(2026, 10, 17, 9, 30, 15, 1, time.UTC),
	}
	for input, want := range cases {
		got, err := ParseTimestamp(input)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), "%s: want %s, got %s", input, want, got)
	}

	_, err := ParseTimestamp("17/10/2026")
	assert.Error(t, err)
}

func TestStringContainsAllFields(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := NewTask(3, "Buy milk", "2%, one gallon", created, created.Add(24*time.Hour), false)

	assert.Equal(t,
		"id 3, title Buy milk, description 2%, one gallon, created at 2026-01-02 03:04:05, due 2026-01-03 03:04:05, completed: false",
		task.String())
}

func TestFilterMatch(t *testing.T) {
	done := true
	pending := false
	task := sampleTask()

	assert.True(t, Filter{}.Match(task))
	assert.True(t, Filter{Query: "SAMPLE"}.Match(task))
	assert.True(t, Filter{Query: "is a"}.Match(task))
	assert.False(t, Filter{Query: "milk"}.Match(task))
	assert.True(t, Filter{Completed: &pending}.Match(task))
	assert.False(t, Filter{Completed: &done}.Match(task))
}

func TestErrorSentinels(t *testing.T) {
	assert.True(t, errors.Is(&NotFoundError{ID: 4}, ErrNotFound))
	assert.False(t, errors.Is(&NotFoundError{ID: 4}, ErrValidation))
	assert.True(t, errors.Is(&InvalidAspectError{Aspect: "bogus"}, ErrInvalidAspect))
	assert.Equal(t, "task 4 not found", (&NotFoundError{ID: 4}).Error())
	assert.Contains(t, (&InvalidAspectError{Aspect: "bogus"}).Error(), `"bogus"`)
}
