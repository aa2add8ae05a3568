// Package tasks holds the ordered task collection and its JSON file persistence.
package tasks

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Joseda-hg/tasktracker/internal/model"
)

// Manager owns an ordered collection of tasks. It is not safe for concurrent use.
type Manager struct {
	tasks  []*model.Task
	nextID int
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Manager)

// WithClock replaces time.Now for creation stamps and due date checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		nextID: 1,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create validates the input, assigns the next id and appends the task.
// dueDate is an ISO-8601 string.
func (m *Manager) Create(title, description, dueDate string) (*model.Task, error) {
	dueAt, err := model.ParseTimestamp(dueDate)
	if err != nil {
		return nil, &model.ValidationError{Field: "due_date", Err: err}
	}
	now := m.now()
	if err := model.ValidateDueDate(dueAt, now); err != nil {
		return nil, err
	}
	if err := model.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := model.ValidateDescription(description); err != nil {
		return nil, err
	}

	task := model.NewTask(m.nextID, title, description, now, dueAt, false)
	m.nextID++
	m.tasks = append(m.tasks, task)
	m.logger.Debug("task created", zap.Int("id", task.ID()))
	return task, nil
}

func (m *Manager) Get(id int) (*model.Task, error) {
	index := m.indexOf(id)
	if index < 0 {
		return nil, &model.NotFoundError{ID: id}
	}
	return m.tasks[index], nil
}

// Update parses aspect and args into a Change and applies it to task id.
func (m *Manager) Update(id int, aspect string, args ...any) (*model.Task, error) {
	task, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	change, err := ParseChange(aspect, args...)
	if err != nil {
		return nil, err
	}
	if err := change.apply(task, m.now()); err != nil {
		return nil, err
	}
	m.logger.Debug("task updated", zap.Int("id", id), zap.String("aspect", string(change.Aspect())))
	return task, nil
}

// Apply is the typed form of Update.
func (m *Manager) Apply(id int, change Change) (*model.Task, error) {
	task, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := change.apply(task, m.now()); err != nil {
		return nil, err
	}
	m.logger.Debug("task updated", zap.Int("id", id), zap.String("aspect", string(change.Aspect())))
	return task, nil
}

func (m *Manager) Complete(id int) (*model.Task, error) {
	task, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	task.MarkCompleted(true)
	return task, nil
}

// Delete removes the task and returns it. The collection is left untouched
// when id is unknown.
func (m *Manager) Delete(id int) (*model.Task, error) {
	index := m.indexOf(id)
	if index < 0 {
		return nil, &model.NotFoundError{ID: id}
	}
	task := m.tasks[index]
	m.tasks = slices.Delete(m.tasks, index, index+1)
	m.logger.Debug("task deleted", zap.Int("id", id))
	return task, nil
}

// List returns the tasks in insertion order. The slice is a copy; the tasks
// are not.
func (m *Manager) List() []*model.Task {
	result := make([]*model.Task, len(m.tasks))
	copy(result, m.tasks)
	return result
}

func (m *Manager) Filter(filter model.Filter) []*model.Task {
	result := make([]*model.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if filter.Match(task) {
			result = append(result, task)
		}
	}
	return result
}

func (m *Manager) Len() int {
	return len(m.tasks)
}

func (m *Manager) indexOf(id int) int {
	for i, task := range m.tasks {
		if task.ID() == id {
			return i
		}
	}
	return -1
}

// replace swaps in a loaded collection and moves the id counter past it.
func (m *Manager) replace(loaded []*model.Task) {
	m.tasks = loaded
	maxID := 0
	for _, task := range loaded {
		if task.ID() > maxID {
			maxID = task.ID()
		}
	}
	if maxID+1 > m.nextID {
		m.nextID = maxID + 1
	}
}
