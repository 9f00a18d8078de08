package manager

import (
	"fmt"
	"log/slog"

	"github.com/harrisonrobin/tolist/pkg/model"
	"github.com/harrisonrobin/tolist/pkg/store"
)

// Observer is notified with the full task list after every mutation.
type Observer interface {
	TasksChanged(tasks []model.Task)
}

// Storage is the persistence the manager writes through to.
type Storage interface {
	Load() ([]model.Task, error)
	Save(tasks []model.Task) error
}

// Manager owns the ordered task list and keeps its backing file in sync.
// It is not safe for concurrent use.
type Manager struct {
	storage  Storage
	tasks    []model.Task
	observer Observer
	logger   *slog.Logger
}

type Option func(*Manager)

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithStorage replaces the file store built from the path given to New.
func WithStorage(s Storage) Option {
	return func(m *Manager) { m.storage = s }
}

// New loads the task list from path. A missing file starts an empty list;
// any other load failure is returned.
func New(path string, opts ...Option) (*Manager, error) {
	m := &Manager{
		storage: store.NewFileStore(path),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	tasks, err := m.storage.Load()
	if err != nil {
		return nil, err
	}
	m.tasks = tasks
	m.logger.Debug("loaded tasks", "count", len(tasks))
	return m, nil
}

// SetObserver replaces the current observer. Pass nil to detach it.
func (m *Manager) SetObserver(o Observer) {
	m.observer = o
}

// Len returns the number of tasks.
func (m *Manager) Len() int {
	return len(m.tasks)
}

// Add appends a new incomplete task. dueDate may be empty.
func (m *Manager) Add(title, description string, priority int, dueDate string) (model.Task, error) {
	task, err := model.NewTask(title, description, priority, false, dueDate)
	if err != nil {
		return model.Task{}, err
	}
	m.tasks = append(m.tasks, task)
	if err := m.commit("add"); err != nil {
		return task.Clone(), err
	}
	return task.Clone(), nil
}

// Import appends already-built tasks, keeping their completed flag, and
// persists once.
func (m *Manager) Import(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	for _, task := range tasks {
		m.tasks = append(m.tasks, task.Clone())
	}
	return m.commit("import")
}

// Delete removes the task at index.
func (m *Manager) Delete(index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	m.tasks = append(m.tasks[:index], m.tasks[index+1:]...)
	return m.commit("delete")
}

// Update applies the supplied fields of patch to the task at index. The
// record is left untouched when the index or the due date is invalid.
func (m *Manager) Update(index int, patch Patch) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	updated, err := patch.apply(m.tasks[index])
	if err != nil {
		return err
	}
	m.tasks[index] = updated
	return m.commit("update")
}

// Get returns the task at index.
func (m *Manager) Get(index int) (model.Task, error) {
	if err := m.checkIndex(index); err != nil {
		return model.Task{}, err
	}
	return m.tasks[index].Clone(), nil
}

// ListAll returns every task in order.
func (m *Manager) ListAll() []model.Task {
	return cloneAll(m.tasks)
}

// FilterByDueDate returns the tasks due on the given YYYY-MM-DD date, in
// order. A malformed date is a *model.FormatError, distinct from an empty
// result.
func (m *Manager) FilterByDueDate(dateText string) ([]model.Task, error) {
	indexes, err := m.IndexesDueOn(dateText)
	if err != nil {
		return nil, err
	}
	matched := make([]model.Task, 0, len(indexes))
	for _, i := range indexes {
		matched = append(matched, m.tasks[i].Clone())
	}
	return matched, nil
}

// IndexesDueOn is FilterByDueDate returning positions instead of records,
// for callers that go on to Update or Delete a match.
func (m *Manager) IndexesDueOn(dateText string) ([]int, error) {
	day, err := model.ParseDate(dateText)
	if err != nil {
		return nil, err
	}
	indexes := []int{}
	for i, task := range m.tasks {
		if task.DueOn(day) {
			indexes = append(indexes, i)
		}
	}
	return indexes, nil
}

// Overdue returns incomplete tasks whose due date is before today, in order.
func (m *Manager) Overdue(today model.Date) []model.Task {
	indexes := m.OverdueIndexes(today)
	overdue := make([]model.Task, 0, len(indexes))
	for _, i := range indexes {
		overdue = append(overdue, m.tasks[i].Clone())
	}
	return overdue
}

// OverdueIndexes is Overdue returning positions instead of records.
func (m *Manager) OverdueIndexes(today model.Date) []int {
	indexes := []int{}
	for i, task := range m.tasks {
		if !task.Completed && task.HasDueDate() && task.DueDate.Before(today) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

func (m *Manager) checkIndex(index int) error {
	if index < 0 || index >= len(m.tasks) {
		return &OutOfRangeError{Index: index, Len: len(m.tasks)}
	}
	return nil
}

// commit persists the whole list and notifies the observer. The in-memory
// change stays applied when the save fails; the error is returned.
func (m *Manager) commit(op string) error {
	if err := m.storage.Save(m.tasks); err != nil {
		m.logger.Error("failed to save tasks", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	m.logger.Debug("saved tasks", "op", op, "count", len(m.tasks))
	if m.observer != nil {
		m.observer.TasksChanged(cloneAll(m.tasks))
	}
	return nil
}

func cloneAll(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, task := range tasks {
		out[i] = task.Clone()
	}
	return out
}
