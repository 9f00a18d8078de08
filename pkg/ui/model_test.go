package ui

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harrisonrobin/tolist/pkg/manager"
)

func newTestModel(t *testing.T) (Model, *manager.Manager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	mgr, err := manager.New(path, manager.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("manager.New failed: %v", err)
	}
	return NewModel(mgr), mgr
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func fill(m *Model, title, description, priority, due string) {
	m.inputs[fieldTitle].SetValue(title)
	m.inputs[fieldDescription].SetValue(description)
	m.inputs[fieldPriority].SetValue(priority)
	m.inputs[fieldDueDate].SetValue(due)
}

var (
	keyAdd    = tea.KeyMsg{Type: tea.KeyCtrlN}
	keyDelete = tea.KeyMsg{Type: tea.KeyCtrlX}
	keyUpdate = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyList   = tea.KeyMsg{Type: tea.KeyCtrlL}
	keyFilter = tea.KeyMsg{Type: tea.KeyCtrlF}
	keyTab    = tea.KeyMsg{Type: tea.KeyTab}
	keyUp     = tea.KeyMsg{Type: tea.KeyUp}
	keyDown   = tea.KeyMsg{Type: tea.KeyDown}
)

func TestAddShowsTaskAndNotice(t *testing.T) {
	m, mgr := newTestModel(t)
	fill(&m, "Buy milk", "2% milk", "2", "2024-01-10")
	m = press(t, m, keyAdd)

	if mgr.Len() != 1 {
		t.Fatalf("Expected 1 task, got %d", mgr.Len())
	}
	if len(m.rows) != 1 {
		t.Errorf("Expected list to show 1 row, got %d", len(m.rows))
	}
	if m.notice != "Task has been successfully added!" {
		t.Errorf("Unexpected notice: %q", m.notice)
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Errorf("Expected view to list the new task")
	}
}

func TestAddWithBadDateWarns(t *testing.T) {
	m, mgr := newTestModel(t)
	fill(&m, "x", "", "1", "31/01/2024")
	m = press(t, m, keyAdd)

	if mgr.Len() != 0 {
		t.Errorf("Expected no task to be added, got %d", mgr.Len())
	}
	if m.notice != msgInvalidDate || m.noticeLevel != slog.LevelWarn {
		t.Errorf("Unexpected notice: %q (%v)", m.notice, m.noticeLevel)
	}
}

func TestAddWithBadPriorityWarns(t *testing.T) {
	m, mgr := newTestModel(t)
	fill(&m, "x", "", "high", "")
	m = press(t, m, keyAdd)
	if mgr.Len() != 0 || !strings.Contains(m.notice, "Priority") {
		t.Errorf("Expected priority warning, got %q with %d tasks", m.notice, mgr.Len())
	}
}

func TestSelectPopulatesFields(t *testing.T) {
	m, _ := newTestModel(t)
	fill(&m, "Buy milk", "2% milk", "2", "2024-01-10")
	m = press(t, m, keyAdd)
	fill(&m, "Call dentist", "", "3", "")
	m = press(t, m, keyAdd)

	for m.focus != focusList {
		m = press(t, m, keyTab)
	}
	m = press(t, m, keyUp)
	if m.inputs[fieldTitle].Value() != "Buy milk" || m.inputs[fieldDueDate].Value() != "2024-01-10" {
		t.Errorf("Expected fields from first task, got %q / %q", m.inputs[fieldTitle].Value(), m.inputs[fieldDueDate].Value())
	}
	m = press(t, m, keyDown)
	if m.inputs[fieldTitle].Value() != "Call dentist" || m.inputs[fieldPriority].Value() != "3" || m.inputs[fieldDueDate].Value() != "" {
		t.Errorf("Expected fields from second task, got %q", m.inputs[fieldTitle].Value())
	}
}

func TestUpdateAndDeleteSelected(t *testing.T) {
	m, mgr := newTestModel(t)
	fill(&m, "Buy milk", "2% milk", "2", "2024-01-10")
	m = press(t, m, keyAdd)
	fill(&m, "Call dentist", "", "3", "")
	m = press(t, m, keyAdd)

	m.cursor = 0
	fill(&m, "", "", "2", "2024-01-11")
	m = press(t, m, keyUpdate)
	first, _ := mgr.Get(0)
	if first.Title != "Buy milk" || first.Description != "2% milk" || first.DueText() != "2024-01-11" {
		t.Errorf("Unexpected updated task: %+v", first)
	}
	if m.notice != "Task has been successfully updated!" {
		t.Errorf("Unexpected notice: %q", m.notice)
	}

	m.cursor = 1
	m = press(t, m, keyDelete)
	if mgr.Len() != 1 {
		t.Fatalf("Expected 1 task after delete, got %d", mgr.Len())
	}
	if len(m.rows) != 1 || m.cursor != 0 {
		t.Errorf("Expected list refreshed to 1 row with cursor 0, got %d rows cursor %d", len(m.rows), m.cursor)
	}
}

func TestDeleteWithoutSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, keyDelete)
	if m.notice != "Please select a task to delete!" {
		t.Errorf("Unexpected notice: %q", m.notice)
	}
	m = press(t, m, keyUpdate)
	if m.notice != "Please select a task to update!" {
		t.Errorf("Unexpected notice: %q", m.notice)
	}
}

func TestFilterOutcomes(t *testing.T) {
	m, _ := newTestModel(t)
	fill(&m, "a", "", "1", "2024-03-15")
	m = press(t, m, keyAdd)
	fill(&m, "b", "", "1", "")
	m = press(t, m, keyAdd)
	fill(&m, "c", "", "1", "2024-03-15")
	m = press(t, m, keyAdd)

	m.inputs[fieldFilter].SetValue("2024-03-15")
	m = press(t, m, keyFilter)
	if !m.filtered || len(m.rows) != 2 || m.rows[0] != 0 || m.rows[1] != 2 {
		t.Errorf("Expected filtered rows [0 2], got %v", m.rows)
	}

	m.inputs[fieldFilter].SetValue("2030-01-01")
	m = press(t, m, keyFilter)
	if m.notice != msgNoTasks {
		t.Errorf("Expected no-match notice, got %q", m.notice)
	}

	m.inputs[fieldFilter].SetValue("not-a-date")
	m = press(t, m, keyFilter)
	if m.notice != msgInvalidDate {
		t.Errorf("Expected format notice, got %q", m.notice)
	}

	m = press(t, m, keyList)
	if m.filtered || len(m.rows) != 3 {
		t.Errorf("Expected full list after list all, got %v", m.rows)
	}
}

func TestListAllEmpty(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, keyList)
	if m.notice != msgNoTasks {
		t.Errorf("Expected %q, got %q", msgNoTasks, m.notice)
	}
}

func TestTypingGoesToFocusedField(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Milk")})
	if m.inputs[fieldTitle].Value() != "Milk" {
		t.Errorf("Expected title 'Milk', got %q", m.inputs[fieldTitle].Value())
	}
}

func TestLogRecordShowsInStatusLine(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(logRecordMsg{Summary: "failed to save tasks", Level: slog.LevelError})
	m = next.(Model)
	if m.notice != "failed to save tasks" || m.noticeLevel != slog.LevelError {
		t.Errorf("Unexpected notice: %q (%v)", m.notice, m.noticeLevel)
	}
}

func TestFormatRecord(t *testing.T) {
	record := slog.NewRecord(time.Now(), slog.LevelWarn, "save failed", 0)
	record.AddAttrs(slog.String("op", "add"))
	got := formatRecord(record, []slog.Attr{slog.Int("count", 2)}, "manager")
	want := "save failed (manager.count=2, manager.op=add)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestHandlerWithoutProgramDropsRecords(t *testing.T) {
	handler := NewTUILogHandler(slog.LevelWarn)
	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("Expected info to be disabled")
	}
	logger := slog.New(handler).With("k", "v")
	logger.Warn("dropped")
}
