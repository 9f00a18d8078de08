package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/harrisonrobin/tolist/pkg/model"
)

func mustTask(t *testing.T, title, description string, priority int, completed bool, due string) model.Task {
	t.Helper()
	task, err := model.NewTask(title, description, priority, completed, due)
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	return task
}

func TestLoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "tasks.json"))
	tasks, err := s.Load()
	if err != nil {
		t.Fatalf("Load on missing file failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected empty list, got %d tasks", len(tasks))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "tasks.json"))
	want := []model.Task{
		mustTask(t, "Buy milk", "2% milk", 2, false, "2024-01-10"),
		mustTask(t, "Call dentist", "", 3, true, ""),
		mustTask(t, "Taxes & forms", "<urgent>", 5, false, "2024-04-15"),
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
	if got[1].DueDate != nil {
		t.Errorf("Expected absent due date to stay absent, got %v", got[1].DueDate)
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := NewFileStore(path)
	if err := s.Save([]model.Task{mustTask(t, "Call dentist", "", 3, false, "")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := `[
    {
        "title": "Call dentist",
        "description": "",
        "priority": 3,
        "completed": false,
        "due_date": null
    }
]
`
	if string(b) != want {
		t.Errorf("Unexpected file content:\n%s", b)
	}
}

func TestSaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := NewFileStore(path).Save(nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b, _ := os.ReadFile(path)
	if strings.TrimSpace(string(b)) != "[]" {
		t.Errorf("Expected [], got %q", b)
	}
}

func TestLoadFailuresPropagate(t *testing.T) {
	cases := map[string]string{
		"bad json":  `[{"title": "x",`,
		"bad shape": `{"title": "x"}`,
		"bad date":  `[{"title": "x", "due_date": "15-03-2024"}]`,
		"trailing":  `[{"title": "a"}] {"not": "a list"} garbage`,
		"null list": `null`,
		"null task": `[null]`,
		"unknown":   `[{"titel": "typo", "bogus": 1}]`,
		"no title":  `[{"description": "x", "priority": 2}]`,
		"empty":     ``,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			_, err := NewFileStore(path).Load()
			var persistErr *PersistenceError
			if !errors.As(err, &persistErr) {
				t.Fatalf("Expected *PersistenceError, got %v", err)
			}
			if persistErr.Op != "load" || persistErr.Path != path {
				t.Errorf("Unexpected error fields: %+v", persistErr)
			}
		})
	}
}

func TestLoadBadDateIsFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	os.WriteFile(path, []byte(`[{"title": "x", "due_date": "2024/03/15"}]`), 0600)
	_, err := NewFileStore(path).Load()
	if !errors.Is(err, model.ErrFormat) {
		t.Errorf("Expected wrapped ErrFormat, got %v", err)
	}
}

func TestSaveToDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	err := NewFileStore(dir).Save(nil)
	var persistErr *PersistenceError
	if !errors.As(err, &persistErr) || persistErr.Op != "save" {
		t.Errorf("Expected save PersistenceError, got %v", err)
	}
}
