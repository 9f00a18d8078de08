package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	task, err := NewTask("Buy milk", "2% milk", 2, false, "2024-01-10")
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	if task.Title != "Buy milk" || task.Description != "2% milk" || task.Priority != 2 || task.Completed {
		t.Errorf("Unexpected task fields: %+v", task)
	}
	if task.DueText() != "2024-01-10" {
		t.Errorf("Expected due date 2024-01-10, got '%s'", task.DueText())
	}

	noDue, err := NewTask("Call dentist", "", 3, false, "")
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	if noDue.HasDueDate() {
		t.Errorf("Expected no due date, got %v", noDue.DueDate)
	}
}

func TestNewTaskAcceptsUnvalidatedFields(t *testing.T) {
	task, err := NewTask("", "", -4, false, "")
	if err != nil {
		t.Fatalf("NewTask rejected empty title / negative priority: %v", err)
	}
	if task.Priority != -4 {
		t.Errorf("Expected priority -4, got %d", task.Priority)
	}
}

func TestNewTaskRejectsBadDate(t *testing.T) {
	for _, input := range []string{"2024/01/10", "10-01-2024", "2024-13-01", "2024-02-30", "tomorrow", "2024-1-5"} {
		_, err := NewTask("x", "", 1, false, input)
		if err == nil {
			t.Errorf("Expected FormatError for %q, got nil", input)
			continue
		}
		var formatErr *FormatError
		if !errors.As(err, &formatErr) {
			t.Errorf("Expected *FormatError for %q, got %T", input, err)
		} else if formatErr.Input != input {
			t.Errorf("Expected Input %q, got %q", input, formatErr.Input)
		}
		if !errors.Is(err, ErrFormat) {
			t.Errorf("Expected errors.Is(err, ErrFormat) for %q", input)
		}
	}
}

func TestTaskJSON(t *testing.T) {
	task, _ := NewTask("Buy milk", "2% milk", 2, false, "2024-01-10")
	b, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"title":"Buy milk","description":"2% milk","priority":2,"completed":false,"due_date":"2024-01-10"}`
	if string(b) != want {
		t.Errorf("Expected %s, got %s", want, b)
	}

	noDue, _ := NewTask("Call dentist", "", 3, false, "")
	b, err = json.Marshal(noDue)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(b), `"due_date":null`) {
		t.Errorf("Expected explicit null due_date, got %s", b)
	}
}

func TestTaskUnmarshalDefaults(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"title":"Only a title"}`), &task); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if task.Priority != DefaultPriority {
		t.Errorf("Expected default priority %d, got %d", DefaultPriority, task.Priority)
	}
	if task.Completed || task.HasDueDate() || task.Description != "" {
		t.Errorf("Expected zero defaults, got %+v", task)
	}

	if err := json.Unmarshal([]byte(`{"title":"t","due_date":""}`), &task); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if task.DueDate != nil {
		t.Errorf("Expected empty due_date to load as absent, got %v", task.DueDate)
	}
}

func TestTaskUnmarshalRejectsForeignRecords(t *testing.T) {
	cases := map[string]string{
		"unknown key":   `{"title":"t","bogus":1}`,
		"misspelled":    `{"titel":"typo"}`,
		"missing title": `{"description":"d","priority":2}`,
		"null":          `null`,
		"not an object": `["t"]`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var task Task
			if err := json.Unmarshal([]byte(input), &task); err == nil {
				t.Errorf("Expected error for %s, got %+v", input, task)
			}
		})
	}
}

func TestTaskUnmarshalBadDate(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"title":"t","due_date":"03/15/2024"}`), &task)
	if !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat, got %v", err)
	}
}

func TestDueOn(t *testing.T) {
	day, _ := ParseDate("2024-03-15")
	due, _ := NewTask("a", "", 1, false, "2024-03-15")
	other, _ := NewTask("b", "", 1, false, "2024-03-16")
	none, _ := NewTask("c", "", 1, false, "")
	if !due.DueOn(day) {
		t.Errorf("Expected task due on %s", day)
	}
	if other.DueOn(day) || none.DueOn(day) {
		t.Errorf("Unexpected match for %s", day)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	d := DateOf(time.Date(2024, 3, 15, 23, 30, 0, 0, loc))
	if d.String() != "2024-03-15" {
		t.Errorf("Expected 2024-03-15, got %s", d)
	}
	parsed, _ := ParseDate("2024-03-15")
	if !d.Equal(parsed) {
		t.Errorf("Expected DateOf and ParseDate to agree")
	}
}

func TestCloneDetachesDueDate(t *testing.T) {
	task, _ := NewTask("a", "", 1, false, "2024-03-15")
	clone := task.Clone()
	next, _ := ParseDate("2025-01-01")
	*clone.DueDate = next
	if task.DueText() != "2024-03-15" {
		t.Errorf("Clone shares due date with original: %s", task.DueText())
	}
}
