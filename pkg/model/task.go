package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted due date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// DefaultPriority is used when a record carries no priority.
const DefaultPriority = 1

// ErrFormat matches every *FormatError via errors.Is.
var ErrFormat = errors.New("invalid date format")

// FormatError reports a due date string that does not match DateLayout.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid due date %q: use YYYY-MM-DD", e.Input)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

// ParseDate parses s as YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &FormatError{Input: s}
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Date.
// An empty string decodes to the zero Date.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &FormatError{Input: string(b)}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Date.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Task is a single to-do record. A nil DueDate means no due date.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Completed   bool   `json:"completed"`
	DueDate     *Date  `json:"due_date"`
}

// NewTask builds a Task, parsing dueDate as YYYY-MM-DD. An empty dueDate
// leaves the task without a due date.
func NewTask(title, description string, priority int, completed bool, dueDate string) (Task, error) {
	task := Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Completed:   completed,
	}
	if dueDate != "" {
		d, err := ParseDate(dueDate)
		if err != nil {
			return Task{}, err
		}
		task.DueDate = &d
	}
	return task, nil
}

// HasDueDate reports whether the task carries a due date.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// DueOn reports whether the task is due on d. Tasks without a due date never match.
func (t Task) DueOn(d Date) bool {
	return t.HasDueDate() && t.DueDate.Equal(d)
}

// DueText returns the due date as YYYY-MM-DD, or "" when unset.
func (t Task) DueText() string {
	if !t.HasDueDate() {
		return ""
	}
	return t.DueDate.String()
}

// Clone returns a copy of t that shares no pointers with it.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// taskFields are the keys a stored record may carry.
var taskFields = map[string]bool{
	"title":       true,
	"description": true,
	"priority":    true,
	"completed":   true,
	"due_date":    true,
}

// UnmarshalJSON fills defaults for missing fields: priority 1, no due date.
// A record without a title, or with a key outside the task fields, is
// rejected.
func (t *Task) UnmarshalJSON(b []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	if keys == nil {
		return errors.New("task record is null")
	}
	for k := range keys {
		if !taskFields[k] {
			return fmt.Errorf("unknown task field %q", k)
		}
	}
	if _, ok := keys["title"]; !ok {
		return errors.New("task record has no title")
	}

	type taskAlias Task
	raw := taskAlias{Priority: DefaultPriority}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.DueDate != nil && raw.DueDate.IsZero() {
		raw.DueDate = nil
	}
	*t = Task(raw)
	return nil
}
