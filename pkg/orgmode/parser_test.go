package orgmode

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrisonrobin/tolist/pkg/model"
)

const sampleOrg = `#+TITLE: chores
* TODO [#B] Buy milk :shopping:
  DEADLINE: <2024-01-10 Wed>
  2% milk
  :PROPERTIES:
  :ID: 1234
  :END:
* Notes heading without keyword
  ignored body
** DONE Call dentist
   CLOSED: [2024-01-02 Tue 10:00]
* TODO [#A] File taxes
  DEADLINE: <2024-04-15 Mon 17:00>
`

func TestParse(t *testing.T) {
	tasks, err := Parse(strings.NewReader(sampleOrg))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d: %+v", len(tasks), tasks)
	}

	milk := tasks[0]
	if milk.Title != "Buy milk" || milk.Priority != 2 || milk.Completed {
		t.Errorf("Unexpected first task: %+v", milk)
	}
	if milk.DueText() != "2024-01-10" {
		t.Errorf("Expected due 2024-01-10, got '%s'", milk.DueText())
	}
	if milk.Description != "2% milk" {
		t.Errorf("Expected description '2%% milk', got '%s'", milk.Description)
	}

	dentist := tasks[1]
	if dentist.Title != "Call dentist" || !dentist.Completed || dentist.HasDueDate() {
		t.Errorf("Unexpected second task: %+v", dentist)
	}
	if dentist.Priority != model.DefaultPriority {
		t.Errorf("Expected default priority, got %d", dentist.Priority)
	}

	taxes := tasks[2]
	if taxes.Priority != 1 || taxes.DueText() != "2024-04-15" {
		t.Errorf("Unexpected third task: %+v", taxes)
	}
}

func TestParseInvalidDeadline(t *testing.T) {
	_, err := Parse(strings.NewReader("* TODO x\n  DEADLINE: <2024-02-31 Sat>\n"))
	if !errors.Is(err, model.ErrFormat) {
		t.Errorf("Expected ErrFormat, got %v", err)
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.org")
	b := filepath.Join(dir, "b.org")
	os.WriteFile(a, []byte("* TODO one\n"), 0600)
	os.WriteFile(b, []byte("* TODO two\n* DONE three\n"), 0600)

	tasks, err := ParseFiles([]string{a, b})
	if err != nil {
		t.Fatalf("ParseFiles failed: %v", err)
	}
	if len(tasks) != 3 || tasks[0].Title != "one" || tasks[2].Title != "three" {
		t.Errorf("Unexpected tasks: %+v", tasks)
	}

	if _, err := ParseFiles([]string{filepath.Join(dir, "missing.org")}); err == nil {
		t.Errorf("Expected error for missing file")
	}
}
