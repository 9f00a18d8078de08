package taskwarrior

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/harrisonrobin/tolist/pkg/model"
)

type Client struct {
	// Binary is the taskwarrior executable, "task" by default.
	Binary string
}

func NewClient() *Client {
	return &Client{Binary: "task"}
}

// GetTasks runs `task <filter> export` and decodes its output.
func (c *Client) GetTasks(filter []string) ([]Task, error) {
	args := append(append([]string{}, filter...), "export", "rc.hooks=0")
	cmd := exec.Command(c.Binary, args...)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("taskwarrior command failed: exit code %d, %s, stderr: %s",
				exitErr.ExitCode(), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("taskwarrior command failed: %w", err)
	}
	return c.ParseTasks(bytes.NewReader(output))
}

// ParseTasks accepts either a JSON array (`task export`) or a stream of
// JSON objects (hook input).
func (c *Client) ParseTasks(r io.Reader) ([]Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read task json: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tasks []Task
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal taskwarrior output: %w", err)
		}
		return tasks, nil
	}

	var tasks []Task
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// ToModel converts taskwarrior records to tasks. Deleted tasks are dropped.
// Priority H, M and L map to 1, 2 and 3; annotations become the description.
func ToModel(tasks []Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == DELETED {
			continue
		}
		task := model.Task{
			Title:     t.Description,
			Priority:  priorityFromLetter(t.Priority),
			Completed: t.Status == COMPLETED,
		}
		var notes []string
		for _, ann := range t.Annotations {
			notes = append(notes, ann.Description)
		}
		task.Description = strings.Join(notes, "; ")
		if t.Due != nil && !t.Due.IsZero() {
			due := model.DateOf(t.Due.Local())
			task.DueDate = &due
		}
		out = append(out, task)
	}
	return out
}

func priorityFromLetter(p string) int {
	switch p {
	case "H":
		return 1
	case "M":
		return 2
	case "L":
		return 3
	}
	return model.DefaultPriority
}
