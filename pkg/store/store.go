package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/harrisonrobin/tolist/pkg/model"
)

// DefaultFile is the task file used when nothing else is configured.
const DefaultFile = "tasks.json"

// PersistenceError wraps an I/O or decoding failure on the task file.
// A missing file on load is not a PersistenceError.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s tasks file %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// FileStore reads and writes the whole task list as one JSON array.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFile
	}
	return &FileStore{Path: path}
}

// Load returns the tasks stored in the file, in file order. A missing
// file yields an empty list and no error.
func (s *FileStore) Load() ([]model.Task, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Task{}, nil
		}
		return nil, &PersistenceError{Op: "load", Path: s.Path, Err: err}
	}
	defer f.Close()

	tasks, err := Decode(f)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.Path, Err: err}
	}
	return tasks, nil
}

// Save truncates the file and writes every task to it.
func (s *FileStore) Save(tasks []model.Task) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return &PersistenceError{Op: "save", Path: s.Path, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.Path, Err: err}
	}
	if err := Encode(f, tasks); err != nil {
		f.Close()
		return &PersistenceError{Op: "save", Path: s.Path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &PersistenceError{Op: "save", Path: s.Path, Err: err}
	}
	return nil
}

// Decode reads a JSON array of task records. The array must be the only
// value in r; null and trailing data are errors, as are records the task
// decoder rejects.
func Decode(r io.Reader) ([]model.Task, error) {
	decoder := json.NewDecoder(r)

	var tasks []model.Task
	if err := decoder.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	if tasks == nil {
		return nil, errors.New("failed to decode tasks: task list is null")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("failed to decode tasks: unexpected data after task list")
	}
	return tasks, nil
}

// Encode writes tasks as an indented JSON array. A nil list is written as [].
func Encode(w io.Writer, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(tasks)
}
