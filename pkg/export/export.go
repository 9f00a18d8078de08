package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/tolist/pkg/model"
	"github.com/harrisonrobin/tolist/pkg/store"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "yaml", "csv", "cbor", "pdf"}

// record is the encoding-neutral shape of a task.
type record struct {
	Title       string  `yaml:"title" cbor:"title"`
	Description string  `yaml:"description" cbor:"description"`
	Priority    int     `yaml:"priority" cbor:"priority"`
	Completed   bool    `yaml:"completed" cbor:"completed"`
	DueDate     *string `yaml:"due_date" cbor:"due_date"`
}

func toRecords(tasks []model.Task) []record {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		r := record{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			Completed:   t.Completed,
		}
		if t.HasDueDate() {
			due := t.DueText()
			r.DueDate = &due
		}
		records = append(records, r)
	}
	return records
}

// FormatFromPath guesses the export format from a file extension.
func FormatFromPath(path string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "yml" {
		ext = "yaml"
	}
	for _, f := range Formats {
		if f == ext {
			return f, true
		}
	}
	return "", false
}

// Export renders tasks in the given format.
func Export(tasks []model.Task, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		var buf bytes.Buffer
		if err := store.Encode(&buf, tasks); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yaml", "yml":
		return yaml.Marshal(toRecords(tasks))
	case "csv":
		return exportCSV(tasks)
	case "cbor":
		encMode, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return nil, fmt.Errorf("failed to build cbor encoder: %w", err)
		}
		return encMode.Marshal(toRecords(tasks))
	case "pdf":
		return exportPDF(tasks)
	default:
		return nil, fmt.Errorf("unsupported export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func exportCSV(tasks []model.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"index", "title", "description", "priority", "completed", "due_date"})
	for i, t := range tasks {
		_ = w.Write([]string{
			strconv.Itoa(i),
			t.Title,
			t.Description,
			strconv.Itoa(t.Priority),
			strconv.FormatBool(t.Completed),
			t.DueText(),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportPDF(tasks []model.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task List")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	if len(tasks) == 0 {
		pdf.Cell(40, 6, "No tasks found.")
	}
	for i, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%d. %s P%d %s", i+1, mark, t.Priority, t.Title)
		if t.HasDueDate() {
			line += fmt.Sprintf(" (due %s)", t.DueText())
		}
		if t.Description != "" {
			line += " - " + t.Description
		}
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
