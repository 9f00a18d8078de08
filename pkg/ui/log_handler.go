package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model for the status line.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// TUILogHandler is a slog.Handler that routes records into a running
// bubbletea program, where they replace the status line. Records arriving
// before SetProgram is called are dropped. Handlers derived via WithAttrs
// and WithGroup share the program pointer.
type TUILogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	group   string
}

func NewTUILogHandler(level slog.Level) *TUILogHandler {
	return &TUILogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the program that receives log messages.
func (handler *TUILogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

func (handler *TUILogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

func (handler *TUILogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}
	msg := logRecordMsg{Summary: formatRecord(record, handler.attrs, handler.group), Level: record.Level}
	// Records are often emitted from inside Update, while the program
	// loop is busy; Send would block until it returns.
	go program.Send(msg)
	return nil
}

func (handler *TUILogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   append(append([]slog.Attr{}, handler.attrs...), attrs...),
		group:   handler.group,
	}
}

func (handler *TUILogHandler) WithGroup(name string) slog.Handler {
	group := name
	if handler.group != "" {
		group = handler.group + "." + name
	}
	return &TUILogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   handler.attrs,
		group:   group,
	}
}

// formatRecord renders "message (key=value, ...)".
func formatRecord(record slog.Record, attrs []slog.Attr, group string) string {
	var parts []string
	add := func(attr slog.Attr) bool {
		k := attr.Key
		if group != "" {
			k = group + "." + k
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, attr.Value))
		return true
	}
	for _, attr := range attrs {
		add(attr)
	}
	record.Attrs(add)
	if len(parts) == 0 {
		return record.Message
	}
	return record.Message + " (" + strings.Join(parts, ", ") + ")"
}
