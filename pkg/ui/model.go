package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/tolist/pkg/manager"
	"github.com/harrisonrobin/tolist/pkg/model"
)

// Form fields, in tab order. focusList follows the last field.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldDueDate
	fieldFilter
	fieldCount

	focusList = fieldCount
)

var fieldLabels = [fieldCount]string{
	"Title:",
	"Description:",
	"Priority:",
	"Due Date (YYYY-MM-DD):",
	"Filter by Due Date (YYYY-MM-DD):",
}

const (
	msgInvalidDate  = "Invalid due date format. Please use YYYY-MM-DD."
	msgInvalidIndex = "Invalid task index!"
	msgNoTasks      = "No tasks found."
)

// listView is the manager's observer. It keeps the latest task list so
// the model can redraw after a mutation.
type listView struct {
	tasks   []model.Task
	changed bool
}

func (v *listView) TasksChanged(tasks []model.Task) {
	v.tasks = tasks
	v.changed = true
}

// Model is the bubbletea model of the task form: input fields, the task
// list and a status line for notices.
type Model struct {
	mgr    *manager.Manager
	view   *listView
	keys   KeyMap
	theme  Theme
	inputs []textinput.Model
	focus  int

	// rows holds the manager positions currently listed; a filter narrows it.
	rows     []int
	cursor   int
	filtered bool

	notice      string
	noticeLevel slog.Level

	width int
}

// NewModel builds the form around mgr and registers it as mgr's observer.
func NewModel(mgr *manager.Manager) Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[fieldPriority].CharLimit = 4
	inputs[fieldPriority].Width = 6
	inputs[fieldPriority].SetValue(strconv.Itoa(model.DefaultPriority))
	inputs[fieldDueDate].CharLimit = len(model.DateLayout)
	inputs[fieldFilter].CharLimit = len(model.DateLayout)
	inputs[fieldDueDate].Placeholder = "2024-01-31"
	inputs[fieldFilter].Placeholder = "2024-01-31"
	inputs[fieldTitle].Focus()

	view := &listView{tasks: mgr.ListAll()}
	mgr.SetObserver(view)

	m := Model{
		mgr:    mgr,
		view:   view,
		keys:   DefaultKeyMap,
		theme:  DefaultTheme,
		inputs: inputs,
		focus:  fieldTitle,
	}
	m.showAll()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case logRecordMsg:
		m.setNotice(msg.Summary, msg.Level)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextField):
			return m, m.setFocus((m.focus + 1) % (fieldCount + 1))
		case key.Matches(msg, m.keys.PrevField):
			return m, m.setFocus((m.focus + fieldCount) % (fieldCount + 1))
		case key.Matches(msg, m.keys.Add):
			m.addTask()
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			m.deleteTask()
			return m, nil
		case key.Matches(msg, m.keys.Update):
			m.updateTask()
			return m, nil
		case key.Matches(msg, m.keys.ListAll):
			m.listTasks()
			return m, nil
		case key.Matches(msg, m.keys.Filter):
			m.filterByDueDate()
			return m, nil
		}

		if m.focus == focusList {
			switch {
			case key.Matches(msg, m.keys.Up):
				m.moveCursor(-1)
			case key.Matches(msg, m.keys.Down):
				m.moveCursor(1)
			}
			return m, nil
		}
	}

	if m.focus < fieldCount {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setFocus(focus int) tea.Cmd {
	if m.focus < fieldCount {
		m.inputs[m.focus].Blur()
	}
	m.focus = focus
	if focus < fieldCount {
		return m.inputs[focus].Focus()
	}
	m.selectRow()
	return nil
}

func (m *Model) setNotice(text string, level slog.Level) {
	m.notice = text
	m.noticeLevel = level
}

// showAll lists every task and keeps the cursor in range.
func (m *Model) showAll() {
	m.rows = make([]int, len(m.view.tasks))
	for i := range m.rows {
		m.rows[i] = i
	}
	m.filtered = false
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// refresh redraws the full list after the manager reported a change.
func (m *Model) refresh() {
	if !m.view.changed {
		return
	}
	m.view.changed = false
	m.showAll()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	m.clampCursor()
	m.selectRow()
}

// selectRow copies the highlighted task into the form fields.
func (m *Model) selectRow() {
	index, ok := m.selected()
	if !ok {
		return
	}
	task, err := m.mgr.Get(index)
	if err != nil {
		return
	}
	m.inputs[fieldTitle].SetValue(task.Title)
	m.inputs[fieldDescription].SetValue(task.Description)
	m.inputs[fieldPriority].SetValue(strconv.Itoa(task.Priority))
	m.inputs[fieldDueDate].SetValue(task.DueText())
}

// selected returns the manager position of the highlighted row.
func (m *Model) selected() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return 0, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) formPriority() (int, bool) {
	text := strings.TrimSpace(m.inputs[fieldPriority].Value())
	if text == "" {
		return model.DefaultPriority, true
	}
	priority, err := strconv.Atoi(text)
	if err != nil {
		m.setNotice("Priority must be a whole number.", slog.LevelWarn)
		return 0, false
	}
	return priority, true
}

func (m *Model) addTask() {
	priority, ok := m.formPriority()
	if !ok {
		return
	}
	_, err := m.mgr.Add(
		m.inputs[fieldTitle].Value(),
		m.inputs[fieldDescription].Value(),
		priority,
		strings.TrimSpace(m.inputs[fieldDueDate].Value()),
	)
	if m.report(err) {
		m.refresh()
		m.cursor = len(m.rows) - 1
		m.setNotice("Task has been successfully added!", slog.LevelInfo)
	}
}

func (m *Model) deleteTask() {
	index, ok := m.selected()
	if !ok {
		m.setNotice("Please select a task to delete!", slog.LevelWarn)
		return
	}
	if m.report(m.mgr.Delete(index)) {
		m.refresh()
		m.setNotice("Task has been successfully deleted!", slog.LevelInfo)
	}
}

func (m *Model) updateTask() {
	index, ok := m.selected()
	if !ok {
		m.setNotice("Please select a task to update!", slog.LevelWarn)
		return
	}
	priority, ok := m.formPriority()
	if !ok {
		return
	}
	patch := manager.PatchFromForm(
		m.inputs[fieldTitle].Value(),
		m.inputs[fieldDescription].Value(),
		priority,
		strings.TrimSpace(m.inputs[fieldDueDate].Value()),
	)
	if m.report(m.mgr.Update(index, patch)) {
		m.refresh()
		m.setNotice("Task has been successfully updated!", slog.LevelInfo)
	}
}

func (m *Model) listTasks() {
	m.view.tasks = m.mgr.ListAll()
	m.showAll()
	if len(m.rows) == 0 {
		m.setNotice(msgNoTasks, slog.LevelInfo)
		return
	}
	m.setNotice("", slog.LevelInfo)
}

func (m *Model) filterByDueDate() {
	indexes, err := m.mgr.IndexesDueOn(strings.TrimSpace(m.inputs[fieldFilter].Value()))
	if err != nil {
		m.report(err)
		return
	}
	if len(indexes) == 0 {
		m.setNotice(msgNoTasks, slog.LevelInfo)
		return
	}
	m.rows = indexes
	m.filtered = true
	m.cursor = 0
	m.setNotice(fmt.Sprintf("%d task(s) due on %s", len(indexes), m.inputs[fieldFilter].Value()), slog.LevelInfo)
}

// report turns err into a notice and returns true when err is nil.
// Validation errors are warnings; anything else is shown as an error.
func (m *Model) report(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, model.ErrFormat):
		m.setNotice(msgInvalidDate, slog.LevelWarn)
	case errors.Is(err, manager.ErrOutOfRange):
		m.setNotice(msgInvalidIndex, slog.LevelWarn)
	default:
		m.setNotice(err.Error(), slog.LevelError)
		// Save failures keep the in-memory change; show it.
		m.view.tasks = m.mgr.ListAll()
		m.showAll()
	}
	return false
}

func (m Model) View() string {
	theme := m.theme
	label := lipgloss.NewStyle().Foreground(theme.LabelText)
	focused := label.Bold(true).Foreground(theme.SelectedForeground)
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.BorderColor).Padding(0, 1)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("To-Do List"))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, l := range fieldLabels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}
	for i, l := range fieldLabels {
		style := label
		if m.focus == i {
			style = focused
		}
		b.WriteString(style.Width(labelWidth).Align(lipgloss.Right).Render(l))
		b.WriteString(" ")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	heading := "Tasks:"
	if m.filtered {
		heading = "Tasks (filtered):"
	}
	listStyle := label
	if m.focus == focusList {
		listStyle = focused
	}
	b.WriteString(listStyle.Render(heading))
	b.WriteString("\n")
	b.WriteString(border.Render(m.renderRows()))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(m.noticeStyle().Render(m.notice))
	}
	b.WriteString("\n")

	var help []string
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(faint.Render(strings.Join(help, " • ")))
	return b.String()
}

func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("(empty)")
	}
	selectedStyle := lipgloss.NewStyle().
		Background(m.theme.SelectedBackground).
		Foreground(m.theme.SelectedForeground)
	lines := make([]string, 0, len(m.rows))
	for row, index := range m.rows {
		if index >= len(m.view.tasks) {
			continue
		}
		task := m.view.tasks[index]
		priority := lipgloss.NewStyle().Foreground(m.theme.PriorityColor(task.Priority)).Render(fmt.Sprintf("P%d", task.Priority))
		line := fmt.Sprintf("%s %s", priority, task.Title)
		if task.HasDueDate() {
			line += "  " + lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(task.DueText())
		}
		if row == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) noticeStyle() lipgloss.Style {
	switch {
	case m.noticeLevel >= slog.LevelError:
		return lipgloss.NewStyle().Foreground(m.theme.ErrorText)
	case m.noticeLevel >= slog.LevelWarn:
		return lipgloss.NewStyle().Foreground(m.theme.WarningText)
	default:
		return lipgloss.NewStyle().Foreground(m.theme.InfoText)
	}
}

// Run starts the form full-screen. handler, when set, receives the
// program so log records show up in the status line.
func Run(mgr *manager.Manager, handler *TUILogHandler) error {
	program := tea.NewProgram(NewModel(mgr), tea.WithAltScreen())
	if handler != nil {
		handler.SetProgram(program)
	}
	_, err := program.Run()
	return err
}
