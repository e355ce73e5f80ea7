package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/todos-tui/internal/logging"
	"github.com/pdxmph/todos-tui/internal/todos"
)

// Title is the header shown at the top of the screen.
const Title = "ToDo App"

// Screen rows above the first task row: title, blank, form status,
// form input, list status.
const listTop = 5

// Row layout: "[x] " marker, text padded to at least minTextWidth, " [Delete]".
const (
	markerWidth    = 4
	deleteLabel    = "[Delete]"
	minTextWidth   = 20
	deleteColWidth = 1 + len(deleteLabel)
)

type focus int

const (
	focusForm focus = iota
	focusList
)

// Options configures a Model.
type Options struct {
	Logger *slog.Logger

	// ResetOnSubmit clears the add form after a successful insert.
	ResetOnSubmit bool
}

// Model represents the main application state
type Model struct {
	ctx           context.Context
	svc           todos.Service
	log           *slog.Logger
	resetOnSubmit bool

	// List view
	tasks     []todos.Task
	loaded    bool  // a fetch has succeeded at least once
	fetchErr  error // last fetch failed; cleared by the next success
	actionErr error // last toggle/delete failed
	selected  int

	// Add form
	input   textinput.Model
	addErr  error
	created bool

	focus   focus
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
	height  int
}

// Messages produced by the commands below.
type (
	tasksLoadedMsg struct{ tasks []todos.Task }
	fetchFailedMsg struct{ err error }

	taskToggledMsg struct {
		id        int64
		completed bool
		stale     bool // no row matched the id
	}
	taskDeletedMsg struct {
		id       int64
		affected int
	}
	actionFailedMsg struct {
		op  string
		id  int64
		err error
	}

	taskAddedMsg struct{ task todos.Task }
	addFailedMsg struct{ err error }
)

// New creates a new application model
func New(ctx context.Context, svc todos.Service, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.Prompt = "> "
	ti.Width = 40
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	ti.PromptStyle = promptStyle
	ti.PlaceholderStyle = placeholderStyle
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:           ctx,
		svc:           svc,
		log:           logger,
		resetOnSubmit: opts.ResetOnSubmit,
		input:         ti,
		focus:         focusForm,
		spinner:       sp,
		help:          help.New(),
		keys:          defaultKeyMap(),
	}
}

// Init issues the initial fetch
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTasks(), m.spinner.Tick, textinput.Blink)
}

// Tasks returns the tasks currently displayed.
func (m Model) Tasks() []todos.Task {
	return m.tasks
}

func (m Model) fetchTasks() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		tasks, err := svc.List(ctx)
		if err != nil {
			return fetchFailedMsg{err: err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

func (m Model) toggleTask(t todos.Task) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	id, completed := t.ID, todos.Toggle(t)
	return func() tea.Msg {
		got, err := svc.SetCompleted(ctx, id, completed)
		if errors.Is(err, todos.ErrNotFound) {
			// Removed elsewhere since the last fetch; the re-fetch drops the row.
			return taskToggledMsg{id: id, completed: completed, stale: true}
		}
		if err != nil {
			return actionFailedMsg{op: todos.OpSetCompleted, id: id, err: err}
		}
		return taskToggledMsg{id: id, completed: got}
	}
}

func (m Model) deleteTask(t todos.Task) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	id := t.ID
	return func() tea.Msg {
		n, err := svc.Delete(ctx, id)
		if err != nil {
			return actionFailedMsg{op: todos.OpDelete, id: id, err: err}
		}
		return taskDeletedMsg{id: id, affected: n}
	}
}

func (m Model) addTask(text string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		task, err := svc.Add(ctx, text)
		if err != nil {
			return addFailedMsg{err: err}
		}
		return taskAddedMsg{task: task}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.width > 10 {
			m.input.Width = m.width - 6
		}
		return m, nil

	case spinner.TickMsg:
		// Only the first load shows the spinner.
		if m.loaded || m.fetchErr != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksLoadedMsg:
		m.tasks = msg.tasks
		m.loaded = true
		m.fetchErr = nil
		m.selected = m.ensureValidSelection()
		m.log.Debug("tasks fetched", "count", len(msg.tasks))
		return m, nil

	case fetchFailedMsg:
		m.fetchErr = msg.err
		m.log.Error("fetching tasks failed", "error", msg.err)
		return m, nil

	case taskToggledMsg:
		m.actionErr = nil
		if msg.stale {
			m.log.Warn("task no longer exists", "id", msg.id)
		} else {
			m.log.Info("task updated", "id", msg.id, "completed", msg.completed)
		}
		return m, m.fetchTasks()

	case taskDeletedMsg:
		m.actionErr = nil
		m.log.Info("task deleted", "id", msg.id, "affected_rows", msg.affected)
		return m, m.fetchTasks()

	case actionFailedMsg:
		m.actionErr = msg.err
		m.log.Error("task mutation failed", "operation", msg.op, "id", msg.id, "error", msg.err)
		return m, nil

	case taskAddedMsg:
		m.addErr = nil
		m.created = true
		if m.resetOnSubmit {
			m.input.Reset()
		}
		m.log.Info("task added", "id", msg.task.ID)
		return m, m.fetchTasks()

	case addFailedMsg:
		m.addErr = msg.err
		m.created = false
		m.log.Error("adding task failed", "error", msg.err)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}

		if key.Matches(msg, m.keys.Focus) {
			return m.switchFocus()
		}

		if m.focus == focusForm {
			if key.Matches(msg, m.keys.Submit) {
				return m, m.addTask(m.input.Value())
			}
			if msg.Type == tea.KeyEsc {
				return m.switchFocus()
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		// List focus
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.visibleTasks())-1 {
				m.selected++
			}

		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}

		case key.Matches(msg, m.keys.Toggle):
			if t, ok := m.selectedTask(); ok {
				return m, m.toggleTask(t)
			}

		case key.Matches(msg, m.keys.Delete):
			if t, ok := m.selectedTask(); ok {
				return m, m.deleteTask(t)
			}

		case key.Matches(msg, m.keys.Reload):
			return m, m.fetchTasks()
		}
	}

	return m, nil
}

func (m Model) switchFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusForm {
		m.focus = focusList
		m.input.Blur()
		return m, nil
	}
	m.focus = focusForm
	return m, m.input.Focus()
}

// handleMouse maps a left click on a task row to toggle, or to delete when
// the click lands on the row's delete control.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	tasks := m.visibleTasks()
	row := m.scrollOffset() + msg.Y - listTop
	if msg.Y < listTop || row < 0 || row >= len(tasks) {
		return m, nil
	}

	if m.focus == focusForm {
		m.focus = focusList
		m.input.Blur()
	}
	m.selected = row
	t := tasks[row]

	deleteCol := markerWidth + m.textWidth() + 1
	if msg.X >= deleteCol && msg.X < deleteCol+len(deleteLabel) {
		return m, m.deleteTask(t)
	}
	return m, m.toggleTask(t)
}

// visibleTasks returns the rows the list renders. A failed fetch hides the
// list behind the error indicator.
func (m Model) visibleTasks() []todos.Task {
	if m.fetchErr != nil || !m.loaded {
		return nil
	}
	return m.tasks
}

func (m Model) selectedTask() (todos.Task, bool) {
	tasks := m.visibleTasks()
	if len(tasks) == 0 || m.selected >= len(tasks) {
		return todos.Task{}, false
	}
	return tasks[m.selected], true
}

// ensureValidSelection ensures the current selection is within bounds
func (m Model) ensureValidSelection() int {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		return 0
	}
	if m.selected >= len(tasks) {
		return len(tasks) - 1
	}
	if m.selected < 0 {
		return 0
	}
	return m.selected
}

// listHeight is the number of task rows that fit on screen. Zero height
// (no size reported yet) shows every row.
func (m Model) listHeight() int {
	if m.height == 0 {
		return len(m.tasks)
	}
	h := m.height - listTop - 2 // blank line and help
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) scrollOffset() int {
	h := m.listHeight()
	if m.selected >= h {
		return m.selected - h + 1
	}
	return 0
}

// textWidth is the padded width of the text column.
func (m Model) textWidth() int {
	w := minTextWidth
	for _, t := range m.visibleTasks() {
		if tw := lipgloss.Width(displayText(t.Text)); tw > w {
			w = tw
		}
	}
	if m.width > 0 {
		if limit := m.width - markerWidth - deleteColWidth; w > limit && limit > 0 {
			w = limit
		}
	}
	return w
}

// displayText flattens newlines and names empty tasks.
func displayText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}

// View renders the UI
func (m Model) View() string {
	lines := []string{titleStyle.Render(Title), ""}

	// Add form
	switch {
	case m.addErr != nil:
		lines = append(lines, errorStyle.Render("Oh no! "+m.addErr.Error()))
	case m.created:
		lines = append(lines, successStyle.Render("Created!"))
	default:
		lines = append(lines, "")
	}
	lines = append(lines, m.input.View())

	// List
	if m.actionErr != nil {
		lines = append(lines, errorStyle.Render("Error: "))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, m.renderList()...)

	var helpView string
	if m.focus == focusForm {
		helpView = m.help.ShortHelpView(m.keys.formHelp())
	} else {
		helpView = m.help.ShortHelpView(m.keys.listHelp())
	}
	lines = append(lines, "", helpView)

	return strings.Join(lines, "\n")
}

// renderList renders the task rows, or the loading and error indicators.
func (m Model) renderList() []string {
	if m.fetchErr != nil {
		return []string{errorStyle.Render("Error: ")}
	}
	if !m.loaded {
		return []string{m.spinner.View() + " Loading..."}
	}
	if len(m.tasks) == 0 {
		return []string{placeholderStyle.Render("Nothing to do.")}
	}

	textWidth := m.textWidth()
	start := m.scrollOffset()
	end := start + m.listHeight()
	if end > len(m.tasks) {
		end = len(m.tasks)
	}

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(m.tasks[i], textWidth, i == m.selected))
	}
	return lines
}

func (m Model) renderRow(t todos.Task, textWidth int, selected bool) string {
	marker := "[ ] "
	if t.Completed {
		marker = "[x] "
	}

	text := displayText(t.Text)
	if lipgloss.Width(text) > textWidth {
		text = truncate(text, textWidth)
	}
	text += strings.Repeat(" ", textWidth-lipgloss.Width(text))

	row := marker + text
	if style, ok := m.rowStyle(t, selected); ok {
		row = style.Render(row)
	}
	return fmt.Sprintf("%s %s", row, deleteStyle.Render(deleteLabel))
}

// rowStyle reports the style for a task row, if any. A selected completed
// row keeps the strikethrough under the selection highlight.
func (m Model) rowStyle(t todos.Task, selected bool) (lipgloss.Style, bool) {
	switch {
	case selected && m.focus == focusList && t.Completed:
		return selectedStyle.Copy().Inherit(completedStyle), true
	case selected && m.focus == focusList:
		return selectedStyle, true
	case t.Completed:
		return completedStyle, true
	}
	return lipgloss.Style{}, false
}

// truncate cuts s to at most width cells, ending in an ellipsis.
func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
