// Package ui is the terminal front end of the task list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/adanyl0v/todone/internal/client"
	"github.com/adanyl0v/todone/internal/models"
)

var ErrNotTTY = errors.New("ui requires a TTY")

// Run starts the UI on the terminal and blocks until the user quits.
func Run(ctx context.Context, store *client.Store, filter client.Filter) error {
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}

	program := tea.NewProgram(NewModel(ctx, store, filter), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// IsTTY reports whether f is a terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeAdd
	modeEdit
)

// Model renders the store's snapshot. It never mutates the task list itself;
// every change goes through the store.
type Model struct {
	ctx    context.Context
	store  *client.Store
	filter client.Filter
	cursor int

	mode      inputMode
	input     string
	editingID string
}

// doneMsg reports that a store call finished. The view re-reads the
// snapshot, so only the error is carried.
type doneMsg struct {
	err error
}

func NewModel(ctx context.Context, store *client.Store, filter client.Filter) *Model {
	return &Model{
		ctx:    ctx,
		store:  store,
		filter: filter,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m, m.updateInput(msg)
		}
		return m, m.updateBrowse(msg)
	case doneMsg:
		m.clampCursor()
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "r":
		return m.fetch()
	case "0":
		m.setFilter(client.FilterAll)
	case "1":
		m.setFilter(client.FilterActive)
	case "2":
		m.setFilter(client.FilterCompleted)
	case "a":
		m.mode = modeAdd
		m.input = ""
	case "e":
		if task, ok := m.selected(); ok {
			m.mode = modeEdit
			m.editingID = task.ID
			m.input = task.Title
		}
	case " ", "space":
		if task, ok := m.selected(); ok {
			completed := !task.Completed
			return m.update(task.ID, client.TaskInput{Completed: &completed})
		}
	case "p":
		if task, ok := m.selected(); ok {
			priority := nextPriority(task.Priority)
			return m.update(task.ID, client.TaskInput{Priority: &priority})
		}
	case "d":
		if task, ok := m.selected(); ok {
			return m.delete(task.ID)
		}
	}
	return nil
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		m.resetInput()
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if m.input != "" {
			_, size := utf8.DecodeLastRuneInString(m.input)
			m.input = m.input[:len(m.input)-size]
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return nil
}

func (m *Model) submit() tea.Cmd {
	title := strings.TrimSpace(m.input)
	mode, id := m.mode, m.editingID
	m.resetInput()
	if title == "" {
		return nil
	}

	if mode == modeAdd {
		return m.create(client.TaskInput{Title: &title})
	}

	// Editing re-sends every editable field, as a form would.
	task, ok := m.find(id)
	if !ok {
		return nil
	}
	priority := task.Priority
	return m.update(id, client.TaskInput{
		Title:       &title,
		Description: task.Description,
		Priority:    &priority,
	})
}

func (m *Model) resetInput() {
	m.mode = modeBrowse
	m.input = ""
	m.editingID = ""
}

func (m *Model) fetch() tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: m.store.FetchAll(m.ctx)}
	}
}

func (m *Model) create(input client.TaskInput) tea.Cmd {
	return func() tea.Msg {
		_, err := m.store.Create(m.ctx, input)
		return doneMsg{err: err}
	}
}

func (m *Model) update(id string, input client.TaskInput) tea.Cmd {
	return func() tea.Msg {
		_, err := m.store.Update(m.ctx, id, input)
		return doneMsg{err: err}
	}
}

func (m *Model) delete(id string) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: m.store.Delete(m.ctx, id)}
	}
}

func (m *Model) visible() []models.Task {
	return m.filter.Apply(m.store.Snapshot().Items)
}

func (m *Model) selected() (models.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) find(id string) (models.Task, bool) {
	for _, task := range m.store.Snapshot().Items {
		if task.ID == id {
			return task, true
		}
	}
	return models.Task{}, false
}

func (m *Model) setFilter(f client.Filter) {
	m.filter = f
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func nextPriority(p models.Priority) models.Priority {
	switch p {
	case models.PriorityLow:
		return models.PriorityMedium
	case models.PriorityMedium:
		return models.PriorityHigh
	default:
		return models.PriorityLow
	}
}

func (m *Model) View() string {
	state := m.store.Snapshot()
	tasks := m.filter.Apply(state.Items)

	var b strings.Builder
	b.WriteString(titleStyle.Render("TodoNe!"))
	b.WriteString("\n\n")

	if progress := client.Progress(state.Items); progress.Total > 0 {
		writeProgress(&b, progress)
	}
	writeFilters(&b, m.filter)

	switch {
	case state.Status == client.StatusLoading && len(state.Items) == 0:
		b.WriteString(mutedStyle.Render("Loading..."))
		b.WriteString("\n")
	case len(tasks) == 0:
		b.WriteString(mutedStyle.Render("No tasks here."))
		b.WriteString("\n")
	default:
		for i, task := range tasks {
			writeTask(&b, task, i == m.cursor)
		}
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAdd:
		fmt.Fprintf(&b, "New task: %s█\n", m.input)
	case modeEdit:
		fmt.Fprintf(&b, "Edit title: %s█\n", m.input)
	}

	if state.Err != "" {
		b.WriteString(errorStyle.Render("Error: " + state.Err))
		b.WriteString("\n")
	}
	writeHelp(&b, m.mode)
	return b.String()
}
