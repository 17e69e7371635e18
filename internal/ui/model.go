package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/ent0n29/todolist/internal/todos"
)

// API is the subset of the todo HTTP client the UI drives.
type API interface {
	Toggler
	List(ctx context.Context) ([]todos.Todo, error)
	Create(ctx context.Context, title string) (todos.Todo, error)
	Update(ctx context.Context, id string, patch todos.Patch) (todos.Todo, error)
	Delete(ctx context.Context, id string) error
	DeleteCompleted(ctx context.Context) (int64, error)
}

const (
	fetchFailedBanner           = "Failed to fetch todos. Please try again."
	deleteFailedBanner          = "Failed to delete todo. Please try again."
	deleteCompletedFailedBanner = "Failed to delete completed todos. Please try again."
)

type focus int

const (
	focusInput focus = iota
	focusList
)

type confirmation struct {
	prompt string
	run    tea.Cmd
}

// Model is the Bubble Tea program state. Every network call runs as a
// tea.Cmd and reports back as one of the *Msg types below.
type Model struct {
	State

	api     API
	ctx     context.Context
	logger  *log.Logger
	focus   focus
	cursor  int
	confirm *confirmation

	// Requests in flight, so a repeated enter does not send duplicates.
	creating bool
	saving   map[string]bool
}

type loadedMsg struct {
	todos []todos.Todo
	err   error
}

type createdMsg struct {
	todo todos.Todo
	err  error
}

type toggledMsg struct {
	todo todos.Todo
	err  error
}

type updatedMsg struct {
	id   string
	todo todos.Todo
	err  error
}

type deletedMsg struct {
	id  string
	err error
}

type deletedCompletedMsg struct {
	count int64
	err   error
}

type toggledAllMsg struct {
	results []ToggleResult
	errs    []error
}

func NewModel(ctx context.Context, api API, logger *log.Logger) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Model{
		State:  NewState(),
		api:    api,
		ctx:    ctx,
		logger: logger,
		saving: make(map[string]bool),
	}
}

// Run starts the full-screen client and blocks until the user quits.
func Run(ctx context.Context, api API, logger *log.Logger) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("todo client requires a TTY")
	}
	program := tea.NewProgram(NewModel(ctx, api, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.reload()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case loadedMsg:
		m.Loading = false
		if msg.err != nil {
			m.logger.Error("fetch todos", "err", msg.err)
			m.Err = fetchFailedBanner
			return m, nil
		}
		m.Err = ""
		m.Todos = msg.todos
	case createdMsg:
		m.creating = false
		if msg.err != nil {
			m.logger.Error("create todo", "err", msg.err)
			return m, nil
		}
		m.Prepend(msg.todo)
		m.NewTitle = ""
	case toggledMsg:
		if msg.err != nil {
			m.logger.Error("toggle todo", "err", msg.err)
			return m, nil
		}
		m.Replace(msg.todo)
	case updatedMsg:
		delete(m.saving, msg.id)
		if msg.err != nil {
			m.logger.Error("update todo", "id", msg.id, "err", msg.err)
			return m, nil
		}
		m.Replace(msg.todo)
		if m.Edit != nil && m.Edit.ID == msg.id {
			m.Edit = nil
		}
	case deletedMsg:
		if msg.err != nil {
			m.logger.Error("delete todo", "id", msg.id, "err", msg.err)
			m.Err = deleteFailedBanner
			return m, nil
		}
		m.Remove(msg.id)
	case deletedCompletedMsg:
		if msg.err != nil {
			m.logger.Error("delete completed todos", "err", msg.err)
			m.Err = deleteCompletedFailedBanner
			return m, nil
		}
		m.logger.Info("deleted completed todos", "count", msg.count)
		m.RemoveCompleted()
	case toggledAllMsg:
		for _, err := range msg.errs {
			m.logger.Error("toggle all", "err", err)
		}
		m.RebuildBuckets(Succeeded(msg.results))
	}
	m.clampCursor()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	if m.confirm != nil {
		c := m.confirm
		m.confirm = nil
		if key == "y" || key == "Y" {
			return c.run
		}
		return nil
	}

	// Global shortcuts never reach the text inputs.
	switch key {
	case "ctrl+a":
		return m.toggleAll()
	case "ctrl+d":
		m.askDeleteCompleted()
		return nil
	}

	switch {
	case m.Edit != nil:
		return m.editKey(msg)
	case m.focus == focusInput:
		return m.inputKey(msg)
	default:
		return m.listKey(msg)
	}
}

func (m *Model) inputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.create()
	case "tab", "esc":
		m.focus = focusList
	case "backspace":
		m.NewTitle = dropLastRune(m.NewTitle)
	default:
		if s, ok := typed(msg); ok {
			m.NewTitle += s
		}
	}
	return nil
}

func (m *Model) editKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.commitEdit()
	case "esc":
		m.Edit = nil
	case "tab", "up", "down":
		return m.blurEdit(msg.String())
	case "backspace":
		m.Edit.Draft = dropLastRune(m.Edit.Draft)
	default:
		if s, ok := typed(msg); ok {
			m.Edit.Draft += s
		}
	}
	return nil
}

// blurEdit leaves edit mode the way focus leaving the row does: a non-blank
// draft is saved, a blank one is dropped.
func (m *Model) blurEdit(key string) tea.Cmd {
	cmd := m.commitEdit()
	m.Edit = nil
	switch key {
	case "up":
		m.cursor--
	case "down":
		m.cursor++
	}
	m.clampCursor()
	return cmd
}

func (m *Model) listKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case " ", "space":
		if t, ok := m.selected(); ok {
			return m.toggle(t.ID)
		}
	case "e":
		if t, ok := m.selected(); ok {
			m.StartEdit(t.ID)
		}
	case "d":
		if t, ok := m.selected(); ok {
			id := t.ID
			m.confirm = &confirmation{
				prompt: "Are you sure you want to delete this todo?",
				run:    m.delete(id),
			}
		}
	case "D":
		m.askDeleteCompleted()
	case "A":
		return m.toggleAll()
	case "1":
		m.Filter = FilterAll
	case "2":
		m.Filter = FilterCompleted
	case "3":
		m.Filter = FilterPending
	case "r":
		return m.reload()
	case "tab", "i", "n":
		m.focus = focusInput
	}
	m.clampCursor()
	return nil
}

func (m *Model) askDeleteCompleted() {
	m.confirm = &confirmation{
		prompt: "Are you sure you want to delete all completed todos?",
		run:    m.deleteCompleted(),
	}
}

func (m *Model) reload() tea.Cmd {
	m.Loading = true
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		list, err := api.List(ctx)
		return loadedMsg{todos: list, err: err}
	}
}

func (m *Model) create() tea.Cmd {
	title := strings.TrimSpace(m.NewTitle)
	if title == "" || m.creating {
		return nil
	}
	m.creating = true
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		todo, err := api.Create(ctx, title)
		return createdMsg{todo: todo, err: err}
	}
}

func (m *Model) toggle(id string) tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		todo, err := api.Toggle(ctx, id)
		return toggledMsg{todo: todo, err: err}
	}
}

func (m *Model) commitEdit() tea.Cmd {
	title := strings.TrimSpace(m.Edit.Draft)
	if title == "" {
		return nil
	}
	id := m.Edit.ID
	if m.saving[id] {
		return nil
	}
	m.saving[id] = true
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		todo, err := api.Update(ctx, id, todos.Patch{Title: &title})
		return updatedMsg{id: id, todo: todo, err: err}
	}
}

func (m *Model) delete(id string) tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		return deletedMsg{id: id, err: api.Delete(ctx, id)}
	}
}

func (m *Model) deleteCompleted() tea.Cmd {
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		n, err := api.DeleteCompleted(ctx)
		return deletedCompletedMsg{count: n, err: err}
	}
}

func (m *Model) toggleAll() tea.Cmd {
	if len(m.Todos) == 0 {
		return nil
	}
	snapshot := append([]todos.Todo(nil), m.Todos...)
	api, ctx := m.api, m.ctx
	return func() tea.Msg {
		results, errs := ToggleAll(ctx, api, snapshot)
		return toggledAllMsg{results: results, errs: errs}
	}
}

func (m *Model) selected() (todos.Todo, bool) {
	visible := m.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return todos.Todo{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func typed(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return "", false
		}
		return string(msg.Runes), true
	case tea.KeySpace:
		return " ", true
	}
	return "", false
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
