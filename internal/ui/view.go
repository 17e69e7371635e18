package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ent0n29/todolist/internal/todos"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	activeStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveText = lipgloss.NewStyle().Faint(true)
	helpStyle    = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My To-Do List"))
	b.WriteString("\n")

	if m.Err != "" {
		b.WriteString(bannerStyle.Render(m.Err))
		b.WriteString("\n\n")
	}

	b.WriteString(m.inputLine())
	b.WriteString("\n\n")
	b.WriteString(m.filterLine())
	b.WriteString("\n")

	if m.confirm != nil {
		b.WriteString(promptStyle.Render(m.confirm.prompt + " (y/n)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.Loading {
		b.WriteString("Loading...\n")
	} else {
		writeRows(&b, m)
	}

	b.WriteString(helpStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) inputLine() string {
	text := m.NewTitle
	if text == "" && m.focus != focusInput {
		text = inactiveText.Render("Add your task...")
	}
	if m.focus == focusInput && m.Edit == nil {
		return cursorStyle.Render("> ") + text + "_"
	}
	return "  " + text
}

func (m *Model) filterLine() string {
	labels := []struct {
		key    string
		filter Filter
		label  string
	}{
		{"1", FilterAll, "All"},
		{"2", FilterCompleted, "Completed"},
		{"3", FilterPending, "Pending"},
	}
	parts := make([]string, 0, len(labels)+1)
	for _, l := range labels {
		text := l.key + " " + l.label
		if m.Filter == l.filter {
			text = activeStyle.Render(text)
		}
		parts = append(parts, text)
	}
	mark := "Mark All"
	if m.AllCompleted() {
		mark = "Unmark All"
	}
	parts = append(parts, "| ctrl+a "+mark)
	return strings.Join(parts, "  ")
}

func writeRows(b *strings.Builder, m *Model) {
	visible := m.Visible()
	if len(visible) == 0 {
		b.WriteString(inactiveText.Render("  Nothing here."))
		b.WriteString("\n")
		return
	}
	for i, t := range visible {
		marker := "  "
		if m.focus == focusList && i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		b.WriteString(marker)
		b.WriteString(formatRow(t, m.Edit))
		b.WriteString("\n")
	}
}

func formatRow(t todos.Todo, edit *EditState) string {
	box := "[ ] "
	if t.Completed {
		box = "[x] "
	}
	if edit != nil && edit.ID == t.ID {
		return box + promptStyle.Render(edit.Draft+"_")
	}
	if t.Completed {
		return box + doneStyle.Render(t.Title)
	}
	return box + t.Title
}

func (m *Model) help() string {
	switch {
	case m.Edit != nil:
		return "enter save | tab/up/down save and leave | esc cancel"
	case m.focus == focusInput:
		return "enter add | tab list | ctrl+a mark/unmark all | ctrl+d delete completed | ctrl+c quit"
	default:
		return "space toggle | e edit | d delete | D delete completed | A mark all | 1-3 filter | r reload | tab add | q quit"
	}
}
