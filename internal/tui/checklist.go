// Package tui provides an interactive checklist over one issue's tasks.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hemmendinger/docket/internal/doc"
	"github.com/hemmendinger/docket/internal/store"
	"github.com/hemmendinger/docket/internal/style"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the checklist state for one issue.
type Model struct {
	store  *store.Store
	number int
	text   string
	tasks  []doc.Task
	cursor int
	err    error
}

// New loads the issue and returns a ready model.
func New(s *store.Store, number int) (*Model, error) {
	text, err := s.Load(number)
	if err != nil {
		return nil, err
	}
	tasks, err := doc.ExtractTasks(text)
	if err != nil {
		return nil, err
	}
	return &Model{store: s, number: number, text: text, tasks: tasks}, nil
}

// Run starts the checklist program and blocks until it exits.
func Run(s *store.Store, number int) error {
	m, err := New(s, number)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Toggle):
		m.toggle()
	}
	return m, nil
}

// toggle flips the task under the cursor and writes the issue back.
func (m *Model) toggle() {
	if m.cursor >= len(m.tasks) {
		return
	}
	task := m.tasks[m.cursor]
	updated, err := doc.UpdateTaskStatus(m.text, task.Index, !task.Completed)
	if err != nil {
		m.err = err
		return
	}
	if err := m.store.Save(m.number, updated); err != nil {
		m.err = err
		return
	}
	m.text = updated
	m.tasks, m.err = doc.ExtractTasks(updated)
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(style.Heading.Render(fmt.Sprintf("Issue %d: tasks", m.number)))
	b.WriteString("\n\n")
	if len(m.tasks) == 0 {
		b.WriteString(style.Dim.Render("No tasks."))
		b.WriteString("\n")
	}
	for i, task := range m.tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = style.Bold.Render("> ")
		}
		box := style.Pending.Render("[ ]")
		if task.Completed {
			box = style.Done.Render("[x]")
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, box, task.Text)
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(style.Error.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(style.Dim.Render("↑/↓ move · space toggle · q quit"))
	b.WriteString("\n")
	return b.String()
}
