package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/icarus-itcs/rnandroid/internal/ui"
)

type outcome int

const (
	outcomePending outcome = iota
	outcomeSelected
	outcomeCancelled
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Select key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:    key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		Bottom: key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Cancel: key.NewBinding(key.WithKeys("ctrl+c", "esc", "q"), key.WithHelp("q", "cancel")),
	}
}

// listModel is a single-choice list
type listModel struct {
	question Question
	cursor   int
	outcome  outcome
	keys     keyMap
	styles   ui.Styles
}

func newListModel(q Question, styles ui.Styles) listModel {
	return listModel{
		question: q,
		keys:     defaultKeyMap(),
		styles:   styles,
	}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	last := len(m.question.Choices) - 1
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < last {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Top):
		m.cursor = 0
	case key.Matches(keyMsg, m.keys.Bottom):
		m.cursor = last
	case key.Matches(keyMsg, m.keys.Select):
		m.outcome = outcomeSelected
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Cancel):
		m.outcome = outcomeCancelled
		return m, tea.Quit
	}
	return m, nil
}

func (m listModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Success.Render("?"))
	b.WriteString(" ")
	b.WriteString(m.styles.Title.Render(m.question.Message))

	// Once answered, collapse to the chosen value like a shell prompt.
	switch m.outcome {
	case outcomeSelected:
		b.WriteString(" ")
		b.WriteString(m.styles.Info.Render(m.question.Choices[m.cursor]))
		b.WriteString("\n")
		return b.String()
	case outcomeCancelled:
		b.WriteString(" ")
		b.WriteString(m.styles.Muted.Render("cancelled"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(" ")
	b.WriteString(m.styles.Muted.Render("(use arrow keys)"))
	b.WriteString("\n")
	for i, choice := range m.question.Choices {
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("❯ " + choice))
		} else {
			b.WriteString(m.styles.Item.Render("  " + choice))
		}
		b.WriteString("\n")
	}
	return b.String()
}
