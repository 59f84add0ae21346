// Package prompt asks the user interactive questions in the terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/icarus-itcs/rnandroid/internal/ui"
)

var (
	// ErrInterrupted is returned when the user aborts the prompt.
	ErrInterrupted = errors.New("prompt interrupted")
	// ErrNotInteractive is returned when stdin is not a terminal.
	ErrNotInteractive = errors.New("prompt requires an interactive terminal")
	// ErrUnsupportedKind is returned for a question kind the prompter cannot ask.
	ErrUnsupportedKind = errors.New("unsupported question kind")
	// ErrNoChoices is returned for a list question without choices.
	ErrNoChoices = errors.New("list question has no choices")
)

// Kind enumerates the question types.
type Kind int

const (
	// KindList asks the user to pick exactly one of Choices.
	KindList Kind = iota
)

// Question describes one prompt.
type Question struct {
	Kind    Kind
	Name    string
	Message string
	Choices []string
}

// Answer is the user's reply to a Question.
type Answer struct {
	Name  string
	Value string
}

// Prompter runs questions as bubbletea programs on In/Out.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	// Interactive reports whether In is attached to a terminal.
	Interactive func() bool
	// Options are appended to every program; tests use them to disable
	// the renderer.
	Options []tea.ProgramOption
}

// New returns a prompter on the process's standard streams.
func New() *Prompter {
	return &Prompter{
		In:  os.Stdin,
		Out: os.Stdout,
		Interactive: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// Ask blocks until q is answered, the user aborts, or ctx is done.
func (p *Prompter) Ask(ctx context.Context, q Question) (Answer, error) {
	switch q.Kind {
	case KindList:
		return p.askList(ctx, q)
	default:
		return Answer{}, fmt.Errorf("%w: %d", ErrUnsupportedKind, q.Kind)
	}
}

func (p *Prompter) askList(ctx context.Context, q Question) (Answer, error) {
	if len(q.Choices) == 0 {
		return Answer{}, ErrNoChoices
	}
	if p.Interactive != nil && !p.Interactive() {
		return Answer{}, ErrNotInteractive
	}

	styles := ui.NewStyles(lipgloss.NewRenderer(p.Out))
	opts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	}, p.Options...)

	final, err := tea.NewProgram(newListModel(q, styles), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return Answer{}, ctx.Err()
		}
		return Answer{}, fmt.Errorf("prompt failed: %w", err)
	}

	m, ok := final.(listModel)
	if !ok {
		return Answer{}, fmt.Errorf("prompt failed: unexpected model %T", final)
	}
	switch m.outcome {
	case outcomeSelected:
		return Answer{Name: q.Name, Value: q.Choices[m.cursor]}, nil
	case outcomeCancelled, outcomePending:
		return Answer{}, ErrInterrupted
	default:
		return Answer{}, fmt.Errorf("prompt failed: unknown outcome %d", m.outcome)
	}
}

// Select asks the user to pick one of choices and returns it.
func (p *Prompter) Select(ctx context.Context, message string, choices []string) (string, error) {
	a, err := p.Ask(ctx, Question{
		Kind:    KindList,
		Name:    "choice",
		Message: message,
		Choices: choices,
	})
	if err != nil {
		return "", err
	}
	return a.Value, nil
}
