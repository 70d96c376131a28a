package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCanceled is returned when the user aborts a running spinner
var ErrCanceled = errors.New("operation canceled")

// StatusSink receives status lines while a spinner is running
type StatusSink interface {
	AttachSink(fn func(string))
	DetachSink()
}

// RunSpinner runs a Bubble Tea spinner while executing the given action.
// When sink is not nil, lines logged during the action replace the status
// text below the title. The UI exits when the action completes and returns
// the action's error.
func RunSpinner(ctx context.Context, title string, sink StatusSink, action func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newSpinnerModel(title, cancel)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	if sink != nil {
		sink.AttachSink(func(line string) { p.Send(statusMsg(line)) })
		defer sink.DetachSink()
	}

	go func() {
		p.Send(actionDoneMsg{err: action(ctx)})
	}()

	final, err := p.Run()
	if fm, ok := final.(*spinnerModel); ok && fm.finished {
		return fm.err
	}
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return m.err
}

type actionDoneMsg struct{ err error }

type statusMsg string

type spinnerModel struct {
	title    string
	status   string
	spin     spinner.Model
	cancel   context.CancelFunc
	finished bool
	err      error
	style    lipgloss.Style
	muted    lipgloss.Style
}

func newSpinnerModel(title string, cancel context.CancelFunc) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &spinnerModel{
		title:  title,
		spin:   s,
		cancel: cancel,
		style:  lipgloss.NewStyle().Padding(0, 1),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(3),
	}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			m.finished = true
			m.err = ErrCanceled
			return m, tea.Quit
		}
	case statusMsg:
		m.status = string(msg)
	case actionDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.finished {
		if m.err != nil {
			return m.style.Render("✗ "+m.title+" ("+m.err.Error()+")") + "\n"
		}
		return m.style.Render("✓ "+m.title) + "\n"
	}
	view := m.style.Render(m.spin.View() + " " + m.title)
	if m.status != "" {
		view += "\n" + m.muted.Render(m.status)
	}
	return view
}
