package prompt

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgValidated carries the outcome of one validation run.
type MsgValidated struct {
	Answer string
	Value  string
	Err    error
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgValidated:
		m.Checking = false
		if msg.Err != nil {
			m.Attempts++
			m.Rejection = msg.Err.Error()
			m.Input.SetValue("")
			return m, nil
		}
		m.Value = msg.Value
		m.Done = true
		m.Rejection = ""
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.Checking {
				return m, nil
			}
			m.Checking = true
			return m, m.validateCmd(m.Input.Value())
		}
	}

	if m.Checking {
		return m, nil
	}
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// validateCmd runs the blocking validation off the event loop.
func (m Model) validateCmd(answer string) tea.Cmd {
	ctx, validate := m.ctx, m.req.Validate
	return func() tea.Msg {
		value, err := validate(ctx, answer)
		return MsgValidated{Answer: answer, Value: value, Err: err}
	}
}
