// Package prompt asks the user for a path until one passes validation.
package prompt

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

// ErrAborted is returned when the user leaves the prompt without an answer.
var ErrAborted = errors.New("prompt aborted")

// ValidateFunc turns an answer into the accepted value, or explains why the
// answer was rejected.
type ValidateFunc func(ctx context.Context, answer string) (string, error)

// Request describes one question.
type Request struct {
	Message     string
	Placeholder string
	// Reason is shown as the first rejection, e.g. why --path was refused.
	Reason   string
	Validate ValidateFunc
}

// Model holds the prompt state.
type Model struct {
	ctx context.Context
	req Request

	Input     textinput.Model
	Checking  bool
	Rejection string
	Attempts  int

	// Value is the validated answer once Done is set.
	Value   string
	Done    bool
	Aborted bool
}

// NewModel returns a focused prompt for req.
func NewModel(ctx context.Context, req Request) Model {
	ti := textinput.New()
	ti.Placeholder = req.Placeholder
	ti.CharLimit = 1024
	ti.Width = 60
	ti.Prompt = "› "
	ti.Focus()

	if req.Validate == nil {
		req.Validate = func(_ context.Context, answer string) (string, error) { return answer, nil }
	}
	return Model{ctx: ctx, req: req, Input: ti, Rejection: req.Reason}
}

// Ask runs the prompt until an answer validates. Options such as
// tea.WithInput and tea.WithOutput are passed to the program.
func Ask(ctx context.Context, req Request, opts ...tea.ProgramOption) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(NewModel(ctx, req), opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", errors.Wrap(err, "prompt failed")
	}

	m, ok := final.(Model)
	if !ok || m.Aborted || !m.Done {
		return "", ErrAborted
	}
	return m.Value, nil
}
