package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errForbidden = errors.New("forbidden system path")

// onlyDrives accepts answers on D: and upper-cases them.
func onlyDrives(_ context.Context, answer string) (string, error) {
	if !strings.HasPrefix(answer, "D:") {
		return "", errForbidden
	}
	return strings.ToUpper(answer), nil
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

// submit presses enter and feeds the validation result back in.
func submit(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.Checking)
	require.NotNil(t, cmd)

	next, cmd = m.Update(cmd())
	return next.(Model), cmd
}

func TestPromptAcceptsValidAnswer(t *testing.T) {
	m := NewModel(context.Background(), Request{Message: "Path?", Validate: onlyDrives})
	m = typeText(t, m, "D:/music")
	assert.Equal(t, "D:/music", m.Input.Value())

	m, cmd := submit(t, m)
	assert.True(t, m.Done)
	assert.Equal(t, "D:/MUSIC", m.Value)
	assert.Empty(t, m.Rejection)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestPromptRejectsAndRetries(t *testing.T) {
	m := NewModel(context.Background(), Request{Message: "Path?", Validate: onlyDrives})

	m = typeText(t, m, "C:/Windows")
	m, cmd := submit(t, m)
	assert.Nil(t, cmd)
	assert.False(t, m.Done)
	assert.Equal(t, 1, m.Attempts)
	assert.Equal(t, "forbidden system path", m.Rejection)
	assert.Empty(t, m.Input.Value())
	assert.Contains(t, m.View(), "forbidden system path")

	m = typeText(t, m, "D:/x")
	m, _ = submit(t, m)
	assert.True(t, m.Done)
	assert.Equal(t, "D:/X", m.Value)
}

func TestPromptEmptyAnswerIsValidated(t *testing.T) {
	var got []string
	m := NewModel(context.Background(), Request{Validate: func(_ context.Context, a string) (string, error) {
		got = append(got, a)
		return "/cwd", nil
	}})

	m, _ = submit(t, m)
	assert.Equal(t, []string{""}, got)
	assert.Equal(t, "/cwd", m.Value)
}

func TestPromptIgnoresInputWhileChecking(t *testing.T) {
	m := NewModel(context.Background(), Request{Validate: onlyDrives})
	m = typeText(t, m, "D:")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	m = typeText(t, next.(Model), "zzz")
	assert.Equal(t, "D:", m.Input.Value())
	assert.Contains(t, m.View(), "checking")
}

func TestPromptAbort(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := NewModel(context.Background(), Request{Validate: onlyDrives})
		next, cmd := m.Update(tea.KeyMsg{Type: key})
		m = next.(Model)

		assert.True(t, m.Aborted)
		assert.False(t, m.Done)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
		assert.Empty(t, m.View())
	}
}

func TestPromptWithoutValidatorAcceptsAnything(t *testing.T) {
	m := NewModel(context.Background(), Request{})
	m = typeText(t, m, "anything")
	m, _ = submit(t, m)
	assert.Equal(t, "anything", m.Value)
}

func TestAskCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Ask(ctx, Request{Message: "Path?"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromptShowsInitialReason(t *testing.T) {
	m := NewModel(context.Background(), Request{Message: "Path?", Reason: "path does not exist"})
	assert.Contains(t, m.View(), "path does not exist")
	assert.Equal(t, 0, m.Attempts)
}
