package cli

import (
	"context"
	"strings"

	"github.com/alexanderramin/focuslog/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const suggestionCount = 20

func focuslogHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// taskForm asks for the task label. Suggestions complete with tab.
func taskForm(value *string, suggestions []string) *huh.Form {
	input := huh.NewInput().
		Title("What are you working on?").
		Description("tab completes a recent task, enter starts the timer").
		Placeholder("task").
		Suggestions(suggestions).
		Value(value)
	return huh.NewForm(huh.NewGroup(input)).
		WithTheme(focuslogHuhTheme()).
		WithShowHelp(false)
}

func huhPromptTask(ctx context.Context, suggestions []string) (string, error) {
	var task string
	if err := taskForm(&task, suggestions).RunWithContext(ctx); err != nil {
		return "", err
	}
	return strings.TrimSpace(task), nil
}

// promptTask asks for a task, offering recent history as suggestions.
func (a *App) promptTask(ctx context.Context, current string) (string, error) {
	var suggestions []string
	if current != "" {
		suggestions = append(suggestions, current)
	}
	if a.History != nil {
		recent, err := a.History.Recent(ctx, suggestionCount)
		if err != nil {
			a.logger().WarnContext(ctx, "loading task suggestions", "error", err)
		}
		for _, e := range recent {
			if !strings.EqualFold(e.TaskText, current) {
				suggestions = append(suggestions, e.TaskText)
			}
		}
	}

	prompt := a.PromptTask
	if prompt == nil {
		prompt = huhPromptTask
	}
	return prompt(ctx, suggestions)
}
