package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/decision-queue/internal/dashboard"
)

// Run shows the dashboard until the user quits or ctx is canceled.
// in and out default to the terminal when nil.
func Run(ctx context.Context, picks []dashboard.Pick, in io.Reader, out io.Writer, opts ...Option) error {
	progOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	if in != nil {
		progOpts = append(progOpts, tea.WithInput(in))
	}
	if out != nil {
		progOpts = append(progOpts, tea.WithOutput(out))
	}

	p := tea.NewProgram(New(picks, opts...), progOpts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("dashboard viewer: %w", err)
	}
	return nil
}
