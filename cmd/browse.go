package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plbot/internal/shared"
	"github.com/desertthunder/plbot/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive terminal UI over the configured database.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	// Logs go to a file while the TUI owns the terminal
	fileLogger, closer, err := shared.NewFileLogger("./tmp/plbot-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	repo, db, err := r.openRepository(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	p := tea.NewProgram(ui.NewModel(ctx, repo), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
