package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/app"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logFile := r.config.UI.LogFile
	if logFile == "" {
		logFile = "./tmp/crate-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	session, err := r.session(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, session,
		ui.WithLogger(r.logger),
		ui.WithNoticeDelay(time.Duration(r.config.UI.NotificationMS)*time.Millisecond),
	)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if err := r.store.LastSaveError(); err != nil {
		return fmt.Errorf("playlists may not have been saved: %w", err)
	}
	return nil
}

// session wires the store, searcher and search history into an [app.Session].
func (r *Runner) session(ctx context.Context) (*app.Session, error) {
	store, err := r.playlists(ctx)
	if err != nil {
		return nil, err
	}
	searcher, err := r.searcher()
	if err != nil {
		return nil, err
	}
	history, err := r.searchHistory(ctx)
	if err != nil {
		return nil, err
	}

	return app.NewSession(store, searcher,
		app.WithHistory(history),
		app.WithSessionLogger(shared.WithLogger(r.logger, "component", "session")),
	), nil
}

var (
	_ app.HistoryRecorder = (*repositories.SearchHistoryRepository)(nil)
	_ library.Persister   = (*repositories.PlaylistPersister)(nil)
)
