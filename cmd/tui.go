package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/lifereset/internal/tui"
	"github.com/twiced-technology-gmbh/lifereset/internal/watcher"
)

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session := tui.New(cfg)
	p := tea.NewProgram(session, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startTUIWatcher(ctx, session, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, session *tui.Session, p *tea.Program) {
	w, err := watcher.New(session.WatchPaths()...)
	if err != nil {
		return // non-fatal: the planner works without live reload
	}
	defer w.Close()

	go w.Run(ctx, nil)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.Changes():
			p.Send(tui.ReloadMsg{})
		}
	}
}
