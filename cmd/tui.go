package cmd

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spoolhq/spool/internal/clierr"
	"github.com/spoolhq/spool/internal/tui"
	"github.com/spoolhq/spool/internal/watcher"
)

func runTUI(_ *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return clierr.New(clierr.InvalidInput,
			"not a terminal; use 'spool list' for scripted output")
	}

	repoCtx, err := discoverRepo()
	if err != nil {
		return err
	}

	model := tui.NewBrowser(repoCtx)
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startTUIWatcher(ctx, model, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, model *tui.Browser, p *tea.Program) {
	w, err := watcher.New(model.WatchPaths(), func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
