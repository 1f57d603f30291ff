package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/benmeehan/geotrack/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive tracker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context())
		},
	}
}

func runUI(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// Logs would corrupt the terminal, so they are discarded unless a log file is configured
	a, err := newApp(parent, configPath, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	bridge := tui.NewBridge()
	t, err := a.newTracking(parent, bridge)
	if err != nil {
		return err
	}
	defer t.provider.Close()

	t.controller.OnStatus(bridge.HandleStatus)
	a.history.OnChange(bridge.HandleHistory)

	ctx, cancel := context.WithCancel(parent)
	defer func() {
		cancel()
		<-t.controller.Done()
	}()
	go func() {
		if err := t.controller.Run(ctx); err != nil {
			a.logger.Error().Err(err).Msg("Tracker event loop exited")
		}
	}()

	model := tui.NewModel(t.controller, t.widget.Snapshot, bridge, a.history.Samples())
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
