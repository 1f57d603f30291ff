package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/benmeehan/geotrack/internal/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit the recorded location history",
	}

	historyCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every recorded location, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(commandContext(cmd), cmd.OutOrStdout())
		},
	})

	historyCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one recorded location by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid location id %q: %w", args[0], err)
			}
			return deleteHistory(commandContext(cmd), cmd.OutOrStdout(), id)
		},
	})

	return historyCmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func listHistory(ctx context.Context, out io.Writer) error {
	a, err := newApp(ctx, configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	samples := a.history.Load(ctx)
	if len(samples) == 0 {
		fmt.Fprintln(out, "No locations recorded.")
		return nil
	}
	for i, sample := range samples {
		fmt.Fprintf(out, "%s  %s\n", sample.ID, tui.FormatEntry(i, sample))
	}
	return nil
}

func deleteHistory(ctx context.Context, out io.Writer, id uuid.UUID) error {
	a, err := newApp(ctx, configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	a.history.Load(ctx)
	if err := a.history.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted location %s\n", id)
	return nil
}
