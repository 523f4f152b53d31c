package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"farmdash/internal/inventory"
)

func newImportSampleCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import-sample",
		Short: "Append the server's sample crops and orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadedService(cmd.Context())
			if err != nil {
				return err
			}
			req := inventory.Request{Prompter: prompter(yes, cmd.InOrStdin(), cmd.OutOrStdout())}
			err = svc.Dispatcher().Dispatch(cmd.Context(), inventory.ActionImportSample, req)
			if errors.Is(err, inventory.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported: now %d crops, %d orders\n", len(svc.Store().Crops()), len(svc.Store().Orders()))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every crop and order on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.loadedService(cmd.Context())
			if err != nil {
				return err
			}
			crops, orders := len(svc.Store().Crops()), len(svc.Store().Orders())

			req := inventory.Request{Prompter: prompter(yes, cmd.InOrStdin(), cmd.OutOrStdout())}
			err = svc.Dispatcher().Dispatch(cmd.Context(), inventory.ActionClearAll, req)
			if errors.Is(err, inventory.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			if err != nil {
				left := len(svc.Store().Crops()) + len(svc.Store().Orders())
				return fmt.Errorf("clear incomplete, %d left: %w", left, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d crops and %d orders\n", crops, orders)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newPingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the farm API answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", app.label, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", app.label)
			return nil
		},
	}
}
