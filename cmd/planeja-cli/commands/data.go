package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func settingsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(app().Settings.Get())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "set <section> <json>",
		Short:   "Merge fields into one settings section",
		Example: `  planeja-cli settings set notifications '{"reminderDays":7}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := app().Settings.Update(cmd.Context(), args[0], json.RawMessage(args[1]))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(updated)
		},
	})
	return cmd
}

func exportCmd(app func() *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of lists and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := app().Settings.Export(cmd.Context())
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(append(backup.Body, '\n'))
				return err
			}
			if out == "" {
				out = backup.Filename
			}
			if err := os.WriteFile(out, backup.Body, 0o600); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup salvo em %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default planeja_backup_<date>.json)")
	return cmd
}

func clearCmd(app func() *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase every list and reset settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to erase all data without --yes")
			}
			if err := app().Settings.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Todos os dados foram apagados.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm erasing all data")
	return cmd
}

func syncSheetCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-sheet",
		Short: "Mirror every list to the configured Google spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if a.Sheets == nil {
				return fmt.Errorf("no spreadsheet configured (set GOOGLE_SPREADSHEET_ID)")
			}
			sync, err := a.Sheets(cmd.Context())
			if err != nil {
				return err
			}
			n, err := sync.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d listas enviadas para a planilha.\n", n)
			return nil
		},
	}
}
