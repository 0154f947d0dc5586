package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"planeja/internal/insights"
)

func insightsCmd(app func() *App) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show the latest savings insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			var (
				snap insights.Snapshot
				err  error
			)
			if refresh {
				snap, err = a.Insights.Refresh(cmd.Context())
			} else {
				snap, err = a.Insights.Latest(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(snap.Insights) == 0 {
				fmt.Fprintln(out, "Nenhum insight gerado ainda. Use --refresh.")
				return nil
			}
			for _, in := range snap.Insights {
				fmt.Fprintf(out, "[%s] %s\n  %s\n", in.Type, in.Title, in.Message)
			}
			fmt.Fprintf(out, "\nGerado em %s\n", snap.GeneratedAt.Local().Format("02/01/2006 15:04"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "analyze the lists now")
	return cmd
}

func draftCmd(app func() *App) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "draft <description...>",
		Short: "Ask the AI for a list draft from a free-text description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			pending, err := a.Drafts.Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			format := a.Settings.Formatter()
			d := pending.Draft
			fmt.Fprintf(out, "%s\nObjetivo: %s\n", d.Name, d.Goal)
			if d.TargetDate != "" {
				fmt.Fprintf(out, "Data alvo: %s\n", d.TargetDate)
			}
			for _, p := range d.Products {
				fmt.Fprintf(out, "  %dx %s  %s\n", p.Quantity, p.Name, format(p.Price))
			}
			fmt.Fprintf(out, "Total: %s\n", format(pending.Planned))

			if !confirm {
				a.Drafts.Discard(pending.ID)
				fmt.Fprintln(out, "\nRascunho não salvo. Use --confirm para criar a lista.")
				return nil
			}
			l, err := a.Drafts.Confirm(cmd.Context(), pending.ID, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nLista criada: %s\n", l.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "save the draft as a new list")
	return cmd
}
