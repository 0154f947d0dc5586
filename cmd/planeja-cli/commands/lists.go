package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"planeja/internal/core"
)

func listsCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show every savings list with its progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			lists := a.Planner.Lists()
			out := cmd.OutOrStdout()
			if len(lists) == 0 {
				fmt.Fprintln(out, "Nenhuma lista cadastrada.")
				return nil
			}

			format := a.Settings.Formatter()
			now := time.Now()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOME\tGUARDADO\tPLANEJADO\tPROGRESSO\tPRAZO")
			for _, l := range lists {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\t%s\n",
					l.ID, l.Name, format(l.SavedAmount), format(l.PlannedTotal()), l.Progress(), deadline(l, now))
			}
			return tw.Flush()
		},
	}
}

func deadline(l core.ShoppingList, now time.Time) string {
	days, ok := l.DaysLeft(now)
	switch {
	case !ok:
		return "-"
	case days < 0:
		return fmt.Sprintf("vencida há %d dias", -days)
	case days == 0:
		return "hoje"
	}
	return fmt.Sprintf("%d dias", days)
}

func showCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <list-id>",
		Short: "Show one list with its products and deposits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			l, err := a.Planner.List(args[0])
			if err != nil {
				return err
			}
			printList(cmd.OutOrStdout(), l, a.Settings.Formatter())
			return nil
		},
	}
}

func printList(out io.Writer, l core.ShoppingList, format func(core.Money) string) {
	fmt.Fprintf(out, "%s (%s)\n", l.Name, l.ID)
	fmt.Fprintf(out, "Objetivo: %s\n", l.Goal)
	if l.TargetDate != "" {
		fmt.Fprintf(out, "Data alvo: %s (%s)\n", l.TargetDate, deadline(l, time.Now()))
	}
	fmt.Fprintf(out, "Guardado: %s de %s (%.0f%%), faltam %s\n",
		format(l.SavedAmount), format(l.PlannedTotal()), l.Progress(), format(l.Remaining()))

	if len(l.Products) > 0 {
		fmt.Fprintf(out, "\nProdutos (%d/%d comprados):\n", l.CompletedCount(), len(l.Products))
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, p := range l.Products {
			mark := "[ ]"
			if p.Completed {
				mark = "[x]"
			}
			extra := ""
			if p.Priority != "" {
				extra = string(p.Priority)
			}
			if len(p.Tags) > 0 {
				extra = strings.TrimSpace(extra + " #" + strings.Join(p.Tags, " #"))
			}
			fmt.Fprintf(tw, "%s\t%s\t%dx %s\t%s\t%s\n", mark, p.ID, p.Quantity, p.Name, format(p.Subtotal()), extra)
		}
		_ = tw.Flush()
	}

	if len(l.DepositHistory) > 0 {
		fmt.Fprintln(out, "\nDepósitos:")
		for _, d := range l.DepositHistory {
			fmt.Fprintf(out, "  %s  %s\n", d.Date.Local().Format("02/01/2006"), format(d.Amount))
		}
	}
}

func createCmd(app func() *App) *cobra.Command {
	var targetDate string
	cmd := &cobra.Command{
		Use:   "create <name> <goal>",
		Short: "Create an empty savings list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := app().Planner.CreateList(cmd.Context(), args[0], args[1], targetDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Lista criada: %s\n", l.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&targetDate, "date", "", "target date (YYYY-MM-DD)")
	return cmd
}

func deleteCmd(app func() *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <list-id>",
		Short: "Delete a list and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete without --yes")
			}
			if err := app().Planner.DeleteList(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Lista excluída.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func depositCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <list-id> <amount>",
		Short: "Add money to a list's piggy bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseDecimalToCents(args[1])
			if err != nil {
				return err
			}
			a := app()
			if _, err := a.Planner.AddDeposit(cmd.Context(), args[0], core.Money{Cents: cents}); err != nil {
				return err
			}
			l, err := a.Planner.List(args[0])
			if err != nil {
				return err
			}
			format := a.Settings.Formatter()
			fmt.Fprintf(cmd.OutOrStdout(), "Guardado: %s de %s (%.0f%%)\n",
				format(l.SavedAmount), format(l.PlannedTotal()), l.Progress())
			return nil
		},
	}
}

func totalsCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show totals across every list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			o := a.Planner.Overview()
			format := a.Settings.Formatter()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Listas: %d\n", len(o.Lists))
			fmt.Fprintf(out, "Planejado: %s\n", format(o.TotalPlanned))
			fmt.Fprintf(out, "Guardado: %s (%.0f%%)\n", format(o.TotalSaved), o.Percentage)
			fmt.Fprintf(out, "Próximo fechamento: %s\n", a.Settings.NextCloseDate(time.Now()).Format("02/01/2006"))
			return nil
		},
	}
}
