package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"planeja/internal/core"
	"planeja/internal/planner"
)

func addProductCmd(app func() *App) *cobra.Command {
	var (
		in       planner.ProductInput
		priority string
	)
	cmd := &cobra.Command{
		Use:   "add-product <list-id> <name> <price>",
		Short: "Add a product to a list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := core.ParsePrice(args[2])
			if err != nil {
				return err
			}
			prio, err := core.ParsePriority(priority)
			if err != nil {
				return err
			}
			in.Name, in.Price, in.Priority = args[1], price, prio

			a := app()
			p, err := a.Planner.AddProduct(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Produto adicionado: %s (%dx %s)\n",
				p.ID, p.Quantity, a.Settings.FormatCurrency(p.Price))
			return nil
		},
	}
	cmd.Flags().IntVarP(&in.Quantity, "qty", "q", 1, "quantity")
	cmd.Flags().StringVar(&priority, "priority", "", "baixa, média or alta")
	cmd.Flags().StringVar(&in.Store, "store", "", "where to buy it")
	cmd.Flags().StringVar(&in.Link, "link", "", "product URL")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringSliceVar(&in.Tags, "tags", nil, "comma-separated tags")
	return cmd
}

func toggleCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <list-id> <product-id>",
		Short: "Mark a product as bought, or undo it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app().Planner.ToggleProduct(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			state := "pendente"
			if p.Completed {
				state = "comprado"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", p.Name, state)
			return nil
		},
	}
}
