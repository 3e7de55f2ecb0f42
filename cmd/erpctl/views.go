package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/erp-avicola/internal/service/commands"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard figures",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		stats, err := a.dashboard.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), commands.FormatSummary(stats))
		return nil
	}),
}

var inventoryCmd = &cobra.Command{
	Use:   "inventory [search]",
	Short: "List active inventory items, optionally filtered by name or SKU",
	Args:  cobra.ArbitraryArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		rows, err := a.inventory.List(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SKU\tITEM\tCATEGORY\tSTOCK\tMIN\tSTATUS")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.SKU, r.ItemName, r.CategoryLabel, r.CurrentStockDisplay, r.MinStockDisplay, r.StatusLabel)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d items\n", len(rows))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(dashboardCmd, inventoryCmd)
}
