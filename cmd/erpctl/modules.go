package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List and toggle feature modules",
}

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every module with its state",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		if err := a.modules.FetchModules(ctx); err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tENABLED\tICON")
		for _, m := range a.modules.Modules() {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", m.ModuleKey, m.ModuleName, m.IsEnabled, m.IconVariant())
		}
		return w.Flush()
	}),
}

var modulesEnableCmd = &cobra.Command{
	Use:   "enable <key>",
	Short: "Enable a module",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleModule(true),
}

var modulesDisableCmd = &cobra.Command{
	Use:   "disable <key>",
	Short: "Disable a module",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleModule(false),
}

func toggleModule(enabled bool) func(*cobra.Command, []string) error {
	return withApp(func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
		if err := a.modules.ToggleModule(ctx, args[0], enabled); err != nil {
			return err
		}
		state := "disabled"
		if a.modules.IsModuleEnabled(args[0]) {
			state = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], state)
		return nil
	})
}

func init() {
	modulesCmd.AddCommand(modulesListCmd, modulesEnableCmd, modulesDisableCmd)
	rootCmd.AddCommand(modulesCmd)
}
