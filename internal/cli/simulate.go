package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) scenariosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the transaction patterns the simulator can replay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := a.aml.ListScenarios(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(scenarios)
			}
			if len(scenarios) == 0 {
				a.printer.Info("No scenarios available")
				return nil
			}

			table := a.table("Scenario", "Name", "Description")
			for _, s := range scenarios {
				table.AddRow(s.ID, s.Name, truncate(orDash(s.Description), 70))
			}
			return table.Render()
		},
	}
}

func (a *App) simulateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <account-number> <scenario-id>",
		Short: "Replay a scenario against an account",
		Long: `Replay a canned transaction pattern against an account so the monitoring
rules raise alerts and cases for it. Use 'regulus scenarios' for the IDs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.aml.RunScenario(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(result)
			}
			a.printer.Success("Ran %s against %s", args[1], args[0])
			return nil
		},
	}
}
