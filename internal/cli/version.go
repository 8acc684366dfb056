package cli

import (
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the console version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printBanner()
			a.printer.Print("%s %s", cmd.Root().Name(), a.version)
			return nil
		},
	}
}

func (a *App) printBanner() {
	if a.printer == nil || a.jsonOutput {
		return
	}
	banner := figure.NewFigure(a.cfg.GetAppName(), "cybermedium", true)
	a.printer.Print("%s", banner.String())
}
