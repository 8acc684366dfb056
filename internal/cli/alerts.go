package cli

import (
	"strings"

	"github.com/jrsteele09/regulus-console/aml"
	"github.com/spf13/cobra"
)

// pageFlags binds --page and --page-size. A zero page size means the
// configured default.
func pageFlags(cmd *cobra.Command, p *aml.Pagination) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "rows per page (default from config)")
}

func (a *App) pagination(p aml.Pagination) aml.Pagination {
	if p.PageSize <= 0 {
		p.PageSize = a.cfg.GetPageSize()
	}
	return p
}

func (a *App) alertsCommand() *cobra.Command {
	var (
		filter   aml.AlertFilter
		severity string
	)
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List alerts raised by the monitoring rules",
		Long: `List alerts raised by the monitoring rules, newest first.

Examples:
  regulus alerts                          # First page of alerts
  regulus alerts --severity high          # High severity only
  regulus alerts --account ACC-0001       # Alerts for one account`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Pagination = a.pagination(filter.Pagination)
			filter.Severity = aml.Severity(strings.ToLower(severity))

			page, err := a.aml.ListAlerts(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(page)
			}
			if len(page.Items) == 0 {
				a.printer.Info("No alerts found")
				return nil
			}

			table := a.table("Alert", "Account", "Severity", "Rule", "Triggered", "Description")
			for _, alert := range page.Items {
				table.AddRow(
					alert.ID,
					alert.AccountNumber,
					a.printer.Severity(string(alert.Severity)),
					orDash(alert.RuleID),
					formatTime(alert.TriggeredDate),
					truncate(alert.Description, 60),
				)
			}
			if err := table.Render(); err != nil {
				return err
			}
			a.pageFooter(page.Page, page.TotalPages, page.Total)
			return nil
		},
	}
	pageFlags(cmd, &filter.Pagination)
	cmd.Flags().StringVar(&filter.AccountNumber, "account", "", "account number")
	cmd.Flags().StringVar(&severity, "severity", "", "low, medium or high")
	cmd.Flags().StringVar(&filter.RuleID, "rule", "", "rule ID")
	return cmd
}
