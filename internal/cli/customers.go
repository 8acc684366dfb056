package cli

import (
	"github.com/jrsteele09/regulus-console/aml"
	"github.com/spf13/cobra"
)

func (a *App) customersCommand() *cobra.Command {
	var p aml.Pagination
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.aml.ListCustomers(cmd.Context(), a.pagination(p))
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(page)
			}
			if len(page.Items) == 0 {
				a.printer.Info("No customers found")
				return nil
			}

			table := a.table("Customer", "Name", "Type", "KYC", "Risk")
			for _, c := range page.Items {
				table.AddRow(c.ID, c.FullName, orDash(c.Type), orDash(c.KYCStatus), a.printer.Severity(orDash(c.RiskRating)))
			}
			if err := table.Render(); err != nil {
				return err
			}
			a.pageFooter(page.Page, page.TotalPages, page.Total)
			return nil
		},
	}
	pageFlags(cmd, &p)
	return cmd
}

func (a *App) accountsCommand() *cobra.Command {
	var p aml.Pagination
	cmd := &cobra.Command{
		Use:   "accounts <customer-id>",
		Short: "List a customer's accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.aml.ListAccountsByCustomer(cmd.Context(), args[0], a.pagination(p))
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(page)
			}
			if len(page.Items) == 0 {
				a.printer.Info("No accounts for %s", args[0])
				return nil
			}

			table := a.table("Account", "Type", "Status", "Balance")
			for _, acc := range page.Items {
				table.AddRow(acc.Number, orDash(acc.Type), acc.Status, formatAmount(acc.BalanceAmount, acc.BalanceCurrency))
			}
			if err := table.Render(); err != nil {
				return err
			}
			a.pageFooter(page.Page, page.TotalPages, page.Total)
			return nil
		},
	}
	pageFlags(cmd, &p)
	return cmd
}
