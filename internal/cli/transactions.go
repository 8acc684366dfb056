package cli

import (
	"strings"

	"github.com/jrsteele09/regulus-console/aml"
	"github.com/spf13/cobra"
)

func (a *App) transactionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List or submit monitored transactions",
	}
	cmd.AddCommand(a.transactionListCommand(), a.transactionCreateCommand())
	return cmd
}

func (a *App) transactionListCommand() *cobra.Command {
	var (
		filter       aml.TransactionFilter
		txType, stat string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Pagination = a.pagination(filter.Pagination)
			filter.Type = aml.TransactionType(strings.ToLower(txType))
			filter.Status = aml.TransactionStatus(strings.ToLower(stat))

			page, err := a.aml.ListTransactions(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(page)
			}
			if len(page.Items) == 0 {
				a.printer.Info("No transactions found")
				return nil
			}

			table := a.table("Transaction", "Account", "Type", "Amount", "Status", "Date")
			for _, tx := range page.Items {
				table.AddRow(
					tx.ID,
					tx.AccountNumber,
					string(tx.Type),
					formatAmount(tx.Amount, tx.Currency),
					a.printer.Status(string(tx.Status)),
					formatTime(tx.Date),
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
	cmd.Flags().StringVar(&txType, "type", "", "deposit, withdrawal, trade-buy or trade-sell")
	cmd.Flags().StringVar(&stat, "status", "", "completed, pending or held")
	return cmd
}

func (a *App) transactionCreateCommand() *cobra.Command {
	var (
		m      aml.ManualTransaction
		txType string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a transaction for monitoring",
		Long: `Submit a single transaction. The monitoring rules run against it as if it
arrived from the core banking feed.

Example:
  regulus transactions create --account ACC-0001 --amount 9500 --currency USD --type deposit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m.Type = aml.TransactionType(strings.ToLower(txType))
			m.Currency = strings.ToUpper(m.Currency)

			ack, err := a.aml.CreateTransaction(cmd.Context(), m)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(ack)
			}
			a.printer.Success("Submitted %s %s for %s", m.Type, formatAmount(m.Amount, m.Currency), m.AccountNumber)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&m.AccountNumber, "account", "", "account number")
	flags.Float64Var(&m.Amount, "amount", 0, "amount")
	flags.StringVar(&m.Currency, "currency", "USD", "ISO currency code")
	flags.StringVar(&txType, "type", string(aml.TransactionDeposit), "deposit, withdrawal, trade-buy or trade-sell")
	flags.StringVar(&m.Purpose, "purpose", "", "purpose recorded on the transaction")
	return cmd
}
