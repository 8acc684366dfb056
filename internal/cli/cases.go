package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/regulus-console/aml"
	"github.com/jrsteele09/regulus-console/internal/utils"
	"github.com/spf13/cobra"
)

func (a *App) casesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cases",
		Aliases: []string{"case"},
		Short:   "Review investigation cases",
	}
	cmd.AddCommand(
		a.caseListCommand(),
		a.caseShowCommand(),
		a.caseDocumentsCommand(),
		a.caseDecideCommand(),
		a.caseSARCommand(),
	)
	return cmd
}

func (a *App) caseListCommand() *cobra.Command {
	var (
		filter aml.CaseFilter
		status string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cases",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Pagination = a.pagination(filter.Pagination)
			filter.Status = aml.CaseStatus(strings.ToUpper(status))

			page, err := a.aml.ListCases(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(page)
			}
			if len(page.Items) == 0 {
				a.printer.Info("No cases found")
				return nil
			}

			table := a.table("Case", "Account", "Status", "Score", "Assigned", "Opened")
			for _, c := range page.Items {
				table.AddRow(
					c.ID,
					c.AccountNumber,
					a.printer.Status(string(c.Status)),
					a.printer.Score(c.ScorePercentage, aml.HighConfidenceThreshold, aml.FalsePositiveThreshold),
					orDash(c.AssignedTo),
					formatTime(c.OpenedDate),
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
	cmd.Flags().StringVar(&status, "status", "", "OPEN, CLOSE or ACCEPTED")
	return cmd
}

func (a *App) caseShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <case-id>",
		Short: "Show a case with its agent assessments and decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.aml.GetCase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(c)
			}

			a.printer.Header("Case " + c.ID)
			details := a.table("Field", "Value")
			details.AddRow("Account", c.AccountNumber)
			details.AddRow("Status", a.printer.Status(string(c.Status)))
			details.AddRow("Score", a.printer.Score(c.ScorePercentage, aml.HighConfidenceThreshold, aml.FalsePositiveThreshold))
			details.AddRow("Alert", orDash(c.AlertID))
			details.AddRow("Transaction", orDash(c.TransactionID))
			details.AddRow("Assigned", orDash(c.AssignedTo))
			details.AddRow("Opened", formatTime(c.OpenedDate))
			if c.Closed() {
				details.AddRow("Closed", formatTime(c.ClosedDate))
			}
			if err := details.Render(); err != nil {
				return err
			}
			if c.Summary != "" {
				a.printer.Print("\n%s", c.Summary)
			}

			agents := a.table("Agent", "Score", "Summary")
			for _, agent := range c.Agents() {
				if agent.Score == nil && agent.Summary == "" {
					continue
				}
				score := "-"
				if agent.Score != nil {
					score = a.printer.Score(utils.Value(agent.Score), aml.HighConfidenceThreshold, aml.FalsePositiveThreshold)
				}
				agents.AddRow(agent.Label, score, truncate(orDash(agent.Summary), 80))
			}
			if agents.Len() > 0 {
				a.printer.Header("Agent assessments")
				if err := agents.Render(); err != nil {
					return err
				}
			}

			if len(c.Decisions) > 0 {
				a.printer.Header("Decisions")
				table := a.table("Decision", "By", "Date", "Next action", "Reason")
				for _, d := range c.Decisions {
					table.AddRow(string(d.Decision), d.DecisionBy, formatTime(d.DecisionDate), orDash(string(d.NextAction)), d.Reason)
				}
				if err := table.Render(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *App) caseDocumentsCommand() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "documents <case-id>",
		Short: "List the documents attached to a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.aml.CaseDocuments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(docs)
			}
			if len(docs) == 0 {
				a.printer.Info("No documents for %s", args[0])
				return nil
			}
			if show {
				for _, doc := range docs {
					a.printer.Header(fmt.Sprintf("%s v%d (%s)", doc.ID, doc.Version, doc.ContentType))
					a.printer.Print("%s", doc.Content)
				}
				return nil
			}

			table := a.table("Document", "Type", "Version", "Generated by", "Created")
			for _, doc := range docs {
				table.AddRow(doc.ID, doc.ContentType, fmt.Sprintf("%d", doc.Version), orDash(doc.GeneratedBy), formatTime(doc.CreatedDate))
			}
			return table.Render()
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "print document contents")
	return cmd
}

func (a *App) caseDecideCommand() *cobra.Command {
	var (
		decision   string
		nextAction string
		d          aml.Decision
	)
	cmd := &cobra.Command{
		Use:   "decide <case-id>",
		Short: "Accept or reject a case",
		Long: `Record a decision on a case. Accepting requires a next action:
file-sar, escalate or request-additional-documents.

Examples:
  regulus cases decide CASE-0001 --decision accept --next-action file-sar --reason "Structuring pattern"
  regulus cases decide CASE-0002 --decision reject --reason "Known payroll run"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Decision = aml.DecisionType(strings.ToUpper(decision))
			d.NextAction = aml.NextAction(strings.ToLower(nextAction))

			recorded, err := a.aml.SubmitDecision(cmd.Context(), args[0], d)
			if err != nil {
				return err
			}
			if recorded == nil {
				recorded = &aml.CaseDecision{CaseID: args[0], Decision: d.Decision, NextAction: d.NextAction}
			}
			if a.jsonOutput {
				return a.printJSON(recorded)
			}
			message := fmt.Sprintf("Recorded %s on %s", recorded.Decision, args[0])
			if recorded.NextAction != "" {
				message += ", next action " + string(recorded.NextAction)
			}
			a.printer.Success("%s", message)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&decision, "decision", "", "accept or reject")
	flags.StringVar(&nextAction, "next-action", "", "follow-up for an accepted case")
	flags.StringVar(&d.Reason, "reason", "", "reason for the decision")
	flags.StringVar(&d.DecisionBy, "by", aml.DecisionByComplianceManager, "decision maker recorded on the case")
	_ = cmd.MarkFlagRequired("decision")
	return cmd
}

func (a *App) caseSARCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "sar <case-id>",
		Short: "Generate and download the SAR document for a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID := args[0]
			doc, err := a.aml.GenerateSAR(cmd.Context(), caseID)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, aml.SARFileName(caseID))
			if err := os.WriteFile(path, doc, 0o600); err != nil {
				return fmt.Errorf("save SAR: %w", err)
			}
			a.printer.Success("Saved %s (%d bytes)", path, len(doc))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "o", ".", "directory to save the document in")
	return cmd
}
