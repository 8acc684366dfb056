package cli

import (
	"strings"

	"github.com/jrsteele09/regulus-console/auth"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/jrsteele09/regulus-console/internal/utils"
	"github.com/spf13/cobra"
)

func (a *App) loginCommand() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with a username and password. The bearer token and its expiry are
stored in the data folder and used by every later command.

Prompts for anything not given as a flag; the password is not echoed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if username, err = a.prompt("Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.promptSecret("Password: "); err != nil {
					return err
				}
			}

			result, err := a.auth.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				summary := map[string]any{"user": result.User}
				if !result.Expiry.IsZero() {
					summary["expires_at"] = result.Expiry
				}
				return a.printJSON(summary)
			}

			name := username
			if result.User != nil && result.User.FullName != "" {
				name = result.User.FullName
			}
			a.printer.Success("Signed in as %s", name)
			if !result.Expiry.IsZero() {
				a.printer.Info("Session expires %s", result.Expiry.Local().Format(timeLayout))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(); err != nil {
				return err
			}
			a.printer.Success("Signed out")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.auth.Authenticated() {
				return errors.ErrNoCredential
			}
			claims, err := a.auth.Claims()
			if errors.Is(err, errors.ErrInvalidInput) {
				a.printer.Success("Signed in with an opaque token")
				return nil
			}
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(claims)
			}

			table := a.table("Field", "Value")
			table.AddRow("Subject", orDash(claims.Subject))
			table.AddRow("Issued", orDash(formatClock(claims.IssuedAt)))
			table.AddRow("Expires", orDash(formatClock(claims.ExpiresAt)))
			return table.Render()
		},
	}
}

func (a *App) signupCommand() *cobra.Command {
	var (
		req      auth.SignupRequest
		userType string
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an operator account",
		Long: `Create an operator account in an organization. Every field is checked
before the request is sent and all problems are reported together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.UserType = auth.UserType(strings.ToLower(userType))
			if req.Password == "" {
				password, err := a.promptSecret("Password: ")
				if err != nil {
					return err
				}
				req.Password = password
			}
			if inactive {
				req.IsActive = utils.Ptr(false)
			}

			user, err := a.auth.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(user)
			}
			a.printer.Success("Created %s (%s) in %s", user.Username, orDash(user.ID), orDash(user.OrganizationID))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.OrganizationID, "org", auth.DefaultOrganizationID, "organization ID")
	flags.StringVarP(&req.Username, "username", "u", "", "username")
	flags.StringVar(&req.FullName, "full-name", "", "full name")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVar(&userType, "user-type", string(auth.UserTypeComplianceManager), "compliance_manager or admin")
	flags.StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	flags.BoolVar(&inactive, "inactive", false, "create the account disabled")
	return cmd
}
