package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/jrsteele09/regulus-console/internal/config"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/spf13/cobra"
)

func (a *App) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the console configuration",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	cmd.AddCommand(a.configShowCommand(), a.configInitCommand())
	return cmd
}

func (a *App) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultPath()
}

func (a *App) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show every setting after the config file and environment variables are applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolvedConfigPath()
			if err != nil {
				path = ""
			}
			storeKey := "not set"
			if a.cfg.GetStoreKey() != "" {
				storeKey = "set"
			}

			settings := [][2]string{
				{"config_file", orDash(path)},
				{"app_name", a.cfg.GetAppName()},
				{"env", a.cfg.GetEnv()},
				{"log_level", a.cfg.GetLogLevel()},
				{"data_folder", a.cfg.GetDataFolder()},
				{"api_base_url", a.cfg.GetAPIBaseURL()},
				{"device_id", a.cfg.GetDeviceID()},
				{"forwarded_for", a.cfg.GetForwardedFor()},
				{"rate_limit", fmt.Sprint(a.cfg.GetRateLimit())},
				{"refresh_interval", a.cfg.GetRefreshInterval().String()},
				{"page_size", fmt.Sprint(a.cfg.GetPageSize())},
				{"store_key", storeKey},
			}
			if a.jsonOutput {
				values := make(map[string]string, len(settings))
				for _, s := range settings {
					values[s[0]] = s[1]
				}
				return a.printJSON(values)
			}

			table := a.table("Setting", "Value")
			for _, s := range settings {
				table.AddRow(s[0], s[1])
			}
			return table.Render()
		},
	}
}

func (a *App) configInitCommand() *cobra.Command {
	var force, generateKey bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Long: `Write the effective settings to the config file so they can be edited.
With --generate-key a random store key is added and the credential file is
sealed from the next login on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.resolvedConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Wrapf(errors.ErrInvalidInput, "%s already exists, use --force to overwrite", path)
			}

			f := &config.File{
				AppName:         a.cfg.GetAppName(),
				Env:             a.cfg.GetEnv(),
				LogLevel:        a.cfg.GetLogLevel(),
				DataFolder:      a.cfg.GetDataFolder(),
				APIBaseURL:      a.cfg.GetAPIBaseURL(),
				DeviceID:        a.cfg.GetDeviceID(),
				ForwardedFor:    a.cfg.GetForwardedFor(),
				RateLimit:       a.cfg.GetRateLimit(),
				RefreshInterval: a.cfg.GetRefreshInterval().String(),
				PageSize:        a.cfg.GetPageSize(),
				StoreKey:        a.cfg.GetStoreKey(),
			}
			if generateKey {
				key := make([]byte, 32)
				if _, err := rand.Read(key); err != nil {
					return fmt.Errorf("generate store key: %w", err)
				}
				f.StoreKey = hex.EncodeToString(key)
			}

			if err := config.WriteFile(path, f); err != nil {
				return err
			}
			a.printer.Success("Wrote %s", path)
			if generateKey {
				a.printer.Warning("A new store key was generated; sign in again to seal the session")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&generateKey, "generate-key", false, "add a random key that seals the credential file")
	return cmd
}
