package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/username/timesheet-bot/internal/config"
	"github.com/username/timesheet-bot/internal/harvest"
	"github.com/username/timesheet-bot/pkg/dateutil"
	"go.uber.org/zap"
)

func projectsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List project and task ids from your recent time entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			client, err := newHarvestClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			to := dateutil.Today()
			from := to.AddDays(-days)
			pairs, err := client.RecentProjectTasks(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			printProjects(pairs)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "How many days back to look")

	return cmd
}

func initCmd() *cobra.Command {
	var accountID string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = "config.yaml"
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.Starter(accountID).Save(path); err != nil {
				return err
			}

			logger.Info("Starter config written", zap.String("path", path))
			syncPrintf("✅ Wrote %s\n", path)
			syncPrintln("   Fill in project_id/task_id for each entry (see 'timesheet-bot projects'),")
			syncPrintln("   then store your token with 'timesheet-bot auth set'.")
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account-id", "", "Harvest account id")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func authCmd() *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Harvest access token in the OS keyring",
	}
	cmd.PersistentFlags().StringVar(&accountID, "account-id", "", "Harvest account id (default from config)")

	resolveAccount := func() (string, error) {
		if accountID != "" {
			return accountID, nil
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return "", fmt.Errorf("--account-id not given and config not loadable: %w", err)
		}
		return cfg.Harvest.AccountID, nil
	}

	var token string
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store the access token (read from --token or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := resolveAccount()
			if err != nil {
				return err
			}

			if token == "" {
				syncPrintf("Harvest personal access token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}

			if err := harvest.StoreToken(account, token); err != nil {
				return err
			}

			logger.Info("Access token stored", zap.String("account_id", account))
			syncPrintf("✅ Token stored in keyring for account %s\n", account)
			return nil
		},
	}
	setCmd.Flags().StringVar(&token, "token", "", "Access token (prompted when empty)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := resolveAccount()
			if err != nil {
				return err
			}

			if err := harvest.ClearToken(account); err != nil {
				return err
			}

			logger.Info("Access token removed", zap.String("account_id", account))
			syncPrintf("✅ Token removed from keyring for account %s\n", account)
			return nil
		},
	}

	cmd.AddCommand(setCmd, clearCmd)

	return cmd
}
