package main

import (
	"fmt"
	"os"

	"custdesk/pkg/accounts"
	"custdesk/pkg/config"
	"custdesk/pkg/database"
	"custdesk/pkg/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:           "reset_password --username <name> --password <new>",
		Short:         "Replace a user's password",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < accounts.MinPasswordLen {
				return accounts.ErrPasswordTooShort
			}
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			cfg, err := config.NewLoader("").Load()
			if err != nil {
				return err
			}
			log, _ := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"})
			db, err := database.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := accounts.ResetPassword(db, username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password reset for user %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username to reset")
	cmd.Flags().StringVar(&password, "password", "", "new plaintext password (min 6 chars)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
