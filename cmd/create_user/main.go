package main

import (
	"errors"
	"fmt"
	"os"

	"custdesk/models"
	"custdesk/pkg/accounts"
	"custdesk/pkg/config"
	"custdesk/pkg/database"
	"custdesk/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCmd() *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:           "create_user <username> <password>",
		Short:         "Create an API user",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			role := models.RoleUser
			if admin {
				role = models.RoleAdministrator
			}
			user, err := accounts.CreateUser(db, args[0], args[1], role)
			if errors.Is(err, accounts.ErrUserExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists\n", args[0])
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s id=%d role=%s\n", user.Username, user.ID, role)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the administrator role")
	return cmd
}

// openDB reads the same .env/config.yaml/environment as the server.
func openDB() (*gorm.DB, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.NewLoader("").Load()
	if err != nil {
		return nil, err
	}
	log, _ := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"})
	return database.Open(cfg.Database, log)
}
