package main

import (
	"fmt"
	"os"
	"time"

	"custdesk/pkg/config"
	"custdesk/pkg/logger"
	"custdesk/process/report"
	"custdesk/process/sanitize"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	jwtSecret  []byte // from JWT_SECRET; a dev default is allowed outside production
	accessTTL  = 24 * time.Hour
	refreshTTL = 30 * 24 * time.Hour
	appLog     = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app is what PersistentPreRunE hands to the subcommands.
type app struct {
	configDir string
	loader    *config.Loader
	cfg       *config.Config
	level     zap.AtomicLevel
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "custdesk",
		Short:         "Customer records API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = appLog.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "directory holding config.yaml (default: working directory)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Run AutoMigrate and seeding, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Database.AutoMigrate = true
			if err := initDB(a.cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration and seeding completed")
			return nil
		},
	})
	root.AddCommand(a.sanitizeCmd(), a.reportCmd())
	return root
}

func (a *app) load() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	a.loader = config.NewLoader(a.configDir)
	cfg, err := a.loader.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	appLog, a.level = logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	applyAuthConfig(cfg.JWT)
	return nil
}

func applyAuthConfig(c config.JWTConfig) {
	jwtSecret = []byte(c.Secret)
	accessTTL = c.AccessTTL
	refreshTTL = c.RefreshTTL
}

func (a *app) serve() error {
	if err := initDB(a.cfg); err != nil {
		appLog.Error("database init failed", zap.Error(err))
		return err
	}
	if a.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if a.loader.ConfigFile() != "" {
		a.loader.Watch(func(e fsnotify.Event, c *config.Config) {
			a.level.SetLevel(logger.ParseLevel(c.Log.Level))
			appLog.Info("config reloaded", zap.String("file", e.Name), zap.String("log_level", c.Log.Level))
		})
	}

	r := newRouter()
	addr := ":" + a.cfg.App.Port
	appLog.Info("starting server", zap.String("addr", addr), zap.String("env", a.cfg.App.Env), zap.String("driver", a.cfg.Database.Driver))
	return r.Run(addr)
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(logger.RequestIDMiddleware(), logger.GinMiddleware(appLog), logger.Recovery(appLog))
	setupRoutes(r)
	return r
}

func (a *app) sanitizeCmd() *cobra.Command {
	opts := sanitize.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "sanitize",
		Short: "Empty the customer tables (dry run unless --dry-run=false --yes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Database.AutoMigrate = false
			if err := initDB(a.cfg); err != nil {
				return err
			}
			opts.AdminUsername = a.cfg.Seed.AdminUsername
			opts.AdminPassword = a.cfg.Seed.AdminPassword
			return sanitize.Run(cmd.Context(), db, a.cfg.Database.Driver, opts, cmd.OutOrStdout(), appLog)
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", true, "only print actions, do not execute")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm destructive actions")
	cmd.Flags().BoolVar(&opts.Reseed, "reseed", false, "after truncation, reseed roles and admin user")
	cmd.Flags().StringSliceVar(&opts.Tables, "tables", opts.Tables, "tables to truncate")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print customer totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Database.AutoMigrate = false
			if err := initDB(a.cfg); err != nil {
				return err
			}
			return report.Write(cmd.Context(), db, cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print one line per customer")
	return cmd
}
