// Package sanitize empties the service tables, optionally reseeding the
// roles and the administrator afterwards.
package sanitize

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"custdesk/pkg/accounts"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options mirror the sanitize command flags.
type Options struct {
	DryRun        bool
	Yes           bool
	Reseed        bool
	Tables        []string
	AdminUsername string
	AdminPassword string
}

// DefaultTables lists the customer tables, children first.
var DefaultTables = []string{"documents", "customer_professions", "customers", "data_sheets", "professions"}

func DefaultOptions() Options {
	return Options{DryRun: true, Tables: append([]string(nil), DefaultTables...)}
}

// letters, digits, underscore; must not start with a digit
var nameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Run prints the plan to out and, when confirmed, truncates the tables.
// Postgres gets TRUNCATE ... RESTART IDENTITY CASCADE; sqlite a DELETE per
// table in one transaction.
func Run(ctx context.Context, gdb *gorm.DB, driver string, opts Options, out io.Writer, log *zap.Logger) error {
	existing := existingTables(gdb, opts.Tables, log)
	if len(existing) == 0 {
		fmt.Fprintln(out, "no requested tables present in the database; nothing to do")
		return nil
	}

	fmt.Fprintln(out, "Tables considered for truncation:")
	for _, t := range existing {
		fmt.Fprintf(out, " - %s\n", t)
	}
	if opts.DryRun {
		fmt.Fprintln(out, "dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return nil
	}
	if !opts.Yes {
		fmt.Fprintln(out, "Destructive operation. Pass --yes to confirm execution. Aborting.")
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := truncate(gdb.WithContext(ctx), driver, existing, log); err != nil {
		return fmt.Errorf("truncate failed: %w", err)
	}
	fmt.Fprintln(out, "Truncate completed.")

	if opts.Reseed {
		if err := accounts.EnsureRoles(gdb); err != nil {
			return fmt.Errorf("reseed failed: %w", err)
		}
		if _, err := accounts.EnsureAdmin(gdb, opts.AdminUsername, opts.AdminPassword); err != nil {
			return fmt.Errorf("reseed failed: %w", err)
		}
		fmt.Fprintln(out, "Reseeded roles and admin user.")
	}
	return nil
}

// existingTables keeps the valid names that exist, in the requested order.
func existingTables(gdb *gorm.DB, tables []string, log *zap.Logger) []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !nameRe.MatchString(t) {
			log.Warn("skipping invalid table name", zap.String("table", t))
			continue
		}
		if !gdb.Migrator().HasTable(t) {
			log.Info("table not found, skipping", zap.String("table", t))
			continue
		}
		out = append(out, t)
	}
	return out
}

func truncate(gdb *gorm.DB, driver string, tables []string, log *zap.Logger) error {
	quoted := make([]string, 0, len(tables))
	for _, t := range tables {
		quoted = append(quoted, fmt.Sprintf("%q", t))
	}
	if driver != "sqlite" {
		stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
		log.Info("executing", zap.String("statement", stmt))
		return gdb.Exec(stmt).Error
	}
	return gdb.Transaction(func(tx *gorm.DB) error {
		for _, t := range quoted {
			stmt := "DELETE FROM " + t
			log.Info("executing", zap.String("statement", stmt))
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
