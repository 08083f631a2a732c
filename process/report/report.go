// Package report prints customer totals for operators.
package report

import (
	"context"
	"fmt"
	"io"

	"custdesk/models"

	"gorm.io/gorm"
)

// Totals are the row counts shown at the top of the report.
type Totals struct {
	Customers   int64
	Active      int64
	Inactive    int64
	Professions int64
	DataSheets  int64
	Documents   int64
}

// Row is one customer line of the --list output.
type Row struct {
	ID             uint
	Name           string
	Active         bool
	NumProfessions int64
	NumDocuments   int64
}

// Collect counts the service tables.
func Collect(ctx context.Context, gdb *gorm.DB) (Totals, error) {
	var t Totals
	db := gdb.WithContext(ctx)
	counts := []struct {
		query *gorm.DB
		dst   *int64
	}{
		{db.Model(&models.Customer{}), &t.Customers},
		{db.Model(&models.Customer{}).Where("active = ?", true), &t.Active},
		{db.Model(&models.Profession{}), &t.Professions},
		{db.Model(&models.DataSheet{}), &t.DataSheets},
		{db.Model(&models.Document{}), &t.Documents},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return Totals{}, fmt.Errorf("count failed: %w", err)
		}
	}
	t.Inactive = t.Customers - t.Active
	return t, nil
}

// Rows lists every customer with its profession and document counts, by id.
func Rows(ctx context.Context, gdb *gorm.DB) ([]Row, error) {
	var rows []Row
	err := gdb.WithContext(ctx).Raw(`SELECT c.id AS id, c.name AS name, c.active AS active,
		(SELECT COUNT(*) FROM customer_professions cp WHERE cp.customer_id = c.id) AS num_professions,
		(SELECT COUNT(*) FROM documents d WHERE d.customer_id = c.id) AS num_documents
		FROM customers c ORDER BY c.id`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch rows failed: %w", err)
	}
	return rows, nil
}

// Write prints the totals and, with list, one id|name|active|num_professions|num_documents line per customer.
func Write(ctx context.Context, gdb *gorm.DB, out io.Writer, list bool) error {
	t, err := Collect(ctx, gdb)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Customer report:")
	fmt.Fprintf(out, "  customers=%d active=%d inactive=%d\n", t.Customers, t.Active, t.Inactive)
	fmt.Fprintf(out, "  professions=%d data_sheets=%d documents=%d\n", t.Professions, t.DataSheets, t.Documents)
	if !list {
		return nil
	}
	rows, err := Rows(ctx, gdb)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%d|%s|%t|%d|%d\n", r.ID, r.Name, r.Active, r.NumProfessions, r.NumDocuments)
	}
	return nil
}
