package testkit

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jmoiron/sqlx"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SeedTable creates table (if missing) and inserts every generated row in
// one transaction. Blank cells are stored as NULL.
func SeedTable(ctx context.Context, db *sqlx.DB, table string, c *Campaigns) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		date TEXT NOT NULL,
		campaign TEXT NOT NULL,
		impressions REAL,
		clicks REAL,
		conversions REAL,
		cost REAL
	)`, table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := tx.Rebind(fmt.Sprintf(
		"INSERT INTO %s (date, campaign, impressions, clicks, conversions, cost) VALUES (?, ?, ?, ?, ?, ?)", table))
	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range c.Rows {
		args := make([]interface{}, len(row))
		args[0], args[1] = row[0], row[1]
		for j := 2; j < len(row); j++ {
			args[j] = nullableFloat(row[j])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func nullableFloat(s string) interface{} {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return v
}
