// Copyright (c) 2025 Genie CLI
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export materializes a fetched statement result into a PostgreSQL
// table over a pgx connection pool. The table is created from the result
// schema when missing and the rows are inserted inside one transaction, so
// a partial export never survives a failure.
package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"genie/cli/internal/genie"
)

// identPattern restricts export table names to plain (optionally
// schema-qualified) identifiers; everything else must be quoted by the user
// creating the table themselves.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Exporter writes statement results into Postgres.
type Exporter struct {
	pool *pgxpool.Pool
}

// New creates an Exporter from an existing pgx pool.
func New(pool *pgxpool.Pool) *Exporter {
	return &Exporter{pool: pool}
}

// WriteResult creates table if missing and inserts every row of result.
// It returns the number of rows written.
func (e *Exporter) WriteResult(ctx context.Context, table string, result *genie.StatementResult) (int64, error) {
	if !result.Succeeded() {
		return 0, fmt.Errorf("statement result state is %q, refusing to export", result.State)
	}
	if len(result.Columns) == 0 {
		return 0, fmt.Errorf("statement result has no schema")
	}
	if !identPattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createTableSQL(table, result.Columns)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", table, err)
	}

	insert := insertSQL(table, result.Columns)
	batch := &pgx.Batch{}
	for _, row := range result.Rows {
		args := make([]any, len(row))
		for i, v := range row {
			if v == "" {
				args[i] = nil
				continue
			}
			args[i] = v
		}
		batch.Queue(insert, args...)
	}
	br := tx.SendBatch(ctx, batch)
	for range result.Rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("flush batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int64(len(result.Rows)), nil
}

// createTableSQL builds a CREATE TABLE IF NOT EXISTS statement from the
// result schema.
func createTableSQL(table string, columns []genie.Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(c.Name), pgType(c.Type))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
}

// insertSQL builds the parameterized INSERT for one row.
func insertSQL(table string, columns []genie.Column) string {
	names := make([]string, len(columns))
	holders := make([]string, len(columns))
	for i, c := range columns {
		names[i] = quoteIdent(c.Name)
		holders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(names, ", "), strings.Join(holders, ", "))
}

// pgType maps a statement result column type to a Postgres type. Values
// arrive as strings, so numeric columns are stored as numeric and anything
// unrecognized degrades to text.
func pgType(resultType string) string {
	switch strings.ToUpper(resultType) {
	case "TINYINT", "SMALLINT", "INT", "INTEGER", "BIGINT", "LONG":
		return "bigint"
	case "FLOAT", "DOUBLE", "REAL":
		return "double precision"
	case "DECIMAL", "NUMERIC":
		return "numeric"
	case "BOOLEAN":
		return "boolean"
	case "DATE":
		return "date"
	case "TIMESTAMP", "TIMESTAMP_NTZ":
		return "timestamp"
	default:
		return "text"
	}
}

// quoteIdent double-quotes a column identifier, escaping embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
