package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"marketsnapshot/internal/table"
)

// DefaultSQLiteTable receives the snapshot when a SQLite path is configured.
const DefaultSQLiteTable = "screener_results"

// SQLiteSink stores snapshots in a SQLite database for downstream queries.
type SQLiteSink struct {
	db        *sql.DB
	tableName string
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(ctx context.Context, path, tableName string) (*SQLiteSink, error) {
	if tableName == "" {
		tableName = DefaultSQLiteTable
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	return &SQLiteSink{db: db, tableName: tableName}, nil
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Replace drops and recreates the snapshot table and inserts every row in a
// single transaction. Every column is TEXT; Null cells are stored as NULL.
func (s *SQLiteSink) Replace(ctx context.Context, tbl table.Table) error {
	if len(tbl.Columns) == 0 {
		return fmt.Errorf("table has no columns")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	name := quoteIdent(s.tableName)
	cols := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		cols[i] = quoteIdent(c) + " TEXT"
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop %s: %w", s.tableName, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", s.tableName, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tbl.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(tbl.Columns))
	for i, row := range tbl.Rows {
		if len(row) != len(tbl.Columns) {
			return fmt.Errorf("row %d has %d cells, table has %d columns", i, len(row), len(tbl.Columns))
		}
		for j, c := range row {
			if c.IsNull() {
				args[j] = nil
				continue
			}
			args[j] = c.String()
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of rows currently stored.
func (s *SQLiteSink) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(s.tableName)).Scan(&n)
	return n, err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
