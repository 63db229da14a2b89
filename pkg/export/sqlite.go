package export

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/epf/core/epf"
)

// SQLiteStore persists dataset tables in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// WriteTable replaces the table named t.Name() with the contents of t.
func (s *SQLiteStore) WriteTable(ctx context.Context, t epf.Table) error {
	cols := t.Columns()
	defs := make([]string, len(cols))
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quote(c)
		defs[i] = quote(c) + " " + columnType(c)
		marks[i] = "?"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(t.Name())); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", quote(t.Name()), strings.Join(defs, ", "))); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(t.Name()), strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < t.Len(); i++ {
		vals := t.Values(i)
		for j, v := range vals {
			vals[j] = sqlValue(v)
		}
		if _, err := stmt.ExecContext(ctx, vals...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", t.Name(), i, err)
		}
	}
	return tx.Commit()
}

// ReadTargets returns the rows of table y ordered by region then time.
func (s *SQLiteStore) ReadTargets(ctx context.Context) ([]epf.TargetRow, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s, %s, %s FROM y ORDER BY %s, %s`,
		quote(epf.ColRegionID), quote(epf.ColTimestamp), quote(epf.ColTarget),
		quote(epf.ColRegionID), quote(epf.ColTimestamp)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []epf.TargetRow
	for rows.Next() {
		var r epf.TargetRow
		var ts string
		if err := rows.Scan(&r.RegionID, &ts, &r.Value); err != nil {
			return nil, err
		}
		if r.Timestamp, err = time.Parse(epf.TimestampLayout, ts); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func writeSQLite(ctx context.Context, path string, ds *epf.Dataset) (err error) {
	store, err := OpenSQLite(path)
	if err != nil {
		return &epf.IOError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		if cerr := store.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	for _, t := range ds.Tables() {
		if err := store.WriteTable(ctx, t); err != nil {
			return &epf.IOError{Op: "write " + t.Name(), Path: path, Err: err}
		}
	}
	return nil
}

func columnType(col string) string {
	switch {
	case col == epf.ColRegionID, col == epf.ColTimestamp:
		return "TEXT"
	case col == epf.ColTarget, strings.HasPrefix(col, "exogenous_"):
		return "REAL"
	default:
		return "INTEGER"
	}
}

func sqlValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(epf.TimestampLayout)
	case float64:
		if math.IsNaN(x) {
			return nil
		}
	}
	return v
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
