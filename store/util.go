package store

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/tdastore/sqlbuild"
	"github.com/rs/zerolog"
)

// Execute runs a statement that returns no rows.
func (s *Store) Execute(ctx context.Context, sqlText string, args ...any) bool {
	return s.execTx(ctx, []sqlbuild.Statement{{SQL: sqlText, Args: args}}) == nil
}

// Scalar returns the first column of the first row.
func (s *Store) Scalar(ctx context.Context, sqlText string, args ...any) (any, bool) {
	db, err := s.open(ctx)
	if err != nil {
		logFailure(ctx, err, sqlText, "error opening store")
		return nil, false
	}
	defer db.Close()

	var v any
	if err = db.QueryRowContext(ctx, sqlText, args...).Scan(&v); err != nil {
		logFailure(ctx, err, sqlText, "error reading scalar")
		return nil, false
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	return v, true
}

// HasRows reports whether the query returns at least one row.
func (s *Store) HasRows(ctx context.Context, sqlText string, args ...any) bool {
	rows, err := s.fetch(ctx, sqlbuild.Statement{SQL: sqlText, Args: args})
	if err != nil {
		logFailure(ctx, err, sqlText, "error checking rows")
		return false
	}
	return len(rows) > 0
}

func (s *Store) TableExists(ctx context.Context, table string) bool {
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		logFailure(ctx, err, "", "error checking table")
		return false
	}
	return exists
}

// Size is the store file size in bytes as SQLite accounts for it.
func (s *Store) Size(ctx context.Context) (int64, error) {
	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var pages, pageSize int64
	if err = db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pages); err != nil {
		return 0, fmt.Errorf("error reading page_count: %w", err)
	}
	if err = db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, fmt.Errorf("error reading page_size: %w", err)
	}
	return pages * pageSize, nil
}

// Snapshot writes a consistent copy of the store to path, which must not exist.
func (s *Store) Snapshot(ctx context.Context, path string) Result {
	res := NewResult()
	db, err := s.open(ctx)
	if err != nil {
		logFailure(ctx, err, "", "error opening store")
		res.fail(err)
		return res
	}
	defer db.Close()

	if _, err = db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		logFailure(ctx, err, "VACUUM INTO ?", "error writing snapshot")
		res.fail(fmt.Errorf("error in VACUUM INTO: %w", err))
		return res
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("wrote snapshot")
	return res
}
