package store

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/tdastore/gologger"
	"github.com/danthegoodman1/tdastore/schema"
	"github.com/danthegoodman1/tdastore/sqlbuild"
	"github.com/rs/zerolog"
)

// CreateTable creates d's table. An existing table is left alone unless
// overwrite is set, in which case it is dropped and recreated in one
// transaction and its rows are lost.
func (s *Store) CreateTable(ctx context.Context, d *schema.Descriptor, overwrite bool) Result {
	ctx = gologger.WithTable(ctx, d.Table)
	res := NewResult()

	exists, err := s.tableExists(ctx, d.Table)
	if err != nil {
		logFailure(ctx, err, sqlbuild.TableExists(d.Table).SQL, "error checking table")
		res.fail(err)
		return res
	}
	if exists && !overwrite {
		zerolog.Ctx(ctx).Debug().Msg("table exists, not recreating")
		return res
	}

	stmts := []sqlbuild.Statement{sqlbuild.CreateTable(d)}
	if exists {
		stmts = sqlbuild.RecreateTable(d)
	}
	if err = s.execTx(ctx, stmts); err != nil {
		res.fail(err)
		return res
	}
	zerolog.Ctx(ctx).Debug().Bool("replaced", exists).Msg("created table")
	return res
}

// CreateTable creates the table for record type T.
func CreateTable[T any, P RecordPtr[T]](ctx context.Context, s *Store, overwrite bool) Result {
	return s.CreateTable(ctx, descriptorOf[T, P](), overwrite)
}

func (s *Store) tableExists(ctx context.Context, table string) (bool, error) {
	rows, err := s.fetch(ctx, sqlbuild.TableExists(table))
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// execTx runs stmts in a single transaction, rolling back on the first failure.
func (s *Store) execTx(ctx context.Context, stmts []sqlbuild.Statement) error {
	db, err := s.open(ctx)
	if err != nil {
		logFailure(ctx, err, "", "error opening store")
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		logFailure(ctx, err, "", "error beginning transaction")
		return fmt.Errorf("error in BeginTx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			logFailure(ctx, err, stmt.SQL, "error executing statement")
			return fmt.Errorf("error in ExecContext: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		logFailure(ctx, err, "", "error committing transaction")
		return fmt.Errorf("error in tx.Commit: %w", err)
	}
	return nil
}
