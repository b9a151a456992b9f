package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/danthegoodman1/tdastore/coerce"
	"github.com/danthegoodman1/tdastore/gologger"
	"github.com/danthegoodman1/tdastore/sqlbuild"
	"github.com/rs/zerolog"
)

// Insert writes one record and sets its key to the new row id.
func Insert(ctx context.Context, s *Store, rec Record) bool {
	return insert(ctx, s, []Record{rec})
}

// InsertAll writes every record in one transaction. Either all rows are
// written or none are.
func InsertAll[T any, P RecordPtr[T]](ctx context.Context, s *Store, recs []T) bool {
	batch := make([]Record, len(recs))
	for i := range recs {
		batch[i] = P(&recs[i])
	}
	return insert(ctx, s, batch)
}

func insert(ctx context.Context, s *Store, recs []Record) bool {
	if len(recs) == 0 {
		return true
	}
	d := recs[0].Descriptor()
	ctx = gologger.WithTable(ctx, d.Table)

	stmts := make([]sqlbuild.Statement, len(recs))
	for i, rec := range recs {
		stmt, err := sqlbuild.Insert(rec.Descriptor(), rec.Values())
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int("record", i).Msg("error building insert")
			return false
		}
		stmts[i] = stmt
	}

	db, err := s.open(ctx)
	if err != nil {
		logFailure(ctx, err, "", "error opening store")
		return false
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		logFailure(ctx, err, "", "error beginning transaction")
		return false
	}
	defer tx.Rollback()

	ids := make([]int64, len(stmts))
	for i, stmt := range stmts {
		r, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			logFailure(ctx, err, stmt.SQL, "error inserting record")
			return false
		}
		if ids[i], err = r.LastInsertId(); err != nil {
			logFailure(ctx, err, stmt.SQL, "error reading inserted id")
			return false
		}
	}
	if err = tx.Commit(); err != nil {
		logFailure(ctx, err, "", "error committing inserts")
		return false
	}

	for i, rec := range recs {
		key := rec.Descriptor().KeyIndex()
		if err = coerce.Assign(rec.Pointers()[key], ids[i]); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("error assigning inserted id")
		}
	}
	return true
}

// Update writes every non-key field of rec to the row with rec's key.
func Update(ctx context.Context, s *Store, rec Record) Result {
	d := rec.Descriptor()
	ctx = gologger.WithTable(ctx, d.Table)
	res := NewResult()
	stmt, err := sqlbuild.Update(d, rec.Values())
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("error building update")
		res.fail(err)
		return res
	}
	if err = s.execTx(ctx, []sqlbuild.Statement{stmt}); err != nil {
		res.fail(err)
	}
	return res
}

func DeleteByID[T any, P RecordPtr[T]](ctx context.Context, s *Store, id int64) Result {
	return s.exec(ctx, descriptorOf[T, P]().Table, sqlbuild.DeleteByID(descriptorOf[T, P](), id))
}

// DeleteByIDs is a successful no-op for an empty id list.
func DeleteByIDs[T any, P RecordPtr[T]](ctx context.Context, s *Store, ids []int64) Result {
	d := descriptorOf[T, P]()
	stmt, err := sqlbuild.DeleteByIDs(d, ids)
	if errors.Is(err, sqlbuild.ErrEmptyIDList) {
		return NewResult()
	}
	return s.exec(ctx, d.Table, stmt)
}

// DeleteAll removes every row whose key is positive.
func DeleteAll[T any, P RecordPtr[T]](ctx context.Context, s *Store) Result {
	d := descriptorOf[T, P]()
	return s.exec(ctx, d.Table, sqlbuild.DeleteAll(d))
}

func DeleteWhere[T any, P RecordPtr[T]](ctx context.Context, s *Store, predicate string, args ...any) Result {
	d := descriptorOf[T, P]()
	stmt, err := sqlbuild.Delete(d, predicate, args...)
	if err != nil {
		res := NewResult()
		res.fail(err)
		return res
	}
	return s.exec(ctx, d.Table, stmt)
}

// ResetAutoIncrement restarts T's key sequence. The table should be empty.
func ResetAutoIncrement[T any, P RecordPtr[T]](ctx context.Context, s *Store) Result {
	d := descriptorOf[T, P]()
	return s.exec(ctx, d.Table, sqlbuild.ResetAutoIncrement(d))
}

func (s *Store) exec(ctx context.Context, table string, stmt sqlbuild.Statement) Result {
	ctx = gologger.WithTable(ctx, table)
	res := NewResult()
	if err := s.execTx(ctx, []sqlbuild.Statement{stmt}); err != nil {
		res.fail(fmt.Errorf("%s: %w", table, err))
	}
	return res
}
