package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/danthegoodman1/tdastore/coerce"
	"github.com/danthegoodman1/tdastore/gologger"
	"github.com/danthegoodman1/tdastore/schema"
	"github.com/danthegoodman1/tdastore/sqlbuild"
	"github.com/rs/zerolog"
)

// fetch runs a query and returns its raw rows.
func (s *Store) fetch(ctx context.Context, stmt sqlbuild.Statement) ([]Row, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("error in QueryContext: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error in rows.Columns: %w", err)
	}

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error in rows.Scan: %w", err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// hydrate builds one record from a row. Any coercion failure abandons the
// whole record; an unresolved enumeration only leaves that field unset.
func hydrate[T any, P RecordPtr[T]](ctx context.Context, d *schema.Descriptor, row Row) (*T, error) {
	rec := new(T)
	ptrs := P(rec).Pointers()
	if len(ptrs) != len(d.Fields) {
		return nil, fmt.Errorf("%s: %w", d.Table, ErrFieldCount)
	}
	for i, f := range d.Fields {
		v, err := coerce.FromStorage(f, row[f.Name])
		if errors.Is(err, coerce.ErrEnumUnresolved) {
			zerolog.Ctx(ctx).Warn().Str("field", f.Name).Str("enum", f.EnumName).Msg("converting enum skipped")
			continue
		}
		if err != nil {
			return nil, err
		}
		if err = coerce.Assign(ptrs[i], v); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return rec, nil
}

// load fetches and hydrates. Entries that failed hydration are nil.
func load[T any, P RecordPtr[T]](ctx context.Context, s *Store, stmt sqlbuild.Statement) ([]*T, error) {
	d := descriptorOf[T, P]()
	ctx = gologger.WithTable(ctx, d.Table)
	rows, err := s.fetch(ctx, stmt)
	if err != nil {
		logFailure(ctx, err, stmt.SQL, "error fetching records")
		return nil, err
	}
	out := make([]*T, len(rows))
	for i, row := range rows {
		rec, err := hydrate[T, P](ctx, d, row)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int("row", i).Msg("error hydrating record")
			continue
		}
		out[i] = rec
	}
	return out, nil
}

func collect[T any](recs []*T) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// single turns a load result into a lookup: ErrNotFound when nothing came back,
// ErrInvalidRecord when the row could not be hydrated.
func single[T any](recs []*T, err error) (*T, error) {
	if err != nil || len(recs) == 0 {
		return nil, ErrNotFound
	}
	if recs[0] == nil {
		return nil, ErrInvalidRecord
	}
	return recs[0], nil
}

// Query runs a full SELECT and hydrates every row as T. Rows that fail
// hydration are left out.
func Query[T any, P RecordPtr[T]](ctx context.Context, s *Store, sqlText string, args ...any) []T {
	if sqlText == "" {
		return make([]T, 0)
	}
	recs, _ := load[T, P](ctx, s, sqlbuild.Statement{SQL: sqlText, Args: args})
	return collect(recs)
}

func GetAll[T any, P RecordPtr[T]](ctx context.Context, s *Store) []T {
	recs, _ := load[T, P](ctx, s, sqlbuild.SelectAll(descriptorOf[T, P]()))
	return collect(recs)
}

func GetByID[T any, P RecordPtr[T]](ctx context.Context, s *Store, id int64) (*T, error) {
	return single(load[T, P](ctx, s, sqlbuild.SelectByID(descriptorOf[T, P](), id)))
}

// GetByIDs returns an empty slice for an empty id list without querying.
func GetByIDs[T any, P RecordPtr[T]](ctx context.Context, s *Store, ids []int64) []T {
	stmt, err := sqlbuild.SelectByIDs(descriptorOf[T, P](), ids)
	if err != nil {
		return make([]T, 0)
	}
	recs, _ := load[T, P](ctx, s, stmt)
	return collect(recs)
}

// GetMostRecent returns the last inserted record by rowid.
func GetMostRecent[T any, P RecordPtr[T]](ctx context.Context, s *Store) (*T, error) {
	return single(load[T, P](ctx, s, sqlbuild.SelectMostRecent(descriptorOf[T, P]())))
}

// GetOrdinal returns the n-th (1-based) record ordered by orderBy descending,
// or in storage order when orderBy is empty. n < 1 is ErrNotFound without a query.
func GetOrdinal[T any, P RecordPtr[T]](ctx context.Context, s *Store, n int, orderBy string) (*T, error) {
	if n < 1 {
		return nil, ErrNotFound
	}
	d := descriptorOf[T, P]()
	stmt, err := sqlbuild.SelectOrdinal(d, n, orderBy)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("table", d.Table).Msg("error building ordinal select")
		return nil, ErrNotFound
	}
	return single(load[T, P](ctx, s, stmt))
}

// GetWhere selects records matching a predicate fragment such as "Symbol = ?".
func GetWhere[T any, P RecordPtr[T]](ctx context.Context, s *Store, predicate string, args ...any) []T {
	stmt, err := sqlbuild.SelectWhere(descriptorOf[T, P](), predicate, args...)
	if err != nil {
		return make([]T, 0)
	}
	recs, _ := load[T, P](ctx, s, stmt)
	return collect(recs)
}

// Rows runs stmt and coerces each row by d, for callers that only know a
// table by its descriptor. Rows that fail coercion are left out.
func (s *Store) Rows(ctx context.Context, d *schema.Descriptor, stmt sqlbuild.Statement) []Row {
	ctx = gologger.WithTable(ctx, d.Table)
	raw, err := s.fetch(ctx, stmt)
	if err != nil {
		logFailure(ctx, err, stmt.SQL, "error fetching rows")
		return make([]Row, 0)
	}
	out := make([]Row, 0, len(raw))
RowLoop:
	for i, r := range raw {
		row := make(Row, len(d.Fields))
		for _, f := range d.Fields {
			v, err := coerce.FromStorage(f, r[f.Name])
			if errors.Is(err, coerce.ErrEnumUnresolved) {
				row[f.Name] = r[f.Name]
				continue
			}
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Int("row", i).Msg("error coercing row")
				continue RowLoop
			}
			if v != nil && f.Kind == schema.Enumeration {
				if et := coerce.ResolveEnum(f); et != nil {
					v = et.NameOf(v.(int))
				}
			}
			row[f.Name] = v
		}
		out = append(out, row)
	}
	return out
}

// Count returns the number of rows in d's table.
func (s *Store) Count(ctx context.Context, d *schema.Descriptor) (int64, bool) {
	v, ok := s.Scalar(ctx, sqlbuild.Count(d).SQL)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}
