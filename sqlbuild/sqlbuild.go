// Package sqlbuild assembles statement text and bound arguments from record
// descriptors. Identifiers come only from validated descriptors; every value
// travels as a ? parameter.
package sqlbuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danthegoodman1/tdastore/coerce"
	"github.com/danthegoodman1/tdastore/schema"
)

type Statement struct {
	SQL  string
	Args []any
}

var (
	ErrEmptyIDList    = errors.New("empty id list")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrValueCount     = errors.New("value count does not match field count")
	ErrEmptyPredicate = errors.New("empty predicate")
)

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func SelectAll(d *schema.Descriptor) Statement {
	return Statement{SQL: fmt.Sprintf("SELECT * FROM %s", d.Table)}
}

// SelectLimit is SelectAll capped at limit rows, in rowid order.
func SelectLimit(d *schema.Descriptor, limit int) Statement {
	return Statement{
		SQL:  fmt.Sprintf("SELECT * FROM %s ORDER BY ROWID LIMIT ?", d.Table),
		Args: []any{limit},
	}
}

func SelectByID(d *schema.Descriptor, id int64) Statement {
	return Statement{
		SQL:  fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", d.Table, d.Key().Name),
		Args: []any{id},
	}
}

// SelectByIDs returns ErrEmptyIDList rather than emit an empty IN ().
func SelectByIDs(d *schema.Descriptor, ids []int64) (Statement, error) {
	if len(ids) == 0 {
		return Statement{}, ErrEmptyIDList
	}
	return Statement{
		SQL:  fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)", d.Table, d.Key().Name, placeholders(len(ids))),
		Args: idArgs(ids),
	}, nil
}

func SelectMostRecent(d *schema.Descriptor) Statement {
	return Statement{
		SQL: fmt.Sprintf("SELECT * FROM %s WHERE ROWID = (SELECT MAX(ROWID) FROM %s)", d.Table, d.Table),
	}
}

// SelectOrdinal selects the n-th (1-based) record ordered by orderBy descending.
// An empty orderBy selects in storage order. Callers handle n < 1.
func SelectOrdinal(d *schema.Descriptor, n int, orderBy string) (Statement, error) {
	if orderBy == "" {
		return Statement{
			SQL:  fmt.Sprintf("SELECT * FROM %s LIMIT 1 OFFSET ?", d.Table),
			Args: []any{n - 1},
		}, nil
	}
	if _, ok := d.Field(orderBy); !ok {
		return Statement{}, fmt.Errorf("%s.%s: %w", d.Table, orderBy, ErrUnknownColumn)
	}
	return Statement{
		SQL:  fmt.Sprintf("SELECT * FROM %s ORDER BY %s DESC LIMIT 1 OFFSET ?", d.Table, orderBy),
		Args: []any{n - 1},
	}, nil
}

// SelectWhere selects with a caller-written predicate; values in it must be ? parameters.
func SelectWhere(d *schema.Descriptor, predicate string, args ...any) (Statement, error) {
	if strings.TrimSpace(predicate) == "" {
		return Statement{}, ErrEmptyPredicate
	}
	return Statement{
		SQL:  fmt.Sprintf("SELECT * FROM %s WHERE %s", d.Table, predicate),
		Args: args,
	}, nil
}

func Count(d *schema.Descriptor) Statement {
	return Statement{SQL: fmt.Sprintf("SELECT COUNT(*) FROM %s", d.Table)}
}

// Insert lists every column except the primary key, in field order.
func Insert(d *schema.Descriptor, values []any) (Statement, error) {
	if len(values) != len(d.Fields) {
		return Statement{}, fmt.Errorf("%s: got %d values for %d fields: %w", d.Table, len(values), len(d.Fields), ErrValueCount)
	}
	cols := make([]string, 0, len(d.Fields))
	args := make([]any, 0, len(d.Fields))
	for i, f := range d.Fields {
		if f.PrimaryKey {
			continue
		}
		v, err := coerce.ToStorage(f, values[i])
		if err != nil {
			return Statement{}, err
		}
		cols = append(cols, f.Name)
		args = append(args, v)
	}
	return Statement{
		SQL:  fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.Table, strings.Join(cols, ", "), placeholders(len(cols))),
		Args: args,
	}, nil
}

// Update sets every non-key column and matches on the key value found in values.
func Update(d *schema.Descriptor, values []any) (Statement, error) {
	if len(values) != len(d.Fields) {
		return Statement{}, fmt.Errorf("%s: got %d values for %d fields: %w", d.Table, len(values), len(d.Fields), ErrValueCount)
	}
	pairs := make([]string, 0, len(d.Fields))
	args := make([]any, 0, len(d.Fields))
	for i, f := range d.Fields {
		if f.PrimaryKey {
			continue
		}
		v, err := coerce.ToStorage(f, values[i])
		if err != nil {
			return Statement{}, err
		}
		pairs = append(pairs, f.Name+" = ?")
		args = append(args, v)
	}
	key := d.Key()
	id, err := coerce.ToStorage(key, values[d.KeyIndex()])
	if err != nil {
		return Statement{}, err
	}
	args = append(args, id)
	return Statement{
		SQL:  fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", d.Table, strings.Join(pairs, ", "), key.Name),
		Args: args,
	}, nil
}

// Delete removes rows matching a caller-written predicate.
func Delete(d *schema.Descriptor, predicate string, args ...any) (Statement, error) {
	if strings.TrimSpace(predicate) == "" {
		return Statement{}, ErrEmptyPredicate
	}
	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s", d.Table, predicate),
		Args: args,
	}, nil
}

func DeleteByID(d *schema.Descriptor, id int64) Statement {
	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s = ?", d.Table, d.Key().Name),
		Args: []any{id},
	}
}

func DeleteByIDs(d *schema.Descriptor, ids []int64) (Statement, error) {
	if len(ids) == 0 {
		return Statement{}, ErrEmptyIDList
	}
	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", d.Table, d.Key().Name, placeholders(len(ids))),
		Args: idArgs(ids),
	}, nil
}

func DeleteAll(d *schema.Descriptor) Statement {
	return Statement{SQL: fmt.Sprintf("DELETE FROM %s WHERE %s > 0", d.Table, d.Key().Name)}
}

func ResetAutoIncrement(d *schema.Descriptor) Statement {
	return Statement{
		SQL:  "DELETE FROM sqlite_sequence WHERE name = ?",
		Args: []any{d.Table},
	}
}

func TableExists(table string) Statement {
	return Statement{
		SQL:  "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		Args: []any{table},
	}
}
