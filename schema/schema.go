// Package schema describes how a record type maps onto a table: its ordered
// columns, each column's storage kind and its key and null constraints.
//
// Descriptors are built once per record type, normally in a package-level var,
// and never change afterwards.
package schema

import (
	"errors"
	"fmt"
	"regexp"
)

type (
	// Kind is the storage family a field value is coerced to and from.
	Kind int

	// Constraint is a bitmask of per-field flags.
	Constraint int

	Field struct {
		Name string
		Kind Kind
		// Nullable fields are held as pointers in the record and may hydrate to nil.
		Nullable      bool
		PrimaryKey    bool
		AutoIncrement bool
		NotNull       bool
		// Enum is set for Enumeration fields. EnumName is kept so an unset Enum
		// can still be resolved through Enums at coercion time.
		Enum     *EnumType
		EnumName string
	}

	Descriptor struct {
		Table  string
		Fields []Field

		keyIndex int
	}
)

const (
	Text Kind = iota
	Integer32
	Integer64
	Double
	Boolean
	DateTime
	Enumeration
)

const (
	PrimaryKey Constraint = 1 << iota
	AutoIncrement
	NotNull
	Nullable
)

var (
	ErrInvalidIdentifier   = errors.New("invalid identifier")
	ErrNoPrimaryKey        = errors.New("record type has no primary key")
	ErrMultiplePrimaryKeys = errors.New("record type has more than one primary key")
	ErrBadAutoIncrement    = errors.New("auto-increment requires an integer primary key")
	ErrDuplicateField      = errors.New("duplicate field name")

	identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func (k Kind) String() string {
	switch k {
	case Integer32:
		return "Integer32"
	case Integer64:
		return "Integer64"
	case Double:
		return "Double"
	case Boolean:
		return "Boolean"
	case DateTime:
		return "DateTime"
	case Enumeration:
		return "Enumeration"
	default:
		return "Text"
	}
}

// IsInteger reports whether the kind is backed by an integer column.
func (k Kind) IsInteger() bool {
	return k == Integer32 || k == Integer64 || k == Enumeration
}

func ValidIdentifier(s string) bool {
	return identRegex.MatchString(s)
}

// Key returns the primary key field.
func (d *Descriptor) Key() Field {
	return d.Fields[d.keyIndex]
}

// KeyIndex is the position of the primary key within Fields.
func (d *Descriptor) KeyIndex() int {
	return d.keyIndex
}

// Field looks a field up by column name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ColumnNames returns every column name in field order.
func (d *Descriptor) ColumnNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

func (d *Descriptor) validate() error {
	if !ValidIdentifier(d.Table) {
		return fmt.Errorf("table %q: %w", d.Table, ErrInvalidIdentifier)
	}
	seen := make(map[string]bool, len(d.Fields))
	d.keyIndex = -1
	for i, f := range d.Fields {
		if !ValidIdentifier(f.Name) {
			return fmt.Errorf("field %q of %s: %w", f.Name, d.Table, ErrInvalidIdentifier)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q of %s: %w", f.Name, d.Table, ErrDuplicateField)
		}
		seen[f.Name] = true
		if f.PrimaryKey {
			if d.keyIndex >= 0 {
				return fmt.Errorf("%s: %w", d.Table, ErrMultiplePrimaryKeys)
			}
			d.keyIndex = i
		}
		if f.AutoIncrement && (!f.PrimaryKey || !(f.Kind == Integer32 || f.Kind == Integer64)) {
			return fmt.Errorf("field %q of %s: %w", f.Name, d.Table, ErrBadAutoIncrement)
		}
	}
	if d.keyIndex < 0 {
		return fmt.Errorf("%s: %w", d.Table, ErrNoPrimaryKey)
	}
	return nil
}
