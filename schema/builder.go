package schema

import (
	"fmt"
	"reflect"
	"time"
)

// Builder assembles a Descriptor field by field, in column order.
type Builder struct {
	table  string
	fields []Field
}

// Enumerated is implemented by enumeration values so Infer can detect them.
type Enumerated interface {
	EnumType() *EnumType
}

func NewBuilder(table string) *Builder {
	return &Builder{
		table:  table,
		fields: make([]Field, 0),
	}
}

func (b *Builder) add(name string, kind Kind, constraints []Constraint) *Builder {
	f := Field{
		Name: name,
		Kind: kind,
	}
	for _, c := range constraints {
		if c&PrimaryKey != 0 {
			f.PrimaryKey = true
		}
		if c&AutoIncrement != 0 {
			f.AutoIncrement = true
		}
		if c&NotNull != 0 {
			f.NotNull = true
		}
		if c&Nullable != 0 {
			f.Nullable = true
		}
	}
	b.fields = append(b.fields, f)
	return b
}

// AutoIncrementKey adds the conventional store-assigned integer key.
func (b *Builder) AutoIncrementKey(name string, constraints ...Constraint) *Builder {
	return b.add(name, Integer32, append(constraints, PrimaryKey|AutoIncrement))
}

func (b *Builder) Int32(name string, constraints ...Constraint) *Builder {
	return b.add(name, Integer32, constraints)
}

func (b *Builder) Int64(name string, constraints ...Constraint) *Builder {
	return b.add(name, Integer64, constraints)
}

func (b *Builder) Double(name string, constraints ...Constraint) *Builder {
	return b.add(name, Double, constraints)
}

func (b *Builder) Bool(name string, constraints ...Constraint) *Builder {
	return b.add(name, Boolean, constraints)
}

func (b *Builder) DateTime(name string, constraints ...Constraint) *Builder {
	return b.add(name, DateTime, constraints)
}

func (b *Builder) Text(name string, constraints ...Constraint) *Builder {
	return b.add(name, Text, constraints)
}

// Enum adds an enumeration field, stored in an integer column.
func (b *Builder) Enum(name string, et *EnumType, constraints ...Constraint) *Builder {
	b.add(name, Enumeration, constraints)
	f := &b.fields[len(b.fields)-1]
	f.Enum = et
	if et != nil {
		f.EnumName = et.Name
	}
	return b
}

// EnumByName adds an enumeration field whose type is looked up in Enums when
// values are coerced, rather than bound now.
func (b *Builder) EnumByName(name, enumName string, constraints ...Constraint) *Builder {
	b.add(name, Enumeration, constraints)
	b.fields[len(b.fields)-1].EnumName = enumName
	return b
}

// Infer adds a field whose kind is taken from the Go type of sample. Pointer
// samples make the field nullable. Types with no storage kind become Text.
func (b *Builder) Infer(name string, sample any, constraints ...Constraint) *Builder {
	kind, nullable, et := KindOf(sample)
	if nullable {
		constraints = append(constraints, Nullable)
	}
	if kind == Enumeration {
		return b.Enum(name, et, constraints...)
	}
	return b.add(name, kind, constraints)
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	enumeratedType = reflect.TypeOf((*Enumerated)(nil)).Elem()
)

// KindOf maps a Go value to its storage kind.
func KindOf(sample any) (kind Kind, nullable bool, et *EnumType) {
	t := reflect.TypeOf(sample)
	if t == nil {
		return Text, true, nil
	}
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}
	if t.Implements(enumeratedType) {
		ev := reflect.Zero(t).Interface().(Enumerated)
		return Enumeration, nullable, ev.EnumType()
	}
	if t == timeType {
		return DateTime, nullable, nil
	}
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return Integer32, nullable, nil
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return Integer64, nullable, nil
	case reflect.Float32, reflect.Float64:
		return Double, nullable, nil
	case reflect.Bool:
		return Boolean, nullable, nil
	default:
		return Text, nullable, nil
	}
}

// Build validates the collected fields and returns the descriptor.
func (b *Builder) Build() (*Descriptor, error) {
	d := &Descriptor{
		Table:  b.table,
		Fields: append([]Field(nil), b.fields...),
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("error building descriptor: %w", err)
	}
	return d, nil
}

// MustBuild is Build for package-level descriptors; it panics on an invalid definition.
func (b *Builder) MustBuild() *Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
