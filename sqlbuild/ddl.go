package sqlbuild

import (
	"fmt"
	"strings"

	"github.com/danthegoodman1/tdastore/schema"
)

// ColumnType is the declared column type and default for a storage kind.
func ColumnType(k schema.Kind) (colType, defaultValue string) {
	switch k {
	case schema.Integer32, schema.Integer64, schema.Enumeration:
		return "INTEGER", "0"
	case schema.Double:
		return "DOUBLE", "0.0"
	case schema.DateTime:
		return "DATETIME", "CURRENT_TIMESTAMP"
	case schema.Boolean:
		return "BOOLEAN", "true"
	default:
		return "NVARCHAR", "' '"
	}
}

// ColumnDefinition renders one column of a CREATE TABLE:
//
//	Id INTEGER PRIMARY KEY AUTOINCREMENT
//	Symbol NVARCHAR NOT NULL DEFAULT ' '
//	Price DOUBLE DEFAULT 0.0
//
// Auto-increment columns never get a default.
func ColumnDefinition(f schema.Field) string {
	colType, def := ColumnType(f.Kind)
	parts := []string{f.Name, colType}
	if f.NotNull {
		parts = append(parts, "NOT NULL")
	}
	if f.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	}
	if f.AutoIncrement {
		parts = append(parts, "AUTOINCREMENT")
	} else {
		parts = append(parts, "DEFAULT "+def)
	}
	return strings.Join(parts, " ")
}

func CreateTable(d *schema.Descriptor) Statement {
	cols := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		cols[i] = ColumnDefinition(f)
	}
	return Statement{
		SQL: fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.Table, strings.Join(cols, ", ")),
	}
}

func DropTable(d *schema.Descriptor) Statement {
	return Statement{SQL: fmt.Sprintf("DROP TABLE IF EXISTS %s", d.Table)}
}

// RecreateTable is the drop-then-create pair run in one transaction when
// a table is forcibly replaced.
func RecreateTable(d *schema.Descriptor) []Statement {
	return []Statement{DropTable(d), CreateTable(d)}
}
