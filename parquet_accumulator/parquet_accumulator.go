package parquet_accumulator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/danthegoodman1/tdastore/schema"
)

type (
	ParquetSchemaAccumulator struct {
		schema ParquetSchema
	}

	ParquetSchema struct {
		TagStructs SchemaTag        `json:"-,omitempty"`
		Fields     []*ParquetSchema `json:",omitempty"`
	}

	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string         `json:"name,omitempty"`
		Type           string         `json:"type,omitempty"`
		ConvertedType  string         `json:"convertedtype,omitempty"`
		RepetitionType RepetitionType `json:"repetitiontype,omitempty"`
		Encoding       string         `json:"encoding,omitempty"`
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

func NewParquetAccumulator() ParquetSchemaAccumulator {
	return ParquetSchemaAccumulator{
		schema: ParquetSchema{
			TagStructs: SchemaTag{
				Name:           "parquet_go_root",
				RepetitionType: Required,
			},
		},
	}
}

// FromDescriptor builds the parquet schema of a table. Nullable fields are
// optional columns, everything else is required.
func FromDescriptor(d *schema.Descriptor) ParquetSchemaAccumulator {
	pa := NewParquetAccumulator()
	for _, f := range d.Fields {
		ps := &ParquetSchema{
			TagStructs: SchemaTag{
				Name:           f.Name,
				RepetitionType: Required,
			},
		}
		if f.Nullable {
			ps.TagStructs.RepetitionType = Optional
		}
		setKindType(&ps.TagStructs, f.Kind)
		pa.schema.Fields = append(pa.schema.Fields, ps)
	}
	return pa
}

func setKindType(tag *SchemaTag, k schema.Kind) {
	switch k {
	case schema.Integer32:
		tag.Type = "INT32"
	case schema.Integer64:
		tag.Type = "INT64"
	case schema.Double:
		tag.Type = "DOUBLE"
	case schema.Boolean:
		tag.Type = "BOOLEAN"
	case schema.DateTime:
		tag.Type = "INT64"
		tag.ConvertedType = "TIMESTAMP_MILLIS"
	default:
		// text, and enumerations by name
		tag.Type = "BYTE_ARRAY"
		tag.ConvertedType = "UTF8"
		tag.Encoding = "PLAIN"
	}
}

// WriteRow adds optional columns for any keys of row not in the schema yet.
func (pa *ParquetSchemaAccumulator) WriteRow(row map[string]any) {
	for key, val := range row {
		if pa.fieldExists(key) {
			continue
		}
		rowSchema := pa.getParquetSchema(key, val)
		if rowSchema != nil {
			pa.schema.Fields = append(pa.schema.Fields, rowSchema)
		}
	}
}

func (pa *ParquetSchemaAccumulator) getParquetSchema(key string, item any) *ParquetSchema {
	if item == nil {
		return nil
	}
	ps := &ParquetSchema{
		TagStructs: SchemaTag{
			Name:           strings.ToUpper(key[:1]) + key[1:],
			RepetitionType: Optional,
		},
	}
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		item = v.Elem().Interface()
	}
	kind, _, _ := schema.KindOf(item)
	setKindType(&ps.TagStructs, kind)
	return ps
}

func (pa *ParquetSchemaAccumulator) fieldExists(fieldName string) (exists bool) {
	for _, field := range pa.schema.Fields {
		if field.TagStructs.Name == fieldName {
			return true
		}
	}
	return
}

func (pa *ParquetSchemaAccumulator) GetColumnNames() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.TagStructs.Name)
	}
	return cols
}

func (ps *ParquetSchema) GetType() string {
	switch {
	case ps.TagStructs.ConvertedType == "TIMESTAMP_MILLIS":
		return "timestamp"
	case ps.TagStructs.Type == "BYTE_ARRAY":
		return "string"
	case ps.TagStructs.Type == "DOUBLE":
		return "float"
	case ps.TagStructs.Type == "INT32", ps.TagStructs.Type == "INT64":
		return "int"
	case ps.TagStructs.Type == "BOOLEAN":
		return "bool"
	default:
		return "unknown"
	}
}

// GetColumnTypes returns the types of columns in the same order: string, float, int, bool or timestamp
func (pa *ParquetSchemaAccumulator) GetColumnTypes() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.GetType())
	}
	return cols
}

// ToParquetJSONSchema recursively converts
func (ps *ParquetSchema) ToParquetJSONSchema() *ParquetJSONSchema {
	var tagArr []string
	if ps.TagStructs.Type != "" {
		tagArr = append(tagArr, "type="+ps.TagStructs.Type)
	}
	if ps.TagStructs.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+ps.TagStructs.ConvertedType)
	}
	if ps.TagStructs.Encoding != "" {
		tagArr = append(tagArr, "encoding="+ps.TagStructs.Encoding)
	}
	if ps.TagStructs.Name != "" {
		tagArr = append(tagArr, "name="+ps.TagStructs.Name)
	}
	if string(ps.TagStructs.RepetitionType) != "" {
		tagArr = append(tagArr, "repetitiontype="+string(ps.TagStructs.RepetitionType))
	}
	var fields []*ParquetJSONSchema
	for _, field := range ps.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	return &ParquetJSONSchema{
		Tag:    strings.Join(tagArr, ", "),
		Fields: fields,
	}
}

// GetSchemaString returns the JSON formatted schema string
func (pa *ParquetSchemaAccumulator) GetSchemaString() (string, error) {
	var fields []*ParquetJSONSchema
	for _, field := range pa.schema.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	pjs := ParquetJSONSchema{
		Tag:    "name=parquet_go_root, repetitiontype=REQUIRED",
		Fields: fields,
	}

	b, err := json.Marshal(pjs)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}

// EncodeRow renders a row as the JSON the parquet JSON writer expects.
// Datetimes become unix millis, nil values are left out.
func EncodeRow(row map[string]any) (string, error) {
	out := make(map[string]any, len(row))
	for k, v := range row {
		switch x := v.(type) {
		case nil:
			continue
		case time.Time:
			out[k] = x.UnixMilli()
		default:
			out[k] = x
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}
