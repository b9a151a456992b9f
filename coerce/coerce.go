// Package coerce converts field values between their in-memory Go form and
// the representation exchanged with the store driver.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/danthegoodman1/tdastore/schema"
)

// DateTimeLayout is how datetimes are written: seconds precision, no zone.
const DateTimeLayout = "2006-01-02 15:04:05"

// Absent is written for nil or empty values.
const Absent = "0"

var (
	ErrEnumUnresolved   = errors.New("enumeration type not registered")
	ErrUnsupportedValue = errors.New("unsupported value")
	ErrBadDestination   = errors.New("destination must be a non-nil pointer")

	// readLayouts are tried in order when a datetime arrives as text.
	readLayouts = []string{
		DateTimeLayout,
		"2006-01-02T15:04:05",
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// Error reports a failed conversion for one field.
type Error struct {
	Field string
	Kind  schema.Kind
	Value any
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot coerce %v (%T) for field %s (%s): %s", e.Value, e.Value, e.Field, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fieldErr(f schema.Field, v any, err error) error {
	return &Error{Field: f.Name, Kind: f.Kind, Value: v, Err: err}
}

// ResolveEnum returns the field's enumeration type, falling back to the
// Enums registry by name.
func ResolveEnum(f schema.Field) *schema.EnumType {
	if f.Enum != nil {
		return f.Enum
	}
	if f.EnumName == "" {
		return nil
	}
	et, _ := schema.Enums.Lookup(f.EnumName)
	return et
}

// ToStorage renders a field value as the text bound into a statement.
func ToStorage(f schema.Field, v any) (any, error) {
	v = deref(v)
	if v == nil {
		return Absent, nil
	}

	switch f.Kind {
	case schema.DateTime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fieldErr(f, v, ErrUnsupportedValue)
		}
		return t.Format(DateTimeLayout), nil
	case schema.Enumeration:
		n, err := toInt64(v)
		if err != nil {
			return nil, fieldErr(f, v, err)
		}
		if et := ResolveEnum(f); et != nil {
			return et.NameOf(int(n)), nil
		}
		return strconv.FormatInt(n, 10), nil
	}

	s, err := natural(v)
	if err != nil {
		return nil, fieldErr(f, v, err)
	}
	if s == "" {
		return Absent, nil
	}
	return s, nil
}

// natural is the plain string form of a scalar.
func natural(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case time.Time:
		return x.Format(DateTimeLayout), nil
	case []byte:
		return string(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.String:
		return rv.String(), nil
	}
	return "", ErrUnsupportedValue
}

// FromStorage converts a raw driver value into the Go value for the field's kind:
// int32, int64, float64, bool, time.Time, int for enumerations, or the text
// value unchanged. Nullable fields yield nil for a NULL value.
func FromStorage(f schema.Field, raw any) (any, error) {
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	if raw == nil && f.Nullable {
		return nil, nil
	}

	switch f.Kind {
	case schema.Integer32:
		n, err := toInt64(raw)
		if err != nil {
			return nil, fieldErr(f, raw, err)
		}
		if n > math.MaxInt32 || n < math.MinInt32 {
			return nil, fieldErr(f, raw, strconv.ErrRange)
		}
		return int32(n), nil
	case schema.Integer64:
		n, err := toInt64(raw)
		if err != nil {
			return nil, fieldErr(f, raw, err)
		}
		return n, nil
	case schema.Double:
		x, err := toFloat64(raw)
		if err != nil {
			return nil, fieldErr(f, raw, err)
		}
		return x, nil
	case schema.Boolean:
		b, err := toBool(raw, f.Nullable)
		if err != nil {
			return nil, fieldErr(f, raw, err)
		}
		return b, nil
	case schema.DateTime:
		t, absent, err := toTime(raw)
		if err != nil {
			return nil, fieldErr(f, raw, err)
		}
		if absent && f.Nullable {
			return nil, nil
		}
		return t, nil
	case schema.Enumeration:
		et := ResolveEnum(f)
		if et == nil {
			return nil, fieldErr(f, raw, ErrEnumUnresolved)
		}
		if raw == nil {
			return 0, nil
		}
		s, err := natural(raw)
		if err != nil {
			return nil, fieldErr(f, raw, err)
		}
		v, err := et.Parse(s)
		if err != nil {
			return nil, fieldErr(f, raw, err)
		}
		return v, nil
	default:
		if raw == nil {
			return "", nil
		}
		return raw, nil
	}
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func toInt64(raw any) (int64, error) {
	switch x := raw.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%q is not an integer", x)
		}
		return int64(f), nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	}
	return 0, ErrUnsupportedValue
}

func toFloat64(raw any) (float64, error) {
	switch x := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}
	return 0, ErrUnsupportedValue
}

func toBool(raw any, nullable bool) (bool, error) {
	switch x := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case string:
		s := strings.TrimSpace(x)
		if nullable {
			if n, err := strconv.Atoi(s); err == nil {
				return n != 0, nil
			}
		}
		return strconv.ParseBool(s)
	}
	return false, ErrUnsupportedValue
}

// toTime reports absent=true for NULL, empty text and the Absent sentinel.
func toTime(raw any) (t time.Time, absent bool, err error) {
	switch x := raw.(type) {
	case nil:
		return time.Time{}, true, nil
	case time.Time:
		return x, false, nil
	case int64:
		if x == 0 {
			return time.Time{}, true, nil
		}
		return time.Unix(x, 0).UTC(), false, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == Absent {
			return time.Time{}, true, nil
		}
		for _, layout := range readLayouts {
			if t, err = time.Parse(layout, s); err == nil {
				return t, false, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("unrecognized datetime %q", s)
	}
	return time.Time{}, false, ErrUnsupportedValue
}
