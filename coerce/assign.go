package coerce

import (
	"fmt"
	"reflect"
	"time"
)

// Assign stores a value produced by FromStorage into a record field pointer.
// Nullable fields are pointer-to-pointer destinations; nil clears them.
func Assign(dst any, v any) error {
	switch d := dst.(type) {
	case *int32:
		if x, ok := v.(int32); ok {
			*d = x
			return nil
		}
	case *int64:
		if x, ok := v.(int64); ok {
			*d = x
			return nil
		}
	case *float64:
		if x, ok := v.(float64); ok {
			*d = x
			return nil
		}
	case *bool:
		if x, ok := v.(bool); ok {
			*d = x
			return nil
		}
	case *time.Time:
		if x, ok := v.(time.Time); ok {
			*d = x
			return nil
		}
	case *string:
		if x, ok := v.(string); ok {
			*d = x
			return nil
		}
	}
	return assignReflect(dst, v)
}

func assignReflect(dst any, v any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrBadDestination
	}
	target := rv.Elem()
	if v == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	if target.Kind() == reflect.Pointer {
		elem := reflect.New(target.Type().Elem())
		if err := setValue(elem.Elem(), v); err != nil {
			return err
		}
		target.Set(elem)
		return nil
	}
	return setValue(target, v)
}

func setValue(target reflect.Value, v any) error {
	val := reflect.ValueOf(v)
	if val.Type().AssignableTo(target.Type()) {
		target.Set(val)
		return nil
	}
	if target.Kind() == reflect.String {
		target.SetString(fmt.Sprint(v))
		return nil
	}
	if isNumeric(val.Kind()) && isNumeric(target.Kind()) {
		target.Set(val.Convert(target.Type()))
		return nil
	}
	if val.Kind() == target.Kind() && val.Type().ConvertibleTo(target.Type()) {
		target.Set(val.Convert(target.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s: %w", v, target.Type(), ErrUnsupportedValue)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
