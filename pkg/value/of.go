package value

import (
	"encoding"
	"math"
	"reflect"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrUnsupported indicates a Go value that has no Value representation.
var ErrUnsupported = errors.New("unsupported value type")

// Of converts a plain Go value into a Value.
//
// Supported inputs are nil, Value, *Map, booleans, all integer and float
// types, strings, byte slices (as strings), time.Time (RFC 3339 text),
// encoding.TextMarshaler implementations, slices and arrays of supported
// values, and maps with string keys. Plain Go maps have no order, so their
// keys are sorted. int32 is treated as an integer; use Char for characters.
func Of(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case *Map:
		return MapOf(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []byte:
		return String(string(x)), nil
	case time.Time:
		return String(x.Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			iv, err := Of(item)
			if err != nil {
				return Null(), errors.Wrapf(err, "list item %d", i)
			}
			items[i] = iv
		}
		return Value{kind: KindList, l: items}, nil
	case map[string]any:
		m, err := MapFrom(x)
		if err != nil {
			return Null(), err
		}
		return MapOf(m), nil
	case encoding.TextMarshaler:
		text, err := x.MarshalText()
		if err != nil {
			return Null(), errors.Wrap(err, "marshaling text")
		}
		return String(string(text)), nil
	}
	return ofReflect(reflect.ValueOf(v))
}

// MustOf is like Of but panics on unsupported input. It is intended for
// literals in tests and examples.
func MustOf(v any) Value {
	out, err := Of(v)
	if err != nil {
		panic(err)
	}
	return out
}

// MapFrom converts a plain Go map into a Map with sorted keys.
func MapFrom(native map[string]any) (*Map, error) {
	keys := make([]string, 0, len(native))
	for k := range native {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	m := NewMap()
	for _, k := range keys {
		v, err := Of(native[k])
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
		m.Set(k, v)
	}
	return m, nil
}

func ofReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Null(), errors.Newf("integer %d overflows int64", u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return Of(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List(), nil
		}
		items := make([]Value, rv.Len())
		for i := range rv.Len() {
			iv, err := Of(rv.Index(i).Interface())
			if err != nil {
				return Null(), errors.Wrapf(err, "list item %d", i)
			}
			items[i] = iv
		}
		return Value{kind: KindList, l: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Null(), errors.Wrapf(ErrUnsupported, "map key type %s", rv.Type().Key())
		}
		native := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			native[iter.Key().String()] = iter.Value().Interface()
		}
		m, err := MapFrom(native)
		if err != nil {
			return Null(), err
		}
		return MapOf(m), nil
	}
	if !rv.IsValid() {
		return Null(), nil
	}
	return Null(), errors.Wrapf(ErrUnsupported, "%s", rv.Type())
}
