package serial

import (
	"reflect"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// Registry caches serialization descriptors per type.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	cache sync.Map // reflect.Type -> resolution
}

type resolution struct {
	desc *Descriptor
	err  error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Resolve returns the descriptor for t, deriving and caching it on first use.
// Pointer types resolve to their element type.
func (r *Registry) Resolve(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, errors.Wrap(ErrNotSerializable, "nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := r.cache.Load(t); ok {
		res := cached.(resolution)
		return res.desc, res.err
	}

	d, err := derive(t)
	// A Register that ran since the Load wins over the derived descriptor.
	actual, _ := r.cache.LoadOrStore(t, resolution{desc: d, err: err})
	res := actual.(resolution)
	return res.desc, res.err
}

// IsSerializable reports whether v's type carries a serialization marker.
// nil is never serializable.
func (r *Registry) IsSerializable(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case value.Value, *value.Map, string, bool, int, int64, float64, []any, map[string]any:
		return false
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct && !reflect.PointerTo(t).Implements(marshalerType) {
		if _, ok := r.cache.Load(t); !ok {
			return false
		}
	}
	_, err := r.Resolve(t)
	return err == nil
}

// Encode converts a serializable value into its map representation.
func (r *Registry) Encode(v any) (*value.Map, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.Wrap(ErrNotSerializable, "nil pointer")
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, errors.Wrap(ErrNotSerializable, "nil value")
	}

	d, err := r.Resolve(rv.Type())
	if err != nil {
		return nil, err
	}

	// Work on an addressable copy so pointer-receiver methods are callable.
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	return d.encodeInstance(r, ptr)
}

// Decode builds a value of type t from m. If t is a pointer type the result
// is a pointer to the new instance.
func (r *Registry) Decode(m *value.Map, t reflect.Type) (any, error) {
	if t == nil {
		return nil, errors.Wrap(ErrNotSerializable, "nil type")
	}
	depth := 0
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
		depth++
	}
	if depth > 1 {
		return nil, errors.Wrapf(ErrNotSerializable, "%s", t)
	}

	d, err := r.Resolve(base)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = value.NewMap()
	}

	ptr, err := d.decodeInstance(r, m)
	if err != nil {
		return nil, err
	}
	if depth == 1 {
		return ptr.Interface(), nil
	}
	return ptr.Elem().Interface(), nil
}

// Decode is the typed form of Registry.Decode.
func Decode[T any](r *Registry, m *value.Map) (T, error) {
	var zero T
	out, err := r.Decode(m, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// toValue converts a field's Go value, encoding nested serializable values.
func (r *Registry) toValue(raw any) (value.Value, error) {
	if raw == nil {
		return value.Null(), nil
	}
	if r.IsSerializable(raw) {
		rv := reflect.ValueOf(raw)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return value.Null(), nil
		}
		m, err := r.Encode(raw)
		if err != nil {
			return value.Null(), err
		}
		return value.MapOf(m), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return value.List(), nil
		}
		items := make([]value.Value, rv.Len())
		for i := range rv.Len() {
			item, err := r.toValue(rv.Index(i).Interface())
			if err != nil {
				return value.Null(), errors.Wrapf(err, "item %d", i)
			}
			items[i] = item
		}
		return value.List(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			break
		}
		native := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item, err := r.toValue(iter.Value().Interface())
			if err != nil {
				return value.Null(), errors.Wrapf(err, "key %q", iter.Key().String())
			}
			native[iter.Key().String()] = item
		}
		m, err := value.MapFrom(native)
		if err != nil {
			return value.Null(), err
		}
		return value.MapOf(m), nil
	}
	return value.Of(raw)
}

// assign stores v into the variable target points to.
func (r *Registry) assign(target reflect.Value, v value.Value) error {
	if v.IsNull() {
		return nil
	}
	ft := target.Type().Elem()

	if m, ok := v.AsMap(); ok && r.serializableType(ft) {
		out, err := r.Decode(m, ft)
		if err != nil {
			return err
		}
		target.Elem().Set(reflect.ValueOf(out))
		return nil
	}

	if ft == reflect.TypeFor[value.Value]() {
		target.Elem().Set(reflect.ValueOf(v))
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: TagName,
		Result:  target.Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return errors.Wrap(err, "creating decoder")
	}
	input := v.Interface()
	if c, ok := v.AsChar(); ok && ft.Kind() == reflect.String {
		input = string(c)
	}
	return dec.Decode(input)
}

func (r *Registry) serializableType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		if _, ok := r.cache.Load(t); !ok {
			return false
		}
	}
	_, err := r.Resolve(t)
	return err == nil
}
