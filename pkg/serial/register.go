package serial

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// Option customizes the descriptor registered for T.
type Option[T any] func(d *Descriptor)

// Register marks T as serializable in r. Without options the descriptor is
// derived from T's markers; options replace individual strategies.
// Registering a type again replaces its previous descriptor.
func Register[T any](r *Registry, opts ...Option[T]) error {
	t := reflect.TypeFor[T]()
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return errors.Newf("cannot register %s: register the element type", t)
	}

	d, err := derive(t)
	if err != nil {
		if !errors.Is(err, ErrNotSerializable) {
			return err
		}
		d = &Descriptor{typ: t}
	}
	for _, opt := range opts {
		opt(d)
	}
	if !d.Custom() && len(d.fields) == 0 {
		d.decode = func(*value.Map) (reflect.Value, error) {
			return d.instantiate()
		}
	}

	r.cache.Store(t, resolution{desc: d})
	return nil
}

// WithCodec registers explicit encode and decode functions. Either may be nil,
// in which case the other strategies of the descriptor stay in effect.
func WithCodec[T any](encode func(T) (*value.Map, error), decode func(*value.Map) (T, error)) Option[T] {
	return func(d *Descriptor) {
		if encode != nil {
			d.encode = func(ptr reflect.Value) (*value.Map, error) {
				return encode(ptr.Elem().Interface().(T))
			}
		}
		if decode != nil {
			d.decode = func(m *value.Map) (reflect.Value, error) {
				v, err := decode(m)
				if err != nil {
					return reflect.Value{}, err
				}
				ptr := reflect.New(d.typ)
				ptr.Elem().Set(reflect.ValueOf(&v).Elem())
				return ptr, nil
			}
		}
	}
}

// FieldSpec maps one logical key onto a T through accessor functions.
type FieldSpec[T any] struct {
	mapping fieldMapping
}

// Field builds a FieldSpec for key. get reads the field from a T, set writes
// a decoded F into the instance.
func Field[T, F any](key string, get func(*T) F, set func(*T, F)) FieldSpec[T] {
	return FieldSpec[T]{mapping: fieldMapping{
		key: key,
		get: func(ptr reflect.Value) (any, error) {
			return get(ptr.Interface().(*T)), nil
		},
		set: func(r *Registry, ptr reflect.Value, v value.Value) error {
			var f F
			if err := r.assign(reflect.ValueOf(&f), v); err != nil {
				return err
			}
			set(ptr.Interface().(*T), f)
			return nil
		},
	}}
}

// WithFields replaces the tag-derived field table with an explicit one.
func WithFields[T any](fields ...FieldSpec[T]) Option[T] {
	return func(d *Descriptor) {
		d.fields = make([]fieldMapping, len(fields))
		for i, f := range fields {
			d.fields[i] = f.mapping
		}
	}
}

// WithFactory sets how new instances are created before fields are assigned.
func WithFactory[T any](factory func() T) Option[T] {
	return func(d *Descriptor) {
		d.factory = func() (reflect.Value, error) {
			v := factory()
			ptr := reflect.New(d.typ)
			ptr.Elem().Set(reflect.ValueOf(&v).Elem())
			return ptr, nil
		}
	}
}
