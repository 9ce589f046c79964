package serial

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// TagName is the struct tag holding a field's logical key.
const TagName = "cfg"

// Marshaler is implemented by types that encode themselves into a map.
type Marshaler interface {
	MarshalSection() (*value.Map, error)
}

// Unmarshaler is implemented by types that decode themselves from a map.
// UnmarshalSection is called on a freshly instantiated zero value.
type Unmarshaler interface {
	UnmarshalSection(m *value.Map) error
}

var (
	marshalerType   = reflect.TypeFor[Marshaler]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
)

// fieldMapping binds a logical key to accessors on a *T.
type fieldMapping struct {
	key string
	get func(ptr reflect.Value) (any, error)
	set func(r *Registry, ptr reflect.Value, v value.Value) error
}

// Descriptor is the cached serialization strategy of one type.
type Descriptor struct {
	typ     reflect.Type
	encode  func(ptr reflect.Value) (*value.Map, error)
	decode  func(m *value.Map) (reflect.Value, error)
	fields  []fieldMapping
	factory func() (reflect.Value, error)
}

// Type returns the described type.
func (d *Descriptor) Type() reflect.Type { return d.typ }

// Custom reports whether the type encodes or decodes itself.
func (d *Descriptor) Custom() bool { return d.encode != nil || d.decode != nil }

// Keys returns the logical keys of the field mappings in declaration order.
func (d *Descriptor) Keys() []string {
	keys := make([]string, len(d.fields))
	for i, f := range d.fields {
		keys[i] = f.key
	}
	return keys
}

// derive computes the descriptor of t from its static type information.
func derive(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{typ: t}
	ptrType := reflect.PointerTo(t)

	if ptrType.Implements(marshalerType) {
		d.encode = func(ptr reflect.Value) (*value.Map, error) {
			return ptr.Interface().(Marshaler).MarshalSection()
		}
	}
	if ptrType.Implements(unmarshalerType) {
		d.decode = func(m *value.Map) (reflect.Value, error) {
			ptr, err := d.instantiate()
			if err != nil {
				return reflect.Value{}, err
			}
			if err := ptr.Interface().(Unmarshaler).UnmarshalSection(m); err != nil {
				return reflect.Value{}, err
			}
			return ptr, nil
		}
	}

	if t.Kind() == reflect.Struct {
		fields, err := tagFields(t)
		if err != nil {
			return nil, err
		}
		d.fields = fields
	}

	if !d.Custom() && len(d.fields) == 0 {
		return nil, errors.Wrapf(ErrNotSerializable, "%s", t)
	}
	return d, nil
}

// tagFields collects the cfg-tagged fields of struct type t in declaration order.
func tagFields(t reflect.Type) ([]fieldMapping, error) {
	var fields []fieldMapping
	seen := make(map[string]string)

	for i := range t.NumField() {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok {
			continue
		}
		key, _, _ := strings.Cut(tag, ",")
		if key == "-" {
			continue
		}
		if key == "" {
			key = sf.Name
		}
		if !sf.IsExported() {
			return nil, errors.Mark(
				errors.Newf("%s: field %s is tagged %q but not exported", t, sf.Name, key),
				ErrSerialization)
		}
		if prev, dup := seen[key]; dup {
			return nil, errors.Mark(
				errors.Newf("%s: fields %s and %s share key %q", t, prev, sf.Name, key),
				ErrSerialization)
		}
		seen[key] = sf.Name

		index := i
		fields = append(fields, fieldMapping{
			key: key,
			get: func(ptr reflect.Value) (any, error) {
				return ptr.Elem().Field(index).Interface(), nil
			},
			set: func(r *Registry, ptr reflect.Value, v value.Value) error {
				return r.assign(ptr.Elem().Field(index).Addr(), v)
			},
		})
	}
	return fields, nil
}

// instantiate returns a pointer to a new instance.
func (d *Descriptor) instantiate() (ptr reflect.Value, err error) {
	if d.factory == nil {
		return reflect.New(d.typ), nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Mark(errors.Newf("%s: factory panicked: %v", d.typ, rec), ErrSerialization)
		}
	}()
	return d.factory()
}

// encodeInstance runs the descriptor's encode strategy against ptr.
func (d *Descriptor) encodeInstance(r *Registry, ptr reflect.Value) (out *value.Map, err error) {
	if d.encode != nil {
		defer func() {
			if rec := recover(); rec != nil {
				err = errors.Mark(errors.Newf("%s: encode panicked: %v", d.typ, rec), ErrSerialization)
			}
		}()
		m, err := d.encode(ptr)
		if err != nil {
			return nil, failure(err, "%s: encoding", d.typ)
		}
		if m == nil {
			m = value.NewMap()
		}
		return m, nil
	}

	out = value.NewMap()
	for _, f := range d.fields {
		raw, err := f.get(ptr)
		if err != nil {
			return nil, failure(err, "%s: reading %q", d.typ, f.key)
		}
		v, err := r.toValue(raw)
		if err != nil {
			return nil, failure(err, "%s: encoding %q", d.typ, f.key)
		}
		out.Set(f.key, v)
	}
	return out, nil
}

// decodeInstance builds a new instance from m and returns a pointer to it.
func (d *Descriptor) decodeInstance(r *Registry, m *value.Map) (ptr reflect.Value, err error) {
	if d.decode != nil {
		defer func() {
			if rec := recover(); rec != nil {
				err = errors.Mark(errors.Newf("%s: decode panicked: %v", d.typ, rec), ErrSerialization)
			}
		}()
		ptr, err := d.decode(m)
		if err != nil {
			return reflect.Value{}, failure(err, "%s: decoding", d.typ)
		}
		return ptr, nil
	}

	if len(d.fields) == 0 {
		return reflect.Value{}, errors.Mark(
			errors.Newf("%s: no decode strategy", d.typ), ErrSerialization)
	}

	ptr, err = d.instantiate()
	if err != nil {
		return reflect.Value{}, err
	}
	for _, f := range d.fields {
		v, ok := m.Get(f.key)
		if !ok {
			continue
		}
		if err := f.set(r, ptr, v); err != nil {
			return reflect.Value{}, failure(err, "%s: assigning %q", d.typ, f.key)
		}
	}
	return ptr, nil
}

func (d *Descriptor) String() string {
	switch {
	case d.Custom():
		return fmt.Sprintf("%s(custom)", d.typ)
	default:
		return fmt.Sprintf("%s%v", d.typ, d.Keys())
	}
}
