package codec

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// TOML reads and writes TOML documents.
//
// The TOML parser does not expose key order, so decoded tables list their
// keys sorted. Encoding keeps the order of the map being written. TOML has no
// null: null entries of a table are omitted and null list items are an error.
// Date and time values decode to their RFC 3339 text.
type TOML struct{}

func (TOML) Name() string         { return "toml" }
func (TOML) Extensions() []string { return []string{".toml"} }

// Decode implements Codec.
func (TOML) Decode(data []byte) (*value.Map, error) {
	if blank(data) {
		return value.NewMap(), nil
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, errors.Wrapf(err, "decoding toml: line %d column %d", row, col)
		}
		return nil, errors.Wrap(err, "decoding toml")
	}

	m, err := tomlTable(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decoding toml")
	}
	return m, nil
}

func tomlTable(raw map[string]any) (*value.Map, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	m := value.NewMap()
	for _, k := range keys {
		v, err := fromTOML(raw[k])
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
		m.Set(k, v)
	}
	return m, nil
}

func fromTOML(raw any) (value.Value, error) {
	switch x := raw.(type) {
	case map[string]any:
		m, err := tomlTable(x)
		if err != nil {
			return value.Null(), err
		}
		return value.MapOf(m), nil
	case []any:
		items := make([]value.Value, len(x))
		for i, item := range x {
			v, err := fromTOML(item)
			if err != nil {
				return value.Null(), errors.Wrapf(err, "item %d", i)
			}
			items[i] = v
		}
		return value.List(items...), nil
	}
	return value.Of(raw)
}

// Encode implements Codec.
func (TOML) Encode(m *value.Map) ([]byte, error) {
	doc, err := toTOML(value.MapOf(m))
	if err != nil {
		return nil, errors.Wrap(err, "encoding toml")
	}
	if doc == nil {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encoding toml")
	}
	return buf.Bytes(), nil
}

// toTOML converts v into a Go value the TOML encoder renders in order. Maps
// become generated struct types whose fields carry the keys as tags, since
// the encoder walks struct fields in declaration order but sorts map keys.
func toTOML(v value.Value) (any, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindBool, value.KindInt, value.KindFloat, value.KindString:
		return v.Interface(), nil
	case value.KindChar:
		return v.String(), nil
	case value.KindList:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			if item.IsNull() {
				return nil, errors.Newf("item %d: null cannot be represented", i)
			}
			x, err := toTOML(item)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			out[i] = x
		}
		return out, nil
	case value.KindMap:
		m, _ := v.AsMap()
		return tomlStruct(m)
	}
	return nil, errors.Newf("unsupported kind %s", v.Kind())
}

func tomlStruct(m *value.Map) (any, error) {
	var (
		fields []reflect.StructField
		vals   []reflect.Value
		plain  = make(map[string]any, m.Len())
		sorted = false
	)

	for k, item := range m.All() {
		if item.IsNull() {
			continue
		}
		x, err := toTOML(item)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
		plain[k] = x

		if !tomlTaggable(k) {
			sorted = true
			continue
		}
		fields = append(fields, reflect.StructField{
			Name: fmt.Sprintf("F%d", len(fields)),
			Type: reflect.TypeOf(x),
			Tag:  reflect.StructTag(`toml:` + strconv.Quote(k)),
		})
		vals = append(vals, reflect.ValueOf(x))
	}

	// Keys that cannot be expressed as a struct tag fall back to a map and
	// lose their order.
	if sorted {
		return plain, nil
	}

	st := reflect.New(reflect.StructOf(fields)).Elem()
	for i, rv := range vals {
		st.Field(i).Set(rv)
	}
	return st.Interface(), nil
}

func tomlTaggable(key string) bool {
	return key != "" && key != "-" && !strings.Contains(key, ",")
}
