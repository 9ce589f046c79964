package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// JSON reads and writes JSON documents. Object member order is preserved in
// both directions and integral numbers stay integral.
type JSON struct{}

func (JSON) Name() string         { return "json" }
func (JSON) Extensions() []string { return []string{".json"} }

// Decode implements Codec.
func (JSON) Decode(data []byte) (*value.Map, error) {
	if blank(data) {
		return value.NewMap(), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("decoding json: invalid document")
	}

	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		return value.NewMap(), nil
	}
	if !res.IsObject() {
		return nil, errors.Newf("decoding json: top level is %s, want object", jsonKind(res))
	}
	v, err := fromJSON(res)
	if err != nil {
		return nil, errors.Wrap(err, "decoding json")
	}
	m, _ := v.AsMap()
	return m, nil
}

func fromJSON(r gjson.Result) (value.Value, error) {
	switch r.Type {
	case gjson.Null:
		return value.Null(), nil
	case gjson.False:
		return value.Bool(false), nil
	case gjson.True:
		return value.Bool(true), nil
	case gjson.String:
		return value.String(r.Str), nil
	case gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return value.Int(i), nil
			}
		}
		return value.Float(r.Num), nil
	}

	var err error
	switch {
	case r.IsArray():
		var items []value.Value
		r.ForEach(func(_, item gjson.Result) bool {
			var v value.Value
			if v, err = fromJSON(item); err != nil {
				return false
			}
			items = append(items, v)
			return true
		})
		return value.List(items...), err
	case r.IsObject():
		m := value.NewMap()
		r.ForEach(func(key, item gjson.Result) bool {
			var v value.Value
			if v, err = fromJSON(item); err != nil {
				err = errors.Wrapf(err, "key %q", key.Str)
				return false
			}
			m.Set(key.Str, v)
			return true
		})
		return value.MapOf(m), err
	}
	return value.Null(), errors.Newf("unexpected token %q", r.Raw)
}

func jsonKind(r gjson.Result) string {
	if r.IsArray() {
		return "array"
	}
	return strings.ToLower(r.Type.String())
}

// Encode implements Codec. The output is indented with two spaces and ends
// with a newline.
func (JSON) Encode(m *value.Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, value.MapOf(m)); err != nil {
		return nil, errors.Wrap(err, "encoding json")
	}
	if m == nil {
		buf.Reset()
		buf.WriteString("{}")
	}
	return pretty.PrettyOptions(buf.Bytes(), &pretty.Options{
		Width:  80,
		Indent: "  ",
	}), nil
}

func writeJSON(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		buf.WriteString("null")
	case value.KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case value.KindInt:
		i, _ := v.AsInt()
		buf.WriteString(strconv.FormatInt(i, 10))
	case value.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.Newf("cannot represent %v", f)
		}
		buf.WriteString(formatFloat(f))
	case value.KindChar, value.KindString:
		return writeJSONString(buf, v.String())
	case value.KindList:
		items, _ := v.AsList()
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.KindMap:
		m, _ := v.AsMap()
		buf.WriteByte('{')
		first := true
		for k, item := range m.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, item); err != nil {
				return errors.Wrapf(err, "key %q", k)
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// formatFloat renders f so that it reads back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
