package codec

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// YAML reads and writes YAML documents. Only the first document of a stream
// is decoded. Aliases and merge keys are resolved.
type YAML struct{}

func (YAML) Name() string         { return "yaml" }
func (YAML) Extensions() []string { return []string{".yaml", ".yml"} }

// Decode implements Codec.
func (YAML) Decode(data []byte) (*value.Map, error) {
	if blank(data) {
		return value.NewMap(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	for root.Kind == yaml.AliasNode {
		root = root.Alias
	}

	switch {
	case root.Kind == 0, root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null":
		return value.NewMap(), nil
	case root.Kind != yaml.MappingNode:
		return nil, errors.Newf("decoding yaml: line %d: top level is not a mapping", root.Line)
	}

	v, err := fromYAML(root)
	if err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}
	m, _ := v.AsMap()
	return m, nil
}

// DecodeScalar parses text as a single YAML value, e.g. "8080", "true",
// "[a, b]" or "{x: 1}". Blank text is returned as a string.
func DecodeScalar(text string) (value.Value, error) {
	if strings.TrimSpace(text) == "" {
		return value.String(text), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return value.Null(), errors.Wrap(err, "parsing value")
	}
	if len(doc.Content) == 0 {
		return value.String(text), nil
	}
	return fromYAML(doc.Content[0])
}

func fromYAML(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.ScalarNode:
		return yamlScalar(n)
	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return value.Null(), err
			}
			items = append(items, v)
		}
		return value.List(items...), nil
	case yaml.MappingNode:
		m := value.NewMap()
		if err := yamlMapping(m, n); err != nil {
			return value.Null(), err
		}
		return value.MapOf(m), nil
	}
	return value.Null(), errors.Newf("line %d: unsupported node", n.Line)
}

func yamlMapping(m *value.Map, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.ShortTag() == "!!merge" {
			if err := yamlMerge(m, v); err != nil {
				return err
			}
			continue
		}
		if k.Kind != yaml.ScalarNode {
			return errors.Newf("line %d: mapping keys must be scalars", k.Line)
		}
		val, err := fromYAML(v)
		if err != nil {
			return errors.Wrapf(err, "key %q", k.Value)
		}
		m.Set(k.Value, val)
	}
	return nil
}

// yamlMerge applies a "<<" merge value. Keys already present win.
func yamlMerge(m *value.Map, n *yaml.Node) error {
	for n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	sources := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		sources = n.Content
	}
	for _, src := range sources {
		for src.Kind == yaml.AliasNode {
			src = src.Alias
		}
		if src.Kind != yaml.MappingNode {
			return errors.Newf("line %d: merge value is not a mapping", src.Line)
		}
		merged := value.NewMap()
		if err := yamlMapping(merged, src); err != nil {
			return err
		}
		for k, v := range merged.All() {
			if !m.Has(k) {
				m.Set(k, v)
			}
		}
	}
	return nil
}

func yamlScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Null(), errors.Wrapf(err, "line %d", n.Line)
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return value.Int(i), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Null(), errors.Wrapf(err, "line %d", n.Line)
		}
		return value.Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Null(), errors.Wrapf(err, "line %d", n.Line)
		}
		return value.Float(f), nil
	}
	return value.String(n.Value), nil
}

// Encode implements Codec. Nested mappings are indented by two spaces.
func (YAML) Encode(m *value.Map) ([]byte, error) {
	root, err := toYAML(value.MapOf(m))
	if err != nil {
		return nil, errors.Wrap(err, "encoding yaml")
	}
	if m == nil {
		root = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Style: yaml.FlowStyle}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, errors.Wrap(err, "encoding yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding yaml")
	}
	return buf.Bytes(), nil
}

func toYAML(v value.Value) (*yaml.Node, error) {
	scalar := func(tag, text string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	}

	switch v.Kind() {
	case value.KindNull:
		return scalar("!!null", "null"), nil
	case value.KindBool:
		b, _ := v.AsBool()
		return scalar("!!bool", strconv.FormatBool(b)), nil
	case value.KindInt:
		i, _ := v.AsInt()
		return scalar("!!int", strconv.FormatInt(i, 10)), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		switch {
		case math.IsNaN(f):
			return scalar("!!float", ".nan"), nil
		case math.IsInf(f, 1):
			return scalar("!!float", ".inf"), nil
		case math.IsInf(f, -1):
			return scalar("!!float", "-.inf"), nil
		}
		return scalar("!!float", formatFloat(f)), nil
	case value.KindChar, value.KindString:
		return scalar("!!str", v.String()), nil
	case value.KindList:
		items, _ := v.AsList()
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if len(items) == 0 {
			n.Style = yaml.FlowStyle
		}
		for _, item := range items {
			c, err := toYAML(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case value.KindMap:
		m, _ := v.AsMap()
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if m.Len() == 0 {
			n.Style = yaml.FlowStyle
		}
		for k, item := range m.All() {
			c, err := toYAML(item)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", k)
			}
			n.Content = append(n.Content, scalar("!!str", k), c)
		}
		return n, nil
	}
	return nil, errors.Newf("unsupported kind %s", v.Kind())
}
