package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/value"
)

// writeValue prints v. Scalars print as plain text, lists one item per
// line and maps as a document in the named format.
func writeValue(w io.Writer, v value.Value, format string) error {
	switch v.Kind() {
	case value.KindMap:
		m, _ := v.AsMap()
		return writeMap(w, m, format)
	case value.KindList:
		items, _ := v.AsList()
		for _, item := range items {
			fmt.Fprintln(w, inline(item))
		}
		return nil
	case value.KindNull:
		fmt.Fprintln(w, "null")
		return nil
	}
	fmt.Fprintln(w, v.String())
	return nil
}

func writeMap(w io.Writer, m *value.Map, format string) error {
	c, err := codec.ByName(format)
	if err != nil {
		return errors.NewUserError(err, "Use --output json, yaml or toml")
	}
	data, err := c.Encode(m)
	if err != nil {
		return errors.NewUserError(err, "The value cannot be written as "+c.Name())
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "writing output")
}

// inline renders v on a single line. Strings that would read back as another
// kind are quoted.
func inline(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return "null"
	case value.KindString:
		s, _ := v.AsString()
		if parsed, err := codec.DecodeScalar(s); s == "" || err != nil || parsed.Kind() != value.KindString || s != strings.TrimSpace(s) {
			return fmt.Sprintf("%q", s)
		}
		return s
	case value.KindList:
		items, _ := v.AsList()
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = inline(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case value.KindMap:
		m, _ := v.AsMap()
		parts := make([]string, 0, m.Len())
		for k, item := range m.All() {
			parts = append(parts, k+": "+inline(item))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.String()
}

// success prints a confirmation line unless --quiet is set.
func success(w io.Writer, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintln(w, color.GreenString("✓")+" "+fmt.Sprintf(format, args...))
}
