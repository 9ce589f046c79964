// Package codec converts between raw file contents and the ordered maps held
// by a configuration tree.
//
// Three formats are provided: JSON, YAML and TOML. Every codec decodes a
// document whose top level is a mapping and preserves the document's key order
// wherever the format's parser exposes it.
package codec

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// ErrUnknownFormat is returned when no codec matches a name or file extension.
var ErrUnknownFormat = errors.New("unknown format")

// Codec turns raw bytes into an ordered map and back.
type Codec interface {
	// Name returns the short format name, e.g. "json".
	Name() string

	// Extensions returns the file extensions handled by the codec,
	// including the leading dot.
	Extensions() []string

	// Decode parses data. Empty input decodes to an empty map.
	Decode(data []byte) (*value.Map, error)

	// Encode renders m.
	Encode(m *value.Map) ([]byte, error)
}

var codecs = []Codec{JSON{}, YAML{}, TOML{}}

// All returns every built-in codec.
func All() []Codec {
	out := make([]Codec, len(codecs))
	copy(out, codecs)
	return out
}

// ByName returns the codec registered under name (case-insensitive).
// "yml" is accepted as an alias of "yaml".
func ByName(name string) (Codec, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "yml" {
		n = "yaml"
	}
	for _, c := range codecs {
		if c.Name() == n {
			return c, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", name)
}

// ForPath selects a codec from the extension of path.
func ForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, errors.Wrapf(ErrUnknownFormat, "%s has no file extension", path)
	}
	for _, c := range codecs {
		for _, e := range c.Extensions() {
			if e == ext {
				return c, nil
			}
		}
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "extension %q", ext)
}

func blank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}
