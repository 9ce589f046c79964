package config

import (
	"github.com/thoreinstein/cfgtree/pkg/serial"
)

// GetSerializable decodes the section at path into a T using the root's
// registry. It reports false when path holds no section.
func GetSerializable[T any](s *Section, path string) (T, bool, error) {
	var zero T
	v, ok, err := s.Find(path)
	if err != nil || !ok {
		return zero, false, err
	}
	m, ok := v.AsMap()
	if !ok {
		return zero, false, nil
	}
	out, err := serial.Decode[T](s.cfg.reg, m)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// GetSerializableOr is GetSerializable returning def when path holds no
// section.
func GetSerializableOr[T any](s *Section, path string, def T) (T, error) {
	out, ok, err := GetSerializable[T](s, path)
	if err != nil || !ok {
		return def, err
	}
	return out, nil
}
