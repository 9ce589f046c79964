package config

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/cfgtree/pkg/serial"
	"github.com/thoreinstein/cfgtree/pkg/value"
)

type endpoint struct {
	Host string   `cfg:"host"`
	Port int      `cfg:"port"`
	Tags []string `cfg:"tags"`
}

type named struct {
	n string
}

func TestSerializableRoundTrip(t *testing.T) {
	cfg := newMemory(t)
	in := endpoint{Host: "localhost", Port: 8080, Tags: []string{"a"}}

	prev, err := cfg.Set("svc.api", in)
	require.NoError(t, err)
	assert.True(t, prev.IsNull())

	ok, err := cfg.IsSection("svc.api")
	require.NoError(t, err)
	assert.True(t, ok, "serializable objects are stored as sections")
	assert.Equal(t, 8080, intAt(t, cfg.Section, "svc.api.port"))

	out, found, err := GetSerializable[endpoint](cfg.Section, "svc.api")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, out)

	ptr, found, err := GetSerializable[*endpoint](cfg.Section, "svc.api")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in, *ptr)
}

func TestSerializableSetReturnsRawPrevious(t *testing.T) {
	cfg := newMemory(t)
	mustSet(t, cfg.Section, "ep", 5)

	prev, err := cfg.Set("ep", endpoint{Host: "h"})
	require.NoError(t, err)
	assert.True(t, prev.Equal(value.Int(5)))
}

func TestSerializableRegisteredFields(t *testing.T) {
	reg := serial.NewRegistry()
	require.NoError(t, serial.Register(reg, serial.WithFields(
		serial.Field("name",
			func(v *named) string { return v.n },
			func(v *named, s string) { v.n = s }),
	)))

	cfg := newMemory(t, WithRegistry(reg))
	mustSet(t, cfg.Section, "who", named{n: "ada"})
	assert.Equal(t, "ada", stringAt(t, cfg.Section, "who.name"))

	out, err := GetSerializableOr(cfg.Section, "who", named{})
	require.NoError(t, err)
	assert.Equal(t, named{n: "ada"}, out)
}

func TestGetSerializableMissing(t *testing.T) {
	cfg := newMemory(t)
	mustSet(t, cfg.Section, "scalar", 1)

	_, found, err := GetSerializable[endpoint](cfg.Section, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	def := endpoint{Host: "default"}
	out, err := GetSerializableOr(cfg.Section, "scalar", def)
	require.NoError(t, err)
	assert.Equal(t, def, out)
}

func TestGetSerializableNotSerializable(t *testing.T) {
	cfg := newMemory(t)
	mustSet(t, cfg.Section, "sec.a", 1)

	_, _, err := GetSerializable[named](cfg.Section, "sec")
	assert.True(t, errors.Is(err, serial.ErrNotSerializable))
}

func TestGetSerializableFieldMismatch(t *testing.T) {
	cfg := newMemory(t)
	mustSet(t, cfg.Section, "ep.port", "not a number")

	_, _, err := GetSerializable[endpoint](cfg.Section, "ep")
	assert.True(t, errors.Is(err, serial.ErrSerialization))
}
