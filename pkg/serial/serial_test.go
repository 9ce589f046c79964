package serial

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

type server struct {
	Host    string        `cfg:"host"`
	Port    int           `cfg:"port"`
	Tags    []string      `cfg:"tags"`
	Timeout time.Duration `cfg:"timeout"`
	secret  string
	Ignored string `cfg:"-"`
}

type cluster struct {
	Name    string  `cfg:"name"`
	Primary server  `cfg:"primary"`
	Backup  *server `cfg:"backup"`
}

type point struct{ X, Y int }

func (p *point) MarshalSection() (*value.Map, error) {
	m := value.NewMap()
	m.Set("x", value.Int(int64(p.X)))
	m.Set("y", value.Int(int64(p.Y)))
	return m, nil
}

func (p *point) UnmarshalSection(m *value.Map) error {
	x, _ := m.Get("x")
	y, _ := m.Get("y")
	p.X = value.ToInt(x)
	p.Y = value.ToInt(y)
	return nil
}

type writeOnly struct{ N int }

func (w *writeOnly) MarshalSection() (*value.Map, error) {
	m := value.NewMap()
	m.Set("n", value.Int(int64(w.N)))
	return m, nil
}

type panicky struct{}

func (*panicky) MarshalSection() (*value.Map, error) { panic("boom") }

type badTag struct {
	hidden string `cfg:"hidden"` //nolint:unused
}

type dupTag struct {
	A string `cfg:"k"`
	B string `cfg:"k"`
}

func TestIsSerializable(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"tagged struct", server{}, true},
		{"pointer to tagged struct", &server{}, true},
		{"marshaler", point{}, true},
		{"plain struct", struct{ A int }{}, false},
		{"string", "x", false},
		{"int", 1, false},
		{"nil", nil, false},
		{"value", value.Int(1), false},
		{"map", map[string]any{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.IsSerializable(tt.in))
		})
	}
}

func TestEncodeTaggedStruct(t *testing.T) {
	reg := NewRegistry()

	m, err := reg.Encode(server{
		Host:    "localhost",
		Port:    8080,
		Tags:    []string{"a", "b"},
		Timeout: 0,
		secret:  "s",
		Ignored: "i",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"host", "port", "tags", "timeout"}, m.Keys())
	host, _ := m.Get("host")
	assert.Equal(t, "localhost", host.String())
	port, _ := m.Get("port")
	assert.True(t, port.Equal(value.Int(8080)))
	tags, _ := m.Get("tags")
	assert.True(t, tags.Equal(value.List(value.String("a"), value.String("b"))))
}

func TestRoundTripNested(t *testing.T) {
	reg := NewRegistry()
	in := cluster{
		Name:    "prod",
		Primary: server{Host: "a", Port: 1, Tags: []string{}},
		Backup:  &server{Host: "b", Port: 2, Tags: []string{"x"}},
	}

	m, err := reg.Encode(in)
	require.NoError(t, err)

	primary, ok := m.Get("primary")
	require.True(t, ok)
	assert.Equal(t, value.KindMap, primary.Kind())

	out, err := Decode[cluster](reg, m)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodePointerType(t *testing.T) {
	reg := NewRegistry()
	m := value.NewMap()
	m.Set("host", value.String("h"))
	m.Set("timeout", value.String("1m30s"))

	out, err := Decode[*server](reg, m)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "h", out.Host)
	assert.Equal(t, 90*time.Second, out.Timeout)
	assert.Zero(t, out.Port, "missing keys keep the zero value")
}

func TestDecodeCharIntoString(t *testing.T) {
	reg := NewRegistry()
	m := value.NewMap()
	m.Set("host", value.Char('h'))

	out, err := Decode[server](reg, m)
	require.NoError(t, err)
	assert.Equal(t, "h", out.Host)
}

func TestMarshalerRoundTrip(t *testing.T) {
	reg := NewRegistry()

	m, err := reg.Encode(point{X: 3, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, "{x: 3, y: 4}", m.String())

	out, err := Decode[point](reg, m)
	require.NoError(t, err)
	assert.Equal(t, point{X: 3, Y: 4}, out)
}

func TestDecodeWithoutStrategy(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Encode(writeOnly{N: 1})
	require.NoError(t, err)

	_, err = Decode[writeOnly](reg, value.NewMap())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerialization))
}

func TestNotSerializable(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Encode(struct{ A int }{A: 1})
	assert.True(t, errors.Is(err, ErrNotSerializable))

	_, err = reg.Decode(value.NewMap(), reflect.TypeFor[struct{ A int }]())
	assert.True(t, errors.Is(err, ErrNotSerializable))

	var nilServer *server
	_, err = reg.Encode(nilServer)
	assert.True(t, errors.Is(err, ErrNotSerializable))
}

func TestInvalidTags(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Resolve(reflect.TypeFor[badTag]())
	assert.True(t, errors.Is(err, ErrSerialization))

	_, err = reg.Resolve(reflect.TypeFor[dupTag]())
	assert.True(t, errors.Is(err, ErrSerialization))
}

func TestPanicRecovered(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Encode(panicky{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerialization))
	assert.Contains(t, err.Error(), "boom")
}

func TestRegisterWithCodec(t *testing.T) {
	type celsius float64
	reg := NewRegistry()

	err := Register(reg, WithCodec(
		func(c celsius) (*value.Map, error) {
			m := value.NewMap()
			m.Set("c", value.Float(float64(c)))
			return m, nil
		},
		func(m *value.Map) (celsius, error) {
			v, _ := m.Get("c")
			return celsius(value.ToFloat64(v)), nil
		},
	))
	require.NoError(t, err)
	assert.True(t, reg.IsSerializable(celsius(1)))

	m, err := reg.Encode(celsius(21.5))
	require.NoError(t, err)

	out, err := Decode[celsius](reg, m)
	require.NoError(t, err)
	assert.InDelta(t, 21.5, float64(out), 1e-9)
}

func TestRegisterCodecFailure(t *testing.T) {
	type broken struct{}
	reg := NewRegistry()

	require.NoError(t, Register(reg, WithCodec[broken](nil,
		func(*value.Map) (broken, error) { return broken{}, errors.New("nope") },
	)))

	_, err := Decode[broken](reg, value.NewMap())
	assert.True(t, errors.Is(err, ErrSerialization))
}

func TestRegisterWithFields(t *testing.T) {
	type pair struct {
		left, right string
	}
	reg := NewRegistry()

	err := Register(reg,
		WithFields(
			Field("l", func(p *pair) string { return p.left }, func(p *pair, v string) { p.left = v }),
			Field("r", func(p *pair) string { return p.right }, func(p *pair, v string) { p.right = v }),
		),
		WithFactory(func() pair { return pair{left: "default"} }),
	)
	require.NoError(t, err)

	m, err := reg.Encode(pair{left: "a", right: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"l", "r"}, m.Keys())

	partial := value.NewMap()
	partial.Set("r", value.String("z"))
	out, err := Decode[pair](reg, partial)
	require.NoError(t, err)
	assert.Equal(t, pair{left: "default", right: "z"}, out)
}

func TestRegisterRejectsPointer(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, Register[*server](reg))
}

func TestRegisterMarkerOnly(t *testing.T) {
	type marker struct{ N int }
	reg := NewRegistry()
	require.NoError(t, Register[marker](reg))

	m, err := reg.Encode(marker{N: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	out, err := Decode[marker](reg, m)
	require.NoError(t, err)
	assert.Equal(t, marker{}, out)
}

func TestConcurrentResolve(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			_, err := reg.Resolve(reflect.TypeFor[server]())
			assert.NoError(t, err)
		})
	}
	wg.Wait()
}

func TestResolveKeepsRegistration(t *testing.T) {
	type celsius float64
	reg := NewRegistry()
	typ := reflect.TypeFor[celsius]()

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			_, _ = reg.Resolve(typ)
		})
	}
	wg.Go(func() {
		err := Register(reg, WithCodec(
			func(c celsius) (*value.Map, error) {
				m := value.NewMap()
				m.Set("c", value.Float(float64(c)))
				return m, nil
			},
			nil,
		))
		assert.NoError(t, err)
	})
	wg.Wait()

	d, err := reg.Resolve(typ)
	require.NoError(t, err, "a derived result never replaces a registration")
	assert.True(t, d.Custom())
}
