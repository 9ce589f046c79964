package config

import (
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/serial"
)

// Config is the root section of a configuration tree bound to a backing
// resource. All Section methods called on a Config act on the root.
//
// A Config is not safe for concurrent use.
type Config struct {
	*Section

	nodes []node
	free  []int

	sep   rune
	mode  ReloadMode
	res   Resource
	codec codec.Codec
	reg   *serial.Registry
	log   *slog.Logger

	// stamp is the resource's modification marker at the last sync attempt.
	stamp time.Time
}

// New returns an empty Config backed by res and encoded with c. The resource
// is created if it does not exist; its contents are not loaded.
func New(res Resource, c codec.Codec, opts ...Option) (*Config, error) {
	if res == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil resource")
	}
	if c == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil codec")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := validSeparator(o.sep); err != nil {
		return nil, err
	}
	if !o.mode.valid() {
		return nil, errors.Wrapf(ErrInvalidArgument, "reload mode %d", o.mode)
	}

	cfg := newConfig(res, c, o)
	if err := res.Ensure(); err != nil {
		return nil, ioError("ensure", res.Name(), err)
	}
	mt, err := res.ModTime()
	if err != nil {
		return nil, ioError("stat", res.Name(), err)
	}
	cfg.stamp = mt
	return cfg, nil
}

func newConfig(res Resource, c codec.Codec, o options) *Config {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.reg == nil {
		o.reg = serial.NewRegistry()
	}
	cfg := &Config{
		sep:   o.sep,
		mode:  o.mode,
		res:   res,
		codec: c,
		reg:   o.reg,
		log:   o.logger,
	}
	cfg.alloc("", noChild)
	cfg.Section = cfg.handle(rootID)
	return cfg
}

// Open opens the configuration file at path, creating it if necessary, and
// loads it. The codec is chosen from the file extension unless WithCodec is
// given.
func Open(path string, opts ...Option) (*Config, error) {
	if path == "" {
		return nil, errors.Wrap(ErrInvalidArgument, "empty path")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := o.codec
	if c == nil {
		var err error
		if c, err = codec.ForPath(path); err != nil {
			return nil, errors.Mark(err, ErrInvalidArgument)
		}
	}

	cfg, err := New(NewFileResource(o.fs, path), c, opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewMemory returns an empty Config backed by a MemoryResource. The codec
// is JSON unless WithCodec is given.
func NewMemory(opts ...Option) (*Config, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := o.codec
	if c == nil {
		c = codec.JSON{}
	}
	return New(NewMemoryResource("memory", nil), c, opts...)
}

func validSeparator(sep rune) error {
	if sep == 0 || sep == utf8.RuneError || !utf8.ValidRune(sep) {
		return errors.Wrapf(ErrInvalidArgument, "separator %q", sep)
	}
	return nil
}

// Separator returns the path separator.
func (c *Config) Separator() rune { return c.sep }

// SetSeparator changes the path separator. Stored keys are not rewritten.
func (c *Config) SetSeparator(sep rune) error {
	if err := validSeparator(sep); err != nil {
		return err
	}
	c.sep = sep
	return nil
}

// Mode returns the reload/save policy.
func (c *Config) Mode() ReloadMode { return c.mode }

// SetReloadMode changes the reload/save policy.
func (c *Config) SetReloadMode(mode ReloadMode) error {
	if !mode.valid() {
		return errors.Wrapf(ErrInvalidArgument, "reload mode %d", mode)
	}
	c.mode = mode
	return nil
}

// Resource returns the backing resource.
func (c *Config) Resource() Resource { return c.res }

// Codec returns the codec used for the backing resource.
func (c *Config) Codec() codec.Codec { return c.codec }

// Registry returns the serialization registry.
func (c *Config) Registry() *serial.Registry { return c.reg }

// Timestamp returns the resource modification marker recorded at the last
// synchronization attempt.
func (c *Config) Timestamp() time.Time { return c.stamp }

func (c *Config) String() string {
	return c.codec.Name() + "[" + c.res.Name() + "]"
}
