package config

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/keypath"
	"github.com/thoreinstein/cfgtree/pkg/serial"
)

type options struct {
	sep    rune
	mode   ReloadMode
	logger *slog.Logger
	reg    *serial.Registry
	fs     afero.Fs
	codec  codec.Codec
}

func defaultOptions() options {
	return options{
		sep:  keypath.DefaultSeparator,
		mode: ReloadManual,
	}
}

// Option configures a Config at construction.
type Option func(*options)

// WithSeparator sets the path separator. The default is '.'.
func WithSeparator(sep rune) Option {
	return func(o *options) { o.sep = sep }
}

// WithReloadMode sets the reload/save policy. The default is ReloadManual.
func WithReloadMode(mode ReloadMode) Option {
	return func(o *options) { o.mode = mode }
}

// WithLogger sets the logger used for synchronization and accessor
// diagnostics. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRegistry sets the serialization registry. Without it each Config gets
// a registry of its own.
func WithRegistry(reg *serial.Registry) Option {
	return func(o *options) { o.reg = reg }
}

// WithFs sets the filesystem Open reads from. The default is the OS.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithCodec overrides the codec Open would pick from the file extension, and
// the JSON default of NewMemory.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}
