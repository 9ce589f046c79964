package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/internal/logging"
	"github.com/thoreinstein/cfgtree/internal/settings"
	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/config"
	"github.com/thoreinstein/cfgtree/pkg/serial"
)

// activeSettings returns the settings of the running command, or defaults
// when a command runs without the root's pre-run hook.
func activeSettings() *settings.Settings {
	if current == nil {
		return &settings.Settings{Separator: ".", Reload: "intelligent", Format: settings.FormatAuto}
	}
	return current
}

// resolveFile maps a file argument to a path on disk.
func resolveFile(arg string) (string, error) {
	path, err := activeSettings().ResolveFile(arg)
	if err != nil {
		return "", errors.NewUserError(err, "Aliases are defined under \"aliases\" in the settings file")
	}
	return path, nil
}

// openConfig resolves arg, then opens and loads the configuration file it
// names using the current settings.
func openConfig(cmd *cobra.Command, arg string) (*config.Config, string, error) {
	path, err := resolveFile(arg)
	if err != nil {
		return nil, "", err
	}

	opts, err := activeSettings().Options()
	if err != nil {
		return nil, path, errors.NewUserError(err, "")
	}
	opts = append(opts, config.WithLogger(logging.FromContext(cmd.Context())))

	cfg, err := config.Open(path, opts...)
	if err != nil {
		return nil, path, classify(err, path)
	}
	logging.FromContext(cmd.Context()).Debug("opened configuration",
		"path", path, "codec", cfg.Codec().Name(), "reload", cfg.Mode().String())
	return cfg, path, nil
}

// persist saves cfg when its reload mode does not save on its own.
func persist(cfg *config.Config, path string) error {
	if cfg.Mode() != config.ReloadManual {
		return nil
	}
	if err := cfg.Save(); err != nil {
		return classify(err, path)
	}
	return nil
}

// classify attaches an exit code and suggestion to errors from pkg/config.
func classify(err error, path string) error {
	if err == nil {
		return nil
	}
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var rerr *config.ResourceError
	switch {
	case errors.As(err, &rerr) && rerr.Op == "decode":
		return errors.NewConfigError(err, path)
	case errors.Is(err, config.ErrIO):
		return errors.NewSystemError(err, "Check that "+path+" is readable and writable")
	case errors.Is(err, codec.ErrUnknownFormat):
		return errors.NewUserError(err, "Use a .json, .yaml, .yml or .toml file, or pass --format")
	case errors.Is(err, config.ErrPathTypeConflict):
		return errors.NewUserError(err, "A parent of the path holds a value; unset it first")
	case errors.Is(err, config.ErrPathExists):
		return errors.NewUserError(err, "")
	case errors.Is(err, serial.ErrSerialization), errors.Is(err, config.ErrInvalidArgument):
		return errors.NewUserError(err, "")
	}
	return errors.NewSystemError(err, "")
}
