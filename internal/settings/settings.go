package settings

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/thoreinstein/cfgtree/internal/backup"
	"github.com/thoreinstein/cfgtree/internal/paths"
	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/config"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "CFGTREE"

// FormatAuto selects the codec from the file extension.
const FormatAuto = "auto"

// Settings represents the CLI settings file.
type Settings struct {
	Separator string            `mapstructure:"separator"`
	Reload    string            `mapstructure:"reload"`
	Format    string            `mapstructure:"format"`
	Editor    string            `mapstructure:"editor"`
	LogFormat string            `mapstructure:"log_format"`
	LogFile   string            `mapstructure:"log_file"`
	Aliases   map[string]string `mapstructure:"aliases"`

	// Backups is the number of snapshots kept per file. Zero disables them.
	Backups   int    `mapstructure:"backups"`
	BackupDir string `mapstructure:"backup_dir"`
}

// New returns a Viper instance reading settings from fs, with search paths,
// environment binding and defaults set. A nil fs uses the OS filesystem.
func New(fs afero.Fs) *viper.Viper {
	v := viper.New()
	if fs != nil {
		v.SetFs(fs)
	}

	v.SetConfigName(strings.TrimSuffix(paths.SettingsFileName, ".yaml"))
	v.SetConfigType("yaml")

	// Search paths (in order of precedence)
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	for _, dir := range paths.SettingsSearchDirs() {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("separator", ".")
	v.SetDefault("reload", config.ReloadIntelligent.String())
	v.SetDefault("format", FormatAuto)
	v.SetDefault("editor", "")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("backups", backup.DefaultRetentionCount)
	v.SetDefault("backup_dir", "")

	return v
}

// Load reads the settings file into a Settings.
// If path is provided, it reads from that specific file and a missing file
// is an error. If path is empty, it searches the default locations and falls
// back to defaults when no file is found.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file uses defaults.
		case errors.As(err, &notFound), os.IsNotExist(errors.UnwrapAll(err)):
			return nil, errors.Wrapf(err, "settings file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading settings file")
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "unmarshaling settings")
	}
	if errs := Validate(&s); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating settings")
	}
	return &s, nil
}

// SeparatorRune returns the configured path separator.
func (s *Settings) SeparatorRune() rune {
	r := []rune(s.Separator)
	if len(r) != 1 {
		return '.'
	}
	return r[0]
}

// Options translates the settings into options for config.Open.
func (s *Settings) Options() ([]config.Option, error) {
	mode, err := config.ParseReloadMode(s.Reload)
	if err != nil {
		return nil, err
	}
	opts := []config.Option{
		config.WithSeparator(s.SeparatorRune()),
		config.WithReloadMode(mode),
	}
	if s.Format != "" && s.Format != FormatAuto {
		c, err := codec.ByName(s.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithCodec(c))
	}
	return opts, nil
}

// BackupManager returns the backup manager the settings describe, or nil
// when backups are disabled.
func (s *Settings) BackupManager() (*backup.Manager, error) {
	if s.Backups <= 0 {
		return nil, nil
	}
	dir, err := paths.ExpandHome(s.BackupDir)
	if err != nil {
		return nil, err
	}
	return backup.NewManager(backup.WithBackupDir(dir), backup.WithRetentionCount(s.Backups)), nil
}

// ResolveFile turns a file argument into a path. "@name" refers to an entry
// of the aliases table, and a leading "~" is expanded.
func (s *Settings) ResolveFile(arg string) (string, error) {
	if name, ok := strings.CutPrefix(arg, "@"); ok {
		target, found := s.Aliases[strings.ToLower(name)]
		if !found {
			return "", errors.Wrapf(ErrUnknownAlias, "%q", name)
		}
		arg = target
	}
	if arg == "" {
		return "", errors.Wrap(ErrInvalidPath, "empty file name")
	}
	return paths.ExpandHome(arg)
}
