package settings

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/thoreinstein/cfgtree/internal/backup"
	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/internal/paths"
	"github.com/thoreinstein/cfgtree/pkg/config"
)

// memFs returns an in-memory filesystem searched first for settings.
func memFs(t *testing.T, content string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	t.Setenv(EnvPrefix+"_CONFIG_DIR", "/settings")
	if content != "" {
		if err := afero.WriteFile(fs, "/settings/config.yaml", []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(New(memFs(t, "")), "")
	if err != nil {
		t.Fatalf("Load() with no settings file should not error: %v", err)
	}

	if s.Separator != "." {
		t.Errorf("Separator = %q, want %q", s.Separator, ".")
	}
	if s.Reload != "intelligent" {
		t.Errorf("Reload = %q, want %q", s.Reload, "intelligent")
	}
	if s.Format != FormatAuto {
		t.Errorf("Format = %q, want %q", s.Format, FormatAuto)
	}
	if s.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", s.LogFormat, "text")
	}
	if s.Backups != backup.DefaultRetentionCount {
		t.Errorf("Backups = %d, want %d", s.Backups, backup.DefaultRetentionCount)
	}
}

func TestLoad_SearchPath(t *testing.T) {
	fs := memFs(t, "separator: /\nreload: automatic\naliases:\n  App: /etc/app.toml\n")

	s, err := Load(New(fs), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.SeparatorRune() != '/' {
		t.Errorf("SeparatorRune() = %q, want '/'", s.SeparatorRune())
	}
	if s.Reload != "automatic" {
		t.Errorf("Reload = %q, want automatic", s.Reload)
	}
	if s.Aliases["app"] != "/etc/app.toml" {
		t.Errorf("Aliases = %v, want app=/etc/app.toml", s.Aliases)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	fs := memFs(t, "")
	if err := afero.WriteFile(fs, "/other/custom.yaml", []byte("format: toml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(New(fs), "/other/custom.yaml")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Format != "toml" {
		t.Errorf("Format = %q, want toml", s.Format)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	_, err := Load(New(memFs(t, "")), "/non/existent/config.yaml")
	if err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fs := memFs(t, "reload: manual\n")
	t.Setenv("CFGTREE_RELOAD", "automatic")
	t.Setenv("CFGTREE_LOG_FORMAT", "json")

	s, err := Load(New(fs), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Reload != "automatic" {
		t.Errorf("Reload = %q, want automatic from environment", s.Reload)
	}
	if s.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json from environment", s.LogFormat)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"long separator", "separator: '::'\n", ErrInvalidSeparator},
		{"unknown reload", "reload: sometimes\n", ErrInvalidReload},
		{"unknown format", "format: ini\n", ErrInvalidFormat},
		{"unknown log format", "log_format: xml\n", ErrInvalidLogFormat},
		{"empty alias", "aliases:\n  app: ''\n", ErrInvalidPath},
		{"negative backups", "backups: -1\n", ErrInvalidBackups},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(New(memFs(t, tt.content)), "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := Load(New(memFs(t, "separator: [\n")), "")
	if err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestOptions(t *testing.T) {
	s := &Settings{Separator: ":", Reload: "manual", Format: "yaml"}
	opts, err := s.Options()
	if err != nil {
		t.Fatalf("Options() error: %v", err)
	}

	cfg, err := config.NewMemory(opts...)
	if err != nil {
		t.Fatalf("NewMemory() error: %v", err)
	}
	if cfg.Separator() != ':' {
		t.Errorf("Separator() = %q, want ':'", cfg.Separator())
	}
	if cfg.Mode() != config.ReloadManual {
		t.Errorf("Mode() = %v, want manual", cfg.Mode())
	}
	if cfg.Codec().Name() != "yaml" {
		t.Errorf("Codec() = %q, want yaml", cfg.Codec().Name())
	}

	s.Format = FormatAuto
	opts, err = s.Options()
	if err != nil {
		t.Fatalf("Options() error: %v", err)
	}
	if len(opts) != 2 {
		t.Errorf("auto format should not force a codec, got %d options", len(opts))
	}
}

func TestResolveFile(t *testing.T) {
	home, err := paths.ResolveHome()
	if err != nil {
		t.Skip("no home directory")
	}
	s := &Settings{Aliases: map[string]string{"app": "~/app.toml", "etc": "/etc/app.json"}}

	tests := []struct {
		arg     string
		want    string
		wantErr error
	}{
		{"config.yaml", "config.yaml", nil},
		{"@etc", "/etc/app.json", nil},
		{"@APP", filepath.Join(home, "app.toml"), nil},
		{"~/x.json", filepath.Join(home, "x.json"), nil},
		{"@missing", "", ErrUnknownAlias},
		{"", "", ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := s.ResolveFile(tt.arg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolveFile(%q) error = %v, want %v", tt.arg, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveFile(%q) error: %v", tt.arg, err)
			}
			if got != tt.want {
				t.Errorf("ResolveFile(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestFieldError(t *testing.T) {
	err := &FieldError{Field: "reload", Value: "x", Err: ErrInvalidReload}
	if err.Error() != "reload: invalid reload mode: x" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrInvalidReload) {
		t.Error("FieldError should unwrap to its cause")
	}
}

func TestBackupManager(t *testing.T) {
	s := &Settings{Backups: 0}
	m, err := s.BackupManager()
	if err != nil || m != nil {
		t.Errorf("BackupManager() = %v, %v; want nil when backups are disabled", m, err)
	}

	s = &Settings{Backups: 2, BackupDir: t.TempDir()}
	m, err = s.BackupManager()
	if err != nil {
		t.Fatalf("BackupManager() error: %v", err)
	}
	if m == nil {
		t.Fatal("BackupManager() = nil, want a manager")
	}

	s = &Settings{Backups: 2, BackupDir: "~someone/backups"}
	if _, err := s.BackupManager(); !errors.Is(err, paths.ErrInvalidPath) {
		t.Errorf("error = %v, want paths.ErrInvalidPath", err)
	}
}
