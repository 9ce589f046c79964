package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "cfgtree"

// SettingsFileName is the name of the CLI's own settings file.
const SettingsFileName = "config.yaml"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or "" if it cannot be determined.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// StateHome returns the XDG state home directory.
// On Linux: ~/.local/state
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func StateHome() string {
	return xdg.StateHome
}

// CacheHome returns the XDG cache home directory.
func CacheHome() string {
	return xdg.CacheHome
}

// SettingsDir returns the directory holding the CLI settings.
// Returns: <ConfigHome>/cfgtree/
func SettingsDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// SettingsFile returns the default settings file path.
// Returns: <ConfigHome>/cfgtree/config.yaml
func SettingsFile() string {
	return filepath.Join(SettingsDir(), SettingsFileName)
}

// SettingsSearchDirs returns the directories searched for the settings file,
// most specific first: the user's config directory, then each XDG config
// directory.
func SettingsSearchDirs() []string {
	dirs := []string{SettingsDir()}
	for _, d := range xdg.ConfigDirs {
		dirs = append(dirs, filepath.Join(d, AppName))
	}
	return dirs
}

// StateDir returns the directory for state written by the CLI, such as log
// files. Returns: <StateHome>/cfgtree/
func StateDir() string {
	return filepath.Join(StateHome(), AppName)
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
// Paths naming another user's home ("~bob/x") are rejected with ErrInvalidPath.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		if strings.HasPrefix(path, "~") {
			return "", errors.Wrapf(ErrInvalidPath, "%s: only the current user's home can be expanded", path)
		}
		return path, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
