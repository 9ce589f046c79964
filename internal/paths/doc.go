// Package paths resolves the filesystem locations used by the cfgtree CLI.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/state, ~/.cache).
//
// # Locations
//
//	paths.SettingsDir()  // <ConfigHome>/cfgtree
//	paths.SettingsFile() // <ConfigHome>/cfgtree/config.yaml
//	paths.StateDir()     // <StateHome>/cfgtree
//
// # Home Expansion
//
// Configuration file arguments and settings values may start with "~".
// [ExpandHome] replaces a leading "~" or "~/" with the user's home directory:
//
//	p, err := paths.ExpandHome("~/.config/app.toml")
package paths
