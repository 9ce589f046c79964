// Package settings manages the cfgtree CLI's own configuration.
//
// Settings are read with Viper from, in order of precedence: command-line
// flags bound by the CLI, CFGTREE_* environment variables, the settings file
// and built-in defaults. The settings file is config.yaml, searched for in
// $CFGTREE_CONFIG_DIR, the current directory, <ConfigHome>/cfgtree and the
// XDG config directories.
//
//	separator: "."
//	reload: intelligent
//	format: auto
//	editor: nvim
//	log_format: text
//	aliases:
//	  app: ~/.config/app/config.toml
//
// An alias lets a command name a file as "@app" instead of its path.
// Viper lowercases keys, so alias names are case-insensitive.
//
// These settings are distinct from the configuration files the CLI edits,
// which are handled by pkg/config.
package settings
