package settings

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/config"
)

// Validation errors for settings fields.
var (
	// ErrInvalidSeparator indicates the separator is not exactly one character.
	ErrInvalidSeparator = errors.New("separator must be a single character")

	// ErrInvalidReload indicates an unrecognized reload mode.
	ErrInvalidReload = errors.New("invalid reload mode")

	// ErrInvalidFormat indicates an unrecognized file format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidLogFormat indicates a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidBackups indicates a negative backup count.
	ErrInvalidBackups = errors.New("backups must not be negative")

	// ErrUnknownAlias indicates an "@name" file argument with no alias.
	ErrUnknownAlias = errors.New("unknown file alias")
)

// Validate checks a Settings for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(s *Settings) []error {
	if s == nil {
		return []error{errors.New("settings are nil")}
	}

	var errs []error

	if utf8.RuneCountInString(s.Separator) != 1 {
		errs = append(errs, &FieldError{Field: "separator", Value: s.Separator, Err: ErrInvalidSeparator})
	}

	if _, err := config.ParseReloadMode(s.Reload); err != nil {
		errs = append(errs, &FieldError{Field: "reload", Value: s.Reload, Err: ErrInvalidReload})
	}

	if s.Format != "" && s.Format != FormatAuto {
		if _, err := codec.ByName(s.Format); err != nil {
			errs = append(errs, &FieldError{Field: "format", Value: s.Format, Err: ErrInvalidFormat})
		}
	}

	switch s.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, &FieldError{Field: "log_format", Value: s.LogFormat, Err: ErrInvalidLogFormat})
	}

	if s.Backups < 0 {
		errs = append(errs, &FieldError{Field: "backups", Value: strconv.Itoa(s.Backups), Err: ErrInvalidBackups})
	}
	if err := validatePath(s.BackupDir); err != nil {
		errs = append(errs, &FieldError{Field: "backup_dir", Value: s.BackupDir, Err: err})
	}

	if err := validatePath(s.LogFile); err != nil {
		errs = append(errs, &FieldError{Field: "log_file", Value: s.LogFile, Err: err})
	}
	for name, target := range s.Aliases {
		if target == "" {
			errs = append(errs, &FieldError{Field: "aliases." + name, Err: ErrInvalidPath})
			continue
		}
		if err := validatePath(target); err != nil {
			errs = append(errs, &FieldError{Field: "aliases." + name, Value: target, Err: err})
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an error for a specific settings field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
