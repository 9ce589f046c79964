// Package logging provides structured logging for the cfgtree CLI using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("loaded configuration", "resource", "app.json")
//
// # Redaction
//
// The text [Handler] masks values that look like credentials. An attribute
// is masked when its key names a secret (token, password, ...), when its
// value starts with a well-known token prefix, or when it is the "value"
// attribute of a record whose "path" attribute ends in a secret key:
//
//	logger.Debug("set", "path", "db.password", "value", "hunter22")
//	// DEBUG set path=db.password value=****er22
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// # Quiet Mode
//
// Use [NewDiscard] when log output should be suppressed entirely:
//
//	logger := logging.NewDiscard()
package logging
