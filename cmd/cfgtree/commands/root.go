// Package commands implements the CLI commands for cfgtree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thoreinstein/cfgtree/cmd"
	"github.com/thoreinstein/cfgtree/internal/backup"
	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/internal/logging"
	"github.com/thoreinstein/cfgtree/internal/settings"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// settingsFile holds the value of the --settings flag.
var settingsFile string

// current holds the settings loaded before each command runs.
var current *settings.Settings

// logCloser closes the --log-file handle after the command finishes.
var logCloser io.Closer

func init() {
	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv, -vvv)")
	flags.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	flags.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	flags.StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	flags.StringVar(&settingsFile, "settings", "",
		"settings file (default: search for cfgtree/config.yaml)")
	flags.String("separator", ".", "path separator")
	flags.String("reload", "intelligent", "reload mode: manual, intelligent, automatic")
	flags.String("format", settings.FormatAuto, "file format: auto, json, yaml, toml")

	rootCmd.Version = cmd.Version
	backup.Version = cmd.Version
	rootCmd.SetVersionTemplate("cfgtree version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "cfgtree",
	Short: "Read and edit hierarchical configuration files",
	Long: `cfgtree reads and edits JSON, YAML and TOML configuration files through
separator-delimited paths such as "server.http.port".

Every command takes the configuration file as its first argument. A file
may also be named by an alias from the settings file, written as "@name".
Key order is preserved when a file is rewritten.`,
	Example: `  # Read a value
  cfgtree get config.yaml server.port

  # Write a value, parsed as YAML
  cfgtree set config.yaml server.tags '[a, b]'

  # List every path
  cfgtree keys config.toml --deep

  See Also: cfgtree convert, cfgtree watch`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadSettings(cmd); err != nil {
			return err
		}
		return setupLogging(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// loadSettings reads the settings file, letting flags set on the command
// line override it.
func loadSettings(cmd *cobra.Command) error {
	v := settings.New(nil)
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	s, err := settings.Load(v, settingsFile)
	if err != nil {
		return errors.NewUserError(err, "Check the settings file or the --separator, --reload and --format flags")
	}
	current = s

	if !cmd.Flags().Changed("log-format") && s.LogFormat != "" {
		logFormat = s.LogFormat
	}
	if !cmd.Flags().Changed("log-file") && s.LogFile != "" {
		logFile = s.LogFile
	}
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range map[string]string{
		"separator": "separator",
		"reload":    "reload",
		"format":    "format",
	} {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
			return errors.Wrapf(err, "binding flag %s", name)
		}
	}
	return nil
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("CFGTREE_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		logCloser = f
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	logger := slog.New(logging.NewMultiHandler(handlers...))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command and returns the process exit code. Errors
// are printed to stderr together with their suggestion, if any.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitSuccess
	}
	return reportError(rootCmd.ErrOrStderr(), err)
}

func reportError(w io.Writer, err error) int {
	fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Suggestion != "" {
			fmt.Fprintf(w, "%s\n", color.HiBlackString(exitErr.Suggestion))
		}
		return exitErr.Code
	}
	return errors.ExitUser
}
