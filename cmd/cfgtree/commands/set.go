package commands

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/value"
)

// setType holds the value of the set --type flag.
var setType string

func init() {
	setCmd.Flags().StringVarP(&setType, "type", "t", "auto",
		"value type: auto, string, int, float, bool, char")
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set <file> <path> <value>",
	Short: "Set the value at a path",
	Long: `Set the value at a path, creating missing sections along the way.

With --type auto the value is parsed as YAML, so "8080" is a number, "true" a
boolean, "[a, b]" a list and "{x: 1}" a section. Use --type string to store
text verbatim. Setting "null" removes the entry.

The file is saved unless the reload mode is intelligent and the value did not
change.`,
	Example: `  # Set a number
  cfgtree set config.yaml server.port 8080

  # Keep a number-like value as text
  cfgtree set config.yaml build.version 1.10 --type string

  # Replace a section
  cfgtree set config.json server '{host: localhost, port: 80}'

See Also: cfgtree unset, cfgtree section`,
	Args:              cobra.ExactArgs(3),
	ValidArgsFunction: completePath,
	RunE:              runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	v, err := parseValue(args[2], setType)
	if err != nil {
		return errors.NewUserError(err, "Check the value or use --type string")
	}

	cfg, path, err := openConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if err := snapshot(cmd, path); err != nil {
		return err
	}
	if _, err := cfg.Set(args[1], v); err != nil {
		return classify(err, path)
	}
	if err := persist(cfg, path); err != nil {
		return err
	}

	success(cmd.OutOrStdout(), "Set %s = %s", args[1], inline(v))
	return nil
}

// parseValue converts command-line text into a value of the requested type.
func parseValue(text, typ string) (value.Value, error) {
	switch strings.ToLower(typ) {
	case "", "auto":
		v, err := codec.DecodeScalar(text)
		if err != nil {
			return value.Null(), errors.Mark(err, errors.ErrInvalidValue)
		}
		return v, nil
	case "string", "str":
		return value.String(text), nil
	case "int":
		i, err := strconv.ParseInt(strings.TrimSpace(text), 0, 64)
		if err != nil {
			return value.Null(), errors.Wrapf(errors.ErrInvalidValue, "%q is not an integer", text)
		}
		return value.Int(i), nil
	case "float":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return value.Null(), errors.Wrapf(errors.ErrInvalidValue, "%q is not a number", text)
		}
		return value.Float(f), nil
	case "bool":
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return value.Null(), errors.Wrapf(errors.ErrInvalidValue, "%q is not a boolean", text)
		}
		return value.Bool(b), nil
	case "char":
		if utf8.RuneCountInString(text) != 1 {
			return value.Null(), errors.Wrapf(errors.ErrInvalidValue, "%q is not a single character", text)
		}
		r, _ := utf8.DecodeRuneInString(text)
		return value.Char(r), nil
	}
	return value.Null(), errors.Wrapf(errors.ErrInvalidValue, "unknown type %q", typ)
}
