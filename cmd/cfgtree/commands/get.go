package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/errors"
)

// getOutput holds the value of the get --output flag.
var getOutput string

// getDefault holds the value of the get --default flag.
var getDefault string

func init() {
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "yaml",
		"format for sections: json, yaml, toml")
	getCmd.Flags().StringVar(&getDefault, "default", "",
		"print this instead of failing when the path holds no value")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <file> [path]",
	Short: "Print the value at a path",
	Long: `Print the value stored at a path.

Scalars are printed as plain text and lists one item per line. Sections are
printed as a document in the --output format. Without a path the whole file
is printed.`,
	Example: `  # Print a scalar
  cfgtree get config.yaml server.port

  # Print a section as JSON
  cfgtree get config.toml server -o json

  # Fall back to a default
  cfgtree get config.yaml server.timeout --default 30s

See Also: cfgtree keys, cfgtree flat`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completePath,
	RunE:              runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, path, err := openConfig(cmd, args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		m, err := cfg.ToMap()
		if err != nil {
			return classify(err, path)
		}
		return writeMap(cmd.OutOrStdout(), m, getOutput)
	}

	v, ok, err := cfg.Find(args[1])
	if err != nil {
		return classify(err, path)
	}
	if !ok {
		if cmd.Flags().Changed("default") {
			fmt.Fprintln(cmd.OutOrStdout(), getDefault)
			return nil
		}
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "%s in %s", args[1], path),
			"Run: cfgtree keys "+args[0]+" --deep")
	}
	return writeValue(cmd.OutOrStdout(), v, getOutput)
}
