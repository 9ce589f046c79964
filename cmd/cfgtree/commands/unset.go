package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/errors"
)

func init() {
	rootCmd.AddCommand(unsetCmd)
}

var unsetCmd = &cobra.Command{
	Use:     "unset <file> <path>",
	Aliases: []string{"rm"},
	Short:   "Remove the value or section at a path",
	Example: `  cfgtree unset config.yaml server.debug

See Also: cfgtree set`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completePath,
	RunE:              runUnset,
}

func runUnset(cmd *cobra.Command, args []string) error {
	cfg, path, err := openConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if err := snapshot(cmd, path); err != nil {
		return err
	}

	prev, err := cfg.Remove(args[1])
	if err != nil {
		return classify(err, path)
	}
	if prev.IsNull() {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "%s in %s", args[1], path), "")
	}
	if err := persist(cfg, path); err != nil {
		return err
	}

	success(cmd.OutOrStdout(), "Removed %s", args[1])
	return nil
}
