package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/pkg/config"
	"github.com/thoreinstein/cfgtree/pkg/value"
)

// deep holds the value of the --deep flag of keys and flat.
var deep bool

func init() {
	keysCmd.Flags().BoolVarP(&deep, "deep", "d", false, "include nested paths")
	flatCmd.Flags().BoolVarP(&deep, "deep", "d", false, "descend into sections")
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(flatCmd)
}

var keysCmd = &cobra.Command{
	Use:   "keys <file> [section]",
	Short: "List the keys of a section",
	Long: `List the keys of the root or of the given section in file order.

With --deep every nested path is listed, each section before its contents.`,
	Example: `  cfgtree keys config.yaml
  cfgtree keys config.yaml server --deep`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completePath,
	RunE:              runKeys,
}

var flatCmd = &cobra.Command{
	Use:   "flat <file> [section]",
	Short: "Print path = value pairs",
	Long: `Print every entry of a section as "path = value".

Without --deep nested sections are printed inline. With --deep only leaf
values and empty sections are printed, addressed by their relative path.`,
	Example: `  cfgtree flat config.toml --deep`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completePath,
	RunE:              runFlat,
}

// sectionArg returns the section named by the optional second argument.
func sectionArg(cfg *config.Config, path string, args []string) (*config.Section, error) {
	if len(args) < 2 || args[1] == "" {
		return cfg.Section, nil
	}
	sec, err := cfg.GetSection(args[1])
	if err != nil {
		return nil, classify(err, path)
	}
	if sec == nil {
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "no section %s in %s", args[1], path), "")
	}
	return sec, nil
}

func runKeys(cmd *cobra.Command, args []string) error {
	cfg, path, err := openConfig(cmd, args[0])
	if err != nil {
		return err
	}
	sec, err := sectionArg(cfg, path, args)
	if err != nil {
		return err
	}

	keys, err := sec.Keys(deep)
	if err != nil {
		return classify(err, path)
	}
	for _, k := range keys {
		fmt.Fprintln(cmd.OutOrStdout(), k)
	}
	return nil
}

func runFlat(cmd *cobra.Command, args []string) error {
	cfg, path, err := openConfig(cmd, args[0])
	if err != nil {
		return err
	}
	sec, err := sectionArg(cfg, path, args)
	if err != nil {
		return err
	}

	flat, err := sec.ToFlatMap(deep)
	if err != nil {
		return classify(err, path)
	}
	for k, v := range flat.All() {
		// Deep listings already show what a section holds.
		if deep && v.Kind() == value.KindMap && v.Len() > 0 {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, inline(v))
	}
	return nil
}
