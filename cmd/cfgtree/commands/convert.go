package commands

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/internal/translate"
	"github.com/thoreinstein/cfgtree/pkg/codec"
)

var (
	convertFrom string
	convertTo   string
)

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "input format (default: from the extension)")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "output format (default: from the extension)")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a configuration file to another format",
	Long: `Convert a configuration file between JSON, YAML and TOML.

Key order is kept, except that keys read from TOML come out sorted. The
output file is replaced atomically.`,
	Example: `  cfgtree convert config.json config.yaml
  cfgtree convert settings.conf settings.toml --from yaml

See Also: cfgtree get`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	from, err := codecFlag(convertFrom)
	if err != nil {
		return err
	}
	to, err := codecFlag(convertTo)
	if err != nil {
		return err
	}

	src, err := resolveFile(args[0])
	if err != nil {
		return err
	}
	dst, err := resolveFile(args[1])
	if err != nil {
		return err
	}

	if err := snapshot(cmd, dst); err != nil {
		return err
	}

	err = translate.ConvertFile(afero.NewOsFs(), src, dst, from, to)
	switch {
	case err == nil:
	case errors.Is(err, codec.ErrUnknownFormat):
		return errors.NewUserError(err, "Use --from and --to to name the formats")
	case errors.Is(err, os.ErrNotExist):
		return errors.NewUserError(err, "")
	default:
		return errors.NewConfigError(err, src)
	}

	success(cmd.OutOrStdout(), "Converted %s to %s", src, dst)
	return nil
}

// codecFlag returns the codec a format flag names, or nil when it is empty.
func codecFlag(name string) (codec.Codec, error) {
	if name == "" || name == "auto" {
		return nil, nil
	}
	c, err := codec.ByName(name)
	if err != nil {
		return nil, errors.NewUserError(err, "Use json, yaml or toml")
	}
	return c, nil
}
