package commands

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/internal/logging"
	"github.com/thoreinstein/cfgtree/pkg/config"
)

func init() {
	rootCmd.AddCommand(pickCmd)
}

var pickCmd = &cobra.Command{
	Use:   "pick <file>",
	Short: "Choose a path interactively",
	Long: `Browse every path of a configuration file with a fuzzy finder and print
the chosen path. The preview pane shows the value stored at each path.`,
	Example: `  cfgtree get config.yaml "$(cfgtree pick config.yaml)"`,
	Args: cobra.ExactArgs(1),
	RunE: runPick,
}

func runPick(cmd *cobra.Command, args []string) error {
	if !logging.IsTTY(cmd.OutOrStdout()) && !logging.IsTTY(cmd.ErrOrStderr()) {
		return errors.NewUserError(errors.New("pick needs a terminal"), "Use cfgtree keys --deep instead")
	}

	cfg, path, err := openConfig(cmd, args[0])
	if err != nil {
		return err
	}
	keys, err := cfg.Keys(true)
	if err != nil {
		return classify(err, path)
	}
	return pickPath(cmd.OutOrStdout(), cfg, keys)
}

func pickPath(w io.Writer, cfg *config.Config, keys []string) error {
	if len(keys) == 0 {
		fmt.Fprintln(w, "No paths found.")
		return nil
	}

	idx, err := fuzzyfinder.Find(
		keys,
		func(i int) string { return keys[i] },
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return preview(cfg, keys[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive selection failed")
	}

	fmt.Fprintln(w, keys[idx])
	return nil
}

// preview renders the value at path for the finder's preview pane.
func preview(cfg *config.Config, path string) string {
	v, _, err := cfg.Find(path)
	if err != nil {
		return err.Error()
	}
	var buf bytes.Buffer
	if err := writeValue(&buf, v, "yaml"); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%s (%s)\n\n%s", path, v.Kind(), buf.String())
}
