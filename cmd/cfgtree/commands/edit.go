package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/editor"
	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/internal/logging"
	"github.com/thoreinstein/cfgtree/pkg/config"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Open a configuration file in your editor",
	Long: `Open a configuration file in your editor, creating it first if needed.

The editor is taken from the "editor" setting, then $EDITOR, then $VISUAL.
After the editor exits the file is parsed again to make sure it is still
valid.`,
	Example: `  cfgtree edit config.yaml
  EDITOR="code --wait" cfgtree edit @app`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	path, err := resolveFile(args[0])
	if err != nil {
		return err
	}
	if err := config.NewFileResource(nil, path).Ensure(); err != nil {
		return classify(err, path)
	}
	if err := snapshot(cmd, path); err != nil {
		return err
	}

	ed := editor.New(activeSettings().Editor)
	ed.Stdin = cmd.InOrStdin()
	ed.Stdout = cmd.OutOrStdout()
	ed.Stderr = cmd.ErrOrStderr()

	logging.FromContext(cmd.Context()).Debug("launching editor", "path", path, "command", ed.Command)
	if err := ed.Edit(cmd.Context(), path); err != nil {
		return errors.NewSystemError(err, "Set the editor with $EDITOR or the \"editor\" setting")
	}

	if _, _, err := openConfig(cmd, args[0]); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "%s is valid", path)
	return nil
}
