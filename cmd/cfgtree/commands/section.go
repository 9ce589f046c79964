package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sectionCmd)
}

var sectionCmd = &cobra.Command{
	Use:   "section <file> <path>",
	Short: "Create an empty section",
	Long: `Create an empty section at a path along with any missing parents.

Fails if anything, section or value, is already stored at the path.`,
	Example: `  cfgtree section config.yaml database.replicas`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completePath,
	RunE:              runSection,
}

func runSection(cmd *cobra.Command, args []string) error {
	cfg, path, err := openConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if err := snapshot(cmd, path); err != nil {
		return err
	}

	sec, err := cfg.CreateSection(args[1])
	if err != nil {
		return classify(err, path)
	}
	if err := persist(cfg, path); err != nil {
		return err
	}

	success(cmd.OutOrStdout(), "Created section %s", sec.FullPath())
	return nil
}
