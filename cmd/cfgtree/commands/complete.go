package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// completePath completes the file argument with file names and the path
// argument with the paths stored in that file.
func completePath(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	if current == nil {
		if err := loadSettings(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}
	cfg, _, err := openConfig(cmd, args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	keys, err := cfg.Keys(true)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, toComplete) {
			out = append(out, k)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
