package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/cfgtree/internal/backup"
	"github.com/thoreinstein/cfgtree/internal/errors"
	"github.com/thoreinstein/cfgtree/internal/logging"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "Output in JSON format")
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List and restore automatic backups",
	Long: `cfgtree snapshots a file before set, unset, section, convert and edit
change it. The newest snapshots are kept per file, five by default; set
"backups" in the settings file to change the count or to 0 to turn them off.`,
	Args: cobra.NoArgs,
}

var backupListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the backups of a file",
	Example: `  cfgtree backup list config.yaml
  cfgtree backup list @app --json

  See Also:
    cfgtree backup restore - Restore from a backup`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file> [backup-id]",
	Short: "Restore a file from a backup",
	Long: `Restore a file from one of its backups, the most recent by default.

The current contents are backed up first, so a restore can itself be undone.`,
	Example: `  # Undo the last change
  cfgtree backup restore config.yaml

  # Restore a specific backup
  cfgtree backup restore config.yaml 20260123T100712.000

  See Also:
    cfgtree backup list - List available backups`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBackupRestore,
}

// backupInfoOutput represents a single backup in JSON output.
type backupInfoOutput struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
	Version   string    `json:"cfgtree_version"`
}

// backupManager returns the configured manager, failing when backups are off.
func backupManager() (*backup.Manager, error) {
	mgr, err := activeSettings().BackupManager()
	if err != nil {
		return nil, errors.NewUserError(err, "Check backup_dir in the settings file")
	}
	if mgr == nil {
		return nil, errors.NewUserError(errors.New("backups are disabled"), "Set backups to a positive number in the settings file")
	}
	return mgr, nil
}

// snapshot backs up the file at path before a command changes it. It does
// nothing when backups are disabled.
func snapshot(cmd *cobra.Command, path string) error {
	mgr, err := activeSettings().BackupManager()
	if err != nil {
		return errors.NewUserError(err, "Check backup_dir in the settings file")
	}
	if mgr == nil {
		return nil
	}
	if err := mgr.EnsureBackedUp(path); err != nil {
		return errors.NewSystemError(err, "Set backups: 0 in the settings file to skip backups")
	}
	logging.FromContext(cmd.Context()).Debug("backed up configuration", "path", path)
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	path, err := resolveFile(args[0])
	if err != nil {
		return err
	}
	mgr, err := backupManager()
	if err != nil {
		return err
	}

	manifests, err := mgr.List(path)
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.NewSystemError(errors.Wrapf(err, "listing backups for %s", path), "")
	}

	if backupListJSON {
		return outputBackupListJSON(cmd.OutOrStdout(), manifests)
	}
	outputBackupListTabular(cmd.OutOrStdout(), path, manifests)
	return nil
}

func outputBackupListJSON(w io.Writer, manifests []backup.Manifest) error {
	output := make([]backupInfoOutput, len(manifests))
	for i, m := range manifests {
		output[i] = backupInfoOutput{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			Size:      m.Size,
			Version:   m.ToolVersion,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputBackupListTabular(w io.Writer, path string, manifests []backup.Manifest) {
	if len(manifests) == 0 {
		fmt.Fprintf(w, "No backups of %s\n", path)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created automatically before cfgtree changes a file.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSIZE\tVERSION")
	for _, m := range manifests {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			color.GreenString(m.ID),
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			m.Size,
			m.ToolVersion)
	}
	_ = tw.Flush()
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	path, err := resolveFile(args[0])
	if err != nil {
		return err
	}
	mgr, err := backupManager()
	if err != nil {
		return err
	}

	var backupID string
	if len(args) > 1 {
		backupID = args[1]
	} else {
		latest, err := mgr.Latest(path)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				return errors.NewUserError(err, "")
			}
			return errors.NewSystemError(errors.Wrap(err, "listing backups"), "")
		}
		backupID = latest.ID
	}
	if _, err := mgr.Get(path, backupID); err != nil {
		return errors.NewUserError(err, "Run: cfgtree backup list "+args[0])
	}

	if _, err := mgr.Restore(path, backupID); err != nil {
		if errors.Is(err, backup.ErrBackupCorrupted) {
			return errors.NewUserError(err, "Pick another backup with: cfgtree backup list "+args[0])
		}
		return errors.NewSystemError(errors.Wrap(err, "restoring backup"), "")
	}

	success(cmd.OutOrStdout(), "Restored %s from backup %s", path, backupID)
	return nil
}
