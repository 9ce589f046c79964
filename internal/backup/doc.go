// Package backup keeps snapshots of configuration files so that changes made
// through the CLI can be undone.
//
// Each file gets its own directory under the backup root, named after a hash
// of the file's absolute path. Every snapshot is a timestamped directory
// holding a copy of the file and a manifest:
//
//	<StateDir>/backups/
//	└── {path hash}/
//	    └── {timestamp}/
//	        ├── manifest.json
//	        └── data
//
// # Creating Backups
//
// Use [Manager.Backup] to snapshot a file before changing it. Files that do
// not exist yet, or are empty, have nothing to preserve and are skipped:
//
//	mgr := backup.NewManager()
//	manifest, err := mgr.Backup("/etc/app/config.yaml")
//
// [Manager.EnsureBackedUp] does the same at most once per file for the life
// of the Manager, which suits commands that write a file several times.
//
// # Restoring Backups
//
// [Manager.Restore] writes a snapshot back atomically with its original
// permissions after checking its SHA256 checksum. A snapshot whose data does
// not match the manifest fails with [ErrBackupCorrupted]. The contents being
// replaced are backed up first, so a restore can be undone the same way.
//
// # Retention
//
// Every new snapshot prunes the oldest ones beyond the retention count
// (default 5 per file). [Manager.Prune] can also be called directly.
package backup
