package backup

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of backups kept per file.
const DefaultRetentionCount = 5

// dataFile is the name of the copied file inside a backup directory.
const dataFile = "data"

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist for the file.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates the copied data no longer matches the
	// checksum in the manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrNothingToBackUp indicates the file is missing or empty.
	ErrNothingToBackUp = errors.New("nothing to back up")
)

// Manifest describes one backup. It is stored as manifest.json in each
// backup directory.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the backup was taken.
	CreatedAt time.Time `json:"created_at"`

	// OriginalPath is the absolute path of the backed up file.
	OriginalPath string `json:"original_path"`

	// SHA256Hash is the hex-encoded SHA256 of the copied data.
	SHA256Hash string `json:"sha256_hash"`

	// Size is the length of the copied data in bytes.
	Size int64 `json:"size"`

	// Mode is the file's permission bits.
	Mode fs.FileMode `json:"mode"`

	// ToolVersion is the version of cfgtree that took the backup.
	ToolVersion string `json:"cfgtree_version"`

	// ID is the backup identifier (timestamp format: 20260123T100712.000).
	// It is the directory name and is not stored in JSON.
	ID string `json:"-"`
}
