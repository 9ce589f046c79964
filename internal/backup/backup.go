package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/thoreinstein/cfgtree/internal/paths"
	"github.com/thoreinstein/cfgtree/pkg/fileutil"
)

// Version is recorded in every manifest. The CLI sets it from its build info.
var Version = "dev"

// idFormat names backup directories. It sorts chronologically as text.
const idFormat = "20060102T150405.000"

// Manager handles backup creation, restoration and pruning.
type Manager struct {
	fs             afero.Fs
	rootDir        string
	retentionCount int
	now            func() time.Time

	mu   sync.Mutex
	done map[string]bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithRetentionCount sets the number of backups to retain per file.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// WithFs sets the filesystem holding both the backed up files and the
// backups. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) {
		if fs != nil {
			m.fs = fs
		}
	}
}

// WithClock replaces time.Now for naming backups.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// DefaultDir returns the default backup root: <StateDir>/backups.
func DefaultDir() string {
	return filepath.Join(paths.StateDir(), "backups")
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		fs:             afero.NewOsFs(),
		rootDir:        DefaultDir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
		done:           make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backup copies the file at path into a new backup and prunes old ones.
// Missing and empty files return ErrNothingToBackUp.
func (m *Manager) Backup(path string) (*Manifest, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}

	info, err := m.fs.Stat(abs)
	switch {
	case os.IsNotExist(err):
		return nil, errors.Wrapf(ErrNothingToBackUp, "%s does not exist", path)
	case err != nil:
		return nil, errors.Wrapf(err, "stat %s", path)
	case info.IsDir():
		return nil, errors.Newf("%s is a directory", path)
	case info.Size() == 0:
		return nil, errors.Wrapf(ErrNothingToBackUp, "%s is empty", path)
	}

	data, err := fileutil.ReadFileWithLimit(m.fs, abs)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	created := m.now().UTC()
	id, dir, err := m.reserve(abs, created)
	if err != nil {
		return nil, err
	}

	if err := fileutil.AtomicWriteFile(m.fs, filepath.Join(dir, dataFile), data, 0o600); err != nil {
		_ = m.fs.RemoveAll(dir)
		return nil, errors.Wrap(err, "copying file")
	}

	manifest := &Manifest{
		Version:      ManifestVersion,
		CreatedAt:    created,
		OriginalPath: abs,
		SHA256Hash:   checksum(data),
		Size:         int64(len(data)),
		Mode:         info.Mode().Perm(),
		ToolVersion:  Version,
		ID:           id,
	}
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		_ = m.fs.RemoveAll(dir)
		return nil, errors.Wrap(err, "encoding manifest")
	}
	if err := fileutil.AtomicWriteFile(m.fs, filepath.Join(dir, "manifest.json"), raw, 0o600); err != nil {
		_ = m.fs.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(abs, m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// reserve creates the directory for a new backup. Backups taken within the
// same millisecond get a numeric suffix.
func (m *Manager) reserve(abs string, created time.Time) (string, string, error) {
	base := created.Format(idFormat)
	fileDir := m.fileDir(abs)
	if err := m.fs.MkdirAll(fileDir, paths.DefaultDirPerm); err != nil {
		return "", "", errors.Wrap(err, "creating backup directory")
	}

	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id += "-" + strconv.Itoa(i)
		}
		dir := filepath.Join(fileDir, id)
		if _, err := m.fs.Stat(dir); err == nil {
			continue
		}
		if err := m.fs.Mkdir(dir, paths.DefaultDirPerm); err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", "", errors.Wrap(err, "creating backup directory")
		}
		return id, dir, nil
	}
}

// EnsureBackedUp backs up path unless this Manager already did. A file with
// nothing to preserve counts as backed up. A failed backup is retried on the
// next call.
func (m *Manager) EnsureBackedUp(path string) error {
	abs, err := absPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done[abs] {
		return nil
	}

	if _, err := m.Backup(abs); err != nil && !errors.Is(err, ErrNothingToBackUp) {
		return errors.Wrapf(err, "creating backup of %s", path)
	}
	m.done[abs] = true
	return nil
}

// Restore writes the backup with the given ID back to path. The data is
// verified against its checksum first, and the current contents of path are
// backed up before they are replaced.
func (m *Manager) Restore(path, backupID string) (*Manifest, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}
	manifest, err := m.Get(abs, backupID)
	if err != nil {
		return nil, err
	}

	data, err := fileutil.ReadFileWithLimit(m.fs, filepath.Join(m.fileDir(abs), manifest.ID, dataFile))
	if err != nil {
		return nil, errors.Wrapf(err, "reading backup %s", manifest.ID)
	}
	if checksum(data) != manifest.SHA256Hash {
		return nil, errors.Wrapf(ErrBackupCorrupted, "backup %s hash mismatch", manifest.ID)
	}

	if _, err := m.Backup(abs); err != nil && !errors.Is(err, ErrNothingToBackUp) {
		return nil, errors.Wrapf(err, "backing up %s before restore", abs)
	}

	if err := m.fs.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating directory for %s", abs)
	}
	if err := fileutil.AtomicWriteFile(m.fs, abs, data, manifest.Mode); err != nil {
		return nil, errors.Wrapf(err, "restoring %s", abs)
	}
	return manifest, nil
}

// List returns the backups of path, newest first.
func (m *Manager) List(path string) ([]Manifest, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(m.fs, m.fileDir(abs))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "for %s", path)
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(abs, entry.Name())
		if err != nil {
			// Skip incomplete backup directories
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, errors.Wrapf(ErrNoBackupsFound, "for %s", path)
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})
	return manifests, nil
}

// Latest returns the newest backup of path.
func (m *Manager) Latest(path string) (*Manifest, error) {
	manifests, err := m.List(path)
	if err != nil {
		return nil, err
	}
	return &manifests[0], nil
}

// Prune removes the backups of path beyond the newest keep.
func (m *Manager) Prune(path string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(path)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	abs, err := absPath(path)
	if err != nil {
		return err
	}
	for i := keep; i < len(manifests); i++ {
		dir := filepath.Join(m.fileDir(abs), manifests[i].ID)
		if err := m.fs.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}
	return nil
}

// Get returns the manifest of one backup of path.
func (m *Manager) Get(path, backupID string) (*Manifest, error) {
	if backupID == "" || filepath.Base(backupID) != backupID {
		return nil, errors.Newf("invalid backup ID %q", backupID)
	}
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}

	raw, err := afero.ReadFile(m.fs, filepath.Join(m.fileDir(abs), backupID, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", backupID)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = backupID
	return &manifest, nil
}

// fileDir returns the directory holding the backups of the file at abs.
func (m *Manager) fileDir(abs string) string {
	return filepath.Join(m.rootDir, checksum([]byte(abs))[:16])
}

func absPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", path)
	}
	return abs, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// compareIDs orders IDs that share a timestamp by their numeric suffix.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
