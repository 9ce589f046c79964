package config

import (
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/thoreinstein/cfgtree/pkg/fileutil"
)

// Resource is the backing store of a Config.
type Resource interface {
	// Name identifies the resource in errors and logs.
	Name() string

	// Ensure creates the resource empty if it does not exist.
	Ensure() error

	// ModTime returns the resource's last modification marker.
	ModTime() (time.Time, error)

	// Read returns the full contents.
	Read() ([]byte, error)

	// Write replaces the full contents.
	Write(data []byte) error
}

// FileResource stores configuration in a file on an afero filesystem.
type FileResource struct {
	fs   afero.Fs
	path string
	perm os.FileMode
}

// NewFileResource returns a resource for path on fs. A nil fs means the
// operating system's filesystem.
func NewFileResource(fs afero.Fs, path string) *FileResource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileResource{fs: fs, path: path, perm: 0o644}
}

func (r *FileResource) Name() string { return r.path }

// Path returns the file path.
func (r *FileResource) Path() string { return r.path }

// Fs returns the filesystem the file lives on.
func (r *FileResource) Fs() afero.Fs { return r.fs }

// Ensure creates the file and any missing parent directories.
func (r *FileResource) Ensure() error {
	_, err := fileutil.EnsureFile(r.fs, r.path, r.perm)
	return err
}

func (r *FileResource) ModTime() (time.Time, error) {
	info, err := r.fs.Stat(r.path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (r *FileResource) Read() ([]byte, error) {
	return fileutil.ReadFileWithLimit(r.fs, r.path)
}

// Write replaces the file atomically, recreating it first if it was removed.
func (r *FileResource) Write(data []byte) error {
	perm := r.perm
	if info, err := r.fs.Stat(r.path); err == nil {
		perm = info.Mode().Perm()
	} else if err := r.Ensure(); err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(r.fs, r.path, data, perm)
}

// MemoryResource keeps configuration in memory. Its modification marker is a
// logical clock that advances on every write, so consecutive writes always
// compare as changes.
type MemoryResource struct {
	mu    sync.Mutex
	name  string
	data  []byte
	clock int64
}

// epoch anchors the logical clock of memory resources.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewMemoryResource returns a memory resource holding data.
func NewMemoryResource(name string, data []byte) *MemoryResource {
	return &MemoryResource{name: name, data: append([]byte(nil), data...)}
}

func (r *MemoryResource) Name() string { return r.name }

func (r *MemoryResource) Ensure() error { return nil }

func (r *MemoryResource) ModTime() (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return epoch.Add(time.Duration(r.clock) * time.Second), nil
}

func (r *MemoryResource) Read() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.data...), nil
}

func (r *MemoryResource) Write(data []byte) error {
	r.Replace(data)
	return nil
}

// Replace swaps the contents and advances the clock, as an edit made outside
// the Config would.
func (r *MemoryResource) Replace(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append([]byte(nil), data...)
	r.clock++
}

// Bytes returns a copy of the current contents.
func (r *MemoryResource) Bytes() []byte {
	data, _ := r.Read()
	return data
}
