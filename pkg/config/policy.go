package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// ReloadMode decides when the tree and its resource are synchronized.
type ReloadMode int

const (
	// ReloadManual never synchronizes implicitly; call Load and Save.
	ReloadManual ReloadMode = iota

	// ReloadIntelligent reloads before a read only when the resource changed
	// since the last sync, and saves after a Set only when the value changed.
	// Section creation always saves.
	ReloadIntelligent

	// ReloadAutomatic reloads before every read and saves after every write.
	ReloadAutomatic
)

var modeNames = [...]string{
	ReloadManual:      "manual",
	ReloadIntelligent: "intelligent",
	ReloadAutomatic:   "automatic",
}

func (m ReloadMode) valid() bool { return m >= ReloadManual && m <= ReloadAutomatic }

func (m ReloadMode) String() string {
	if !m.valid() {
		return "ReloadMode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ParseReloadMode parses a mode name, case-insensitively.
func ParseReloadMode(s string) (ReloadMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == name {
			return ReloadMode(i), nil
		}
	}
	return ReloadManual, errors.Wrapf(ErrInvalidArgument,
		"reload mode %q (want manual, intelligent or automatic)", s)
}

// beforeRead runs ahead of every read-path operation.
func (c *Config) beforeRead() error {
	switch c.mode {
	case ReloadAutomatic:
		return c.load()
	case ReloadIntelligent:
		if !c.changed() {
			return nil
		}
		return c.load()
	}
	return nil
}

// afterSet runs after a single-value replacement.
func (c *Config) afterSet(old, cur value.Value) error {
	switch c.mode {
	case ReloadAutomatic:
		return c.save()
	case ReloadIntelligent:
		if cur.Equal(old) {
			return nil
		}
		return c.save()
	}
	return nil
}

// afterCreate runs after section creation and other bulk writes.
func (c *Config) afterCreate() error {
	if c.mode == ReloadManual {
		return nil
	}
	return c.save()
}

// changed reports whether the resource's marker moved since the last sync,
// in either direction.
func (c *Config) changed() bool {
	return !c.modTime().Equal(c.stamp)
}

// modTime returns the resource's marker, or the zero time when it cannot be
// read. A resource that vanished therefore counts as changed once, and not
// again until it reappears.
func (c *Config) modTime() time.Time {
	mt, err := c.res.ModTime()
	if err != nil {
		c.log.Debug("reading resource timestamp", "resource", c.res.Name(), "error", err)
		return time.Time{}
	}
	return mt
}

// touch records the resource's current marker. It runs after every sync
// attempt, successful or not, so a failing resource is not retried on the
// very next read.
func (c *Config) touch() {
	c.stamp = c.modTime()
}

func (c *Config) load() error {
	defer c.touch()

	data, err := c.res.Read()
	if err != nil {
		return ioError("load", c.res.Name(), err)
	}
	m, err := c.codec.Decode(data)
	if err != nil {
		return ioError("decode", c.res.Name(), err)
	}
	c.reconcile(rootID, m)
	c.log.Debug("configuration loaded", "resource", c.res.Name(), "codec", c.codec.Name())
	return nil
}

func (c *Config) save() error {
	defer c.touch()

	data, err := c.codec.Encode(c.snapshot(rootID))
	if err != nil {
		return ioError("encode", c.res.Name(), err)
	}
	if err := c.res.Write(data); err != nil {
		return ioError("save", c.res.Name(), err)
	}
	c.log.Debug("configuration saved", "resource", c.res.Name(), "bytes", len(data))
	return nil
}

// Load discards every value in memory and repopulates the tree from the
// resource. Handles to sections that exist in the new contents stay valid;
// handles to sections that disappeared become detached.
func (c *Config) Load() error { return c.load() }

// Save writes the whole tree to the resource.
func (c *Config) Save() error { return c.save() }

// Reload loads the resource if it changed since the last sync.
func (c *Config) Reload() error {
	if !c.changed() {
		return nil
	}
	return c.load()
}
