package config

import (
	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/cfgtree/pkg/value"
)

// Section is a handle to a node of a configuration tree. Paths passed to its
// methods are relative to the section and split on the root's separator.
//
// A handle outlives the section it points to: once the section is removed
// (by Set with nil, by replacement, or by a Load that drops it) the handle is
// detached. Reads through a detached handle see an empty section and writes
// fail with ErrDetached.
type Section struct {
	cfg *Config
	id  int
	gen uint64
}

func (c *Config) handle(id int) *Section {
	return &Section{cfg: c, id: id, gen: c.nodes[id].gen}
}

// Attached reports whether the section is still part of its tree.
func (s *Section) Attached() bool {
	nd := &s.cfg.nodes[s.id]
	return nd.live && nd.gen == s.gen
}

// read applies the read policy and reports whether s is still attached.
func (s *Section) read() (bool, error) {
	if err := s.cfg.beforeRead(); err != nil {
		return false, err
	}
	return s.Attached(), nil
}

func (s *Section) detached(op, path string) error {
	return errors.Wrapf(ErrDetached, "%s %q", op, path)
}

// Name returns the section's key within its parent. The root's name is
// empty, as is the name of a detached section.
func (s *Section) Name() string {
	if !s.Attached() {
		return ""
	}
	return s.cfg.nodes[s.id].name
}

// FullPath returns the path from the root to this section. It is empty for
// the root and for detached sections.
func (s *Section) FullPath() string {
	if !s.Attached() {
		return ""
	}
	return s.cfg.fullPath(s.id)
}

// Parent returns the enclosing section, or nil for the root and for
// detached sections.
func (s *Section) Parent() *Section {
	if s.id == rootID || !s.Attached() {
		return nil
	}
	return s.cfg.handle(s.cfg.nodes[s.id].parent)
}

// Root returns the configuration the section belongs to.
func (s *Section) Root() *Config { return s.cfg }

// Contains reports whether path resolves to a value. The empty path is
// always contained. A scalar in the middle of path makes it not contained.
func (s *Section) Contains(path string) (bool, error) {
	ok, err := s.read()
	if err != nil || !ok {
		return false, err
	}
	if path == "" {
		return true, nil
	}
	_, found, err := s.cfg.find(s.id, path)
	return found && err == nil, nil
}

// Get returns the value at path, or null when nothing is stored there.
// Sections are returned as map snapshots. The empty path yields null.
// Descending through a scalar fails with ErrPathTypeConflict.
func (s *Section) Get(path string) (value.Value, error) {
	v, _, err := s.Find(path)
	return v, err
}

// GetOr returns the value at path, or def when nothing is stored there.
func (s *Section) GetOr(path string, def value.Value) (value.Value, error) {
	v, ok, err := s.Find(path)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// Find is Get that also reports whether a value was found.
func (s *Section) Find(path string) (value.Value, bool, error) {
	ok, err := s.read()
	if err != nil || !ok || path == "" {
		return value.Null(), false, err
	}
	sl, found, err := s.cfg.find(s.id, path)
	if err != nil || !found {
		return value.Null(), false, err
	}
	return s.cfg.valueOf(sl), true, nil
}

// Set stores v at path and returns the value it replaced (null if none).
//
// A nil v, or a null value.Value, removes the entry and its whole subtree.
// Maps (value.Map, map[string]any, ...) and serializable objects become
// sections that replace whatever was at path. Anything else is stored as a
// leaf, creating missing intermediate sections. The whole path is checked
// first: if a scalar sits in the way, Set fails with ErrPathTypeConflict and
// nothing is modified. The empty path is a no-op.
func (s *Section) Set(path string, v any) (value.Value, error) {
	if !s.Attached() {
		return value.Null(), s.detached("set", path)
	}
	if path == "" {
		return value.Null(), nil
	}

	c := s.cfg
	val, err := c.toValue(v)
	if err != nil {
		return value.Null(), errors.Wrapf(err, "set %q", c.abs(s.id, path))
	}
	prev, err := c.setValue(s.id, path, val)
	if err != nil {
		return value.Null(), err
	}

	if val.Kind() == value.KindMap {
		return prev, c.afterCreate()
	}
	return prev, c.afterSet(prev, val)
}

// Remove deletes the entry at path and returns it.
func (s *Section) Remove(path string) (value.Value, error) {
	return s.Set(path, nil)
}

// CreateSection creates an empty section at path, along with any missing
// intermediate sections, and returns it. It fails with ErrPathExists if
// anything is already stored at path. The empty path returns s.
func (s *Section) CreateSection(path string) (*Section, error) {
	if !s.Attached() {
		return nil, s.detached("create section", path)
	}
	if path == "" {
		return s, nil
	}

	c := s.cfg
	id, err := c.createStrict(s.id, path)
	if err != nil {
		return nil, err
	}
	return c.handle(id), c.afterCreate()
}

// CreateSectionWith creates a section at path holding values, replacing
// anything stored there. Each entry is set on the new section, so keys may
// be paths and nested maps become nested sections. values may be a map or a
// serializable object. The empty path applies the entries to s itself.
func (s *Section) CreateSectionWith(path string, values any) (*Section, error) {
	if !s.Attached() {
		return nil, s.detached("create section", path)
	}

	c := s.cfg
	val, err := c.toValue(values)
	if err != nil {
		return nil, errors.Wrapf(err, "create section %q", c.abs(s.id, path))
	}
	m, ok := val.AsMap()
	if !ok && !val.IsNull() {
		return nil, errors.Wrapf(ErrInvalidArgument,
			"create section %q: values are a %s, not a map", c.abs(s.id, path), val.Kind())
	}

	id := s.id
	if path == "" {
		err = c.fill(id, m)
	} else {
		id, err = c.createWith(s.id, path, m)
	}
	if err != nil {
		return nil, err
	}
	return c.handle(id), c.afterCreate()
}

// IsSection reports whether path holds a section.
func (s *Section) IsSection(path string) (bool, error) {
	_, ok, err := s.FindSection(path)
	return ok, err
}

// GetSection returns the section at path, or nil if path is empty, absent or
// holds a scalar.
func (s *Section) GetSection(path string) (*Section, error) {
	sec, _, err := s.FindSection(path)
	return sec, err
}

// FindSection is GetSection that also reports whether a section was found.
func (s *Section) FindSection(path string) (*Section, bool, error) {
	ok, err := s.read()
	if err != nil || !ok || path == "" {
		return nil, false, err
	}
	sl, found, err := s.cfg.find(s.id, path)
	if err != nil || !found || !sl.section() {
		return nil, false, nil
	}
	return s.cfg.handle(sl.child), true, nil
}

// Keys returns the keys of the section. Shallow keys are the local names of
// the immediate entries. Deep keys are the paths, relative to s, of every
// entry reachable by descent, sections included, parents before children.
func (s *Section) Keys(deep bool) ([]string, error) {
	ok, err := s.read()
	if err != nil || !ok {
		return nil, err
	}
	var keys []string
	s.cfg.walk(s.id, "", true, deep, func(p string, _ slot) {
		keys = append(keys, p)
	})
	return keys, nil
}

// ToFlatMap pairs every key Keys(deep) returns with its value. Sections
// appear as map snapshots.
func (s *Section) ToFlatMap(deep bool) (*value.Map, error) {
	ok, err := s.read()
	if err != nil || !ok {
		return value.NewMap(), err
	}
	m := value.NewMap()
	s.cfg.walk(s.id, "", true, deep, func(p string, sl slot) {
		m.Set(p, s.cfg.valueOf(sl))
	})
	return m, nil
}

// ToMap returns a nested snapshot of the section.
func (s *Section) ToMap() (*value.Map, error) {
	ok, err := s.read()
	if err != nil || !ok {
		return value.NewMap(), err
	}
	return s.cfg.snapshot(s.id), nil
}

func (s *Section) String() string {
	switch {
	case !s.Attached():
		return "<detached>"
	case s.id == rootID:
		return "<root>"
	}
	return s.cfg.fullPath(s.id)
}

// toValue converts an argument of Set into a tree value.
func (c *Config) toValue(v any) (value.Value, error) {
	switch x := v.(type) {
	case nil:
		return value.Null(), nil
	case value.Value:
		return x, nil
	case *value.Map:
		return value.MapOf(x), nil
	case *Section:
		m, err := x.ToMap()
		if err != nil {
			return value.Null(), err
		}
		return value.MapOf(m), nil
	}

	if c.reg.IsSerializable(v) {
		m, err := c.reg.Encode(v)
		if err != nil {
			return value.Null(), err
		}
		return value.MapOf(m), nil
	}

	val, err := value.Of(v)
	if err != nil {
		return value.Null(), errors.Mark(err, ErrInvalidArgument)
	}
	return val, nil
}
