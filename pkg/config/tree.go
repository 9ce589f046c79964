package config

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/cfgtree/pkg/keypath"
	"github.com/thoreinstein/cfgtree/pkg/value"
)

const (
	rootID  = 0
	noChild = -1
)

// slot is one entry of a section: a child section or a leaf value.
type slot struct {
	child int
	leaf  value.Value
}

func (s slot) section() bool { return s.child != noChild }

// node is a section in the arena. Released nodes keep their index and bump
// gen so that outstanding handles detect the removal.
type node struct {
	name   string
	parent int
	gen    uint64
	live   bool
	keys   []string
	slots  map[string]slot
}

func (c *Config) alloc(name string, parent int) int {
	if n := len(c.free); n > 0 {
		id := c.free[n-1]
		c.free = c.free[:n-1]
		nd := &c.nodes[id]
		nd.name, nd.parent, nd.live = name, parent, true
		nd.keys, nd.slots = nil, make(map[string]slot)
		return id
	}
	c.nodes = append(c.nodes, node{
		name:   name,
		parent: parent,
		live:   true,
		slots:  make(map[string]slot),
	})
	return len(c.nodes) - 1
}

// release frees id and its whole subtree.
func (c *Config) release(id int) {
	for _, s := range c.nodes[id].slots {
		if s.section() {
			c.release(s.child)
		}
	}
	nd := &c.nodes[id]
	nd.live = false
	nd.gen++
	nd.keys, nd.slots = nil, nil
	c.free = append(c.free, id)
}

// put stores s under key in id. An existing key keeps its position; a child
// section it held is released.
func (c *Config) put(id int, key string, s slot) {
	nd := &c.nodes[id]
	if old, ok := nd.slots[key]; ok {
		nd.slots[key] = s
		if old.section() && old.child != s.child {
			c.release(old.child)
		}
		return
	}
	nd.keys = append(nd.keys, key)
	nd.slots[key] = s
}

// remove deletes key from id and releases the child section it held.
func (c *Config) remove(id int, key string) {
	nd := &c.nodes[id]
	old, ok := nd.slots[key]
	if !ok {
		return
	}
	delete(nd.slots, key)
	if i := slices.Index(nd.keys, key); i >= 0 {
		nd.keys = slices.Delete(nd.keys, i, i+1)
	}
	if old.section() {
		c.release(old.child)
	}
}

func (c *Config) fullPath(id int) string {
	if id == rootID {
		return ""
	}
	var names []string
	for id != rootID {
		names = append(names, c.nodes[id].name)
		id = c.nodes[id].parent
	}
	slices.Reverse(names)
	return strings.Join(names, string(c.sep))
}

// abs renders path relative to id as a path from the root.
func (c *Config) abs(id int, path string) string {
	return keypath.Join(c.sep, c.fullPath(id), path)
}

// valueOf returns the value held by s; sections become map snapshots.
func (c *Config) valueOf(s slot) value.Value {
	if s.section() {
		return value.MapOf(c.snapshot(s.child))
	}
	return s.leaf
}

func (c *Config) snapshot(id int) *value.Map {
	nd := &c.nodes[id]
	m := value.NewMap()
	for _, k := range nd.keys {
		m.Set(k, c.valueOf(nd.slots[k]))
	}
	return m
}

// descend follows every segment of path but the last, starting at id. It
// returns the node holding the last segment, or noChild when an intermediate
// section is missing. A leaf in the way is a path type conflict.
func (c *Config) descend(id int, path string) (int, string, error) {
	start, rest := id, path
	for {
		head, tail, more := keypath.Split(rest, c.sep)
		if !more {
			return id, head, nil
		}
		s, ok := c.nodes[id].slots[head]
		if !ok {
			return noChild, head, nil
		}
		if !s.section() {
			at := path[:len(path)-len(tail)-utf8.RuneLen(c.sep)]
			return noChild, head, errors.Wrapf(ErrPathTypeConflict,
				"%q holds a %s, not a section", c.abs(start, at), s.leaf.Kind())
		}
		id, rest = s.child, tail
	}
}

// find resolves path below id.
func (c *Config) find(id int, path string) (slot, bool, error) {
	parent, key, err := c.descend(id, path)
	if err != nil || parent == noChild {
		return slot{}, false, err
	}
	s, ok := c.nodes[parent].slots[key]
	return s, ok, nil
}

// reserve returns the node that holds the last segment of path, creating
// missing intermediate sections. The whole path is checked before anything
// is created, so a conflict leaves the tree untouched.
func (c *Config) reserve(id int, path string) (int, string, error) {
	parent, key, err := c.descend(id, path)
	if err != nil {
		return noChild, "", err
	}
	if parent != noChild {
		return parent, key, nil
	}

	rest := path
	for {
		head, tail, more := keypath.Split(rest, c.sep)
		if !more {
			return id, head, nil
		}
		s, ok := c.nodes[id].slots[head]
		if !ok {
			s = slot{child: c.alloc(head, id)}
			c.put(id, head, s)
		}
		id, rest = s.child, tail
	}
}

// setValue stores v at path below id and returns the previous value. Maps
// become sections and null removes the entry.
func (c *Config) setValue(id int, path string, v value.Value) (value.Value, error) {
	switch v.Kind() {
	case value.KindNull:
		parent, key, err := c.descend(id, path)
		if err != nil || parent == noChild {
			return value.Null(), err
		}
		s, ok := c.nodes[parent].slots[key]
		if !ok {
			return value.Null(), nil
		}
		prev := c.valueOf(s)
		c.remove(parent, key)
		return prev, nil

	case value.KindMap:
		prev, err := c.previous(id, path)
		if err != nil {
			return value.Null(), err
		}
		m, _ := v.AsMap()
		if _, err := c.createWith(id, path, m); err != nil {
			return value.Null(), err
		}
		return prev, nil
	}

	parent, key, err := c.reserve(id, path)
	if err != nil {
		return value.Null(), err
	}
	prev := value.Null()
	if s, ok := c.nodes[parent].slots[key]; ok {
		prev = c.valueOf(s)
	}
	c.put(parent, key, slot{child: noChild, leaf: v})
	return prev, nil
}

func (c *Config) previous(id int, path string) (value.Value, error) {
	s, ok, err := c.find(id, path)
	if err != nil || !ok {
		return value.Null(), err
	}
	return c.valueOf(s), nil
}

// createWith replaces whatever is at path with a new section holding the
// entries of m.
func (c *Config) createWith(id int, path string, m *value.Map) (int, error) {
	parent, key, err := c.reserve(id, path)
	if err != nil {
		return noChild, err
	}
	target := c.alloc(key, parent)
	c.put(parent, key, slot{child: target})
	return target, c.fill(target, m)
}

// fill sets every entry of m on id. Keys are paths relative to id.
func (c *Config) fill(id int, m *value.Map) error {
	for k, v := range m.All() {
		if _, err := c.setValue(id, k, v); err != nil {
			return err
		}
	}
	return nil
}

// createStrict creates a new empty section at path. Anything already at path
// is a conflict.
func (c *Config) createStrict(id int, path string) (int, error) {
	parent, key, err := c.descend(id, path)
	if err != nil {
		return noChild, err
	}
	if parent != noChild {
		if _, ok := c.nodes[parent].slots[key]; ok {
			return noChild, errors.Wrapf(ErrPathExists, "%q", c.abs(id, path))
		}
	}

	parent, key, err = c.reserve(id, path)
	if err != nil {
		return noChild, err
	}
	child := c.alloc(key, parent)
	c.put(parent, key, slot{child: child})
	return child, nil
}

// walk visits every entry below id, parents before children, children in
// insertion order. Paths are relative to the section the walk started on;
// top is set for that first level only.
func (c *Config) walk(id int, prefix string, top, deep bool, fn func(path string, s slot)) {
	nd := &c.nodes[id]
	for _, k := range nd.keys {
		s := nd.slots[k]
		p := k
		if !top {
			p = prefix + string(c.sep) + k
		}
		fn(p, s)
		if deep && s.section() {
			c.walk(s.child, p, false, deep, fn)
		}
	}
}

// reconcile replaces the contents of id with m. Sections whose key maps to a
// map again keep their node, so live handles to them stay valid.
func (c *Config) reconcile(id int, m *value.Map) {
	old := c.nodes[id].slots
	c.nodes[id].keys = make([]string, 0, m.Len())
	c.nodes[id].slots = make(map[string]slot, m.Len())

	for k, v := range m.All() {
		if v.IsNull() {
			continue
		}
		sub, ok := v.AsMap()
		if !ok {
			c.put(id, k, slot{child: noChild, leaf: v})
			continue
		}
		child := noChild
		if prev, found := old[k]; found && prev.section() {
			child = prev.child
			delete(old, k)
		} else {
			child = c.alloc(k, id)
		}
		c.put(id, k, slot{child: child})
		c.reconcile(child, sub)
	}

	for _, s := range old {
		if s.section() {
			c.release(s.child)
		}
	}
}
