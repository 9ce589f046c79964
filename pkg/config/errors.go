package config

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors returned by section and configuration operations. Match
// them with errors.Is; the returned errors carry the offending path.
var (
	// ErrInvalidArgument indicates a value that cannot be stored or a
	// required argument that is missing.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPathTypeConflict indicates a path descends through a value that is
	// not a section.
	ErrPathTypeConflict = errors.New("path type conflict")

	// ErrPathExists indicates a strict CreateSection on an occupied path.
	ErrPathExists = errors.New("path already exists")

	// ErrDetached indicates a write through a section handle whose section
	// has been removed from the tree.
	ErrDetached = errors.New("section is detached")

	// ErrIO indicates the backing resource could not be read or written.
	// Errors matching it are *ResourceError values.
	ErrIO = errors.New("configuration i/o failed")
)

// ResourceError reports a failed synchronization with the backing resource.
type ResourceError struct {
	Op       string // "ensure", "stat", "load", "decode", "encode" or "save"
	Resource string
	Err      error
}

// Error names the resource unless the cause already does, as os and afero
// path errors do.
func (e *ResourceError) Error() string {
	msg := e.Err.Error()
	if e.Resource != "" && strings.Contains(msg, e.Resource) {
		return e.Op + ": " + msg
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Is makes every ResourceError match ErrIO.
func (e *ResourceError) Is(target error) bool { return target == ErrIO }

func ioError(op, resource string, err error) error {
	return &ResourceError{Op: op, Resource: resource, Err: err}
}
