// Package keypath splits and joins the separator-delimited paths used to
// address values in a configuration tree.
//
// Resolution is purely syntactic. There is no escaping, trimming or
// normalisation: "a..b" has an empty middle segment, which is a legal key.
package keypath

import "strings"

// DefaultSeparator is the separator used when none is configured.
const DefaultSeparator = '.'

// Split splits path at the first occurrence of sep. When sep does not occur,
// head is the whole path, rest is empty and more is false: path is the final
// segment.
func Split(path string, sep rune) (head, rest string, more bool) {
	i := strings.IndexRune(path, sep)
	if i < 0 {
		return path, "", false
	}
	return path[:i], path[i+len(string(sep)):], true
}

// Segments returns every segment of path. The empty path has no segments.
func Segments(path string, sep rune) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, string(sep))
}

// Join appends name to prefix, inserting sep unless prefix is empty.
func Join(sep rune, prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + string(sep) + name
}
