package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Anything with an Fd method, such as
// *os.File, is checked; other writers never are.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether cfgtree should colour output written to w.
// NO_COLOR (https://no-color.org) and TERM=dumb turn colour off.
// CFGTREE_COLOR=always turns it on even when w is not a terminal, for pagers
// such as less -R.
func SupportsColor(w io.Writer) bool {
	return supportsColor(os.LookupEnv, IsTTY(w))
}

func supportsColor(lookup func(string) (string, bool), isTTY bool) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if v, _ := lookup("TERM"); v == "dumb" {
		return false
	}
	if v, _ := lookup("CFGTREE_COLOR"); v == "always" {
		return true
	}
	return isTTY
}
