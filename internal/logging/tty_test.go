package logging

import (
	"bytes"
	"testing"
)

func TestSupportsColor(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		isTTY bool
		want  bool
	}{
		{"terminal", nil, true, true},
		{"pipe", nil, false, false},
		{"NO_COLOR wins over terminal", map[string]string{"NO_COLOR": ""}, true, false},
		{"NO_COLOR wins over CFGTREE_COLOR", map[string]string{"NO_COLOR": "1", "CFGTREE_COLOR": "always"}, false, false},
		{"TERM=dumb", map[string]string{"TERM": "dumb"}, true, false},
		{"TERM=xterm", map[string]string{"TERM": "xterm-256color"}, true, true},
		{"CFGTREE_COLOR=always on a pipe", map[string]string{"CFGTREE_COLOR": "always"}, false, true},
		{"CFGTREE_COLOR=auto on a pipe", map[string]string{"CFGTREE_COLOR": "auto"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			}
			if got := supportsColor(lookup, tt.isTTY); got != tt.want {
				t.Errorf("supportsColor() = %v, want %v (env=%v, isTTY=%v)", got, tt.want, tt.env, tt.isTTY)
			}
		})
	}
}

func TestIsTTY_NonFile(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("a buffer is never a terminal")
	}
}
