package keypath

import (
	"slices"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		sep      rune
		wantHead string
		wantRest string
		wantMore bool
	}{
		{"single segment", "port", '.', "port", "", false},
		{"two segments", "server.port", '.', "server", "port", true},
		{"deep path keeps remainder", "a.b.c", '.', "a", "b.c", true},
		{"empty middle segment", "a..b", '.', "a", ".b", true},
		{"leading separator", ".a", '.', "", "a", true},
		{"trailing separator", "a.", '.', "a", "", true},
		{"custom separator", "a/b.c", '/', "a", "b.c", true},
		{"multibyte separator", "a→b", '→', "a", "b", true},
		{"no trimming", " a . b ", '.', " a ", " b ", true},
		{"empty path", "", '.', "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, rest, more := Split(tt.path, tt.sep)
			if head != tt.wantHead || rest != tt.wantRest || more != tt.wantMore {
				t.Errorf("Split(%q, %q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.path, tt.sep, head, rest, more, tt.wantHead, tt.wantRest, tt.wantMore)
			}
		})
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a..b", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		if got := Segments(tt.path, '.'); !slices.Equal(got, tt.want) {
			t.Errorf("Segments(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join('.', "", "a"); got != "a" {
		t.Errorf("Join with empty prefix = %q, want %q", got, "a")
	}
	if got := Join('.', "a.b", "c"); got != "a.b.c" {
		t.Errorf("Join = %q, want %q", got, "a.b.c")
	}
	if got := Join(':', "a", ""); got != "a:" {
		t.Errorf("Join with empty name = %q, want %q", got, "a:")
	}
}
