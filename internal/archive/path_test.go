package archive

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	resolver, err := NewResolver(root)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	return resolver, resolver.Root()
}

func TestResolveAcceptsValidPaths(t *testing.T) {
	resolver, root := newTestResolver(t)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty resolves to root", "", root},
		{"simple folder", "Archive", filepath.Join(root, "Archive")},
		{"nested folder", "Archive/2003", filepath.Join(root, "Archive", "2003")},
		{"folder with space", "Archive/Sub Folder", filepath.Join(root, "Archive", "Sub Folder")},
		{"cyrillic folder", "Архив/2001", filepath.Join(root, "Архив", "2001")},
		{"punctuation", "News (morning), 2004", filepath.Join(root, "News (morning), 2004")},
		{"page file", "Archive/101.html", filepath.Join(root, "Archive", "101.html")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.raw)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveRejectsInvalidPaths(t *testing.T) {
	resolver, _ := newTestResolver(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"parent traversal", "../../etc"},
		{"embedded traversal", "Archive/../../etc"},
		{"absolute path", "/etc/passwd"},
		{"home expansion", "~root"},
		{"backslash", `Archive\2003`},
		{"drive colon", "C:/archive"},
		{"nul byte", "Archive\x00/2003"},
		{"angle brackets", "Archive/<script>"},
		{"percent encoding chars", "Archive/%2e%2e"},
		{"question mark", "what?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(tt.raw)
			if err == nil {
				t.Fatalf("Resolve(%q) succeeded, want rejection", tt.raw)
			}
			if !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Resolve(%q) error = %v, want ErrInvalidPath", tt.raw, err)
			}
		})
	}
}

func TestRelative(t *testing.T) {
	resolver, root := newTestResolver(t)

	tests := []struct {
		name    string
		abs     string
		want    string
		wantErr bool
	}{
		{"root", root, "", false},
		{"nested", filepath.Join(root, "Archive", "2003"), "Archive/2003", false},
		{"outside root", filepath.Dir(root), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Relative(tt.abs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Relative(%q) succeeded, want error", tt.abs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Relative(%q) failed: %v", tt.abs, err)
			}
			if got != tt.want {
				t.Errorf("Relative(%q) = %q, want %q", tt.abs, got, tt.want)
			}
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	resolver, _ := newTestResolver(t)

	first, err := resolver.Resolve("Archive/2003")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := resolver.Resolve("Archive/2003")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if first != second {
		t.Errorf("Resolve not deterministic: %q vs %q", first, second)
	}
}
