package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// ErrInvalidPath is returned when a user-supplied path fails validation.
// Handlers map it to a 400 response.
var ErrInvalidPath = errors.New("invalid archive path")

// allowedPunct is the fixed set of punctuation characters permitted in
// archive paths, beyond letters, digits and spaces. The forward slash
// separates folder segments.
const allowedPunct = "/-_.,()&'!+"

// Resolver validates relative archive paths and resolves them against a
// fixed root. It is safe for concurrent use; Resolve is a pure function.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver anchored at root. The root is made
// absolute once so later prefix checks compare like with like.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive root %q: %w", root, err)
	}
	return &Resolver{root: abs}, nil
}

// Root returns the absolute archive root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve validates raw and returns the absolute path it identifies under
// the archive root. An empty string resolves to the root itself.
//
// Rejected: parent-directory references, absolute-path markers, drive
// colons, backslashes, NUL bytes, and any character outside the allow-list
// (letters in any script, digits, space, and a fixed punctuation set).
func (r *Resolver) Resolve(raw string) (string, error) {
	if raw == "" {
		return r.root, nil
	}

	if strings.Contains(raw, "..") {
		return "", fmt.Errorf("%w: parent reference in %q", ErrInvalidPath, raw)
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "~") {
		return "", fmt.Errorf("%w: absolute path %q", ErrInvalidPath, raw)
	}
	if strings.ContainsAny(raw, ":\\\x00") {
		return "", fmt.Errorf("%w: illegal character in %q", ErrInvalidPath, raw)
	}

	for _, c := range raw {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == ' ' {
			continue
		}
		if strings.ContainsRune(allowedPunct, c) {
			continue
		}
		return "", fmt.Errorf("%w: character %q not allowed in %q", ErrInvalidPath, c, raw)
	}

	joined := filepath.Join(r.root, filepath.FromSlash(raw))

	// Character filtering should already prevent escapes; verify anyway.
	if !isSubPath(r.root, joined) {
		return "", fmt.Errorf("%w: %q escapes archive root", ErrInvalidPath, raw)
	}

	return joined, nil
}

// Relative returns the slash-separated archive path for an absolute path
// under the root, for building URLs and cache keys.
func (r *Resolver) Relative(abs string) (string, error) {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %q not under archive root", ErrInvalidPath, abs)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// isSubPath reports whether child is base itself or lies beneath it.
func isSubPath(base, child string) bool {
	if child == base {
		return true
	}
	return strings.HasPrefix(child, base+string(filepath.Separator))
}
