package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// BuildVault creates a vault under a fresh temp directory and returns its
// root. Entries ending in "/" become directories, everything else an empty
// file; parents are created as needed.
func BuildVault(t *testing.T, entries ...string) string {
	t.Helper()
	root := t.TempDir()
	AddEntries(t, root, entries...)
	return root
}

// AddEntries creates entries below root using the BuildVault notation.
func AddEntries(t *testing.T, root string, entries ...string) {
	t.Helper()
	for _, e := range entries {
		path := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(e, "/")))
		if strings.HasSuffix(e, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
