// Package config resolves taxon's settings from viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in a file path.
// The special database name ":memory:" is returned unchanged.
func ExpandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/') {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}

	return os.ExpandEnv(path)
}

// expandAll rewrites each path in place.
func expandAll(paths ...*string) {
	for _, p := range paths {
		*p = ExpandPath(*p)
	}
}
