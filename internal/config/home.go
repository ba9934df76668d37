package config

import (
	"os"
	"path/filepath"
	"strings"
)

// expandHome replaces a leading "~" with the user's home directory. Paths
// not starting with "~" are returned unchanged.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
