// Package pathutil provides path manipulation utilities.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading ~ in path with the user's home directory.
// If the home directory cannot be determined, the path is returned unchanged.
func ExpandHome(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// AncestorChild walks up from dir looking for an ancestor directory whose
// base name equals root. It returns the name of the path element directly
// beneath that ancestor, which identifies the top-level folder the dir
// belongs to. Returns "" if no such ancestor exists.
//
// For example, AncestorChild("/proj/Assets/Tools/Moose/Editor", "Assets")
// returns "Tools".
func AncestorChild(dir, root string) string {
	dir = filepath.Clean(dir)
	child := filepath.Base(dir)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		if filepath.Base(parent) == root {
			return child
		}
		child = filepath.Base(parent)
		dir = parent
	}
}
