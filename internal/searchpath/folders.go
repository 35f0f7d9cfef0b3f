package searchpath

import (
	"path/filepath"
	"strings"
)

// FindTopFolder returns the outermost directory that still encloses
// filename without escaping the open project folders. With no folders
// open it is simply the file's directory. The result keys per-project
// cache entries.
func FindTopFolder(folders []string, filename string) string {
	path := filepath.Dir(filename)
	if len(folders) == 0 {
		return path
	}

	old := ""
	for !reachedTopLevel(folders, old, path) {
		old = path
		path = filepath.Dir(path)
	}
	return path
}

func reachedTopLevel(folders []string, oldPath, path string) bool {
	if oldPath == path {
		return true
	}
	for _, folder := range folders {
		if strings.HasPrefix(folder, path) {
			return true
		}
		if path == filepath.Dir(folder) {
			return true
		}
	}
	return false
}

// FilesToSearch returns the index-relative names to query for a
// "symbols in current file" lookup. A multi-file lookup searches the
// whole index, so it needs no names.
func FilesToSearch(fileName, tagsFile string, multiple bool) []string {
	if multiple {
		return nil
	}

	tagDir := filepath.Clean(filepath.Dir(tagsFile))
	prefix := CommonFolder([]string{tagDir, fileName})
	if prefix == "" || len(fileName) <= len(prefix) {
		return []string{fileName}
	}
	return []string{fileName[len(prefix)+1:]}
}

// CommonFolder returns the longest directory prefix shared by all paths.
func CommonFolder(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	lo, hi := paths[0], paths[0]
	for _, p := range paths[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}

	sep := string(filepath.Separator)
	loParts := strings.Split(lo, sep)
	hiParts := strings.Split(hi, sep)
	for i, part := range loParts {
		if i >= len(hiParts) || part != hiParts[i] {
			return strings.Join(loParts[:i], sep)
		}
	}
	return lo
}
