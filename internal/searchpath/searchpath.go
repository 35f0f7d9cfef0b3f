// Package searchpath discovers which tag index files apply to a source
// file, walking the directory tree upward and consulting project folders
// and auxiliary path files.
package searchpath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoIndexFound means the search exhausted every candidate location.
// Callers surface it as a status message, never a crash.
var ErrNoIndexFound = errors.New("no tag index found")

// Options configures index discovery.
type Options struct {
	// TagFile is the index filename looked for at each directory level.
	TagFile string

	// ExtraTagFiles are additional index filenames merged in next to the
	// primary index and inside project folders.
	ExtraTagFiles []string

	// ExtraTagPaths are absolute index paths appended whenever a primary
	// index was found.
	ExtraTagPaths []string

	// ProjectFolders are the open project roots, used as a fallback when
	// walking up from the source file finds nothing.
	ProjectFolders []string
}

// FindTagsFileAbove walks from the directory containing sourceFile
// toward the filesystem root and returns the first TagFile that exists
// as a regular file. A sourceFile that is itself a directory starts the
// walk at that directory, so an index sitting next to it is found.
func FindTagsFileAbove(sourceFile, tagFile string) (string, error) {
	if sourceFile == "" {
		return "", ErrNoIndexFound
	}

	dir := filepath.Clean(sourceFile)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, tagFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoIndexFound
		}
		dir = parent
	}
}

// Resolve returns the candidate index files for sourceFile in precedence
// order: the nearest index up the tree, then paths listed in its
// adjacent "<tagfile>_search_paths" file, then configured extra index
// files beside it, then configured absolute extras. When none of those
// yields anything, the tag filenames joined to each project folder are
// tried. The result is deduplicated and existence-checked; ErrNoIndexFound
// is returned when nothing survives.
func Resolve(sourceFile string, opts Options) ([]string, error) {
	var candidates []string

	tagsFile, err := FindTagsFileAbove(sourceFile, opts.TagFile)
	if err == nil {
		candidates = append(candidates, tagsFile)
		candidates = append(candidates, auxSearchPaths(tagsFile)...)
		for _, extra := range opts.ExtraTagFiles {
			candidates = append(candidates, filepath.Join(filepath.Dir(tagsFile), extra))
		}
		candidates = append(candidates, opts.ExtraTagPaths...)
	}

	existing := keepExisting(candidates)
	if len(existing) > 0 {
		return existing, nil
	}

	// Nothing near the file; fall back to the open project folders.
	for _, folder := range opts.ProjectFolders {
		candidates = append(candidates, filepath.Join(folder, opts.TagFile))
		for _, extra := range opts.ExtraTagFiles {
			candidates = append(candidates, filepath.Join(folder, extra))
		}
	}

	existing = keepExisting(candidates)
	if len(existing) == 0 {
		return nil, ErrNoIndexFound
	}
	return existing, nil
}

// auxSearchPaths reads the newline-separated "<tagfile>_search_paths"
// file next to a found index, if present.
func auxSearchPaths(tagsFile string) []string {
	data, err := os.ReadFile(tagsFile + "_search_paths")
	if err != nil {
		return nil
	}

	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

func keepExisting(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, p := range candidates {
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}
