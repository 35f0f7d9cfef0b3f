package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the tag lookup and navigation settings.
type Config struct {
	// TagFile is the index filename searched for up the directory tree
	// (conventionally "tags" or ".tags").
	TagFile string

	// ExtraTagFiles are additional index filenames merged into the search
	// path next to the primary index and inside project folders.
	ExtraTagFiles []string

	// ExtraTagPaths are absolute index-file paths always added to the
	// search path when a primary index was found.
	ExtraTagPaths []string

	// Command is the index generator invocation (first field is the
	// binary). Default: "ctags".
	Command string

	// Recursive makes the generator scan directories recursively instead
	// of receiving an explicit file list.
	Recursive bool

	// Filters maps tag extension-field names to exclusion regexes.
	// A record is dropped when any filter's field is present and matches.
	Filters map[string]string

	// ModHistoryLimit caps the modification-history stack.
	ModHistoryLimit int

	// ModAreaThreshold is the selection-start distance under which two
	// edits in the same file count as one modification area.
	ModAreaThreshold int

	// CompletionDB is the path of the persisted symbol completion store.
	// Empty disables completion persistence.
	CompletionDB string

	// Debug enables verbose resolution logging.
	Debug bool
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		TagFile:          "tags",
		Command:          "ctags",
		Recursive:        true,
		ModHistoryLimit:  100,
		ModAreaThreshold: 40,
	}
}

// LoadFromEnv loads configuration from environment variables, starting
// from the defaults. Supported variables:
//
//   - TAGNAV_TAG_FILE: index filename (default: tags)
//   - TAGNAV_EXTRA_TAG_FILES: comma-separated extra index filenames
//   - TAGNAV_EXTRA_TAG_PATHS: comma-separated absolute index paths
//   - TAGNAV_COMMAND: generator command (default: ctags)
//   - TAGNAV_RECURSIVE: recursive generator scan (default: true)
//   - TAGNAV_MOD_HISTORY_LIMIT: modification-history cap (default: 100)
//   - TAGNAV_MOD_AREA_THRESHOLD: modification-area distance (default: 40)
//   - TAGNAV_COMPLETION_DB: completion store path
//   - TAGNAV_DEBUG: verbose logging (default: false)
func LoadFromEnv() Config {
	cfg := Default()

	if v := os.Getenv("TAGNAV_TAG_FILE"); v != "" {
		cfg.TagFile = v
	}
	if v := os.Getenv("TAGNAV_EXTRA_TAG_FILES"); v != "" {
		cfg.ExtraTagFiles = splitList(v)
	}
	if v := os.Getenv("TAGNAV_EXTRA_TAG_PATHS"); v != "" {
		cfg.ExtraTagPaths = splitList(v)
	}
	if v := os.Getenv("TAGNAV_COMMAND"); v != "" {
		cfg.Command = v
	}
	if v := os.Getenv("TAGNAV_RECURSIVE"); v != "" {
		cfg.Recursive = parseBool(v, true)
	}
	if v := os.Getenv("TAGNAV_MOD_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ModHistoryLimit = n
		}
	}
	if v := os.Getenv("TAGNAV_MOD_AREA_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ModAreaThreshold = n
		}
	}
	if v := os.Getenv("TAGNAV_COMPLETION_DB"); v != "" {
		cfg.CompletionDB = v
	}
	if v := os.Getenv("TAGNAV_DEBUG"); v != "" {
		cfg.Debug = parseBool(v, false)
	}

	return cfg
}

// Validate checks the configuration for values that would break lookups.
func (c Config) Validate() error {
	if c.TagFile == "" {
		return fmt.Errorf("tag file name must not be empty")
	}
	if strings.ContainsRune(c.TagFile, os.PathSeparator) {
		return fmt.Errorf("tag file name must not contain a path separator: %q", c.TagFile)
	}
	if c.ModHistoryLimit <= 0 {
		return fmt.Errorf("modification history limit must be positive, got %d", c.ModHistoryLimit)
	}
	if c.ModAreaThreshold <= 0 {
		return fmt.Errorf("modification area threshold must be positive, got %d", c.ModAreaThreshold)
	}
	if strings.TrimSpace(c.Command) == "" {
		return fmt.Errorf("generator command must not be empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBool parses a string as boolean with a default value.
func parseBool(s string, defaultVal bool) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "1", "yes", "on", "enabled":
		return true
	case "false", "0", "no", "off", "disabled":
		return false
	default:
		return defaultVal
	}
}
