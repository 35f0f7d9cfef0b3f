package tags

import (
	"fmt"
	"strings"
)

// objectPunctuators join a scope name to the symbol when formatting a
// record for a selection list.
var objectPunctuators = map[string]string{
	"class":    ".",
	"struct":   "::",
	"function": "/",
}

// FormatForList renders a record as selection-list rows: a scoped label,
// optionally the filename, then the trimmed locator text.
func FormatForList(rec Record, showPath bool) []string {
	var label strings.Builder
	for _, key := range rec.FieldKeys {
		if !isHierarchyField(key) {
			continue
		}
		punct, ok := objectPunctuators[key]
		if !ok {
			punct = " -> "
		}
		fmt.Fprintf(&label, "    %s%s%s", rec.Fields[key], punct, rec.Symbol)
	}

	first := label.String()
	if first == "" {
		first = rec.Symbol
	}

	rows := []string{first}
	if showPath {
		rows = append(rows, rec.Filename)
	}
	return append(rows, strings.TrimSpace(rec.ExCommand))
}

func isHierarchyField(key string) bool {
	for _, f := range hierarchyFields {
		if f == key {
			return true
		}
	}
	return false
}
