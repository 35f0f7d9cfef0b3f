package tags

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRecord marks a tag line that does not parse. Callers skip
// the line and keep going; a corrupt line never aborts an index load.
var ErrMalformedRecord = errors.New("malformed tag record")

// hierarchyFields is the fixed priority order of extension fields that
// contribute enclosing scopes to a record's tag path.
var hierarchyFields = []string{"class", "struct", "function"}

// LocatorKind discriminates the two forms an ex_command can take.
type LocatorKind int

const (
	// LocatorLine is a 1-based line number.
	LocatorLine LocatorKind = iota
	// LocatorPattern is a text pattern searched forward in the buffer.
	LocatorPattern
)

// Locator is the parsed form of an ex_command, decided once at parse
// time. A digit-only ex_command becomes a line locator; anything else is
// a search pattern. Patterns wrapped in /…/ or ?…? have their delimiters
// and ^…$ anchors stripped; both delimiters search forward, since
// resolution always scans forward from a computed start offset.
type Locator struct {
	Kind    LocatorKind
	Line    int    // valid when Kind == LocatorLine
	Pattern string // valid when Kind == LocatorPattern
	Literal bool   // pattern carried no regex delimiters
}

// Record is one parsed line of a tag index file.
type Record struct {
	Symbol    string
	Filename  string // relative to RootDir
	ExCommand string // raw locator text as it appeared in the index
	Locator   Locator

	// FieldKeys preserves extension-field names in file order, for
	// deterministic display formatting.
	FieldKeys []string
	Fields    map[string]string

	// TagPath is the breadcrumb of enclosing scopes: a synthetic outer
	// entry, the hierarchy field values in priority order, then the
	// symbol itself.
	TagPath []string

	// RootDir is the directory of the index file this record came from,
	// set after parsing so Filename can be resolved.
	RootDir string
}

// ParseLine parses one tab-separated index line:
//
//	symbol \t filename \t ex_command [;" field:value ...]
//
// It returns ErrMalformedRecord (wrapped) for lines that do not fit.
func ParseLine(line string) (Record, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}

	rec := Record{
		Symbol:   parts[0],
		Filename: parts[1],
	}

	ex := parts[2]
	var fieldPart string
	if i := strings.Index(ex, `;"`); i >= 0 {
		ex, fieldPart = ex[:i], ex[i+2:]
	}
	if ex == "" {
		return Record{}, fmt.Errorf("%w: empty ex_command: %q", ErrMalformedRecord, line)
	}
	rec.ExCommand = ex
	rec.Locator = parseLocator(ex)

	if fieldPart != "" {
		rec.Fields = make(map[string]string)
		for _, field := range strings.Split(fieldPart, "\t") {
			if field == "" {
				continue
			}
			key, value, ok := strings.Cut(field, ":")
			if !ok {
				// A bare field is shorthand for the kind.
				key, value = "kind", field
			}
			rec.FieldKeys = append(rec.FieldKeys, key)
			rec.Fields[key] = value
		}
	}

	rec.TagPath = makeTagPath(rec)
	return rec, nil
}

func parseLocator(ex string) Locator {
	if isDigits(ex) {
		n, _ := strconv.Atoi(ex)
		return Locator{Kind: LocatorLine, Line: n}
	}

	pattern := ex
	literal := true
	if len(pattern) >= 2 && (pattern[0] == '/' || pattern[0] == '?') &&
		pattern[len(pattern)-1] == pattern[0] {
		pattern = pattern[1 : len(pattern)-1]
		literal = false
	}
	// ctags anchors the definition line as /^text$/; the anchors belong
	// to the pattern syntax, not the text being located.
	pattern = strings.TrimPrefix(pattern, "^")
	pattern = strings.TrimSuffix(pattern, "$")
	pattern = strings.ReplaceAll(pattern, `\/`, "/")

	return Locator{Kind: LocatorPattern, Pattern: pattern, Literal: literal}
}

func makeTagPath(rec Record) []string {
	path := make([]string, 0, len(hierarchyFields)+2)
	path = append(path, "")
	for _, field := range hierarchyFields {
		if v, ok := rec.Fields[field]; ok && v != "" {
			path = append(path, v)
		}
	}
	return append(path, rec.Symbol)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CompareTagPath orders records by tag path (elementwise), then symbol,
// then filename. This groups members of the same enclosing scope
// together in presentation lists.
func CompareTagPath(a, b Record) int {
	n := len(a.TagPath)
	if len(b.TagPath) < n {
		n = len(b.TagPath)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(a.TagPath[i], b.TagPath[i]); c != 0 {
			return c
		}
	}
	if c := len(a.TagPath) - len(b.TagPath); c != 0 {
		return c
	}
	if c := strings.Compare(a.Symbol, b.Symbol); c != 0 {
		return c
	}
	return strings.Compare(a.Filename, b.Filename)
}
