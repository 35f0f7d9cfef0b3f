// Package buffer provides read-only text-source access for tag
// resolution: substring and line lookup, forward search, and offset
// scope classification (comment, string, declaration).
package buffer

import (
	"regexp"
	"strings"
)

// Region is a span of byte offsets, start inclusive, end exclusive.
type Region struct {
	Start int
	End   int
}

// Empty reports whether the region covers no text.
func (r Region) Empty() bool { return r.End <= r.Start }

// Scope is a bitset of classifications for a buffer offset.
type Scope uint8

const (
	// ScopeComment marks offsets inside a comment.
	ScopeComment Scope = 1 << iota
	// ScopeString marks offsets inside a string literal.
	ScopeString
	// ScopeDeclaration marks offsets inside a function, type, or class
	// declaration node, used to confirm a scope match "looks like" a
	// definition.
	ScopeDeclaration
)

// Source is the read-only view of a text buffer that tag resolution
// needs.
type Source interface {
	// Size returns the buffer length in bytes.
	Size() int

	// Substr returns the text covered by r, clamped to the buffer.
	Substr(r Region) string

	// LineAt returns the line containing offset, excluding the newline.
	LineAt(offset int) Region

	// Find searches forward from offset for pattern. Literal patterns
	// match exact text; otherwise pattern is a regular expression where
	// a leading ^ anchors to line starts.
	Find(pattern string, from int, literal bool) (Region, bool)

	// ClassifyScope reports the scope classes covering offset.
	ClassifyScope(offset int) Scope
}

// Text is an in-memory Source over a plain string, with an optional
// classifier. It backs tests and unclassified (unsupported-language)
// buffers.
type Text struct {
	content  string
	classify func(offset int) Scope
}

// NewText returns a Source over content with no scope classification.
func NewText(content string) *Text {
	return &Text{content: content}
}

// NewClassifiedText returns a Source over content using classify for
// scope lookups.
func NewClassifiedText(content string, classify func(offset int) Scope) *Text {
	return &Text{content: content, classify: classify}
}

func (t *Text) Size() int { return len(t.content) }

func (t *Text) Substr(r Region) string {
	return substr(t.content, r)
}

func (t *Text) LineAt(offset int) Region {
	return lineAt(t.content, offset)
}

func (t *Text) Find(pattern string, from int, literal bool) (Region, bool) {
	return find(t.content, pattern, from, literal)
}

func (t *Text) ClassifyScope(offset int) Scope {
	if t.classify == nil {
		return 0
	}
	return t.classify(offset)
}

func substr(content string, r Region) string {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > len(content) {
		r.End = len(content)
	}
	if r.Empty() {
		return ""
	}
	return content[r.Start:r.End]
}

func lineAt(content string, offset int) Region {
	if offset < 0 {
		offset = 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	start := strings.LastIndexByte(content[:offset], '\n') + 1
	end := strings.IndexByte(content[offset:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += offset
	}
	return Region{Start: start, End: end}
}

// find implements forward search shared by Source implementations.
// Regex patterns beginning with ^ only match at true line starts, even
// when the search begins mid-line.
func find(content, pattern string, from int, literal bool) (Region, bool) {
	if from < 0 {
		from = 0
	}
	if from > len(content) {
		return Region{}, false
	}

	if literal {
		i := strings.Index(content[from:], pattern)
		if i < 0 {
			return Region{}, false
		}
		return Region{Start: from + i, End: from + i + len(pattern)}, true
	}

	anchored := strings.HasPrefix(pattern, "^")
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return find(content, pattern, from, true)
	}

	pos := from
	for pos <= len(content) {
		loc := re.FindStringIndex(content[pos:])
		if loc == nil {
			return Region{}, false
		}
		start, end := pos+loc[0], pos+loc[1]
		if !anchored || start == 0 || content[start-1] == '\n' {
			return Region{Start: start, End: end}, true
		}
		pos = start + 1
	}
	return Region{}, false
}
