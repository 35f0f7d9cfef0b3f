// Package tagpath resolves a definition's breadcrumb of enclosing
// scopes to a buffer offset. A locator pattern can match several times
// in a file (overloaded methods, repeated names); descending the tag
// path narrows the search to the right scope before the pattern is
// located.
package tagpath

import (
	"regexp"

	"tagnav/internal/buffer"
)

var reSpecialChars = regexp.MustCompile(`([\\*+?|{}\[\]()^$.# ])`)

// escapeRegex escapes pattern metacharacters so locator text can be
// matched as a line-anchored regular expression.
func escapeRegex(s string) string {
	return reSpecialChars.ReplaceAllString(s, `\$1`)
}

// findSource searches forward for pattern, skipping matches that lie
// inside comment or string regions.
func findSource(src buffer.Source, pattern string, from int, literal bool) (buffer.Region, bool) {
	for from <= src.Size() {
		r, ok := src.Find(pattern, from, literal)
		if !ok {
			return buffer.Region{}, false
		}
		if src.ClassifyScope(r.Start)&(buffer.ScopeComment|buffer.ScopeString) == 0 {
			return r, true
		}
		if r.End <= from {
			return buffer.Region{}, false
		}
		from = r.End
	}
	return buffer.Region{}, false
}

// Follow resolves tagPath and the locator pattern to an offset in src.
//
// Each intermediate ancestor scope (the outermost whole-file entry and
// the final leaf are skipped) is searched forward as literal text
// outside comments and strings; a match classified as a declaration
// settles that ancestor. The furthest-advanced match is kept, never
// regressing, and the pattern is then located from there. Resolution
// always returns an offset: the position just before the matched
// pattern, else the furthest ancestor position, else the buffer start.
func Follow(src buffer.Source, tagPath []string, pattern string) int {
	regions := []buffer.Region{{Start: 0, End: 0}}

	if len(tagPath) > 2 {
		for _, scope := range tagPath[1 : len(tagPath)-1] {
			for {
				prev := regions[len(regions)-1]
				r, ok := findSource(src, scope, prev.Start, true)
				if !ok {
					break
				}
				regions = append(regions, r)
				if r == prev || src.ClassifyScope(r.Start)&buffer.ScopeDeclaration != 0 {
					break
				}
			}
		}
	}

	furthest := 0
	for _, r := range regions {
		if r.Start > furthest {
			furthest = r.Start
		}
	}

	startAt := furthest - 1
	if startAt < 0 {
		startAt = 0
	}

	if r, ok := findSource(src, "^"+escapeRegex(pattern), startAt, false); ok {
		if r.Start > 0 {
			return r.Start - 1
		}
		return 0
	}
	return startAt
}
