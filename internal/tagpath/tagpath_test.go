package tagpath

import (
	"strings"
	"testing"

	"tagnav/internal/buffer"
)

const nestedSource = `TARGET = outer

class Foo {
	method bar() {
		TARGET
	}
	method baz() {
		OTHER
	}
}
`

func TestFollowDisambiguatesByScope(t *testing.T) {
	src := buffer.NewText(nestedSource)

	// The same pattern exists at top level; the tag path must land the
	// search inside Foo.bar, past the outer occurrence.
	offset := Follow(src, []string{"", "class Foo", "method bar"}, "\t\tTARGET")

	inner := strings.Index(nestedSource, "\t\tTARGET")
	if offset != inner-1 {
		t.Errorf("Follow = %d, want %d (just before the scoped TARGET line)", offset, inner-1)
	}

	barAt := strings.Index(nestedSource, "method bar")
	if offset <= barAt {
		t.Errorf("Follow = %d, want an offset inside the bar method (after %d)", offset, barAt)
	}
}

func TestFollowPatternAtBufferStart(t *testing.T) {
	src := buffer.NewText("TARGET = 1\nrest\n")

	if offset := Follow(src, []string{"", "TARGET"}, "TARGET = 1"); offset != 0 {
		t.Errorf("Follow = %d, want 0 for a match at the buffer start", offset)
	}
}

func TestFollowFallsBackToFurthestAncestor(t *testing.T) {
	src := buffer.NewText(nestedSource)

	// Pattern matches nowhere; the furthest resolved ancestor wins.
	offset := Follow(src, []string{"", "class Foo", "method baz"}, "\t\tNOWHERE")

	bazAt := strings.Index(nestedSource, "method baz")
	if offset != bazAt-1 {
		t.Errorf("Follow = %d, want %d (furthest ancestor)", offset, bazAt-1)
	}
}

func TestFollowNothingMatches(t *testing.T) {
	src := buffer.NewText("completely unrelated\n")

	if offset := Follow(src, []string{"", "class Foo", "method bar"}, "NOWHERE"); offset != 0 {
		t.Errorf("Follow = %d, want 0 when nothing matches", offset)
	}
}

func TestFollowSkipsCommentedScopes(t *testing.T) {
	source := "// class Foo {\nclass Foo {\n\tTARGET\n}\n"
	commentEnd := strings.Index(source, "\nclass")
	classify := func(offset int) buffer.Scope {
		if offset < commentEnd {
			return buffer.ScopeComment
		}
		return 0
	}
	src := buffer.NewClassifiedText(source, classify)

	offset := Follow(src, []string{"", "class Foo", "TARGET"}, "\tTARGET")

	inner := strings.Index(source, "\tTARGET")
	if offset != inner-1 {
		t.Errorf("Follow = %d, want %d (comment occurrence skipped)", offset, inner-1)
	}
}

func TestFollowDeclarationMatchSettlesAncestor(t *testing.T) {
	// The first occurrence of the scope text sits in a string literal,
	// the second is the real declaration. Resolution must skip the
	// string and settle on the declaration-classified match.
	source := "s = \"class Foo\"\nclass Foo {\n\tTARGET\n}\n"
	strEnd := strings.Index(source, "\nclass")
	declAt := strEnd + 1
	classify := func(offset int) buffer.Scope {
		if offset >= 4 && offset < strEnd {
			return buffer.ScopeString
		}
		if offset >= declAt && offset < declAt+len("class Foo") {
			return buffer.ScopeDeclaration
		}
		return 0
	}
	src := buffer.NewClassifiedText(source, classify)

	offset := Follow(src, []string{"", "class Foo", "TARGET"}, "\tTARGET")

	inner := strings.Index(source, "\tTARGET")
	if offset != inner-1 {
		t.Errorf("Follow = %d, want %d", offset, inner-1)
	}
}

func TestEscapeRegex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"def foo(self):", `def\ foo\(self\):`},
		{"a+b*c", `a\+b\*c`},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := escapeRegex(tt.in); got != tt.want {
			t.Errorf("escapeRegex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
