package buffer

import (
	"context"
	"fmt"
	"os"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// File is a Source over a file's content, with scope classification
// built from a tree-sitter parse when the language is supported. For
// unsupported languages every offset classifies as plain source, which
// degrades tag-path resolution to text search without breaking it.
type File struct {
	path    string
	content string

	comments []Region
	strings_ []Region
	decls    []Region
}

// Open reads and parses the file at path.
func Open(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, content)
}

// Parse builds a File over content, classifying offsets with the
// grammar selected by path's extension.
func Parse(path string, content []byte) (*File, error) {
	f := &File{path: path, content: string(content)}

	config := grammarFor(path)
	if config == nil {
		return f, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(config.Language)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		// Classification is best-effort; an unparsable buffer still
		// supports plain text search.
		return f, nil
	}
	defer tree.Close()

	comments := nodeTypeSet(config.Comments)
	strs := nodeTypeSet(config.Strings)
	decls := nodeTypeSet(config.Declarations)
	f.walk(tree.RootNode(), comments, strs, decls)

	sortRegions(f.comments)
	sortRegions(f.strings_)
	sortRegions(f.decls)
	return f, nil
}

// Path returns the file path this buffer was read from.
func (f *File) Path() string { return f.path }

func (f *File) Size() int { return len(f.content) }

func (f *File) Substr(r Region) string {
	return substr(f.content, r)
}

func (f *File) LineAt(offset int) Region {
	return lineAt(f.content, offset)
}

func (f *File) Find(pattern string, from int, literal bool) (Region, bool) {
	return find(f.content, pattern, from, literal)
}

func (f *File) ClassifyScope(offset int) Scope {
	var s Scope
	if covers(f.comments, offset) {
		s |= ScopeComment
	}
	if covers(f.strings_, offset) {
		s |= ScopeString
	}
	if covers(f.decls, offset) {
		s |= ScopeDeclaration
	}
	return s
}

func (f *File) walk(node *sitter.Node, comments, strs, decls map[string]bool) {
	nodeType := node.Type()
	region := Region{Start: int(node.StartByte()), End: int(node.EndByte())}

	switch {
	case comments[nodeType]:
		f.comments = append(f.comments, region)
		return
	case strs[nodeType]:
		f.strings_ = append(f.strings_, region)
		return
	case decls[nodeType]:
		f.decls = append(f.decls, region)
		// Declarations nest (a method inside a class), so keep walking.
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		f.walk(node.Child(i), comments, strs, decls)
	}
}

func nodeTypeSet(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

func sortRegions(regions []Region) {
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Start < regions[j].Start
	})
}

// covers reports whether offset lies inside any region. Regions are
// sorted by start; nested declaration regions make a simple scan the
// safe choice.
func covers(regions []Region, offset int) bool {
	for _, r := range regions {
		if r.Start > offset {
			return false
		}
		if offset < r.End {
			return true
		}
	}
	return false
}
