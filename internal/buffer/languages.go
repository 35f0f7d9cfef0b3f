package buffer

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammarConfig ties a tree-sitter grammar to the node types that
// classify buffer offsets.
type grammarConfig struct {
	Language     *sitter.Language
	Comments     []string // node types treated as comments
	Strings      []string // node types treated as string literals
	Declarations []string // node types treated as declarations
}

var grammarConfigs = map[string]*grammarConfig{
	"go": {
		Language:     golang.GetLanguage(),
		Comments:     []string{"comment"},
		Strings:      []string{"interpreted_string_literal", "raw_string_literal", "rune_literal"},
		Declarations: []string{"function_declaration", "method_declaration", "type_declaration"},
	},
	"python": {
		Language:     python.GetLanguage(),
		Comments:     []string{"comment"},
		Strings:      []string{"string"},
		Declarations: []string{"function_definition", "class_definition"},
	},
	"javascript": {
		Language:     javascript.GetLanguage(),
		Comments:     []string{"comment"},
		Strings:      []string{"string", "template_string"},
		Declarations: []string{"function_declaration", "class_declaration", "method_definition"},
	},
	"typescript": {
		Language:     typescript.GetLanguage(),
		Comments:     []string{"comment"},
		Strings:      []string{"string", "template_string"},
		Declarations: []string{"function_declaration", "class_declaration", "method_definition", "interface_declaration", "type_alias_declaration"},
	},
	"ruby": {
		Language:     ruby.GetLanguage(),
		Comments:     []string{"comment"},
		Strings:      []string{"string"},
		Declarations: []string{"method", "singleton_method", "class", "module"},
	},
	"c": {
		Language:     c.GetLanguage(),
		Comments:     []string{"comment"},
		Strings:      []string{"string_literal", "char_literal"},
		Declarations: []string{"function_definition", "struct_specifier", "enum_specifier"},
	},
	"cpp": {
		Language:     cpp.GetLanguage(),
		Comments:     []string{"comment"},
		Strings:      []string{"string_literal", "char_literal", "raw_string_literal"},
		Declarations: []string{"function_definition", "class_specifier", "struct_specifier", "enum_specifier"},
	},
	"java": {
		Language:     java.GetLanguage(),
		Comments:     []string{"line_comment", "block_comment"},
		Strings:      []string{"string_literal"},
		Declarations: []string{"method_declaration", "class_declaration", "interface_declaration", "enum_declaration"},
	},
	"rust": {
		Language:     rust.GetLanguage(),
		Comments:     []string{"line_comment", "block_comment"},
		Strings:      []string{"string_literal", "raw_string_literal"},
		Declarations: []string{"function_item", "struct_item", "enum_item", "trait_item", "impl_item"},
	},
}

// extensionToLanguage maps file extensions to grammar keys.
var extensionToLanguage = map[string]string{
	".go":   "go",
	".py":   "python",
	".pyw":  "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".rb":   "ruby",
	".rake": "ruby",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".java": "java",
	".rs":   "rust",
}

// grammarFor returns the grammar configuration for a file path, or nil
// for unsupported languages.
func grammarFor(path string) *grammarConfig {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensionToLanguage[ext]
	if !ok {
		return nil
	}
	return grammarConfigs[lang]
}
