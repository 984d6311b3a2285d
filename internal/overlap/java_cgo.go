//go:build cgo

package overlap

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

var typeDeclarations = map[string]bool{
	"class_declaration":           true,
	"interface_declaration":       true,
	"enum_declaration":            true,
	"record_declaration":          true,
	"annotation_type_declaration": true,
}

// sourceReader extracts the package and top-level type names of a Java file.
type sourceReader struct {
	parser *sitter.Parser
}

func newSourceReader() *sourceReader {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &sourceReader{parser: p}
}

// ParserAvailable reports whether source parsing is compiled in.
func ParserAvailable() bool { return true }

func (r *sourceReader) read(ctx context.Context, src []byte) (string, []string, bool) {
	tree, err := r.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return "", nil, false
	}
	defer tree.Close()
	root := tree.RootNode()
	var pkg string
	var types []string
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch {
		case child.Type() == "package_declaration":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				n := child.NamedChild(j)
				if n.Type() == "scoped_identifier" || n.Type() == "identifier" {
					pkg = strings.ReplaceAll(n.Content(src), " ", "")
					break
				}
			}
		case typeDeclarations[child.Type()]:
			if name := child.ChildByFieldName("name"); name != nil {
				types = append(types, name.Content(src))
			}
		}
	}
	return pkg, types, true
}
