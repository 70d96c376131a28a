package javasrc

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

const importQuery = `(import_declaration) @import`

// Import is a single import declaration of a Java source file
type Import struct {
	// Name is the imported class or, for wildcard imports, the package
	Name     string
	Wildcard bool
	Static   bool
	// Raw is the declaration as written, without the import keyword
	Raw string
}

func (i Import) String() string {
	return i.Raw
}

// Imports parses the import declarations of a Java file
func Imports(ctx context.Context, path string) ([]Import, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	imports, err := ParseImports(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return imports, nil
}

// ParseImports extracts the import declarations of Java source code. Static
// imports are reported by their owning class.
func ParseImports(ctx context.Context, content []byte) ([]Import, error) {
	lang := java.GetLanguage()

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(importQuery), lang)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var imports []Import
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if imp, ok := parseDeclaration(c.Node.Content(content)); ok {
				imports = append(imports, imp)
			}
		}
	}
	return imports, nil
}

func parseDeclaration(decl string) (Import, bool) {
	s := strings.TrimSpace(decl)
	s = strings.TrimPrefix(s, "import")
	s = strings.TrimSuffix(strings.TrimSpace(s), ";")
	fields := strings.Fields(s)

	var imp Import
	if len(fields) > 0 && fields[0] == "static" {
		imp.Static = true
		fields = fields[1:]
	}
	name := strings.Join(fields, "")
	if name == "" {
		return Import{}, false
	}

	imp.Raw = name
	if imp.Static {
		imp.Raw = "static " + imp.Raw
	}

	if strings.HasSuffix(name, ".*") {
		imp.Name = strings.TrimSuffix(name, ".*")
		// import static a.b.C.* brings in members of class a.b.C
		imp.Wildcard = !imp.Static
		return imp, true
	}

	if imp.Static {
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
	}
	imp.Name = name
	return imp, true
}
