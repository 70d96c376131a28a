package javasrc

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-enry/go-enry/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/getlawrence/qmaid/internal/domain"
)

// DefaultExcludeDirs are skipped when walking sources
var DefaultExcludeDirs = []string{".git", "target", "build", "out", "node_modules", ".idea"}

const springBootApplication = "SpringBootApplication"

const entryPointQuery = `
(class_declaration
  (modifiers
    [(marker_annotation name: (_) @annotation)
     (annotation name: (_) @annotation)])
  name: (identifier) @class_name) @class
`

// IsJava reports whether path is a Java source file
func IsJava(path string) bool {
	lang, safe := enry.GetLanguageByExtension(path)
	return safe && lang == "Java"
}

// WalkSources calls fn for every Java source below dir in lexical order.
// Directories named in exclude are skipped.
func WalkSources(dir string, exclude []string, fn func(path string) error) error {
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}
	return filepath.WalkDir(dir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			if _, ok := skip[de.Name()]; ok && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsJava(path) {
			return nil
		}
		return fn(path)
	})
}

// FindEntryPoint returns the class annotated with @SpringBootApplication.
// When several classes qualify, the one closest to the project root wins.
func FindEntryPoint(ctx context.Context, projectDir string, exclude []string) (*domain.EntryPoint, error) {
	var candidates []domain.EntryPoint
	err := WalkSources(projectDir, exclude, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// test sources may bootstrap their own application class
		if isTestSource(projectDir, path) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		found, err := findAnnotatedClasses(ctx, path, content)
		if err != nil {
			return nil
		}
		candidates = append(candidates, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di := strings.Count(candidates[i].FilePath, string(filepath.Separator))
		dj := strings.Count(candidates[j].FilePath, string(filepath.Separator))
		return di < dj
	})
	return &candidates[0], nil
}

// isTestSource reports whether path lies in a src/test tree of the project.
// Only the part below projectDir is inspected.
func isTestSource(projectDir, path string) bool {
	rel, err := filepath.Rel(projectDir, path)
	if err != nil {
		return false
	}
	rel = "/" + filepath.ToSlash(rel)
	return strings.Contains(rel, "/src/test/")
}

func findAnnotatedClasses(ctx context.Context, path string, content []byte) ([]domain.EntryPoint, error) {
	lang := java.GetLanguage()

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(entryPointQuery), lang)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var entryPoints []domain.EntryPoint
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}

		var annotation, className string
		var classNode *sitter.Node
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "annotation":
				annotation = c.Node.Content(content)
			case "class_name":
				className = c.Node.Content(content)
			case "class":
				classNode = c.Node
			}
		}
		if classNode == nil || !isSpringBootApplication(annotation) {
			continue
		}
		entryPoints = append(entryPoints, domain.EntryPoint{
			FilePath:   path,
			ClassName:  className,
			Annotation: "@" + annotation,
			LineNumber: classNode.StartPoint().Row + 1,
			Column:     classNode.StartPoint().Column + 1,
			Confidence: 1.0,
		})
	}
	return entryPoints, nil
}

func isSpringBootApplication(name string) bool {
	return name == springBootApplication || strings.HasSuffix(name, "."+springBootApplication)
}
