package occlusion

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "occlusion-engine"

// The culler and everything it imports must build without cgo so that the
// bench and tests run headless.
func TestCullerImportsArePureGo(t *testing.T) {
	seen := map[string]bool{}
	queue := []string{modulePath + "/occlusion"}
	for len(queue) > 0 {
		pkg := queue[0]
		queue = queue[1:]
		if seen[pkg] {
			continue
		}
		seen[pkg] = true

		dir := filepath.Join("..", strings.TrimPrefix(strings.TrimPrefix(pkg, modulePath), "/"))
		for _, imp := range packageImports(t, dir) {
			switch {
			case imp == "C", strings.HasPrefix(imp, "github.com/go-gl/"):
				t.Errorf("Expected %s to be pure Go, got import %q", pkg, imp)
			case strings.HasPrefix(imp, modulePath+"/"):
				queue = append(queue, imp)
			}
		}
	}
	if !seen[modulePath+"/core"] {
		t.Errorf("Expected the walk to reach %s/core", modulePath)
	}
}

func packageImports(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	var imports []string
	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", name, err)
		}
		for _, spec := range f.Imports {
			path, _ := strconv.Unquote(spec.Path.Value)
			imports = append(imports, path)
		}
	}
	return imports
}
