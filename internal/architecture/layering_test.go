package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulesImport = "watchless/internal/modules/"

// walkImports calls check for every module import of every non-test file
// under root.
func walkImports(t *testing.T, root string, check func(file, importPath string)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if strings.Contains(importPath, modulesImport) {
				check(filepath.ToSlash(path), importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "modules"), func(file, importPath string) {
		module := moduleName(file)
		layer := detectLayer(file)
		if module == "" || layer == "" {
			return
		}
		if violatesLayerRule(module, layer, importPath) {
			t.Fatalf("forbidden import in %s (%s): %s", file, layer, importPath)
		}
	})
}

func TestPlatformDoesNotImportModules(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "platform"), func(file, importPath string) {
		t.Fatalf("platform package %s imports module %s", file, importPath)
	})
}

func TestUIOnlySeesPorts(t *testing.T) {
	t.Parallel()
	walkImports(t, filepath.Join("..", "ui"), func(file, importPath string) {
		if !hasSegment(importPath, "port/in") && !hasSegment(importPath, "dto") && !hasSegment(importPath, "domain") {
			t.Fatalf("ui file %s reaches past the ports: %s", file, importPath)
		}
	})
}

func TestViolatesLayerRule(t *testing.T) {
	t.Parallel()
	cases := []struct {
		module, layer, importPath string
		want                      bool
	}{
		{"viewing", "adapter/in", modulesImport + "viewing/port/in", false},
		{"viewing", "adapter/in", modulesImport + "viewing/dto", false},
		{"viewing", "adapter/in", modulesImport + "viewing/service", true},
		{"viewing", "service", modulesImport + "timer/domain", false},
		{"viewing", "service", modulesImport + "timer/service", true},
		{"analytics", "usecase", modulesImport + "analytics/adapter/out", true},
		{"timer", "domain", modulesImport + "timer/usecase", true},
		{"account", "adapter/out", modulesImport + "auth/dto", false},
		{"account", "adapter/out", modulesImport + "auth/adapter/out", true},
	}
	for _, tc := range cases {
		if got := violatesLayerRule(tc.module, tc.layer, tc.importPath); got != tc.want {
			t.Fatalf("violatesLayerRule(%s, %s, %s) = %v, want %v", tc.module, tc.layer, tc.importPath, got, tc.want)
		}
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func hasSegment(path, segment string) bool {
	return strings.Contains(path, "/"+segment+"/") || strings.HasSuffix(path, "/"+segment)
}

func violatesLayerRule(module, layer, importPath string) bool {
	if !strings.Contains(importPath, "/internal/modules/"+module+"/") {
		for _, private := range []string{"service", "adapter/in", "adapter/out", "usecase"} {
			if hasSegment(importPath, private) {
				return true
			}
		}
		if hasSegment(importPath, "port/in") || hasSegment(importPath, "dto") {
			return false
		}
	}

	switch layer {
	case "adapter/in":
		return !hasSegment(importPath, "port/in") && !hasSegment(importPath, "dto")
	case "usecase":
		return hasSegment(importPath, "adapter/in") || hasSegment(importPath, "adapter/out")
	case "service":
		return strings.Contains(importPath, "/adapter/") || hasSegment(importPath, "usecase")
	case "domain":
		return strings.Contains(importPath, "/adapter/") || hasSegment(importPath, "usecase") || hasSegment(importPath, "service")
	default:
		return false
	}
}
