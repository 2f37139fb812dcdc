package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// layerRule bans a set of internal packages from one layer. Paths are relative to
// <module>/internal/.
type layerRule struct {
	layer string
	bans  []string
}

var layerRules = []layerRule{
	{layer: "platform/", bans: []string{"modules/", "data/", "services", "jobs/", "http/", "clients/", "app"}},
	{layer: "domain/", bans: []string{"modules/", "data/", "services", "jobs/", "http/", "clients/", "app"}},
	{layer: "modules/", bans: []string{"data/", "services", "jobs/", "http/", "clients/", "app", "observability"}},
	{layer: "data/", bans: []string{"modules/", "services", "jobs/", "http/", "clients/", "app"}},
	{layer: "services/", bans: []string{"jobs/", "http/", "clients/", "app"}},
	{layer: "jobs/", bans: []string{"services", "http/", "clients/", "app"}},
	{layer: "clients/", bans: []string{"data/", "services", "jobs/", "http/", "app"}},
	{layer: "http/", bans: []string{"data/", "jobs/", "clients/", "app"}},
}

type importRef struct {
	file string
	imp  string
}

func TestImportBoundaries(t *testing.T) {
	modulePath, refs := internalImports(t)

	var b strings.Builder
	for _, ref := range refs {
		rule, ok := ruleFor(ref.file)
		if !ok {
			continue
		}
		for _, ban := range rule.bans {
			prefix := modulePath + "/internal/" + ban
			if ref.imp == prefix || strings.HasPrefix(ref.imp, strings.TrimSuffix(prefix, "/")+"/") {
				fmt.Fprintf(&b, "- %s imports %q (layer %s may not import %s)\n", ref.file, ref.imp, rule.layer, ban)
				break
			}
		}
	}
	if b.Len() > 0 {
		t.Fatal("import boundary violations:\n" + b.String())
	}
}

// Redis and other external clients are wired in internal/app only; everything else talks to
// them through interfaces.
func TestClientsImportedOnlyByApp(t *testing.T) {
	modulePath, refs := internalImports(t)

	var b strings.Builder
	for _, ref := range refs {
		if !strings.HasPrefix(ref.imp, modulePath+"/internal/clients/") {
			continue
		}
		if strings.HasPrefix(ref.file, "internal/app/") || strings.HasPrefix(ref.file, "internal/clients/") {
			continue
		}
		fmt.Fprintf(&b, "- %s imports %q\n", ref.file, ref.imp)
	}
	if b.Len() > 0 {
		t.Fatal("internal/clients imported outside internal/app:\n" + b.String())
	}
}

func ruleFor(rel string) (layerRule, bool) {
	rel = strings.TrimPrefix(rel, "internal/")
	for _, r := range layerRules {
		if strings.HasPrefix(rel, r.layer) {
			return r, true
		}
	}
	return layerRule{}, false
}

func internalImports(t *testing.T) (string, []importRef) {
	t.Helper()

	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	fset := token.NewFileSet()
	var refs []importRef
	walkErr := filepath.WalkDir(filepath.Join(root, "internal"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		// Tests may reach across layers for fixtures.
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil || !strings.HasPrefix(imp, modulePath+"/") {
				continue
			}
			refs = append(refs, importRef{file: filepath.ToSlash(rel), imp: imp})
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return modulePath, refs
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mp, ok := strings.CutPrefix(line, "module "); ok {
			if mp = strings.TrimSpace(mp); mp != "" {
				return mp, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
