package modules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

func writeModule(t *testing.T, dir, rel, src string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noop(*Module) error { return nil }

func TestRelativePath(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"util", "util.yen"},
		{"lib.strings", filepath.Join("lib", "strings.yen")},
		{"lib/strings", filepath.Join("lib", "strings.yen")},
		{"lib/strings.yen", filepath.Join("lib", "strings.yen")},
		{"lib/v1.2/x", filepath.Join("lib", "v1.2", "x.yen")},
	}
	for _, tt := range tests {
		if got := relativePath(tt.name); got != tt.expected {
			t.Errorf("relativePath(%q): expected %q, got %q", tt.name, tt.expected, got)
		}
	}
}

func TestResolveSearchOrder(t *testing.T) {
	root := t.TempDir()
	lib := t.TempDir()
	writeModule(t, lib, "shared.yen", "let x = 1;")
	writeModule(t, lib, "both.yen", "let x = 1;")
	inRoot := writeModule(t, root, "both.yen", "let x = 2;")

	l := NewLoader(util.Configuration{RootPath: root, LibPaths: []string{lib}})

	got, err := l.Resolve("both")
	if err != nil {
		t.Fatal(err)
	}
	if got != inRoot {
		t.Errorf("root should win over lib paths: got %s", got)
	}

	got, err = l.Resolve("shared")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(lib, "shared.yen") {
		t.Errorf("expected module from lib path, got %s", got)
	}

	_, err = l.Resolve("nowhere")
	if !object.IsKind(err, object.ImportError) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "nowhere") {
		t.Errorf("error should name the module: %v", err)
	}
}

func TestResolveRelativeToImporter(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "pkg/main.yen", "let x = 1;")
	sibling := writeModule(t, root, "pkg/helper.yen", "let x = 1;")

	l := NewLoader(util.Configuration{RootPath: root})
	var resolved string
	_, err := l.Load("pkg.main", func(m *Module) error {
		var err error
		resolved, err = l.Resolve("helper")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if resolved != sibling {
		t.Errorf("expected %s, got %s", sibling, resolved)
	}
}

func TestLoadCachesModules(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "math/extra.yen", "func double(x) { return x * 2; }")

	l := NewLoader(util.Configuration{RootPath: root})
	runs := 0
	run := func(m *Module) error {
		runs++
		if m.Program == nil || len(m.Program.Statements) != 1 {
			t.Errorf("module should arrive parsed")
		}
		return nil
	}

	first, err := l.Load("math.extra", run)
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Load("math/extra.yen", run)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("expected the cached module to be returned")
	}
	if runs != 1 {
		t.Errorf("module should run once, ran %d times", runs)
	}
	if first.Name != "math.extra" {
		t.Errorf("unexpected module name %q", first.Name)
	}
}

func TestLoadDetectsCycles(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "a.yen", "let a = 1;")
	writeModule(t, root, "b.yen", "let b = 1;")

	l := NewLoader(util.Configuration{RootPath: root})
	var run RunFunc
	run = func(m *Module) error {
		next := map[string]string{"a": "b", "b": "a"}[m.Name]
		_, err := l.Load(next, run)
		return err
	}

	_, err := l.Load("a", run)
	if !object.IsKind(err, object.ImportError) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Errorf("error should show the cycle: %v", err)
	}

	// a failed module is not cached, so loading it again retries
	l2 := NewLoader(util.Configuration{RootPath: root})
	if _, err := l2.Load("b", noop); err != nil {
		t.Fatal(err)
	}
}

func TestLoadReportsParseErrors(t *testing.T) {
	root := t.TempDir()
	writeModule(t, root, "broken.yen", "let = ;")

	l := NewLoader(util.Configuration{RootPath: root})
	_, err := l.Load("broken", func(*Module) error {
		t.Fatal("a module with parse errors must not run")
		return nil
	})
	if !object.IsKind(err, object.ImportError) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the module: %v", err)
	}
}
