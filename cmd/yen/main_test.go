package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yen-lang/Yen-sub000/internal/util"
)

func writeScript(t *testing.T, src string) (string, util.Configuration) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main.yen")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, util.Configuration{RootPath: dir}
}

func TestRunFile(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		code     int
		stdout   string
		stderrIn string
	}{
		{"success", `print 1 + 2;`, 0, "3\n", ""},
		{"parse error", "let = ;", 1, "", "parse errors"},
		{"runtime error", "let x = 1;\nprint x / 0;", 1, "", "DivisionByZero"},
		{"runtime error context", "let x = 1;\nprint missing;", 1, "", "print missing;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, config := writeScript(t, tt.src)
			var stdout, stderr bytes.Buffer
			code := runFile(config, path, &stdout, &stderr)
			if code != tt.code {
				t.Fatalf("expected exit code %d, got %d (stderr %q)", tt.code, code, stderr.String())
			}
			if stdout.String() != tt.stdout {
				t.Errorf("expected stdout %q, got %q", tt.stdout, stdout.String())
			}
			if !strings.Contains(stderr.String(), tt.stderrIn) {
				t.Errorf("expected stderr to contain %q, got %q", tt.stderrIn, stderr.String())
			}
		})
	}
}

func TestRunFileArgs(t *testing.T) {
	path, config := writeScript(t, `print sys.args();`)
	config.Args = []string{"a", "b"}
	var stdout, stderr bytes.Buffer
	if code := runFile(config, path, &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected failure: %s", stderr.String())
	}
	if got := stdout.String(); got != "[a, b]\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestRunFileMissing(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := runFile(util.Configuration{}, filepath.Join(t.TempDir(), "nope.yen"), &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}
