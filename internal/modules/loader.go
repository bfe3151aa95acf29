package modules

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/lexer"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/parser"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

const Extension = ".yen"

// Module is a loaded source file. Env, Decls, Exports and Context are filled
// in by the RunFunc that evaluates it.
type Module struct {
	Name    string
	Path    string
	Src     string
	Program *ast.Program

	Env     *object.Environment
	Decls   *object.Declarations
	Exports []string // nil when the module exports everything
	Context object.EvaluatorContext
}

// RunFunc evaluates a freshly parsed module.
type RunFunc func(m *Module) error

type Loader struct {
	config  util.Configuration
	cache   map[string]*Module
	loading []*Module // modules whose evaluation is in progress, outermost first
}

func NewLoader(config util.Configuration) *Loader {
	return &Loader{
		config: config,
		cache:  make(map[string]*Module),
	}
}

// relativePath turns "a.b", "a/b" or "a/b.yen" into a relative file path.
func relativePath(name string) string {
	if strings.HasSuffix(name, Extension) {
		return filepath.FromSlash(name)
	}
	if !strings.ContainsAny(name, `/\`) {
		name = strings.ReplaceAll(name, ".", "/")
	}
	return filepath.FromSlash(name) + Extension
}

// searchPaths puts the directory of the importing module ahead of the
// configured paths.
func (l *Loader) searchPaths() []string {
	paths := l.config.SearchPaths()
	if n := len(l.loading); n > 0 {
		paths = append([]string{filepath.Dir(l.loading[n-1].Path)}, paths...)
	}
	return paths
}

// Resolve finds the file a module name refers to.
func (l *Loader) Resolve(name string) (string, error) {
	rel := relativePath(name)
	if filepath.IsAbs(rel) {
		if _, err := os.Stat(rel); err != nil {
			return "", object.NewError(object.ImportError, "module %s not found", name)
		}
		return rel, nil
	}

	searched := []string{}
	for _, dir := range l.searchPaths() {
		candidate := filepath.Join(dir, rel)
		searched = append(searched, candidate)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", fmt.Errorf("resolving %s: %w", candidate, err)
			}
			return abs, nil
		}
	}
	return "", object.NewError(object.ImportError, "module %s not found (searched %s)", name, strings.Join(searched, ", "))
}

// Load returns the cached module for name or reads, parses and runs it.
// Requesting a module that is still being loaded is an import cycle.
func (l *Loader) Load(name string, run RunFunc) (*Module, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}

	if mod, ok := l.cache[path]; ok {
		slog.Debug("module loaded from cache",
			slog.String("name", name),
			slog.String("path", path))
		return mod, nil
	}

	for i, loading := range l.loading {
		if loading.Path == path {
			chain := []string{}
			for _, m := range l.loading[i:] {
				chain = append(chain, m.Name)
			}
			chain = append(chain, name)
			return nil, object.NewError(object.ImportError, "import cycle: %s", strings.Join(chain, " -> "))
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, object.NewError(object.ImportError, "could not read module %s: %v", name, err)
	}

	mod := &Module{Name: name, Path: path, Src: string(source)}
	program, err := l.parse(mod)
	if err != nil {
		return nil, err
	}
	mod.Program = program

	l.loading = append(l.loading, mod)
	err = run(mod)
	l.loading = l.loading[:len(l.loading)-1]
	if err != nil {
		slog.Warn("error running module",
			slog.String("name", name),
			slog.Any("error", err))
		return nil, err
	}

	l.cache[path] = mod
	slog.Debug("module loaded, added to cache",
		slog.String("name", name),
		slog.String("path", path))
	return mod, nil
}

func (l *Loader) parse(mod *Module) (*ast.Program, error) {
	tokens, lexErrors := lexer.Tokenize(mod.Src)
	p := parser.New(tokens, mod.Src)
	program := p.ParseProgram()

	messages := append(lexErrors, p.Errors()...)
	if len(messages) > 0 {
		errs := make([]error, 0, len(messages))
		for _, m := range messages {
			errs = append(errs, errors.New(m))
		}
		slog.Warn("error loading module",
			slog.String("name", mod.Name),
			slog.String("path", mod.Path),
			slog.Int("errors", len(errs)))
		return nil, object.NewError(object.ImportError, "parse errors in module %s:\n%v", mod.Name, errors.Join(errs...))
	}

	if l.config.DebugAST != "" {
		WriteDebugAST(mod.Path, l.config.DebugAST, program)
	}
	return program, nil
}

// WriteDebugAST renders program as path.ast.json or path.ast.yaml.
func WriteDebugAST(path, format string, program *ast.Program) {
	var (
		out string
		err error
	)
	switch format {
	case "yaml":
		out, err = parser.RenderASTAsYAML(program)
	default:
		format = "json"
		out, err = parser.RenderASTAsJSON(program)
	}
	if err != nil {
		slog.Error("failed to render AST",
			slog.String("format", format),
			slog.Any("error", err))
		return
	}
	if err := os.WriteFile(path+".ast."+format, []byte(out), 0o644); err != nil {
		slog.Error("failed to write AST",
			slog.String("path", path),
			slog.Any("error", err))
	}
}
