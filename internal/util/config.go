package util

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const DefaultMaxCallDepth = 1000

// ProjectFileNames are looked up, in order, in the root path.
var ProjectFileNames = []string{"yen.toml", "yen.yaml", "yen.yml"}

type Configuration struct {
	Version      string
	BuildDate    string
	Commit       string
	RootPath     string
	YenHome      string
	LibPaths     []string
	DebugAST     string // "", "json" or "yaml"
	LogLevel     string
	MaxCallDepth int
	HistoryFile  string
	Args         []string // script arguments exposed through sys.args
}

// projectFile is the on-disk shape of yen.toml / yen.yaml.
type projectFile struct {
	LibPaths     []string `toml:"lib_paths" yaml:"lib_paths"`
	DebugAST     string   `toml:"debug_ast" yaml:"debug_ast"`
	LogLevel     string   `toml:"log_level" yaml:"log_level"`
	MaxCallDepth int      `toml:"max_call_depth" yaml:"max_call_depth"`
	HistoryFile  string   `toml:"history_file" yaml:"history_file"`
}

func DefaultConfiguration() Configuration {
	cfg := Configuration{
		RootPath:     ".",
		YenHome:      os.Getenv("YEN_HOME"),
		LogLevel:     "error",
		MaxCallDepth: DefaultMaxCallDepth,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, ".yen_history")
	}
	return cfg
}

// FindProjectFile returns the first project file present in root.
func FindProjectFile(root string) (string, bool) {
	for _, name := range ProjectFileNames {
		path := filepath.Join(root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadProjectFile overlays the settings of a yen.toml or yen.yaml file onto cfg.
// Relative library paths are resolved against the directory of the file.
func LoadProjectFile(cfg *Configuration, path string) error {
	var pf projectFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, &pf)
		if err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return fmt.Errorf("config: %s has unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("config: open %s: %w", path, err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported project file %s", path)
	}

	base := filepath.Dir(path)
	for _, lib := range pf.LibPaths {
		if !filepath.IsAbs(lib) {
			lib = filepath.Join(base, lib)
		}
		cfg.LibPaths = append(cfg.LibPaths, lib)
	}
	if pf.DebugAST != "" {
		cfg.DebugAST = pf.DebugAST
	}
	if pf.LogLevel != "" {
		cfg.LogLevel = pf.LogLevel
	}
	if pf.MaxCallDepth > 0 {
		cfg.MaxCallDepth = pf.MaxCallDepth
	}
	if pf.HistoryFile != "" {
		cfg.HistoryFile = pf.HistoryFile
	}

	slog.Debug("loaded project file",
		slog.String("path", path),
		slog.Any("lib-paths", cfg.LibPaths))
	return nil
}

// SearchPaths lists the directories imports are resolved against, in order.
func (c Configuration) SearchPaths() []string {
	paths := []string{c.RootPath}
	paths = append(paths, c.LibPaths...)
	if c.YenHome != "" {
		paths = append(paths, filepath.Join(c.YenHome, "lib"))
	}
	return paths
}

func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "":
		return slog.LevelError, nil
	}
	return slog.LevelError, fmt.Errorf("unknown log level %q", level)
}
