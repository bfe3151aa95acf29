package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yen-lang/Yen-sub000/internal/evaluator"
	"github.com/yen-lang/Yen-sub000/internal/modules"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/parser"
	"github.com/yen-lang/Yen-sub000/internal/repl"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

const (
	DefaultRootPath = "."
)

var (
	// Version, BuildDate and Commit are set at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	rootPath   string
	configPath string
	debugAST   string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// evaluator config
	flag.StringVar(&rootPath, "root", DefaultRootPath, "Set the root context for the program (used for imports)")
	flag.StringVar(&configPath, "config", "", "Project file to load (default: yen.toml or yen.yaml in the root)")
	// parser config
	flag.StringVar(&debugAST, "debug-ast", "", "Render the AST next to each source file: json or yaml")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := util.ParseLogLevel(config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v; using error\n", err)
	}
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
	}
	logWriter := configureLogWriter()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logWriter, loggerOptions)))

	if flag.NArg() == 0 {
		repl.Start(config)
		return
	}

	config.Args = flag.Args()[1:]
	os.Exit(runFile(config, flag.Arg(0), os.Stdout, os.Stderr))
}

// loadConfiguration layers defaults, the project file and command line flags.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	config.RootPath = rootPath

	path := configPath
	if path == "" {
		path, _ = util.FindProjectFile(rootPath)
	}
	if path != "" {
		if err := util.LoadProjectFile(&config, path); err != nil {
			return config, err
		}
	}

	if debugAST != "" {
		if debugAST != "json" && debugAST != "yaml" {
			return config, fmt.Errorf("-debug-ast must be json or yaml, got %q", debugAST)
		}
		config.DebugAST = debugAST
	}
	if logLevel != "" {
		config.LogLevel = logLevel
	}
	return config, nil
}

// runFile executes a script and returns the process exit code.
func runFile(config util.Configuration, filename string, stdout, stderr io.Writer) int {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(stderr, "could not read %s: %v\n", filename, err)
		return 1
	}
	src := string(source)

	program, errs := parser.Parse(src)
	if len(errs) > 0 {
		fmt.Fprintf(stderr, "%s: parse errors:\n", filename)
		for _, msg := range errs {
			fmt.Fprintf(stderr, "\t%s\n", msg)
		}
		return 1
	}
	if config.DebugAST != "" {
		modules.WriteDebugAST(filename, config.DebugAST, program)
	}

	slog.Debug("running file",
		slog.String("file", filename),
		slog.Int("statements", len(program.Statements)))

	e := evaluator.New(config, evaluator.WithOutput(stdout))
	if err := e.Run(program); err != nil {
		rtErr := object.AsError(err)
		fmt.Fprintf(stderr, "%s: %s\n", filename, rtErr.Error())
		if ctx := util.GetContextLines(src, rtErr.Line, rtErr.Column, string(rtErr.Kind)); ctx != "" {
			fmt.Fprintln(stderr, ctx)
		}
		return 1
	}
	return 0
}

func configureLogWriter() *os.File {
	if logFile == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	logWriter, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
		return os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("yen version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: yen [options] [filename [args...]]

Options:
  -root <path>        Set the root context for the program (used for imports). Default is '.'
  -config <path>      Load settings from a yen.toml or yen.yaml file.
  -debug-ast <format> Render the AST of each loaded file as json or yaml.
  -help               Display this help information and exit.
  -version            Display version information and exit.
  -log-level <level>  Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>    Specify a log file to write logs. Default is stderr.

Without a filename an interactive session is started.

Examples:
  yen                        Start the REPL
  yen -log-level=debug app.yen
  yen app.yen arg1 arg2      Execute the file with command-line arguments

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
