package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/yen-lang/Yen-sub000/internal/evaluator"
	"github.com/yen-lang/Yen-sub000/internal/lexer"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/parser"
	"github.com/yen-lang/Yen-sub000/internal/token"
	"github.com/yen-lang/Yen-sub000/internal/util"
)

const (
	Prompt             = "yen> "
	ContinuationPrompt = "...> "
)

// Session holds the evaluator state shared by every line typed into the REPL.
type Session struct {
	eval *evaluator.Evaluator
	out  io.Writer
	errs io.Writer
}

func NewSession(config util.Configuration, in io.Reader, out, errs io.Writer) *Session {
	return &Session{
		eval: evaluator.New(config, evaluator.WithOutput(out), evaluator.WithInput(in)),
		out:  out,
		errs: errs,
	}
}

// Execute evaluates one complete input. It returns false when the input asks
// the REPL to stop.
func (s *Session) Execute(src string) bool {
	trimmed := strings.TrimSpace(src)
	switch {
	case trimmed == "":
		return true
	case strings.HasPrefix(trimmed, ":"):
		switch trimmed {
		case ":quit", ":q":
			return false
		}
		fmt.Fprintf(s.errs, "unknown command %s, type :quit to exit\n", trimmed)
		return true
	}

	program, errs := parser.Parse(src)
	if len(errs) > 0 {
		fmt.Fprintln(s.errs, "parse errors:")
		for _, msg := range errs {
			fmt.Fprintf(s.errs, "\t%s\n", msg)
		}
		return true
	}

	result, err := s.eval.Eval(program)
	if err != nil {
		rtErr := object.AsError(err)
		fmt.Fprintln(s.errs, rtErr.Error())
		if ctx := util.GetContextLines(src, rtErr.Line, rtErr.Column, string(rtErr.Kind)); ctx != "" {
			fmt.Fprintln(s.errs, ctx)
		}
		return true
	}
	if result != nil && result != object.NULL {
		fmt.Fprintln(s.out, result.Inspect())
	}
	return true
}

// Incomplete reports whether src leaves a bracket open, in which case the
// REPL keeps reading lines.
func Incomplete(src string) bool {
	tokens, _ := lexer.Tokenize(src)
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case token.LBRACE, token.LPAREN, token.LBRACKET:
			depth++
		case token.RBRACE, token.RPAREN, token.RBRACKET:
			depth--
		}
	}
	return depth > 0
}

// Start runs the interactive loop on the terminal until EOF or :quit.
func Start(config util.Configuration) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if config.HistoryFile != "" {
		loadHistory(ln, config.HistoryFile)
		defer saveHistory(ln, config.HistoryFile)
	}

	fmt.Printf("Yen %s, type :quit to exit\n", config.Version)
	session := NewSession(config, os.Stdin, os.Stdout, os.Stderr)
	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if !session.Execute(src) {
			return
		}
	}
}

// historyStore is the part of *liner.State that persists history.
type historyStore interface {
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
}

// loadHistory reads the history file; a missing file is not an error.
func loadHistory(h historyStore, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := h.ReadHistory(f); err != nil {
		slog.Warn("failed to read history",
			slog.String("path", path),
			slog.Any("error", err))
	}
}

func saveHistory(h historyStore, path string) {
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("failed to write history",
			slog.String("path", path),
			slog.Any("error", err))
		return
	}
	defer f.Close()
	if _, err := h.WriteHistory(f); err != nil {
		slog.Warn("failed to write history",
			slog.String("path", path),
			slog.Any("error", err))
	}
}

// readInput reads lines until the brackets balance. Ctrl-C drops the pending
// input; EOF ends the session.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := Prompt
		if b.Len() > 0 {
			prompt = ContinuationPrompt
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !Incomplete(b.String()) {
			return b.String(), true
		}
	}
}
