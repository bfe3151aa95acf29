package lexer

import (
	"log/slog"

	"github.com/yen-lang/Yen-sub000/internal/token"
)

// Tokenize scans the whole source and returns the tokens including the
// trailing EOF token, together with any lex errors.
func Tokenize(source string) ([]token.Token, []string) {
	l := New(source)
	tokens := make([]token.Token, 0, len(source)/4+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if len(l.errors) > 0 {
		slog.Debug("lexing finished with errors",
			slog.Int("tokens", len(tokens)),
			slog.Int("errors", len(l.errors)))
	}
	return tokens, l.Errors()
}
