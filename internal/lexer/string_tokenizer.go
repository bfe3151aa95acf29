package lexer

import (
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/token"
)

// readString reads a quoted literal, the opening quote being the current rune.
// Escapes are resolved here; `${` markers are left in place for the parser.
func (l *Lexer) readString(quote rune) token.Token {
	var result strings.Builder
	startPosition, line, col := l.position, l.line, l.column

	l.readChar() // consume the opening quote

	for {
		if l.ch == 0 {
			l.addError(line, col, "unterminated string literal")
			return l.newToken(token.ILLEGAL, result.String(), startPosition, line, col)
		}

		if l.ch == quote {
			l.readChar() // consume the closing quote
			break
		}

		if l.ch == '\\' {
			l.readChar() // move to the escaped character
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 'r':
				result.WriteRune('\r')
			case '0':
				result.WriteRune(0)
			case '\\':
				result.WriteRune('\\')
			case '"':
				result.WriteRune('"')
			case '\'':
				result.WriteRune('\'')
			case 0:
				continue
			default:
				result.WriteRune('\\')
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}

		l.readChar()
	}

	return l.newToken(token.STRING, result.String(), startPosition, line, col)
}
