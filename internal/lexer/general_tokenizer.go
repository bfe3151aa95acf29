package lexer

import (
	"github.com/yen-lang/Yen-sub000/internal/token"
)

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	if !l.skipWhitespace() {
		return l.newToken(token.ILLEGAL, "/*", l.position, l.line, l.column)
	}

	startPosition, line, col := l.position, l.line, l.column

	switch l.ch {
	case '=':
		tok = l.handleCompoundToken(token.ASSIGN,
			operator{"=", token.EQ},
			operator{">", token.ROCKET})
	case '+':
		tok = l.handleCompoundToken(token.PLUS,
			operator{"+", token.INCREMENT},
			operator{"=", token.PLUS_ASSIGN})
	case '-':
		tok = l.handleCompoundToken(token.MINUS,
			operator{"-", token.DECREMENT},
			operator{"=", token.MINUS_ASSIGN},
			operator{">", token.ARROW})
	case '*':
		tok = l.handleCompoundToken(token.ASTERISK,
			operator{"*=", token.POWER_ASSIGN},
			operator{"*", token.POWER},
			operator{"=", token.ASTERISK_ASSIGN})
	case '/':
		tok = l.handleCompoundToken(token.SLASH, operator{"=", token.SLASH_ASSIGN})
	case '%':
		tok = l.handleCompoundToken(token.PERCENT, operator{"=", token.PERCENT_ASSIGN})
	case '!':
		tok = l.handleCompoundToken(token.BANG, operator{"=", token.NOT_EQ})
	case '~':
		tok = l.newToken(token.COMPLEMENT, "~", startPosition, line, col)
	case '&':
		tok = l.handleCompoundToken(token.BITWISE_AND,
			operator{"&", token.LOGICAL_AND},
			operator{"=", token.AND_ASSIGN})
	case '|':
		tok = l.handleCompoundToken(token.BITWISE_OR,
			operator{"|", token.LOGICAL_OR},
			operator{">", token.PIPE},
			operator{"=", token.OR_ASSIGN})
	case '^':
		tok = l.handleCompoundToken(token.BITWISE_XOR, operator{"=", token.XOR_ASSIGN})
	case '<':
		tok = l.handleCompoundToken(token.LT,
			operator{"<=", token.SHL_ASSIGN},
			operator{"<", token.SHIFT_LEFT},
			operator{"=", token.LT_EQ})
	case '>':
		tok = l.handleCompoundToken(token.GT,
			operator{">>", token.COMPOSE},
			operator{">=", token.SHR_ASSIGN},
			operator{">", token.SHIFT_RIGHT},
			operator{"=", token.GT_EQ})
	case '?':
		tok = l.handleCompoundToken(token.QUESTION,
			operator{".", token.OPT_CHAIN},
			operator{"?", token.COALESCE})
	case ':':
		tok = l.handleCompoundToken(token.COLON, operator{"=", token.WALRUS})
	case '.':
		tok = l.handleCompoundToken(token.PERIOD,
			operator{"..", token.ELLIPSIS},
			operator{".=", token.RANGE_INCL},
			operator{".", token.RANGE})
	case ';':
		tok = l.newToken(token.SEMICOLON, ";", startPosition, line, col)
	case ',':
		tok = l.newToken(token.COMMA, ",", startPosition, line, col)
	case '(':
		tok = l.newToken(token.LPAREN, "(", startPosition, line, col)
	case ')':
		tok = l.newToken(token.RPAREN, ")", startPosition, line, col)
	case '{':
		tok = l.newToken(token.LBRACE, "{", startPosition, line, col)
	case '}':
		tok = l.newToken(token.RBRACE, "}", startPosition, line, col)
	case '[':
		tok = l.newToken(token.LBRACKET, "[", startPosition, line, col)
	case ']':
		tok = l.newToken(token.RBRACKET, "]", startPosition, line, col)
	case '"', '\'':
		// the string reader consumes the closing quote itself
		return l.readString(l.ch)
	case 0:
		return l.newToken(token.EOF, "", startPosition, line, col)
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return l.newToken(token.LookupIdent(literal), literal, startPosition, line, col)
		} else if isDigit(l.ch) {
			literal, isFloat := l.readNumber()
			if isFloat {
				return l.newToken(token.FLOAT, literal, startPosition, line, col)
			}
			return l.newToken(token.INT, literal, startPosition, line, col)
		}
		l.addError(line, col, "invalid character %q", l.ch)
		tok = l.newToken(token.ILLEGAL, string(l.ch), startPosition, line, col)
	}

	l.readChar()
	return tok
}
