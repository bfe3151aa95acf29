package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // add, foobar, x, y, ...
	INT    = "INT"    // 1343456
	FLOAT  = "FLOAT"  // 3.14
	STRING = "STRING" // "foobar"

	// Operators
	ASSIGN      = "="
	WALRUS      = ":="
	PLUS        = "+"
	MINUS       = "-"
	BANG        = "!"
	ASTERISK    = "*"
	POWER       = "**"
	SLASH       = "/"
	PERCENT     = "%"
	INCREMENT   = "++"
	DECREMENT   = "--"
	QUESTION    = "?"
	OPT_CHAIN   = "?."
	COALESCE    = "??"
	PIPE        = "|>"
	COMPOSE     = ">>>"
	ARROW       = "->"
	ROCKET      = "=>"
	RANGE       = ".."
	RANGE_INCL  = "..="
	ELLIPSIS    = "..."
	COMPLEMENT  = "~"
	BITWISE_AND = "&"
	BITWISE_OR  = "|"
	BITWISE_XOR = "^"
	SHIFT_LEFT  = "<<"
	SHIFT_RIGHT = ">>"

	PLUS_ASSIGN     = "+="
	MINUS_ASSIGN    = "-="
	ASTERISK_ASSIGN = "*="
	SLASH_ASSIGN    = "/="
	PERCENT_ASSIGN  = "%="
	POWER_ASSIGN    = "**="
	AND_ASSIGN      = "&="
	OR_ASSIGN       = "|="
	XOR_ASSIGN      = "^="
	SHL_ASSIGN      = "<<="
	SHR_ASSIGN      = ">>="

	LOGICAL_AND = "&&"
	LOGICAL_OR  = "||"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	EQ     = "=="
	NOT_EQ = "!="

	// Delimiters
	PERIOD    = "."
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	LET      = "LET"
	VAR      = "VAR"
	CONST    = "CONST"
	FUNCTION = "FUNCTION"
	RETURN   = "RETURN"
	PRINT    = "PRINT"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	NULL     = "NULL"
	IF       = "IF"
	ELSE     = "ELSE"
	WHILE    = "WHILE"
	DO       = "DO"
	LOOP     = "LOOP"
	FOR      = "FOR"
	IN       = "IN"
	BREAK    = "BREAK"
	CONTINUE = "CONTINUE"
	REPEAT   = "REPEAT"
	MATCH    = "MATCH"
	SWITCH   = "SWITCH"
	CASE     = "CASE"
	DEFAULT  = "DEFAULT"
	STRUCT   = "STRUCT"
	CLASS    = "CLASS"
	EXTENDS  = "EXTENDS"
	PUB      = "PUB"
	PRIV     = "PRIV"
	STATIC   = "STATIC"
	THIS     = "THIS"
	SUPER    = "SUPER"
	ENUM     = "ENUM"
	TRAIT    = "TRAIT"
	IMPL     = "IMPL"
	EXTEND   = "EXTEND"
	IMPORT   = "IMPORT"
	EXPORT   = "EXPORT"
	AS       = "AS"
	IS       = "IS"
	DEFER    = "DEFER"
	ASSERT   = "ASSERT"
	TRY      = "TRY"
	CATCH    = "CATCH"
	FINALLY  = "FINALLY"
	THROW    = "THROW"
	GO       = "GO"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
	Line     int
	Column   int
}

var keywords = map[string]TokenType{
	// constants
	"null":  NULL,
	"nil":   NULL,
	"true":  TRUE,
	"false": FALSE,

	// declarations
	"let":      LET,
	"var":      VAR,
	"const":    CONST,
	"func":     FUNCTION,
	"fn":       FUNCTION,
	"function": FUNCTION,
	"struct":   STRUCT,
	"class":    CLASS,
	"extends":  EXTENDS,
	"pub":      PUB,
	"priv":     PRIV,
	"static":   STATIC,
	"this":     THIS,
	"super":    SUPER,
	"enum":     ENUM,
	"trait":    TRAIT,
	"impl":     IMPL,
	"extend":   EXTEND,

	// flow control
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"do":       DO,
	"loop":     LOOP,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"repeat":   REPEAT,
	"match":    MATCH,
	"switch":   SWITCH,
	"case":     CASE,
	"default":  DEFAULT,
	"return":   RETURN,
	"go":       GO,

	// modules
	"import": IMPORT,
	"export": EXPORT,

	// operators spelled as words
	"as": AS,
	"is": IS,

	// error handling
	"defer":   DEFER,
	"assert":  ASSERT,
	"try":     TRY,
	"catch":   CATCH,
	"finally": FINALLY,
	"throw":   THROW,

	"print": PRINT,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether t was produced from a reserved word.
func IsKeyword(t TokenType) bool {
	for _, k := range keywords {
		if k == t {
			return true
		}
	}
	return false
}
