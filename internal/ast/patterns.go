package ast

import (
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/token"
)

// Pattern is the node family used only by match arms.
type Pattern interface {
	Node
	patternNode()
}

type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode()         {}
func (wp *WildcardPattern) TokenLiteral() string { return wp.Token.Literal }
func (wp *WildcardPattern) String() string       { return "_" }

// LiteralPattern matches by structural equality with the value of Value,
// which is a literal or a qualified constant such as Color.Red.
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (lp *LiteralPattern) patternNode()         {}
func (lp *LiteralPattern) TokenLiteral() string { return lp.Token.Literal }
func (lp *LiteralPattern) String() string       { return lp.Value.String() }

type BindingPattern struct {
	Token token.Token
	Name  *Identifier
}

func (bp *BindingPattern) patternNode()         {}
func (bp *BindingPattern) TokenLiteral() string { return bp.Token.Literal }
func (bp *BindingPattern) String() string       { return bp.Name.String() }

type RangePattern struct {
	Token     token.Token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (rp *RangePattern) patternNode()         {}
func (rp *RangePattern) TokenLiteral() string { return rp.Token.Literal }
func (rp *RangePattern) String() string {
	if rp.Inclusive {
		return rp.Start.String() + "..=" + rp.End.String()
	}
	return rp.Start.String() + ".." + rp.End.String()
}

type TuplePattern struct {
	Token    token.Token
	Elements []Pattern
}

func (tp *TuplePattern) patternNode()         {}
func (tp *TuplePattern) TokenLiteral() string { return tp.Token.Literal }
func (tp *TuplePattern) String() string {
	parts := make([]string, 0, len(tp.Elements))
	for _, e := range tp.Elements {
		parts = append(parts, e.String())
	}
	if tp.Token.Type == token.LBRACKET {
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type FieldPattern struct {
	Name    *Identifier
	Pattern Pattern // a BindingPattern of the field's own name when omitted
}

type StructPattern struct {
	Token  token.Token
	Name   *Identifier
	Fields []*FieldPattern
}

func (sp *StructPattern) patternNode()         {}
func (sp *StructPattern) TokenLiteral() string { return sp.Token.Literal }
func (sp *StructPattern) String() string {
	parts := make([]string, 0, len(sp.Fields))
	for _, f := range sp.Fields {
		parts = append(parts, f.Name.String()+": "+f.Pattern.String())
	}
	return sp.Name.String() + " { " + strings.Join(parts, ", ") + " }"
}

type OrPattern struct {
	Token        token.Token
	Alternatives []Pattern
}

func (op *OrPattern) patternNode()         {}
func (op *OrPattern) TokenLiteral() string { return op.Token.Literal }
func (op *OrPattern) String() string {
	parts := make([]string, 0, len(op.Alternatives))
	for _, a := range op.Alternatives {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " | ")
}

type GuardedPattern struct {
	Token   token.Token // the `when` / `if` token
	Pattern Pattern
	Guard   Expression
}

func (gp *GuardedPattern) patternNode()         {}
func (gp *GuardedPattern) TokenLiteral() string { return gp.Token.Literal }
func (gp *GuardedPattern) String() string {
	return gp.Pattern.String() + " when " + gp.Guard.String()
}
