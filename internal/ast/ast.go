package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/token"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Positioned is implemented by every node that remembers its leading token.
type Positioned interface {
	Pos() token.Token
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
	}

	return out.String()
}

// TypeRef is an optional static annotation such as `int`, `list<int>` or `Point?`.
type TypeRef struct {
	Name     string
	Args     []*TypeRef
	Nullable bool
}

func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	var out strings.Builder
	out.WriteString(t.Name)
	if len(t.Args) > 0 {
		args := make([]string, 0, len(t.Args))
		for _, a := range t.Args {
			args = append(args, a.String())
		}
		out.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	if t.Nullable {
		out.WriteString("?")
	}
	return out.String()
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Pos() token.Token     { return i.Token }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }
func (il *IntegerLiteral) Pos() token.Token     { return il.Token }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }
func (fl *FloatLiteral) Pos() token.Token     { return fl.Token }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string       { return b.Token.Literal }
func (b *BooleanLiteral) Pos() token.Token     { return b.Token }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }
func (sl *StringLiteral) Pos() token.Token     { return sl.Token }

type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NullLiteral) String() string       { return "null" }
func (n *NullLiteral) Pos() token.Token     { return n.Token }

// InterpolatedString holds alternating text and expression parts of "a ${b} c".
type InterpolatedString struct {
	Token token.Token
	Parts []Expression
}

func (is *InterpolatedString) expressionNode()      {}
func (is *InterpolatedString) TokenLiteral() string { return is.Token.Literal }
func (is *InterpolatedString) String() string {
	var out bytes.Buffer
	out.WriteString("\"")
	for _, p := range is.Parts {
		if s, ok := p.(*StringLiteral); ok {
			out.WriteString(s.Value)
		} else {
			out.WriteString("${" + p.String() + "}")
		}
	}
	out.WriteString("\"")
	return out.String()
}
func (is *InterpolatedString) Pos() token.Token { return is.Token }

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}
func (pe *PrefixExpression) Pos() token.Token { return pe.Token }

// InfixExpression covers arithmetic, comparison, equality, logical, bitwise
// and membership operators.
type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}
func (ie *InfixExpression) Pos() token.Token { return ie.Token }

type RangeExpression struct {
	Token     token.Token
	Start     Expression
	End       Expression
	Inclusive bool
}

func (re *RangeExpression) expressionNode()      {}
func (re *RangeExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RangeExpression) String() string {
	op := ".."
	if re.Inclusive {
		op = "..="
	}
	return "(" + re.Start.String() + op + re.End.String() + ")"
}
func (re *RangeExpression) Pos() token.Token { return re.Token }

type CastExpression struct {
	Token  token.Token // the `as` token
	Value  Expression
	Target *TypeRef
}

func (ce *CastExpression) expressionNode()      {}
func (ce *CastExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CastExpression) String() string {
	return "(" + ce.Value.String() + " as " + ce.Target.String() + ")"
}
func (ce *CastExpression) Pos() token.Token { return ce.Token }

type IsExpression struct {
	Token  token.Token // the `is` token
	Value  Expression
	Target *TypeRef
}

func (ie *IsExpression) expressionNode()      {}
func (ie *IsExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IsExpression) String() string {
	return "(" + ie.Value.String() + " is " + ie.Target.String() + ")"
}
func (ie *IsExpression) Pos() token.Token { return ie.Token }

type TernaryExpression struct {
	Token       token.Token // the `?` token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}
func (te *TernaryExpression) Pos() token.Token { return te.Token }

// PipeExpression feeds Left as the first argument of Right: `x |> f(y)` is `f(x, y)`.
type PipeExpression struct {
	Token token.Token
	Left  Expression
	Right Expression
}

func (pe *PipeExpression) expressionNode()      {}
func (pe *PipeExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PipeExpression) String() string {
	return "(" + pe.Left.String() + " |> " + pe.Right.String() + ")"
}
func (pe *PipeExpression) Pos() token.Token { return pe.Token }

// ComposeExpression builds `x => Right(Left(x))`.
type ComposeExpression struct {
	Token token.Token
	Left  Expression
	Right Expression
}

func (ce *ComposeExpression) expressionNode()      {}
func (ce *ComposeExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ComposeExpression) String() string {
	return "(" + ce.Left.String() + " >>> " + ce.Right.String() + ")"
}
func (ce *ComposeExpression) Pos() token.Token { return ce.Token }

type CoalesceExpression struct {
	Token token.Token
	Left  Expression
	Right Expression
}

func (ce *CoalesceExpression) expressionNode()      {}
func (ce *CoalesceExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CoalesceExpression) String() string {
	return "(" + ce.Left.String() + " ?? " + ce.Right.String() + ")"
}
func (ce *CoalesceExpression) Pos() token.Token { return ce.Token }

type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression  // Identifier, GetExpression, lambda ...
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExpressions(ce.Arguments) + ")"
}
func (ce *CallExpression) Pos() token.Token { return ce.Token }

type ListLiteral struct {
	Token    token.Token // the '[' token
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()      {}
func (ll *ListLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *ListLiteral) String() string {
	return "[" + joinExpressions(ll.Elements) + "]"
}
func (ll *ListLiteral) Pos() token.Token { return ll.Token }

type MapLiteral struct {
	Token  token.Token // the '{' token
	Keys   []Expression
	Values []Expression
}

func (ml *MapLiteral) expressionNode()      {}
func (ml *MapLiteral) TokenLiteral() string { return ml.Token.Literal }
func (ml *MapLiteral) String() string {
	pairs := make([]string, 0, len(ml.Keys))
	for i, k := range ml.Keys {
		pairs = append(pairs, k.String()+": "+ml.Values[i].String())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}
func (ml *MapLiteral) Pos() token.Token { return ml.Token }

type IndexExpression struct {
	Token token.Token // The [ token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}
func (ie *IndexExpression) Pos() token.Token { return ie.Token }

// SliceExpression is `left[start:end]`; either bound may be nil.
type SliceExpression struct {
	Token token.Token
	Left  Expression
	Start Expression
	End   Expression
}

func (se *SliceExpression) expressionNode()      {}
func (se *SliceExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SliceExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(" + se.Left.String() + "[")
	if se.Start != nil {
		out.WriteString(se.Start.String())
	}
	out.WriteString(":")
	if se.End != nil {
		out.WriteString(se.End.String())
	}
	out.WriteString("])")
	return out.String()
}
func (se *SliceExpression) Pos() token.Token { return se.Token }

// GetExpression is `object.name`, or `object?.name` when Optional is set.
type GetExpression struct {
	Token    token.Token
	Object   Expression
	Name     string
	Optional bool
}

func (ge *GetExpression) expressionNode()      {}
func (ge *GetExpression) TokenLiteral() string { return ge.Token.Literal }
func (ge *GetExpression) String() string {
	if ge.Optional {
		return ge.Object.String() + "?." + ge.Name
	}
	return ge.Object.String() + "." + ge.Name
}
func (ge *GetExpression) Pos() token.Token { return ge.Token }

type ThisExpression struct {
	Token token.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThisExpression) String() string       { return "this" }
func (te *ThisExpression) Pos() token.Token     { return te.Token }

// SuperExpression is `super.method`, resolved against the parent class.
type SuperExpression struct {
	Token  token.Token
	Method string
}

func (se *SuperExpression) expressionNode()      {}
func (se *SuperExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SuperExpression) String() string       { return "super." + se.Method }
func (se *SuperExpression) Pos() token.Token     { return se.Token }

type Parameter struct {
	Name     *Identifier
	Type     *TypeRef
	Default  Expression
	Variadic bool
}

func (p *Parameter) String() string {
	var out bytes.Buffer
	if p.Variadic {
		out.WriteString("...")
	}
	out.WriteString(p.Name.String())
	if p.Type != nil {
		out.WriteString(": " + p.Type.String())
	}
	if p.Default != nil {
		out.WriteString(" = " + p.Default.String())
	}
	return out.String()
}

// LambdaExpression has either an expression Body or a Block body.
type LambdaExpression struct {
	Token      token.Token
	Parameters []*Parameter
	Body       Expression
	Block      *BlockStatement
}

func (le *LambdaExpression) expressionNode()      {}
func (le *LambdaExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LambdaExpression) String() string {
	params := make([]string, 0, len(le.Parameters))
	for _, p := range le.Parameters {
		params = append(params, p.String())
	}
	body := ""
	if le.Block != nil {
		body = le.Block.String()
	} else if le.Body != nil {
		body = le.Body.String()
	}
	return "|" + strings.Join(params, ", ") + "| " + body
}
func (le *LambdaExpression) Pos() token.Token { return le.Token }

type SpreadExpression struct {
	Token token.Token
	Value Expression
}

func (se *SpreadExpression) expressionNode()      {}
func (se *SpreadExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SpreadExpression) String() string       { return "..." + se.Value.String() }
func (se *SpreadExpression) Pos() token.Token     { return se.Token }

// InputExpression reads one line from the program input, optionally casting it.
type InputExpression struct {
	Token  token.Token
	Target *TypeRef
	Prompt Expression
}

func (ie *InputExpression) expressionNode()      {}
func (ie *InputExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InputExpression) String() string {
	var out bytes.Buffer
	out.WriteString("input")
	if ie.Target != nil {
		out.WriteString("<" + ie.Target.String() + ">")
	}
	out.WriteString("(")
	if ie.Prompt != nil {
		out.WriteString(ie.Prompt.String())
	}
	out.WriteString(")")
	return out.String()
}
func (ie *InputExpression) Pos() token.Token { return ie.Token }

func joinExpressions(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}
