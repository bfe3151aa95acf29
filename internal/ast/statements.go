package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/token"
)

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}
func (es *ExpressionStatement) Pos() token.Token { return es.Token }

type PrintStatement struct {
	Token  token.Token
	Values []Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintStatement) String() string {
	return "print " + joinExpressions(ps.Values) + ";"
}
func (ps *PrintStatement) Pos() token.Token { return ps.Token }

// LetStatement covers let, var, const and `name := value`.
type LetStatement struct {
	Token   token.Token
	Name    *Identifier
	Type    *TypeRef
	Value   Expression // nil when declared without an initializer
	Mutable bool
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) String() string {
	var out bytes.Buffer
	out.WriteString(ls.TokenLiteral() + " " + ls.Name.String())
	if ls.Type != nil {
		out.WriteString(": " + ls.Type.String())
	}
	if ls.Value != nil {
		out.WriteString(" = " + ls.Value.String())
	}
	out.WriteString(";")
	return out.String()
}
func (ls *LetStatement) Pos() token.Token { return ls.Token }

type AssignStatement struct {
	Token token.Token // the '=' token
	Name  *Identifier
	Value Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	return as.Name.String() + " = " + as.Value.String() + ";"
}
func (as *AssignStatement) Pos() token.Token { return as.Token }

// CompoundAssignStatement is `target op= value`; Target is an Identifier,
// IndexExpression or GetExpression. `x++` is parsed as `x += 1`.
type CompoundAssignStatement struct {
	Token    token.Token
	Target   Expression
	Operator string // the binary operator, e.g. "+"
	Value    Expression
}

func (cs *CompoundAssignStatement) statementNode()       {}
func (cs *CompoundAssignStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *CompoundAssignStatement) String() string {
	return cs.Target.String() + " " + cs.Operator + "= " + cs.Value.String() + ";"
}
func (cs *CompoundAssignStatement) Pos() token.Token { return cs.Token }

type IndexAssignStatement struct {
	Token token.Token
	Left  Expression
	Index Expression
	Value Expression
}

func (is *IndexAssignStatement) statementNode()       {}
func (is *IndexAssignStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IndexAssignStatement) String() string {
	return is.Left.String() + "[" + is.Index.String() + "] = " + is.Value.String() + ";"
}
func (is *IndexAssignStatement) Pos() token.Token { return is.Token }

// SetStatement is `object.name = value`.
type SetStatement struct {
	Token  token.Token
	Object Expression
	Name   string
	Value  Expression
}

func (ss *SetStatement) statementNode()       {}
func (ss *SetStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SetStatement) String() string {
	return ss.Object.String() + "." + ss.Name + " = " + ss.Value.String() + ";"
}
func (ss *SetStatement) Pos() token.Token { return ss.Token }

type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}
func (bs *BlockStatement) Pos() token.Token { return bs.Token }

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil, a block or another IfStatement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if " + is.Condition.String() + " " + is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else " + is.Alternative.String())
	}
	return out.String()
}
func (is *IfStatement) Pos() token.Token { return is.Token }

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}
func (ws *WhileStatement) Pos() token.Token { return ws.Token }

type DoWhileStatement struct {
	Token     token.Token
	Body      *BlockStatement
	Condition Expression
}

func (dw *DoWhileStatement) statementNode()       {}
func (dw *DoWhileStatement) TokenLiteral() string { return dw.Token.Literal }
func (dw *DoWhileStatement) String() string {
	return "do " + dw.Body.String() + " while " + dw.Condition.String() + ";"
}
func (dw *DoWhileStatement) Pos() token.Token { return dw.Token }

type LoopStatement struct {
	Token token.Token
	Body  *BlockStatement
}

func (ls *LoopStatement) statementNode()       {}
func (ls *LoopStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LoopStatement) String() string       { return "loop " + ls.Body.String() }
func (ls *LoopStatement) Pos() token.Token     { return ls.Token }

// ForStatement iterates Iterable; more than one variable destructures each element.
type ForStatement struct {
	Token     token.Token
	Variables []*Identifier
	Iterable  Expression
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string {
	names := make([]string, 0, len(fs.Variables))
	for _, v := range fs.Variables {
		names = append(names, v.Value)
	}
	vars := names[0]
	if len(names) > 1 {
		vars = "(" + strings.Join(names, ", ") + ")"
	}
	return "for " + vars + " in " + fs.Iterable.String() + " " + fs.Body.String()
}
func (fs *ForStatement) Pos() token.Token { return fs.Token }

type RepeatStatement struct {
	Token token.Token
	Count Expression
	Body  *BlockStatement
}

func (rs *RepeatStatement) statementNode()       {}
func (rs *RepeatStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RepeatStatement) String() string {
	return "repeat " + rs.Count.String() + " " + rs.Body.String()
}
func (rs *RepeatStatement) Pos() token.Token { return rs.Token }

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string       { return "break;" }
func (bs *BreakStatement) Pos() token.Token     { return bs.Token }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) String() string       { return "continue;" }
func (cs *ContinueStatement) Pos() token.Token     { return cs.Token }

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return;"
	}
	return "return " + rs.ReturnValue.String() + ";"
}
func (rs *ReturnStatement) Pos() token.Token { return rs.Token }

type FunctionStatement struct {
	Token      token.Token
	Name       *Identifier
	Parameters []*Parameter
	ReturnType *TypeRef
	Body       *BlockStatement // nil for a trait requirement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *FunctionStatement) String() string {
	params := make([]string, 0, len(fs.Parameters))
	for _, p := range fs.Parameters {
		params = append(params, p.String())
	}
	var out bytes.Buffer
	out.WriteString("func " + fs.Name.String() + "(" + strings.Join(params, ", ") + ")")
	if fs.ReturnType != nil {
		out.WriteString(" -> " + fs.ReturnType.String())
	}
	if fs.Body != nil {
		out.WriteString(" " + fs.Body.String())
	} else {
		out.WriteString(";")
	}
	return out.String()
}
func (fs *FunctionStatement) Pos() token.Token { return fs.Token }

type FieldDecl struct {
	Name *Identifier
	Type *TypeRef
}

type StructStatement struct {
	Token  token.Token
	Name   *Identifier
	Fields []*FieldDecl
}

func (ss *StructStatement) statementNode()       {}
func (ss *StructStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *StructStatement) String() string {
	var out bytes.Buffer
	out.WriteString("struct " + ss.Name.String() + " { ")
	for _, f := range ss.Fields {
		out.WriteString(f.Name.String())
		if f.Type != nil {
			out.WriteString(": " + f.Type.String())
		}
		out.WriteString("; ")
	}
	out.WriteString("}")
	return out.String()
}
func (ss *StructStatement) Pos() token.Token { return ss.Token }

type Visibility int

const (
	Public Visibility = iota
	Private
)

type MemberKind int

const (
	MethodMember MemberKind = iota
	GetterMember
	SetterMember
)

type ClassField struct {
	Name       *Identifier
	Type       *TypeRef
	Value      Expression
	Visibility Visibility
	Static     bool
	Lazy       bool
	Const      bool
}

type ClassMethod struct {
	Function   *FunctionStatement
	Visibility Visibility
	Static     bool
	Kind       MemberKind
}

type ClassStatement struct {
	Token   token.Token
	Name    *Identifier
	Parent  *Identifier
	Traits  []*Identifier
	IsData  bool
	Sealed  bool
	Fields  []*ClassField
	Methods []*ClassMethod
}

func (cs *ClassStatement) statementNode()       {}
func (cs *ClassStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ClassStatement) String() string {
	var out bytes.Buffer
	if cs.IsData {
		out.WriteString("data ")
	}
	if cs.Sealed {
		out.WriteString("sealed ")
	}
	out.WriteString("class " + cs.Name.String())
	if cs.Parent != nil {
		out.WriteString(" extends " + cs.Parent.String())
	}
	if len(cs.Traits) > 0 {
		names := make([]string, 0, len(cs.Traits))
		for _, t := range cs.Traits {
			names = append(names, t.Value)
		}
		out.WriteString(" impl " + strings.Join(names, ", "))
	}
	out.WriteString(" { ")
	for _, f := range cs.Fields {
		if f.Visibility == Private {
			out.WriteString("priv ")
		}
		if f.Static {
			out.WriteString("static ")
		}
		if f.Lazy {
			out.WriteString("lazy ")
		}
		out.WriteString("let " + f.Name.String())
		if f.Value != nil {
			out.WriteString(" = " + f.Value.String())
		}
		out.WriteString("; ")
	}
	for _, m := range cs.Methods {
		if m.Visibility == Private {
			out.WriteString("priv ")
		}
		if m.Static {
			out.WriteString("static ")
		}
		switch m.Kind {
		case GetterMember:
			out.WriteString("get ")
		case SetterMember:
			out.WriteString("set ")
		}
		out.WriteString(m.Function.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}
func (cs *ClassStatement) Pos() token.Token { return cs.Token }

type EnumStatement struct {
	Token  token.Token
	Name   *Identifier
	Values []*Identifier
}

func (es *EnumStatement) statementNode()       {}
func (es *EnumStatement) TokenLiteral() string { return es.Token.Literal }
func (es *EnumStatement) String() string {
	names := make([]string, 0, len(es.Values))
	for _, v := range es.Values {
		names = append(names, v.Value)
	}
	return "enum " + es.Name.String() + " { " + strings.Join(names, ", ") + " }"
}
func (es *EnumStatement) Pos() token.Token { return es.Token }

type MatchArm struct {
	Token   token.Token
	Pattern Pattern
	Body    Statement
}

type MatchStatement struct {
	Token   token.Token
	Subject Expression
	Arms    []*MatchArm
}

func (ms *MatchStatement) statementNode()       {}
func (ms *MatchStatement) TokenLiteral() string { return ms.Token.Literal }
func (ms *MatchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("match " + ms.Subject.String() + " { ")
	for _, arm := range ms.Arms {
		out.WriteString(arm.Pattern.String() + " => " + arm.Body.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}
func (ms *MatchStatement) Pos() token.Token { return ms.Token }

type SwitchCase struct {
	Token  token.Token
	Values []Expression
	Body   *BlockStatement
}

type SwitchStatement struct {
	Token   token.Token
	Subject Expression
	Cases   []*SwitchCase
	Default *BlockStatement
}

func (ss *SwitchStatement) statementNode()       {}
func (ss *SwitchStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SwitchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("switch " + ss.Subject.String() + " { ")
	for _, c := range ss.Cases {
		out.WriteString("case " + joinExpressions(c.Values) + ": " + c.Body.String() + " ")
	}
	if ss.Default != nil {
		out.WriteString("default: " + ss.Default.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}
func (ss *SwitchStatement) Pos() token.Token { return ss.Token }

type ImportStatement struct {
	Token token.Token
	Path  string
	Alias *Identifier
}

func (is *ImportStatement) statementNode()       {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImportStatement) String() string {
	if is.Alias != nil {
		return "import " + strconv.Quote(is.Path) + " as " + is.Alias.String() + ";"
	}
	return "import " + strconv.Quote(is.Path) + ";"
}
func (is *ImportStatement) Pos() token.Token { return is.Token }

type ExportStatement struct {
	Token       token.Token
	Declaration Statement
}

func (es *ExportStatement) statementNode()       {}
func (es *ExportStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExportStatement) String() string       { return "export " + es.Declaration.String() }
func (es *ExportStatement) Pos() token.Token     { return es.Token }

type DeferStatement struct {
	Token token.Token
	Body  Statement
}

func (ds *DeferStatement) statementNode()       {}
func (ds *DeferStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DeferStatement) String() string       { return "defer " + ds.Body.String() }
func (ds *DeferStatement) Pos() token.Token     { return ds.Token }

type AssertStatement struct {
	Token     token.Token
	Condition Expression
	Message   Expression
}

func (as *AssertStatement) statementNode()       {}
func (as *AssertStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssertStatement) String() string {
	if as.Message != nil {
		return "assert " + as.Condition.String() + ", " + as.Message.String() + ";"
	}
	return "assert " + as.Condition.String() + ";"
}
func (as *AssertStatement) Pos() token.Token { return as.Token }

type TryStatement struct {
	Token     token.Token
	Body      *BlockStatement
	CatchName *Identifier
	Catch     *BlockStatement
	Finally   *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) String() string {
	var out bytes.Buffer
	out.WriteString("try " + ts.Body.String())
	if ts.Catch != nil {
		out.WriteString(" catch ")
		if ts.CatchName != nil {
			out.WriteString(ts.CatchName.String() + " ")
		}
		out.WriteString(ts.Catch.String())
	}
	if ts.Finally != nil {
		out.WriteString(" finally " + ts.Finally.String())
	}
	return out.String()
}
func (ts *TryStatement) Pos() token.Token { return ts.Token }

type ThrowStatement struct {
	Token token.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) String() string       { return "throw " + ts.Value.String() + ";" }
func (ts *ThrowStatement) Pos() token.Token     { return ts.Token }

// TraitStatement lists required methods (nil Body) and default methods.
type TraitStatement struct {
	Token   token.Token
	Name    *Identifier
	Methods []*FunctionStatement
}

func (ts *TraitStatement) statementNode()       {}
func (ts *TraitStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TraitStatement) String() string {
	var out bytes.Buffer
	out.WriteString("trait " + ts.Name.String() + " { ")
	for _, m := range ts.Methods {
		out.WriteString(m.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}
func (ts *TraitStatement) Pos() token.Token { return ts.Token }

// ImplStatement is `impl Trait for Type { ... }` or `impl Type { ... }`.
type ImplStatement struct {
	Token   token.Token
	Trait   *Identifier // nil for an inherent impl block
	Target  *Identifier
	Methods []*FunctionStatement
}

func (is *ImplStatement) statementNode()       {}
func (is *ImplStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImplStatement) String() string {
	var out bytes.Buffer
	out.WriteString("impl ")
	if is.Trait != nil {
		out.WriteString(is.Trait.String() + " for ")
	}
	out.WriteString(is.Target.String() + " { ")
	for _, m := range is.Methods {
		out.WriteString(m.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}
func (is *ImplStatement) Pos() token.Token { return is.Token }

// ExtendStatement adds methods to a built-in type such as int or list.
type ExtendStatement struct {
	Token   token.Token
	Target  *Identifier
	Methods []*FunctionStatement
}

func (es *ExtendStatement) statementNode()       {}
func (es *ExtendStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExtendStatement) String() string {
	var out bytes.Buffer
	out.WriteString("extend " + es.Target.String() + " { ")
	for _, m := range es.Methods {
		out.WriteString(m.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}
func (es *ExtendStatement) Pos() token.Token { return es.Token }

type GoStatement struct {
	Token token.Token
	Call  Expression
}

func (gs *GoStatement) statementNode()       {}
func (gs *GoStatement) TokenLiteral() string { return gs.Token.Literal }
func (gs *GoStatement) String() string       { return "go " + gs.Call.String() + ";" }
func (gs *GoStatement) Pos() token.Token     { return gs.Token }
