package evaluator

import (
	"fmt"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/object"
	"github.com/yen-lang/Yen-sub000/internal/pattern"
	"github.com/yen-lang/Yen-sub000/internal/token"
)

func (e *Evaluator) execute(stmt ast.Statement) (Result, error) {
	res, err := e.executeStatement(stmt)
	if err != nil {
		return Result{}, locate(err, stmt)
	}
	return res, nil
}

func (e *Evaluator) executeStatement(stmt ast.Statement) (Result, error) {
	switch node := stmt.(type) {
	case *ast.ExpressionStatement:
		val, err := e.evalExpression(node.Expression)
		if err != nil {
			return Result{}, err
		}
		return Result{Signal: Normal, Value: val}, nil

	case *ast.PrintStatement:
		return normal, e.execPrint(node)

	case *ast.LetStatement:
		return normal, e.execLet(node)

	case *ast.AssignStatement:
		val, err := e.evalExpression(node.Value)
		if err != nil {
			return Result{}, err
		}
		return normal, e.assign(node.Name.Value, val)

	case *ast.CompoundAssignStatement:
		return normal, e.execCompoundAssign(node)

	case *ast.IndexAssignStatement:
		container, err := e.evalExpression(node.Left)
		if err != nil {
			return Result{}, err
		}
		index, err := e.evalExpression(node.Index)
		if err != nil {
			return Result{}, err
		}
		val, err := e.evalExpression(node.Value)
		if err != nil {
			return Result{}, err
		}
		return normal, e.setIndex(node.Token, container, index, val)

	case *ast.SetStatement:
		return normal, e.execSet(node)

	case *ast.BlockStatement:
		return e.execBlock(node)

	case *ast.IfStatement:
		ok, err := e.condition(node.Condition)
		if err != nil {
			return Result{}, err
		}
		if ok {
			return e.execute(node.Consequence)
		}
		if node.Alternative != nil {
			return e.execute(node.Alternative)
		}
		return normal, nil

	case *ast.WhileStatement:
		return e.execWhile(node)

	case *ast.DoWhileStatement:
		return e.execDoWhile(node)

	case *ast.LoopStatement:
		for {
			res, err := e.execBlock(node.Body)
			if err != nil {
				return Result{}, err
			}
			if stop, out := loopControl(res); stop {
				return out, nil
			}
		}

	case *ast.ForStatement:
		return e.execFor(node)

	case *ast.RepeatStatement:
		return e.execRepeat(node)

	case *ast.BreakStatement:
		return Result{Signal: Break}, nil

	case *ast.ContinueStatement:
		return Result{Signal: Continue}, nil

	case *ast.ReturnStatement:
		val := object.Object(object.NULL)
		if node.ReturnValue != nil {
			var err error
			if val, err = e.evalExpression(node.ReturnValue); err != nil {
				return Result{}, err
			}
		}
		return Result{Signal: Return, Value: val}, nil

	case *ast.FunctionStatement:
		e.decls.Functions[node.Name.Value] = &object.Function{Name: node.Name.Value, Decl: node, Env: e.env}
		return normal, nil

	case *ast.StructStatement:
		e.registerStruct(node)
		return normal, nil

	case *ast.ClassStatement:
		return normal, e.registerClass(node)

	case *ast.EnumStatement:
		values := make([]string, 0, len(node.Values))
		for _, v := range node.Values {
			values = append(values, v.Value)
		}
		e.decls.Enums[node.Name.Value] = object.NewEnumDef(node.Name.Value, values)
		return normal, nil

	case *ast.TraitStatement:
		e.registerTrait(node)
		return normal, nil

	case *ast.ImplStatement:
		return normal, e.registerImpl(node)

	case *ast.ExtendStatement:
		return normal, e.registerExtension(node.Target, nil, node.Methods)

	case *ast.MatchStatement:
		return e.execMatch(node)

	case *ast.SwitchStatement:
		return e.execSwitch(node)

	case *ast.ImportStatement:
		return normal, e.execImport(node)

	case *ast.ExportStatement:
		res, err := e.execute(node.Declaration)
		if err != nil {
			return Result{}, err
		}
		if name := declaredName(node.Declaration); name != "" {
			e.exports = append(e.exports, name)
		}
		return res, nil

	case *ast.DeferStatement:
		e.env.RegisterDefer(node.Body)
		return normal, nil

	case *ast.AssertStatement:
		return normal, e.execAssert(node)

	case *ast.TryStatement:
		return e.execTry(node)

	case *ast.ThrowStatement:
		val, err := e.evalExpression(node.Value)
		if err != nil {
			return Result{}, err
		}
		if rtErr, ok := val.(*object.Error); ok {
			return Result{}, rtErr
		}
		return Result{}, &object.Error{Kind: object.ThrownError, Message: val.Inspect(), Payload: val}

	case *ast.GoStatement:
		// runs synchronously; there is no scheduler
		_, err := e.evalExpression(node.Call)
		return normal, err
	}

	return Result{}, object.NewError(object.TypeError, "unsupported statement %T", stmt)
}

func (e *Evaluator) execBlock(block *ast.BlockStatement) (Result, error) {
	for _, stmt := range block.Statements {
		res, err := e.execute(stmt)
		if err != nil {
			return Result{}, err
		}
		if res.Signal != Normal {
			return res, nil
		}
	}
	return normal, nil
}

func (e *Evaluator) condition(expr ast.Expression) (bool, error) {
	val, err := e.evalExpression(expr)
	if err != nil {
		return false, err
	}
	ok, err := object.Truthy(val)
	if err != nil {
		return false, locate(err, expr)
	}
	return ok, nil
}

// loopControl interprets a loop body's result: stop reports whether the loop
// must end, and out is what the loop statement itself yields.
func loopControl(res Result) (stop bool, out Result) {
	switch res.Signal {
	case Break:
		return true, normal
	case Return:
		return true, res
	}
	return false, normal
}

func (e *Evaluator) execPrint(node *ast.PrintStatement) error {
	parts := make([]string, 0, len(node.Values))
	for _, v := range node.Values {
		val, err := e.evalExpression(v)
		if err != nil {
			return err
		}
		parts = append(parts, val.Inspect())
	}
	_, err := fmt.Fprintln(e.out, strings.Join(parts, " "))
	return err
}

func (e *Evaluator) execLet(node *ast.LetStatement) error {
	name := node.Name.Value
	if existing, ok := e.env.GetLocalBinding(name); ok && !existing.IsMutable {
		return fail(node.Token, object.TypeError, "cannot redeclare constant %s", name)
	}

	var val object.Object
	switch {
	case node.Value == nil:
		val = object.ZeroValue(node.Type)
	case e.isBareStructName(node.Value):
		val = e.zeroStruct(e.decls.Structs[node.Value.(*ast.Identifier).Value])
	default:
		var err error
		if val, err = e.evalExpression(node.Value); err != nil {
			return err
		}
	}

	val, err := e.conform(node.Token, name, val, node.Type)
	if err != nil {
		return err
	}
	if node.Mutable {
		e.env.Define(name, val, node.Type)
	} else {
		e.env.DefineConstant(name, val, node.Type)
	}
	return nil
}

// isBareStructName reports whether expr is just the name of a declared
// struct that is not shadowed by a variable.
func (e *Evaluator) isBareStructName(expr ast.Expression) bool {
	ident, ok := expr.(*ast.Identifier)
	if !ok {
		return false
	}
	if _, bound := e.env.Get(ident.Value); bound {
		return false
	}
	_, isStruct := e.decls.Structs[ident.Value]
	return isStruct
}

func (e *Evaluator) assign(name string, val object.Object) error {
	if binding, ok := e.env.GetBinding(name); ok && binding.Hint != nil {
		var err error
		if val, err = e.conform(token.Token{}, name, val, binding.Hint); err != nil {
			return err
		}
	}
	_, err := e.env.Assign(name, val)
	return err
}

func (e *Evaluator) execCompoundAssign(node *ast.CompoundAssignStatement) error {
	rhs, err := e.evalExpression(node.Value)
	if err != nil {
		return err
	}

	switch target := node.Target.(type) {
	case *ast.Identifier:
		current, err := e.evalIdentifier(target)
		if err != nil {
			return err
		}
		val, err := e.binaryOp(node.Token, node.Operator, current, rhs)
		if err != nil {
			return err
		}
		return e.assign(target.Value, val)

	case *ast.IndexExpression:
		container, err := e.evalExpression(target.Left)
		if err != nil {
			return err
		}
		index, err := e.evalExpression(target.Index)
		if err != nil {
			return err
		}
		current, err := e.index(target.Token, container, index)
		if err != nil {
			return err
		}
		val, err := e.binaryOp(node.Token, node.Operator, current, rhs)
		if err != nil {
			return err
		}
		return e.setIndex(node.Token, container, index, val)

	case *ast.GetExpression:
		if cls, ok := e.unboundClass(target.Object); ok {
			holder, found := cls.FindStatic(target.Name)
			if !found {
				return fail(node.Token, object.NameError, "class %s has no static field %s", cls.Name, target.Name)
			}
			current, _ := holder.Statics.Get(target.Name)
			val, err := e.binaryOp(node.Token, node.Operator, current, rhs)
			if err != nil {
				return err
			}
			return e.setStatic(node.Token, cls, target.Name, val)
		}
		obj, err := e.evalExpression(target.Object)
		if err != nil {
			return err
		}
		current, err := e.getMember(target, obj)
		if err != nil {
			return err
		}
		val, err := e.binaryOp(node.Token, node.Operator, current, rhs)
		if err != nil {
			return err
		}
		return e.setMember(node.Token, obj, target.Name, val)
	}
	return fail(node.Token, object.TypeError, "invalid assignment target %s", node.Target.String())
}

func (e *Evaluator) execSet(node *ast.SetStatement) error {
	val, err := e.evalExpression(node.Value)
	if err != nil {
		return err
	}
	if cls, ok := e.unboundClass(node.Object); ok {
		return e.setStatic(node.Token, cls, node.Name, val)
	}
	obj, err := e.evalExpression(node.Object)
	if err != nil {
		return err
	}
	return e.setMember(node.Token, obj, node.Name, val)
}

// unboundClass reports the class named by expr when expr is an identifier
// not shadowed by a variable.
func (e *Evaluator) unboundClass(expr ast.Expression) (*object.ClassDef, bool) {
	ident, ok := expr.(*ast.Identifier)
	if !ok {
		return nil, false
	}
	if _, bound := e.env.Get(ident.Value); bound {
		return nil, false
	}
	cls, ok := e.decls.Classes[ident.Value]
	return cls, ok
}

func (e *Evaluator) execWhile(node *ast.WhileStatement) (Result, error) {
	for {
		ok, err := e.condition(node.Condition)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return normal, nil
		}
		res, err := e.execBlock(node.Body)
		if err != nil {
			return Result{}, err
		}
		if stop, out := loopControl(res); stop {
			return out, nil
		}
	}
}

func (e *Evaluator) execDoWhile(node *ast.DoWhileStatement) (Result, error) {
	for {
		res, err := e.execBlock(node.Body)
		if err != nil {
			return Result{}, err
		}
		if stop, out := loopControl(res); stop {
			return out, nil
		}
		ok, err := e.condition(node.Condition)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return normal, nil
		}
	}
}

func (e *Evaluator) execRepeat(node *ast.RepeatStatement) (Result, error) {
	count, err := e.evalExpression(node.Count)
	if err != nil {
		return Result{}, err
	}
	n, ok := count.(*object.Integer)
	if !ok {
		return Result{}, fail(node.Token, object.TypeError, "repeat count must be int, got %s", object.TypeName(count))
	}
	for i := int64(0); i < n.Value; i++ {
		res, err := e.execBlock(node.Body)
		if err != nil {
			return Result{}, err
		}
		if stop, out := loopControl(res); stop {
			return out, nil
		}
	}
	return normal, nil
}

func (e *Evaluator) execFor(node *ast.ForStatement) (Result, error) {
	iterable, err := e.evalExpression(node.Iterable)
	if err != nil {
		return Result{}, err
	}
	items, err := e.iterationItems(node, iterable)
	if err != nil {
		return Result{}, err
	}
	for _, item := range items {
		for i, v := range node.Variables {
			e.env.Define(v.Value, item[i], nil)
		}
		res, err := e.execBlock(node.Body)
		if err != nil {
			return Result{}, err
		}
		if stop, out := loopControl(res); stop {
			return out, nil
		}
	}
	return normal, nil
}

// iterationItems snapshots what a for loop visits, one slice of values per
// iteration, shaped to the number of loop variables. Two variables over a map
// receive key and value; over a list they destructure pair elements or,
// for other elements, receive index and element.
func (e *Evaluator) iterationItems(node *ast.ForStatement, iterable object.Object) ([][]object.Object, error) {
	width := len(node.Variables)
	var items [][]object.Object

	switch it := iterable.(type) {
	case *object.List:
		for i, el := range it.Elements {
			if width == 1 {
				items = append(items, []object.Object{el})
				continue
			}
			if pair, ok := el.(*object.List); ok && len(pair.Elements) == width {
				items = append(items, append([]object.Object(nil), pair.Elements...))
				continue
			}
			if width == 2 {
				items = append(items, []object.Object{&object.Integer{Value: int64(i)}, el})
				continue
			}
			return nil, fail(node.Token, object.TypeError, "cannot destructure %s into %d variables", object.TypeName(el), width)
		}

	case *object.Map:
		if width > 2 {
			return nil, fail(node.Token, object.TypeError, "map iteration takes one or two variables")
		}
		for _, k := range it.Keys() {
			key := &object.String{Value: k}
			if width == 1 {
				items = append(items, []object.Object{key})
				continue
			}
			v, _ := it.Get(k)
			items = append(items, []object.Object{key, v})
		}

	case *object.String:
		if width != 1 {
			return nil, fail(node.Token, object.TypeError, "string iteration takes one variable")
		}
		for _, r := range it.Value {
			items = append(items, []object.Object{&object.String{Value: string(r)}})
		}

	default:
		return nil, fail(node.Token, object.TypeError, "cannot iterate over %s", object.TypeName(iterable))
	}
	return items, nil
}

func (e *Evaluator) execMatch(node *ast.MatchStatement) (Result, error) {
	subject, err := e.evalExpression(node.Subject)
	if err != nil {
		return Result{}, err
	}
	for _, arm := range node.Arms {
		bindings := pattern.Bindings{}
		matched, err := pattern.Match(e, arm.Pattern, subject, bindings)
		if err != nil {
			return Result{}, locate(err, node)
		}
		if !matched {
			continue
		}
		for name, v := range bindings {
			e.env.Define(name, v, nil)
		}
		return e.execute(arm.Body)
	}
	return Result{}, fail(node.Token, object.MatchExhaustionError, "no arm matched %s", subject.Inspect())
}

func (e *Evaluator) execSwitch(node *ast.SwitchStatement) (Result, error) {
	subject, err := e.evalExpression(node.Subject)
	if err != nil {
		return Result{}, err
	}
	for _, c := range node.Cases {
		for _, expr := range c.Values {
			val, err := e.evalExpression(expr)
			if err != nil {
				return Result{}, err
			}
			if object.Equals(subject, val) {
				return e.execBlock(c.Body)
			}
		}
	}
	if node.Default != nil {
		return e.execBlock(node.Default)
	}
	return normal, nil
}

func (e *Evaluator) execAssert(node *ast.AssertStatement) error {
	ok, err := e.condition(node.Condition)
	if err != nil || ok {
		return err
	}
	if node.Message == nil {
		return fail(node.Token, object.AssertionError, "assertion failed: %s", node.Condition.String())
	}
	msg, err := e.evalExpression(node.Message)
	if err != nil {
		return err
	}
	return fail(node.Token, object.AssertionError, "%s", msg.Inspect())
}

func (e *Evaluator) execTry(node *ast.TryStatement) (Result, error) {
	res, err := e.execBlock(node.Body)
	if err != nil && node.Catch != nil {
		rtErr := object.AsError(err)
		if node.CatchName != nil {
			var caught object.Object = rtErr
			if rtErr.Payload != nil {
				caught = rtErr.Payload
			}
			e.env.Define(node.CatchName.Value, caught, nil)
		}
		res, err = e.execBlock(node.Catch)
	}
	if node.Finally != nil {
		fres, ferr := e.execBlock(node.Finally)
		if ferr != nil {
			return Result{}, ferr
		}
		if fres.Signal != Normal {
			return fres, nil
		}
	}
	return res, err
}

// declaredName is the name an exported declaration introduces.
func declaredName(stmt ast.Statement) string {
	switch d := stmt.(type) {
	case *ast.FunctionStatement:
		return d.Name.Value
	case *ast.LetStatement:
		return d.Name.Value
	case *ast.StructStatement:
		return d.Name.Value
	case *ast.ClassStatement:
		return d.Name.Value
	case *ast.EnumStatement:
		return d.Name.Value
	case *ast.TraitStatement:
		return d.Name.Value
	}
	return ""
}
