package ast

import (
	"errors"
	"fmt"

	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/semantic"
	"martianoff/kitten/internal/types"
)

// MethodCallExpression calls Name on Receiver with Actuals.
type MethodCallExpression struct {
	expr
	Receiver Expression
	Name     string
	Actuals  []Expression
	receiver *types.ClassType
	method   *types.CodeSignature
}

// NewMethodCallExpression returns a call of name on receiver.
func NewMethodCallExpression(pos int, receiver Expression, name string, actuals []Expression) *MethodCallExpression {
	return &MethodCallExpression{expr: expr{node: node{pos: pos}}, Receiver: receiver, Name: name, Actuals: actuals}
}

// TypeCheck resolves the most specific method of the receiver class for
// the actual types.
func (m *MethodCallExpression) TypeCheck(env *semantic.Env) types.Type {
	rt := m.Receiver.TypeCheck(env)
	actuals := typeCheckAll(m.Actuals, env)
	ct, ok := rt.(*types.ClassType)
	if !ok {
		return m.errorType(env, "class type required")
	}
	sig, err := ct.ResolveMethod(m.Name, actuals)
	switch {
	case errors.Is(err, types.ErrAmbiguousCall):
		return m.errorType(env, fmt.Sprintf("call to method %q is ambiguous", m.Name))
	case err != nil:
		return m.errorType(env, fmt.Sprintf("no matching method for call to %q", m.Name))
	}
	m.receiver = ct
	m.method = sig
	return m.record(env, sig.ReturnType())
}

// Method returns the statically resolved target of the call.
func (m *MethodCallExpression) Method() *types.CodeSignature { return m.method }

// Translate evaluates the receiver, then the actuals, then calls the method.
func (m *MethodCallExpression) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	call := g.Prefix(cont, ir.NewVirtualCall(m.receiver, m.method))
	return m.Receiver.Translate(g, translateActuals(m.Actuals, m.method.Params(), g, call))
}

// NewObject creates an object of class ClassName with the constructor
// selected by Actuals.
type NewObject struct {
	expr
	ClassName   string
	Actuals     []Expression
	constructor *types.CodeSignature
}

// NewNewObject returns the creation of an object of class className.
func NewNewObject(pos int, className string, actuals []Expression) *NewObject {
	return &NewObject{expr: expr{node: node{pos: pos}}, ClassName: className, Actuals: actuals}
}

// TypeCheck resolves the class and selects its constructor.
func (n *NewObject) TypeCheck(env *semantic.Env) types.Type {
	ct := env.Universe().Resolve(n.ClassName)
	ct.TypeCheck()
	actuals := typeCheckAll(n.Actuals, env)
	ctor, err := ct.ResolveConstructor(actuals)
	switch {
	case errors.Is(err, types.ErrAmbiguousCall):
		n.fail(env, fmt.Sprintf("call to constructor of %q is ambiguous", n.ClassName))
	case err != nil:
		n.fail(env, fmt.Sprintf("no matching constructor for %q", n.ClassName))
	}
	n.constructor = ctor
	return n.record(env, ct)
}

// Constructor returns the constructor selected for the creation.
func (n *NewObject) Constructor() *types.CodeSignature { return n.constructor }

// Translate allocates the object and calls the constructor on a copy of it.
func (n *NewObject) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	ct := n.staticType.(*types.ClassType)
	call := g.Prefix(cont, ir.ConstructorCall{Constructor: n.constructor})
	return g.Prefix(translateActuals(n.Actuals, n.constructor.Params(), g, call), ir.New{Class: ct}, ir.Dup{Type: ct})
}
