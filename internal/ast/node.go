// Package ast defines the typed syntax tree of Kitten classes.
//
// Every expression and command is type-checked against a semantic.Env and
// then translated into blocks of an ir.Graph in continuation-passing style:
// translating a node yields a block that runs the node and then continues
// with the block it was given.
package ast

import (
	"fmt"
	"strings"

	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/semantic"
	"martianoff/kitten/internal/types"
)

// Node is any syntax tree node. Pos is a rune offset into the source file.
type Node interface {
	Pos() int
}

type node struct {
	pos    int
	failed bool
}

// Pos returns the position of the node in its source.
func (n *node) Pos() int { return n.pos }

// Failed reports whether an error was reported on the node.
func (n *node) Failed() bool { return n.failed }

// failable is implemented by every node of the package.
type failable interface {
	setFailed()
}

func (n *node) setFailed() { n.failed = true }

func (n *node) fail(env *semantic.Env, msg string) {
	n.failed = true
	env.Error(n.pos, msg)
}

// Expression is a node computing a value.
type Expression interface {
	Node
	// TypeCheck computes and records the static type of the expression. On
	// error it reports to env and falls back to int.
	TypeCheck(env *semantic.Env) types.Type
	// StaticType returns the type computed by TypeCheck.
	StaticType() types.Type
	// Translate pushes the value of the expression and continues with cont.
	Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID
}

// Lvalue is an expression that can be assigned to. The value to store is
// computed between the two halves of the assignment.
type Lvalue interface {
	Expression
	TranslateBeforeAssignment(g *ir.Graph, cont ir.BlockID) ir.BlockID
	TranslateAfterAssignment(g *ir.Graph, cont ir.BlockID) ir.BlockID
}

// Command is a statement.
type Command interface {
	Node
	// TypeCheck checks the command in env and returns the environment in
	// effect after it.
	TypeCheck(env *semantic.Env) *semantic.Env
	// CheckForDeadCode reports unreachable statements and returns whether
	// every path through the command ends in a return.
	CheckForDeadCode() bool
	Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID
}

type expr struct {
	node
	staticType types.Type
	env        *semantic.Env
}

// StaticType returns the type computed by TypeCheck.
func (e *expr) StaticType() types.Type { return e.staticType }

func (e *expr) record(env *semantic.Env, t types.Type) types.Type {
	e.env = env
	e.staticType = t
	return t
}

// errorType reports msg and records the int fallback type.
func (e *expr) errorType(env *semantic.Env, msg string) types.Type {
	e.fail(env, msg)
	return e.record(env, types.Int)
}

type cmd struct {
	node
	env *semantic.Env
}

// tester is implemented by expressions with a cheaper translation as a
// branch condition than computing a boolean and testing it.
type tester interface {
	translateAsTest(g *ir.Graph, yes, no ir.BlockID) ir.BlockID
}

// translateAs translates e and converts its value to t. The only conversion
// needed is int to float.
func translateAs(e Expression, t types.Type, g *ir.Graph, cont ir.BlockID) ir.BlockID {
	if e.StaticType() == types.Int && t == types.Float {
		cont = g.Prefix(cont, ir.Cast{From: types.Int, To: types.Float})
	}
	return e.Translate(g, cont)
}

// translateAsTest translates the boolean expression e into a branch to yes
// or no.
func translateAsTest(e Expression, g *ir.Graph, yes, no ir.BlockID) ir.BlockID {
	if t, ok := e.(tester); ok {
		return t.translateAsTest(g, yes, no)
	}
	return e.Translate(g, g.Branch(ir.IfTrue{}, yes, no))
}

// mustBeBoolean checks e and reports when it is not a boolean.
func mustBeBoolean(e Expression, env *semantic.Env) {
	if t := e.TypeCheck(env); t != types.Boolean {
		env.Error(e.Pos(), "boolean expected")
	}
}

// mustBeInt checks e and reports when it is not an int.
func mustBeInt(e Expression, env *semantic.Env) {
	if t := e.TypeCheck(env); t != types.Int {
		env.Error(e.Pos(), "integer expected")
	}
}

func typeCheckAll(es []Expression, env *semantic.Env) types.List {
	out := make(types.List, len(es))
	for i, e := range es {
		out[i] = e.TypeCheck(env)
	}
	return out
}

// translateActuals pushes actuals converted to the formal types params.
func translateActuals(actuals []Expression, params types.List, g *ir.Graph, cont ir.BlockID) ir.BlockID {
	for i := len(actuals) - 1; i >= 0; i-- {
		cont = translateAs(actuals[i], params[i], g, cont)
	}
	return cont
}

// Describe renders a one-line label of a node: its kind, its static type if
// it has one, and whether an error was reported on it.
func Describe(n Node) string {
	var sb strings.Builder
	name := fmt.Sprintf("%T", n)
	sb.WriteString(strings.TrimPrefix(name, "*ast."))
	if e, ok := n.(Expression); ok && e.StaticType() != nil {
		sb.WriteString(" : ")
		sb.WriteString(e.StaticType().String())
	}
	if f, ok := n.(interface{ Failed() bool }); ok && f.Failed() {
		sb.WriteString(" [failed]")
	}
	return sb.String()
}
