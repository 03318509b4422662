package ast

import (
	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/semantic"
	"martianoff/kitten/internal/types"
)

// Skip does nothing.
type Skip struct {
	cmd
}

// NewSkip returns a skip command at pos.
func NewSkip(pos int) *Skip {
	return &Skip{cmd: cmd{node: node{pos: pos}}}
}

// TypeCheck returns env unchanged.
func (s *Skip) TypeCheck(env *semantic.Env) *semantic.Env {
	s.env = env
	return env
}

// CheckForDeadCode reports false.
func (s *Skip) CheckForDeadCode() bool { return false }

// Translate returns cont.
func (s *Skip) Translate(_ *ir.Graph, cont ir.BlockID) ir.BlockID { return cont }

// CommandSeq runs First and then Second. Declarations in First are visible
// in Second.
type CommandSeq struct {
	cmd
	First  Command
	Second Command
}

// NewCommandSeq returns first followed by second.
func NewCommandSeq(pos int, first, second Command) *CommandSeq {
	return &CommandSeq{cmd: cmd{node: node{pos: pos}}, First: first, Second: second}
}

// TypeCheck checks Second in the environment left by First.
func (s *CommandSeq) TypeCheck(env *semantic.Env) *semantic.Env {
	s.env = env
	return s.Second.TypeCheck(s.First.TypeCheck(env))
}

// CheckForDeadCode reports dead code on the first statement of Second when
// First always returns.
func (s *CommandSeq) CheckForDeadCode() bool {
	first := s.First.CheckForDeadCode()
	if first {
		dead := leading(s.Second)
		if f, ok := dead.(failable); ok {
			f.setFailed()
		}
		s.env.Error(dead.Pos(), "dead-code after this statement")
	}
	second := s.Second.CheckForDeadCode()
	return first || second
}

// leading returns the first statement run by c.
func leading(c Command) Command {
	for {
		seq, ok := c.(*CommandSeq)
		if !ok {
			return c
		}
		c = seq.First
	}
}

// Translate chains First before Second.
func (s *CommandSeq) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return s.First.Translate(g, s.Second.Translate(g, cont))
}

// LocalScope is a block { Body }; declarations inside it do not leak out.
type LocalScope struct {
	cmd
	Body Command
}

// NewLocalScope returns the block { body }.
func NewLocalScope(pos int, body Command) *LocalScope {
	return &LocalScope{cmd: cmd{node: node{pos: pos}}, Body: body}
}

// TypeCheck checks Body and drops what it declares.
func (l *LocalScope) TypeCheck(env *semantic.Env) *semantic.Env {
	l.env = env
	l.Body.TypeCheck(env)
	return env
}

// CheckForDeadCode delegates to Body.
func (l *LocalScope) CheckForDeadCode() bool { return l.Body.CheckForDeadCode() }

// Translate translates Body.
func (l *LocalScope) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return l.Body.Translate(g, cont)
}

// LocalDeclaration declares the local Name of type Type, initialised with
// Initialiser.
type LocalDeclaration struct {
	cmd
	Type        TypeExpression
	Name        string
	Initialiser Expression
	declared    types.Type
	slot        int
}

// NewLocalDeclaration returns the declaration of name with initialiser init.
func NewLocalDeclaration(pos int, t TypeExpression, name string, init Expression) *LocalDeclaration {
	return &LocalDeclaration{cmd: cmd{node: node{pos: pos}}, Type: t, Name: name, Initialiser: init}
}

// TypeCheck declares Name in a new environment and returns it.
func (l *LocalDeclaration) TypeCheck(env *semantic.Env) *semantic.Env {
	l.env = env
	l.declared = l.Type.TypeCheck(env.Universe())
	init := l.Initialiser.TypeCheck(env)
	if !init.AssignableTo(l.declared) {
		l.fail(env, init.String()+" cannot be assigned to "+l.declared.String())
	}
	next := env.Declare(l.Name, l.declared)
	b, _ := next.Lookup(l.Name)
	l.slot = b.Slot
	return next
}

// Slot returns the local slot the variable was given.
func (l *LocalDeclaration) Slot() int { return l.slot }

// CheckForDeadCode reports false.
func (l *LocalDeclaration) CheckForDeadCode() bool { return false }

// Translate stores the initialiser into the slot of the local.
func (l *LocalDeclaration) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return translateAs(l.Initialiser, l.declared, g, g.Prefix(cont, ir.Store{Slot: l.slot, Type: l.declared}))
}

// Assignment stores Rvalue into Lvalue.
type Assignment struct {
	cmd
	Lvalue Lvalue
	Rvalue Expression
}

// NewAssignment returns lvalue := rvalue.
func NewAssignment(pos int, lvalue Lvalue, rvalue Expression) *Assignment {
	return &Assignment{cmd: cmd{node: node{pos: pos}}, Lvalue: lvalue, Rvalue: rvalue}
}

// TypeCheck requires Rvalue to be assignable to Lvalue.
func (a *Assignment) TypeCheck(env *semantic.Env) *semantic.Env {
	a.env = env
	left := a.Lvalue.TypeCheck(env)
	right := a.Rvalue.TypeCheck(env)
	if !right.AssignableTo(left) {
		a.fail(env, right.String()+" cannot be assigned to "+left.String())
	}
	return env
}

// CheckForDeadCode reports false.
func (a *Assignment) CheckForDeadCode() bool { return false }

// Translate evaluates Rvalue between the two halves of the store into Lvalue.
func (a *Assignment) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	after := a.Lvalue.TranslateAfterAssignment(g, cont)
	return a.Lvalue.TranslateBeforeAssignment(g, translateAs(a.Rvalue, a.Lvalue.StaticType(), g, after))
}

// IfThenElse runs Then when Condition holds and Else otherwise. A missing
// else branch is a Skip.
type IfThenElse struct {
	cmd
	Condition Expression
	Then      Command
	Else      Command
}

// NewIfThenElse returns a conditional. A nil els is replaced by a skip.
func NewIfThenElse(pos int, cond Expression, then, els Command) *IfThenElse {
	if els == nil {
		els = NewSkip(pos)
	}
	return &IfThenElse{cmd: cmd{node: node{pos: pos}}, Condition: cond, Then: then, Else: els}
}

// TypeCheck requires a boolean condition and checks both branches.
func (i *IfThenElse) TypeCheck(env *semantic.Env) *semantic.Env {
	i.env = env
	mustBeBoolean(i.Condition, env)
	i.Then.TypeCheck(env)
	i.Else.TypeCheck(env)
	return env
}

// CheckForDeadCode reports whether both branches always return.
func (i *IfThenElse) CheckForDeadCode() bool {
	then := i.Then.CheckForDeadCode()
	els := i.Else.CheckForDeadCode()
	return then && els
}

// Translate branches on Condition and joins both branches at cont.
func (i *IfThenElse) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	g.DoNotMerge(cont)
	return translateAsTest(i.Condition, g, i.Then.Translate(g, cont), i.Else.Translate(g, cont))
}

// While repeats Body as long as Condition holds.
type While struct {
	cmd
	Condition Expression
	Body      Command
}

// NewWhile returns a while loop.
func NewWhile(pos int, cond Expression, body Command) *While {
	return &While{cmd: cmd{node: node{pos: pos}}, Condition: cond, Body: body}
}

// TypeCheck requires a boolean condition and checks Body.
func (w *While) TypeCheck(env *semantic.Env) *semantic.Env {
	w.env = env
	mustBeBoolean(w.Condition, env)
	w.Body.TypeCheck(env)
	return env
}

// CheckForDeadCode checks Body. A loop may run zero times, so it reports false.
func (w *While) CheckForDeadCode() bool {
	w.Body.CheckForDeadCode()
	return false
}

// Translate builds the loop around a pivot block linked back to the test.
func (w *While) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	pivot := g.Pivot()
	head := translateAsTest(w.Condition, g, w.Body.Translate(g, pivot), cont)
	g.DoNotMerge(head)
	g.Link(pivot, head)
	return head
}

// For runs Initialisation, then repeats Body followed by Update as long as
// Condition holds. Declarations of Initialisation are only visible inside
// the loop.
type For struct {
	cmd
	Initialisation Command
	Condition      Expression
	Update         Command
	Body           Command
}

// NewFor returns a for loop.
func NewFor(pos int, init Command, cond Expression, update, body Command) *For {
	return &For{cmd: cmd{node: node{pos: pos}}, Initialisation: init, Condition: cond, Update: update, Body: body}
}

// TypeCheck checks Condition, Update and Body in the environment of
// Initialisation.
func (f *For) TypeCheck(env *semantic.Env) *semantic.Env {
	f.env = env
	inner := f.Initialisation.TypeCheck(env)
	mustBeBoolean(f.Condition, inner)
	f.Update.TypeCheck(inner)
	f.Body.TypeCheck(inner)
	return env
}

// CheckForDeadCode reports true when Initialisation always returns.
func (f *For) CheckForDeadCode() bool {
	f.Update.CheckForDeadCode()
	f.Body.CheckForDeadCode()
	if f.Initialisation.CheckForDeadCode() {
		f.fail(f.env, "dead-code after for loop initialisation")
		return true
	}
	return false
}

// Translate runs Initialisation and then loops like While.
func (f *For) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	pivot := g.Pivot()
	head := translateAsTest(f.Condition, g, f.Body.Translate(g, f.Update.Translate(g, pivot)), cont)
	g.DoNotMerge(head)
	g.Link(pivot, head)
	return f.Initialisation.Translate(g, head)
}

// Return ends the code, returning Value if it is not nil.
type Return struct {
	cmd
	Value Expression
}

// NewReturn returns a return of value, nil for a bare return.
func NewReturn(pos int, value Expression) *Return {
	return &Return{cmd: cmd{node: node{pos: pos}}, Value: value}
}

// TypeCheck checks Value against the return type of the enclosing code.
func (r *Return) TypeCheck(env *semantic.Env) *semantic.Env {
	r.env = env
	expected := env.ReturnType()
	if r.Value == nil {
		if expected != types.Void {
			r.fail(env, "missing return value")
		}
		return env
	}
	if t := r.Value.TypeCheck(env); !t.AssignableTo(expected) {
		r.fail(env, "illegal return type: "+expected.String()+" expected")
	}
	return env
}

// CheckForDeadCode reports true.
func (r *Return) CheckForDeadCode() bool { return true }

// Translate ignores cont: nothing runs after a return.
func (r *Return) Translate(g *ir.Graph, _ ir.BlockID) ir.BlockID {
	rt := r.env.ReturnType()
	ret := g.Final(ir.Return{Type: rt})
	if r.Value == nil {
		return ret
	}
	return translateAs(r.Value, rt, g, ret)
}

// MethodCallCommand calls a method and discards its result.
type MethodCallCommand struct {
	cmd
	Call *MethodCallExpression
}

// NewMethodCallCommand returns call used as a statement.
func NewMethodCallCommand(pos int, call *MethodCallExpression) *MethodCallCommand {
	return &MethodCallCommand{cmd: cmd{node: node{pos: pos}}, Call: call}
}

// TypeCheck checks the call.
func (m *MethodCallCommand) TypeCheck(env *semantic.Env) *semantic.Env {
	m.env = env
	m.Call.TypeCheck(env)
	return env
}

// CheckForDeadCode reports false.
func (m *MethodCallCommand) CheckForDeadCode() bool { return false }

// Translate pops the result of a non-void call.
func (m *MethodCallCommand) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	if t := m.Call.StaticType(); t != types.Void {
		cont = g.Prefix(cont, ir.Pop{Type: t})
	}
	return m.Call.Translate(g, cont)
}

// Assert checks Condition inside a test. A failing assertion prints its
// position and ends the test with -1.
type Assert struct {
	cmd
	Condition Expression
}

// NewAssert returns an assertion of cond.
func NewAssert(pos int, cond Expression) *Assert {
	return &Assert{cmd: cmd{node: node{pos: pos}}, Condition: cond}
}

// TypeCheck requires a boolean condition inside a test. The String class
// printing a failure is checked too.
func (a *Assert) TypeCheck(env *semantic.Env) *semantic.Env {
	a.env = env
	mustBeBoolean(a.Condition, env)
	if !env.InTest() {
		a.fail(env, "assert not defined in method test")
	}
	runtimeString(env.Universe())
	return env
}

// CheckForDeadCode reports false.
func (a *Assert) CheckForDeadCode() bool { return false }

// Translate continues at cont when Condition holds and fails the test otherwise.
func (a *Assert) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	msg := "Assert failed at: " + a.env.Diagnostics().LineColumn(a.pos)
	failed := printAndReturn(g, a.env.Universe(), msg, -1)
	return translateAsTest(a.Condition, g, cont, failed)
}
