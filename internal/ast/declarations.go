package ast

import (
	"errors"
	"fmt"

	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/semantic"
	"martianoff/kitten/internal/types"
)

// MainMethod is the name of the entry point of a program.
const MainMethod = "main"

// ClassDefinition is the syntax tree of a source file: one class and its
// members. It is the types.ClassSource the class registry builds the class
// descriptor from.
type ClassDefinition struct {
	node
	Name       string
	Superclass string
	Members    []Member
}

var _ types.ClassSource = (*ClassDefinition)(nil)

// NewClassDefinition returns a class named name extending superclass.
func NewClassDefinition(pos int, name, superclass string, members []Member) *ClassDefinition {
	return &ClassDefinition{node: node{pos: pos}, Name: name, Superclass: superclass, Members: members}
}

// SuperclassName returns the declared superclass, empty for none.
func (c *ClassDefinition) SuperclassName() string { return c.Superclass }

// AddMembersTo registers the signature of every member on ct.
func (c *ClassDefinition) AddMembersTo(ct *types.ClassType) {
	for _, m := range c.Members {
		m.AddTo(ct)
	}
}

// TypeCheck checks every member as part of ct.
func (c *ClassDefinition) TypeCheck(ct *types.ClassType) {
	for _, m := range c.Members {
		m.TypeCheck(ct)
	}
}

// Member is a declaration inside a class.
type Member interface {
	Node
	// AddTo registers the signature of the member on ct.
	AddTo(ct *types.ClassType)
	// TypeCheck checks the member as part of ct.
	TypeCheck(ct *types.ClassType)
}

// CodeDeclaration is a member with a body: constructor, method, fixture or
// test.
type CodeDeclaration interface {
	Member
	Signature() *types.CodeSignature
	Body() Command
	// Translate translates the whole code of the member into g and returns
	// its entry block.
	Translate(g *ir.Graph) ir.BlockID
}

// FormalParameter is a parameter of a constructor or method.
type FormalParameter struct {
	node
	Type TypeExpression
	Name string
}

// NewFormalParameter returns a parameter name of type t.
func NewFormalParameter(pos int, t TypeExpression, name string) *FormalParameter {
	return &FormalParameter{node: node{pos: pos}, Type: t, Name: name}
}

func paramTypes(u *types.Universe, formals []*FormalParameter) types.List {
	out := make(types.List, len(formals))
	for i, f := range formals {
		out[i] = f.Type.ToType(u)
	}
	return out
}

func declareFormals(env *semantic.Env, formals []*FormalParameter) *semantic.Env {
	seen := make(map[string]bool, len(formals))
	for _, f := range formals {
		if seen[f.Name] {
			f.fail(env, "duplicate formal parameter "+f.Name)
		}
		seen[f.Name] = true
		env = env.Declare(f.Name, f.Type.TypeCheck(env.Universe()))
	}
	return env
}

func reportDuplicate(ct *types.ClassType, n *node, err error, what string) {
	if errors.Is(err, types.ErrDuplicateMember) {
		n.failed = true
		ct.Diagnostics().Error(n.pos, "duplicate "+what)
	}
}

// FieldDeclaration declares a field.
type FieldDeclaration struct {
	node
	Type TypeExpression
	Name string
	sig  *types.FieldSignature
}

// NewFieldDeclaration returns a field name of type t.
func NewFieldDeclaration(pos int, t TypeExpression, name string) *FieldDeclaration {
	return &FieldDeclaration{node: node{pos: pos}, Type: t, Name: name}
}

// AddTo adds the field to ct.
func (f *FieldDeclaration) AddTo(ct *types.ClassType) {
	sig, err := ct.AddField(f.Name, f.Type.ToType(ct.Universe()), f)
	reportDuplicate(ct, &f.node, err, "field "+f.Name)
	f.sig = sig
}

// TypeCheck rejects fields of type void.
func (f *FieldDeclaration) TypeCheck(ct *types.ClassType) {
	if t := f.Type.TypeCheck(ct.Universe()); t == types.Void {
		f.failed = true
		ct.Diagnostics().Error(f.pos, "field "+f.Name+" cannot have type void")
	}
}

// Signature returns the registered field, nil for a duplicate.
func (f *FieldDeclaration) Signature() *types.FieldSignature { return f.sig }

type code struct {
	node
	formals []*FormalParameter
	body    Command
	sig     *types.CodeSignature
}

// Signature returns the registered signature, nil for a duplicate.
func (c *code) Signature() *types.CodeSignature { return c.sig }

// Body returns the body of the code.
func (c *code) Body() Command { return c.body }

// Formals returns the formal parameters.
func (c *code) Formals() []*FormalParameter { return c.formals }

func (c *code) checkBody(env *semantic.Env) bool {
	c.body.TypeCheck(env)
	return c.body.CheckForDeadCode()
}

func (c *code) translateBody(g *ir.Graph) ir.BlockID {
	return c.body.Translate(g, g.Final(ir.Return{Type: types.Void}))
}

// ConstructorDeclaration declares a constructor.
type ConstructorDeclaration struct {
	code
}

var _ CodeDeclaration = (*ConstructorDeclaration)(nil)

// NewConstructorDeclaration returns a constructor with the given formals.
func NewConstructorDeclaration(pos int, formals []*FormalParameter, body Command) *ConstructorDeclaration {
	return &ConstructorDeclaration{code{node: node{pos: pos}, formals: formals, body: body}}
}

// AddTo adds the constructor to ct.
func (c *ConstructorDeclaration) AddTo(ct *types.ClassType) {
	params := paramTypes(ct.Universe(), c.formals)
	sig, err := ct.AddConstructor(params, c)
	reportDuplicate(ct, &c.node, err, fmt.Sprintf("constructor %s(%s)", ct.Name(), params))
	c.sig = sig
}

// TypeCheck checks the body with this bound to ct. The superclass must have
// an empty constructor.
func (c *ConstructorDeclaration) TypeCheck(ct *types.ClassType) {
	env := semantic.NewEnv(ct, types.Void, false).Declare("this", ct)
	c.checkBody(declareFormals(env, c.formals))
	if super := ct.Superclass(); super != nil && super.ConstructorLookup(types.Empty) == nil {
		c.fail(env, super.Name()+" has no empty constructor")
	}
}

// Translate prefixes the body with a call to the empty constructor of the
// superclass.
func (c *ConstructorDeclaration) Translate(g *ir.Graph) ir.BlockID {
	entry := c.translateBody(g)
	ct := c.sig.DefiningClass()
	if super := ct.Superclass(); super != nil {
		if ctor := super.ConstructorLookup(types.Empty); ctor != nil {
			entry = g.Prefix(entry, ir.Load{Slot: 0, Type: ct}, ir.ConstructorCall{Constructor: ctor})
		}
	}
	return entry
}

// MethodDeclaration declares a method.
type MethodDeclaration struct {
	code
	ReturnType TypeExpression
	Name       string
}

var _ CodeDeclaration = (*MethodDeclaration)(nil)

// NewMethodDeclaration returns a method name returning rt.
func NewMethodDeclaration(pos int, rt TypeExpression, name string, formals []*FormalParameter, body Command) *MethodDeclaration {
	return &MethodDeclaration{code: code{node: node{pos: pos}, formals: formals, body: body}, ReturnType: rt, Name: name}
}

// AddTo adds the method to ct.
func (m *MethodDeclaration) AddTo(ct *types.ClassType) {
	params := paramTypes(ct.Universe(), m.formals)
	sig, err := ct.AddMethod(m.Name, params, m.ReturnType.ToType(ct.Universe()), m)
	reportDuplicate(ct, &m.node, err, fmt.Sprintf("method %s(%s)", m.Name, params))
	m.sig = sig
}

// TypeCheck checks the body. The main method has no receiver.
func (m *MethodDeclaration) TypeCheck(ct *types.ClassType) {
	u := ct.Universe()
	rt := m.ReturnType.TypeCheck(u)
	env := semantic.NewEnv(ct, rt, false)
	if m.Name != MainMethod {
		env = env.Declare("this", ct)
	}
	env = declareFormals(env, m.formals)

	if super := ct.Superclass(); super != nil {
		overridden := super.MethodLookup(m.Name, paramTypes(u, m.formals))
		if overridden != nil && !rt.AssignableToSpecial(overridden.ReturnType()) {
			m.fail(env, fmt.Sprintf("illegal return type for overriding method %q", m.Name))
		}
	}

	if !m.checkBody(env) && rt != types.Void {
		m.fail(env, "missing return statement")
	}
}

// Translate translates the body.
func (m *MethodDeclaration) Translate(g *ir.Graph) ir.BlockID {
	return m.translateBody(g)
}

// FixtureDeclaration declares code run before each test of the class.
type FixtureDeclaration struct {
	code
}

var _ CodeDeclaration = (*FixtureDeclaration)(nil)

// NewFixtureDeclaration returns a fixture.
func NewFixtureDeclaration(pos int, body Command) *FixtureDeclaration {
	return &FixtureDeclaration{code{node: node{pos: pos}, body: body}}
}

// AddTo adds the fixture to ct.
func (f *FixtureDeclaration) AddTo(ct *types.ClassType) {
	f.sig = ct.AddFixture(f)
}

// TypeCheck checks the body with this bound to ct.
func (f *FixtureDeclaration) TypeCheck(ct *types.ClassType) {
	f.checkBody(semantic.NewEnv(ct, types.Void, false).Declare("this", ct))
}

// Translate translates the body.
func (f *FixtureDeclaration) Translate(g *ir.Graph) ir.BlockID {
	return f.translateBody(g)
}

// TestDeclaration declares a named test. Tests have no receiver and may use
// assert; a test that completes returns 0 after printing "Assert passed".
type TestDeclaration struct {
	code
	Name string
}

var _ CodeDeclaration = (*TestDeclaration)(nil)

// NewTestDeclaration returns the test name.
func NewTestDeclaration(pos int, name string, body Command) *TestDeclaration {
	return &TestDeclaration{code: code{node: node{pos: pos}, body: body}, Name: name}
}

// AddTo adds the test to ct.
func (t *TestDeclaration) AddTo(ct *types.ClassType) {
	sig, err := ct.AddTest(t.Name, t)
	reportDuplicate(ct, &t.node, err, "test "+t.Name)
	t.sig = sig
}

// TypeCheck checks the body. The String class printing the outcome of the
// test is checked too.
func (t *TestDeclaration) TypeCheck(ct *types.ClassType) {
	t.checkBody(semantic.NewEnv(ct, types.Void, true))
	runtimeString(ct.Universe())
}

// Translate runs the body and then prints "Assert passed".
func (t *TestDeclaration) Translate(g *ir.Graph) ir.BlockID {
	passed := printAndReturn(g, t.sig.DefiningClass().Universe(), "Assert passed", 0)
	return t.body.Translate(g, passed)
}
