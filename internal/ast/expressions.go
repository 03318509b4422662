package ast

import (
	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/semantic"
	"martianoff/kitten/internal/types"
)

// IntLiteral is an integer constant.
type IntLiteral struct {
	expr
	Value int32
}

// NewIntLiteral returns the literal v.
func NewIntLiteral(pos int, v int32) *IntLiteral {
	return &IntLiteral{expr: expr{node: node{pos: pos}}, Value: v}
}

// TypeCheck returns int.
func (l *IntLiteral) TypeCheck(env *semantic.Env) types.Type {
	return l.record(env, types.Int)
}

// Translate pushes the constant.
func (l *IntLiteral) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.Const{Type: types.Int, Value: l.Value})
}

// FloatLiteral is a floating point constant.
type FloatLiteral struct {
	expr
	Value float32
}

// NewFloatLiteral returns the literal v.
func NewFloatLiteral(pos int, v float32) *FloatLiteral {
	return &FloatLiteral{expr: expr{node: node{pos: pos}}, Value: v}
}

// TypeCheck returns float.
func (l *FloatLiteral) TypeCheck(env *semantic.Env) types.Type {
	return l.record(env, types.Float)
}

// Translate pushes the constant.
func (l *FloatLiteral) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.Const{Type: types.Float, Value: l.Value})
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	expr
	Value bool
}

// NewBooleanLiteral returns the literal v.
func NewBooleanLiteral(pos int, v bool) *BooleanLiteral {
	return &BooleanLiteral{expr: expr{node: node{pos: pos}}, Value: v}
}

// TypeCheck returns boolean.
func (l *BooleanLiteral) TypeCheck(env *semantic.Env) types.Type {
	return l.record(env, types.Boolean)
}

// Translate pushes the constant.
func (l *BooleanLiteral) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.Const{Type: types.Boolean, Value: l.Value})
}

// NilLiteral is the null reference.
type NilLiteral struct {
	expr
}

// NewNilLiteral returns nil.
func NewNilLiteral(pos int) *NilLiteral {
	return &NilLiteral{expr: expr{node: node{pos: pos}}}
}

// TypeCheck returns the nil type.
func (l *NilLiteral) TypeCheck(env *semantic.Env) types.Type {
	return l.record(env, types.Nil)
}

// Translate pushes nil.
func (l *NilLiteral) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.Const{Type: types.Nil})
}

// StringLiteral creates a String object.
type StringLiteral struct {
	expr
	Value string
}

// NewStringLiteral returns the literal v.
func NewStringLiteral(pos int, v string) *StringLiteral {
	return &StringLiteral{expr: expr{node: node{pos: pos}}, Value: v}
}

// TypeCheck returns the String class, checking it.
func (l *StringLiteral) TypeCheck(env *semantic.Env) types.Type {
	return l.record(env, runtimeString(env.Universe()))
}

// Translate creates a String object holding the literal.
func (l *StringLiteral) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.NewString{Value: l.Value})
}

// Variable reads or writes a local variable.
type Variable struct {
	expr
	Name string
	slot int
}

var _ Lvalue = (*Variable)(nil)

// NewVariable returns a use of the variable name.
func NewVariable(pos int, name string) *Variable {
	return &Variable{expr: expr{node: node{pos: pos}}, Name: name}
}

// TypeCheck looks up Name in env.
func (v *Variable) TypeCheck(env *semantic.Env) types.Type {
	b, ok := env.Lookup(v.Name)
	if !ok {
		return v.errorType(env, "undefined variable "+v.Name)
	}
	v.slot = b.Slot
	return v.record(env, b.Type)
}

// Slot returns the local slot the variable was bound to.
func (v *Variable) Slot() int { return v.slot }

// Translate loads the slot of the variable.
func (v *Variable) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.Load{Slot: v.slot, Type: v.staticType})
}

// TranslateBeforeAssignment has nothing to push.
func (v *Variable) TranslateBeforeAssignment(_ *ir.Graph, cont ir.BlockID) ir.BlockID {
	return cont
}

// TranslateAfterAssignment stores into the slot of the variable.
func (v *Variable) TranslateAfterAssignment(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.Store{Slot: v.slot, Type: v.staticType})
}

// FieldAccess reads or writes Receiver.Name.
type FieldAccess struct {
	expr
	Receiver Expression
	Name     string
	field    *types.FieldSignature
}

var _ Lvalue = (*FieldAccess)(nil)

// NewFieldAccess returns receiver.name.
func NewFieldAccess(pos int, receiver Expression, name string) *FieldAccess {
	return &FieldAccess{expr: expr{node: node{pos: pos}}, Receiver: receiver, Name: name}
}

// TypeCheck looks the field up in the class of Receiver.
func (f *FieldAccess) TypeCheck(env *semantic.Env) types.Type {
	ct, ok := f.Receiver.TypeCheck(env).(*types.ClassType)
	if !ok {
		return f.errorType(env, "class type required")
	}
	f.field = ct.FieldLookup(f.Name)
	if f.field == nil {
		return f.errorType(env, "unknown field "+f.Name)
	}
	return f.record(env, f.field.Type())
}

// Field returns the field the access was resolved to.
func (f *FieldAccess) Field() *types.FieldSignature { return f.field }

// Translate reads the field.
func (f *FieldAccess) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return f.Receiver.Translate(g, g.Prefix(cont, ir.GetField{FieldSig: f.field}))
}

// TranslateBeforeAssignment pushes Receiver.
func (f *FieldAccess) TranslateBeforeAssignment(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return f.Receiver.Translate(g, cont)
}

// TranslateAfterAssignment writes the field.
func (f *FieldAccess) TranslateAfterAssignment(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.PutField{FieldSig: f.field})
}

// ArrayAccess reads or writes Array[Index].
type ArrayAccess struct {
	expr
	Array Expression
	Index Expression
}

var _ Lvalue = (*ArrayAccess)(nil)

// NewArrayAccess returns array[index].
func NewArrayAccess(pos int, array, index Expression) *ArrayAccess {
	return &ArrayAccess{expr: expr{node: node{pos: pos}}, Array: array, Index: index}
}

// TypeCheck requires an array and an int index.
func (a *ArrayAccess) TypeCheck(env *semantic.Env) types.Type {
	at, ok := a.Array.TypeCheck(env).(*types.ArrayType)
	if !ok {
		return a.errorType(env, "array type required")
	}
	mustBeInt(a.Index, env)
	return a.record(env, at.Elem())
}

// Translate loads the element.
func (a *ArrayAccess) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return a.TranslateBeforeAssignment(g, g.Prefix(cont, ir.ArrayLoad{Type: a.staticType}))
}

// TranslateBeforeAssignment pushes the array and the index.
func (a *ArrayAccess) TranslateBeforeAssignment(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return a.Array.Translate(g, a.Index.Translate(g, cont))
}

// TranslateAfterAssignment stores the element.
func (a *ArrayAccess) TranslateAfterAssignment(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return g.Prefix(cont, ir.ArrayStore{Type: a.staticType})
}

// NewArray creates an array of Size elements of type Elem.
type NewArray struct {
	expr
	Elem TypeExpression
	Size Expression
	elem types.Type
}

// NewNewArray returns new elem[size].
func NewNewArray(pos int, elem TypeExpression, size Expression) *NewArray {
	return &NewArray{expr: expr{node: node{pos: pos}}, Elem: elem, Size: size}
}

// TypeCheck requires an int size.
func (n *NewArray) TypeCheck(env *semantic.Env) types.Type {
	n.elem = n.Elem.TypeCheck(env.Universe())
	mustBeInt(n.Size, env)
	return n.record(env, env.Universe().ArrayOf(n.elem))
}

// Translate allocates the array.
func (n *NewArray) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return n.Size.Translate(g, g.Prefix(cont, ir.NewArray{Elem: n.elem, Dimensions: 1}))
}

// Cast converts Expression into the type Into.
type Cast struct {
	expr
	Expression Expression
	Into       TypeExpression
}

// NewCast returns the cast of e into into.
func NewCast(pos int, e Expression, into TypeExpression) *Cast {
	return &Cast{expr: expr{node: node{pos: pos}}, Expression: e, Into: into}
}

// TypeCheck allows only downcasts. Casting into the same type is an error.
func (c *Cast) TypeCheck(env *semantic.Env) types.Type {
	from := c.Expression.TypeCheck(env)
	into := c.Into.TypeCheck(env.Universe())
	switch {
	case from == into:
		c.fail(env, "You do not need to cast a "+from.String()+" into itself")
	case !into.AssignableTo(from):
		c.fail(env, from.String()+" cannot be cast into "+into.String())
	}
	return c.record(env, into)
}

// Translate converts the value.
func (c *Cast) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	from := c.Expression.StaticType()
	return c.Expression.Translate(g, g.Prefix(cont, ir.Cast{From: from, To: c.staticType}))
}

// Not is boolean negation.
type Not struct {
	expr
	Expression Expression
}

// NewNot returns !e.
func NewNot(pos int, e Expression) *Not {
	return &Not{expr: expr{node: node{pos: pos}}, Expression: e}
}

// TypeCheck requires a boolean operand.
func (n *Not) TypeCheck(env *semantic.Env) types.Type {
	mustBeBoolean(n.Expression, env)
	return n.record(env, types.Boolean)
}

// Translate negates the operand.
func (n *Not) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return n.Expression.Translate(g, g.Prefix(cont, ir.Neg{Type: types.Boolean}))
}

// Minus is arithmetic negation.
type Minus struct {
	expr
	Expression Expression
}

// NewMinus returns -e.
func NewMinus(pos int, e Expression) *Minus {
	return &Minus{expr: expr{node: node{pos: pos}}, Expression: e}
}

// TypeCheck requires an int or float operand.
func (m *Minus) TypeCheck(env *semantic.Env) types.Type {
	t := m.Expression.TypeCheck(env)
	if !types.IsNumeric(t) {
		return m.errorType(env, "integer or float expected")
	}
	return m.record(env, t)
}

// Translate negates the operand.
func (m *Minus) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return m.Expression.Translate(g, g.Prefix(cont, ir.Neg{Type: m.staticType}))
}
