package ast

import "martianoff/kitten/internal/types"

// TypeExpression is a type written in the source.
type TypeExpression interface {
	Node
	// ToType resolves the type without checking the classes it names.
	ToType(u *types.Universe) types.Type
	// TypeCheck resolves the type and type-checks the classes it names.
	TypeCheck(u *types.Universe) types.Type
	String() string
}

// PrimitiveTypeExpression is one of int, float, boolean or void.
type PrimitiveTypeExpression struct {
	node
	Type types.Type
}

// NewPrimitiveTypeExpression returns the type expression of t.
func NewPrimitiveTypeExpression(pos int, t types.Type) *PrimitiveTypeExpression {
	return &PrimitiveTypeExpression{node: node{pos: pos}, Type: t}
}

// ToType returns Type.
func (p *PrimitiveTypeExpression) ToType(*types.Universe) types.Type { return p.Type }

// TypeCheck returns Type.
func (p *PrimitiveTypeExpression) TypeCheck(*types.Universe) types.Type { return p.Type }

// String returns the name of Type.
func (p *PrimitiveTypeExpression) String() string { return p.Type.String() }

// ClassTypeExpression names a class.
type ClassTypeExpression struct {
	node
	Name string
}

// NewClassTypeExpression returns the class type expression name.
func NewClassTypeExpression(pos int, name string) *ClassTypeExpression {
	return &ClassTypeExpression{node: node{pos: pos}, Name: name}
}

// ToType resolves the class without checking it.
func (c *ClassTypeExpression) ToType(u *types.Universe) types.Type {
	return u.Resolve(c.Name)
}

// TypeCheck resolves and checks the class.
func (c *ClassTypeExpression) TypeCheck(u *types.Universe) types.Type {
	ct := u.Resolve(c.Name)
	ct.TypeCheck()
	return ct
}

// String returns the class name.
func (c *ClassTypeExpression) String() string { return c.Name }

// ArrayTypeExpression is Elem[].
type ArrayTypeExpression struct {
	node
	Elem TypeExpression
}

// NewArrayTypeExpression returns elem[].
func NewArrayTypeExpression(pos int, elem TypeExpression) *ArrayTypeExpression {
	return &ArrayTypeExpression{node: node{pos: pos}, Elem: elem}
}

// ToType returns the array type of the element type.
func (a *ArrayTypeExpression) ToType(u *types.Universe) types.Type {
	return u.ArrayOf(a.Elem.ToType(u))
}

// TypeCheck checks the element type.
func (a *ArrayTypeExpression) TypeCheck(u *types.Universe) types.Type {
	return u.ArrayOf(a.Elem.TypeCheck(u))
}

// String returns the type in source syntax.
func (a *ArrayTypeExpression) String() string { return a.Elem.String() + "[]" }
