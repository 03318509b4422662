// Package types implements the Kitten type lattice and the class registry.
//
// Primitive types are package-level singletons. Class and array types are
// interned by a Universe, so two types are equal exactly when they are the
// same value.
package types

import "strings"

// Type is a Kitten static type.
type Type interface {
	String() string
	// AssignableTo reports whether a value of this type may be stored where
	// other is expected.
	AssignableTo(other Type) bool
	// AssignableToSpecial is the stricter relation used for array elements and
	// overriding return types: identity on primitives, AssignableTo on
	// references.
	AssignableToSpecial(other Type) bool
	// LeastCommonSupertype returns the smallest type both this and other are
	// assignable to, or nil when there is none.
	LeastCommonSupertype(other Type) Type
	// Size is the number of operand-stack slots a value of this type takes.
	Size() int
}

type primitiveKind int

const (
	kindVoid primitiveKind = iota
	kindNil
	kindUnused
	kindBoolean
	kindInt
	kindFloat
)

type primitive struct {
	kind primitiveKind
	name string
}

var (
	Void    Type = &primitive{kindVoid, "void"}
	Nil     Type = &primitive{kindNil, "nil"}
	Unused  Type = &primitive{kindUnused, "unused"}
	Boolean Type = &primitive{kindBoolean, "boolean"}
	Int     Type = &primitive{kindInt, "int"}
	Float   Type = &primitive{kindFloat, "float"}
)

// String returns the name of the type.
func (p *primitive) String() string {
	return p.name
}

// AssignableTo allows int into float and nil into any reference.
func (p *primitive) AssignableTo(other Type) bool {
	switch p.kind {
	case kindNil:
		return other == Nil || IsReference(other)
	case kindInt:
		return other == Int || other == Float
	case kindBoolean, kindFloat:
		return other == Type(p)
	default:
		return false
	}
}

// AssignableToSpecial is the identity except for nil.
func (p *primitive) AssignableToSpecial(other Type) bool {
	if p.kind == kindNil {
		return p.AssignableTo(other)
	}
	return other == Type(p)
}

// LeastCommonSupertype returns the wider of p and other, nil when they
// are unrelated.
func (p *primitive) LeastCommonSupertype(other Type) Type {
	switch p.kind {
	case kindUnused:
		return other
	case kindNil:
		if other == Nil || other == Unused || IsReference(other) {
			if other == Unused {
				return Nil
			}
			return other
		}
		return nil
	}
	switch {
	case other == Type(p), other == Unused:
		return p
	case p.AssignableTo(other):
		return other
	case other.AssignableTo(p):
		return p
	}
	return nil
}

// Size returns 0 for void and 1 otherwise.
func (p *primitive) Size() int {
	if p.kind == kindVoid {
		return 0
	}
	return 1
}

// IsReference reports whether t is a class, an array or nil.
func IsReference(t Type) bool {
	switch t.(type) {
	case *ClassType, *ArrayType:
		return true
	}
	return t == Nil
}

// IsNumeric reports whether t is int or float.
func IsNumeric(t Type) bool {
	return t == Int || t == Float
}

// IsPrimitive reports whether t is one of the primitive singletons.
func IsPrimitive(t Type) bool {
	_, ok := t.(*primitive)
	return ok
}

// List is an ordered list of types, used for formal and actual parameters.
type List []Type

// Empty is the parameter list of nullary members.
var Empty = List{}

// Equal reports whether both lists hold the same types in the same order.
func (l List) Equal(other List) bool {
	if len(l) != len(other) {
		return false
	}
	for i, t := range l {
		if t != other[i] {
			return false
		}
	}
	return true
}

// AssignableTo is element-wise assignability between lists of equal length.
func (l List) AssignableTo(other List) bool {
	if len(l) != len(other) {
		return false
	}
	for i, t := range l {
		if !t.AssignableTo(other[i]) {
			return false
		}
	}
	return true
}

// String joins the types with commas.
func (l List) String() string {
	parts := make([]string, len(l))
	for i, t := range l {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}
