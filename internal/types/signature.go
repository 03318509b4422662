package types

import "fmt"

// ConstructorName is the member name every constructor is registered under.
const ConstructorName = "<init>"

// Declaration is the syntax node that declared a member.
type Declaration interface {
	Pos() int
}

// Signature is a class member: a field or a piece of code.
type Signature interface {
	DefiningClass() *ClassType
	Name() string
	Decl() Declaration
	// Key identifies the member; two signatures denote the same member
	// exactly when their keys are equal.
	Key() string
	String() string
}

// FieldSignature describes a field of a class.
type FieldSignature struct {
	class *ClassType
	name  string
	typ   Type
	decl  Declaration
}

var _ Signature = (*FieldSignature)(nil)

// DefiningClass returns the class declaring the field.
func (f *FieldSignature) DefiningClass() *ClassType { return f.class }

// Name returns the field name.
func (f *FieldSignature) Name() string { return f.name }

// Type returns the type of the field.
func (f *FieldSignature) Type() Type { return f.typ }

// Decl returns the declaration of the field.
func (f *FieldSignature) Decl() Declaration { return f.decl }

// Key identifies the field in a program.
func (f *FieldSignature) Key() string {
	return "field:" + f.String()
}

// String returns Class.name:type.
func (f *FieldSignature) String() string {
	return fmt.Sprintf("%s.%s:%s", f.class.name, f.name, f.typ)
}

// CodeKind distinguishes the four kinds of code members.
type CodeKind int

const (
	KindConstructor CodeKind = iota
	KindMethod
	KindFixture
	KindTest
)

// String returns the kind as written in source.
func (k CodeKind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	case KindFixture:
		return "fixture"
	case KindTest:
		return "test"
	}
	return "unknown"
}

// CodeSignature describes a constructor, method, fixture or test.
type CodeSignature struct {
	kind       CodeKind
	class      *ClassType
	name       string
	params     List
	returnType Type
	decl       Declaration
}

var _ Signature = (*CodeSignature)(nil)

// Kind returns the kind of code.
func (c *CodeSignature) Kind() CodeKind { return c.kind }

// DefiningClass returns the class declaring the code.
func (c *CodeSignature) DefiningClass() *ClassType { return c.class }

// Name returns the name, <init> for constructors.
func (c *CodeSignature) Name() string { return c.name }

// Params returns the parameter types.
func (c *CodeSignature) Params() List { return c.params }

// ReturnType returns the return type, void for anything but methods.
func (c *CodeSignature) ReturnType() Type { return c.returnType }

// Decl returns the declaration holding the body.
func (c *CodeSignature) Decl() Declaration { return c.decl }

// Key is built from the defining class, name, parameters and return type.
// Tests are identified by class and name alone.
func (c *CodeSignature) Key() string {
	if c.kind == KindTest {
		return fmt.Sprintf("test:%s.%s", c.class.name, c.name)
	}
	return fmt.Sprintf("%s:%s.%s(%s):%s", c.kind, c.class.name, c.name, c.params, c.returnType)
}

// String returns the signature as shown in listings.
func (c *CodeSignature) String() string {
	if c.kind == KindTest {
		return fmt.Sprintf("%s.test %s", c.class.name, c.name)
	}
	return fmt.Sprintf("%s.%s(%s):%s", c.class.name, c.name, c.params, c.returnType)
}
