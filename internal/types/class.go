package types

import (
	"errors"
	"fmt"

	"martianoff/kitten/internal/diag"
)

// ObjectName is the name of the root of the class hierarchy.
const ObjectName = "Object"

var (
	// ErrNoMatchingMember is returned when no overload accepts the arguments.
	ErrNoMatchingMember = errors.New("no matching member")
	// ErrAmbiguousCall is returned when more than one overload is most specific.
	ErrAmbiguousCall = errors.New("ambiguous call")
	// ErrDuplicateMember is returned when a member is declared twice.
	ErrDuplicateMember = errors.New("duplicate member")
)

// ClassSource provides the declarations of a class to the registry.
type ClassSource interface {
	SuperclassName() string
	// AddMembersTo registers fields, constructors, methods, fixtures and
	// tests on ct.
	AddMembersTo(ct *ClassType)
	// TypeCheck checks every member declaration of ct.
	TypeCheck(ct *ClassType)
}

// ClassType is the descriptor of a loaded class.
type ClassType struct {
	universe   *Universe
	name       string
	superclass *ClassType
	subclasses []*ClassType
	source     ClassSource
	diag       *diag.Diagnostics

	fieldOrder   []*FieldSignature
	fields       map[string]*FieldSignature
	constructors []*CodeSignature
	methodOrder  []string
	methods      map[string][]*CodeSignature
	fixtures     []*CodeSignature
	tests        []*CodeSignature

	checked bool
}

func newClassType(u *Universe, name string) *ClassType {
	return &ClassType{
		universe: u,
		name:     name,
		fields:   make(map[string]*FieldSignature),
		methods:  make(map[string][]*CodeSignature),
	}
}

// String returns the class name.
func (c *ClassType) String() string { return c.name }

// Name returns the class name.
func (c *ClassType) Name() string { return c.name }

// Universe returns the registry the class belongs to.
func (c *ClassType) Universe() *Universe { return c.universe }

// Superclass returns the direct superclass, nil only for Object.
func (c *ClassType) Superclass() *ClassType { return c.superclass }

// Subclasses returns the direct subclasses loaded so far.
func (c *ClassType) Subclasses() []*ClassType { return c.subclasses }

// Diagnostics returns the sink errors about this class are reported to.
func (c *ClassType) Diagnostics() *diag.Diagnostics { return c.diag }

// Source returns the declarations the class was built from, nil for a
// synthetic class.
func (c *ClassType) Source() ClassSource { return c.source }

// IsObject reports whether c is the root class.
func (c *ClassType) IsObject() bool { return c.name == ObjectName }

// SubclassOf reports whether c is other or inherits from it.
func (c *ClassType) SubclassOf(other *ClassType) bool {
	for k := c; k != nil; k = k.superclass {
		if k == other {
			return true
		}
	}
	return false
}

// AssignableTo reports whether c is other or a subclass of it.
func (c *ClassType) AssignableTo(other Type) bool {
	o, ok := other.(*ClassType)
	return ok && c.SubclassOf(o)
}

// AssignableToSpecial is AssignableTo.
func (c *ClassType) AssignableToSpecial(other Type) bool {
	return c.AssignableTo(other)
}

// LeastCommonSupertype returns the closest superclass of c that other
// extends.
func (c *ClassType) LeastCommonSupertype(other Type) Type {
	switch o := other.(type) {
	case *ArrayType:
		return c.universe.Object()
	case *ClassType:
		for k := c; k != nil; k = k.superclass {
			if o.SubclassOf(k) {
				return k
			}
		}
		return c.universe.Object()
	}
	if other == Nil || other == Unused {
		return c
	}
	return nil
}

// Size returns 1.
func (c *ClassType) Size() int { return 1 }

// Fields returns the fields declared by c in declaration order.
func (c *ClassType) Fields() []*FieldSignature { return c.fieldOrder }

// Constructors returns the constructors declared by c.
func (c *ClassType) Constructors() []*CodeSignature { return c.constructors }

// Methods returns the methods declared by c, grouped by name in declaration
// order.
func (c *ClassType) Methods() []*CodeSignature {
	var out []*CodeSignature
	for _, name := range c.methodOrder {
		out = append(out, c.methods[name]...)
	}
	return out
}

// Fixtures returns the fixtures declared by c.
func (c *ClassType) Fixtures() []*CodeSignature { return c.fixtures }

// Tests returns the tests declared by c.
func (c *ClassType) Tests() []*CodeSignature { return c.tests }

// AddField registers a field.
func (c *ClassType) AddField(name string, t Type, decl Declaration) (*FieldSignature, error) {
	if _, ok := c.fields[name]; ok {
		return nil, fmt.Errorf("field %s: %w", name, ErrDuplicateMember)
	}
	f := &FieldSignature{class: c, name: name, typ: t, decl: decl}
	c.fields[name] = f
	c.fieldOrder = append(c.fieldOrder, f)
	return f, nil
}

// AddConstructor registers a constructor with the given formal types.
func (c *ClassType) AddConstructor(params List, decl Declaration) (*CodeSignature, error) {
	if c.ConstructorLookup(params) != nil {
		return nil, fmt.Errorf("constructor %s(%s): %w", c.name, params, ErrDuplicateMember)
	}
	sig := &CodeSignature{kind: KindConstructor, class: c, name: ConstructorName, params: params, returnType: Void, decl: decl}
	c.constructors = append(c.constructors, sig)
	return sig, nil
}

// AddMethod registers a method.
func (c *ClassType) AddMethod(name string, params List, returnType Type, decl Declaration) (*CodeSignature, error) {
	for _, m := range c.methods[name] {
		if m.params.Equal(params) {
			return nil, fmt.Errorf("method %s(%s): %w", name, params, ErrDuplicateMember)
		}
	}
	if _, ok := c.methods[name]; !ok {
		c.methodOrder = append(c.methodOrder, name)
	}
	sig := &CodeSignature{kind: KindMethod, class: c, name: name, params: params, returnType: returnType, decl: decl}
	c.methods[name] = append(c.methods[name], sig)
	return sig, nil
}

// AddFixture registers a fixture. Fixtures are numbered in declaration order.
func (c *ClassType) AddFixture(decl Declaration) *CodeSignature {
	sig := &CodeSignature{
		kind:       KindFixture,
		class:      c,
		name:       fmt.Sprintf("fixture%d", len(c.fixtures)),
		params:     Empty,
		returnType: Void,
		decl:       decl,
	}
	c.fixtures = append(c.fixtures, sig)
	return sig
}

// AddTest registers a test.
func (c *ClassType) AddTest(name string, decl Declaration) (*CodeSignature, error) {
	if c.TestLookup(name) != nil {
		return nil, fmt.Errorf("test %s: %w", name, ErrDuplicateMember)
	}
	sig := &CodeSignature{kind: KindTest, class: c, name: name, params: Empty, returnType: Void, decl: decl}
	c.tests = append(c.tests, sig)
	return sig, nil
}

// FieldLookup finds a field by name in c or its superclasses.
func (c *ClassType) FieldLookup(name string) *FieldSignature {
	for k := c; k != nil; k = k.superclass {
		if f, ok := k.fields[name]; ok {
			return f
		}
	}
	return nil
}

// ConstructorLookup finds the constructor of c with exactly these formals.
func (c *ClassType) ConstructorLookup(params List) *CodeSignature {
	for _, sig := range c.constructors {
		if sig.params.Equal(params) {
			return sig
		}
	}
	return nil
}

// ConstructorsLookup returns the most specific constructors of c accepting
// actuals.
func (c *ClassType) ConstructorsLookup(actuals List) []*CodeSignature {
	return mostSpecific(c.constructors, actuals)
}

// MethodLookup finds the method with exactly these formals in c or its
// superclasses.
func (c *ClassType) MethodLookup(name string, params List) *CodeSignature {
	for k := c; k != nil; k = k.superclass {
		for _, m := range k.methods[name] {
			if m.params.Equal(params) {
				return m
			}
		}
	}
	return nil
}

// MethodsLookup returns the most specific methods visible from c that accept
// actuals. Methods of a superclass overridden in c are not candidates.
func (c *ClassType) MethodsLookup(name string, actuals List) []*CodeSignature {
	own := c.methods[name]
	candidates := append([]*CodeSignature(nil), own...)
	if c.superclass != nil {
	inherited:
		for _, m := range c.superclass.MethodsLookup(name, actuals) {
			for _, o := range own {
				if o.params.Equal(m.params) {
					continue inherited
				}
			}
			candidates = append(candidates, m)
		}
	}
	return mostSpecific(candidates, actuals)
}

// TestLookup finds a test of c by name.
func (c *ClassType) TestLookup(name string) *CodeSignature {
	for _, t := range c.tests {
		if t.name == name {
			return t
		}
	}
	return nil
}

// ResolveMethod selects the unique most specific method for a call.
func (c *ClassType) ResolveMethod(name string, actuals List) (*CodeSignature, error) {
	return unique(c.MethodsLookup(name, actuals), name, actuals)
}

// ResolveConstructor selects the unique most specific constructor for a
// creation expression.
func (c *ClassType) ResolveConstructor(actuals List) (*CodeSignature, error) {
	return unique(c.ConstructorsLookup(actuals), c.name, actuals)
}

func unique(sigs []*CodeSignature, name string, actuals List) (*CodeSignature, error) {
	switch len(sigs) {
	case 0:
		return nil, fmt.Errorf("%s(%s): %w", name, actuals, ErrNoMatchingMember)
	case 1:
		return sigs[0], nil
	}
	return nil, fmt.Errorf("%s(%s): %w", name, actuals, ErrAmbiguousCall)
}

// Instances returns c and all its transitive subclasses.
func (c *ClassType) Instances() []*ClassType {
	out := []*ClassType{c}
	for _, sub := range c.subclasses {
		out = append(out, sub.Instances()...)
	}
	return out
}

// TypeCheck checks c and its superclasses. Each class is checked at most once.
func (c *ClassType) TypeCheck() {
	if c.checked {
		return
	}
	c.checked = true
	if c.superclass != nil {
		c.superclass.TypeCheck()
	}
	if c.source != nil {
		c.source.TypeCheck(c)
	}
}

// Checked reports whether TypeCheck has run on c.
func (c *ClassType) Checked() bool { return c.checked }

// mostSpecific keeps the candidates applicable to actuals that no other
// applicable candidate is more specific than.
func mostSpecific(candidates []*CodeSignature, actuals List) []*CodeSignature {
	var applicable []*CodeSignature
	for _, sig := range candidates {
		if actuals.AssignableTo(sig.params) {
			applicable = append(applicable, sig)
		}
	}
	var out []*CodeSignature
	for _, sig2 := range applicable {
		dominated := false
		for _, sig := range applicable {
			if sig != sig2 && sig.params.AssignableTo(sig2.params) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, sig2)
		}
	}
	return out
}
