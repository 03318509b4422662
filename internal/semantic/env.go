// Package semantic holds the scoped environment used while type-checking a
// piece of code.
package semantic

import (
	"fmt"

	"src.elv.sh/pkg/persistent/hash"
	"src.elv.sh/pkg/persistent/hashmap"

	"martianoff/kitten/internal/diag"
	"martianoff/kitten/internal/types"
)

// Binding is what a local variable name stands for.
type Binding struct {
	Type types.Type
	Slot int
}

// body is shared by every environment derived while checking one code body.
type body struct {
	class      *types.ClassType
	returnType types.Type
	inTest     bool
	nextSlot   int
}

// Env is an immutable map from local variable names to bindings. Declaring a
// variable returns a new Env and leaves the receiver unchanged, so an inner
// scope is discarded simply by going back to the outer Env value.
//
// Slots are numbered per code body and are never reused, even by variables of
// sibling scopes.
type Env struct {
	body *body
	vars hashmap.Map
}

func equalKey(k1, k2 any) bool {
	return k1.(string) == k2.(string)
}

func hashKey(k any) uint32 {
	return hash.String(k.(string))
}

// NewEnv creates the empty environment for a code body of class ct returning
// returnType. inTest marks the body of a test, where assert is allowed.
func NewEnv(ct *types.ClassType, returnType types.Type, inTest bool) *Env {
	return &Env{
		body: &body{class: ct, returnType: returnType, inTest: inTest},
		vars: hashmap.New(equalKey, hashKey),
	}
}

// Declare binds name to a fresh slot holding values of type t.
func (e *Env) Declare(name string, t types.Type) *Env {
	slot := e.body.nextSlot
	e.body.nextSlot++
	return &Env{body: e.body, vars: e.vars.Assoc(name, Binding{Type: t, Slot: slot})}
}

// Lookup finds the binding of name.
func (e *Env) Lookup(name string) (Binding, bool) {
	v, ok := e.vars.Index(name)
	if !ok {
		return Binding{}, false
	}
	return v.(Binding), true
}

// Len returns the number of visible variables.
func (e *Env) Len() int {
	return e.vars.Len()
}

// Slots returns how many local slots the code body has used so far.
func (e *Env) Slots() int {
	return e.body.nextSlot
}

// Class returns the class whose code is being checked.
func (e *Env) Class() *types.ClassType {
	return e.body.class
}

// Universe returns the registry of the class being checked.
func (e *Env) Universe() *types.Universe {
	return e.body.class.Universe()
}

// ReturnType returns the declared return type of the code body.
func (e *Env) ReturnType() types.Type {
	return e.body.returnType
}

// InTest reports whether the code body is a test.
func (e *Env) InTest() bool {
	return e.body.inTest
}

// Diagnostics returns the error sink of the class being checked.
func (e *Env) Diagnostics() *diag.Diagnostics {
	return e.body.class.Diagnostics()
}

// Error reports a semantic error at pos.
func (e *Env) Error(pos int, msg string) {
	e.Diagnostics().Error(pos, msg)
}

// Errorf reports a formatted semantic error at pos.
func (e *Env) Errorf(pos int, format string, args ...any) {
	e.Error(pos, fmt.Sprintf(format, args...))
}
