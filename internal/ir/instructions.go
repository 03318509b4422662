// Package ir defines the typed stack-machine instructions the compiler
// translates code into, and the graph of basic blocks holding them.
package ir

import (
	"fmt"
	"strconv"
	"strings"

	"martianoff/kitten/internal/types"
)

// Instruction is a single stack-machine operation. Pops and Pushes describe
// how many values it removes from and leaves on the operand stack.
type Instruction interface {
	String() string
	Pops() int
	Pushes() int
}

// Sequential instructions fall through to the next instruction.
type Sequential interface {
	Instruction
	sequential()
}

// Branching instructions start a successor block; the block is entered only
// when the test holds.
type Branching interface {
	Instruction
	Negate() Branching
}

// Final instructions end a block with no successors.
type Final interface {
	Instruction
	final()
}

// FieldAccess is implemented by instructions reading or writing a field.
type FieldAccess interface {
	Sequential
	Field() *types.FieldSignature
}

// Call is implemented by instructions invoking code.
type Call interface {
	Sequential
	Static() *types.CodeSignature
	// Targets is the set of code signatures the call may dispatch to at run
	// time.
	Targets() []*types.CodeSignature
}

type seq struct{}

func (seq) sequential() {}

// Nop does nothing.
type Nop struct{ seq }

func (Nop) String() string { return "nop" }
func (Nop) Pops() int      { return 0 }
func (Nop) Pushes() int    { return 0 }

// IsNop reports whether instr is a no-op.
func IsNop(instr Instruction) bool {
	_, ok := instr.(Nop)
	return ok
}

// Const pushes a constant of a primitive type or nil. Value is nil, a bool,
// an int32 or a float32.
type Const struct {
	seq
	Type  types.Type
	Value any
}

func (c Const) String() string {
	if c.Type == types.Nil {
		return "const nil"
	}
	return fmt.Sprintf("const %v", c.Value)
}
func (Const) Pops() int   { return 0 }
func (Const) Pushes() int { return 1 }

// NewString pushes a new String object holding Value.
type NewString struct {
	seq
	Value string
}

func (n NewString) String() string { return "newstring " + strconv.Quote(n.Value) }
func (NewString) Pops() int        { return 0 }
func (NewString) Pushes() int      { return 1 }

// Load pushes local variable Slot.
type Load struct {
	seq
	Slot int
	Type types.Type
}

func (l Load) String() string { return fmt.Sprintf("load %d of type %s", l.Slot, l.Type) }
func (Load) Pops() int        { return 0 }
func (Load) Pushes() int      { return 1 }

// Store pops the top of the stack into local variable Slot.
type Store struct {
	seq
	Slot int
	Type types.Type
}

func (s Store) String() string { return fmt.Sprintf("store %d of type %s", s.Slot, s.Type) }
func (Store) Pops() int        { return 1 }
func (Store) Pushes() int      { return 0 }

// Dup duplicates the top of the stack.
type Dup struct {
	seq
	Type types.Type
}

func (d Dup) String() string { return "dup " + d.Type.String() }
func (Dup) Pops() int        { return 1 }
func (Dup) Pushes() int      { return 2 }

// Pop discards the top of the stack.
type Pop struct {
	seq
	Type types.Type
}

func (p Pop) String() string { return "pop " + p.Type.String() }
func (Pop) Pops() int        { return 1 }
func (Pop) Pushes() int      { return 0 }

// ArithOp is a binary arithmetic operator.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
)

var arithNames = [...]string{"add", "sub", "mul", "div"}

func (o ArithOp) String() string { return arithNames[o] }

// Arith pops two numbers of Type and pushes the result of Op.
type Arith struct {
	seq
	Op   ArithOp
	Type types.Type
}

func (a Arith) String() string { return a.Op.String() + " " + a.Type.String() }
func (Arith) Pops() int        { return 2 }
func (Arith) Pushes() int      { return 1 }

// Neg negates a number, or complements a boolean.
type Neg struct {
	seq
	Type types.Type
}

func (n Neg) String() string { return "neg " + n.Type.String() }
func (Neg) Pops() int        { return 1 }
func (Neg) Pushes() int      { return 1 }

// LogicOp is a non short-circuiting boolean operator.
type LogicOp int

const (
	OpAnd LogicOp = iota
	OpOr
)

// Logic pops two booleans and pushes their conjunction or disjunction.
type Logic struct {
	seq
	Op LogicOp
}

func (l Logic) String() string {
	if l.Op == OpAnd {
		return "and"
	}
	return "or"
}
func (Logic) Pops() int   { return 2 }
func (Logic) Pushes() int { return 1 }

// CmpOp is a comparison operator.
type CmpOp int

const (
	CmpEQ CmpOp = iota
	CmpNE
	CmpLT
	CmpLE
	CmpGT
	CmpGE
)

var cmpNames = [...]string{"eq", "ne", "lt", "le", "gt", "ge"}

func (o CmpOp) String() string { return cmpNames[o] }

// Negate returns the operator that holds exactly when o does not.
func (o CmpOp) Negate() CmpOp {
	switch o {
	case CmpEQ:
		return CmpNE
	case CmpNE:
		return CmpEQ
	case CmpLT:
		return CmpGE
	case CmpLE:
		return CmpGT
	case CmpGT:
		return CmpLE
	}
	return CmpLT
}

// Compare pops two values of Type and pushes the boolean result of Op.
type Compare struct {
	seq
	Op   CmpOp
	Type types.Type
}

func (c Compare) String() string { return c.Op.String() + " " + c.Type.String() }
func (Compare) Pops() int        { return 2 }
func (Compare) Pushes() int      { return 1 }

// ToBranching returns the branching form of the comparison.
func (c Compare) ToBranching() Branching {
	return IfCmp{Op: c.Op, Type: c.Type}
}

// Cast converts between numeric types or checks a reference cast.
type Cast struct {
	seq
	From types.Type
	To   types.Type
}

func (c Cast) String() string { return fmt.Sprintf("cast %s into %s", c.From, c.To) }
func (Cast) Pops() int        { return 1 }
func (Cast) Pushes() int      { return 1 }

// New pushes a fresh, not yet constructed object of Class.
type New struct {
	seq
	Class *types.ClassType
}

func (n New) String() string { return "new " + n.Class.Name() }
func (New) Pops() int        { return 0 }
func (New) Pushes() int      { return 1 }

// NewArray pops Dimensions sizes and pushes a new array of Elem.
type NewArray struct {
	seq
	Elem       types.Type
	Dimensions int
}

func (n NewArray) String() string {
	if n.Dimensions == 1 {
		return fmt.Sprintf("newarray of %s of 1 dimension", n.Elem)
	}
	return fmt.Sprintf("newarray of %s of %d dimensions", n.Elem, n.Dimensions)
}
func (n NewArray) Pops() int { return n.Dimensions }
func (NewArray) Pushes() int { return 1 }

// ArrayLoad pops an array and an index and pushes the element.
type ArrayLoad struct {
	seq
	Type types.Type
}

func (a ArrayLoad) String() string { return "arrayload " + a.Type.String() }
func (ArrayLoad) Pops() int        { return 2 }
func (ArrayLoad) Pushes() int      { return 1 }

// ArrayStore pops an array, an index and a value and stores the value.
type ArrayStore struct {
	seq
	Type types.Type
}

func (a ArrayStore) String() string { return "arraystore " + a.Type.String() }
func (ArrayStore) Pops() int        { return 3 }
func (ArrayStore) Pushes() int      { return 0 }

// GetField pops an object and pushes the value of FieldSig.
type GetField struct {
	seq
	FieldSig *types.FieldSignature
}

var _ FieldAccess = GetField{}

func (g GetField) String() string               { return "getfield " + g.FieldSig.String() }
func (GetField) Pops() int                      { return 1 }
func (GetField) Pushes() int                    { return 1 }
func (g GetField) Field() *types.FieldSignature { return g.FieldSig }

// PutField pops an object and a value and stores the value into FieldSig.
type PutField struct {
	seq
	FieldSig *types.FieldSignature
}

var _ FieldAccess = PutField{}

func (p PutField) String() string               { return "putfield " + p.FieldSig.String() }
func (PutField) Pops() int                      { return 2 }
func (PutField) Pushes() int                    { return 0 }
func (p PutField) Field() *types.FieldSignature { return p.FieldSig }

// VirtualCall pops a receiver and the actuals and dispatches on the run-time
// class of the receiver.
type VirtualCall struct {
	seq
	Receiver *types.ClassType
	Method   *types.CodeSignature
	targets  []*types.CodeSignature
}

var _ Call = (*VirtualCall)(nil)

// NewVirtualCall creates a call to method on a receiver of static type
// receiver. The dynamic targets are the implementations of method visible
// from receiver and from each of its subclasses.
func NewVirtualCall(receiver *types.ClassType, method *types.CodeSignature) *VirtualCall {
	seen := make(map[*types.CodeSignature]bool)
	var targets []*types.CodeSignature
	for _, k := range receiver.Instances() {
		if m := k.MethodLookup(method.Name(), method.Params()); m != nil && !seen[m] {
			seen[m] = true
			targets = append(targets, m)
		}
	}
	return &VirtualCall{Receiver: receiver, Method: method, targets: targets}
}

func (v *VirtualCall) String() string {
	return fmt.Sprintf("call %s %s", v.Method, targetList(v.targets))
}
func (v *VirtualCall) Pops() int { return 1 + len(v.Method.Params()) }
func (v *VirtualCall) Pushes() int {
	if v.Method.ReturnType() == types.Void {
		return 0
	}
	return 1
}
func (v *VirtualCall) Static() *types.CodeSignature    { return v.Method }
func (v *VirtualCall) Targets() []*types.CodeSignature { return v.targets }

// ConstructorCall pops an object and the actuals and runs Constructor on it.
type ConstructorCall struct {
	seq
	Constructor *types.CodeSignature
}

var _ Call = ConstructorCall{}

func (c ConstructorCall) String() string {
	return fmt.Sprintf("call %s %s", c.Constructor, targetList(c.Targets()))
}
func (c ConstructorCall) Pops() int                       { return 1 + len(c.Constructor.Params()) }
func (ConstructorCall) Pushes() int                       { return 0 }
func (c ConstructorCall) Static() *types.CodeSignature    { return c.Constructor }
func (c ConstructorCall) Targets() []*types.CodeSignature { return []*types.CodeSignature{c.Constructor} }

// targetList names the classes defining the possible targets of a call.
func targetList(sigs []*types.CodeSignature) string {
	parts := make([]string, len(sigs))
	for i, s := range sigs {
		parts[i] = s.DefiningClass().Name()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Return ends the code, returning a value of Type unless Type is void.
type Return struct {
	Type types.Type
}

func (Return) final()           {}
func (r Return) String() string { return "return " + r.Type.String() }
func (r Return) Pops() int      { return r.Type.Size() }
func (Return) Pushes() int      { return 0 }

// IfTrue pops a boolean and holds when it is true.
type IfTrue struct{}

func (IfTrue) String() string    { return "if_true" }
func (IfTrue) Pops() int         { return 1 }
func (IfTrue) Pushes() int       { return 0 }
func (IfTrue) Negate() Branching { return IfFalse{} }

// IfFalse pops a boolean and holds when it is false.
type IfFalse struct{}

func (IfFalse) String() string    { return "if_false" }
func (IfFalse) Pops() int         { return 1 }
func (IfFalse) Pushes() int       { return 0 }
func (IfFalse) Negate() Branching { return IfTrue{} }

// IfCmp pops two values of Type and holds when Op does.
type IfCmp struct {
	Op   CmpOp
	Type types.Type
}

func (i IfCmp) String() string    { return "if_cmp" + i.Op.String() + " " + i.Type.String() }
func (IfCmp) Pops() int           { return 2 }
func (IfCmp) Pushes() int         { return 0 }
func (i IfCmp) Negate() Branching { return IfCmp{Op: i.Op.Negate(), Type: i.Type} }
