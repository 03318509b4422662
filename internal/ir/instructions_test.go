package ir_test

import (
	"testing"

	"martianoff/kitten/internal/diag"
	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hierarchy struct{ supers map[string]string }

type class struct{ super string }

func (c class) SuperclassName() string        { return c.super }
func (class) AddMembersTo(*types.ClassType) {}
func (class) TypeCheck(*types.ClassType)    {}

func (h hierarchy) Load(name string) (types.ClassSource, *diag.Diagnostics, error) {
	return class{super: h.supers[name]}, diag.New(name+".kit", ""), nil
}

func TestBranchingNegation(t *testing.T) {
	tests := []struct {
		in   ir.Branching
		want string
	}{
		{ir.IfTrue{}, "if_false"},
		{ir.IfFalse{}, "if_true"},
		{ir.IfCmp{Op: ir.CmpEQ, Type: types.Int}, "if_cmpne int"},
		{ir.IfCmp{Op: ir.CmpNE, Type: types.Int}, "if_cmpeq int"},
		{ir.IfCmp{Op: ir.CmpLT, Type: types.Float}, "if_cmpge float"},
		{ir.IfCmp{Op: ir.CmpLE, Type: types.Float}, "if_cmpgt float"},
		{ir.IfCmp{Op: ir.CmpGT, Type: types.Int}, "if_cmple int"},
		{ir.IfCmp{Op: ir.CmpGE, Type: types.Int}, "if_cmplt int"},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Negate().String())
			assert.Equal(t, tt.in, tt.in.Negate().Negate())
		})
	}
}

func TestCompareToBranching(t *testing.T) {
	c := ir.Compare{Op: ir.CmpLE, Type: types.Float}
	assert.Equal(t, "le float", c.String())
	assert.Equal(t, ir.IfCmp{Op: ir.CmpLE, Type: types.Float}, c.ToBranching())
}

func TestInstructionStrings(t *testing.T) {
	u := types.NewUniverse(hierarchy{})
	obj := u.Object()

	tests := []struct {
		instr ir.Instruction
		want  string
	}{
		{ir.Const{Type: types.Nil}, "const nil"},
		{ir.Const{Type: types.Boolean, Value: true}, "const true"},
		{ir.Const{Type: types.Float, Value: float32(1.5)}, "const 1.5"},
		{ir.Arith{Op: ir.OpAdd, Type: types.Int}, "add int"},
		{ir.Arith{Op: ir.OpDiv, Type: types.Float}, "div float"},
		{ir.Logic{Op: ir.OpAnd}, "and"},
		{ir.Logic{Op: ir.OpOr}, "or"},
		{ir.Cast{From: types.Int, To: types.Float}, "cast int into float"},
		{ir.New{Class: obj}, "new Object"},
		{ir.NewArray{Elem: types.Int, Dimensions: 1}, "newarray of int of 1 dimension"},
		{ir.NewArray{Elem: types.Int, Dimensions: 2}, "newarray of int of 2 dimensions"},
		{ir.Return{Type: types.Void}, "return void"},
		{ir.NewString{Value: "hi"}, `newstring "hi"`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.instr.String())
		})
	}
}

func TestStackEffects(t *testing.T) {
	tests := []struct {
		name         string
		instr        ir.Instruction
		pops, pushes int
	}{
		{"nop", ir.Nop{}, 0, 0},
		{"load", ir.Load{Type: types.Int}, 0, 1},
		{"store", ir.Store{Type: types.Int}, 1, 0},
		{"dup", ir.Dup{Type: types.Int}, 1, 2},
		{"arith", ir.Arith{Type: types.Int}, 2, 1},
		{"arraystore", ir.ArrayStore{Type: types.Int}, 3, 0},
		{"newarray", ir.NewArray{Elem: types.Int, Dimensions: 2}, 2, 1},
		{"return void", ir.Return{Type: types.Void}, 0, 0},
		{"return int", ir.Return{Type: types.Int}, 1, 0},
		{"if_cmp", ir.IfCmp{Op: ir.CmpEQ, Type: types.Int}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pops, tt.instr.Pops())
			assert.Equal(t, tt.pushes, tt.instr.Pushes())
		})
	}
}

func TestVirtualCallTargets(t *testing.T) {
	u := types.NewUniverse(hierarchy{supers: map[string]string{"B": "A", "C": "B", "D": "A"}})
	a, b, c, d := u.Resolve("A"), u.Resolve("B"), u.Resolve("C"), u.Resolve("D")

	am, err := a.AddMethod("m", types.List{types.Int}, types.Int, nil)
	require.NoError(t, err)
	bm, err := b.AddMethod("m", types.List{types.Int}, types.Int, nil)
	require.NoError(t, err)
	_, err = c.AddMethod("m", types.List{types.Float}, types.Int, nil)
	require.NoError(t, err)
	_ = d

	call := ir.NewVirtualCall(a, am)
	assert.ElementsMatch(t, []*types.CodeSignature{am, bm}, call.Targets())
	assert.Equal(t, 2, call.Pops())
	assert.Equal(t, 1, call.Pushes())

	call = ir.NewVirtualCall(b, bm)
	assert.Equal(t, []*types.CodeSignature{bm}, call.Targets())
}

func TestConstructorCall(t *testing.T) {
	u := types.NewUniverse(hierarchy{})
	obj := u.Object()
	ctor, err := obj.AddConstructor(types.Empty, nil)
	require.NoError(t, err)

	call := ir.ConstructorCall{Constructor: ctor}
	assert.Equal(t, []*types.CodeSignature{ctor}, call.Targets())
	assert.Equal(t, 1, call.Pops())
	assert.Equal(t, 0, call.Pushes())

	var _ ir.Call = call
	var _ ir.FieldAccess = ir.GetField{}
}
