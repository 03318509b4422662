package ast

import (
	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/semantic"
	"martianoff/kitten/internal/types"
)

// Operator is a binary operator.
type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
	And
	Or
	Equal
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

var operatorSymbols = [...]string{"+", "-", "*", "/", "&", "|", "=", "!=", "<", "<=", ">", ">="}

// String returns the source symbol of o.
func (o Operator) String() string { return operatorSymbols[o] }

func (o Operator) arithmetic() bool { return o <= Div }
func (o Operator) logical() bool    { return o == And || o == Or }
func (o Operator) equality() bool   { return o == Equal || o == NotEqual }
func (o Operator) ordering() bool   { return o >= LessThan }

func (o Operator) comparison() bool { return o.equality() || o.ordering() }

var arithOps = map[Operator]ir.ArithOp{Add: ir.OpAdd, Sub: ir.OpSub, Mul: ir.OpMul, Div: ir.OpDiv}

var cmpOps = map[Operator]ir.CmpOp{
	Equal:              ir.CmpEQ,
	NotEqual:           ir.CmpNE,
	LessThan:           ir.CmpLT,
	LessThanOrEqual:    ir.CmpLE,
	GreaterThan:        ir.CmpGT,
	GreaterThanOrEqual: ir.CmpGE,
}

// BinOp applies Op to Left and Right.
type BinOp struct {
	expr
	Op    Operator
	Left  Expression
	Right Expression
	// operands is the type both operands are converted to before the
	// operation.
	operands types.Type
}

var _ tester = (*BinOp)(nil)

// NewBinOp returns left op right.
func NewBinOp(pos int, op Operator, left, right Expression) *BinOp {
	return &BinOp{expr: expr{node: node{pos: pos}}, Op: op, Left: left, Right: right}
}

// TypeCheck computes the type both operands are converted to.
func (b *BinOp) TypeCheck(env *semantic.Env) types.Type {
	if b.Op.logical() {
		mustBeBoolean(b.Left, env)
		mustBeBoolean(b.Right, env)
		b.operands = types.Boolean
		return b.record(env, types.Boolean)
	}

	lt := b.Left.TypeCheck(env)
	rt := b.Right.TypeCheck(env)
	b.operands = lt.LeastCommonSupertype(rt)

	switch {
	case b.Op.arithmetic():
		if !types.IsNumeric(lt) || !types.IsNumeric(rt) {
			return b.errorType(env, "numerical argument required")
		}
		return b.record(env, b.operands)
	case b.Op.ordering():
		if !types.IsNumeric(lt) || !types.IsNumeric(rt) {
			b.fail(env, "numerical arguments required")
		}
	default:
		if !lt.AssignableTo(rt) && !rt.AssignableTo(lt) {
			b.fail(env, "illegal comparison")
		}
	}
	return b.record(env, types.Boolean)
}

func (b *BinOp) translateOperands(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	return translateAs(b.Left, b.operands, g, translateAs(b.Right, b.operands, g, cont))
}

// Translate evaluates both operands and applies the operator.
func (b *BinOp) Translate(g *ir.Graph, cont ir.BlockID) ir.BlockID {
	var op ir.Instruction
	switch {
	case b.Op.arithmetic():
		op = ir.Arith{Op: arithOps[b.Op], Type: b.operands}
	case b.Op == And:
		op = ir.Logic{Op: ir.OpAnd}
	case b.Op == Or:
		op = ir.Logic{Op: ir.OpOr}
	default:
		op = ir.Compare{Op: cmpOps[b.Op], Type: b.operands}
	}
	return b.translateOperands(g, g.Prefix(cont, op))
}

// translateAsTest compiles a comparison straight into a conditional branch.
func (b *BinOp) translateAsTest(g *ir.Graph, yes, no ir.BlockID) ir.BlockID {
	if !b.Op.comparison() {
		return b.Translate(g, g.Branch(ir.IfTrue{}, yes, no))
	}
	cmp := ir.Compare{Op: cmpOps[b.Op], Type: b.operands}
	return b.translateOperands(g, g.Branch(cmp.ToBranching(), yes, no))
}
