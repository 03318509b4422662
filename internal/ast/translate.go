package ast

import (
	"martianoff/kitten/internal/ir"
	"martianoff/kitten/internal/types"
)

// StringClass is the runtime class of string literals.
const StringClass = "String"

// runtimeString loads and checks the String class. Code printing a message
// needs String.output() checked before it is translated.
func runtimeString(u *types.Universe) *types.ClassType {
	str := u.Resolve(StringClass)
	str.TypeCheck()
	return str
}

// printAndReturn builds the block that prints msg and returns status.
func printAndReturn(g *ir.Graph, u *types.Universe, msg string, status int32) ir.BlockID {
	ret := g.Final(ir.Return{Type: types.Int})
	return g.Prefix(ret, ir.NewString{Value: msg}, outputCall(u), ir.Const{Type: types.Int, Value: status})
}

// outputCall prints the String on top of the stack. Without a runtime
// String.output() the string is just dropped.
func outputCall(u *types.Universe) ir.Instruction {
	str := u.Resolve(StringClass)
	if out := str.MethodLookup("output", types.Empty); out != nil {
		return ir.NewVirtualCall(str, out)
	}
	return ir.Pop{Type: str}
}
