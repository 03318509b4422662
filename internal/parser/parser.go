package parser

import (
	"fmt"
	"strconv"

	"martianoff/kitten/internal/ast"
	"martianoff/kitten/internal/diag"
	"martianoff/kitten/internal/types"
)

// Parse parses the source of one class. Syntax errors are reported to the
// returned diagnostics. The class definition is nil only when the class
// header itself cannot be parsed; otherwise it holds every member that could
// be recovered.
func Parse(file, src string) (*ast.ClassDefinition, *diag.Diagnostics) {
	d := diag.New(file, src)
	p := &parser{d: d, lastErr: -1}
	p.toks = newLexer(src, p.report).tokens()
	return p.classDefinition(), d
}

// bailout unwinds the parser to the closest recovery point.
type bailout struct{}

type parser struct {
	toks    []token
	i       int
	d       *diag.Diagnostics
	lastErr int
}

func (p *parser) report(pos int, msg string) {
	if pos == p.lastErr {
		return
	}
	p.lastErr = pos
	p.d.SyntaxError(pos, msg)
}

func (p *parser) fail(pos int, format string, args ...any) {
	p.report(pos, fmt.Sprintf(format, args...))
	panic(bailout{})
}

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) peekAt(k int) token {
	if p.i+k >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+k]
}

func (p *parser) next() token {
	t := p.peek()
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

// is reports whether the next token is the keyword or symbol text.
func (p *parser) is(text string) bool { return p.isAt(0, text) }

func (p *parser) isAt(k int, text string) bool {
	t := p.peekAt(k)
	return (t.kind == tokKeyword || t.kind == tokSymbol) && t.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(text string) token {
	if !p.is(text) {
		p.fail(p.peek().pos, "%q expected, found %s", text, describe(p.peek()))
	}
	return p.next()
}

func (p *parser) ident() token {
	if p.peek().kind != tokIdent {
		p.fail(p.peek().pos, "identifier expected, found %s", describe(p.peek()))
	}
	return p.next()
}

func describe(t token) string {
	if t.kind == tokEOF {
		return "end of file"
	}
	return strconv.Quote(t.text)
}

// try runs f and reports whether it completed without a syntax error.
func (p *parser) try(f func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			ok = false
		}
	}()
	f()
	return true
}

func (p *parser) classDefinition() *ast.ClassDefinition {
	var (
		pos         int
		name, super string
	)
	if !p.try(func() {
		pos = p.expect("class").pos
		name = p.ident().text
		if p.accept("extends") {
			super = p.ident().text
		}
		p.expect("{")
	}) {
		return nil
	}

	var members []ast.Member
	for !p.is("}") && p.peek().kind != tokEOF {
		start := p.i
		var m ast.Member
		if p.try(func() { m = p.member() }) {
			members = append(members, m)
			continue
		}
		p.skipToMember(start)
	}
	if p.try(func() { p.expect("}") }) && p.peek().kind != tokEOF {
		p.report(p.peek().pos, "end of file expected after the class")
	}
	return ast.NewClassDefinition(pos, name, super, members)
}

var memberKeywords = []string{"field", "constructor", "method", "fixture", "test"}

func (p *parser) atMemberKeyword() bool {
	for _, k := range memberKeywords {
		if p.is(k) {
			return true
		}
	}
	return false
}

// skipToMember skips tokens up to the next member keyword or the brace
// closing the class. It always consumes at least one token past start.
func (p *parser) skipToMember(start int) {
	if p.i == start {
		p.next()
	}
	depth := 0
	for p.peek().kind != tokEOF {
		switch {
		case p.is("{"):
			depth++
		case p.is("}"):
			if depth == 0 {
				return
			}
			depth--
		case depth == 0 && p.atMemberKeyword():
			return
		}
		p.next()
	}
}

func (p *parser) member() ast.Member {
	t := p.peek()
	switch {
	case p.accept("field"):
		typ := p.typeExpression()
		name := p.ident().text
		p.accept(";")
		return ast.NewFieldDeclaration(t.pos, typ, name)
	case p.accept("constructor"):
		formals := p.formals()
		return ast.NewConstructorDeclaration(t.pos, formals, p.command())
	case p.accept("method"):
		rt := p.typeExpression()
		name := p.ident().text
		formals := p.formals()
		return ast.NewMethodDeclaration(t.pos, rt, name, formals, p.command())
	case p.accept("fixture"):
		return ast.NewFixtureDeclaration(t.pos, p.command())
	case p.accept("test"):
		name := p.ident().text
		return ast.NewTestDeclaration(t.pos, name, p.command())
	}
	p.fail(t.pos, "member declaration expected, found %s", describe(t))
	return nil
}

func (p *parser) formals() []*ast.FormalParameter {
	p.expect("(")
	var out []*ast.FormalParameter
	if p.accept(")") {
		return out
	}
	for {
		pos := p.peek().pos
		typ := p.typeExpression()
		out = append(out, ast.NewFormalParameter(pos, typ, p.ident().text))
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return out
}

var primitives = map[string]types.Type{
	"int":     types.Int,
	"float":   types.Float,
	"boolean": types.Boolean,
	"void":    types.Void,
}

func (p *parser) atPrimitive() bool {
	t := p.peek()
	_, ok := primitives[t.text]
	return ok && t.kind == tokKeyword
}

func (p *parser) typeExpression() ast.TypeExpression {
	return p.arrayDimensions(p.baseType())
}

func (p *parser) baseType() ast.TypeExpression {
	t := p.peek()
	if p.atPrimitive() {
		p.next()
		return ast.NewPrimitiveTypeExpression(t.pos, primitives[t.text])
	}
	return ast.NewClassTypeExpression(t.pos, p.ident().text)
}

// arrayDimensions wraps typ for every [] that follows.
func (p *parser) arrayDimensions(typ ast.TypeExpression) ast.TypeExpression {
	for p.is("[") && p.isAt(1, "]") {
		p.next()
		p.next()
		typ = ast.NewArrayTypeExpression(typ.Pos(), typ)
	}
	return typ
}

// command parses a single command.
func (p *parser) command() ast.Command {
	t := p.peek()
	switch {
	case p.is("{"):
		return p.block()
	case p.accept("skip"):
		return ast.NewSkip(t.pos)
	case p.accept("if"):
		p.expect("(")
		cond := p.expression()
		p.expect(")")
		p.expect("then")
		then := p.command()
		var els ast.Command
		if p.accept("else") {
			els = p.command()
		}
		return ast.NewIfThenElse(t.pos, cond, then, els)
	case p.accept("while"):
		p.expect("(")
		cond := p.expression()
		p.expect(")")
		return ast.NewWhile(t.pos, cond, p.command())
	case p.accept("for"):
		p.expect("(")
		init := p.command()
		p.expect(";")
		cond := p.expression()
		p.expect(";")
		update := p.command()
		p.expect(")")
		return ast.NewFor(t.pos, init, cond, update, p.command())
	case p.accept("return"):
		if p.is(";") || p.is("}") || p.is("else") || p.peek().kind == tokEOF {
			return ast.NewReturn(t.pos, nil)
		}
		return ast.NewReturn(t.pos, p.expression())
	case p.accept("assert"):
		return ast.NewAssert(t.pos, p.expression())
	case p.atDeclaration():
		typ := p.typeExpression()
		name := p.ident().text
		p.expect(":=")
		return ast.NewLocalDeclaration(t.pos, typ, name, p.expression())
	}
	return p.expressionCommand()
}

// atDeclaration tells a local declaration from an expression: it starts with
// a primitive type, with two identifiers or with an identifier followed by [].
func (p *parser) atDeclaration() bool {
	if p.atPrimitive() {
		return true
	}
	if p.peek().kind != tokIdent {
		return false
	}
	return p.peekAt(1).kind == tokIdent || (p.isAt(1, "[") && p.isAt(2, "]"))
}

func (p *parser) expressionCommand() ast.Command {
	pos := p.peek().pos
	e := p.expression()
	if p.accept(":=") {
		lv, ok := e.(ast.Lvalue)
		if !ok {
			p.fail(pos, "the left-hand side of an assignment must be a variable, a field or an array element")
		}
		return ast.NewAssignment(pos, lv, p.expression())
	}
	call, ok := e.(*ast.MethodCallExpression)
	if !ok {
		p.fail(pos, "only method calls can be used as commands")
	}
	return ast.NewMethodCallCommand(pos, call)
}

// block parses { c1; ...; cn }. The commands are chained to the right and
// enclosed in a local scope. A command that fails to parse is skipped up to
// the next ; or } and replaced by skip.
func (p *parser) block() ast.Command {
	open := p.expect("{")
	if p.accept("}") {
		return ast.NewSkip(open.pos)
	}

	var cmds []ast.Command
	for {
		start := p.i
		var c ast.Command
		if !p.try(func() { c = p.command() }) {
			c = ast.NewSkip(p.toks[start].pos)
			p.skipToCommandEnd(start)
		}
		cmds = append(cmds, c)

		if p.accept(";") {
			if p.is("}") {
				break
			}
			continue
		}
		// A command ending with a block needs no separator.
		if p.is("}") || p.peek().kind == tokEOF || !p.toks[p.i-1].isSymbol("}") {
			break
		}
	}
	p.expect("}")

	body := cmds[len(cmds)-1]
	for i := len(cmds) - 2; i >= 0; i-- {
		body = ast.NewCommandSeq(cmds[i].Pos(), cmds[i], body)
	}
	return ast.NewLocalScope(open.pos, body)
}

func (t token) isSymbol(text string) bool {
	return t.kind == tokSymbol && t.text == text
}

// skipToCommandEnd skips tokens up to a ; or } closing the current block.
func (p *parser) skipToCommandEnd(start int) {
	if p.i == start && !p.is(";") && !p.is("}") {
		p.next()
	}
	depth := 0
	for p.peek().kind != tokEOF {
		switch {
		case p.is("{"):
			depth++
		case p.is("}"):
			if depth == 0 {
				return
			}
			depth--
		case p.is(";") && depth == 0:
			return
		}
		p.next()
	}
}

func (p *parser) expression() ast.Expression {
	return p.orExpression()
}

func (p *parser) orExpression() ast.Expression {
	left := p.andExpression()
	for p.is("|") {
		t := p.next()
		left = ast.NewBinOp(t.pos, ast.Or, left, p.andExpression())
	}
	return left
}

func (p *parser) andExpression() ast.Expression {
	left := p.comparison()
	for p.is("&") {
		t := p.next()
		left = ast.NewBinOp(t.pos, ast.And, left, p.comparison())
	}
	return left
}

var comparisons = map[string]ast.Operator{
	"=":  ast.Equal,
	"!=": ast.NotEqual,
	"<":  ast.LessThan,
	"<=": ast.LessThanOrEqual,
	">":  ast.GreaterThan,
	">=": ast.GreaterThanOrEqual,
}

// comparison is not associative: a < b < c is a syntax error.
func (p *parser) comparison() ast.Expression {
	left := p.additive()
	t := p.peek()
	op, ok := comparisons[t.text]
	if !ok || t.kind != tokSymbol {
		return left
	}
	p.next()
	e := ast.NewBinOp(t.pos, op, left, p.additive())
	if n := p.peek(); n.kind == tokSymbol {
		if _, again := comparisons[n.text]; again {
			p.fail(n.pos, "comparison operators cannot be chained")
		}
	}
	return e
}

func (p *parser) additive() ast.Expression {
	left := p.multiplicative()
	for p.is("+") || p.is("-") {
		t := p.next()
		op := ast.Add
		if t.text == "-" {
			op = ast.Sub
		}
		left = ast.NewBinOp(t.pos, op, left, p.multiplicative())
	}
	return left
}

func (p *parser) multiplicative() ast.Expression {
	left := p.unary()
	for p.is("*") || p.is("/") {
		t := p.next()
		op := ast.Mul
		if t.text == "/" {
			op = ast.Div
		}
		left = ast.NewBinOp(t.pos, op, left, p.unary())
	}
	return left
}

func (p *parser) unary() ast.Expression {
	t := p.peek()
	switch {
	case p.accept("-"):
		return ast.NewMinus(t.pos, p.unary())
	case p.accept("!"):
		return ast.NewNot(t.pos, p.unary())
	}
	return p.postfix(p.primary())
}

func (p *parser) postfix(e ast.Expression) ast.Expression {
	for {
		t := p.peek()
		switch {
		case p.accept("."):
			name := p.ident().text
			if p.is("(") {
				e = ast.NewMethodCallExpression(t.pos, e, name, p.actuals())
			} else {
				e = ast.NewFieldAccess(t.pos, e, name)
			}
		case p.is("[") && !p.isAt(1, "]"):
			p.next()
			index := p.expression()
			p.expect("]")
			e = ast.NewArrayAccess(t.pos, e, index)
		case p.accept("as"):
			e = ast.NewCast(t.pos, e, p.typeExpression())
		default:
			return e
		}
	}
}

func (p *parser) actuals() []ast.Expression {
	p.expect("(")
	var out []ast.Expression
	if p.accept(")") {
		return out
	}
	for {
		out = append(out, p.expression())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return out
}

func (p *parser) primary() ast.Expression {
	t := p.peek()
	switch t.kind {
	case tokInt:
		p.next()
		v, err := strconv.ParseInt(t.text, 10, 32)
		if err != nil {
			p.fail(t.pos, "integer literal %s out of range", t.text)
		}
		return ast.NewIntLiteral(t.pos, int32(v))
	case tokFloat:
		p.next()
		v, err := strconv.ParseFloat(t.text, 32)
		if err != nil {
			p.fail(t.pos, "float literal %s out of range", t.text)
		}
		return ast.NewFloatLiteral(t.pos, float32(v))
	case tokString:
		p.next()
		return ast.NewStringLiteral(t.pos, t.text)
	case tokIdent:
		p.next()
		if p.is("(") {
			// a bare call is a call on this
			return ast.NewMethodCallExpression(t.pos, ast.NewVariable(t.pos, "this"), t.text, p.actuals())
		}
		return ast.NewVariable(t.pos, t.text)
	}

	switch {
	case p.accept("true"):
		return ast.NewBooleanLiteral(t.pos, true)
	case p.accept("false"):
		return ast.NewBooleanLiteral(t.pos, false)
	case p.accept("nil"):
		return ast.NewNilLiteral(t.pos)
	case p.accept("("):
		e := p.expression()
		p.expect(")")
		return e
	case p.accept("new"):
		return p.creation(t.pos)
	}
	p.fail(t.pos, "expression expected, found %s", describe(t))
	return nil
}

// creation parses what follows new: C(args) or T[size].
func (p *parser) creation(pos int) ast.Expression {
	if p.peek().kind == tokIdent && p.isAt(1, "(") {
		name := p.next().text
		return ast.NewNewObject(pos, name, p.actuals())
	}
	elem := p.typeExpression()
	p.expect("[")
	size := p.expression()
	p.expect("]")
	return ast.NewNewArray(pos, elem, size)
}
