// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package compile

import (
	"strconv"

	"github.com/db47h/boxsim/gate"
	"github.com/db47h/boxsim/internal/lex"
	"github.com/db47h/boxsim/syntax"
)

// expr generates the code of e. sc is the innermost enclosing if scope, nil
// outside of if statements.
//
func (b *Box) expr(e *syntax.Expr, sc *ifScope) value {
	if e == nil || e.Func == nil {
		return failure
	}
	t := e.Func
	switch {
	case t.Name == "{":
		for _, s := range e.Params {
			b.expr(s, sc)
		}
		return okValue
	case t.Name == "(":
		return b.call(e, sc)
	case t.Type == lex.Reserved || t.Type == lex.ReservedName:
		return b.reserved(e, sc)
	case t.Type == lex.Identifier:
		return b.identifier(e)
	case isDigit(t.Name):
		return b.constant(e)
	}
	return b.operator(e, sc)
}

func (b *Box) reserved(e *syntax.Expr, sc *ifScope) value {
	switch e.Func.Name {
	case "true":
		return bitValue(gate.NewConst(true))
	case "false":
		return bitValue(gate.NewConst(false))
	case "if":
		return b.ifStmt(e, sc)
	case "bit":
		return b.bitStmt(e, sc)
	case "const":
		return b.constStmt(e)
	}
	return b.reject(e.Func, "Unrecognized reserved word: '"+e.Func.Name+"'")
}

func (b *Box) identifier(e *syntax.Expr) value {
	t := e.Func
	sym := b.scope.Lookup(t.Name)
	if sym == nil {
		return b.reject(t, "Undefined symbol")
	}
	if sym.ResolvedName == "" {
		return b.reject(t, "Unresolved symbol (see symbol declarion)")
	}
	t.AppendMessage(sym.ResolvedName)

	switch sym.Kind() {
	case "int":
		return intValue(sym.Value)
	case "in", "out", "bit":
	case "box":
		if sym.Box != b {
			return b.reject(t, "Only this box '"+b.Name()+"' may be used")
		}
	default:
		return b.reject(t, "Unknown type: '"+sym.Name()+"' is a '"+sym.Kind()+"'")
	}
	v := value{typ: typeBit}
	for i := 0; i < sym.Size; i++ {
		v.bits = append(v.bits, gate.NewTerminal(b.Code[sym.Cell+i]))
	}
	return v
}

func (b *Box) constant(e *syntax.Expr) value {
	c, ok := parseNumber(e.Func.Name)
	if !ok {
		return b.reject(e.Func, "Error reading value")
	}
	return intValue(c.n)
}

// toBits converts the int value v to n two's complement bits, least
// significant first.
//
func (b *Box) toBits(op *lex.Token, v value, n int, checkOverflow bool) value {
	if checkOverflow && n < 64 {
		var max int64
		if n > 0 {
			max = 1 << uint(n)
		}
		if v.n >= max || v.n < -max/2 {
			return b.reject(op, "Overflow: The value "+strconv.FormatInt(v.n, 10)+
				" is too big/small to fit in "+strconv.Itoa(n)+" bits")
		}
	}
	r := value{typ: typeBit, bits: make([]*gate.Node, 0, n)}
	x := v.n
	for i := 0; i < n; i++ {
		r.bits = append(r.bits, gate.NewConst(x&1 != 0))
		x >>= 1
	}
	return r
}

func negate(n *gate.Node) *gate.Node {
	n.Negate = !n.Negate
	return n
}

// op returns the gate for the bit operators + * and #.
//
func (b *Box) op(name string, x, y *gate.Node) *gate.Node {
	var k gate.Kind
	switch name {
	case "+":
		k = gate.Or
	case "*":
		k = gate.And
	case "#":
		k = gate.Xor
	default:
		return nil
	}
	return gate.Combine(k, x, y, &b.Simplified)
}

var operators = map[string]bool{
	"[": true, "!": true, "*": true, "/": true, "%": true, "#": true, "+": true,
	"-": true, "==": true, "!=": true, "..": true, ":": true, "=": true, "?": true,
}

func (b *Box) operator(e *syntax.Expr, sc *ifScope) value {
	t := e.Func
	if !operators[t.Name] {
		return b.reject(t, "Un-recognized symbol")
	}
	if t.Name == "?" {
		return b.ternary(e, sc)
	}
	if t.Name == "!" {
		if len(e.Params) != 1 {
			return b.reject(t, "Internal compiler error: Unary operator must have one parameter")
		}
	} else if len(e.Params) != 2 {
		return b.reject(t, "Internal compiler error: Binary operator must have two parameters")
	}

	left, right := b.expr(e.Params[0], sc), voidValue
	if len(e.Params) > 1 {
		right = b.expr(e.Params[1], sc)
	}
	if left.failed() || right.failed() {
		return failure
	}

	switch key := t.Name + typeNames[left.typ] + "," + typeNames[right.typ]; key {
	case "[bit,int", "[bit,range", "[int,int", "[int,range":
		return b.index(t, left, right)
	case "!bit,void":
		for _, n := range left.bits {
			negate(n)
		}
		return left
	case "*bit,bit", "#bit,bit", "+bit,bit":
		return b.math(t, left, right)
	case "+int,int", "-int,int", "*int,int", "/int,int", "%int,int":
		v, ok := intOp(t.Name, left.n, right.n)
		if !ok {
			return b.reject(t, intOpError(t.Name, right.n))
		}
		return intValue(v)
	case "==bit,bit", "==bit,int", "==int,bit", "!=bit,bit", "!=bit,int", "!=int,bit":
		return b.compare(t, left, right)
	case ":int,int":
		r := value{typ: typeRange, n: left.n, length: right.n}
		t.AppendMessage(r.String())
		return r
	case "..int,int":
		r := value{typ: typeRange, n: left.n, length: right.n - left.n + 1}
		t.AppendMessage(r.String())
		return r
	case "=bit,bit", "=bit,int":
		return b.assign(t, left, right, sc)
	}

	if t.Name == "!" {
		return b.reject(t, "Can not perform '!' operator on '"+left.String()+"' (unknown operator type)")
	}
	name := t.Name
	if name == "[" {
		name = "[]"
	}
	return b.reject(t, "Error: Operator '"+name+"' can not be applied to operands of type '"+
		typeNames[left.typ]+"' and '"+typeNames[right.typ]+"'")
}

// dup replicates the single bit of v n times through a new cell.
//
func (b *Box) dup(t *lex.Token, v value, n int) value {
	if v.typ != typeBit || v.width() != 1 {
		return b.reject(t, "Expecting a type of 'bit [1]', got a type of '"+v.String()+"'")
	}
	c := gate.NewCell("", v.bits[0])
	b.addCell(c)
	r := value{typ: typeBit, bits: make([]*gate.Node, n), dup: v.dup}
	for i := range r.bits {
		r.bits[i] = gate.NewTerminal(c)
	}
	t.AppendMessage(r.String())
	return r
}

// promote gives x and y the same width, replicating a single dup bit if
// allowed.
//
func (b *Box) promote(t *lex.Token, x, y value) (value, value, bool) {
	if x.width() == 1 && y.width() != 1 && x.dup != nil {
		if x = b.dup(x.dup, x, y.width()); x.failed() {
			return x, y, false
		}
	}
	if y.width() == 1 && x.width() != 1 && y.dup != nil {
		if y = b.dup(y.dup, y, x.width()); y.failed() {
			return x, y, false
		}
	}
	if x.width() == 1 && y.width() != 1 || y.width() == 1 && x.width() != 1 {
		b.reject(t, "Error: Needs 'dup' function.  Operator '"+t.Name+
			"' can not be applied to operands of type '"+x.String()+"' and '"+y.String()+
			" unless 'dup' is used on the single bit operand.")
		return x, y, false
	}
	if x.width() == 0 || x.width() != y.width() {
		b.reject(t, "Error: Operator '"+t.Name+"' can not be applied to operands of type '"+
			x.String()+"' and '"+y.String()+"' (array lengths are incompatible)")
		return x, y, false
	}
	return x, y, true
}

func (b *Box) math(t *lex.Token, x, y value) value {
	x, y, ok := b.promote(t, x, y)
	if !ok {
		return failure
	}
	r := value{typ: typeBit, bits: make([]*gate.Node, x.width())}
	for i := range r.bits {
		r.bits[i] = b.op(t.Name, x.bits[i], y.bits[i])
	}
	return r
}

func (b *Box) compare(t *lex.Token, x, y value) value {
	if y.typ == typeInt {
		if y = b.toBits(t, y, x.width(), true); y.failed() {
			return failure
		}
	}
	if x.typ == typeInt {
		if x = b.toBits(t, x, y.width(), true); x.failed() {
			return failure
		}
	}
	if x.width() == 0 || x.width() != y.width() {
		return b.reject(t, "Error: Operator '"+t.Name+"' can not be applied to operands of type '"+
			x.String()+"' and '"+y.String()+"' (array lengths are incompatible)")
	}
	// x == y is !(x0 # y0) * !(x1 # y1) ...
	var r *gate.Node
	if x.width() == 1 {
		r = negate(b.op("#", x.bits[0], y.bits[0]))
	} else {
		and := gate.NewGate(gate.And)
		for i := range x.bits {
			and.Operands = append(and.Operands, negate(b.op("#", x.bits[i], y.bits[i])))
		}
		r = gate.RemoveConst(and, &b.Simplified)
	}
	if t.Name == "!=" {
		negate(r)
	}
	return bitValue(r)
}

func (b *Box) index(t *lex.Token, x, rng value) value {
	if rng.typ == typeInt {
		rng.length = 1
	}
	if x.typ == typeInt {
		n := rng.n + rng.length
		if n > 64 {
			n = 64
		}
		if n < 0 {
			n = 0
		}
		x = b.toBits(t, x, int(n), false)
	}
	start, end := rng.n, rng.n+rng.length
	if rng.length <= 0 {
		return b.reject(t, "Range length must be >= 1: Range is "+
			strconv.FormatInt(rng.n, 10)+":"+strconv.FormatInt(rng.length, 10))
	}
	w := int64(x.width())
	if start < 0 || start > w || end < 0 || end > w {
		return b.reject(t, "Index out of range: Type is "+x.String()+", index is "+rng.String())
	}
	r := value{typ: typeBit, bits: make([]*gate.Node, 0, rng.length)}
	r.bits = append(r.bits, x.bits[start:end]...)
	return r
}

func (b *Box) assign(t *lex.Token, x, y value, sc *ifScope) value {
	if y.typ == typeInt {
		if y = b.toBits(t, y, x.width(), true); y.failed() {
			return failure
		}
	}
	if x.dup != nil {
		return b.reject(x.dup, "Dup not allowed on left side of assignment operator")
	}
	x, y, ok := b.promote(t, x, y)
	if !ok {
		return failure
	}
	for i, n := range x.bits {
		if n.Kind != gate.Terminal || n.Negate {
			return b.reject(t, "Left hand side can not be assigned (wrong expression type)")
		}
		c := n.Cell
		if c.Root != nil {
			msg := "Left hand side was already assigned"
			if c.Root.Kind == gate.InParam {
				msg += " (as an 'in' parameter)"
			}
			return b.reject(t, msg)
		}
		c.Root = y.bits[i]
		if sc != nil {
			sc.assigned = append(sc.assigned, c)
			c.Root = b.op("*", c.Root, gate.NewTerminal(b.Code[sc.master]))
		}
	}
	// an assignment has no value
	return failure
}

func (b *Box) ternary(e *syntax.Expr, sc *ifScope) value {
	if len(e.Params) != 2 || e.Params[1] == nil || e.Params[1].Name() != ":" || len(e.Params[1].Params) != 2 {
		return b.reject(e.Func, "Compiler error: Malformed ternary operator")
	}
	colon := e.Params[1].Func
	cond := b.expr(e.Params[0], sc)
	x := b.expr(e.Params[1].Params[0], sc)
	y := b.expr(e.Params[1].Params[1], sc)
	if cond.failed() || x.failed() || y.failed() {
		return failure
	}
	if cond.typ != typeBit {
		return b.reject(e.Func, "Error: Left hand side expects type 'bit', but got type '"+typeNames[cond.typ]+"'")
	}
	if x.typ != typeBit {
		return b.reject(colon, "Error: Left hand side expects type 'bit', but got type '"+typeNames[x.typ]+"'")
	}
	if y.typ != typeBit {
		return b.reject(colon, "Error: Right hand side expects type 'bit', but got type '"+typeNames[y.typ]+"'")
	}
	x, y, ok := b.promote(colon, x, y)
	if !ok {
		return failure
	}
	if cond.width() != 1 && cond.width() != x.width() {
		msg := "Error: Left hand side of '?' expects type 'bit [1]'"
		if x.width() != 1 {
			msg += " or 'bit [" + strconv.Itoa(x.width()) + "]'"
		}
		return b.reject(e.Func, msg+", but got type '"+cond.String()+"' instead")
	}

	// snapshot the condition bits
	base := len(b.Code)
	for _, n := range cond.bits {
		b.addCell(gate.NewCell("", n))
	}
	r := value{typ: typeBit, bits: make([]*gate.Node, x.width())}
	for i := range r.bits {
		ci := base + i
		if ci > len(b.Code)-1 {
			ci = len(b.Code) - 1
		}
		c := b.Code[ci]
		r.bits[i] = gate.NewGate(gate.Or,
			gate.NewGate(gate.And, gate.NewTerminal(c), x.bits[i]),
			gate.NewGate(gate.And, negate(gate.NewTerminal(c)), y.bits[i]))
	}
	return r
}
