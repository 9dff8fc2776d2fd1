package compile

import (
	"strconv"

	"github.com/db47h/boxsim/gate"
	"github.com/db47h/boxsim/internal/lex"
	"github.com/db47h/boxsim/syntax"
)

// call lowers ((f, params...): a box instance or one of the dup and set
// builtins.
//
func (b *Box) call(e *syntax.Expr, sc *ifScope) value {
	if len(e.Params) == 0 || e.Params[0] == nil || e.Params[0].Func == nil {
		return b.reject(e.Func, "Unexpected symbol")
	}
	f := e.Params[0].Func
	args := e.Params[1:]
	switch f.Type {
	case lex.Reserved:
		return b.reject(f, "Reserved word not allowed in expression")
	case lex.ReservedName:
		switch f.Name {
		case "dup":
			return b.dupCall(f, args, sc)
		case "set":
			return b.setCall(f, args, sc)
		}
		return b.reject(f, "Unrecognized reserved word: '"+f.Name+"'")
	case lex.Identifier:
	default:
		return b.reject(f, "Unexpected symbol")
	}

	sym := b.scope.Lookup(f.Name)
	switch {
	case sym == nil:
		return b.reject(f, "Undefined symbol")
	case sym.ResolvedName == "":
		return b.reject(f, "Unresolved symbol")
	case sym.Kind() != "box":
		return b.reject(f, "Expecting the name of a box, but '"+f.Name+"' is of type '"+sym.ResolvedName)
	case sym.Box == b:
		return b.reject(f, "Box must not call itself (recursion not allowed)")
	case sym.Box == nil:
		return b.reject(f, "Compiler error: Code box not found")
	}
	callee := sym.Box
	f.AppendMessage(sym.ResolvedName)
	if callee.Error {
		b.reject(f, "The box '"+f.Name+"' has errors that must be fixed")
	}

	if len(callee.Params) != len(args) {
		for _, a := range args {
			b.expr(a, sc)
		}
		return b.reject(f, "Incorrect number of parameters: '"+f.Name+"' expects "+
			strconv.Itoa(len(callee.Params))+" but is given "+strconv.Itoa(len(args)))
	}

	l := &link{box: callee, call: e}
	r := voidValue
	for i := 0; i < callee.Symbol.Size; i++ {
		c := gate.NewCell("", gate.NewOutParam())
		l.params = append(l.params, c)
		r.typ = typeBit
		r.bits = append(r.bits, gate.NewTerminal(c))
	}
	for i, p := range callee.Params {
		b.callParam(f, args[i], p, i+1, l, sc)
	}
	b.links = append(b.links, l)
	return r
}

// callParam lowers argument n of a box instance.
//
func (b *Box) callParam(f *lex.Token, arg *syntax.Expr, p *Symbol, n int, l *link, sc *ifScope) {
	if arg != nil && arg.Func != nil && arg.Func.Name == "unused" {
		if p.Kind() != "out" {
			b.reject(arg.Func, "'unused' can only be used with 'out' parameters")
			return
		}
		for i := 0; i < p.Size; i++ {
			l.params = append(l.params, gate.NewCell("", gate.NewOutParam()))
		}
		return
	}

	v := b.expr(arg, sc)
	if v.failed() {
		return
	}
	pn := "Parameter " + strconv.Itoa(n)
	if v.typ != typeBit {
		b.reject(f, pn+" is expecting type 'bit' but was given type '"+typeNames[v.typ]+"'")
		return
	}
	if v.width() != p.Size {
		b.reject(f, pn+" is expecting type 'bit['"+strconv.Itoa(p.Size)+
			"]' but was given type 'bit['"+strconv.Itoa(v.width())+"]'")
		return
	}

	for _, bit := range v.bits {
		c := gate.NewCell("", bit)
		switch p.Kind() {
		case "out":
			if bit.Kind != gate.Terminal || bit.Negate {
				b.reject(f, pn+" is an 'out' parameter, and must not be an expression")
				return
			}
			if bit.Cell.Root != nil {
				b.reject(f, pn+" is an 'out' parameter, and has already been assigned a value")
				return
			}
			bit.Cell.Root = gate.NewTerminal(c)
			c.Root = gate.NewOutParam()
			l.params = append(l.params, c)
		case "in":
			l.params = append(l.params, c)
		default:
			b.reject(f, pn+" is of unknwon type '"+p.Kind()+"' when expecting 'in', 'out', or 'bus'")
			return
		}
	}
}

// dupCall lowers dup(x) and dup(x, n).
//
func (b *Box) dupCall(f *lex.Token, args []*syntax.Expr, sc *ifScope) value {
	if len(args) < 1 {
		return b.reject(f, "Error: 'dup' requires at least one parameter")
	}
	if len(args) > 2 {
		return b.reject(f, "Error: 'dup' must not have more than two parameters")
	}
	x := b.expr(args[0], sc)
	n := voidValue
	if len(args) == 2 {
		if n = b.expr(args[1], sc); n.failed() {
			return n
		}
	}
	if x.failed() {
		return x
	}
	if x.typ != typeBit {
		return b.reject(f, "Error: 'dup' requires a parameter of type 'bit', not of type '"+typeNames[x.typ]+"'")
	}
	if x.width() != 1 {
		return b.reject(f, "Error: 'dup' requires a parameter of type 'bit [1]', not of type '"+x.String()+"'")
	}
	if len(args) == 1 {
		x.dup = f
		return x
	}
	if n.typ != typeInt {
		return b.reject(f, "Error: Parameter 2 must evaluate to 'int' not '"+n.String()+"'")
	}
	if n.n < 1 || n.n > 128 {
		return b.reject(f, "Error: Parameter 2 must be from 1 to 128,  not '"+n.String()+"'")
	}
	return b.dup(f, x, int(n.n))
}

// setCall lowers set(x1, ..., xn). The first operand holds the most
// significant bits.
//
func (b *Box) setCall(f *lex.Token, args []*syntax.Expr, sc *ifScope) value {
	if len(args) < 1 {
		return b.reject(f, "Error: 'set' requires atleast one parameter")
	}
	r := value{typ: typeBit}
	for i, a := range args {
		v := b.expr(a, sc)
		if v.failed() {
			return v
		}
		if v.typ != typeBit {
			return b.reject(f, "Error: 'set' (parameter "+strconv.Itoa(i+1)+
				") requires a parameter of type 'bit', not of type '"+typeNames[v.typ]+"'")
		}
		r.bits = append(append(make([]*gate.Node, 0, len(v.bits)+len(r.bits)), v.bits...), r.bits...)
	}
	f.AppendMessage(r.String())
	return r
}
