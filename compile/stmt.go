package compile

import (
	"github.com/db47h/boxsim/gate"
	"github.com/db47h/boxsim/syntax"
)

// ifScope is a branch of an if statement.
type ifScope struct {
	parent *ifScope
	// inner is the index of the cell holding the branch condition.
	inner  int
	inElse bool
	// master is the index of the cell holding the conjunction of the
	// conditions of all enclosing branches.
	master int
	// assigned collects the cells assigned in the branch.
	assigned []*gate.Cell
}

// masterCondition returns the index of the cell holding the condition under
// which the branch sc is taken.
//
func (b *Box) masterCondition(sc *ifScope) int {
	if sc.parent == nil {
		if !sc.inElse {
			return sc.inner
		}
		return b.addCell(gate.NewCell("", negate(gate.NewTerminal(b.Code[sc.inner]))))
	}
	var chain []*ifScope
	for s := sc; s != nil; s = s.parent {
		chain = append(chain, s)
	}
	and := gate.NewGate(gate.And)
	for i := len(chain) - 1; i >= 0; i-- {
		t := gate.NewTerminal(b.Code[chain[i].inner])
		if chain[i].inElse {
			negate(t)
		}
		and.Operands = append(and.Operands, t)
	}
	return b.addCell(gate.NewCell("", and))
}

// ifStmt lowers if(cond, then[, else]) to a sum of products: every bit
// assigned in a branch is ANDed with the branch condition, and bits assigned
// in both branches are ORed together.
//
func (b *Box) ifStmt(e *syntax.Expr, parent *ifScope) value {
	if len(e.Params) != 2 && len(e.Params) != 3 {
		return b.reject(e.Func, "Compiler error: If statement must have 2 or 3 parameters")
	}

	cond := b.expr(e.Params[0], parent)
	if !cond.failed() && (cond.typ != typeBit || cond.width() != 1) {
		var t = e.Func
		if e.Params[0] != nil && e.Params[0].Func != nil {
			t = e.Params[0].Func
		}
		b.reject(t, "Error: Expecting 'if' condition to be of type 'bit[1]', but found type '"+cond.String()+"'")
		cond = failure
	}

	sc := &ifScope{parent: parent}
	if cond.failed() {
		sc.inner = b.addCell(gate.NewCell("", gate.NewConst(false)))
	} else {
		sc.inner = b.addCell(gate.NewCell("", cond.bits[0]))
	}
	sc.master = b.masterCondition(sc)
	b.expr(e.Params[1], sc)

	// clear the then branch so that the else branch may assign the same bits
	then := sc.assigned
	saved := make([]*gate.Node, len(then))
	for i, c := range then {
		saved[i], c.Root = c.Root, nil
	}

	els := &ifScope{parent: parent, inner: sc.inner, inElse: true}
	if len(e.Params) == 3 {
		els.master = b.masterCondition(els)
		b.expr(e.Params[2], els)
	}

	for i, c := range then {
		if c.Root == nil {
			c.Root = saved[i]
		} else {
			c.Root = b.op("+", saved[i], c.Root)
		}
	}

	if parent != nil {
		parent.assigned = append(parent.assigned, then...)
		for _, c := range els.assigned {
			if !contains(then, c) {
				parent.assigned = append(parent.assigned, c)
			}
		}
	}
	return failure
}

func contains(cells []*gate.Cell, c *gate.Cell) bool {
	for _, x := range cells {
		if x == c {
			return true
		}
	}
	return false
}

// bitStmt lowers bit(name[, size][, =(name, expr)]).
//
func (b *Box) bitStmt(e *syntax.Expr, sc *ifScope) value {
	if len(e.Params) == 0 || e.Params[0] == nil || e.Params[0].Func == nil {
		return b.reject(e.Func, "Expecting a variable name")
	}
	decl := e.Params[0]
	name := decl.Func
	size := int64(1)
	if len(decl.Params) > 0 {
		c, ok := b.evalConst(decl.Params[0])
		if !ok {
			return b.reject(name, "Unresolved symbol")
		}
		if c.n < 1 || c.n > MaxArraySize {
			return b.reject(name, "The array size must be in the range of 1 to 256")
		}
		size = c.n
	}

	sym := newSymbol(&syntax.Decl{TypeName: e.Func, Name: name})
	sym.Size = int(size)
	sym.ResolvedName = "bit " + name.Name + sizeSuffix(sym.Size)
	b.Locals = append(b.Locals, sym)
	b.allocate(sym)
	b.addSymbol(sym)

	if len(e.Params) >= 2 {
		return b.expr(e.Params[1], sc)
	}
	name.AppendMessage(sym.ResolvedName)
	return okValue
}

// constStmt lowers const(int, =(name, expr)).
//
func (b *Box) constStmt(e *syntax.Expr) value {
	if len(e.Params) < 2 || e.Params[1] == nil || len(e.Params[1].Params) != 2 || e.Params[1].Params[0] == nil {
		// syntax error already reported
		b.Error = true
		return failure
	}
	assign := e.Params[1]
	name := assign.Params[0].Func
	c, ok := b.evalConst(assign.Params[1])
	if !ok {
		return b.reject(name, "Unresolved symbol")
	}
	sym := newSymbol(&syntax.Decl{TypeName: e.Params[0].Func, Name: name})
	sym.Value = c.n
	alt := c
	alt.hex = !alt.hex
	sym.ResolvedName = "const int " + name.Name + " = " + c.String() + " (" + alt.String() + ")"
	b.Locals = append(b.Locals, sym)
	b.addSymbol(sym)
	name.AppendMessage(sym.ResolvedName)
	return voidValue
}
