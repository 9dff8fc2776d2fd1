package opt

import "github.com/db47h/boxsim/gate"

func (o *optimizer) uses() []int {
	used := make([]int, len(o.cells))
	for _, c := range o.cells {
		if c == nil || c.Root == nil {
			continue
		}
		c.Root.Walk(func(n *gate.Node) {
			if n.Kind == gate.Terminal {
				used[n.Cell.Index]++
			}
		})
	}
	return used
}

// embed embeds single use cells, follows wires, folds constant wires, then
// removes every cell at or above minOpt that is no longer referenced.
//
func (o *optimizer) embed() {
	if o.minOpt >= len(o.cells) {
		return
	}
	for i, c := range o.cells {
		c.Index = i
	}

	used := o.uses()
	for i, c := range o.cells {
		if c != nil && c.Root != nil {
			c.Root = o.embedSingle(i, c.Root, used)
		}
	}
	for _, c := range o.cells {
		if c != nil && c.Root != nil {
			c.Root = o.embedWires(c.Root)
		}
	}

	used = o.uses()
	for i := o.minOpt; i < len(o.cells); i++ {
		if c := o.cells[i]; c != nil && used[i] == 0 {
			c.Root = nil
			o.cells[i] = nil
		}
	}

	end := 0
	for _, c := range o.cells {
		if c != nil {
			o.cells[end] = c
			end++
		} else {
			o.stats.Unused++
		}
	}
	for i := end; i < len(o.cells); i++ {
		o.cells[i] = nil
	}
	o.cells = o.cells[:end]
}

// embedSingle replaces terminals to cells used once by the cell's tree. The
// cell at index self is never embedded into itself.
//
func (o *optimizer) embedSingle(self int, n *gate.Node, used []int) *gate.Node {
	for i, op := range n.Operands {
		n.Operands[i] = o.embedSingle(self, op, used)
	}
	if n.Kind != gate.Terminal {
		return n
	}
	idx := n.Cell.Index
	if used[idx] != 1 || idx < o.minOpt || idx == self {
		return n
	}
	c := o.cells[idx]
	if c == nil || c.Root == nil {
		return n
	}
	r := c.Root
	r.Negate = r.Negate != n.Negate
	c.Root = nil
	o.cells[idx] = nil
	o.stats.Embedded++
	return r
}

// embedWires makes terminals to wire cells point to the wire's target and
// replaces terminals to constant cells by the constant.
//
func (o *optimizer) embedWires(n *gate.Node) *gate.Node {
	for i, op := range n.Operands {
		n.Operands[i] = o.embedWires(op)
	}
	if n.Kind != gate.Terminal {
		return n
	}
	r := n.Cell.Root
	switch {
	case r == nil:
	case r.Kind == gate.Terminal && n.Cell.Index >= o.minOpt:
		n.Negate = n.Negate != r.Negate
		n.Cell = r.Cell
		o.stats.Wires++
	case r.IsConst():
		o.stats.ConstWires++
		return gate.NewConst(r.Value() != n.Negate)
	}
	return n
}
