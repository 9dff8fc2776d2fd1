package opt

import "github.com/db47h/boxsim/gate"

const maxTrace = 8

// splice returns ops with ops[i] replaced by with, appended at the end.
//
func splice(ops []*gate.Node, i int, with []*gate.Node) []*gate.Node {
	r := make([]*gate.Node, 0, len(ops)-1+len(with))
	r = append(r, ops[:i]...)
	r = append(r, ops[i+1:]...)
	return append(r, with...)
}

// flatten flattens the tree rooted at n, deepest gates first.
//
func (o *optimizer) flatten(n *gate.Node) *gate.Node {
	if !n.IsGate() {
		return n
	}
	for i, op := range n.Operands {
		n.Operands[i] = o.flatten(op)
	}
	for i := 0; i < len(n.Operands); i++ {
		op := n.Operands[i]
		if !op.IsGate() {
			continue
		}
		// a+(b+c) = a+b+c, a#!(b#c) = !(a#b#c)
		if op.Kind == n.Kind && (!op.Negate || op.Kind == gate.Xor) {
			n.Operands = splice(n.Operands, i, op.Operands)
			n.Negate = n.Negate != op.Negate
			o.stats.Associative++
			i--
			continue
		}
		// a+!(b*c) = a+!b+!c, a*!(b+c) = a*!b*!c
		if op.Negate && (n.Kind == gate.Or && op.Kind == gate.And || n.Kind == gate.And && op.Kind == gate.Or) {
			for _, sub := range op.Operands {
				sub.Negate = !sub.Negate
			}
			n.Operands = splice(n.Operands, i, op.Operands)
			o.stats.DeMorgan++
			i--
		}
	}
	return gate.RemoveConst(o.removeIdentity(gate.RemoveConst(n, &o.consts)), &o.consts)
}

// traceTerm follows non-inverted wires from terminal t.
//
func traceTerm(t *gate.Node) *gate.Node {
	for i := 0; i < maxTrace; i++ {
		r := t.Cell.Root
		if r == nil || r.Kind != gate.Terminal || r.Negate {
			break
		}
		t = r
	}
	return t
}

// removeIdentity applies a+!a = 1, a*!a = 0, a+a = a and a*a = a to the
// terminal operands of an And or Or gate.
//
func (o *optimizer) removeIdentity(n *gate.Node) *gate.Node {
	if n.Kind != gate.And && n.Kind != gate.Or {
		return n
	}
	for i := 0; i < len(n.Operands); i++ {
		t1 := n.Operands[i]
		if t1.Kind != gate.Terminal {
			continue
		}
		for j := i + 1; j < len(n.Operands); j++ {
			t2 := n.Operands[j]
			if t2.Kind != gate.Terminal || traceTerm(t1).Cell != traceTerm(t2).Cell {
				continue
			}
			if t1.Negate != t2.Negate {
				o.stats.IdentityToConst++
				return gate.NewConst((n.Kind == gate.Or) != n.Negate)
			}
			n.Operands = append(n.Operands[:j], n.Operands[j+1:]...)
			j--
			o.stats.IdentityToSelf++
		}
	}
	return n
}
