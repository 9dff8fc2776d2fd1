package gate

// Counters counts constant simplifications.
//
type Counters struct {
	Const     int // constant operands dropped
	ConstExpr int // gates collapsed to a constant
	Unary     int // single operand gates replaced by their operand
}

// Combine returns the gate k(a, b), merging the operands of non-inverted
// operands of the same kind, with constants removed. c may be nil.
//
func Combine(k Kind, a, b *Node, c *Counters) *Node {
	g := &Node{Kind: k}
	for _, n := range [2]*Node{a, b} {
		if n.Kind == k && !n.Negate {
			g.Operands = append(g.Operands, n.Operands...)
		} else {
			g.Operands = append(g.Operands, n)
		}
	}
	return RemoveConst(g, c)
}

// RemoveConst removes the constant operands of gate n that do not affect its
// output, collapses it to a constant when one operand decides the output, and
// returns the operand itself when a single one remains. It never removes the
// last operand. Other node kinds are returned unchanged. c may be nil.
//
func RemoveConst(n *Node, c *Counters) *Node {
	if !n.IsGate() {
		return n
	}
	if c == nil {
		c = new(Counters)
	}
	for i := 0; i < len(n.Operands) && len(n.Operands) > 1; i++ {
		op := n.Operands[i]
		if !op.IsConst() {
			continue
		}
		v := op.Value()
		switch {
		case n.Kind == Xor || n.Kind == And && v || n.Kind == Or && !v:
			if n.Kind == Xor && v {
				n.Negate = !n.Negate
			}
			n.Operands = append(n.Operands[:i], n.Operands[i+1:]...)
			i--
			c.Const++
		default:
			// And with 0 or Or with 1
			n.Operands = append(n.Operands[:0], op)
			c.ConstExpr++
		}
	}
	if len(n.Operands) == 1 {
		op := n.Operands[0]
		if n.Negate {
			op.Negate = !op.Negate
		}
		c.Unary++
		return op
	}
	return n
}
