package gate

import (
	"strconv"
	"strings"
)

var opNames = [...]string{And: "*", Or: "+", Xor: "#"}

func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case Const:
		switch {
		case n.Level == HighZ:
			b.WriteByte('Z')
		case n.Value():
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
	case InParam:
		b.WriteString("(in)")
	case OutParam:
		b.WriteString("(out)")
	case Terminal:
		if n.Negate {
			b.WriteByte('!')
		}
		b.WriteString(n.Cell.Label())
	default:
		if n.Negate {
			b.WriteByte('!')
		}
		b.WriteByte('(')
		op := opNames[n.Kind]
		if len(n.Operands) <= 1 {
			b.WriteString(op)
		}
		for i, o := range n.Operands {
			if i > 0 {
				b.WriteByte(' ')
				b.WriteString(op)
				b.WriteByte(' ')
			}
			o.write(b)
		}
		b.WriteByte(')')
	}
}

// Label returns the display name of c.
//
func (c *Cell) Label() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Index >= 0:
		return "E" + strconv.Itoa(c.Index)
	}
	return "(not named)"
}

func (c *Cell) String() string {
	if c.Root == nil {
		return c.Label() + " = (unassigned)"
	}
	return c.Label() + " = " + c.Root.String()
}
