// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gate

import "fmt"

// maxWireHops bounds the chain of non-inverted terminals followed by Eval.
const maxWireHops = 32

// Eval evaluates the tree rooted at n and returns true if any node changed.
// In quick mode, evaluation is instantaneous. Otherwise gates and inverted
// terminals publish their new output on the next evaluation.
//
// Eval panics if a terminal references a cell without root.
//
func (n *Node) Eval(quick bool) bool {
	switch n.Kind {
	case Const:
		s := n.Value()
		changed := s != n.State || s != n.Prev
		n.State, n.Prev = s, s
		return changed
	case InParam:
		changed := n.Prev != n.State
		n.Prev = n.State
		return changed
	case OutParam:
		changed := n.Prev == n.State
		n.Prev = n.State
		return changed
	case Terminal:
		return n.evalTerminal(quick)
	}
	return n.evalGate(quick)
}

func (n *Node) evalGate(quick bool) bool {
	changed := false
	for _, op := range n.Operands {
		if op.Eval(quick) {
			changed = true
		}
	}
	old := n.State
	n.State = n.Prev
	var v bool
	switch n.Kind {
	case And:
		v = true
		for _, op := range n.Operands {
			v = v && op.State
		}
	case Or:
		for _, op := range n.Operands {
			v = v || op.State
		}
	case Xor:
		for _, op := range n.Operands {
			v = v != op.State
		}
	default:
		panic(fmt.Sprintf("invalid node kind %v", n.Kind))
	}
	n.Prev = v != n.Negate
	if quick {
		n.State = n.Prev
	}
	return changed || n.Prev != n.State || n.Prev != old
}

func (n *Node) evalTerminal(quick bool) bool {
	// follow non-inverted wires
	final, next := n, n
	for hops := maxWireHops; next != nil && !next.Negate && hops > 0; hops-- {
		final = next
		r := root(next.Cell)
		if r.Kind == Terminal {
			next = r
		} else {
			next = nil
		}
	}
	old := n.State
	n.State = n.Prev
	n.Prev = root(final.Cell).State != final.Negate
	changed := n.Prev != n.State || n.Prev != old
	if !final.Negate || quick {
		n.State = n.Prev
	}
	return changed
}

func root(c *Cell) *Node {
	if c.Root == nil {
		panic(fmt.Sprintf("terminal to unassigned cell %q", c.Name))
	}
	return c.Root
}

// Generation evaluates every cell root once and returns the number of cells
// whose tree changed.
//
func Generation(cells []*Cell, quick bool) int {
	changes := 0
	for _, c := range cells {
		if c.Root != nil && c.Root.Eval(quick) {
			changes++
		}
	}
	return changes
}

// Preload sets the state of every node to v.
//
func Preload(cells []*Cell, v bool) {
	for _, c := range cells {
		if c.Root == nil {
			continue
		}
		c.Root.Walk(func(n *Node) {
			n.State, n.Prev = v, v
		})
	}
}

// CountGates returns the gate count of cells. A gate with n operands counts
// for n-1 gates (at least one), an inverted terminal for one gate per distinct
// referenced cell.
//
func CountGates(cells ...[]*Cell) int {
	for _, cs := range cells {
		for _, c := range cs {
			forTerminals(c, func(t *Node) { t.Cell.countedNeg = false })
		}
	}
	count := 0
	for _, cs := range cells {
		for _, c := range cs {
			if c.Root != nil {
				count += c.Root.countGates()
			}
		}
	}
	return count
}

func forTerminals(c *Cell, fn func(*Node)) {
	if c.Root == nil {
		return
	}
	c.Root.Walk(func(n *Node) {
		if n.Kind == Terminal {
			fn(n)
		}
	})
}

func (n *Node) countGates() int {
	switch n.Kind {
	case Terminal:
		if n.Negate && !n.Cell.countedNeg {
			n.Cell.countedNeg = true
			return 1
		}
		return 0
	case And, Or, Xor:
		count := len(n.Operands) - 1
		if count < 1 {
			count = 1
		}
		for _, op := range n.Operands {
			count += op.countGates()
		}
		return count
	}
	return 0
}
