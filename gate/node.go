// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package gate implements the gate level representation of a compiled box:
// cells holding expression trees of constants, parameter placeholders,
// terminals (wires to other cells) and And/Or/Xor gates.
//
// Every node carries an output inversion flag and two state bits. State is
// the value visible to other nodes, Prev the value computed during the last
// generation. In non-quick mode, gates and inverted terminals only publish
// Prev to State on the next generation, which models a single gate delay.
//
package gate

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the kind of a Node.
//
type Kind uint8

// Node kinds.
const (
	Const Kind = iota
	InParam
	OutParam
	Terminal
	And
	Or
	Xor
)

var kindNames = [...]string{
	Const:    "Const",
	InParam:  "InParam",
	OutParam: "OutParam",
	Terminal: "Terminal",
	And:      "And",
	Or:       "Or",
	Xor:      "Xor",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Level is the value of a constant.
//
type Level uint8

// Constant levels. HighZ is never produced by the compiler; it evaluates as
// Low.
const (
	Low Level = iota
	High
	HighZ
)

// Node is an expression tree node.
//
type Node struct {
	Kind   Kind
	Negate bool
	// Level of a Const.
	Level Level
	// Cell referenced by a Terminal.
	Cell *Cell
	// Operands of a gate.
	Operands []*Node

	State bool
	Prev  bool
}

// NewConst returns a new constant node.
//
func NewConst(v bool) *Node {
	if v {
		return &Node{Kind: Const, Level: High}
	}
	return &Node{Kind: Const, Level: Low}
}

// NewInParam returns an input placeholder.
//
func NewInParam() *Node { return &Node{Kind: InParam} }

// NewOutParam returns an output placeholder.
//
func NewOutParam() *Node { return &Node{Kind: OutParam} }

// NewTerminal returns a wire to cell c.
//
func NewTerminal(c *Cell) *Node { return &Node{Kind: Terminal, Cell: c} }

// NewGate returns a gate of the given kind.
//
func NewGate(k Kind, operands ...*Node) *Node {
	return &Node{Kind: k, Operands: operands}
}

// IsGate returns true for And, Or and Xor nodes.
//
func (n *Node) IsGate() bool {
	return n.Kind >= And
}

// IsConst returns true if n is a Low or High constant.
//
func (n *Node) IsConst() bool {
	return n.Kind == Const && n.Level != HighZ
}

// Value returns the value of a constant, inversion applied.
//
func (n *Node) Value() bool {
	return (n.Level == High) != n.Negate
}

// Walk calls fn for n and every node below it, parents first.
//
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, op := range n.Operands {
		op.Walk(fn)
	}
}

// Replace replaces every operand identical to old with repl in the tree rooted
// at n.
//
func (n *Node) Replace(old, repl *Node) {
	for i, op := range n.Operands {
		if op == old {
			n.Operands[i] = repl
			continue
		}
		op.Replace(old, repl)
	}
}

// Equal returns true if the trees rooted at n and m are structurally equal.
// Constants compare by value, terminals by referenced cell, parameter
// placeholders by kind only.
//
func (n *Node) Equal(m *Node) bool {
	if n.Kind != m.Kind {
		return false
	}
	switch n.Kind {
	case Const:
		return n.Value() == m.Value()
	case InParam, OutParam:
		return true
	case Terminal:
		return n.Cell == m.Cell && n.Negate == m.Negate
	}
	if n.Negate != m.Negate || len(n.Operands) != len(m.Operands) {
		return false
	}
	for i, op := range n.Operands {
		if !op.Equal(m.Operands[i]) {
			return false
		}
	}
	return true
}

// Hash returns a hash of n consistent with Equal, provided that terminals
// reference cells with distinct indices.
//
func (n *Node) Hash() uint64 {
	h := uint64(n.Kind)*0x9e3779b97f4a7c15 + 1
	switch n.Kind {
	case Const:
		if n.Value() {
			h ^= 0xff51afd7ed558ccd
		}
		return h
	case InParam, OutParam:
		return h
	case Terminal:
		h ^= uint64(n.Cell.Index) * 0xc4ceb9fe1a85ec53
	}
	if n.Negate {
		h = ^h
	}
	for _, op := range n.Operands {
		h = (h<<7 | h>>57) ^ op.Hash()
		h *= 0x100000001b3
	}
	return h
}

// Copy returns a structural copy of the tree rooted at n. Nodes already present
// in memo are reused so that shared sub-trees stay shared. Terminals keep
// pointing to the original cells.
//
func Copy(n *Node, memo map[*Node]*Node) *Node {
	if n == nil {
		return nil
	}
	if c, ok := memo[n]; ok {
		return c
	}
	c := *n
	memo[n] = &c
	if len(n.Operands) > 0 {
		c.Operands = make([]*Node, len(n.Operands))
		for i, op := range n.Operands {
			c.Operands[i] = Copy(op, memo)
		}
	}
	return &c
}

// Cell is a named slot holding the root of an expression tree.
//
type Cell struct {
	Name  string
	Root  *Node
	Index int

	countedNeg bool
}

// NewCell returns a new unindexed cell.
//
func NewCell(name string, root *Node) *Cell {
	return &Cell{Name: name, Root: root, Index: -1}
}

// CopyNetwork returns a deep copy of cells where terminals reference the copied
// cells. Terminals to cells outside of the network are an error.
//
func CopyNetwork(cells []*Cell) ([]*Cell, error) {
	for i, c := range cells {
		c.Index = i
	}
	out := make([]*Cell, len(cells))
	memo := make(map[*Node]*Node)
	for i, c := range cells {
		out[i] = &Cell{Name: c.Name, Root: Copy(c.Root, memo), Index: i}
	}
	if err := Rewire(memo, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rewire redirects the terminals of the copied nodes in memo to cells[t.Cell.Index].
//
func Rewire(memo map[*Node]*Node, cells []*Cell) error {
	for _, c := range memo {
		if c.Kind != Terminal {
			continue
		}
		idx := c.Cell.Index
		if idx < 0 || idx >= len(cells) {
			return errors.Errorf("dangling terminal to cell %q (index %d)", c.Cell.Name, idx)
		}
		c.Cell = cells[idx]
	}
	return nil
}
