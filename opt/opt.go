// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package opt implements the gate level optimizer.
//
// Optimize repeatedly embeds single use cells into their user, follows wires,
// folds constant wires, deletes unreferenced cells and flattens every
// expression tree (associativity, De Morgan's laws, constant removal, a+!a,
// a*!a, a+a and a*a). Common sub-expressions are then shared through new cells
// named D<index>, and the whole process starts over until nothing changes.
//
// Cells below the minimum optimization index (return value, parameters and
// declared variables) are never deleted nor embedded.
//
package opt

import "github.com/db47h/boxsim/gate"

const (
	maxIterations = 16
	maxRounds     = 4
)

// Stats counts the rules applied by Optimize.
//
type Stats struct {
	Associative     int
	DeMorgan        int
	RemoveConst     int
	RemoveConstExpr int
	RemoveUnary     int
	Embedded        int
	IdentityToConst int
	IdentityToSelf  int
	Unused          int
	Wires           int
	ConstWires      int
	Iterations      int
	Duplicates      int
}

type optimizer struct {
	cells  []*gate.Cell
	minOpt int
	stats  Stats
	consts gate.Counters
}

// Optimize optimizes cells in place and returns the resulting cell list.
// Terminals in cells must only reference cells of the list. Optimizing the
// result again leaves it unchanged.
//
func Optimize(cells []*gate.Cell, minOpt int) ([]*gate.Cell, Stats) {
	o := &optimizer{cells: cells, minOpt: minOpt}
	for r := 0; r < maxRounds; r++ {
		before := o.key()
		o.reduce()
		o.dedup()
		o.dedup()
		if o.key() == before {
			break
		}
	}
	for i, c := range o.cells {
		c.Index = i
	}
	s := o.key()
	s.Iterations = o.stats.Iterations
	return o.cells, s
}

// reduce embeds and flattens until no rule applies.
//
func (o *optimizer) reduce() {
	var prev Stats
	for i := 0; i < maxIterations; i++ {
		o.embed()
		for _, c := range o.cells {
			if c.Root != nil {
				c.Root = o.flatten(c.Root)
			}
		}
		o.stats.Iterations++
		key := o.key()
		if i > 0 && key == prev {
			break
		}
		prev = key
	}
}

// key returns the counters with constant removals merged in and iterations
// excluded.
//
func (o *optimizer) key() Stats {
	s := o.stats
	s.RemoveConst = o.consts.Const
	s.RemoveConstExpr = o.consts.ConstExpr
	s.RemoveUnary = o.consts.Unary
	s.Iterations = 0
	return s
}
