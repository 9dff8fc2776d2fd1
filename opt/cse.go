package opt

import (
	"strconv"

	"github.com/db47h/boxsim/gate"
)

// occurrence tracks the structurally equal gates seen so far. slot is where
// the first one was found.
type occurrence struct {
	op    *gate.Node
	slot  **gate.Node
	dup   *gate.Cell
	count int
}

// dedup shares common sub-expressions. Trees are visited parents first and
// the operands of a duplicate are not visited. The second occurrence of a gate
// moves the first one to a new cell referenced by both occurrences; later
// occurrences reference the same cell. Cells added by dedup are not scanned.
//
func (o *optimizer) dedup() {
	for i, c := range o.cells {
		c.Index = i
	}
	seen := make(map[uint64][]*occurrence)
	n := len(o.cells)
	for i := 0; i < n; i++ {
		if c := o.cells[i]; c.Root != nil {
			o.dedupNode(&c.Root, seen)
		}
	}
}

func (o *optimizer) dedupNode(slot **gate.Node, seen map[uint64][]*occurrence) {
	n := *slot
	if !n.IsGate() || len(n.Operands) == 0 {
		return
	}
	h := n.Hash()
	for _, x := range seen[h] {
		if x.op.Equal(n) {
			o.share(x, slot)
			return
		}
	}
	seen[h] = append(seen[h], &occurrence{op: n, slot: slot, count: 1})
	for i := range n.Operands {
		o.dedupNode(&n.Operands[i], seen)
	}
}

// share replaces the gate in slot by a terminal to the shared cell of occ.
//
func (o *optimizer) share(occ *occurrence, slot **gate.Node) {
	occ.count++
	if occ.count == 2 {
		idx := len(o.cells)
		occ.dup = &gate.Cell{Name: "D" + strconv.Itoa(idx), Root: occ.op, Index: idx}
		o.cells = append(o.cells, occ.dup)
		if *occ.slot == occ.op {
			*occ.slot = gate.NewTerminal(occ.dup)
		}
		o.stats.Duplicates++
	}
	*slot = gate.NewTerminal(occ.dup)
}
