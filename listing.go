package boxsim

import (
	"strconv"
	"strings"

	"github.com/db47h/boxsim/compile"
	"github.com/db47h/boxsim/gate"
)

func writeListing(b *strings.Builder, box *compile.Box, gates int, cells []*gate.Cell) {
	b.WriteString("// Compiled code, " + strconv.Itoa(gates) + " gates\n")
	if box.Error {
		b.WriteString("// NOTE: This box has errors.  The code is incorrect.\n")
	}
	b.WriteString(box.String() + "\n{\n")
	for _, c := range cells {
		b.WriteString("    " + c.String() + ";\n")
	}
	b.WriteString("}\n")
}

// Listing returns the code of box: the linked code if the box has been
// linked, the unlinked code otherwise.
//
func Listing(box *compile.Box) string {
	var b strings.Builder
	if box.Linked != nil {
		writeListing(&b, box, box.GatesLinked(), box.Linked)
	} else {
		writeListing(&b, box, box.GatesUnlinked(), box.Code)
	}
	return b.String()
}

// Listing returns the code of the circuit after optimization.
//
func (c *Circuit) Listing() string {
	var b strings.Builder
	writeListing(&b, c.box, c.gates, c.cells)
	return b.String()
}
