package boxsim

import (
	"strconv"
	"strings"

	"github.com/db47h/boxsim/compile"
	"github.com/db47h/boxsim/gate"
)

// A Field is a named group of cells of a circuit: the return value, a
// parameter or a local bit variable. Bit 0 is the least significant.
//
type Field struct {
	Name  string
	Kind  string
	Cells []*gate.Cell
}

func newField(sym *compile.Symbol, cells []*gate.Cell) *Field {
	f := &Field{Name: sym.Name(), Kind: sym.Kind()}
	if f.Kind == "box" {
		f.Kind = "return"
	}
	if sym.Cell < 0 || sym.Cell+sym.Size > len(cells) {
		return f
	}
	f.Cells = cells[sym.Cell : sym.Cell+sym.Size]
	return f
}

// Width returns the number of bits of f.
//
func (f *Field) Width() int { return len(f.Cells) }

// Input returns true if every bit of f can be written.
//
func (f *Field) Input() bool {
	for _, c := range f.Cells {
		if c.Root == nil || c.Root.Kind != gate.InParam {
			return false
		}
	}
	return len(f.Cells) > 0
}

// Bit returns the state of bit i.
//
func (f *Field) Bit(i int) bool {
	r := f.Cells[i].Root
	return r != nil && r.State
}

// Int64 returns the value of the first 64 bits of f.
//
func (f *Field) Int64() int64 {
	var v int64
	for i := len(f.Cells) - 1; i >= 0; i-- {
		v <<= 1
		if f.Bit(i) {
			v |= 1
		}
	}
	return v
}

func (f *Field) setInt64(v int64) {
	for _, c := range f.Cells {
		c.Root.State = v&1 != 0
		v >>= 1
	}
}

// Bits returns the state of f as a string of 0 and 1, most significant bit
// first.
//
func (f *Field) Bits() string {
	var b strings.Builder
	for i := len(f.Cells) - 1; i >= 0; i-- {
		if f.Bit(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func (f *Field) String() string {
	if f.Width() == 1 {
		return f.Name + "=" + f.Bits()
	}
	return f.Name + "[" + strconv.Itoa(f.Width()) + "]=" + f.Bits()
}
