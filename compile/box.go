// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package compile lowers the syntax tree of a box language program to gate
// level code and links boxes together.
//
// Each box gets one cell per bit: return bits first, then parameters in
// declaration order, then local variables and temporaries in statement order.
// Errors are attached to the offending tokens and flag the box; callers of a
// box in error are flagged too and such boxes are never linked.
//
package compile

import (
	"strconv"
	"strings"

	"github.com/db47h/boxsim/gate"
	"github.com/db47h/boxsim/internal/lex"
	"github.com/db47h/boxsim/syntax"
	"github.com/pkg/errors"
)

// MaxArraySize is the largest bit array.
//
const MaxArraySize = 256

// Box is a compiled box, or the file scope holding the top level boxes.
//
type Box struct {
	Syntax *syntax.Box
	Symbol *Symbol
	Params []*Symbol
	// Locals holds bit variables and int constants.
	Locals []*Symbol
	// Boxes holds the symbols of the boxes defined in this scope.
	Boxes []*Symbol
	// Code is the unlinked code.
	Code []*gate.Cell
	// Linked is the code of the box with every callee inlined. It is nil
	// until Link has been called.
	Linked []*gate.Cell
	// Error is set if the box or one of its callees has errors.
	Error bool
	// Simplified counts the constant simplifications made while generating
	// code.
	Simplified gate.Counters

	links    []*link
	scope    *Scope
	unlinked int
}

// link is a call site. params holds one cell per callee parameter bit,
// return bits first: the caller's expression for in bits, an OutParam
// placeholder for out bits.
type link struct {
	box    *Box
	call   *syntax.Expr
	params []*gate.Cell
}

// Compile generates the code of every box in the file scope prog. The
// returned Box is the file scope.
//
func Compile(prog *syntax.Box) *Box {
	return newBox(nil, prog)
}

func newBox(parent *Scope, sb *syntax.Box) *Box {
	b := &Box{
		Syntax:   sb,
		Error:    sb.Error,
		scope:    NewScope(parent),
		unlinked: -1,
	}
	b.generate()
	return b
}

// Name returns the name of the box.
//
func (b *Box) Name() string { return b.Symbol.Name() }

// IsBox returns false for the file scope.
//
func (b *Box) IsBox() bool { return b.Symbol.Kind() == "box" }

func (b *Box) String() string {
	if b.Symbol.ResolvedName != "" {
		return b.Symbol.ResolvedName
	}
	return b.Name()
}

// Find returns the box with the given name defined in b.
//
func (b *Box) Find(name string) *Box {
	for _, s := range b.Boxes {
		if s.Name() == name {
			return s.Box
		}
	}
	return nil
}

// All returns the boxes defined in b in source order.
//
func (b *Box) All() []*Box {
	boxes := make([]*Box, 0, len(b.Boxes))
	for _, s := range b.Boxes {
		boxes = append(boxes, s.Box)
	}
	return boxes
}

func (b *Box) reject(t *lex.Token, msg string) value {
	if t != nil {
		t.Reject(msg)
	}
	b.Error = true
	return failure
}

func (b *Box) addSymbol(sym *Symbol) {
	if sym.token() == nil {
		return
	}
	if !b.scope.Add(sym) {
		b.reject(sym.token(), "This symbol is already defined")
	}
}

func (b *Box) addCell(c *gate.Cell) int {
	c.Index = len(b.Code)
	b.Code = append(b.Code, c)
	return c.Index
}

// allocate adds one cell per bit of sym. The cells of in parameters are
// pre-assigned.
//
func (b *Box) allocate(sym *Symbol) {
	sym.Cell = len(b.Code)
	name := sym.Name()
	for i := 0; i < sym.Size; i++ {
		n := name
		if sym.Size != 1 {
			n += "." + strconv.Itoa(i)
		}
		var root *gate.Node
		if sym.Kind() == "in" {
			root = gate.NewInParam()
		}
		b.addCell(gate.NewCell(n, root))
	}
}

func (b *Box) generate() {
	sb := b.Syntax
	b.Symbol = newSymbol(sb.Name)
	b.Symbol.Box = b
	b.addSymbol(b.Symbol)

	for _, c := range sb.Consts {
		b.constStmt(c)
	}
	for _, d := range sb.Params {
		b.resolveParam(d)
	}
	if b.IsBox() {
		b.resolveBox()
	}
	for _, child := range sb.Boxes {
		cb := newBox(b.scope, child)
		b.addSymbol(cb.Symbol)
		b.Boxes = append(b.Boxes, cb.Symbol)
	}
	if !b.IsBox() {
		return
	}

	b.allocate(b.Symbol)
	for _, p := range b.Params {
		b.allocate(p)
	}
	if sb.Stmts != nil {
		b.expr(sb.Stmts, nil)
	}
	if !b.Error {
		b.checkAssigned()
	}
}

func sizeSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "[" + strconv.Itoa(n) + "]"
}

func (b *Box) resolveParam(d *syntax.Decl) {
	if d.Name == nil {
		return
	}
	sym := newSymbol(d)
	size := int64(1)
	if d.Size != nil {
		c, ok := b.evalConst(d.Size)
		if !ok {
			b.reject(d.Name, "Unresolved symbol")
			return
		}
		size = c.n
	}
	if size < 1 || size > MaxArraySize {
		b.reject(d.Name, "The array size must be in the range of 1 to "+strconv.Itoa(MaxArraySize))
		return
	}
	sym.Size = int(size)
	sym.ResolvedName = sym.Kind() + " " + d.Name.Name + sizeSuffix(sym.Size)
	d.Name.AppendMessage(sym.ResolvedName)
	b.Params = append(b.Params, sym)
	b.addSymbol(sym)
}

func (b *Box) resolveBox() {
	d := b.Syntax.Name
	if d.Name == nil {
		return
	}
	size := int64(0)
	if d.Size != nil {
		c, ok := b.evalConst(d.Size)
		if !ok {
			b.reject(d.Name, "Unresolved symbol")
			return
		}
		size = c.n
	}
	if size < 0 || size > MaxArraySize {
		b.reject(d.Name, "The array size must be in the range of 0 to "+strconv.Itoa(MaxArraySize))
		return
	}
	var name strings.Builder
	name.WriteString("box " + d.Name.Name)
	if size > 0 {
		name.WriteString("[" + strconv.FormatInt(size, 10) + "]")
	}
	name.WriteString(" (")
	for i, p := range b.Params {
		if p.ResolvedName == "" {
			b.reject(d.Name, "Error resolving parameter: "+p.Name())
			return
		}
		if i > 0 {
			name.WriteString(", ")
		}
		name.WriteString(p.ResolvedName)
	}
	name.WriteString(")")
	b.Symbol.Size = int(size)
	b.Symbol.ResolvedName = name.String()
	d.Name.AppendMessage(b.Symbol.ResolvedName)
}

// checkAssigned verifies that every declared bit has been assigned.
//
func (b *Box) checkAssigned() {
	ok := true
	check := func(sym *Symbol) {
		if sym.Cell < 0 {
			return
		}
		for i := 0; i < sym.Size; i++ {
			if b.Code[sym.Cell+i].Root == nil {
				b.reject(sym.token(), "Error: This declaration must be fully assigned")
				ok = false
				return
			}
		}
	}
	check(b.Symbol)
	for _, s := range b.Params {
		check(s)
	}
	for _, s := range b.Locals {
		check(s)
	}
	if !ok {
		return
	}
	for _, c := range b.Code {
		if c.Root == nil {
			b.reject(b.Symbol.token(), "Compiler error: Unassigned expression slipped through")
			return
		}
	}
}

// MinOptimizeIndex returns the index of the first cell that does not belong
// to a declared symbol. Cells below it are never removed by the optimizer.
//
func (b *Box) MinOptimizeIndex() int {
	min := 0
	end := func(s *Symbol) {
		if s.Cell >= 0 && s.Cell+s.Size > min {
			min = s.Cell + s.Size
		}
	}
	end(b.Symbol)
	for _, s := range b.Params {
		end(s)
	}
	for _, s := range b.Locals {
		end(s)
	}
	return min
}

// GatesUnlinked returns the number of gates of the box, callees included,
// before linking.
//
func (b *Box) GatesUnlinked() int {
	if b.unlinked >= 0 {
		return b.unlinked
	}
	b.unlinked = 0
	n := gate.CountGates(b.Code)
	for _, l := range b.links {
		n += gate.CountGates(l.params) + l.box.GatesUnlinked()
	}
	b.unlinked = n
	return n
}

// GatesLinked returns the number of gates of the linked code.
//
func (b *Box) GatesLinked() int {
	return gate.CountGates(b.Linked)
}

// Link inlines the linked code of every callee into b.Linked. Callees are
// linked first. Linking an already linked box is a no-op. Boxes with errors
// cannot be linked.
//
func (b *Box) Link() error {
	if b.Linked != nil {
		return nil
	}
	if !b.IsBox() {
		return errors.New("the file scope cannot be linked")
	}
	if b.Error {
		return errors.Errorf("box %q has errors", b.Name())
	}
	for _, l := range b.links {
		if err := l.box.Link(); err != nil {
			return errors.Wrapf(err, "link %s", b.Name())
		}
	}

	cells := make([]*gate.Cell, 0, len(b.Code))
	for i, c := range b.Code {
		c.Index = i
		cells = append(cells, gate.NewCell(c.Name, c.Root))
	}
	for _, l := range b.links {
		base := len(cells)
		for i, cc := range l.box.Linked {
			cc.Index = len(cells)
			name, root := "", cc.Root
			if i < len(l.params) {
				p := l.params[i]
				p.Index = len(cells)
				name = p.Name
				if root.Kind == gate.InParam {
					root = p.Root
				} else if p.Root.Kind != gate.OutParam {
					return errors.Errorf("link %s: in/out param mismatch calling %s", b.Name(), l.box.Name())
				}
				if root.Kind == gate.InParam || root.Kind == gate.OutParam {
					return errors.Errorf("link %s: in/out param mismatch calling %s", b.Name(), l.box.Name())
				}
			}
			cells = append(cells, gate.NewCell(name, root))
		}
		// callee indices change with every call site
		if err := deepCopy(cells[base:], cells); err != nil {
			return errors.Wrapf(err, "link %s", b.Name())
		}
	}
	if err := deepCopy(cells[:len(b.Code)], cells); err != nil {
		return errors.Wrapf(err, "link %s", b.Name())
	}

	for i, c := range cells {
		c.Index = i
		if c.Name == "" {
			c.Name = "X" + strconv.Itoa(i)
		}
	}
	b.Linked = cells
	return nil
}

// deepCopy replaces the roots of seg by copies whose terminals reference
// all[t.Cell.Index].
//
func deepCopy(seg, all []*gate.Cell) error {
	memo := make(map[*gate.Node]*gate.Node)
	for _, c := range seg {
		c.Root = gate.Copy(c.Root, memo)
	}
	return gate.Rewire(memo, all)
}
