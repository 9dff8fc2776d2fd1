// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package syntax provides the parser and syntax tree of the box language.
//
// The syntax tree is deliberately generic: every node is a function token with
// an ordered list of parameters. Operators, calls `(`, indexing `[`, statement
// blocks `{`, `if`, `bit` and `const` statements all share the same Expr
// representation.
//
package syntax

import (
	"strings"

	"github.com/db47h/boxsim/internal/lex"
)

// Expr is a syntax tree node.
//
type Expr struct {
	Func   *lex.Token
	Params []*Expr
}

// NewExpr returns a new Expr.
//
func NewExpr(f *lex.Token, params ...*Expr) *Expr {
	return &Expr{Func: f, Params: params}
}

// Add appends p to the parameters of e.
//
func (e *Expr) Add(p *Expr) {
	e.Params = append(e.Params, p)
}

// Name returns the name of the function token.
//
func (e *Expr) Name() string {
	if e == nil || e.Func == nil {
		return ""
	}
	return e.Func.Name
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	b.WriteString(e.Name())
	if len(e.Params) == 0 {
		return
	}
	b.WriteByte('(')
	for i, p := range e.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p == nil {
			b.WriteString("<nil>")
			continue
		}
		p.write(b)
	}
	b.WriteByte(')')
}

// Decl is a declaration: box name, box parameter or bit variable.
//
type Decl struct {
	// TypeName is the qualifier: box, in, out, bus or bit.
	TypeName *lex.Token
	// Type is the optional type keyword following in, out or bus.
	Type *lex.Token
	// Name is nil if the declaration could not be parsed.
	Name *lex.Token
	// Size is the array size expression or nil.
	Size *Expr
}

func (d *Decl) String() string {
	var parts []string
	if d.TypeName != nil {
		parts = append(parts, d.TypeName.Name)
	}
	if d.Name != nil {
		parts = append(parts, d.Name.Name)
	}
	return strings.Join(parts, " ")
}

// Box is a parsed box. The file scope is represented as a Box named
// TopLevelName which holds the file level constants and all boxes.
//
type Box struct {
	// Error is set if a syntax error was found in the box.
	Error  bool
	Parent *Box
	Name   *Decl
	Params []*Decl
	// Stmts is a `{` expression.
	Stmts  *Expr
	Boxes  []*Box
	Consts []*Expr
}

// TopLevelName is the name of the synthetic file scope box.
//
const TopLevelName = "SCOPE:0"

// Find returns the sub-box with the given name or nil.
//
func (b *Box) Find(name string) *Box {
	for _, sb := range b.Boxes {
		if sb.Name != nil && sb.Name.Name != nil && sb.Name.Name.Name == name {
			return sb
		}
	}
	return nil
}
