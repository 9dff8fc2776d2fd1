// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package boxsim

import (
	"github.com/db47h/boxsim/compile"
	"github.com/db47h/boxsim/internal/lex"
	"github.com/db47h/boxsim/syntax"
)

// A Diagnostic is an error reported on a source token.
//
type Diagnostic struct {
	Loc     lex.Loc
	Token   *lex.Token
	Message string
}

func (d Diagnostic) String() string {
	return d.Loc.String() + ": " + d.Message
}

// Program is a compiled source text. Edits re-scan the modified lines and
// recompile the whole program.
//
type Program struct {
	lexer  *lex.Lexer
	syntax *syntax.Box
	scope  *compile.Box
}

// Compile compiles the given source lines.
//
func Compile(lines []string) *Program {
	p := &Program{lexer: lex.New(lines)}
	p.compile()
	return p
}

func (p *Program) compile() {
	p.syntax = syntax.Parse(p.lexer)
	p.scope = compile.Compile(p.syntax)
}

// Lexer returns the lexer holding the source text and tokens of p.
//
func (p *Program) Lexer() *lex.Lexer { return p.lexer }

// Lines returns the source text.
//
func (p *Program) Lines() []string { return p.lexer.Lines() }

// Edit replaces the text between start and end, recompiles and returns the
// location of the end of the inserted text.
//
func (p *Program) Edit(start, end lex.Loc, text []string) lex.Loc {
	loc := p.lexer.Replace(start, end, text)
	p.compile()
	return loc
}

// Box returns the top level box with the given name or nil.
//
func (p *Program) Box(name string) *compile.Box {
	return p.scope.Find(name)
}

// Boxes returns the top level boxes in source order.
//
func (p *Program) Boxes() []*compile.Box {
	return p.scope.All()
}

// Diagnostics returns the errors of p in source order.
//
func (p *Program) Diagnostics() []Diagnostic {
	var ds []Diagnostic
	add := func(t *lex.Token) {
		if t.Error() {
			ds = append(ds, Diagnostic{Loc: t.Loc, Token: t, Message: t.Info()})
		}
	}
	it := p.lexer.Iter()
	for t := it.Next(); t != nil; t = it.Next() {
		add(t)
	}
	add(p.lexer.EOF())
	return ds
}

// Ok returns true if p compiled without errors.
//
func (p *Program) Ok() bool {
	if p.scope.Error {
		return false
	}
	for _, b := range p.scope.All() {
		if b.Error {
			return false
		}
	}
	return len(p.Diagnostics()) == 0
}
