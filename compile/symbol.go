// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package compile

import (
	"github.com/db47h/boxsim/internal/lex"
	"github.com/db47h/boxsim/syntax"
)

// Symbol is a named entity: box, parameter, bit variable or int constant.
//
type Symbol struct {
	Decl *syntax.Decl
	// ResolvedName is the display name of the symbol. It is empty until the
	// symbol has been resolved without error.
	ResolvedName string
	// Value of an int constant.
	Value int64
	// Size is the number of bits of a bit symbol or the return size of a box.
	Size int
	// Cell is the index of the first cell of a bit symbol, -1 if none.
	Cell int
	// Box of a box symbol.
	Box *Box
}

func newSymbol(d *syntax.Decl) *Symbol {
	return &Symbol{Decl: d, Cell: -1}
}

// Kind returns the symbol type name: box, in, out, bus, bit or int.
//
func (s *Symbol) Kind() string {
	if s.Decl == nil || s.Decl.TypeName == nil {
		return ""
	}
	return s.Decl.TypeName.Name
}

// Name returns the name of the symbol.
//
func (s *Symbol) Name() string {
	if s.Decl == nil || s.Decl.Name == nil {
		return ""
	}
	return s.Decl.Name.Name
}

func (s *Symbol) token() *lex.Token {
	if s.Decl == nil {
		return nil
	}
	return s.Decl.Name
}

func (s *Symbol) String() string { return s.ResolvedName }

// Scope is a symbol table chained to its enclosing scope.
//
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
}

// NewScope returns a new scope nested in parent. parent may be nil.
//
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string]*Symbol)}
}

// Lookup searches name in s and its enclosing scopes.
//
func (s *Scope) Lookup(name string) *Symbol {
	for ; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// Add adds sym to s. It returns false if a symbol with the same name is
// already defined in s itself. Shadowing a symbol of an enclosing scope is
// allowed.
//
func (s *Scope) Add(sym *Symbol) bool {
	name := sym.Name()
	if _, ok := s.symbols[name]; ok {
		return false
	}
	s.symbols[name] = sym
	return true
}
