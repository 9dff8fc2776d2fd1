// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package syntax

import (
	"github.com/db47h/boxsim/internal/lex"
)

// stop sets used to resynchronize after an error. The end of file is always
// a stop token.
type stopSet []string

var (
	stopBox       = stopSet{"box"}
	stopPrototype = stopSet{"box", "is", ";"}
	stopLine      = stopSet{"box", ";"}
	stopParen     = stopSet{"box", ";", ")"}
	stopBracket   = stopSet{"box", ";", "]"}
	stopParameter = stopSet{"box", ";", ",", ")"}
)

func (s stopSet) has(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

type parser struct {
	l    *lex.Lexer
	it   *lex.Iter
	tok  *lex.Token
	name string
	err  bool
}

// Parse parses the tokens of l. It always returns a file scope box. Syntax
// errors are reported on the offending tokens and boxes in error have their
// Error flag set.
//
func Parse(l *lex.Lexer) *Box {
	p := &parser{l: l, it: l.Iter()}
	p.accept()
	return p.parseFile()
}

// accept moves to the next non comment token and returns the previous one.
// Diagnostics of the new token are reset.
//
func (p *parser) accept() *lex.Token {
	prev := p.tok
	if prev != nil && prev.IsEOF() {
		return prev
	}
	t := p.it.Next()
	for t != nil && t.Type == lex.Comment {
		t = p.it.Next()
	}
	if t == nil {
		t = p.l.EOF()
	}
	t.Reset()
	p.tok, p.name = t, t.Name
	return prev
}

func (p *parser) rejectToken(t *lex.Token, msg string) {
	p.err = true
	t.Reject(msg)
}

func (p *parser) reject(msg string) {
	p.rejectToken(p.tok, msg)
}

// rejectSkip rejects the current token and skips to the next stop token.
//
func (p *parser) rejectSkip(msg string, stops stopSet) *Expr {
	p.reject(msg)
	e := NewExpr(p.tok)
	for !stops.has(p.name) {
		p.accept()
	}
	return e
}

func closer(open string) (string, stopSet) {
	if open == "(" {
		return ")", stopParen
	}
	return "]", stopBracket
}

// parseParen parses a parenthesized expression or an array size.
//
func (p *parser) parseParen() *Expr {
	open := p.accept()
	want, stops := closer(open.Name)

	if p.name == want {
		lex.Connect(open, p.tok)
		p.reject("Expecting a parameter")
		return NewExpr(p.accept())
	}
	e := p.parseExpr()
	if p.name != want {
		p.rejectSkip("Expecting '"+want+"'", stops)
	}
	if p.name == want {
		lex.Connect(open, p.tok)
		p.accept()
	}
	return e
}

// parseParams parses call or index parameters. first is the function or array
// being called or indexed.
//
func (p *parser) parseParams(first *Expr) *Expr {
	open := p.tok
	e := NewExpr(p.accept(), first)
	want, stops := closer(open.Name)
	if p.name == want {
		lex.Connect(open, p.tok)
		p.accept()
		return e
	}
	e.Add(p.parseExpr())
	for p.name == "," {
		p.accept()
		e.Add(p.parseExpr())
	}
	if p.name != want {
		p.rejectSkip("Expecting '"+want+"' or ','", stops)
	}
	if p.name == want {
		lex.Connect(open, p.tok)
		p.accept()
	}
	return e
}

func isDigit(s string) bool  { return s != "" && s[0] >= '0' && s[0] <= '9' }
func isLetter(s string) bool { return s != "" && ('a' <= s[0] && s[0] <= 'z' || 'A' <= s[0] && s[0] <= 'Z' || s[0] >= 0x80) }

func (p *parser) parseAtom() *Expr {
	switch {
	case p.tok.IsEOF():
		return p.rejectSkip("Unexpected end of file", stopLine)
	case p.name == "(":
		return p.parseParen()
	case isDigit(p.name), isLetter(p.name):
		return NewExpr(p.accept())
	}
	return p.rejectSkip("Expecting an identifier, number, parentheses, or expression", stopLine)
}

func (p *parser) parsePostfix() *Expr {
	e := p.parseAtom()
	if p.name == "(" || p.name == "[" {
		e = p.parseParams(e)
	}
	return e
}

func (p *parser) parseUnary() *Expr {
	if p.name == "!" {
		return NewExpr(p.accept(), p.parsePostfix())
	}
	return p.parsePostfix()
}

func (p *parser) parseLeft(next func() *Expr, ops ...string) *Expr {
	e := next()
	for {
		match := false
		for _, op := range ops {
			if p.name == op {
				match = true
				break
			}
		}
		if !match {
			return e
		}
		e = NewExpr(p.accept(), e, next())
	}
}

func (p *parser) parseMul() *Expr { return p.parseLeft(p.parseUnary, "*", "/", "%") }
func (p *parser) parseXor() *Expr { return p.parseLeft(p.parseMul, "#") }
func (p *parser) parseAdd() *Expr { return p.parseLeft(p.parseXor, "+", "-") }

func (p *parser) parseCompare() *Expr {
	e := p.parseAdd()
	if p.name == "==" || p.name == "!=" {
		return NewExpr(p.accept(), e, p.parseAdd())
	}
	return e
}

// parseTernary returns ?(cond, :(then, else)).
//
func (p *parser) parseTernary() *Expr {
	e := p.parseCompare()
	if p.name != "?" {
		return e
	}
	q := p.accept()
	t := p.parseTernary()
	if p.name != ":" {
		p.rejectToken(q, "Matching ':' was not found")
		return p.rejectSkip("Expecting a ':' to separate expression for the ternary '?' operator", stopLine)
	}
	colon := p.accept()
	return NewExpr(q, e, NewExpr(colon, t, p.parseTernary()))
}

// parseExpr parses an expression with an optional range.
//
func (p *parser) parseExpr() *Expr {
	e := p.parseTernary()
	if p.name == ":" || p.name == ".." {
		return NewExpr(p.accept(), e, p.parseTernary())
	}
	return e
}

func (p *parser) parseIfCond() *Expr {
	if p.name != "(" {
		return p.rejectSkip("Expecting '('", stopLine)
	}
	open := p.accept()
	e := p.parseExpr()
	if p.name != ")" {
		return p.rejectSkip("Expecting ')' - end of expression", stopLine)
	}
	lex.Connect(open, p.tok)
	p.accept()
	return e
}

// parseIf returns if(cond, stmts[, else]). An elif is an if in the else slot
// of the previous one.
//
func (p *parser) parseIf() *Expr {
	ifTok := p.accept()
	e := NewExpr(ifTok, p.parseIfCond(), p.parseStatements(false))

	last := e
	for p.name == "elif" {
		lex.Connect(ifTok, p.tok)
		p.accept()
		elif := NewExpr(ifTok, p.parseIfCond(), p.parseStatements(false))
		last.Add(elif)
		last = elif
	}
	if p.name == "else" {
		lex.Connect(ifTok, p.tok)
		p.accept()
		last.Add(p.parseStatements(false))
	}
	if p.name == "end" {
		p.tok.SetInfo("end if")
		lex.Connect(ifTok, p.tok)
		p.accept()
	} else {
		p.rejectSkip("Expecting 'end' - end of if statement body", stopBox)
	}
	return e
}

// parseBit returns bit(decl(name[, size])[, =(name, expr)]). The size may be
// written after the bit keyword or after the variable name.
//
func (p *parser) parseBit() *Expr {
	e := NewExpr(p.accept())
	var size *Expr
	if p.name == "[" {
		size = p.parseParen()
	}
	if p.tok.Type != lex.Identifier {
		p.rejectSkip("Expecting a variable name", stopLine)
		return e
	}
	name := p.accept()
	decl := NewExpr(name)
	if p.name == "[" {
		if size != nil {
			p.reject("Array size is already specified")
		}
		size = p.parseParen()
	}
	if size != nil {
		decl.Add(size)
	}
	e.Add(decl)
	if p.name == "=" {
		e.Add(NewExpr(p.accept(), NewExpr(name), p.parseExpr()))
	}
	return e
}

// parseConst returns const(int, =(name, expr)).
//
func (p *parser) parseConst() *Expr {
	e := NewExpr(p.accept())
	if p.name != "int" {
		p.rejectSkip("Expecting keyword 'int'", stopLine)
		return e
	}
	e.Add(NewExpr(p.accept()))
	if p.tok.Type != lex.Identifier {
		p.rejectSkip("Expecting a variable name", stopLine)
		return e
	}
	name := p.accept()
	if p.name != "=" {
		p.reject("Expecting '=' - Assignment is required")
		return e
	}
	e.Add(NewExpr(p.accept(), NewExpr(name), p.parseExpr()))
	return e
}

func (p *parser) parseStatement(topLevel bool) *Expr {
	for p.name == "else" || p.name == "elif" {
		p.reject("This '" + p.name + "' is not inside an 'if' statement")
		p.accept()
	}
	if endOfStatements(p.name, topLevel) {
		return nil
	}

	semicolon := true
	var e *Expr
	switch p.name {
	case "bit":
		if !topLevel {
			p.reject("'bit' declarations are only allowed at the top level")
		}
		e = p.parseBit()
	case "const":
		if !topLevel {
			p.reject("'const' declarations are only allowed at the top level")
		}
		e = p.parseConst()
	case "if":
		semicolon = false
		e = p.parseIf()
	default:
		e = p.parseExpr()
		if p.name == "=" {
			e = NewExpr(p.accept(), e, p.parseExpr())
		}
	}

	if semicolon && p.name != ";" {
		p.rejectSkip("Expecting end of statement separator ';'", stopLine)
	}
	if p.name == ";" {
		p.accept()
	}
	return e
}

// endOfStatements returns true if name ends a statement list. else and elif
// only end the body of an if statement.
//
func endOfStatements(name string, topLevel bool) bool {
	switch name {
	case "", "box", "end":
		return true
	case "else", "elif":
		return !topLevel
	}
	return false
}

// parseStatements returns a `{` expression holding the statements up to the
// next box or end keyword. Inside an if statement, else and elif also end the
// list.
//
func (p *parser) parseStatements(topLevel bool) *Expr {
	stmts := NewExpr(&lex.Token{Name: "{"})
	for !endOfStatements(p.name, topLevel) {
		for p.name == ";" {
			p.accept()
		}
		if endOfStatements(p.name, topLevel) {
			break
		}
		if s := p.parseStatement(topLevel); s != nil {
			stmts.Add(s)
		}
		for p.name == ";" {
			p.accept()
		}
	}
	return stmts
}

// parseDecl parses a box name or box parameter. For parameters, an optional
// bit keyword may follow the qualifier and the size may be written before or
// after the name.
//
func (p *parser) parseDecl(stops stopSet, param bool) *Decl {
	d := &Decl{TypeName: p.accept()}
	if param && p.name == "bit" {
		d.Type = p.accept()
		if p.name == "[" {
			d.Size = p.parseParen()
		}
	}
	if p.tok.Type != lex.Identifier {
		p.rejectSkip("Expecting an identifier (the name of a box, parameter, or variable)", stops)
		return d
	}
	d.Name = p.accept()
	if p.name == "[" {
		if d.Size != nil {
			p.reject("Array size is already specified")
		}
		d.Size = p.parseParen()
	}
	return d
}

func (p *parser) parseParam() *Decl {
	if p.name != "in" && p.name != "out" && p.name != "bus" {
		p.rejectSkip("Expecting in, out, or bus keyword", stopParameter)
		return &Decl{}
	}
	d := p.parseDecl(stopParameter, true)
	if p.name == "=" {
		p.rejectSkip("Declaration parameters can not be assigned", stopParameter)
	}
	return d
}

func (p *parser) parseParamList() []*Decl {
	var params []*Decl
	open := p.accept()
	if p.name == ")" {
		lex.Connect(open, p.tok)
		p.accept()
		return params
	}

	for {
		params = append(params, p.parseParam())
		if p.name != "," && p.name != ")" {
			p.rejectSkip("Expecting ')' or ',' - end of parameter list or another parameter", stopParameter)
		}
		if p.name != "," {
			break
		}
		p.accept()
	}

	if p.name == ")" {
		lex.Connect(open, p.tok)
		p.accept()
	} else {
		p.rejectSkip("Expecting ')' - end of parameter list", stopLine)
	}
	return params
}

func (p *parser) parseBox() *Box {
	b := &Box{Name: p.parseDecl(stopPrototype, false)}
	if p.name == "(" {
		b.Params = p.parseParamList()
	} else {
		p.rejectSkip("Expecting '(' or '[' in box declaration", stopPrototype)
	}

	if p.name != "is" {
		p.rejectSkip("Expecting 'is' after box prototype", stopBox)
		b.Stmts = NewExpr(&lex.Token{Name: "{"})
		return b
	}
	p.accept()

	b.Stmts = p.parseStatements(true)
	if p.name == "end" {
		p.tok.SetInfo("end " + b.Name.String())
		lex.Connect(b.Name.TypeName, p.tok)
		p.accept()
	} else {
		p.rejectSkip("Expecting 'end' - end of box body", stopBox)
	}
	return b
}

func (p *parser) parseFile() *Box {
	top := &Box{
		Name: &Decl{
			TypeName: &lex.Token{Name: TopLevelName},
			Name:     &lex.Token{Name: TopLevelName},
		},
		Stmts: NewExpr(&lex.Token{Name: "{"}),
	}
	for !p.tok.IsEOF() {
		switch p.name {
		case "box":
			p.err = false
			b := p.parseBox()
			b.Parent = top
			b.Error = p.err
			top.Boxes = append(top.Boxes, b)
		case "const":
			top.Consts = append(top.Consts, p.parseConst())
			if p.name != ";" {
				p.rejectSkip("Expecting end of statement separator ';'", stopLine)
			}
			for p.name == ";" {
				p.accept()
			}
		default:
			p.rejectSkip("Invalid token '"+p.name+"' was found when expecting the keyword 'box' or 'const'", stopBox)
		}
	}
	return top
}
