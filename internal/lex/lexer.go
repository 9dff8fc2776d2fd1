// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package lex

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default keywords.
var (
	ReservedWords = []string{"box", "if", "else", "elif", "end", "is"}
	ReservedNames = []string{"in", "out", "const", "int", "range", "bit", "bus", "dup", "set", "unused", "true", "false"}
)

type keyword struct {
	name string
	typ  Type
}

// Lexer holds the source text of a program and its tokens, one row of tokens
// per line.
//
type Lexer struct {
	lines  []string
	rows   [][]*Token
	exact  map[string]keyword
	folded map[string]keyword
	intern Interner
	eof    *Token
}

// New returns a new lexer for the given lines with the default keywords
// registered (case insensitive).
//
func New(lines []string) *Lexer {
	l := &Lexer{
		exact:  make(map[string]keyword),
		folded: make(map[string]keyword),
	}
	for _, w := range ReservedWords {
		l.AddKeyword(w, Reserved, false)
	}
	for _, w := range ReservedNames {
		l.AddKeyword(w, ReservedName, false)
	}
	l.Scan(lines)
	return l
}

// AddKeyword registers a keyword. Case insensitive keywords match any casing
// of word and yield tokens named word. Tokens already scanned are not updated;
// call Scan to re-scan the text.
//
func (l *Lexer) AddKeyword(word string, typ Type, caseSensitive bool) {
	if caseSensitive {
		l.exact[word] = keyword{word, typ}
		return
	}
	l.folded[strings.ToLower(word)] = keyword{word, typ}
}

// Scan replaces the whole text. There is always at least one line.
//
func (l *Lexer) Scan(lines []string) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	l.lines = append([]string(nil), lines...)
	l.rows = make([][]*Token, len(l.lines))
	for i := range l.lines {
		l.rows[i] = l.scanLine(i)
	}
}

// Lines returns the source text.
//
func (l *Lexer) Lines() []string { return l.lines }

// Row returns the tokens of the given line.
//
func (l *Lexer) Row(line int) []*Token {
	if line < 0 || line >= len(l.rows) {
		return nil
	}
	return l.rows[line]
}

// LineCount returns the number of lines.
//
func (l *Lexer) LineCount() int { return len(l.lines) }

func (l *Lexer) clamp(loc Loc) Loc {
	if loc.Line < 0 {
		return Loc{}
	}
	if loc.Line >= len(l.lines) {
		last := len(l.lines) - 1
		return Loc{last, len(l.lines[last])}
	}
	if loc.Char < 0 {
		loc.Char = 0
	}
	if n := len(l.lines[loc.Line]); loc.Char > n {
		loc.Char = n
	}
	return loc
}

func (l *Lexer) order(start, end Loc) (Loc, Loc) {
	start, end = l.clamp(start), l.clamp(end)
	if end.Less(start) {
		start, end = end, start
	}
	return start, end
}

// Text returns the text between start (inclusive) and end (exclusive).
//
func (l *Lexer) Text(start, end Loc) []string {
	start, end = l.order(start, end)
	if start.Line == end.Line {
		return []string{l.lines[start.Line][start.Char:end.Char]}
	}
	out := make([]string, 0, end.Line-start.Line+1)
	out = append(out, l.lines[start.Line][start.Char:])
	out = append(out, l.lines[start.Line+1:end.Line]...)
	return append(out, l.lines[end.Line][:end.Char])
}

// Replace replaces the text between start and end with text and re-scans the
// modified lines. It returns the location of the end of the inserted text.
//
func (l *Lexer) Replace(start, end Loc, text []string) Loc {
	start, end = l.order(start, end)
	if len(text) == 0 {
		text = []string{""}
	}
	prefix := l.lines[start.Line][:start.Char]
	suffix := l.lines[end.Line][end.Char:]

	repl := make([]string, len(text))
	copy(repl, text)
	repl[0] = prefix + repl[0]
	last := len(repl) - 1
	newEnd := Loc{start.Line + last, len(repl[last])}
	repl[last] += suffix

	tail := append([]string(nil), l.lines[end.Line+1:]...)
	l.lines = append(append(l.lines[:start.Line], repl...), tail...)

	rowTail := append([][]*Token(nil), l.rows[end.Line+1:]...)
	rows := make([][]*Token, len(repl))
	l.rows = append(append(l.rows[:start.Line], rows...), rowTail...)
	for i := start.Line; i <= newEnd.Line; i++ {
		l.rows[i] = l.scanLine(i)
	}
	if end.Line != newEnd.Line {
		for i := newEnd.Line + 1; i < len(l.rows); i++ {
			for _, t := range l.rows[i] {
				t.Loc.Line = i
			}
		}
	}
	return newEnd
}

// EOF returns the end of file token of l. It is a Reserved token with an empty
// name located at the end of the text. Errors found at the end of the input
// are reported on it.
//
func (l *Lexer) EOF() *Token {
	if l.eof == nil {
		l.eof = &Token{Type: Reserved}
	}
	last := len(l.lines) - 1
	l.eof.Loc = Loc{last, len(l.lines[last])}
	return l.eof
}

// Iter returns an iterator over all tokens, comments included.
//
func (l *Lexer) Iter() *Iter {
	return &Iter{l: l}
}

// Iter iterates over the tokens of a Lexer.
//
type Iter struct {
	l    *Lexer
	line int
	i    int
}

// Next returns the next token or nil at the end of the text.
//
func (it *Iter) Next() *Token {
	for it.line < len(it.l.rows) {
		row := it.l.rows[it.line]
		if it.i < len(row) {
			t := row[it.i]
			it.i++
			return t
		}
		it.line++
		it.i = 0
	}
	return nil
}

type stateFn func(s *scanner) stateFn

type scanner struct {
	l     *Lexer
	src   string
	line  int
	start int
	pos   int
	w     int
	toks  []*Token
}

func (l *Lexer) scanLine(line int) []*Token {
	s := &scanner{l: l, src: l.lines[line], line: line}
	for state := lexInit; state != nil; {
		state = state(s)
	}
	return s.toks
}

const eol = -1

func (s *scanner) next() rune {
	if s.pos >= len(s.src) {
		s.w = 0
		return eol
	}
	r, w := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += w
	s.w = w
	return r
}

func (s *scanner) backup() { s.pos -= s.w }

func (s *scanner) peek() rune {
	r := s.next()
	s.backup()
	return r
}

func (s *scanner) emit(typ Type) {
	name := s.l.intern.Intern(s.src[s.start:s.pos])
	s.toks = append(s.toks, &Token{Name: name, Loc: Loc{s.line, s.start}, Type: typ})
	s.start = s.pos
}

func lexInit(s *scanner) stateFn {
	s.start = s.pos
	r := s.next()
	switch {
	case r == eol:
		return nil
	case unicode.IsSpace(r):
		for unicode.IsSpace(s.peek()) {
			s.next()
		}
		return lexInit
	case unicode.IsLetter(r):
		return lexIdent
	case unicode.IsDigit(r):
		return lexNumber
	case r == '/' && s.peek() == '/':
		return lexComment
	case (r == '=' || r == '!') && s.peek() == '=',
		r == '.' && s.peek() == '.':
		s.next()
	}
	s.emit(Normal)
	return lexInit
}

func lexIdent(s *scanner) stateFn {
	for r := s.peek(); unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'; r = s.peek() {
		s.next()
	}
	word := s.src[s.start:s.pos]
	if kw, ok := s.l.exact[word]; ok {
		s.toks = append(s.toks, &Token{Name: kw.name, Loc: Loc{s.line, s.start}, Type: kw.typ})
		return lexInit
	}
	if kw, ok := s.l.folded[strings.ToLower(word)]; ok {
		s.toks = append(s.toks, &Token{Name: kw.name, Loc: Loc{s.line, s.start}, Type: kw.typ})
		return lexInit
	}
	s.emit(Identifier)
	return lexInit
}

func lexNumber(s *scanner) stateFn {
	for r := s.peek(); unicode.IsLetter(r) || unicode.IsDigit(r); r = s.peek() {
		s.next()
	}
	s.emit(Normal)
	return lexInit
}

func lexComment(s *scanner) stateFn {
	s.pos = len(s.src)
	s.emit(Comment)
	return nil
}
