// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex implements the line oriented lexer of the box language.
//
// Tokens are stored per source line so that edits only need to re-scan the
// lines they touch. Tokens double as diagnostic carriers: the parser and the
// code generator attach errors and hover information to them.
//
package lex

import (
	"fmt"
	"strings"
)

// Type is a token classification.
//
type Type uint8

// Token types
const (
	Normal Type = iota
	Reserved
	ReservedName
	Identifier
	Comment
)

var typeNames = [...]string{
	Normal:       "Normal",
	Reserved:     "Reserved",
	ReservedName: "ReservedName",
	Identifier:   "Identifier",
	Comment:      "Comment",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// Loc is a location in the source text. Line and Char are 0 based.
//
type Loc struct {
	Line int
	Char int
}

// Less returns true if l comes before m.
//
func (l Loc) Less(m Loc) bool {
	if l.Line != m.Line {
		return l.Line < m.Line
	}
	return l.Char < m.Char
}

func (l Loc) String() string {
	return fmt.Sprintf("%d:%d", l.Line+1, l.Char+1)
}

// Token is a lexeme together with the diagnostics attached to it.
//
type Token struct {
	Name string
	Loc  Loc
	Type Type

	err       bool
	info      string
	connected []*Token
}

// IsEOF returns true if t marks the end of the input.
//
func (t *Token) IsEOF() bool {
	return t.Name == ""
}

// Error returns true if an error has been reported on t.
//
func (t *Token) Error() bool { return t.err }

// Info returns the accumulated info and diagnostic messages of t, one per line.
//
func (t *Token) Info() string { return t.info }

// SetInfo replaces the info string of t.
//
func (t *Token) SetInfo(s string) { t.info = s }

// AppendMessage appends msg on a new line of the info string unless an
// identical line is already present.
//
func (t *Token) AppendMessage(msg string) {
	if msg == "" {
		return
	}
	if t.info == "" {
		t.info = msg
		return
	}
	for _, l := range strings.Split(t.info, "\n") {
		if l == msg {
			return
		}
	}
	t.info += "\n" + msg
}

// Reject flags t as an error and appends msg to its info.
//
func (t *Token) Reject(msg string) {
	t.err = true
	t.AppendMessage(msg)
}

// Connected returns the tokens connected to t (matching parentheses, if/end
// keywords, ...). The result includes t itself or is nil.
//
func (t *Token) Connected() []*Token { return t.connected }

// Reset clears diagnostics and connections.
//
func (t *Token) Reset() {
	t.err = false
	t.info = ""
	t.connected = nil
}

func (t *Token) String() string {
	if t.IsEOF() {
		return "end of file"
	}
	return t.Name
}

// Connect merges the connection sets of a and b. Connecting a token twice is
// harmless.
//
func Connect(a, b *Token) {
	if a == nil || b == nil {
		return
	}
	set := make([]*Token, 0, len(a.connected)+len(b.connected)+2)
	add := func(t *Token) {
		for _, c := range set {
			if c == t {
				return
			}
		}
		set = append(set, t)
	}
	add(a)
	for _, t := range a.connected {
		add(t)
	}
	add(b)
	for _, t := range b.connected {
		add(t)
	}
	for _, t := range set {
		t.connected = set
	}
}
