package compile

import (
	"strconv"

	"github.com/db47h/boxsim/gate"
	"github.com/db47h/boxsim/internal/lex"
)

type baseType uint8

const (
	typeFailed baseType = iota
	typeVoid
	typeOK
	typeBit
	typeInt
	typeRange
)

var typeNames = [...]string{
	typeFailed: "(error)",
	typeVoid:   "void",
	typeOK:     "(ok)",
	typeBit:    "bit",
	typeInt:    "int",
	typeRange:  "range",
}

// value is the result of lowering an expression. A failed value means that an
// error has already been reported.
//
type value struct {
	typ    baseType
	n      int64 // int value or range start
	length int64 // range length
	bits   []*gate.Node
	// dup is set when the single bit of this value may be replicated to any
	// width.
	dup *lex.Token
}

var (
	failure   = value{}
	okValue   = value{typ: typeOK}
	voidValue = value{typ: typeVoid}
)

func intValue(n int64) value { return value{typ: typeInt, n: n} }

func bitValue(bits ...*gate.Node) value { return value{typ: typeBit, bits: bits} }

func (v value) failed() bool { return v.typ == typeFailed }

func (v value) width() int { return len(v.bits) }

func (v value) String() string {
	switch v.typ {
	case typeBit:
		if v.bits == nil {
			return "bit"
		}
		return "bit [" + strconv.Itoa(len(v.bits)) + "]"
	case typeInt:
		return "int(" + strconv.FormatInt(v.n, 10) + ")"
	case typeRange:
		s, l := strconv.FormatInt(v.n, 10), strconv.FormatInt(v.length, 10)
		if v.length <= 0 {
			return "range(" + s + ":" + l + ")"
		}
		return "range (" + s + ":" + l + ") or (" + s + ".." + strconv.FormatInt(v.n+v.length-1, 10) + ")"
	}
	return typeNames[v.typ]
}
