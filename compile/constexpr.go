package compile

import (
	"strconv"
	"strings"

	"github.com/db47h/boxsim/internal/lex"
	"github.com/db47h/boxsim/syntax"
)

// constant is the result of a constant expression.
type constant struct {
	n   int64
	hex bool
}

func (c constant) String() string {
	if c.hex {
		return "0x" + strings.ToUpper(strconv.FormatUint(uint64(c.n), 16))
	}
	return strconv.FormatInt(c.n, 10)
}

// parseNumber parses a decimal, 0x hexadecimal or 0b binary literal. Binary
// literals take up to 64 digits.
//
func parseNumber(s string) (c constant, ok bool) {
	if len(s) >= 3 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			v, err := strconv.ParseUint(s[2:], 16, 64)
			if err != nil {
				return c, false
			}
			return constant{n: int64(v), hex: true}, true
		case 'b', 'B':
			if len(s) > 66 {
				return c, false
			}
			var v uint64
			for i := 2; i < len(s); i++ {
				switch s[i] {
				case '0':
					v <<= 1
				case '1':
					v = v<<1 | 1
				default:
					return c, false
				}
			}
			return constant{n: int64(v)}, true
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return c, false
	}
	return constant{n: v}, true
}

// evalConst evaluates a constant expression: literals, int constants and the
// int operators + - * / %. Errors are reported on the offending token.
//
func (b *Box) evalConst(e *syntax.Expr) (constant, bool) {
	if e == nil || e.Func == nil || e.Func.Name == "" {
		return constant{}, false
	}
	t := e.Func
	if len(e.Params) > 0 {
		if len(e.Params) != 2 {
			b.reject(t, "Unrecognized symbol in constant expression")
			return constant{}, false
		}
		return b.evalConstOp(t, e.Params[0], e.Params[1])
	}
	if isDigit(t.Name) {
		c, ok := parseNumber(t.Name)
		if !ok {
			b.reject(t, "Error reading value")
		}
		return c, ok
	}
	if t.Type != lex.Identifier {
		b.reject(t, "Unrecognized symbol in constant expression")
		return constant{}, false
	}
	sym := b.scope.Lookup(t.Name)
	switch {
	case sym == nil:
		b.reject(t, "Undefined symbol")
		return constant{}, false
	case sym.Kind() != "int":
		b.reject(t, "Constant value must be of type 'int'")
		return constant{}, false
	case sym.ResolvedName == "":
		b.reject(t, "Unresolved symbol")
		return constant{}, false
	}
	t.AppendMessage(sym.ResolvedName)
	return constant{n: sym.Value}, true
}

func (b *Box) evalConstOp(op *lex.Token, l, r *syntax.Expr) (constant, bool) {
	x, ok := b.evalConst(l)
	if !ok {
		return x, false
	}
	y, ok := b.evalConst(r)
	if !ok {
		return y, false
	}
	res := constant{hex: x.hex}
	v, ok := intOp(op.Name, x.n, y.n)
	if !ok {
		b.reject(op, intOpError(op.Name, y.n))
		return res, false
	}
	res.n = v
	return res, true
}

// intOp computes x op y for the int operators.
//
func intOp(op string, x, y int64) (int64, bool) {
	switch op {
	case "+":
		return x + y, true
	case "-":
		return x - y, true
	case "*":
		return x * y, true
	case "/":
		if y != 0 {
			return x / y, true
		}
	case "%":
		if y != 0 {
			return x % y, true
		}
	}
	return 0, false
}

func intOpError(op string, y int64) string {
	if y == 0 && (op == "/" || op == "%") {
		return "Division by zero"
	}
	return "Unrecognized symbol in constant expression"
}

func isDigit(s string) bool { return s != "" && s[0] >= '0' && s[0] <= '9' }
