package compile_test

import (
	"strings"
	"testing"

	"github.com/db47h/boxsim/compile"
	"github.com/db47h/boxsim/gate"
	"github.com/db47h/boxsim/internal/lex"
	"github.com/db47h/boxsim/syntax"
)

func build(src string) (*lex.Lexer, *compile.Box) {
	l := lex.New(strings.Split(src, "\n"))
	return l, compile.Compile(syntax.Parse(l))
}

func diagnostics(l *lex.Lexer) []string {
	var msgs []string
	it := l.Iter()
	for t := it.Next(); t != nil; t = it.Next() {
		if t.Error() {
			msgs = append(msgs, t.Info())
		}
	}
	if eof := l.EOF(); eof.Error() {
		msgs = append(msgs, eof.Info())
	}
	return msgs
}

func listing(b *compile.Box) []string {
	var lines []string
	for _, c := range b.Code {
		lines = append(lines, c.String())
	}
	return lines
}

func TestCode(t *testing.T) {
	data := []struct {
		name string
		src  string
		exp  []string
	}{
		{"and", "box A(in a, in b, out c) is c = a * b; end",
			[]string{"a = (in)", "b = (in)", "c = (a * b)"}},
		{"return", "box A[1](in a) is A = !a; end",
			[]string{"A = !a", "a = (in)"}},
		{"ifelse", "box T(in c, out a) is if (c) a = 1; else a = 0; end end",
			[]string{"c = (in)", "a = E2", "E2 = c", "E3 = !E2"}},
		{"nested", "box N(in c, in d, out a) is if (c) if (d) a = 1; end end end",
			[]string{"c = (in)", "d = (in)", "a = E5", "E3 = c", "E4 = d", "E5 = (E3 * E4)"}},
		{"ternary", "box M(in s, in a, in b, out o) is o = s ? a : b; end",
			[]string{"s = (in)", "a = (in)", "b = (in)", "o = ((E4 * a) + (!E4 * b))", "E4 = s"}},
		{"compare", "box E(in a[2], out o) is o = a == 2; end",
			[]string{"a.0 = (in)", "a.1 = (in)", "o = (!a.0 * a.1)"}},
		{"differ", "box E(in a, in b, out o) is o = a != b; end",
			[]string{"a = (in)", "b = (in)", "o = (a # b)"}},
		{"dup", "box D(in x, out y[3]) is y = dup(x); end",
			[]string{"x = (in)", "y.0 = E4", "y.1 = E4", "y.2 = E4", "E4 = x"}},
		{"set", "box S(in a, in b, out y[2]) is y = set(a, b); end",
			[]string{"a = (in)", "b = (in)", "y.0 = b", "y.1 = a"}},
		{"index", "box I(in a[4], out y[2]) is y = a[1..2]; end",
			[]string{"a.0 = (in)", "a.1 = (in)", "a.2 = (in)", "a.3 = (in)", "y.0 = a.1", "y.1 = a.2"}},
		{"const", "const int N = 2;\nbox C(in a[N], out y[N]) is y = a; end",
			[]string{"a.0 = (in)", "a.1 = (in)", "y.0 = a.0", "y.1 = a.1"}},
		{"int", "box K(out y[3]) is y = 5; end",
			[]string{"y.0 = 1", "y.1 = 0", "y.2 = 1"}},
		{"negative", "box K(out y[2]) is y = 0b1 - 2; end",
			[]string{"y.0 = 1", "y.1 = 1"}},
		{"local", "box L(in a, out y) is bit t = !a; y = t * a; end",
			[]string{"a = (in)", "y = (t * a)", "t = !a"}},
		{"constant", "box Z(in a, out y) is y = a * false; end",
			[]string{"a = (in)", "y = 0"}},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			l, prog := build(d.src)
			if errs := diagnostics(l); len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			b := prog.All()[0]
			got := listing(b)
			if strings.Join(got, "\n") != strings.Join(d.exp, "\n") {
				t.Fatalf("got:\n%s\nexpected:\n%s", strings.Join(got, "\n"), strings.Join(d.exp, "\n"))
			}
		})
	}
}

func TestErrors(t *testing.T) {
	data := []struct {
		body string
		msg  string
	}{
		{"c = x; d = b;", "Undefined symbol"},
		{"c = b; d = b;", "Error: Needs 'dup' function.  Operator '=' can not be applied to operands of type 'bit [1]' and 'bit [2] unless 'dup' is used on the single bit operand."},
		{"c = a; c = a; d = b;", "Left hand side was already assigned"},
		{"a = 1; c = a; d = b;", "Left hand side was already assigned (as an 'in' parameter)"},
		{"c = 2; d = b;", "Overflow: The value 2 is too big/small to fit in 1 bits"},
		{"c = a; d = 0b111;", "Overflow: The value 7 is too big/small to fit in 2 bits"},
		{"c = a; d = b[1:2];", "Index out of range: Type is bit [2], index is range (1:2) or (1..2)"},
		{"c = a; d = b[1:0];", "Range length must be >= 1: Range is 1:0"},
		{"c = a;", "Error: This declaration must be fully assigned"},
		{"dup(c) = a; d = b;", "Dup not allowed on left side of assignment operator"},
		{"c = a; d = dup(b);", "Error: 'dup' requires a parameter of type 'bit [1]', not of type 'bit [2]'"},
		{"c = a; d = dup(a, 0);", "Error: Parameter 2 must be from 1 to 128,  not 'int(0)'"},
		{"c = a; d = dup(a, 3);", "Error: Operator '=' can not be applied to operands of type 'bit [2]' and 'bit [3]' (array lengths are incompatible)"},
		{"c = b ? a : a; d = b;", "Error: Left hand side of '?' expects type 'bit [1]', but got type 'bit [2]' instead"},
		{"if (b) c = a; end d = b;", "Error: Expecting 'if' condition to be of type 'bit[1]', but found type 'bit [2]'"},
		{"c = 1 / 0; d = b;", "Division by zero"},
		{"c = !3; d = b;", "Can not perform '!' operator on 'int(3)' (unknown operator type)"},
		{"c = a; d = b + 1;", "Error: Operator '+' can not be applied to operands of type 'bit' and 'int'"},
		{"c = a; d = set(a, 1);", "Error: 'set' (parameter 2) requires a parameter of type 'bit', not of type 'int'"},
		{"c = a; d = b; bit c;", "This symbol is already defined"},
		{"c = a; d = b; A(a, b, c, d);", "Box must not call itself (recursion not allowed)"},
		{"c = a; d = b; bit[300] x;", "The array size must be in the range of 1 to 256"},
		{"c = a; d = b; bit x; !x = a;", "Left hand side can not be assigned (wrong expression type)"},
		{"c = a; d = b; bit x[N];", "Undefined symbol"},
		{"c = a; d = b; bit x = true; x = false;", "Left hand side was already assigned"},
		{"c = a; d = b; unused = a;", "Unrecognized reserved word: 'unused'"},
	}
	for _, d := range data {
		t.Run(d.body, func(t *testing.T) {
			l, prog := build("box A(in a, in b[2], out c, out d[2]) is\n" + d.body + "\nend")
			b := prog.Find("A")
			if b == nil {
				t.Fatal("box A not found")
			}
			if !b.Error {
				t.Fatal("expected box to be flagged")
			}
			errs := diagnostics(l)
			for _, e := range errs {
				if strings.Contains(e, d.msg) {
					return
				}
			}
			t.Fatalf("message %q not found in %q", d.msg, errs)
		})
	}
}

const inverter = "box Inv(in a, out b) is b = !a; end\n"

func TestCallErrors(t *testing.T) {
	data := []struct {
		src string
		msg string
	}{
		{inverter + "box T(in x, out y) is y = Inv(x, unused); end", "Error: Operator '=' can not be applied to operands of type 'bit' and 'void'"},
		{inverter + "box T(in x, out y) is Inv(x); end", "Incorrect number of parameters: 'Inv' expects 2 but is given 1"},
		{inverter + "box T(in x, out y) is Inv(x, !y); end", "Parameter 2 is an 'out' parameter, and must not be an expression"},
		{inverter + "box T(in x, out y) is y = x; Inv(x, y); end", "Parameter 2 is an 'out' parameter, and has already been assigned a value"},
		{inverter + "box T(in x, out y) is y = x; Inv(unused, unused); end", "'unused' can only be used with 'out' parameters"},
		{inverter + "box T(in x, out y) is bit z[2] = 0; Inv(z, y); end", "Parameter 1 is expecting type 'bit['1]' but was given type 'bit['2]'"},
		{inverter + "box T(in x, out y) is Inv(1, y); end", "Parameter 1 is expecting type 'bit' but was given type 'int'"},
		{"box Bad(in a, out b) is end\nbox T(in x, out y) is Bad(x, y); end", "The box 'Bad' has errors that must be fixed"},
		{"box T(in x, out y) is y = x; x(y); end", "Expecting the name of a box, but 'x' is of type 'in x"},
		{"box T(in x, out y) is y = Later(x); end\nbox Later[1](in a) is Later = a; end", "Undefined symbol"},
		{inverter + "box T(in x, out y) is y = Inv; end", "Only this box 'T' may be used"},
	}
	for _, d := range data {
		t.Run(d.msg, func(t *testing.T) {
			l, prog := build(d.src)
			if b := prog.Find("T"); b == nil || !b.Error {
				t.Fatal("expected box T to be flagged")
			}
			errs := diagnostics(l)
			for _, e := range errs {
				if strings.Contains(e, d.msg) {
					return
				}
			}
			t.Fatalf("message %q not found in %q", d.msg, errs)
		})
	}
}

func TestResolvedNames(t *testing.T) {
	l, prog := build("const int W = 0x2;\nbox Add[W](in a[W], in c, out o) is Add = a; o = c; end")
	if errs := diagnostics(l); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	b := prog.Find("Add")
	if got, exp := b.String(), "box Add[2] (in a[2], in c, out o)"; got != exp {
		t.Fatalf("got %q, expected %q", got, exp)
	}
	var info []string
	for _, tok := range l.Row(0) {
		if tok.Name == "W" {
			info = append(info, tok.Info())
		}
	}
	if len(info) != 1 || info[0] != "const int W = 0x2 (2)" {
		t.Fatalf("got %q", info)
	}
}

func TestLink(t *testing.T) {
	l, prog := build(inverter + "box T(in x, out y) is Inv(x, y); end")
	if errs := diagnostics(l); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	b := prog.Find("T")
	if err := b.Link(); err != nil {
		t.Fatal(err)
	}
	exp := []string{"x = (in)", "y = X3", "X2 = x", "X3 = !X2"}
	var got []string
	for _, c := range b.Linked {
		got = append(got, c.String())
	}
	if strings.Join(got, "\n") != strings.Join(exp, "\n") {
		t.Fatalf("got:\n%s\nexpected:\n%s", strings.Join(got, "\n"), strings.Join(exp, "\n"))
	}
	if n := b.GatesUnlinked(); n != 1 {
		t.Errorf("expected 1 unlinked gate, got %d", n)
	}
	if n := b.GatesLinked(); n != 1 {
		t.Errorf("expected 1 linked gate, got %d", n)
	}

	// linking is memoized and leaves callees untouched
	linked := b.Linked
	if err := b.Link(); err != nil || &b.Linked[0] != &linked[0] {
		t.Fatal("second link must be a no-op")
	}
	if inv := prog.Find("Inv"); inv.Linked[1].String() != "b = !a" {
		t.Fatalf("callee modified: %v", inv.Linked[1])
	}
}

func TestLinkTwice(t *testing.T) {
	l, prog := build(inverter + "box T(in x, out y) is bit t; Inv(x, t); Inv(t, y); end")
	if errs := diagnostics(l); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	b := prog.Find("T")
	if err := b.Link(); err != nil {
		t.Fatal(err)
	}
	// x, y, t, then two instances of Inv
	if len(b.Linked) != 7 {
		t.Fatalf("expected 7 linked cells, got %d", len(b.Linked))
	}
	for i, c := range b.Linked {
		if c.Index != i {
			t.Fatalf("cell %d has index %d", i, c.Index)
		}
		if c.Root == nil {
			t.Fatalf("cell %v unassigned", c)
		}
		c.Root.Walk(func(n *gate.Node) {
			if n.Kind == gate.Terminal && (n.Cell.Index >= len(b.Linked) || b.Linked[n.Cell.Index] != n.Cell) {
				t.Fatalf("terminal of cell %v points outside of the linked code", c)
			}
		})
	}
}

func TestLinkErrors(t *testing.T) {
	_, prog := build("box Bad(in a, out b) is end")
	if err := prog.Find("Bad").Link(); err == nil {
		t.Fatal("expected an error linking a box with errors")
	}
	if err := prog.Link(); err == nil {
		t.Fatal("expected an error linking the file scope")
	}
}

func TestMinOptimizeIndex(t *testing.T) {
	_, prog := build("box M(in s, in a, in b, out o) is bit t = s ? a : b; o = t; end")
	b := prog.Find("M")
	// s a b o t, then the snapshot of s
	if n := b.MinOptimizeIndex(); n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
}
