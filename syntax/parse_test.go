package syntax_test

import (
	"strings"
	"testing"

	"github.com/db47h/boxsim/internal/lex"
	"github.com/db47h/boxsim/syntax"
)

func parse(src string) (*lex.Lexer, *syntax.Box) {
	l := lex.New(strings.Split(src, "\n"))
	return l, syntax.Parse(l)
}

// errors returns the messages of all tokens flagged with an error.
func errors(l *lex.Lexer) []string {
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

func TestParseStatements(t *testing.T) {
	data := []struct {
		stmt string
		tree string
	}{
		{"b = !a;", "{(=(b, !(a)))"},
		{"x = a + b * c # d;", "{(=(x, +(a, #(*(b, c), d))))"},
		{"x = a - b - c;", "{(=(x, -(-(a, b), c)))"},
		{"x = (a + b) * c;", "{(=(x, *(+(a, b), c)))"},
		{"x = a == b;", "{(=(x, ==(a, b)))"},
		{"x = c ? a : d ? e : f;", "{(=(x, ?(c, :(a, ?(d, :(e, f))))))"},
		{"x = y[1:2];", "{(=(x, [(y, :(1, 2))))"},
		{"x = y[0..3];", "{(=(x, [(y, ..(0, 3))))"},
		{"x = F(a, b[1]);", "{(=(x, ((F, a, [(b, 1))))"},
		{"F();", "{(((F))"},
		{"x = !F(a);", "{(=(x, !(((F, a))))"},
		{"if (c) a = 1; elif (d) a = 0; else a = b; end", "{(if(c, {(=(a, 1)), if(d, {(=(a, 0)), {(=(a, b)))))"},
		{"if (c) a = 1; end", "{(if(c, {(=(a, 1))))"},
		{"bit y[2] = x;", "{(bit(y(2), =(y, x)))"},
		{"bit[2] y = x;", "{(bit(y(2), =(y, x)))"},
		{"bit y;", "{(bit(y))"},
		{"const int N = 3 + 4;", "{(const(int, =(N, +(3, 4))))"},
		{";; x = y;;", "{(=(x, y))"},
		{"x = set(a, dup(b, 2));", "{(=(x, ((set, a, ((dup, b, 2))))"},
	}
	for _, d := range data {
		t.Run(d.stmt, func(t *testing.T) {
			l, prog := parse("box A(in a, out b) is\n" + d.stmt + "\nend")
			if errs := errors(l); len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(prog.Boxes) != 1 {
				t.Fatalf("expected 1 box, got %d", len(prog.Boxes))
			}
			if got := prog.Boxes[0].Stmts.String(); got != d.tree {
				t.Fatalf("got %s, expected %s", got, d.tree)
			}
		})
	}
}

func TestParseBox(t *testing.T) {
	l, prog := parse(`// library
const int W = 4;
box Add[W](in bit[W] a, in b[W], out c, bus d) is
	Add = a + b;
end
box Null() is end`)
	if errs := errors(l); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(prog.Consts) != 1 || prog.Consts[0].String() != "const(int, =(W, 4))" {
		t.Fatalf("bad constants %v", prog.Consts)
	}
	if len(prog.Boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(prog.Boxes))
	}
	add := prog.Find("Add")
	if add == nil || add.Parent != prog {
		t.Fatal("box Add not found")
	}
	if add.Name.Size.String() != "W" {
		t.Errorf("return size: got %v", add.Name.Size)
	}
	exp := []struct{ typ, name, size string }{
		{"in", "a", "W"},
		{"in", "b", "W"},
		{"out", "c", "<nil>"},
		{"bus", "d", "<nil>"},
	}
	if len(add.Params) != len(exp) {
		t.Fatalf("expected %d params, got %d", len(exp), len(add.Params))
	}
	for i, e := range exp {
		p := add.Params[i]
		if p.TypeName.Name != e.typ || p.Name.Name != e.name || p.Size.String() != e.size {
			t.Errorf("param %d: got %s %s[%v]", i, p.TypeName.Name, p.Name.Name, p.Size)
		}
	}
	if add.Params[0].Type == nil || add.Params[1].Type != nil {
		t.Error("bad type keywords")
	}
	null := prog.Find("Null")
	if null == nil || len(null.Params) != 0 || len(null.Stmts.Params) != 0 {
		t.Fatal("bad box Null")
	}
	// box and end keywords are connected
	boxTok := l.Row(2)[0]
	if len(boxTok.Connected()) != 2 || boxTok.Connected()[1].Name != "end" {
		t.Fatalf("box not connected to end: %v", boxTok.Connected())
	}
}

func TestParseErrors(t *testing.T) {
	data := []struct {
		name string
		src  string
		msg  string
	}{
		{"missing operand", "box A() is x = ; end", "Expecting an identifier, number, parentheses, or expression"},
		{"missing semicolon", "box A() is x = y end", "Expecting end of statement separator ';'"},
		{"stray else", "box A() is else x = y; end", "This 'else' is not inside an 'if' statement"},
		{"stray elif", "box A() is x = y; elif end", "This 'elif' is not inside an 'if' statement"},
		{"else after if", "box A() is if (c) x = y; end else x = z; end", "This 'else' is not inside an 'if' statement"},
		{"nested bit", "box A() is if (c) bit x; end end", "'bit' declarations are only allowed at the top level"},
		{"junk", "foo box A() is end", "Invalid token 'foo' was found when expecting the keyword 'box' or 'const'"},
		{"no is", "box A() x = y; end", "Expecting 'is' after box prototype"},
		{"no paren", "box A is end", "Expecting '(' or '[' in box declaration"},
		{"bad param", "box A(bit x) is end", "Expecting in, out, or bus keyword"},
		{"assigned param", "box A(in x = 1) is end", "Declaration parameters can not be assigned"},
		{"no end", "box A() is x = y;", "Expecting 'end' - end of box body"},
		{"if no end", "box A() is if (c) x = y; ", "Expecting 'end' - end of if statement body"},
		{"if no paren", "box A() is if c x = y; end end", "Expecting '('"},
		{"ternary", "box A() is x = c ? a; end", "Matching ':' was not found"},
		{"empty paren", "box A() is x = (); end", "Expecting a parameter"},
		{"const type", "const bit x = 1;", "Expecting keyword 'int'"},
		{"const assign", "const int x;", "Expecting '=' - Assignment is required"},
		{"call", "box A() is x = F(a b); end", "Expecting ')' or ','"},
		{"size twice", "box A() is bit[2] y[3]; end", "Array size is already specified"},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			l, prog := parse(d.src)
			if d.name == "junk" {
				prog.Boxes = nil
			}
			errs := errors(l)
			found := false
			for _, m := range errs {
				if strings.Contains(m, d.msg) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected error %q, got %q", d.msg, errs)
			}
			for _, b := range prog.Boxes {
				if !b.Error {
					t.Errorf("box %s not flagged", b.Name)
				}
			}
		})
	}
}

func TestReparseClearsErrors(t *testing.T) {
	l, _ := parse("box A() is x = ; end")
	if len(errors(l)) == 0 {
		t.Fatal("expected errors")
	}
	l.Replace(lex.Loc{Line: 0, Char: 15}, lex.Loc{Line: 0, Char: 15}, []string{"y"})
	prog := syntax.Parse(l)
	if errs := errors(l); len(errs) > 0 {
		t.Fatalf("unexpected errors after edit: %v", errs)
	}
	if prog.Boxes[0].Error {
		t.Fatal("box still flagged")
	}
}
