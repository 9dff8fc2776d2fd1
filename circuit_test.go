package boxsim_test

import (
	"strings"
	"testing"
	"time"

	"github.com/db47h/boxsim"
	"github.com/db47h/boxsim/internal/lex"
	"github.com/pkg/errors"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func compile(t *testing.T, src string) *boxsim.Program {
	t.Helper()
	p := boxsim.Compile(strings.Split(src, "\n"))
	for _, d := range p.Diagnostics() {
		t.Logf("%v", d)
	}
	return p
}

func circuit(t *testing.T, src, box string, opts boxsim.Options) *boxsim.Circuit {
	t.Helper()
	p := compile(t, src)
	if !p.Ok() {
		t.Fatalf("%s: compile failed", box)
	}
	c, err := boxsim.NewCircuit(p.Box(box), opts)
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	return c
}

const fullAdder = `
box FullAdder(in a, in b, in c, out sum, out carry) is
	bit s = a # b;
	sum = s # c;
	carry = a*b + s*c;
end
`

var allOpts = []struct {
	name string
	opts boxsim.Options
}{
	{"raw", boxsim.Options{}},
	{"optimized", boxsim.Options{Optimize: true}},
}

func TestPassthrough(t *testing.T) {
	for _, o := range allOpts {
		t.Run(o.name, func(t *testing.T) {
			c := circuit(t, "box Test(in a, out b) is b = a; end", "Test", o.opts)
			defer c.Dispose()
			if stable, err := c.Reset(false); err != nil || !stable {
				t.Fatalf("reset: stable=%v, err=%v", stable, err)
			}
			for _, v := range []int64{1, 0, 1} {
				if err := c.Set("a", v); err != nil {
					t.Fatal(err)
				}
				if _, err := c.Settle(); err != nil {
					t.Fatal(err)
				}
				if got, _ := c.Get("b"); got != v {
					t.Fatalf("b = %d, expected %d", got, v)
				}
			}
		})
	}
}

func TestDup(t *testing.T) {
	c := circuit(t, "box D[4](in a) is D = dup(a, 4); end", "D", boxsim.Options{Optimize: true})
	defer c.Dispose()
	for _, v := range []int64{1, 0} {
		c.Set("a", v)
		if _, err := c.Settle(); err != nil {
			t.Fatal(err)
		}
		if got, _ := c.Get("D"); got != v*15 {
			t.Fatalf("dup(%d) = %d", v, got)
		}
	}
}

func TestStability(t *testing.T) {
	data := []struct {
		src    string
		stable bool
	}{
		{"box S(out o) is bit a = a; o = a; end", true},
		{"box S(out o) is bit a = !a; o = a; end", false},
	}
	for _, d := range data {
		for _, o := range allOpts {
			c := circuit(t, d.src, "S", o.opts)
			for _, high := range []bool{false, true} {
				stable, err := c.Reset(high)
				if err != nil {
					t.Fatal(err)
				}
				if stable != d.stable {
					t.Errorf("%s (%s, high=%v): stable = %v", d.src, o.name, high, stable)
				}
			}
			c.Dispose()
		}
	}
}

func TestSelfCall(t *testing.T) {
	p := compile(t, "box R[1](in a) is R = R(a); end")
	if p.Ok() {
		t.Fatal("expected errors")
	}
	found := false
	for _, d := range p.Diagnostics() {
		if strings.Contains(d.Message, "Box must not call itself") {
			found = true
		}
	}
	if !found {
		t.Fatal("missing recursion error")
	}
	if _, err := boxsim.NewCircuit(p.Box("R"), boxsim.Options{}); err == nil {
		t.Fatal("expected NewCircuit to fail")
	}
	if l := boxsim.Listing(p.Box("R")); !strings.Contains(l, "// NOTE: This box has errors.") {
		t.Fatalf("missing error note in listing:\n%s", l)
	}
}

func TestEdit(t *testing.T) {
	p := compile(t, "box A(in a, out b) is\n  b = a;\nend")
	if !p.Ok() {
		t.Fatal("compile failed")
	}
	end := p.Edit(lex.Loc{Line: 1, Char: 6}, lex.Loc{Line: 1, Char: 7}, []string{"c"})
	if end != (lex.Loc{Line: 1, Char: 7}) {
		t.Fatalf("edit end: %v", end)
	}
	ds := p.Diagnostics()
	if len(ds) == 0 || ds[0].Loc != (lex.Loc{Line: 1, Char: 6}) || !strings.Contains(ds[0].Message, "Undefined symbol") {
		t.Fatalf("unexpected diagnostics %v", ds)
	}
	p.Edit(lex.Loc{Line: 1, Char: 6}, lex.Loc{Line: 1, Char: 7}, []string{"a"})
	if !p.Ok() {
		t.Fatalf("unexpected diagnostics %v", p.Diagnostics())
	}
	if got := p.Lines()[1]; got != "  b = a;" {
		t.Fatalf("line 1 = %q", got)
	}
}

func TestFullAdder(t *testing.T) {
	for _, o := range allOpts {
		t.Run(o.name, func(t *testing.T) {
			c := circuit(t, fullAdder, "FullAdder", o.opts)
			defer c.Dispose()
			if len(c.Inputs()) != 3 || len(c.Outputs()) != 2 || len(c.Locals()) != 1 {
				t.Fatalf("unexpected fields %v, %v, %v", c.Inputs(), c.Outputs(), c.Locals())
			}
			c.Reset(false)
			for i := int64(0); i < 8; i++ {
				a, b, cin := i&1, i>>1&1, i>>2&1
				for n, v := range map[string]int64{"a": a, "b": b, "c": cin} {
					if err := c.Set(n, v); err != nil {
						t.Fatal(err)
					}
				}
				if stable, err := c.Settle(); err != nil || !stable {
					t.Fatalf("settle: stable=%v, err=%v", stable, err)
				}
				sum, _ := c.Get("sum")
				carry, _ := c.Get("carry")
				if s := a + b + cin; sum != s&1 || carry != s>>1 {
					t.Errorf("%d+%d+%d: sum=%d, carry=%d", a, b, cin, sum, carry)
				}
			}
			if err := c.SetInt64(c.Field("sum"), 1); err == nil {
				t.Error("expected error writing an output")
			}
			if _, err := c.Get("nope"); err == nil {
				t.Error("expected error reading an unknown field")
			}
		})
	}
}

func TestListing(t *testing.T) {
	c := circuit(t, "box Test(in a, out b) is b = a; end", "Test", boxsim.Options{})
	defer c.Dispose()
	exp := "// Compiled code, 0 gates\nbox Test (in a, out b)\n{\n    a = (in);\n    b = a;\n}\n"
	if got := c.Listing(); got != exp {
		t.Fatalf("got:\n%s\nexpected:\n%s", got, exp)
	}
	if linked, optimized := c.Gates(); linked != 0 || optimized != 0 {
		t.Fatalf("gates: %d, %d", linked, optimized)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRunner(t *testing.T) {
	c := circuit(t, "box S(out o) is bit a = !a; o = a; end", "S", boxsim.Options{MaxSettle: 4})
	defer c.Dispose()
	if stable, _ := c.Reset(false); stable {
		t.Fatal("oscillator reported stable")
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); err == nil {
		t.Fatal("second Start should fail")
	}
	g := c.Generations()
	waitFor(t, "generations", func() bool { return c.Generations() > g+10 })

	c.Pause(true)
	if !c.Paused() {
		t.Fatal("not paused")
	}
	c.Pause(false)
	c.SetSpeed(1000)
	c.Stop()
	if c.Running() {
		t.Fatal("still running")
	}
	c.Stop()
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	c.Stop()
	if err := c.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestEvaluationFailure(t *testing.T) {
	c := circuit(t, "box Test(in a, out b) is b = a; end", "Test", boxsim.Options{})
	defer c.Dispose()
	c.Cells()[0].Root = nil
	if _, err := c.Reset(false); err == nil || !strings.Contains(err.Error(), "unassigned") {
		t.Fatalf("expected evaluation error, got %v", err)
	}
	if c.Err() == nil {
		t.Fatal("error not recorded")
	}
	if err := c.Start(); err == nil {
		t.Fatal("failed circuit started")
	}

	c = circuit(t, "box Test(in a, out b) is b = a; end", "Test", boxsim.Options{})
	defer c.Dispose()
	c.Cells()[0].Root = nil
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "runner failure", func() bool { return c.Err() != nil })
	c.Stop()
}
