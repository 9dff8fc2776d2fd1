package hwtest_test

import (
	"strings"
	"testing"

	"github.com/db47h/boxsim"
	"github.com/db47h/boxsim/hwtest"
)

const src = `
box Or1[1](in a, in b) is Or1 = a + b; end
box CustomOr[1](in a, in b) is
	bit na = !(a * a);
	bit nb = !(b * b);
	CustomOr = !(na * nb);
end
box Wide[1](in a[8], in b[8]) is Wide = a == b; end
box WideRef[1](in a[8], in b[8]) is WideRef = !(a != b); end
`

func circuits(t *testing.T, names ...string) []*boxsim.Circuit {
	t.Helper()
	p := boxsim.Compile(strings.Split(src, "\n"))
	if !p.Ok() {
		t.Fatalf("compile failed: %v", p.Diagnostics())
	}
	var cs []*boxsim.Circuit
	for _, n := range names {
		c, err := boxsim.NewCircuit(p.Box(n), boxsim.Options{Optimize: true})
		if err != nil {
			t.Fatal(err)
		}
		cs = append(cs, c)
	}
	return cs
}

func TestCompareBoxes(t *testing.T) {
	cs := circuits(t, "Or1", "CustomOr")
	hwtest.CompareBoxes(t, cs[0], cs[1])
}

func TestCompareBoxesRandom(t *testing.T) {
	cs := circuits(t, "Wide", "WideRef")
	hwtest.CompareBoxes(t, cs[0], cs[1])
}

func TestRunTable(t *testing.T) {
	cs := circuits(t, "Or1")
	hwtest.RunTable(t, cs[0], []hwtest.Vector{
		{In: map[string]int64{"a": 0, "b": 0}, Out: map[string]int64{"Or1": 0}},
		{In: map[string]int64{"a": 1}, Out: map[string]int64{"Or1": 1}},
		{In: map[string]int64{"b": 1}, Out: map[string]int64{"Or1": 1}},
		{In: map[string]int64{"a": 0}, Out: map[string]int64{"Or1": 1}},
		{In: map[string]int64{"b": 0}, Out: map[string]int64{"Or1": 0}},
	})
}
