// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/db47h/boxsim"
)

// maxExhaustive is the largest input width tested exhaustively.
const maxExhaustive = 12

func inputWidth(c *boxsim.Circuit) int {
	w := 0
	for _, f := range c.Inputs() {
		w += f.Width()
	}
	return w
}

func inputString(c *boxsim.Circuit) string {
	var b strings.Builder
	for _, f := range c.Inputs() {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", f.Name, c.Int64(f))
	}
	return b.String()
}

func settle(t testing.TB, c *boxsim.Circuit) {
	t.Helper()
	stable, err := c.Settle()
	if err != nil {
		t.Fatal(err)
	}
	if !stable {
		t.Fatalf("%s: unstable with %s", c.Box().Name(), inputString(c))
	}
}

// CompareBoxes sets the same inputs on two circuits and compares their
// outputs. Inputs are matched by name, outputs by position: the return values
// of boxes with different names compare equal.
//
// Inputs are set to all 0, all 1, then every combination if the inputs are
// no wider than 12 bits or 4096 random values otherwise.
//
func CompareBoxes(t testing.TB, c1, c2 *boxsim.Circuit) {
	t.Helper()

	in1, in2 := c1.Inputs(), c2.Inputs()
	if len(in1) != len(in2) {
		t.Fatalf("input count mismatch: %d != %d", len(in1), len(in2))
	}
	for i := range in1 {
		if in1[i].Name != in2[i].Name || in1[i].Width() != in2[i].Width() {
			t.Fatalf("input %d mismatch: %v != %v", i, in1[i], in2[i])
		}
	}
	out1, out2 := c1.Outputs(), c2.Outputs()
	if len(out1) != len(out2) {
		t.Fatalf("output count mismatch: %d != %d", len(out1), len(out2))
	}
	for i := range out1 {
		if out1[i].Width() != out2[i].Width() {
			t.Fatalf("output %d width mismatch: %d != %d", i, out1[i].Width(), out2[i].Width())
		}
	}

	for _, c := range []*boxsim.Circuit{c1, c2} {
		if _, err := c.Reset(false); err != nil {
			t.Fatal(err)
		}
	}

	check := func() {
		t.Helper()
		settle(t, c1)
		settle(t, c2)
		for i := range out1 {
			if v1, v2 := c1.Int64(out1[i]), c2.Int64(out2[i]); v1 != v2 {
				t.Fatalf("%s\n%s: %s = %d\n%s: %s = %d", inputString(c1),
					c1.Box().Name(), out1[i].Name, v1, c2.Box().Name(), out2[i].Name, v2)
			}
		}
	}
	set := func(vs []int64) {
		for i, v := range vs {
			c1.SetInt64(in1[i], v)
			c2.SetInt64(in2[i], v)
		}
	}
	same := func(v int64) []int64 {
		vs := make([]int64, len(in1))
		for i := range vs {
			vs[i] = v
		}
		return vs
	}

	start := time.Now()

	set(same(0))
	check()
	set(same(-1))
	check()

	iter := 1 << maxExhaustive
	w := inputWidth(c1)
	exhaustive := w <= maxExhaustive
	if exhaustive {
		iter = 1 << uint(w)
	}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	vs := make([]int64, len(in1))
	for i := 0; i < iter; i++ {
		v := int64(i)
		for j, f := range in1 {
			if exhaustive {
				vs[j] = v
				v >>= uint(f.Width())
			} else {
				vs[j] = rnd.Int63()
			}
		}
		set(vs)
		check()
	}

	t.Logf("%d iterations in %v", iter, time.Since(start))
}

// A Vector is a row of a test table: the values of some inputs and the
// expected values of some outputs.
//
type Vector struct {
	In  map[string]int64
	Out map[string]int64
}

// RunTable applies the vectors of table in order to c, settling the circuit
// after each row. Fields that are not listed in a row keep their value.
//
func RunTable(t testing.TB, c *boxsim.Circuit, table []Vector) {
	t.Helper()
	if _, err := c.Reset(false); err != nil {
		t.Fatal(err)
	}
	for i, v := range table {
		for _, name := range sortedKeys(v.In) {
			if err := c.Set(name, v.In[name]); err != nil {
				t.Fatalf("row %d: %v", i, err)
			}
		}
		settle(t, c)
		for _, name := range sortedKeys(v.Out) {
			f := c.Field(name)
			if f == nil {
				t.Fatalf("row %d: no such field %q", i, name)
			}
			mask := int64(-1)
			if f.Width() < 64 {
				mask = 1<<uint(f.Width()) - 1
			}
			if got, exp := c.Int64(f), v.Out[name]&mask; got != exp {
				t.Errorf("row %d: %s\n%s = %d, expected %d", i, inputString(c), name, got, exp)
			}
		}
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
