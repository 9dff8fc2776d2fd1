package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pterm/pterm"
)

func TestExitStatus(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	dir, err := ioutil.TempDir("", "boxsim")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	files := map[string]string{
		"good.box": "box Not[1](in a) is Not = !a; end\n",
		"bad.box":  "box Bad(in a, out b) is b = c; end\n",
	}
	for name, src := range files {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(src), 0644); err != nil {
			t.Fatal(err)
		}
	}

	data := []struct {
		name string
		args []string
		exit int
	}{
		{"compile", []string{"compile", filepath.Join(dir, "good.box")}, 0},
		{"compile errors", []string{"compile", filepath.Join(dir, "bad.box")}, 1},
		{"missing file", []string{"compile", filepath.Join(dir, "none.box")}, 1},
		{"version", []string{"version"}, 0},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			if got := run(append([]string{"boxsim"}, d.args...)); got != d.exit {
				t.Fatalf("exit status %d, expected %d", got, d.exit)
			}
		})
	}
}

func TestPace(t *testing.T) {
	data := []struct {
		n          int64
		gates, gps int
		exp        time.Duration
	}{
		{10, 100, 0, 0},
		{0, 100, 1000, 0},
		{1, 100, 1000, 100 * time.Millisecond},
		{5, 10, 100, 500 * time.Millisecond},
		{3, 0, 100, 0},
	}
	for _, d := range data {
		if got := pace(d.n, d.gates, d.gps); got != d.exp {
			t.Errorf("pace(%d, %d, %d) = %v, expected %v", d.n, d.gates, d.gps, got, d.exp)
		}
	}
}
