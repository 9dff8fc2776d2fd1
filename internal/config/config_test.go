package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/boxsim"
	"github.com/db47h/boxsim/internal/config"
)

func TestParse(t *testing.T) {
	data := []struct {
		name string
		src  string
		ok   bool
		exp  func(c *config.Config) bool
	}{
		{"empty", "", true, func(c *config.Config) bool {
			return *c == *config.Default()
		}},
		{"partial", "[simulation]\noptimize = false\n", true, func(c *config.Config) bool {
			return !c.Simulation.Optimize && c.Simulation.MaxSettleGenerations == boxsim.DefaultMaxSettle
		}},
		{"full", "[simulation]\noptimize = true\nmax-settle-generations = 10\ngates-per-second = 500\n" +
			"generations = 3\nreset-high = true\n\n[log]\nlevel = \"error\"\n", true, func(c *config.Config) bool {
			s := c.Simulation
			return s.Optimize && s.MaxSettleGenerations == 10 && s.GatesPerSecond == 500 &&
				s.Generations == 3 && s.ResetHigh && c.Log.Level == config.LevelError
		}},
		{"settle range", "[simulation]\nmax-settle-generations = 0\n", false, nil},
		{"negative speed", "[simulation]\ngates-per-second = -1\n", false, nil},
		{"log level", "[log]\nlevel = \"chatty\"\n", false, nil},
		{"syntax", "[simulation\n", false, nil},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			c, err := config.Parse([]byte(d.src))
			if !d.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !d.exp(c) {
				t.Fatalf("unexpected config %+v", c)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "boxsim")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "boxsim.toml")

	c := config.Default()
	c.Simulation.GatesPerSecond = 1000
	c.Simulation.ResetHigh = true
	c.Log.Level = config.LevelWarning
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	l, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *l != *c {
		t.Fatalf("got %+v, expected %+v", l, c)
	}
	o := l.Options()
	if !o.Optimize || o.GatesPerSecond != 1000 || o.MaxSettle != boxsim.DefaultMaxSettle {
		t.Fatalf("unexpected options %+v", o)
	}
	if _, err := config.Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected error")
	}
}
