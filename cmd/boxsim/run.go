package main

import (
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"
	"time"

	"github.com/ComedicChimera/olive"
	"github.com/db47h/boxsim"
	"github.com/db47h/boxsim/compile"
	"github.com/db47h/boxsim/hwlib"
	"github.com/db47h/boxsim/internal/config"
	"github.com/db47h/boxsim/internal/logging"
	"github.com/pkg/errors"
)

// job holds the arguments of the compile and simulate commands.
type job struct {
	path    string
	box     string
	inputs  string
	gens    string
	listing bool
	lib     bool
	cfg     *config.Config
}

func newJob(r *olive.ArgParseResult, cfg *config.Config) *job {
	j := &job{cfg: cfg}
	j.path, _ = r.PrimaryArg()
	if v, ok := r.Arguments["box"]; ok {
		j.box = v.(string)
	}
	if v, ok := r.Arguments["inputs"]; ok {
		j.inputs = v.(string)
	}
	if v, ok := r.Arguments["generations"]; ok {
		j.gens = v.(string)
	}
	j.listing = r.HasFlag("listing")
	j.lib = r.HasFlag("lib")
	if r.HasFlag("no-opt") {
		cfg.Simulation.Optimize = false
	}
	return j
}

func readLines(path string) ([]string, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source")
	}
	text := strings.ReplaceAll(string(buf), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}

// compile compiles the source file and returns the requested box, if any.
func (j *job) compile() (*boxsim.Program, *compile.Box, bool) {
	lines, err := readLines(j.path)
	if err != nil {
		logging.PrintErrorMessage("File Error", err)
		return nil, nil, false
	}
	first := 0
	if j.lib {
		first = len(hwlib.Lines())
		lines = hwlib.With(lines...)
	}

	logging.BeginPhase("Compiling")
	p := boxsim.Compile(lines)
	if !p.Ok() {
		ds := p.Diagnostics()
		logging.PrintDiagnostics(j.path, lines[first:], first, ds)
		logging.PrintErrorText("Compile Error", fmt.Sprintf("%d error(s)", len(ds)))
		return p, nil, false
	}
	logging.EndPhase(true)

	if j.box == "" {
		return p, nil, true
	}
	b := p.Box(j.box)
	if b == nil {
		logging.PrintErrorText("Box Error", "no box named "+strconv.Quote(j.box))
		return p, nil, false
	}
	return p, b, true
}

func (j *job) circuit(b *compile.Box) (*boxsim.Circuit, bool) {
	logging.BeginPhase("Linking")
	if err := b.Link(); err != nil {
		logging.PrintErrorMessage("Link Error", err)
		return nil, false
	}
	if j.cfg.Simulation.Optimize {
		logging.BeginPhase("Optimizing")
	}
	c, err := boxsim.NewCircuit(b, j.cfg.Options())
	if err != nil {
		logging.PrintErrorMessage("Circuit Error", err)
		return nil, false
	}
	logging.EndPhase(true)
	linked, optimized := c.Gates()
	logging.PrintInfoMessage("Gates", fmt.Sprintf("%d unlinked, %d linked, %d optimized",
		b.GatesUnlinked(), linked, optimized))
	return c, true
}

// pace returns the time after which generation n of a circuit with the given
// gate count may run. 0 gates per second means no limit.
//
func pace(n int64, gates, gatesPerSecond int) time.Duration {
	if gatesPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(n) * float64(gates) / float64(gatesPerSecond) * float64(time.Second))
}

func execCompile(j *job) bool {
	_, b, ok := j.compile()
	if !ok || b == nil {
		return ok
	}
	c, ok := j.circuit(b)
	if !ok {
		return false
	}
	defer c.Dispose()
	if j.listing {
		fmt.Print(c.Listing())
	}
	return true
}

func execSimulate(j *job) bool {
	_, b, ok := j.compile()
	if !ok {
		return false
	}
	if b == nil {
		logging.PrintErrorText("Box Error", "missing box name")
		return false
	}
	ins, err := parseInputs(j.inputs)
	if err != nil {
		logging.PrintErrorMessage("Input Error", err)
		return false
	}
	gens := int64(j.cfg.Simulation.Generations)
	if j.gens != "" {
		if gens, err = strconv.ParseInt(j.gens, 10, 32); err != nil || gens < 0 {
			logging.PrintErrorText("Input Error", "invalid generation count "+strconv.Quote(j.gens))
			return false
		}
	}

	c, ok := j.circuit(b)
	if !ok {
		return false
	}
	defer c.Dispose()
	if j.listing {
		fmt.Print(c.Listing())
	}

	logging.BeginPhase("Simulating")
	if _, err := c.Reset(j.cfg.Simulation.ResetHigh); err != nil {
		logging.PrintErrorMessage("Simulation Error", err)
		return false
	}
	for _, in := range ins {
		if err := c.Set(in.name, in.value); err != nil {
			logging.PrintErrorMessage("Input Error", err)
			return false
		}
	}
	stable, err := c.Settle()
	if err != nil {
		logging.PrintErrorMessage("Simulation Error", err)
		return false
	}
	start := time.Now()
	_, gates := c.Gates()
	for i := int64(0); i < gens; i++ {
		time.Sleep(time.Until(start.Add(pace(i, gates, j.cfg.Simulation.GatesPerSecond))))
		if _, err := c.Step(false); err != nil {
			logging.PrintErrorMessage("Simulation Error", err)
			return false
		}
	}
	logging.EndPhase(true)
	if !stable {
		logging.PrintWarningMessage("Unstable", "the circuit did not settle")
	}

	for _, f := range c.Outputs() {
		fmt.Printf("%s = %d (%s)\n", f.Name, c.Int64(f), f.Bits())
	}
	if logging.Enabled(logging.LevelVerbose) {
		for _, f := range c.Locals() {
			fmt.Printf("bit %s = %d (%s)\n", f.Name, c.Int64(f), f.Bits())
		}
		logging.PrintInfoMessage("Generations", strconv.FormatInt(c.Generations(), 10))
	}
	return true
}
