// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package boxsim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/db47h/boxsim/compile"
	"github.com/db47h/boxsim/gate"
	"github.com/db47h/boxsim/opt"
	"github.com/pkg/errors"
)

// DefaultMaxSettle is the default bound on the extra generations run by
// Settle while the circuit keeps changing.
//
const DefaultMaxSettle = 100

const idleSleep = 10 * time.Millisecond

// Options configures a Circuit.
//
type Options struct {
	// Optimize the linked code.
	Optimize bool
	// MaxSettle bounds the extra generations run by Settle. 0 means
	// DefaultMaxSettle.
	MaxSettle int
	// GatesPerSecond throttles the runner. 0 means no limit.
	GatesPerSecond int
}

// Circuit is a runnable gate network built from a linked box.
//
type Circuit struct {
	box     *compile.Box
	cells   []*gate.Cell
	stats   opt.Stats
	opts    Options
	linked  int
	gates   int
	inputs  []*Field
	outputs []*Field
	locals  []*Field

	mu     sync.Mutex
	err    error
	stop   chan struct{}
	done   chan struct{}
	gens   int64
	paused int32
	speed  int64
}

// NewCircuit links b and builds a circuit from a copy of its linked code.
//
// Callers must make sure to call Dispose() once the circuit is no longer
// needed in order to stop the runner.
//
func NewCircuit(b *compile.Box, opts Options) (*Circuit, error) {
	if b == nil {
		return nil, errors.New("nil box")
	}
	if !b.IsBox() {
		return nil, errors.New("the file scope is not a box")
	}
	if b.Error {
		return nil, errors.Errorf("box %q has errors", b.Name())
	}
	if opts.MaxSettle <= 0 {
		opts.MaxSettle = DefaultMaxSettle
	}
	if err := b.Link(); err != nil {
		return nil, errors.Wrap(err, "failed to link circuit")
	}
	cells, err := gate.CopyNetwork(b.Linked)
	if err != nil {
		return nil, errors.Wrap(err, "failed to copy linked code")
	}

	c := &Circuit{box: b, opts: opts, linked: gate.CountGates(cells)}
	if opts.Optimize {
		cells, c.stats = opt.Optimize(cells, b.MinOptimizeIndex())
	}
	c.cells = cells
	c.gates = gate.CountGates(cells)
	c.speed = int64(opts.GatesPerSecond)

	if b.Symbol.Size > 0 {
		c.outputs = append(c.outputs, newField(b.Symbol, cells))
	}
	for _, p := range b.Params {
		switch p.Kind() {
		case "in":
			c.inputs = append(c.inputs, newField(p, cells))
		case "out":
			c.outputs = append(c.outputs, newField(p, cells))
		}
	}
	for _, l := range b.Locals {
		if l.Kind() == "bit" {
			c.locals = append(c.locals, newField(l, cells))
		}
	}
	return c, nil
}

// Box returns the box c was built from.
//
func (c *Circuit) Box() *compile.Box { return c.box }

// Cells returns the cells of the network. They must not be modified while the
// runner is active.
//
func (c *Circuit) Cells() []*gate.Cell { return c.cells }

// Stats returns the optimizer counters.
//
func (c *Circuit) Stats() opt.Stats { return c.stats }

// Gates returns the gate count of the linked code before and after
// optimization.
//
func (c *Circuit) Gates() (linked, optimized int) { return c.linked, c.gates }

// Inputs returns the in parameters.
//
func (c *Circuit) Inputs() []*Field { return c.inputs }

// Outputs returns the return value followed by the out parameters.
//
func (c *Circuit) Outputs() []*Field { return c.outputs }

// Locals returns the local bit variables.
//
func (c *Circuit) Locals() []*Field { return c.locals }

// Field returns the field with the given name or nil.
//
func (c *Circuit) Field(name string) *Field {
	for _, fs := range [][]*Field{c.inputs, c.outputs, c.locals} {
		for _, f := range fs {
			if f.Name == name {
				return f
			}
		}
	}
	return nil
}

// guard runs fn and turns an evaluation panic into an error.
//
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("evaluation failed: %v", r)
		}
	}()
	fn()
	return nil
}

func (c *Circuit) generation(quick bool) int {
	n := gate.Generation(c.cells, quick)
	if n > 0 {
		atomic.AddInt64(&c.gens, 1)
	}
	return n
}

func (c *Circuit) settle() bool {
	run := func(quick bool) int {
		n := 0
		for i := 0; i < 2; i++ {
			n = c.generation(quick)
		}
		for i := 0; i < c.opts.MaxSettle && n > 0; i++ {
			n = c.generation(quick)
		}
		return n
	}
	run(true)
	return run(false) == 0
}

// Reset sets every node to high, then settles the circuit. It returns false
// if the circuit is unstable.
//
func (c *Circuit) Reset(high bool) (stable bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	err = guard(func() {
		gate.Preload(c.cells, high)
		stable = c.settle()
	})
	c.err = err
	return stable, err
}

// Settle runs generations until the circuit is stable or the settle bound is
// reached. It returns false if the circuit is unstable.
//
func (c *Circuit) Settle() (stable bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	err = guard(func() { stable = c.settle() })
	c.err = err
	return stable, err
}

// Step runs one generation and returns the number of changed cells.
//
func (c *Circuit) Step(quick bool) (changes int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	err = guard(func() { changes = c.generation(quick) })
	c.err = err
	return changes, err
}

// Int64 returns the value of f.
//
func (c *Circuit) Int64(f *Field) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return f.Int64()
}

// SetInt64 writes v to the input field f, least significant bit first.
//
func (c *Circuit) SetInt64(f *Field, v int64) error {
	if !f.Input() {
		return errors.Errorf("field %q is not an input", f.Name)
	}
	c.mu.Lock()
	f.setInt64(v)
	c.mu.Unlock()
	return nil
}

// Set writes v to the input field with the given name.
//
func (c *Circuit) Set(name string, v int64) error {
	f := c.Field(name)
	if f == nil {
		return errors.Errorf("no such field %q", name)
	}
	return c.SetInt64(f, v)
}

// Get returns the value of the field with the given name.
//
func (c *Circuit) Get(name string) (int64, error) {
	f := c.Field(name)
	if f == nil {
		return 0, errors.Errorf("no such field %q", name)
	}
	return c.Int64(f), nil
}

// Generations returns the number of generations that changed the circuit.
//
func (c *Circuit) Generations() int64 { return atomic.LoadInt64(&c.gens) }

// Err returns the evaluation error that stopped the circuit, if any.
//
func (c *Circuit) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SetSpeed sets the runner throttle in gates per second. 0 removes the limit.
//
func (c *Circuit) SetSpeed(gatesPerSecond int) {
	atomic.StoreInt64(&c.speed, int64(gatesPerSecond))
}

// Pause pauses or resumes the runner.
//
func (c *Circuit) Pause(pause bool) {
	var v int32
	if pause {
		v = 1
	}
	atomic.StoreInt32(&c.paused, v)
}

// Paused returns true if the runner is paused.
//
func (c *Circuit) Paused() bool { return atomic.LoadInt32(&c.paused) != 0 }

// Running returns true if the runner is started.
//
func (c *Circuit) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// Start starts the runner goroutine. It runs non-quick generations until
// Stop is called or an evaluation fails.
//
func (c *Circuit) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return errors.Wrap(c.err, "cannot start a failed circuit")
	}
	if c.stop != nil {
		return errors.New("circuit already running")
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
	return nil
}

// Stop stops the runner and waits for it to exit.
//
func (c *Circuit) Stop() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Dispose stops the runner.
//
func (c *Circuit) Dispose() { c.Stop() }

func (c *Circuit) step() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	err := guard(func() { n = c.generation(false) })
	if err != nil {
		c.err = err
	}
	return n, err
}

func (c *Circuit) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	base := time.Now()
	var gates int64
	for {
		select {
		case <-stop:
			return
		default:
		}
		if c.Paused() {
			time.Sleep(idleSleep)
			base, gates = time.Now(), 0
			continue
		}
		if gps := atomic.LoadInt64(&c.speed); gps > 0 {
			allowed := int64(time.Since(base).Seconds() * float64(gps))
			if gates > allowed {
				time.Sleep(idleSleep)
				continue
			}
		}
		n, err := c.step()
		if err != nil {
			return
		}
		gates += int64(c.gates)
		if n == 0 {
			time.Sleep(idleSleep)
			base, gates = time.Now(), 0
		}
	}
}
