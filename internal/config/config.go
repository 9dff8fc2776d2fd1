// Package config loads the command line tool settings from a TOML file.
//
package config

import (
	"io/ioutil"
	"os"

	"github.com/db47h/boxsim"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Log levels.
const (
	LevelSilent  = "silent"
	LevelError   = "error"
	LevelWarning = "warning"
	LevelVerbose = "verbose"
)

// Simulation holds the circuit settings.
//
type Simulation struct {
	Optimize             bool `toml:"optimize"`
	MaxSettleGenerations int  `toml:"max-settle-generations"`
	// GatesPerSecond throttles the circuit runner and the generations run
	// by the simulate command.
	GatesPerSecond int `toml:"gates-per-second"`
	// Generations run by the simulate command after settling.
	Generations int  `toml:"generations"`
	ResetHigh   bool `toml:"reset-high"`
}

// Log holds the console output settings.
//
type Log struct {
	Level string `toml:"level"`
}

// Config is the content of a configuration file.
//
type Config struct {
	Simulation Simulation `toml:"simulation"`
	Log        Log        `toml:"log"`
}

// Default returns the default configuration.
//
func Default() *Config {
	return &Config{
		Simulation: Simulation{
			Optimize:             true,
			MaxSettleGenerations: boxsim.DefaultMaxSettle,
		},
		Log: Log{Level: LevelVerbose},
	}
}

// Load reads the configuration file at path. Missing keys keep their default
// value.
//
func Load(path string) (*Config, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read configuration")
	}
	return Parse(buf)
}

// overlay is the decoded form of a configuration file. Nil fields are absent
// from the file.
type overlay struct {
	Simulation *struct {
		Optimize             *bool `toml:"optimize"`
		MaxSettleGenerations *int  `toml:"max-settle-generations"`
		GatesPerSecond       *int  `toml:"gates-per-second"`
		Generations          *int  `toml:"generations"`
		ResetHigh            *bool `toml:"reset-high"`
	} `toml:"simulation"`
	Log *struct {
		Level *string `toml:"level"`
	} `toml:"log"`
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// Parse decodes a TOML configuration.
//
func Parse(buf []byte) (*Config, error) {
	var o overlay
	if err := toml.Unmarshal(buf, &o); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	c := Default()
	if s := o.Simulation; s != nil {
		setBool(&c.Simulation.Optimize, s.Optimize)
		setInt(&c.Simulation.MaxSettleGenerations, s.MaxSettleGenerations)
		setInt(&c.Simulation.GatesPerSecond, s.GatesPerSecond)
		setInt(&c.Simulation.Generations, s.Generations)
		setBool(&c.Simulation.ResetHigh, s.ResetHigh)
	}
	if l := o.Log; l != nil && l.Level != nil {
		c.Log.Level = *l.Level
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return c, nil
}

// Validate checks that every value is in range.
//
func (c *Config) Validate() error {
	s := &c.Simulation
	if s.MaxSettleGenerations < 1 || s.MaxSettleGenerations > 1e6 {
		return errors.Errorf("max-settle-generations must be in the range 1 to 1000000, got %d", s.MaxSettleGenerations)
	}
	if s.GatesPerSecond < 0 {
		return errors.Errorf("gates-per-second must not be negative, got %d", s.GatesPerSecond)
	}
	if s.Generations < 0 {
		return errors.Errorf("generations must not be negative, got %d", s.Generations)
	}
	switch c.Log.Level {
	case LevelSilent, LevelError, LevelWarning, LevelVerbose:
	default:
		return errors.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Save writes c to path.
//
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create configuration file")
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return errors.Wrap(err, "failed to encode configuration")
	}
	return nil
}

// Options returns the circuit options.
//
func (c *Config) Options() boxsim.Options {
	return boxsim.Options{
		Optimize:       c.Simulation.Optimize,
		MaxSettle:      c.Simulation.MaxSettleGenerations,
		GatesPerSecond: c.Simulation.GatesPerSecond,
	}
}
