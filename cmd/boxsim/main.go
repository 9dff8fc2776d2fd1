// Command boxsim compiles box programs and simulates boxes.
//
// Usage:
//
//	boxsim [--loglevel level] [--config file] compile <file> [--box name] [--listing] [--no-opt] [--lib]
//	boxsim [--loglevel level] [--config file] simulate <file> --box name [--inputs a=1,b=0x2] [--generations n] [--listing] [--no-opt] [--lib]
//	boxsim version
//
// The exit status is 0 only if the program compiles without errors and the
// simulation, if any, succeeds.
//
package main

import (
	"os"

	"github.com/ComedicChimera/olive"
	"github.com/db47h/boxsim/internal/config"
	"github.com/db47h/boxsim/internal/logging"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args))
}

// run executes the command line args and returns the exit status: 2 for usage
// and configuration errors, 1 if compilation or simulation fails.
//
func run(args []string) int {
	cli := olive.NewCLI("boxsim", "boxsim compiles and simulates box programs", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false,
		[]string{config.LevelSilent, config.LevelError, config.LevelWarning, config.LevelVerbose})
	logLvlArg.SetDefaultValue(config.LevelVerbose)
	cli.AddStringArg("config", "c", "the configuration file", false)

	compileCmd := cli.AddSubcommand("compile", "compile a source file", true)
	compileCmd.AddPrimaryArg("file", "the source file", true)
	compileCmd.AddFlag("listing", "l", "print the compiled code of the box")
	compileCmd.AddFlag("no-opt", "no", "do not optimize the linked code")
	compileCmd.AddFlag("lib", "L", "prepend the standard box library to the source")
	compileCmd.AddStringArg("box", "b", "the box to link (and list)", false)

	simCmd := cli.AddSubcommand("simulate", "simulate a box", true)
	simCmd.AddPrimaryArg("file", "the source file", true)
	simCmd.AddFlag("listing", "l", "print the compiled code of the box")
	simCmd.AddFlag("no-opt", "no", "do not optimize the linked code")
	simCmd.AddFlag("lib", "L", "prepend the standard box library to the source")
	simCmd.AddStringArg("box", "b", "the box to simulate", true)
	simCmd.AddStringArg("inputs", "i", "input values: name=value,...", false)
	simCmd.AddStringArg("generations", "g", "generations to run after settling", false)

	cli.AddSubcommand("version", "print the boxsim version", false)

	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		return 2
	}

	cfg := config.Default()
	if v, ok := result.Arguments["config"]; ok {
		if cfg, err = config.Load(v.(string)); err != nil {
			logging.PrintErrorMessage("Config Error", err)
			return 2
		}
	}
	level := result.Arguments["loglevel"].(string)
	if level == config.LevelVerbose {
		level = cfg.Log.Level
	}
	logging.SetLevel(logging.ParseLevel(level))

	ok := true
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "compile":
		ok = execCompile(newJob(subResult, cfg))
	case "simulate":
		ok = execSimulate(newJob(subResult, cfg))
	case "version":
		logging.PrintInfoMessage("boxsim version", version)
	}
	if !ok {
		return 1
	}
	return 0
}
