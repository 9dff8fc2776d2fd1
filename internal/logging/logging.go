// Package logging renders the console output of the command line tool.
//
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// Level gates the messages displayed.
//
type Level int

// Log levels
const (
	LevelSilent Level = iota // no output at all
	LevelError               // errors only
	LevelWarning             // errors and warnings
	LevelVerbose             // everything, phase spinners included (default)
)

// ParseLevel returns the level with the given name. Unknown names are
// LevelVerbose.
//
func ParseLevel(name string) Level {
	switch name {
	case "silent":
		return LevelSilent
	case "error":
		return LevelError
	case "warning", "warn":
		return LevelWarning
	}
	return LevelVerbose
}

var (
	m     sync.Mutex
	level = LevelVerbose
)

// SetLevel sets the log level.
//
func SetLevel(l Level) {
	m.Lock()
	level = l
	m.Unlock()
}

// Enabled returns true if messages of level l are displayed.
//
func Enabled(l Level) bool {
	m.Lock()
	defer m.Unlock()
	return l <= level && level > LevelSilent
}

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	if !Enabled(LevelError) {
		return
	}
	EndPhase(false)
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintErrorText prints an error message to the console
func PrintErrorText(tag, msg string) {
	PrintErrorMessage(tag, errors.New(msg))
}

// PrintWarningMessage prints a warning message to the console
func PrintWarningMessage(tag, msg string) {
	if !Enabled(LevelWarning) {
		return
	}
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	if !Enabled(LevelVerbose) {
		return
	}
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// phase spinner state
var (
	phaseSpinner   *pterm.SpinnerPrinter
	currentPhase   string
	phaseStartTime time.Time
)

const maxPhaseLength = len("Optimizing")

func phaseText(phase string) string {
	pad := maxPhaseLength - len(phase) + 2
	if pad < 1 {
		pad = 1
	}
	return phase + strings.Repeat(" ", pad)
}

// BeginPhase starts a spinner for the given phase.
//
func BeginPhase(phase string) {
	if !Enabled(LevelVerbose) {
		return
	}
	EndPhase(true)
	m.Lock()
	defer m.Unlock()
	currentPhase = phase
	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))
	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}
	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}
	phaseSpinner.Start(phaseText(phase + "..."))
	phaseStartTime = time.Now()
}

// EndPhase stops the current phase spinner, if any.
//
func EndPhase(success bool) {
	m.Lock()
	defer m.Unlock()
	if phaseSpinner == nil {
		return
	}
	if success {
		phaseSpinner.Success(phaseText(currentPhase), fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds()))
	} else {
		phaseSpinner.Fail(phaseText(currentPhase))
	}
	phaseSpinner = nil
}
