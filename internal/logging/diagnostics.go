package logging

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/db47h/boxsim"
	"github.com/pterm/pterm"
)

// expand replaces tabs by 4 spaces.
func expand(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// Selection returns line with tabs expanded and a line of carets under the n
// characters starting at char.
//
func Selection(line string, char, n int) (text, carets string) {
	if char > len(line) {
		char = len(line)
	}
	if n < 1 {
		n = 1
	}
	return expand(line), strings.Repeat(" ", len(expand(line[:char]))) + strings.Repeat("^", n)
}

// PrintDiagnostics prints the diagnostics of a source file. lines is the
// source text, first is the line number of lines[0] in the file (0 based).
// Diagnostics located before first are reported on the first line.
//
func PrintDiagnostics(path string, lines []string, first int, ds []boxsim.Diagnostic) {
	if !Enabled(LevelError) {
		return
	}
	EndPhase(false)
	name := filepath.Base(path)
	for _, d := range ds {
		fmt.Print("\n-- ")
		ErrorStyleBG.Print("Compile Error")
		bannerLen := pterm.GetTerminalWidth() / 2
		if bannerLen > 50 {
			bannerLen = 50
		}
		dashes := bannerLen - len(name) - len("Compile Error") - 1
		if dashes < 2 {
			dashes = 2
		}
		fmt.Print(" " + strings.Repeat("-", dashes) + " ")
		InfoColorFG.Println(name)
		fmt.Println(d.Message)

		line := d.Loc.Line - first
		if line < 0 || line >= len(lines) {
			continue
		}
		n := len(d.Token.Name)
		text, carets := Selection(lines[line], d.Loc.Char, n)
		num := strconv.Itoa(d.Loc.Line - first + 1)
		InfoColorFG.Print(num + " ")
		fmt.Println("|  " + text)
		fmt.Print(strings.Repeat(" ", len(num)+1) + "|  ")
		ErrorColorFG.Println(carets)
	}
	fmt.Println()
}
