// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable boxes: logic gates built from
// Nand, multiplexers, adders and latches.
//
// A box can only call the boxes defined before it, so the library is meant to
// be prepended to user programs:
//
//	p := boxsim.Compile(hwlib.With(lines...))
//
package hwlib

import "strings"

var parts = []string{gates, mux, arith, latch}

// Source returns the source text of the library.
//
func Source() string {
	return strings.Join(parts, "")
}

// Lines returns the library source split in lines.
//
func Lines() []string {
	return strings.Split(strings.TrimSuffix(Source(), "\n"), "\n")
}

// With returns the library source lines followed by lines. User code starts at
// line len(Lines()).
//
func With(lines ...string) []string {
	lib := Lines()
	return append(lib[:len(lib):len(lib)], lines...)
}
