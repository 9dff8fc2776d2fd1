// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package boxsim compiles programs written in a small hardware description
language and simulates the resulting gate networks.

A program is a list of boxes. A box declares input and output bit parameters,
an optional return value, local bit variables and int constants, and a body of
assignments, conditionals and calls to other boxes:

	// 1 bit full adder
	box FullAdder(in a, in b, in c, out sum, out carry) is
		bit s = a # b;
		sum = s # c;
		carry = a*b + s*c;
	end

	box Add4[4](in a[4], in b[4], out carry) is
		bit c[3];
		FullAdder(a[0], b[0], false, Add4[0], c[0]);
		FullAdder(a[1], b[1], c[0], Add4[1], c[1]);
		FullAdder(a[2], b[2], c[1], Add4[2], c[2]);
		FullAdder(a[3], b[3], c[2], Add4[3], carry);
	end

The operators are ! (not), * (and), + (or), # (xor), == and != for bit
arrays, ?: (select) and the int operators + - * / % in constant expressions.
Bit ranges are written a[lo:hi] or a[lo..hi]; dup(v, n) repeats a value and
set(n, v) builds a constant bit array.

Compile lexes, parses and generates code for every box. Diagnostics are
attached to source tokens and never stop compilation. A box without errors
can be linked (every callee inlined) and turned into a Circuit, optionally
optimized, which is either settled synchronously or run by a background
goroutine at a bounded gate rate.

*/
package boxsim
