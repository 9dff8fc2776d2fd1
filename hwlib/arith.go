// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

// Adders.
//
//	HalfAdder(in a, in b, out s, out c)                s = lsb(a + b), c = msb(a + b)
//	FullAdder(in a, in b, in cin, out s, out cout)     s = lsb(a + b + cin), cout = msb(a + b + cin)
//	Add4[4](in a[4], in b[4], out carry)               a + b
//	Inc4[4](in a[4])                                   a + 1
//
const arith = `
// adders
box HalfAdder(in a, in b, out s, out c) is
	s = Xor(a, b);
	c = And(a, b);
end

box FullAdder(in a, in b, in cin, out s, out cout) is
	bit s0;
	bit c0;
	bit c1;
	HalfAdder(a, b, s0, c0);
	HalfAdder(s0, cin, s, c1);
	cout = Or(c0, c1);
end

box Add4[4](in a[4], in b[4], out carry) is
	bit c[3];
	FullAdder(a[0], b[0], false, Add4[0], c[0]);
	FullAdder(a[1], b[1], c[0], Add4[1], c[1]);
	FullAdder(a[2], b[2], c[1], Add4[2], c[2]);
	FullAdder(a[3], b[3], c[2], Add4[3], carry);
end

box Inc4[4](in a[4]) is
	Inc4 = Add4(a, set(false, false, false, true), unused);
end
`
