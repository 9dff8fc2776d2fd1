package hwlib

// Multiplexers.
//
//	Mux[1](in a, in b, in sel)             sel ? b : a
//	Mux4[4](in a[4], in b[4], in sel)      4 bits Mux
//	DMux(in x, in sel, out a, out b)       a = sel ? 0 : x, b = sel ? x : 0
//	Mux4Way[1](in x[4], in sel[2])         x[sel]
//
const mux = `
// multiplexers
box Mux[1](in a, in b, in sel) is
	Mux = Or(And(a, Not(sel)), And(b, sel));
end

box Mux4[4](in a[4], in b[4], in sel) is
	Mux4[0] = Mux(a[0], b[0], sel);
	Mux4[1] = Mux(a[1], b[1], sel);
	Mux4[2] = Mux(a[2], b[2], sel);
	Mux4[3] = Mux(a[3], b[3], sel);
end

box DMux(in x, in sel, out a, out b) is
	a = And(x, Not(sel));
	b = And(x, sel);
end

box Mux4Way[1](in x[4], in sel[2]) is
	Mux4Way = Mux(Mux(x[0], x[1], sel[0]), Mux(x[2], x[3], sel[0]), sel[1]);
end
`
