package hwlib

// Logic gates.
//
//	Nand[1](in a, in b)   !(a * b)
//	Not[1](in a)          !a
//	And[1](in a, in b)    a * b
//	Or[1](in a, in b)     a + b
//	Nor[1](in a, in b)    !(a + b)
//	Xor[1](in a, in b)    a # b
//	Xnor[1](in a, in b)   !(a # b)
//	And4[4](in a[4], in b[4])
//	Or4[4](in a[4], in b[4])
//	Not4[4](in a[4])
//
const gates = `// gates
box Nand[1](in a, in b) is
	Nand = !(a * b);
end

box Not[1](in a) is
	Not = Nand(a, a);
end

box And[1](in a, in b) is
	And = Not(Nand(a, b));
end

box Or[1](in a, in b) is
	Or = Nand(Not(a), Not(b));
end

box Nor[1](in a, in b) is
	Nor = Not(Or(a, b));
end

box Xor[1](in a, in b) is
	bit n = Nand(a, b);
	Xor = Nand(Nand(a, n), Nand(b, n));
end

box Xnor[1](in a, in b) is
	Xnor = Not(Xor(a, b));
end

box And4[4](in a[4], in b[4]) is
	And4[0] = And(a[0], b[0]);
	And4[1] = And(a[1], b[1]);
	And4[2] = And(a[2], b[2]);
	And4[3] = And(a[3], b[3]);
end

box Or4[4](in a[4], in b[4]) is
	Or4[0] = Or(a[0], b[0]);
	Or4[1] = Or(a[1], b[1]);
	Or4[2] = Or(a[2], b[2]);
	Or4[3] = Or(a[3], b[3]);
end

box Not4[4](in a[4]) is
	Not4[0] = Not(a[0]);
	Not4[1] = Not(a[1]);
	Not4[2] = Not(a[2]);
	Not4[3] = Not(a[3]);
end
`
