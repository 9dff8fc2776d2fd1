package hwlib

// Latches. SRLatch has active high inputs; both high is not allowed.
//
//	SRLatch(in s, in r, out q, out nq)
//	DLatch(in d, in e, out q)              q follows d while e is high
//
const latch = `
// latches
box SRLatch(in s, in r, out q, out nq) is
	q = Nand(!s, nq);
	nq = Nand(!r, q);
end

box DLatch(in d, in e, out q) is
	bit nq;
	SRLatch(And(d, e), And(!d, e), q, nq);
end
`
