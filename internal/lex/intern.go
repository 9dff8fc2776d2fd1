package lex

const (
	internWidth = 47
	internDepth = 5
)

// Interner is a small lossy string cache. It keeps the last few distinct
// strings of each hash bucket so that repeated lexemes share storage.
//
type Interner struct {
	buckets [internWidth][internDepth]string
}

func internHash(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h % internWidth
}

// Intern returns a string equal to s, possibly sharing storage with a previous
// call.
//
func (in *Interner) Intern(s string) string {
	if s == "" {
		return s
	}
	b := &in.buckets[internHash(s)]
	i := 0
	for ; i < internDepth-1; i++ {
		if b[i] == s {
			break
		}
	}
	if b[i] == s {
		s = b[i]
	}
	// move to front, dropping the last entry on a miss
	copy(b[1:i+1], b[:i])
	b[0] = s
	return s
}
