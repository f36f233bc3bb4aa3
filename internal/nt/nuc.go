// Package nt implements the tagged nucleotide alphabet shared by the HMM
// decoder: case/insertion-tagged bases, codon indexing and reverse
// complement.
package nt

// Nuc is one of the eleven tagged nucleotide variants from the reference
// model: the four standard bases, N, their insertion-tagged (lower-case on
// render) counterparts, and a padding marker used to fill frame-skipping
// deletions.
type Nuc uint8

const (
	A Nuc = iota
	C
	G
	T
	N
	Ai // A', insertion-tagged A
	Ci
	Gi
	Ti
	Ni
	Xi // X', padding placeholder; renders as N
)

// FromByte maps a raw sequence byte to its Nuc value. Bytes outside
// ACGTacgt map to N (or Ni when lower-case), matching the reference's
// treatment of ambiguity codes as unknown.
func FromByte(b byte) Nuc {
	switch b {
	case 'A':
		return A
	case 'C':
		return C
	case 'G':
		return G
	case 'T':
		return T
	case 'a':
		return Ai
	case 'c':
		return Ci
	case 'g':
		return Gi
	case 't':
		return Ti
	case 'n':
		return Ni
	default:
		return N
	}
}

// Byte renders n back to its ASCII representation: upper-case for plain
// bases, lower-case for insertion-tagged ones, and "N" for the padding
// marker.
func (n Nuc) Byte() byte {
	switch n {
	case A:
		return 'A'
	case C:
		return 'C'
	case G:
		return 'G'
	case T:
		return 'T'
	case N:
		return 'N'
	case Ai:
		return 'a'
	case Ci:
		return 'c'
	case Gi:
		return 'g'
	case Ti:
		return 't'
	case Ni:
		return 'n'
	case Xi:
		return 'N'
	default:
		return 'N'
	}
}

// IsInsertion reports whether n is one of the primed (insertion-tagged or
// padding) variants.
func (n Nuc) IsInsertion() bool {
	return n >= Ai
}

// Lower returns the insertion-tagged form of a plain base, used when the
// gene builder appends a base emitted by an I-state. Already-tagged values
// and Xi are returned unchanged.
func (n Nuc) Lower() Nuc {
	switch n {
	case A:
		return Ai
	case C:
		return Ci
	case G:
		return Gi
	case T:
		return Ti
	case N:
		return Ni
	default:
		return n
	}
}

// Index returns the 0..3 transition-table index for n, and false when n has
// no upper form (N, N' or X'), in which case the reference's documented
// fallback index (2) should be used by the caller.
func (n Nuc) Index() (int, bool) {
	switch n {
	case A, Ai:
		return 0, true
	case C, Ci:
		return 1, true
	case G, Gi:
		return 2, true
	case T, Ti:
		return 3, true
	default:
		return 2, false
	}
}

// Complement returns the pointwise (single-base) complement of n, keeping
// its insertion tag.
func (n Nuc) Complement() Nuc {
	switch n {
	case A:
		return T
	case C:
		return G
	case G:
		return C
	case T:
		return A
	case Ai:
		return Ti
	case Ci:
		return Gi
	case Gi:
		return Ci
	case Ti:
		return Ai
	default:
		return n
	}
}

// ReverseComplement reverses seq and complements every base pointwise.
func ReverseComplement(seq []Nuc) []Nuc {
	out := make([]Nuc, len(seq))
	for i, n := range seq {
		out[len(seq)-1-i] = n.Complement()
	}
	return out
}

// CGBucket computes the CG-content bucket in [0, 43] used to select one of
// the 44 parallel parameter slices: clamp(floor(100*gc/len), 26, 69) - 26,
// where gc counts upper-case C and G only.
func CGBucket(seq []Nuc) int {
	gc := 0
	for _, n := range seq {
		if n == C || n == G {
			gc++
		}
	}
	pct := gc * 100 / len(seq)
	if pct < 26 {
		pct = 26
	}
	if pct > 69 {
		pct = 69
	}
	return pct - 26
}
