package nt

// CodonCode and AntiCodonCode translate a 64-slot (plus one "unknown")
// codon index into the standard genetic code, forward and reverse-strand
// respectively. Index 64 is the fallback for codons containing a base
// outside A/C/G/T and always resolves to 'X'.
var CodonCode = [65]byte{
	'K', 'N', 'K', 'N', 'T', 'T', 'T', 'T', 'R', 'S', 'R', 'S', 'I', 'I', 'M', 'I',
	'Q', 'H', 'Q', 'H', 'P', 'P', 'P', 'P', 'R', 'R', 'R', 'R', 'L', 'L', 'L', 'L',
	'E', 'D', 'E', 'D', 'A', 'A', 'A', 'A', 'G', 'G', 'G', 'G', 'V', 'V', 'V', 'V',
	'*', 'Y', '*', 'Y', 'S', 'S', 'S', 'S', '*', 'C', 'W', 'C', 'L', 'F', 'L', 'F',
	'X',
}

var AntiCodonCode = [65]byte{
	'F', 'V', 'L', 'I', 'C', 'G', 'R', 'S', 'S', 'A', 'P', 'T', 'Y', 'D', 'H', 'N',
	'L', 'V', 'L', 'M', 'W', 'G', 'R', 'R', 'S', 'A', 'P', 'T', '*', 'E', 'Q', 'K',
	'F', 'V', 'L', 'I', 'C', 'G', 'R', 'S', 'S', 'A', 'P', 'T', 'Y', 'D', 'H', 'N',
	'L', 'V', 'L', 'I', '*', 'G', 'R', 'R', 'S', 'A', 'P', 'T', '*', 'E', 'Q', 'K',
	'X',
}

// Trinucleotide returns the 16*a+4*b+c codon index for a, b, c when all
// three map to 0..3, and false otherwise.
func Trinucleotide(a, b, c Nuc) (int, bool) {
	ai, aok := a.Index()
	bi, bok := b.Index()
	ci, cok := c.Index()
	if !aok || !bok || !cok {
		return 0, false
	}
	return 16*ai + 4*bi + ci, true
}

// TrinucleotidePep is Trinucleotide but returns the dedicated "undefined"
// slot (64) instead of an ok flag, for direct use as a CodonCode/
// AntiCodonCode index.
func TrinucleotidePep(a, b, c Nuc) int {
	idx, ok := Trinucleotide(a, b, c)
	if !ok {
		return 64
	}
	return idx
}

// Translate renders codons (triples of non-insertion Nuc values) through
// the forward genetic code, substituting 'X' for any codon containing an
// ambiguous base.
func Translate(codons []Nuc) []byte {
	out := make([]byte, 0, len(codons)/3)
	for i := 0; i+3 <= len(codons); i += 3 {
		out = append(out, CodonCode[TrinucleotidePep(codons[i], codons[i+1], codons[i+2])])
	}
	return out
}

// TranslateReverse translates codons taken in chunks of three counting back
// from the end of the slice (each chunk itself in forward order), through
// the anti-sense genetic code. This mirrors the reference's rchunks_exact
// iteration: the anti-sense table already encodes what the complementary
// strand's codon means, so no base complementing happens here.
func TranslateReverse(codons []Nuc) []byte {
	out := make([]byte, 0, len(codons)/3)
	for i := len(codons); i-3 >= 0; i -= 3 {
		out = append(out, AntiCodonCode[TrinucleotidePep(codons[i-3], codons[i-2], codons[i-1])])
	}
	return out
}
