package hmm

// NumCGBuckets is the number of parallel parameter slices selected by
// nt.CGBucket.
const NumCGBuckets = 44

// Transitions holds the scalar (CG-bucket-independent) transition costs,
// already stored as negative-free natural-log values (the decoder
// subtracts them, matching the reference's sign convention).
type Transitions struct {
	MM, MI, MD, II, IM, DD, DM, GE, GG, ER, RS, RR, ES, ES1 float64
}

// LocalParams holds the part of the parameter store that varies by CG
// bucket: match/non-coding emissions and the start/stop codon-usage
// profiles with their Gaussian-mixture rescaling vectors.
type LocalParams struct {
	// EM is the forward match emission table, indexed [codon
	// position][previous dinucleotide][current base].
	EM [6][16][4]float64
	// EM1 is the reverse-strand counterpart of EM.
	EM1 [6][16][4]float64

	// TrRR is the non-coding dinucleotide transition table.
	TrRR [4][4]float64

	// TrS, TrE, TrS1, TrE1 are the ±30/±60-base start/stop codon-usage
	// profiles, indexed [offset in window][codon index 0..63].
	TrS  [61][64]float64
	TrE  [61][64]float64
	TrS1 [61][64]float64
	TrE1 [61][64]float64

	// DistS, DistE, DistS1, DistE1 are the six-parameter Gaussian-mixture
	// weights used to rescale the corresponding start/stop transition.
	// These are NOT log-transformed on load.
	DistS  [6]float64
	DistE  [6]float64
	DistS1 [6]float64
	DistE1 [6]float64
}

// Store is the immutable, read-only-after-construction parameter set
// shared by every decoder worker.
type Store struct {
	Pi   [NumStates]float64
	Tr   Transitions
	TrMI [4][4]float64
	TrII [4][4]float64

	Local [NumCGBuckets]LocalParams
}
