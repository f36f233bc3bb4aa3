// Package viterbi implements the forward (Viterbi) recurrence over the
// 29-state gene-finding HMM, the backtrace that recovers the best state
// path, and the ORF assembly that turns a state path into genes.
package viterbi

import (
	"math"

	"github.com/unipept/FragGeneScanRs/internal/gene"
	"github.com/unipept/FragGeneScanRs/internal/hmm"
	"github.com/unipept/FragGeneScanRs/internal/nt"
)

// Row is one time step's worth of alpha (accumulated negative-log score)
// values, one per HMM state.
type Row = [hmm.NumStates]float64

// PathRow is one time step's worth of backpointers, one per HMM state.
type PathRow = [hmm.NumStates]hmm.State

// Decode runs the full pipeline for a single sequence: forward scoring,
// backtrace, and ORF assembly. It allocates the alpha/path matrices fresh
// (O(L*29)) and frees them on return; callers decode one sequence at a
// time per worker (see internal/pipeline).
func Decode(store *hmm.Store, head []byte, seq []nt.Nuc, wholeGenome bool) *gene.ReadPrediction {
	if len(seq) == 0 {
		return gene.NewReadPrediction(head)
	}
	local := &store.Local[nt.CGBucket(seq)]
	alpha, path := forward(store, local, seq, wholeGenome)
	vpath := backtrack(alpha, path)
	return buildGenes(head, seq, wholeGenome, vpath, alpha)
}

type decoder struct {
	store        *hmm.Store
	local        *hmm.LocalParams
	seq          []nt.Nuc
	wholeGenome  bool
	alpha        []Row
	path         []PathRow
	tempI        [6]int
	tempI1       [6]int
	numNoncoding int
}

func forward(store *hmm.Store, local *hmm.LocalParams, seq []nt.Nuc, wholeGenome bool) ([]Row, []PathRow) {
	d := &decoder{store: store, local: local, seq: seq, wholeGenome: wholeGenome}
	d.alpha = make([]Row, len(seq))
	d.path = make([]PathRow, len(seq))
	for i := range d.path {
		for s := range d.path[i] {
			d.path[i][s] = hmm.NoState
		}
	}

	for s := 0; s < int(hmm.NumStates); s++ {
		d.alpha[0][s] = -store.Pi[s]
	}

	d.initForwardStopPin()
	d.initReverseStopPin()

	for t := 1; t < len(seq); t++ {
		d.step(t)
	}

	return d.alpha, d.path
}

// initForwardStopPin reproduces the reference's hard bias against a
// spurious forward-strand ORF opening at the very start of the read: if
// the first codon is a stop codon, the E state is pinned there and all
// forward match states are forbidden at t=0..2.
func (d *decoder) initForwardStopPin() {
	seq := d.seq
	if len(seq) < 3 {
		return
	}
	if seq[0] != nt.T {
		return
	}
	var p float64
	switch {
	case seq[1] == nt.A && seq[2] == nt.A:
		p = 0.53
	case seq[1] == nt.A && seq[2] == nt.G:
		p = 0.16
	case seq[1] == nt.G && seq[2] == nt.A:
		p = 0.30
	default:
		return
	}

	d.alpha[0][hmm.E] = math.Inf(1)
	d.alpha[1][hmm.E] = math.Inf(1)
	d.path[1][hmm.E] = hmm.E
	d.path[2][hmm.E] = hmm.E

	d.alpha[2][hmm.M6] = math.Inf(1)
	d.alpha[1][hmm.M5] = math.Inf(1)
	d.alpha[0][hmm.M4] = math.Inf(1)
	d.alpha[2][hmm.M3] = math.Inf(1)
	d.alpha[1][hmm.M2] = math.Inf(1)
	d.alpha[0][hmm.M1] = math.Inf(1)

	d.alpha[2][hmm.E] -= math.Log(p)
}

// initReverseStopPin is the symmetric initialization for a reverse-strand
// stop codon spanning the read's first three bases.
func (d *decoder) initReverseStopPin() {
	seq := d.seq
	if len(seq) < 3 {
		return
	}
	if seq[2] != nt.A {
		return
	}
	var p float64
	switch {
	case seq[1] == nt.T && seq[0] == nt.T:
		p = 0.53
	case seq[1] == nt.T && seq[0] == nt.C:
		p = 0.16
	case seq[1] == nt.C && seq[0] == nt.T:
		p = 0.30
	default:
		return
	}

	d.alpha[0][hmm.Sr] = math.Inf(1)
	d.alpha[1][hmm.Sr] = math.Inf(1)
	d.alpha[2][hmm.Sr] = d.alpha[0][hmm.S]
	d.path[1][hmm.Sr] = hmm.Sr
	d.path[2][hmm.Sr] = hmm.Sr

	d.alpha[2][hmm.M3r] = math.Inf(1)
	d.alpha[2][hmm.M6r] = math.Inf(1)

	// This overwrites (not adjusts) the alpha[0][S] copy assigned above,
	// matching the reference exactly.
	d.alpha[2][hmm.Sr] = math.Log(p)
}
