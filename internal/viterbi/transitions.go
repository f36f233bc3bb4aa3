package viterbi

import (
	"math"

	"github.com/unipept/FragGeneScanRs/internal/hmm"
	"github.com/unipept/FragGeneScanRs/internal/nt"
)

// trinucleotideAt computes the 0..63 codon index for seq[i], seq[i+1],
// seq[i+2], falling back to the documented "undefined maps to 0" bias when
// the window runs off the sequence or contains an ambiguous base.
func trinucleotideAt(seq []nt.Nuc, i int) int {
	if i < 0 || i+2 >= len(seq) {
		return 0
	}
	idx, ok := nt.Trinucleotide(seq[i], seq[i+1], seq[i+2])
	if !ok {
		return 0
	}
	return idx
}

func (d *decoder) fromMToM(t int, fromM, toM hmm.State, emission, lastM float64) {
	d.alpha[t][toM] = d.alpha[t-1][fromM] - lastM - d.store.Tr.MM - emission
	d.path[t][toM] = fromM
}

func (d *decoder) fromDToM(t int, fromM, toM hmm.State, numD, emission float64) {
	if numD <= 0 {
		return
	}
	tr := d.store.Tr
	cand := d.alpha[t-1][fromM] - tr.MD - emission - math.Log(0.25)*(numD-1) - tr.DD*(numD-2) - tr.DM
	if cand < d.alpha[t][toM] {
		d.alpha[t][toM] = cand
		d.path[t][toM] = fromM
	}
}

func (d *decoder) fromSToM(t, from2, to int) {
	cand := d.alpha[t-1][hmm.S] - d.local.EM[0][from2][to]
	if cand < d.alpha[t][hmm.M1] {
		d.alpha[t][hmm.M1] = cand
		d.path[t][hmm.M1] = hmm.S
	}
}

func (d *decoder) fromSToM1(t int, toM hmm.State, emission float64) {
	d.alpha[t][toM] = d.alpha[t-1][hmm.Sr] - emission
	d.path[t][toM] = hmm.Sr
}

// fromIToM guards against closing a codon that would spell a stop codon,
// exactly as the reference's from_i_to_m.
func (d *decoder) fromIToM(t int, tempIPos int, fromI, toM hmm.State) {
	seq := d.seq
	if t < 2 {
		return
	}
	if (toM == hmm.M2 || toM == hmm.M5) && t+1 < len(seq) &&
		seq[tempIPos] == nt.T &&
		((seq[t] == nt.A && seq[t+1] == nt.A) ||
			(seq[t] == nt.A && seq[t+1] == nt.G) ||
			(seq[t] == nt.G && seq[t+1] == nt.A)) {
		return
	}
	if (toM == hmm.M3 || toM == hmm.M6) && tempIPos > 0 &&
		seq[tempIPos-1] == nt.T &&
		((seq[tempIPos] == nt.A && seq[t] == nt.A) ||
			(seq[tempIPos] == nt.A && seq[t] == nt.G) ||
			(seq[tempIPos] == nt.G && seq[t] == nt.A)) {
		return
	}
	cand := d.alpha[t-1][fromI] - d.store.Tr.IM - math.Log(0.25)
	if cand < d.alpha[t][toM] {
		d.alpha[t][toM] = cand
		d.path[t][toM] = fromI
	}
}

func (d *decoder) fromIToI(t, from, to int, i hmm.State) {
	d.alpha[t][i] = d.alpha[t-1][i] - d.store.Tr.II - d.store.TrII[from][to]
	d.path[t][i] = i
}

func (d *decoder) fromMToI(t, from, to int, fromM, toI hmm.State, lastI float64, tempI *int) {
	cand := d.alpha[t-1][fromM] - d.store.Tr.MI - d.store.TrMI[from][to] - lastI
	if cand < d.alpha[t][toI] {
		d.alpha[t][toI] = cand
		d.path[t][toI] = fromM
		*tempI = t - 1
	}
}

// fromI1ToM1 is the reverse-strand counterpart of fromIToM.
func (d *decoder) fromI1ToM1(t int, tempI1Pos int, fromI, toM hmm.State) {
	seq := d.seq
	if t < 2 {
		return
	}
	if (toM == hmm.M2r || toM == hmm.M5r) && t+1 < len(seq) &&
		seq[t+1] == nt.A &&
		((seq[t] == nt.T && seq[tempI1Pos] == nt.T) ||
			(seq[t] == nt.T && seq[tempI1Pos] == nt.C) ||
			(seq[t] == nt.A && seq[tempI1Pos] == nt.T)) {
		return
	}
	if (toM == hmm.M3r || toM == hmm.M6r) && seq[t] == nt.A && tempI1Pos > 1 &&
		((seq[tempI1Pos] == nt.T && seq[tempI1Pos-1] == nt.T) ||
			(seq[tempI1Pos] == nt.T && seq[tempI1Pos-1] == nt.C) ||
			(seq[tempI1Pos] == nt.C && seq[tempI1Pos-1] == nt.T)) {
		return
	}
	cand := d.alpha[t-1][fromI] - d.store.Tr.IM - math.Log(0.25)
	if cand < d.alpha[t][toM] {
		d.alpha[t][toM] = cand
		d.path[t][toM] = fromI
	}
}

func (d *decoder) fromRToR(t, from, to int) {
	d.alpha[t][hmm.R] = d.alpha[t-1][hmm.R] - d.local.TrRR[from][to] - d.store.Tr.RR - math.Log(0.95)
	d.path[t][hmm.R] = hmm.R
}

func (d *decoder) fromEToR(t int, fromE hmm.State) {
	cand := d.alpha[t-1][fromE] - d.store.Tr.ER - math.Log(0.95)
	if cand < d.alpha[t][hmm.R] {
		d.alpha[t][hmm.R] = cand
		d.path[t][hmm.R] = fromE
	}
}

// modifyBorderDist rescales cell by the Gaussian-mixture ratio computed
// from values (a dist_* six-vector) and the accumulated start_freq,
// clamping the ratio to [0.01, 0.99] before taking its log, exactly as the
// reference does.
func modifyBorderDist(cell *float64, values [6]float64, startFreq float64) {
	hKD := values[2] * math.Exp(-1.0*math.Pow(startFreq-values[1], 2)/math.Pow(values[0], 2)/2.0)
	rKD := values[5] * math.Exp(-1.0*math.Pow(startFreq-values[4], 2)/math.Pow(values[3], 2)/2.0)
	ratio := hKD / (hKD + rKD)
	if ratio < 0.01 {
		ratio = 0.01
	}
	if ratio > 0.99 {
		ratio = 0.99
	}
	*cell -= math.Log(ratio)
}
