package viterbi

import (
	"math"

	"github.com/unipept/FragGeneScanRs/internal/hmm"
	"github.com/unipept/FragGeneScanRs/internal/nt"
)

// step advances the recurrence from t-1 to t, filling in alpha[t] and
// path[t] for every state. It mirrors the reference's single pass over a
// position: M/I forward states, M'/I' reverse states, the non-coding R
// state, and the four long-range start/stop transitions that can reach
// forward to pin alpha[t+2].
func (d *decoder) step(t int) {
	seq := d.seq
	store := d.store
	local := d.local

	from, ok := seq[t-1].Index()
	if !ok {
		from = 2
	}
	from0 := 2
	if t > 1 {
		if idx, ok := seq[t-2].Index(); ok {
			from0 = idx
		}
	}
	to, ok := seq[t].Index()
	if !ok {
		d.numNoncoding++
		to = 2
	}
	from2 := from0*4 + from

	// forward M states
	if !math.IsInf(d.alpha[t][hmm.M1], 1) {
		d.fromMToM(t, hmm.M6, hmm.M1, local.EM[0][from2][to], store.Tr.GG)
		if !d.wholeGenome {
			d.fromDToM(t, hmm.M5, hmm.M1, 2.0, local.EM[0][from2][to])
			d.fromDToM(t, hmm.M4, hmm.M1, 3.0, local.EM[0][from2][to])
			d.fromDToM(t, hmm.M3, hmm.M1, 4.0, local.EM[0][from2][to])
			d.fromDToM(t, hmm.M2, hmm.M1, 5.0, local.EM[0][from2][to])
			d.fromDToM(t, hmm.M1, hmm.M1, 6.0, local.EM[0][from2][to])
		}
		d.fromSToM(t, from2, to)
		d.fromIToM(t, d.tempI[5], hmm.I6, hmm.M1)
	}
	if !math.IsInf(d.alpha[t][hmm.M2], 1) {
		d.fromMToM(t, hmm.M1, hmm.M2, local.EM[1][from2][to], 0.0)
		if !d.wholeGenome {
			d.fromDToM(t, hmm.M6, hmm.M2, 2.0, local.EM[1][from2][to])
			d.fromDToM(t, hmm.M5, hmm.M2, 3.0, local.EM[1][from2][to])
			d.fromDToM(t, hmm.M4, hmm.M2, 4.0, local.EM[1][from2][to])
			d.fromDToM(t, hmm.M3, hmm.M2, 5.0, local.EM[1][from2][to])
			d.fromDToM(t, hmm.M2, hmm.M2, 6.0, local.EM[1][from2][to])
		}
		d.fromIToM(t, d.tempI[0], hmm.I1, hmm.M2)
	}
	if !math.IsInf(d.alpha[t][hmm.M3], 1) {
		d.fromMToM(t, hmm.M2, hmm.M3, local.EM[2][from2][to], 0.0)
		if !d.wholeGenome {
			d.fromDToM(t, hmm.M6, hmm.M3, 3.0, local.EM[2][from2][to])
			d.fromDToM(t, hmm.M5, hmm.M3, 4.0, local.EM[2][from2][to])
			d.fromDToM(t, hmm.M4, hmm.M3, 5.0, local.EM[2][from2][to])
			d.fromDToM(t, hmm.M3, hmm.M3, 6.0, local.EM[2][from2][to])
			d.fromDToM(t, hmm.M1, hmm.M3, 2.0, local.EM[2][from2][to])
		}
		d.fromIToM(t, d.tempI[1], hmm.I2, hmm.M3)
	}
	if !math.IsInf(d.alpha[t][hmm.M4], 1) {
		d.fromMToM(t, hmm.M3, hmm.M4, local.EM[3][from2][to], 0.0)
		if !d.wholeGenome {
			d.fromDToM(t, hmm.M6, hmm.M4, 4.0, local.EM[3][from2][to])
			d.fromDToM(t, hmm.M5, hmm.M4, 5.0, local.EM[3][from2][to])
			d.fromDToM(t, hmm.M4, hmm.M4, 6.0, local.EM[3][from2][to])
			d.fromDToM(t, hmm.M2, hmm.M4, 2.0, local.EM[3][from2][to])
			d.fromDToM(t, hmm.M1, hmm.M4, 3.0, local.EM[3][from2][to])
		}
		d.fromIToM(t, d.tempI[2], hmm.I3, hmm.M4)
	}
	if !math.IsInf(d.alpha[t][hmm.M5], 1) {
		d.fromMToM(t, hmm.M4, hmm.M5, local.EM[4][from2][to], 0.0)
		if !d.wholeGenome {
			d.fromDToM(t, hmm.M6, hmm.M5, 5.0, local.EM[4][from2][to])
			d.fromDToM(t, hmm.M5, hmm.M5, 6.0, local.EM[4][from2][to])
			d.fromDToM(t, hmm.M3, hmm.M5, 2.0, local.EM[4][from2][to])
			d.fromDToM(t, hmm.M2, hmm.M5, 3.0, local.EM[4][from2][to])
			d.fromDToM(t, hmm.M1, hmm.M5, 4.0, local.EM[4][from2][to])
		}
		d.fromIToM(t, d.tempI[3], hmm.I4, hmm.M5)
	}
	if !math.IsInf(d.alpha[t][hmm.M6], 1) {
		d.fromMToM(t, hmm.M5, hmm.M6, local.EM[5][from2][to], 0.0)
		if !d.wholeGenome {
			d.fromDToM(t, hmm.M6, hmm.M6, 6.0, local.EM[5][from2][to])
			d.fromDToM(t, hmm.M4, hmm.M6, 2.0, local.EM[5][from2][to])
			d.fromDToM(t, hmm.M3, hmm.M6, 3.0, local.EM[5][from2][to])
			d.fromDToM(t, hmm.M2, hmm.M6, 4.0, local.EM[5][from2][to])
			d.fromDToM(t, hmm.M1, hmm.M6, 5.0, local.EM[5][from2][to])
		}
		d.fromIToM(t, d.tempI[4], hmm.I5, hmm.M6)
	}

	// forward I states
	d.fromIToI(t, from, to, hmm.I1)
	d.fromIToI(t, from, to, hmm.I2)
	d.fromIToI(t, from, to, hmm.I3)
	d.fromIToI(t, from, to, hmm.I4)
	d.fromIToI(t, from, to, hmm.I5)
	d.fromIToI(t, from, to, hmm.I6)
	d.fromMToI(t, from, to, hmm.M1, hmm.I1, 0.0, &d.tempI[0])
	d.fromMToI(t, from, to, hmm.M2, hmm.I2, 0.0, &d.tempI[1])
	d.fromMToI(t, from, to, hmm.M3, hmm.I3, 0.0, &d.tempI[2])
	d.fromMToI(t, from, to, hmm.M4, hmm.I4, 0.0, &d.tempI[3])
	d.fromMToI(t, from, to, hmm.M5, hmm.I5, 0.0, &d.tempI[4])
	d.fromMToI(t, from, to, hmm.M6, hmm.I6, store.Tr.GG, &d.tempI[5])

	reverseStopPattern := t >= 3 && seq[t-1] == nt.A &&
		((seq[t-2] == nt.T && seq[t-3] == nt.T) ||
			(seq[t-2] == nt.T && seq[t-3] == nt.C) ||
			(seq[t-2] == nt.C && seq[t-3] == nt.T))

	// reverse M' states
	if reverseStopPattern {
		d.fromSToM1(t, hmm.M1r, local.EM1[0][from2][to])
	} else {
		d.fromMToM(t, hmm.M6r, hmm.M1r, local.EM1[0][from2][to], store.Tr.GG)
		if !d.wholeGenome {
			d.fromDToM(t, hmm.M5r, hmm.M1r, 2.0, local.EM1[0][from2][to])
			d.fromDToM(t, hmm.M4r, hmm.M1r, 3.0, local.EM1[0][from2][to])
			d.fromDToM(t, hmm.M3r, hmm.M1r, 4.0, local.EM1[0][from2][to])
			d.fromDToM(t, hmm.M2r, hmm.M1r, 5.0, local.EM1[0][from2][to])
			d.fromDToM(t, hmm.M1r, hmm.M1r, 6.0, local.EM1[0][from2][to])
		}
		d.fromI1ToM1(t, d.tempI1[5], hmm.I6r, hmm.M1r)
	}

	d.fromMToM(t, hmm.M1r, hmm.M2r, local.EM1[1][from2][to], 0.0)
	if !d.wholeGenome {
		d.fromDToM(t, hmm.M6r, hmm.M2r, 2.0, local.EM1[1][from2][to])
		d.fromDToM(t, hmm.M5r, hmm.M2r, 3.0, local.EM1[1][from2][to])
		d.fromDToM(t, hmm.M4r, hmm.M2r, 4.0, local.EM1[1][from2][to])
		d.fromDToM(t, hmm.M3r, hmm.M2r, 5.0, local.EM1[1][from2][to])
		d.fromDToM(t, hmm.M2r, hmm.M2r, 6.0, local.EM1[1][from2][to])
	}
	d.fromI1ToM1(t, d.tempI1[0], hmm.I1r, hmm.M2r)

	d.fromMToM(t, hmm.M2r, hmm.M3r, local.EM1[2][from2][to], 0.0)
	if !d.wholeGenome {
		d.fromDToM(t, hmm.M6r, hmm.M3r, 3.0, local.EM1[2][from2][to])
		d.fromDToM(t, hmm.M5r, hmm.M3r, 4.0, local.EM1[2][from2][to])
		d.fromDToM(t, hmm.M4r, hmm.M3r, 5.0, local.EM1[2][from2][to])
		d.fromDToM(t, hmm.M3r, hmm.M3r, 6.0, local.EM1[2][from2][to])
		d.fromDToM(t, hmm.M1r, hmm.M3r, 2.0, local.EM1[2][from2][to])
	}
	d.fromI1ToM1(t, d.tempI1[1], hmm.I2r, hmm.M3r)

	if reverseStopPattern {
		d.fromSToM1(t, hmm.M4r, local.EM1[3][from2][to])
	} else {
		d.fromMToM(t, hmm.M3r, hmm.M4r, local.EM1[3][from2][to], 0.0)
		if !d.wholeGenome {
			d.fromDToM(t, hmm.M6r, hmm.M4r, 4.0, local.EM1[3][from2][to])
			d.fromDToM(t, hmm.M5r, hmm.M4r, 5.0, local.EM1[3][from2][to])
			d.fromDToM(t, hmm.M4r, hmm.M4r, 6.0, local.EM1[3][from2][to])
			d.fromDToM(t, hmm.M2r, hmm.M4r, 2.0, local.EM1[3][from2][to])
			d.fromDToM(t, hmm.M1r, hmm.M4r, 3.0, local.EM1[3][from2][to])
		}
		d.fromI1ToM1(t, d.tempI1[2], hmm.I3r, hmm.M4r)
	}

	d.fromMToM(t, hmm.M4r, hmm.M5r, local.EM1[4][from2][to], 0.0)
	if !d.wholeGenome {
		d.fromDToM(t, hmm.M6r, hmm.M5r, 5.0, local.EM1[4][from2][to])
		d.fromDToM(t, hmm.M5r, hmm.M5r, 6.0, local.EM1[4][from2][to])
		d.fromDToM(t, hmm.M3r, hmm.M5r, 2.0, local.EM1[4][from2][to])
		d.fromDToM(t, hmm.M2r, hmm.M5r, 3.0, local.EM1[4][from2][to])
		d.fromDToM(t, hmm.M1r, hmm.M5r, 4.0, local.EM1[4][from2][to])
	}
	d.fromI1ToM1(t, d.tempI1[3], hmm.I4r, hmm.M5r)

	d.fromMToM(t, hmm.M5r, hmm.M6r, local.EM1[5][from2][to], 0.0)
	if !d.wholeGenome {
		d.fromDToM(t, hmm.M6r, hmm.M6r, 6.0, local.EM1[5][from2][to])
		d.fromDToM(t, hmm.M4r, hmm.M6r, 2.0, local.EM1[5][from2][to])
		d.fromDToM(t, hmm.M3r, hmm.M6r, 3.0, local.EM1[5][from2][to])
		d.fromDToM(t, hmm.M2r, hmm.M6r, 4.0, local.EM1[5][from2][to])
		d.fromDToM(t, hmm.M1r, hmm.M6r, 5.0, local.EM1[5][from2][to])
	}
	d.fromI1ToM1(t, d.tempI1[4], hmm.I5r, hmm.M6r)

	// reverse I' states
	d.fromIToI(t, from, to, hmm.I1r)
	d.fromIToI(t, from, to, hmm.I2r)
	d.fromIToI(t, from, to, hmm.I3r)
	d.fromIToI(t, from, to, hmm.I4r)
	d.fromIToI(t, from, to, hmm.I5r)
	d.fromIToI(t, from, to, hmm.I6r)

	if (t >= 3 && d.path[t-3][hmm.Sr] != hmm.R) &&
		(t >= 4 && d.path[t-4][hmm.Sr] != hmm.R) &&
		(t >= 5 && d.path[t-5][hmm.Sr] != hmm.R) {
		d.fromMToI(t, from, to, hmm.M1r, hmm.I1r, 0.0, &d.tempI1[0])
		d.fromMToI(t, from, to, hmm.M2r, hmm.I2r, 0.0, &d.tempI1[1])
		d.fromMToI(t, from, to, hmm.M3r, hmm.I3r, 0.0, &d.tempI1[2])
		d.fromMToI(t, from, to, hmm.M4r, hmm.I4r, 0.0, &d.tempI1[3])
		d.fromMToI(t, from, to, hmm.M5r, hmm.I5r, 0.0, &d.tempI1[4])
		d.fromMToI(t, from, to, hmm.M6r, hmm.I6r, store.Tr.GG, &d.tempI1[5])
	}

	// non-coding state
	d.fromRToR(t, from, to)
	d.fromEToR(t, hmm.E)
	d.fromEToR(t, hmm.Er)

	d.longEndTransition(t)
	d.longReverseStartTransition(t)
	d.longStartTransition(t)
	d.longReverseEndTransition(t)

	if d.numNoncoding > 9 {
		for s := hmm.State(0); s < hmm.NumStates; s++ {
			if s != hmm.R {
				d.alpha[t][s] = math.Inf(1)
				d.path[t][s] = hmm.R
			}
		}
	}
}

// longEndTransition pins the forward E state two bases ahead when a stop
// codon starts at t, reached from either frame group (M3 or M6).
func (d *decoder) longEndTransition(t int) {
	seq := d.seq
	if d.alpha[t][hmm.E] != 0.0 {
		return
	}
	d.alpha[t][hmm.E] = math.Inf(1)
	d.path[t][hmm.E] = hmm.NoState

	if t >= len(seq)-2 {
		return
	}
	if seq[t] != nt.T {
		return
	}
	var p float64
	switch {
	case seq[t+1] == nt.A && seq[t+2] == nt.A:
		p = 0.54
	case seq[t+1] == nt.A && seq[t+2] == nt.G:
		p = 0.16
	case seq[t+1] == nt.G && seq[t+2] == nt.A:
		p = 0.30
	default:
		return
	}

	d.alpha[t+2][hmm.E] = math.Inf(1)

	if cand := d.alpha[t-1][hmm.M6] - d.store.Tr.GE; cand < d.alpha[t+2][hmm.E] {
		d.alpha[t+2][hmm.E] = cand
		d.path[t][hmm.E] = hmm.M6
	}
	if cand := d.alpha[t-1][hmm.M3] - d.store.Tr.GE; cand < d.alpha[t+2][hmm.E] {
		d.alpha[t+2][hmm.E] = cand
		d.path[t][hmm.E] = hmm.M3
	}

	d.alpha[t][hmm.E] = math.Inf(1)
	d.alpha[t+1][hmm.E] = math.Inf(1)
	d.path[t+1][hmm.E] = hmm.E
	d.path[t+2][hmm.E] = hmm.E

	d.alpha[t+2][hmm.M6] = math.Inf(1)
	d.alpha[t+1][hmm.M5] = math.Inf(1)
	d.alpha[t][hmm.M4] = math.Inf(1)
	d.alpha[t+2][hmm.M3] = math.Inf(1)
	d.alpha[t+1][hmm.M2] = math.Inf(1)
	d.alpha[t][hmm.M1] = math.Inf(1)

	d.alpha[t+2][hmm.E] -= math.Log(p)

	startFreq := 0.0
	lo := maxInt(t, 60) - 60
	hi := maxInt(t, 3) - 3
	for i := lo; i <= hi; i++ {
		startFreq -= d.local.TrE[i+60-t][trinucleotideAt(seq, i)]
	}
	if t < 60 {
		startFreq *= 58.0 / float64(saturatingSub(t, 2))
	}
	modifyBorderDist(&d.alpha[t+2][hmm.E], d.local.DistE, startFreq)
}

// longReverseStartTransition pins the Sr state, which marks the reverse
// strand's stop codon position (hence "reverse start").
func (d *decoder) longReverseStartTransition(t int) {
	seq := d.seq
	if d.alpha[t][hmm.Sr] != 0.0 {
		return
	}
	d.alpha[t][hmm.Sr] = math.Inf(1)
	d.path[t][hmm.Sr] = hmm.NoState

	if t >= len(seq)-2 {
		return
	}
	if seq[t+2] != nt.A {
		return
	}
	var p float64
	switch {
	case seq[t+1] == nt.T && seq[t] == nt.T:
		p = 0.54
	case seq[t+1] == nt.T && seq[t] == nt.C:
		p = 0.16
	case seq[t+1] == nt.C && seq[t] == nt.T:
		p = 0.30
	default:
		return
	}

	d.alpha[t][hmm.Sr] = math.Inf(1)
	d.alpha[t+1][hmm.Sr] = math.Inf(1)
	d.alpha[t+2][hmm.Sr] = d.alpha[t-1][hmm.R] - d.store.Tr.RS
	d.path[t][hmm.Sr] = hmm.R
	d.path[t+1][hmm.Sr] = hmm.Sr
	d.path[t+2][hmm.Sr] = hmm.Sr

	if cand := d.alpha[t-1][hmm.Er] - d.store.Tr.ES; cand < d.alpha[t+2][hmm.Sr] {
		d.alpha[t+2][hmm.Sr] = cand
		d.path[t][hmm.Sr] = hmm.Er
	}
	if cand := d.alpha[t-1][hmm.E] - d.store.Tr.ES1; cand < d.alpha[t+2][hmm.Sr] {
		d.alpha[t+2][hmm.Sr] = cand
		d.path[t][hmm.Sr] = hmm.E
	}

	d.alpha[t+2][hmm.M3r] = math.Inf(1)
	d.alpha[t+2][hmm.M6r] = math.Inf(1)

	d.alpha[t+2][hmm.Sr] -= math.Log(p)

	startFreq := 0.0
	if t+5 < len(seq) {
		hi := t + 60
		if len(seq)-3 < hi {
			hi = len(seq) - 3
		}
		for i := t + 3; i <= hi; i++ {
			startFreq -= d.local.TrS1[i-3-t][trinucleotideAt(seq, i)]
		}
	}
	modifyBorderDist(&d.alpha[t+2][hmm.Sr], d.local.DistS1, startFreq)
}

func (d *decoder) longStartTransition(t int) {
	seq := d.seq
	if d.alpha[t][hmm.S] != 0.0 {
		return
	}
	d.alpha[t][hmm.S] = math.Inf(1)
	d.path[t][hmm.S] = hmm.NoState

	if t >= len(seq)-2 {
		return
	}
	if !(seq[t] == nt.A || seq[t] == nt.G || seq[t] == nt.T) || seq[t+1] != nt.A || seq[t+2] != nt.G {
		return
	}

	d.alpha[t][hmm.S] = math.Inf(1)
	d.alpha[t+1][hmm.S] = math.Inf(1)
	d.alpha[t+2][hmm.S] = d.alpha[t-1][hmm.R] - d.store.Tr.RS
	d.path[t][hmm.S] = hmm.R
	d.path[t+1][hmm.S] = hmm.S
	d.path[t+2][hmm.S] = hmm.S

	if cand := d.alpha[t-1][hmm.E] - d.store.Tr.ES; cand < d.alpha[t+2][hmm.S] {
		d.alpha[t+2][hmm.S] = cand
		d.path[t][hmm.S] = hmm.E
	}
	if cand := d.alpha[t-1][hmm.Er] - d.store.Tr.ES1; cand < d.alpha[t+2][hmm.S] {
		d.alpha[t+2][hmm.S] = cand
		d.path[t][hmm.S] = hmm.Er
	}

	switch seq[t] {
	case nt.A:
		d.alpha[t+2][hmm.S] -= math.Log(0.83)
	case nt.G:
		d.alpha[t+2][hmm.S] -= math.Log(0.10)
	default:
		d.alpha[t+2][hmm.S] -= math.Log(0.07)
	}

	startFreq := 0.0
	lo := maxInt(t, 30) - 30
	hi := t + 30
	if len(seq)-3 < hi {
		hi = len(seq) - 3
	}
	for i := lo; i <= hi; i++ {
		startFreq -= d.local.TrS[i+30-t][trinucleotideAt(seq, i)]
	}
	if t < 30 {
		startFreq *= 61.0 / float64(t+30+1)
	}
	modifyBorderDist(&d.alpha[t+2][hmm.S], d.local.DistS, startFreq)
}

func (d *decoder) longReverseEndTransition(t int) {
	seq := d.seq
	if d.alpha[t][hmm.Er] != 0.0 {
		return
	}
	d.alpha[t][hmm.Er] = math.Inf(1)
	d.path[t][hmm.Er] = hmm.NoState

	if t >= len(seq)-2 {
		return
	}
	if seq[t] != nt.C || seq[t+1] != nt.A || !(seq[t+2] == nt.T || seq[t+2] == nt.C || seq[t+2] == nt.A) {
		return
	}

	d.alpha[t][hmm.Er] = math.Inf(1)
	d.alpha[t+1][hmm.Er] = math.Inf(1)
	d.alpha[t+2][hmm.Er] = d.alpha[t-1][hmm.M6r] - d.store.Tr.GE
	d.path[t][hmm.Er] = hmm.M6r
	d.path[t+1][hmm.Er] = hmm.Er
	d.path[t+2][hmm.Er] = hmm.Er

	switch seq[t+2] {
	case nt.T:
		d.alpha[t+2][hmm.Er] -= math.Log(0.83)
	case nt.C:
		d.alpha[t+2][hmm.Er] -= math.Log(0.10)
	default:
		d.alpha[t+2][hmm.Er] -= math.Log(0.07)
	}

	startFreq := 0.0
	lo := maxInt(t, 30) - 30
	hi := t + 30
	if len(seq)-3 < hi {
		hi = len(seq) - 3
	}
	for i := lo; i <= hi; i++ {
		startFreq -= d.local.TrE1[i+30-t][trinucleotideAt(seq, i)]
	}
	if t < 30 {
		startFreq *= 61.0 / float64(t+30+1)
	}
	modifyBorderDist(&d.alpha[t+2][hmm.Er], d.local.DistE1, startFreq)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}
