package viterbi

import (
	"math"

	"github.com/unipept/FragGeneScanRs/internal/gene"
	"github.com/unipept/FragGeneScanRs/internal/hmm"
	"github.com/unipept/FragGeneScanRs/internal/nt"
)

// buildGenes walks the chosen state path once, assembling each open
// reading frame's nucleotide sequence (tracking insertions/deletions
// introduced by the I/D states) and, in whole-genome mode, extending each
// ORF to the nearest in-frame start/stop codon pair.
func buildGenes(head []byte, seq []nt.Nuc, wholeGenome bool, vpath []hmm.State, alpha []Row) *gene.ReadPrediction {
	geneLen := 60
	if wholeGenome {
		geneLen = 120
	}
	rp := gene.NewReadPrediction(head)

	codonStart := 0
	startT := -1
	dnaStartTWithStop := 0
	dnaStartT := 0

	var dna []nt.Nuc
	var insert []int
	var deleteList []int

	prevMatch := hmm.S
	startOrf := 0

	isM := func(s hmm.State) bool { return s >= hmm.M1 && s <= hmm.M6 }
	isMr := func(s hmm.State) bool { return s >= hmm.M1r && s <= hmm.M6r }
	isI := func(s hmm.State) bool { return s >= hmm.I1 && s <= hmm.I6 }
	isIr := func(s hmm.State) bool { return s >= hmm.I1r && s <= hmm.I6r }

	for t := 0; t < len(seq); t++ {
		state := vpath[t]

		if codonStart == 0 && startT < 0 &&
			(isM(state) || isMr(state) || state == hmm.S || state == hmm.Sr) {
			dnaStartTWithStop = t + 1
			dnaStartT = t + 1
			startT = t + 1
		}

		switch {
		case codonStart == 0 && (state == hmm.M1 || state == hmm.M4 || state == hmm.M1r || state == hmm.M4r):
			dna = dna[:0]
			insert = insert[:0]
			deleteList = deleteList[:0]

			dna = append(dna, seq[t])
			dnaStartTWithStop = t + 1
			dnaStartT = t + 1
			if (state == hmm.M1 || state == hmm.M4r) && t > 2 {
				dnaStartTWithStop = t - 2
			}

			startOrf = t + 1
			prevMatch = state

			if state < hmm.M6 {
				codonStart = 1
			} else {
				codonStart = -1
			}

		case codonStart != 0 && (state == hmm.E || state == hmm.Er || t == len(seq)-1):
			var endT int
			if state == hmm.E || state == hmm.Er {
				endT = t + 3
			} else {
				tempT := t
				for vpath[tempT] != hmm.M1 && vpath[tempT] != hmm.M4 &&
					vpath[tempT] != hmm.M1r && vpath[tempT] != hmm.M4r {
					dna = dna[:len(dna)-1]
					tempT--
				}
				endT = tempT
			}

			if wholeGenome {
				switch codonStart {
				case 1:
					dna, dnaStartT, endT = extend(dna, dnaStartT, endT, true,
						forwardStarts, forwardStops, seq, alpha, vpath)
				case -1:
					dna, dnaStartT, endT = extend(dna, dnaStartT, endT, false,
						reverseStarts, reverseStops, seq, alpha, vpath)
				}
			}

			if len(dna) > geneLen {
				finalScore := score(startT, endT, alpha, vpath)
				frame := startOrf % 3
				if frame == 0 {
					frame = 3
				}

				switch codonStart {
				case 1:
					if startT == dnaStartT-3 {
						dnaStartT -= 3
					}
					rp.Genes = append(rp.Genes, gene.Gene{
						Start:         dnaStartT,
						MetaStart:     dnaStartT,
						End:           endT,
						Frame:         frame,
						Score:         finalScore,
						DNA:           append([]nt.Nuc(nil), dna...),
						ForwardStrand: true,
						Inserted:      append([]int(nil), insert...),
						Deleted:       append([]int(nil), deleteList...),
					})
				case -1:
					rp.Genes = append(rp.Genes, gene.Gene{
						Start:         dnaStartTWithStop,
						MetaStart:     dnaStartT,
						End:           endT,
						Frame:         frame,
						Score:         finalScore,
						DNA:           append([]nt.Nuc(nil), dna...),
						ForwardStrand: false,
						Inserted:      append([]int(nil), insert...),
						Deleted:       append([]int(nil), deleteList...),
					})
				}
			}

			codonStart = 0
			startT = -1

		case codonStart != 0 &&
			((isM(state) && prevMatch >= hmm.M1) || (isMr(state) && prevMatch >= hmm.M1r)):
			var outNT int
			if state < prevMatch {
				outNT = int(state) + 6 - int(prevMatch)
			} else {
				outNT = int(state) - int(prevMatch)
			}
			for kk := 0; kk < outNT; kk++ {
				dna = append(dna, nt.Xi)
				if kk > 0 {
					deleteList = append(deleteList, t+1)
				}
			}
			dna = dna[:len(dna)-1]
			dna = append(dna, seq[t])
			prevMatch = state

		case codonStart != 0 && (isI(state) || isIr(state)):
			dna = append(dna, seq[t].Lower())
			insert = append(insert, t+1)

		case codonStart != 0 && state == hmm.R:
			codonStart = 0
			startT = -1
		}
	}

	return rp
}

var forwardStarts = [3][3]nt.Nuc{{nt.A, nt.T, nt.G}, {nt.G, nt.T, nt.G}, {nt.T, nt.T, nt.G}}
var forwardStops = [3][3]nt.Nuc{{nt.T, nt.A, nt.A}, {nt.T, nt.A, nt.G}, {nt.T, nt.G, nt.A}}
var reverseStarts = [3][3]nt.Nuc{{nt.T, nt.T, nt.A}, {nt.C, nt.T, nt.A}, {nt.T, nt.C, nt.A}}
var reverseStops = [3][3]nt.Nuc{{nt.C, nt.A, nt.T}, {nt.C, nt.A, nt.C}, {nt.C, nt.A, nt.A}}

func containsTriple(set [3][3]nt.Nuc, a, b, c nt.Nuc) bool {
	for _, t := range set {
		if t[0] == a && t[1] == b && t[2] == c {
			return true
		}
	}
	return false
}

func satSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// extend searches outward from a gene's provisional boundaries for the
// best-scoring in-frame start/stop codon pair, matching the reference's
// whole-genome refinement. left/right are 1-based positions; forward
// chooses which codon set marks the start vs. the stop.
func extend(dna []nt.Nuc, left, right int, forward bool, startCodons, stopCodons [3][3]nt.Nuc, seq []nt.Nuc, alpha []Row, vpath []hmm.State) ([]nt.Nuc, int, int) {
	if forward {
		c := maxInt(left+6, satSub(right, 30))
		limit := minInt(right+198, len(seq)-1)
		for c < limit && !containsTriple(stopCodons, seq[c-1], seq[c], seq[c+1]) {
			c += 3
		}
		if c < limit {
			c += 3
			switch {
			case c < right:
				dna = dna[:len(dna)+c-right]
			case c > right:
				dna = append(dna, seq[right-1:c-1]...)
			}
			right = c
		}

		var starts []int
		c = minInt(satSub(right, 6), left+30)
		for c >= 3 && c > satSub(left, 198) && !containsTriple(stopCodons, seq[c-1], seq[c], seq[c+1]) {
			if containsTriple(startCodons, seq[c-1], seq[c], seq[c+1]) {
				starts = append(starts, c)
			}
			c -= 3
		}

		startc := left
		maxscore := score(left, right, alpha, vpath)
		for _, s := range starts {
			nscore := score(s, right, alpha, vpath)
			if !isInf(nscore) && nscore > maxscore {
				startc = s
				maxscore = nscore
			}
		}
		switch {
		case startc < left:
			prefix := append([]nt.Nuc(nil), seq[startc-1:left-1]...)
			dna = append(prefix, dna...)
		case startc > left:
			dna = append([]nt.Nuc(nil), dna[startc-left:]...)
		}
		left = startc
	} else {
		c := minInt(satSub(right, 6), left+30)
		for c >= 3 && c > satSub(left, 198) && !containsTriple(stopCodons, seq[c-1], seq[c], seq[c+1]) {
			c -= 3
		}
		if c >= 3 && c > satSub(left, 198) {
			c -= 3
			switch {
			case c < left:
				prefix := append([]nt.Nuc(nil), seq[c-1:left-1]...)
				dna = append(prefix, dna...)
			case c > left:
				dna = append([]nt.Nuc(nil), dna[c-left:]...)
			}
			left = c
		}

		var starts []int
		c = maxInt(left+6, satSub(right, 30))
		limit := minInt(right+198, len(seq)-1)
		for c < limit && !containsTriple(stopCodons, seq[c-1], seq[c], seq[c+1]) {
			if containsTriple(startCodons, seq[c-1], seq[c], seq[c+1]) {
				starts = append(starts, c)
			}
			c += 3
		}

		startc := right
		maxscore := score(left, right, alpha, vpath)
		for _, s := range starts {
			nscore := score(left, s, alpha, vpath)
			if !isInf(nscore) && nscore > maxscore {
				startc = s
				maxscore = nscore
			}
		}
		switch {
		case startc < right:
			dna = dna[:len(dna)+startc-right]
		case startc > right:
			dna = append(dna, seq[right-1:startc-1]...)
		}
		right = startc
	}
	return dna, left, right
}

// score is the average per-base alpha cost between start and stop
// (1-based, excluding the start/stop codons themselves), used to compare
// candidate boundaries during whole-genome refinement.
func score(start, stop int, alpha []Row, vpath []hmm.State) float64 {
	return (alpha[stop-4][vpath[stop-4]] - alpha[start+2][vpath[start+2]]) / float64(stop-start-5)
}

func isInf(f float64) bool {
	return math.IsInf(f, 1) || math.IsInf(f, -1)
}
