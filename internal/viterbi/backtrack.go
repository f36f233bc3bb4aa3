package viterbi

import (
	"github.com/shenwei356/go-logging"

	"github.com/unipept/FragGeneScanRs/internal/hmm"
)

var log = logging.MustGetLogger("FragGeneScanRs")

// backtrack recovers the best state path by walking alpha/path backwards
// from whichever state ends with the lowest score at the last position.
func backtrack(alpha []Row, path []PathRow) []hmm.State {
	vpath := make([]hmm.State, len(path))
	vpath[len(vpath)-1] = hmm.S
	best := alpha[len(alpha)-1]
	prob := best[hmm.S]
	for s := hmm.State(0); s < hmm.NumStates; s++ {
		if best[s] < prob {
			vpath[len(vpath)-1] = s
			prob = best[s]
		}
	}

	for t := len(path) - 2; t >= 0; t-- {
		prev := path[t+1][vpath[t+1]]
		if prev == hmm.NoState {
			log.Warningf("no recorded predecessor at position %d, substituting non-coding state", t+1)
			prev = hmm.R
		}
		vpath[t] = prev
	}
	return vpath
}
