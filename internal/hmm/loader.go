package hmm

import (
	"bufio"
	"embed"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

//go:embed defaultparams
var embeddedParams embed.FS

const embeddedParamsDir = "defaultparams"

// fixedNames are the training tables with well-known names; any of these
// missing from the training directory falls back to the embedded default.
var fixedNames = []string{"gene", "rgene", "noncoding", "start", "stop", "start1", "stop1", "pwm"}

// FixedTableNames returns the eight well-known training table names (i.e.
// everything but the chosen per-error-rate transitions file).
func FixedTableNames() []string {
	out := make([]string, len(fixedNames))
	copy(out, fixedNames)
	return out
}

// Load builds a Store by reading the named training file (e.g. "complete",
// "sanger_10") plus the eight fixed-name tables from dir. Any file (the
// training file included) absent from dir is read from the embedded
// defaults instead.
func Load(dir, trainFile string) (*Store, error) {
	store := &Store{}

	pi, tr, trMI, trII, err := loadTransitions(dir, trainFile)
	if err != nil {
		return nil, err
	}
	store.Pi = pi
	store.Tr = tr
	store.TrMI = trMI
	store.TrII = trII

	em, err := loadGeneLike(dir, "gene")
	if err != nil {
		return nil, err
	}
	em1, err := loadGeneLike(dir, "rgene")
	if err != nil {
		return nil, err
	}
	trrr, err := loadNoncoding(dir, "noncoding")
	if err != nil {
		return nil, err
	}
	trS, err := loadProfile(dir, "start")
	if err != nil {
		return nil, err
	}
	trE, err := loadProfile(dir, "stop")
	if err != nil {
		return nil, err
	}
	trS1, err := loadProfile(dir, "start1")
	if err != nil {
		return nil, err
	}
	trE1, err := loadProfile(dir, "stop1")
	if err != nil {
		return nil, err
	}
	distS, distE, distS1, distE1, err := loadPWM(dir, "pwm")
	if err != nil {
		return nil, err
	}

	for cg := 0; cg < NumCGBuckets; cg++ {
		store.Local[cg] = LocalParams{
			EM: em[cg], EM1: em1[cg],
			TrRR:   trrr[cg],
			TrS:    trS[cg],
			TrE:    trE[cg],
			TrS1:   trS1[cg],
			TrE1:   trE1[cg],
			DistS:  distS[cg],
			DistE:  distE[cg],
			DistS1: distS1[cg],
			DistE1: distE1[cg],
		}
	}

	return store, nil
}

// open returns a reader for name inside dir, falling back to the embedded
// default of the same name when the file is missing from dir.
func open(dir, name string) (io.ReadCloser, string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err == nil {
		return f, path, nil
	}
	if !os.IsNotExist(err) {
		return nil, path, errors.Wrapf(err, "opening training file %s", path)
	}
	ef, eerr := embeddedParams.Open(embeddedParamsDir + "/" + name)
	if eerr != nil {
		return nil, path, errors.Wrapf(err, "opening training file %s (no embedded fallback for %q)", path, name)
	}
	return ef, "embedded:" + name, nil
}

// lineReader walks a table file line by line, tokenizing on whitespace and
// tracking the line number for error messages.
type lineReader struct {
	scanner *bufio.Scanner
	file    string
	line    int
}

func newLineReader(r io.Reader, file string) *lineReader {
	return &lineReader{scanner: bufio.NewScanner(r), file: file}
}

// next returns the next non-empty line's whitespace-separated fields, or
// false at EOF.
func (lr *lineReader) next() ([]string, bool) {
	for lr.scanner.Scan() {
		lr.line++
		fields := splitFields(lr.scanner.Text())
		if len(fields) == 0 {
			continue
		}
		return fields, true
	}
	return nil, false
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i := 0; i <= len(s); i++ {
		isSpace := i == len(s) || s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n'
		if isSpace {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	return fields
}

func (lr *lineReader) parseFloat(token, section string) (float64, error) {
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, &MalformedNumberError{File: lr.file, Line: lr.line, Token: token}
	}
	_ = section
	return v, nil
}

func (lr *lineReader) incomplete(section string) error {
	return &IncompleteFileError{File: lr.file, Section: section}
}

func loadTransitions(dir, trainFile string) ([NumStates]float64, Transitions, [4][4]float64, [4][4]float64, error) {
	var pi [NumStates]float64
	var tr Transitions
	var trMI, trII [4][4]float64

	rc, path, err := open(dir, trainFile)
	if err != nil {
		return pi, tr, trMI, trII, err
	}
	defer rc.Close()
	lr := newLineReader(rc, path)

	// header line for the transitions section.
	if _, ok := lr.next(); !ok {
		return pi, tr, trMI, trII, lr.incomplete("transitions header")
	}

	keyed := map[string]*float64{
		"MM": &tr.MM, "MI": &tr.MI, "MD": &tr.MD, "II": &tr.II, "IM": &tr.IM,
		"DD": &tr.DD, "DM": &tr.DM, "GE": &tr.GE, "GG": &tr.GG, "ER": &tr.ER,
		"RS": &tr.RS, "RR": &tr.RR, "ES": &tr.ES, "ES1": &tr.ES1,
	}
	for i := 0; i < 14; i++ {
		fields, ok := lr.next()
		if !ok {
			return pi, tr, trMI, trII, lr.incomplete("transitions")
		}
		if len(fields) < 2 {
			return pi, tr, trMI, trII, lr.incomplete("transitions")
		}
		dst, known := keyed[fields[0]]
		if !known {
			return pi, tr, trMI, trII, &UnknownTransitionKeyError{File: path, Line: lr.line, Key: fields[0]}
		}
		v, err := lr.parseFloat(fields[1], "transitions")
		if err != nil {
			return pi, tr, trMI, trII, err
		}
		*dst = math.Log(v)
	}

	// MI header + 16 rows of 3 tokens, value in column index 2.
	if _, ok := lr.next(); !ok {
		return pi, tr, trMI, trII, lr.incomplete("MI header")
	}
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			fields, ok := lr.next()
			if !ok || len(fields) < 3 {
				return pi, tr, trMI, trII, lr.incomplete("MI")
			}
			v, err := lr.parseFloat(fields[2], "MI")
			if err != nil {
				return pi, tr, trMI, trII, err
			}
			trMI[a][b] = math.Log(v)
		}
	}

	// II header + 16 rows of 3 tokens.
	if _, ok := lr.next(); !ok {
		return pi, tr, trMI, trII, lr.incomplete("II header")
	}
	for a := 0; a < 4; a++ {
		for b := 0; b < 4; b++ {
			fields, ok := lr.next()
			if !ok || len(fields) < 3 {
				return pi, tr, trMI, trII, lr.incomplete("II")
			}
			v, err := lr.parseFloat(fields[2], "II")
			if err != nil {
				return pi, tr, trMI, trII, err
			}
			trII[a][b] = math.Log(v)
		}
	}

	// PI header + 29 rows of "NAME value".
	if _, ok := lr.next(); !ok {
		return pi, tr, trMI, trII, lr.incomplete("PI header")
	}
	for i := 0; i < int(NumStates); i++ {
		fields, ok := lr.next()
		if !ok || len(fields) < 2 {
			return pi, tr, trMI, trII, lr.incomplete("PI")
		}
		v, err := lr.parseFloat(fields[1], "PI")
		if err != nil {
			return pi, tr, trMI, trII, err
		}
		pi[i] = math.Log(v)
	}

	return pi, tr, trMI, trII, nil
}

// loadGeneLike reads the "gene"/"rgene" shape: 44 groups of (1 header + 96
// rows of 4 tokens), log-transformed.
func loadGeneLike(dir, name string) ([NumCGBuckets][6][16][4]float64, error) {
	var out [NumCGBuckets][6][16][4]float64
	rc, path, err := open(dir, name)
	if err != nil {
		return out, err
	}
	defer rc.Close()
	lr := newLineReader(rc, path)

	for cg := 0; cg < NumCGBuckets; cg++ {
		if _, ok := lr.next(); !ok {
			return out, lr.incomplete(name)
		}
		for pos := 0; pos < 6; pos++ {
			for prev := 0; prev < 16; prev++ {
				fields, ok := lr.next()
				if !ok || len(fields) < 4 {
					return out, lr.incomplete(name)
				}
				for base := 0; base < 4; base++ {
					v, err := lr.parseFloat(fields[base], name)
					if err != nil {
						return out, err
					}
					out[cg][pos][prev][base] = math.Log(v)
				}
			}
		}
	}
	return out, nil
}

// loadNoncoding reads the "noncoding" shape: 44 groups of (1 header + 4
// rows of 4 tokens).
func loadNoncoding(dir, name string) ([NumCGBuckets][4][4]float64, error) {
	var out [NumCGBuckets][4][4]float64
	rc, path, err := open(dir, name)
	if err != nil {
		return out, err
	}
	defer rc.Close()
	lr := newLineReader(rc, path)

	for cg := 0; cg < NumCGBuckets; cg++ {
		if _, ok := lr.next(); !ok {
			return out, lr.incomplete(name)
		}
		for i := 0; i < 4; i++ {
			fields, ok := lr.next()
			if !ok || len(fields) < 4 {
				return out, lr.incomplete(name)
			}
			for j := 0; j < 4; j++ {
				v, err := lr.parseFloat(fields[j], name)
				if err != nil {
					return out, err
				}
				out[cg][i][j] = math.Log(v)
			}
		}
	}
	return out, nil
}

// loadProfile reads the start/stop/start1/stop1 shape: 44 groups of (1
// header + 61 rows of 64 tokens).
func loadProfile(dir, name string) ([NumCGBuckets][61][64]float64, error) {
	var out [NumCGBuckets][61][64]float64
	rc, path, err := open(dir, name)
	if err != nil {
		return out, err
	}
	defer rc.Close()
	lr := newLineReader(rc, path)

	for cg := 0; cg < NumCGBuckets; cg++ {
		if _, ok := lr.next(); !ok {
			return out, lr.incomplete(name)
		}
		for row := 0; row < 61; row++ {
			fields, ok := lr.next()
			if !ok || len(fields) < 64 {
				return out, lr.incomplete(name)
			}
			for col := 0; col < 64; col++ {
				v, err := lr.parseFloat(fields[col], name)
				if err != nil {
					return out, err
				}
				out[cg][row][col] = math.Log(v)
			}
		}
	}
	return out, nil
}

// loadPWM reads the "pwm" shape: 44 groups of (1 header + 4 rows of 6
// tokens), NOT log-transformed. Row order within a group is distS, distE,
// distS1, distE1.
func loadPWM(dir, name string) (distS, distE, distS1, distE1 [NumCGBuckets][6]float64, err error) {
	rc, path, oerr := open(dir, name)
	if oerr != nil {
		return distS, distE, distS1, distE1, oerr
	}
	defer rc.Close()
	lr := newLineReader(rc, path)

	rows := [4]*[NumCGBuckets][6]float64{&distS, &distE, &distS1, &distE1}
	for cg := 0; cg < NumCGBuckets; cg++ {
		if _, ok := lr.next(); !ok {
			return distS, distE, distS1, distE1, lr.incomplete(name)
		}
		for r := 0; r < 4; r++ {
			fields, ok := lr.next()
			if !ok || len(fields) < 6 {
				return distS, distE, distS1, distE1, lr.incomplete(name)
			}
			for col := 0; col < 6; col++ {
				v, perr := lr.parseFloat(fields[col], name)
				if perr != nil {
					return distS, distE, distS1, distE1, perr
				}
				rows[r][cg][col] = v
			}
		}
	}
	return distS, distE, distS1, distE1, nil
}

// EmbeddedFallbackExists reports whether name has an embedded default,
// used by the CLI to validate --training-file before Load runs.
func EmbeddedFallbackExists(name string) bool {
	_, err := fs.Stat(embeddedParams, embeddedParamsDir+"/"+name)
	return err == nil
}
