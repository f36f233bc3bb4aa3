package viterbi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unipept/FragGeneScanRs/internal/hmm"
	"github.com/unipept/FragGeneScanRs/internal/nt"
)

// writeMinimalTrainingDir mirrors internal/hmm's own fixture writer: a
// syntactically valid, numerically bland training directory, good enough
// to exercise the decoder's control flow without asserting on biologically
// meaningful scores.
func writeMinimalTrainingDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	names14 := []string{"MM", "MI", "MD", "II", "IM", "DD", "DM", "GE", "GG", "ER", "RS", "RR", "ES", "ES1"}
	names29 := []string{
		"S", "E", "R", "Sr", "Er",
		"M1", "M2", "M3", "M4", "M5", "M6",
		"M1r", "M2r", "M3r", "M4r", "M5r", "M6r",
		"I1", "I2", "I3", "I4", "I5", "I6",
		"I1r", "I2r", "I3r", "I4r", "I5r", "I6r",
	}

	var b strings.Builder
	b.WriteString("transitions\n")
	for _, n := range names14 {
		fmt.Fprintf(&b, "%s\t0.5\n", n)
	}
	b.WriteString("MI\n")
	for a := 0; a < 4; a++ {
		for c := 0; c < 4; c++ {
			fmt.Fprintf(&b, "%d\t%d\t0.25\n", a, c)
		}
	}
	b.WriteString("II\n")
	for a := 0; a < 4; a++ {
		for c := 0; c < 4; c++ {
			fmt.Fprintf(&b, "%d\t%d\t0.25\n", a, c)
		}
	}
	b.WriteString("PI\n")
	for _, n := range names29 {
		fmt.Fprintf(&b, "%s\t0.5\n", n)
	}
	mustWrite(t, dir, "complete", b.String())

	mustWrite(t, dir, "gene", repeatGroups(44, 96, 4, "0.25"))
	mustWrite(t, dir, "rgene", repeatGroups(44, 96, 4, "0.25"))
	mustWrite(t, dir, "noncoding", repeatGroups(44, 4, 4, "0.25"))
	mustWrite(t, dir, "start", repeatGroups(44, 61, 64, "0.02"))
	mustWrite(t, dir, "stop", repeatGroups(44, 61, 64, "0.02"))
	mustWrite(t, dir, "start1", repeatGroups(44, 61, 64, "0.02"))
	mustWrite(t, dir, "stop1", repeatGroups(44, 61, 64, "0.02"))
	mustWrite(t, dir, "pwm", repeatGroups(44, 4, 6, "2.0"))

	return dir
}

func repeatGroups(groups, rows, cols int, value string) string {
	var b strings.Builder
	rowTokens := make([]string, cols)
	for i := range rowTokens {
		rowTokens[i] = value
	}
	row := strings.Join(rowTokens, "\t")
	for g := 0; g < groups; g++ {
		fmt.Fprintf(&b, "x\t%d\n", g)
		for r := 0; r < rows; r++ {
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func mustWrite(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func loadTestStore(t *testing.T) *hmm.Store {
	t.Helper()
	dir := writeMinimalTrainingDir(t)
	store, err := hmm.Load(dir, "complete")
	if err != nil {
		t.Fatalf("hmm.Load: %v", err)
	}
	return store
}

func seqFromString(s string) []nt.Nuc {
	out := make([]nt.Nuc, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = nt.FromByte(s[i])
	}
	return out
}

func TestDecodeIsDeterministic(t *testing.T) {
	store := loadTestStore(t)
	seq := seqFromString("ATGAAACGTGATCGTAGCTAGCTAGCATCGATCGTAGCATCGATGCATGCTAGCATCGATCGTAGCTAA")

	first := Decode(store, []byte("read1"), seq, false)
	second := Decode(store, []byte("read1"), seq, false)

	if len(first.Genes) != len(second.Genes) {
		t.Fatalf("gene counts differ across identical runs: %d vs %d", len(first.Genes), len(second.Genes))
	}
	for i := range first.Genes {
		if first.Genes[i].Start != second.Genes[i].Start || first.Genes[i].End != second.Genes[i].End {
			t.Fatalf("gene %d differs across identical runs: %+v vs %+v", i, first.Genes[i], second.Genes[i])
		}
	}
}

// All-N input should not crash the decoder and should trip the N-island
// override once ten or more consecutive ambiguous bases have been seen.
func TestDecodeAllAmbiguousBases(t *testing.T) {
	store := loadTestStore(t)
	seq := seqFromString(strings.Repeat("N", 50))

	rp := Decode(store, []byte("allN"), seq, false)
	if len(rp.Genes) != 0 {
		t.Fatalf("expected no genes called from an all-N read, got %d", len(rp.Genes))
	}
}

// A short sequence should never produce a gene shorter than the configured
// floor (60 bases for reads, 120 for whole-genome mode).
func TestDecodeRespectsGeneLengthFloor(t *testing.T) {
	store := loadTestStore(t)
	seq := seqFromString("ATGAAACGT")

	rp := Decode(store, []byte("short"), seq, false)
	for _, g := range rp.Genes {
		if len(g.DNA) <= 60 {
			t.Fatalf("gene shorter than the 60-base floor leaked through: %d bases", len(g.DNA))
		}
	}
}

func TestDecodeEmptySequence(t *testing.T) {
	store := loadTestStore(t)
	rp := Decode(store, []byte("empty"), nil, false)
	if len(rp.Genes) != 0 {
		t.Fatalf("expected no genes from an empty read, got %d", len(rp.Genes))
	}
}
