package hmm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeMinimalTrainingDir writes a syntactically valid, numerically
// meaningless training directory, for exercising the loader's shapes and
// error paths without depending on the (large) embedded defaults.
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
	mustWrite(t, dir, "start", repeatGroups(44, 61, 64, "0.2"))
	mustWrite(t, dir, "stop", repeatGroups(44, 61, 64, "0.2"))
	mustWrite(t, dir, "start1", repeatGroups(44, 61, 64, "0.2"))
	mustWrite(t, dir, "stop1", repeatGroups(44, 61, 64, "0.2"))
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

func TestLoadWellFormedDirectory(t *testing.T) {
	dir := writeMinimalTrainingDir(t)
	store, err := Load(dir, "complete")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Local[0].EM[0][0][0] == 0 {
		t.Fatalf("expected log(0.25) to be non-zero")
	}
	// dist_* values are not log-transformed.
	if store.Local[0].DistS[0] != 2.0 {
		t.Fatalf("DistS should be stored raw, got %v", store.Local[0].DistS[0])
	}
}

func TestLoadMissingFixedTableUsesEmbeddedFallback(t *testing.T) {
	dir := writeMinimalTrainingDir(t)
	if err := os.Remove(filepath.Join(dir, "pwm")); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, "complete"); err != nil {
		t.Fatalf("Load should fall back to embedded pwm: %v", err)
	}
}

func TestLoadUnknownTransitionKey(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "complete", "transitions\nBOGUS\t0.5\n")
	_, err := Load(dir, "complete")
	var target *UnknownTransitionKeyError
	if err == nil {
		t.Fatal("expected an error")
	}
	if !asUnknownTransitionKeyError(err, &target) {
		t.Fatalf("expected UnknownTransitionKeyError, got %T: %v", err, err)
	}
}

func asUnknownTransitionKeyError(err error, target **UnknownTransitionKeyError) bool {
	if e, ok := err.(*UnknownTransitionKeyError); ok {
		*target = e
		return true
	}
	return false
}

func TestLoadMalformedNumber(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "complete", "transitions\nMM\tnotanumber\n")
	_, err := Load(dir, "complete")
	if _, ok := err.(*MalformedNumberError); !ok {
		t.Fatalf("expected MalformedNumberError, got %T: %v", err, err)
	}
}

func TestLoadIncompleteFile(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "complete", "transitions\nMM\t0.5\n")
	_, err := Load(dir, "complete")
	if _, ok := err.(*IncompleteFileError); !ok {
		t.Fatalf("expected IncompleteFileError, got %T: %v", err, err)
	}
}
