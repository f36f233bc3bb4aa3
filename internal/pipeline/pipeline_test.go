package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/unipept/FragGeneScanRs/internal/hmm"
)

// lockedBuffer makes *bytes.Buffer safe to use as a pipeline.Writer across
// concurrent worker goroutines, matching how xopen's real file writers are
// safe for a single writer loop but not for unsynchronized concurrent use.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func writeFasta(t *testing.T, records map[string]string) string {
	t.Helper()
	var b strings.Builder
	// map iteration order is random; callers that care about order use a
	// single record or check membership rather than exact position.
	for name, seq := range records {
		b.WriteString(">")
		b.WriteString(name)
		b.WriteString("\n")
		b.WriteString(seq)
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "in.fasta")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("writing fixture fasta: %v", err)
	}
	return path
}

func TestRunWithNoWriters(t *testing.T) {
	store := loadTestStoreForPipeline(t)
	path := writeFasta(t, map[string]string{"only": strings.Repeat("N", 30)})
	reader, err := fastx.NewDefaultReader(path)
	if err != nil {
		t.Fatalf("NewDefaultReader: %v", err)
	}

	stats, err := Run(store, reader, Writers{}, Options{Threads: 2, ChunkSize: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Reads != 1 {
		t.Fatalf("expected 1 read processed, got %d", stats.Reads)
	}
}

func TestRunOrderedMatchesUnorderedReadCount(t *testing.T) {
	store := loadTestStoreForPipeline(t)
	records := map[string]string{
		"a": strings.Repeat("N", 20),
		"b": strings.Repeat("N", 20),
		"c": strings.Repeat("N", 20),
	}
	path := writeFasta(t, records)

	for _, unordered := range []bool{false, true} {
		reader, err := fastx.NewDefaultReader(path)
		if err != nil {
			t.Fatalf("NewDefaultReader: %v", err)
		}
		var meta lockedBuffer
		stats, err := Run(store, reader, Writers{Meta: &meta}, Options{
			Threads: 3, ChunkSize: 1, Unordered: unordered,
		})
		if err != nil {
			t.Fatalf("Run(unordered=%v): %v", unordered, err)
		}
		if stats.Reads != int64(len(records)) {
			t.Fatalf("unordered=%v: expected %d reads, got %d", unordered, len(records), stats.Reads)
		}
	}
}

func loadTestStoreForPipeline(t *testing.T) *hmm.Store {
	t.Helper()
	dir := writeMinimalTrainingDirForPipeline(t)
	store, err := hmm.Load(dir, "complete")
	if err != nil {
		t.Fatalf("hmm.Load: %v", err)
	}
	return store
}

// writeMinimalTrainingDirForPipeline is a copy of internal/hmm's own test
// fixture writer (package-private there, so duplicated here): a
// syntactically valid, numerically bland training directory.
func writeMinimalTrainingDirForPipeline(t *testing.T) string {
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
	writeFile(t, dir, "complete", b.String())

	writeFile(t, dir, "gene", repeatGroupsForPipeline(44, 96, 4, "0.25"))
	writeFile(t, dir, "rgene", repeatGroupsForPipeline(44, 96, 4, "0.25"))
	writeFile(t, dir, "noncoding", repeatGroupsForPipeline(44, 4, 4, "0.25"))
	writeFile(t, dir, "start", repeatGroupsForPipeline(44, 61, 64, "0.02"))
	writeFile(t, dir, "stop", repeatGroupsForPipeline(44, 61, 64, "0.02"))
	writeFile(t, dir, "start1", repeatGroupsForPipeline(44, 61, 64, "0.02"))
	writeFile(t, dir, "stop1", repeatGroupsForPipeline(44, 61, 64, "0.02"))
	writeFile(t, dir, "pwm", repeatGroupsForPipeline(44, 4, 6, "2.0"))

	return dir
}

func repeatGroupsForPipeline(groups, rows, cols int, value string) string {
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

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}
