package gene

import (
	"bytes"
	"strings"
	"testing"

	"github.com/unipept/FragGeneScanRs/internal/nt"
)

func seqFromString(s string) []nt.Nuc {
	out := make([]nt.Nuc, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = nt.FromByte(s[i])
	}
	return out
}

func TestWriteMetaSkipsHeaderWhenNoGenes(t *testing.T) {
	rp := NewReadPrediction([]byte("empty"))
	var buf bytes.Buffer
	if err := rp.WriteMeta(&buf); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for a gene-less prediction, got %q", buf.String())
	}
}

func TestWriteMetaFormatsInsertionsAndDeletions(t *testing.T) {
	rp := NewReadPrediction([]byte("read1"))
	rp.Genes = append(rp.Genes, Gene{
		Start: 1, MetaStart: 1, End: 90, Frame: 1, Score: -12.5,
		ForwardStrand: true,
		Inserted:      []int{10, 20},
		Deleted:       []int{30},
	})

	var buf bytes.Buffer
	if err := rp.WriteMeta(&buf); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, ">read1\n") {
		t.Fatalf("missing header, got %q", out)
	}
	if !strings.Contains(out, "I:10,20,") || !strings.Contains(out, "D:30,") {
		t.Fatalf("insertion/deletion lists not rendered as expected: %q", out)
	}
	if !strings.Contains(out, "\t+\t1\t") {
		t.Fatalf("expected forward strand and frame 1, got %q", out)
	}
}

func TestWriteDNAStripsInsertionsUnlessFormatted(t *testing.T) {
	dna := append(seqFromString("ATG"), nt.Ai, nt.T)
	rp := NewReadPrediction([]byte("r"))
	rp.Genes = append(rp.Genes, Gene{Start: 1, End: 6, ForwardStrand: true, DNA: dna})

	var plain bytes.Buffer
	if err := rp.WriteDNA(&plain, false); err != nil {
		t.Fatalf("WriteDNA: %v", err)
	}
	if strings.Contains(plain.String(), "a") {
		t.Fatalf("expected insertion marker stripped, got %q", plain.String())
	}

	var formatted bytes.Buffer
	if err := rp.WriteDNA(&formatted, true); err != nil {
		t.Fatalf("WriteDNA: %v", err)
	}
	if !strings.Contains(formatted.String(), "a") {
		t.Fatalf("expected insertion marker kept in formatted output, got %q", formatted.String())
	}
}

func TestWriteDNAReverseComplementsMinusStrand(t *testing.T) {
	rp := NewReadPrediction([]byte("r"))
	rp.Genes = append(rp.Genes, Gene{Start: 1, End: 3, ForwardStrand: false, DNA: seqFromString("ATG")})

	var buf bytes.Buffer
	if err := rp.WriteDNA(&buf, false); err != nil {
		t.Fatalf("WriteDNA: %v", err)
	}
	if !strings.Contains(buf.String(), "\nCAT\n") {
		t.Fatalf("expected reverse complement of ATG (CAT), got %q", buf.String())
	}
}

func TestWriteProteinTrimsTrailingStop(t *testing.T) {
	rp := NewReadPrediction([]byte("r"))
	// ATG AAA TAA -> M K *, trailing stop should be trimmed.
	rp.Genes = append(rp.Genes, Gene{Start: 1, End: 9, ForwardStrand: true, DNA: seqFromString("ATGAAATAA")})

	var buf bytes.Buffer
	if err := rp.WriteProtein(&buf, false); err != nil {
		t.Fatalf("WriteProtein: %v", err)
	}
	if !strings.Contains(buf.String(), "\nMK\n") {
		t.Fatalf("expected trimmed protein MK, got %q", buf.String())
	}
}

func TestWriteProteinRewritesAlternativeStartInWholeGenomeMode(t *testing.T) {
	rp := NewReadPrediction([]byte("r"))
	// GTG AAA TAA: alternative start codon, should render as M in whole-genome mode.
	rp.Genes = append(rp.Genes, Gene{Start: 1, End: 9, ForwardStrand: true, DNA: seqFromString("GTGAAATAA")})

	var wg bytes.Buffer
	if err := rp.WriteProtein(&wg, true); err != nil {
		t.Fatalf("WriteProtein: %v", err)
	}
	if !strings.Contains(wg.String(), "\nMK\n") {
		t.Fatalf("expected GTG rewritten to M in whole-genome mode, got %q", wg.String())
	}

	var notWg bytes.Buffer
	if err := rp.WriteProtein(&notWg, false); err != nil {
		t.Fatalf("WriteProtein: %v", err)
	}
	if !strings.Contains(notWg.String(), "\nVK\n") {
		t.Fatalf("expected GTG translated literally (V) outside whole-genome mode, got %q", notWg.String())
	}
}
