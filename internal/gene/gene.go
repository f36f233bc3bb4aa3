// Package gene assembles and renders predicted open reading frames: it
// turns a decoded HMM state path into Gene records and writes the three
// output formats (metadata, nucleotide, protein).
package gene

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/unipept/FragGeneScanRs/internal/nt"
)

// Gene is a single predicted open reading frame.
type Gene struct {
	Start         int
	MetaStart     int
	End           int
	Frame         int
	Score         float64
	DNA           []nt.Nuc
	ForwardStrand bool
	Inserted      []int
	Deleted       []int
}

// ReadPrediction holds every gene found on one input sequence.
type ReadPrediction struct {
	Head  []byte
	Genes []Gene
}

// NewReadPrediction starts an empty prediction for the given FASTA header.
func NewReadPrediction(head []byte) *ReadPrediction {
	return &ReadPrediction{Head: head}
}

// WriteMeta writes the one-line-per-gene metadata table: metastart, end,
// strand, frame, score, and the insertion/deletion position lists.
func (r *ReadPrediction) WriteMeta(w io.Writer) error {
	if len(r.Genes) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, ">%s\n", r.Head); err != nil {
		return errors.Wrap(err, "writing metadata header")
	}
	for _, g := range r.Genes {
		if err := g.writeMeta(w); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gene) writeMeta(w io.Writer) error {
	strand := '+'
	if !g.ForwardStrand {
		strand = '-'
	}
	_, err := fmt.Fprintf(w, "%d\t%d\t%c\t%d\t%.6f\tI:%s\tD:%s\n",
		g.MetaStart, g.End, strand, g.Frame, g.Score,
		joinCommaPositions(g.Inserted), joinCommaPositions(g.Deleted))
	return errors.Wrap(err, "writing gene metadata")
}

func joinCommaPositions(positions []int) string {
	var out []byte
	for _, p := range positions {
		out = append(out, []byte(fmt.Sprintf("%d,", p))...)
	}
	return string(out)
}

// WriteDNA writes the predicted gene's own nucleotide sequence, reverse
// complemented for reverse-strand genes. When formatted is false,
// insertion-marked bases are dropped so the output is plain genomic DNA.
func (r *ReadPrediction) WriteDNA(w io.Writer, formatted bool) error {
	for _, g := range r.Genes {
		if err := g.writeDNA(w, r.Head, formatted); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gene) writeDNA(w io.Writer, head []byte, formatted bool) error {
	seq := g.DNA
	if !g.ForwardStrand {
		seq = nt.ReverseComplement(seq)
	}
	out := make([]byte, 0, len(seq))
	for _, n := range seq {
		if !formatted && n.IsInsertion() {
			continue
		}
		out = append(out, n.Byte())
	}
	strand := '+'
	if !g.ForwardStrand {
		strand = '-'
	}
	_, err := fmt.Fprintf(w, ">%s_%d_%d_%c\n%s\n", head, g.Start, g.End, strand, out)
	return errors.Wrap(err, "writing gene DNA")
}

// WriteProtein writes the predicted gene's translated protein. Insertion
// markers are stripped before translation. In whole-genome mode, an
// alternative start codon (GTG/TTG on the forward strand, CAC/CAA as the
// reverse-strand encoding of the same) is rewritten to Met, matching
// common bacterial start-codon usage.
func (r *ReadPrediction) WriteProtein(w io.Writer, wholeGenome bool) error {
	for _, g := range r.Genes {
		if err := g.writeProtein(w, r.Head, wholeGenome); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gene) writeProtein(w io.Writer, head []byte, wholeGenome bool) error {
	dna := make([]nt.Nuc, 0, len(g.DNA))
	for _, n := range g.DNA {
		if !n.IsInsertion() {
			dna = append(dna, n)
		}
	}

	var protein []byte
	if g.ForwardStrand {
		protein = nt.Translate(dna)
	} else {
		protein = nt.TranslateReverse(dna)
	}
	if len(protein) > 0 && protein[len(protein)-1] == '*' {
		protein = protein[:len(protein)-1]
	}

	if wholeGenome && len(protein) > 0 {
		if g.ForwardStrand {
			if idx, ok := nt.Trinucleotide(g.DNA[0], g.DNA[1], g.DNA[2]); ok {
				gtg, _ := nt.Trinucleotide(nt.G, nt.T, nt.G)
				ttg, _ := nt.Trinucleotide(nt.T, nt.T, nt.G)
				if idx == gtg || idx == ttg {
					protein[0] = 'M'
				}
			}
		} else if len(g.DNA) >= 3 {
			n := len(g.DNA)
			if idx, ok := nt.Trinucleotide(g.DNA[n-3], g.DNA[n-2], g.DNA[n-1]); ok {
				cac, _ := nt.Trinucleotide(nt.C, nt.A, nt.C)
				caa, _ := nt.Trinucleotide(nt.C, nt.A, nt.A)
				if idx == cac || idx == caa {
					protein[0] = 'M'
				}
			}
		}
	}

	strand := '+'
	if !g.ForwardStrand {
		strand = '-'
	}
	_, err := fmt.Fprintf(w, ">%s_%d_%d_%c\n%s\n", head, g.Start, g.End, strand, protein)
	return errors.Wrap(err, "writing gene protein")
}
