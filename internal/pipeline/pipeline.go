// Package pipeline fans a FASTA/FASTQ input out across worker goroutines
// that each run the Viterbi decoder, and collects their gene predictions
// back into the metadata/nucleotide/protein output streams, either in
// input order or as each chunk finishes.
package pipeline

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/unipept/FragGeneScanRs/internal/gene"
	"github.com/unipept/FragGeneScanRs/internal/hmm"
	"github.com/unipept/FragGeneScanRs/internal/nt"
	"github.com/unipept/FragGeneScanRs/internal/viterbi"
)

// Options configures how records are chunked, decoded, and emitted.
type Options struct {
	Threads      int
	ChunkSize    int
	WholeGenome  bool
	FormattedDNA bool
	Unordered    bool
}

// Writers are the three (optional) output sinks; a nil Writer skips that
// output entirely.
type Writers struct {
	Meta    Writer
	DNA     Writer
	Protein Writer
}

// Writer is satisfied by *os.File and any xopen writer.
type Writer interface {
	Write(p []byte) (int, error)
}

// Stats summarizes a completed run, for a --verbose closing log line.
type Stats struct {
	Reads int64
	Bases int64
	Genes int64
}

type chunk struct {
	index   int
	records []*fastx.Record
}

type result struct {
	index       int
	predictions []*gene.ReadPrediction
}

// Run reads records from reader in chunks, decodes each chunk across
// Options.Threads worker goroutines, and writes every produced gene
// prediction to writers. When Options.Unordered is set, chunks are
// written as soon as they are decoded; otherwise output preserves input
// order.
func Run(store *hmm.Store, reader *fastx.Reader, writers Writers, opts Options) (Stats, error) {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = 100
	}

	jobs := make(chan chunk)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < opts.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results <- result{index: c.index, predictions: decodeChunk(store, c.records, opts.WholeGenome)}
			}
		}()
	}

	var readErr error
	go func() {
		defer close(jobs)
		index := 0
		for {
			records, err := readChunk(reader, opts.ChunkSize)
			if len(records) > 0 {
				jobs <- chunk{index: index, records: records}
				index++
			}
			if err != nil {
				if err != errDone {
					readErr = err
				}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	stats, writeErr := collect(results, writers, opts)
	if readErr != nil {
		return stats, errors.Wrap(readErr, "reading input")
	}
	return stats, writeErr
}

func decodeChunk(store *hmm.Store, records []*fastx.Record, wholeGenome bool) []*gene.ReadPrediction {
	out := make([]*gene.ReadPrediction, len(records))
	for i, rec := range records {
		seq := make([]nt.Nuc, len(rec.Seq.Seq))
		for j, b := range rec.Seq.Seq {
			seq[j] = nt.FromByte(b)
		}
		head := append([]byte(nil), rec.Name...)
		out[i] = viterbi.Decode(store, head, seq, wholeGenome)
	}
	return out
}

var errDone = errors.New("no more records")

func readChunk(reader *fastx.Reader, size int) ([]*fastx.Record, error) {
	records := make([]*fastx.Record, 0, size)
	for len(records) < size {
		rec, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return records, errDone
			}
			return records, err
		}
		records = append(records, rec.Clone())
	}
	return records, nil
}

// collect drains results, dispatching each chunk's predictions to
// writeChunk either as they arrive (unordered) or once the expected
// next-in-order chunk is available (ordered), matching the invariant
// that ordered mode reproduces input order regardless of which worker
// finished first.
func collect(results <-chan result, writers Writers, opts Options) (Stats, error) {
	var stats Stats
	if opts.Unordered {
		for r := range results {
			if err := writeChunk(writers, r.predictions, opts, &stats); err != nil {
				return stats, err
			}
		}
		return stats, nil
	}

	pending := map[int][]*gene.ReadPrediction{}
	next := 0
	for r := range results {
		pending[r.index] = r.predictions
		for {
			preds, ok := pending[next]
			if !ok {
				break
			}
			if err := writeChunk(writers, preds, opts, &stats); err != nil {
				return stats, err
			}
			delete(pending, next)
			next++
		}
	}
	return stats, nil
}

func writeChunk(writers Writers, predictions []*gene.ReadPrediction, opts Options, stats *Stats) error {
	for _, rp := range predictions {
		stats.Reads++
		stats.Genes += int64(len(rp.Genes))
		for _, g := range rp.Genes {
			stats.Bases += int64(len(g.DNA))
		}
		if writers.Meta != nil {
			if err := rp.WriteMeta(writers.Meta); err != nil {
				return err
			}
		}
		if writers.DNA != nil {
			if err := rp.WriteDNA(writers.DNA, opts.FormattedDNA); err != nil {
				return err
			}
		}
		if writers.Protein != nil {
			if err := rp.WriteProtein(writers.Protein, opts.WholeGenome); err != nil {
				return err
			}
		}
	}
	return nil
}
