package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"

	"github.com/unipept/FragGeneScanRs/internal/hmm"
	"github.com/unipept/FragGeneScanRs/internal/pipeline"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict genes in a set of nucleotide reads or a genome",
	Long: `Predict genes in a set of nucleotide reads or a genome

Reads FASTA (or gzipped FASTA) records, scores every position against
the 29-state gene model, and writes the resulting open reading frames
as metadata, nucleotide, and/or protein FASTA.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose := getFlagBool(cmd, "verbose")
		threads := getFlagPositiveInt(cmd, "thread-num")

		seqFile := getFlagString(cmd, "seq-file-name")
		outPrefix := getFlagString(cmd, "output-prefix")
		trainFile := getFlagString(cmd, "training-file")
		trainDir := getFlagString(cmd, "train-file-dir")
		wholeGenome := getFlagBool(cmd, "complete")
		formatted := getFlagBool(cmd, "formatted-nucleotide")
		unordered := getFlagBool(cmd, "unordered")
		chunkSize := getFlagPositiveInt(cmd, "chunk-size")

		metaFile := getFlagString(cmd, "metadata-file")
		dnaFile := getFlagString(cmd, "dna-file")
		proteinFile := getFlagString(cmd, "protein-file")

		// A prefix expands to all three file names unless a more specific
		// override flag was also given. Metadata and nucleotide have no
		// default: unset means "don't write". Protein always has a target:
		// the prefix, an explicit override, or (absent both) stdout.
		if outPrefix != "" {
			if metaFile == "" {
				metaFile = outPrefix + ".out"
			}
			if dnaFile == "" {
				dnaFile = outPrefix + ".ffn"
			}
			if proteinFile == "" {
				proteinFile = outPrefix + ".faa"
			}
		} else if proteinFile == "" {
			proteinFile = "-"
		}

		trainDir, err := homedir.Expand(trainDir)
		checkError(err)

		if verbose {
			log.Infof("loading training parameters from %s/%s", trainDir, trainFile)
		}
		store, err := hmm.Load(trainDir, trainFile)
		checkError(errors.Wrap(err, "loading training parameters"))

		reader, err := openReader(seqFile)
		checkError(errors.Wrap(err, "opening sequence input"))

		metaOut, closeMeta := openWriter(metaFile)
		defer closeMeta()
		dnaOut, closeDNA := openWriter(dnaFile)
		defer closeDNA()
		proteinOut, closeProtein := openWriter(proteinFile)
		defer closeProtein()

		stats, err := pipeline.Run(store, reader, pipeline.Writers{
			Meta:    metaOut,
			DNA:     dnaOut,
			Protein: proteinOut,
		}, pipeline.Options{
			Threads:      threads,
			ChunkSize:    chunkSize,
			WholeGenome:  wholeGenome,
			FormattedDNA: formatted,
			Unordered:    unordered,
		})
		checkError(errors.Wrap(err, "running prediction pipeline"))

		if verbose {
			log.Infof("predicted %d genes (%s) across %d reads",
				stats.Genes, humanize.Bytes(uint64(stats.Bases)), stats.Reads)
		}
	},
}

func openReader(file string) (*fastx.Reader, error) {
	if file == "" {
		file = "-"
	}
	return fastx.NewDefaultReader(file)
}

// openWriter opens file for writing, returning a nil Writer (and a no-op
// closer) when file is empty: that output was never configured and must
// not be written at all. "stdout" is accepted as a synonym for "-".
func openWriter(file string) (pipeline.Writer, func()) {
	if file == "" {
		return nil, func() {}
	}
	if file == "stdout" {
		file = "-"
	}
	w, err := xopen.Wopen(file)
	checkError(errors.Wrap(err, fmt.Sprintf("opening output file %s", file)))
	return w, func() { w.Close() }
}

func init() {
	RootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringP("seq-file-name", "s", "-", `nucleotide sequence file to read ("-" for stdin)`)
	predictCmd.Flags().StringP("output-prefix", "o", "", "prefix for .out/.ffn/.faa output files; unset writes only protein, to stdout")
	predictCmd.Flags().StringP("metadata-file", "e", "", "override the metadata (.out) output path (unset: not written)")
	predictCmd.Flags().StringP("dna-file", "d", "", "override the nucleotide (.ffn) output path (unset: not written)")
	predictCmd.Flags().StringP("protein-file", "a", "", `override the protein (.faa) output path ("-" for stdout)`)
	predictCmd.Flags().StringP("training-file", "t", "complete", "name of the training parameter set to use")
	predictCmd.Flags().StringP("train-file-dir", "r", "", "directory holding custom training parameter files")
	predictCmd.Flags().IntP("thread-num", "p", 1, "number of worker threads (overrides --threads for this command)")
	predictCmd.Flags().BoolP("complete", "w", false, "assume complete genomic sequences (enables whole-genome refinement)")
	predictCmd.Flags().BoolP("formatted-nucleotide", "f", false, "keep insertion markers and padding in nucleotide output")
	predictCmd.Flags().BoolP("unordered", "u", false, "write gene predictions as soon as they are ready, out of input order")
	predictCmd.Flags().IntP("chunk-size", "c", 100, "number of reads decoded per work unit")
}
