// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// nohits filters a multiple fasta sequence file, retaining only the
// sequences that have no significant hit in a BLAST+ tabular report.
//
// A sequence is excluded if the report holds at least one hit for the
// sequence's ID with an e-value strictly less than max-evalue. Sequences
// are written in the order they are read.
//
// Inputs may be gzip or BGZF compressed. Output file names ending in
// ".gz" are written BGZF compressed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/fai"

	"github.com/kortschak/nohits/blast"
	"github.com/kortschak/nohits/internal/xopen"
)

var (
	maxEValue = flag.Float64("max-evalue", 1e-5, "maximum e-value for a hit to be significant")
	width     = flag.Int("width", 0, "output fasta line width (0 for unwrapped)")
	index     = flag.Bool("fai", false, "write a fasta index of the output file")

	outFile  = flag.String("out", "", "output file name (default to stdout)")
	hitsFile = flag.String("hits", "", "write sequences with significant hits to this file")
	errFile  = flag.String("err", "", "log file name (default to stderr)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <sequences.fa> <hits.tsv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 || *width < 0 {
		flag.Usage()
		os.Exit(1)
	}
	if *index && (*outFile == "" || strings.HasSuffix(*outFile, ".gz")) {
		fmt.Fprintln(os.Stderr, "invalid argument: fai requires an uncompressed output file")
		flag.Usage()
		os.Exit(1)
	}

	if *errFile != "" {
		w, err := os.Create(*errFile)
		if err != nil {
			// Oh, the irony.
			log.Fatalf("failed to create log file: %v", err)
		}
		defer w.Close()
		log.SetOutput(w)
	}

	seqs, hits := flag.Arg(0), flag.Arg(1)
	log.Printf("filtering %q by hits in %q with e-value < %g", seqs, hits, *maxEValue)
	s, err := run(seqs, hits, *outFile, *hitsFile, *maxEValue, *width)
	if err != nil {
		log.Fatalf("failed to filter sequences: %v", err)
	}
	log.Printf("kept %d of %d sequences", s.kept, s.read)

	if *index {
		err = writeIndex(*outFile)
		if err != nil {
			log.Fatalf("failed to write fasta index: %v", err)
		}
	}
}

// stats holds the number of sequences read and kept by filter.
type stats struct {
	read, kept int
}

// run filters the sequences in the seqs file by the hits in the hits
// file, writing retained sequences to out, and excluded sequences to
// excl if it is not empty. Sequence lines are wrapped at width
// letters, or not at all if width is zero.
func run(seqs, hits, out, excl string, maxE float64, width int) (s stats, err error) {
	idx, err := readIndex(hits)
	if err != nil {
		return s, err
	}

	in, err := xopen.Open(seqs)
	if err != nil {
		return s, err
	}
	defer in.Close()

	dst, err := xopen.Create(out)
	if err != nil {
		return s, err
	}
	defer func() {
		cerr := dst.Close()
		if err == nil {
			err = cerr
		}
	}()

	var exclWriter seqio.Writer
	if excl != "" {
		var e io.WriteCloser
		e, err = xopen.Create(excl)
		if err != nil {
			return s, err
		}
		defer func() {
			cerr := e.Close()
			if err == nil {
				err = cerr
			}
		}()
		exclWriter = fasta.NewWriter(e, lineWidth(width))
	}

	sc := seqio.NewScanner(fasta.NewReader(in, linear.NewSeq("", nil, alphabet.DNA)))
	return filter(fasta.NewWriter(dst, lineWidth(width)), exclWriter, sc, idx, maxE)
}

// lineWidth returns the fasta.Writer width for a requested line
// width. A zero width writes each sequence on a single line.
func lineWidth(width int) int {
	if width == 0 {
		return math.MaxInt
	}
	return width
}

// readIndex returns a blast.Index of the hits in the named file.
func readIndex(name string) (*blast.Index, error) {
	f, err := xopen.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	idx, err := blast.NewIndex(blast.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read hits from %q: %w", name, err)
	}
	return idx, nil
}

// ErrMissingID is returned when a sequence without an ID is read.
var ErrMissingID = errors.New("nohits: missing sequence id")

// filter writes each sequence read by sc to w if idx has no hit for the
// sequence with an e-value less than maxE. Sequences that have such a hit
// are written to excl if it is not nil.
func filter(w, excl seqio.Writer, sc *seqio.Scanner, idx *blast.Index, maxE float64) (stats, error) {
	var s stats
	for sc.Next() {
		seq := sc.Seq()
		s.read++
		id := seq.Name()
		if id == "" {
			return s, fmt.Errorf("%w: sequence %d", ErrMissingID, s.read)
		}
		if idx.Significant(id, maxE) {
			if excl != nil {
				_, err := excl.Write(seq)
				if err != nil {
					return s, err
				}
			}
			continue
		}
		_, err := w.Write(seq)
		if err != nil {
			return s, err
		}
		s.kept++
	}
	err := sc.Error()
	if err != nil {
		return s, fmt.Errorf("error during fasta read: %w", err)
	}
	return s, nil
}

// writeIndex writes a fasta index for the named file to name.fai.
func writeIndex(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	idx, err := fai.NewIndex(f)
	if err != nil {
		return err
	}
	out, err := os.Create(name + ".fai")
	if err != nil {
		return err
	}
	err = fai.WriteTo(out, idx)
	if err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
