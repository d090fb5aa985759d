// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// evalplot renders a histogram of -log10(e-value) for the hits in a
// BLAST+ tabular report, marking the significance threshold used by
// nohits.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kortschak/nohits/blast"
	"github.com/kortschak/nohits/internal/xopen"
)

var (
	in     = flag.String("in", "", "specify input BLAST tabular file, optionally gzip or BGZF compressed (required)")
	out    = flag.String("out", "evalues.svg", "specify output file name: eps, jpg, jpeg, pdf, png, svg or tiff")
	thresh = flag.Float64("max-evalue", 1e-5, "specify the e-value threshold to mark (<= 0 for none)")
	bins   = flag.Int("bins", 50, "specify number of histogram bins")
	best   = flag.Bool("best", false, "only plot the best hit for each query")
)

func main() {
	flag.Parse()
	if *in == "" || *bins < 1 || !validFormat(*out) {
		flag.Usage()
		os.Exit(1)
	}

	idx, err := readHits(*in)
	if err != nil {
		log.Fatalf("failed to read hits: %v", err)
	}

	v := scores(idx, *best)
	if len(v) == 0 {
		log.Fatalf("no hits in %q", *in)
	}
	mean, median := summarize(v)
	log.Printf("queries=%d scores=%d mean=%.2f median=%.2f", idx.Len(), len(v), mean, median)

	p, err := render(v, *thresh, *bins)
	if err != nil {
		log.Fatalf("failed to render plot: %v", err)
	}
	err = p.Save(15*vg.Centimeter, 10*vg.Centimeter, *out)
	if err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
}

// readHits returns an index of the hits in the named file.
func readHits(name string) (*blast.Index, error) {
	f, err := xopen.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return blast.NewIndex(blast.NewReader(f))
}

func validFormat(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, s := range []string{"eps", "jpg", "jpeg", "pdf", "png", "svg", "tiff"} {
		if ext == s {
			return true
		}
	}
	return false
}

// score returns -log10(e). Zero e-values are given the score of
// the smallest representable positive e-value.
func score(e float64) float64 {
	if e <= 0 {
		e = math.SmallestNonzeroFloat64
	}
	return -math.Log10(e)
}

// scores returns the scores of the hits in idx. If best is true
// only the best hit for each query is included. Non-finite scores
// are omitted.
func scores(idx *blast.Index, best bool) plotter.Values {
	var v plotter.Values
	add := func(e float64) {
		s := score(e)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return
		}
		v = append(v, s)
	}
	idx.Do(func(q blast.Query) bool {
		if best {
			add(q.Best)
			return false
		}
		for _, e := range q.EValues {
			add(e)
		}
		return false
	})
	return v
}

// summarize returns the mean and median of v.
func summarize(v []float64) (mean, median float64) {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	return stat.Mean(s, nil), stat.Quantile(0.5, stat.Empirical, s, nil)
}

// render returns a histogram of v with the score of thresh marked.
func render(v plotter.Values, thresh float64, bins int) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = "BLAST hit e-values"
	p.X.Label.Text = "-log10(e-value)"
	p.Y.Label.Text = "hits"

	h, err := plotter.NewHist(v, bins)
	if err != nil {
		return nil, err
	}
	p.Add(h)

	if thresh > 0 && !math.IsInf(thresh, 1) {
		var top float64
		for _, b := range h.Bins {
			top = math.Max(top, b.Weight)
		}
		t := score(thresh)
		l, err := plotter.NewLine(plotter.XYs{{X: t, Y: 0}, {X: t, Y: top}})
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = color.RGBA{R: 196, A: 255}
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("e-value < %g", thresh), l)
	}
	return p, nil
}
