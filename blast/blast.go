// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blast provides reading of NCBI BLAST+ tabular output.
//
// Both the plain tabular format (-outfmt 6) and the commented format
// (-outfmt 7) are handled. In the commented format a "# Fields:" line
// defines the column layout of the rows that follow it.
package blast

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrMissingField = errors.New("blast: missing required field")
	ErrTooFewFields = errors.New("blast: too few fields")
)

type field int

const (
	queryField field = iota
	subjectField
	identityField
	lengthField
	mismatchField
	gapOpenField
	qStartField
	qEndField
	sStartField
	sEndField
	evalueField
	bitScoreField

	numFields
)

// fieldNames maps BLAST+ "# Fields:" column names to fields.
var fieldNames = map[string]field{
	"query id":      queryField,
	"query acc.ver": queryField,
	"query acc.":    queryField,

	"subject id":      subjectField,
	"subject acc.ver": subjectField,
	"subject acc.":    subjectField,

	"% identity":       identityField,
	"alignment length": lengthField,
	"mismatches":       mismatchField,
	"gap opens":        gapOpenField,
	"q. start":         qStartField,
	"q. end":           qEndField,
	"s. start":         sStartField,
	"s. end":           sEndField,
	"evalue":           evalueField,
	"bit score":        bitScoreField,
}

// layout holds the column index of each field, or -1 if the
// field is not present.
type layout struct {
	cols [numFields]int
	min  int
}

var defaultLayout = func() layout {
	var l layout
	for i := range l.cols {
		l.cols[i] = i
	}
	l.min = int(numFields)
	return l
}()

// parseFields returns the layout described by the text following
// "# Fields:" in a commented BLAST+ report.
func parseFields(s string) (layout, error) {
	var l layout
	for i := range l.cols {
		l.cols[i] = -1
	}
	for i, name := range strings.Split(s, ",") {
		f, ok := fieldNames[strings.TrimSpace(name)]
		if !ok || l.cols[f] >= 0 {
			continue
		}
		l.cols[f] = i
		if i >= l.min {
			l.min = i + 1
		}
	}
	if l.cols[queryField] < 0 {
		return l, fmt.Errorf("%w: query id", ErrMissingField)
	}
	if l.cols[evalueField] < 0 {
		return l, fmt.Errorf("%w: evalue", ErrMissingField)
	}
	return l, nil
}

// Hit is a single BLAST alignment. Fields absent from the
// column layout of the report are left zero.
type Hit struct {
	QueryID   string
	SubjectID string

	Identity   float64
	Length     int
	Mismatches int
	GapOpens   int

	QueryStart   int
	QueryEnd     int
	SubjectStart int
	SubjectEnd   int

	EValue   float64
	BitScore float64
}

func handlePanic(err *error) {
	r := recover()
	if r != nil {
		switch r := r.(type) {
		case error:
			*err = r
		default:
			panic(r)
		}
	}
}

// newHit returns a Hit parsed from the tab separated fields of a
// BLAST tabular line using the column layout l.
func newHit(fields []string, l layout) (h *Hit, err error) {
	if len(fields) < l.min {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrTooFewFields, len(fields), l.min)
	}
	defer handlePanic(&err)

	str := func(f field) string {
		if l.cols[f] < 0 {
			return ""
		}
		return fields[l.cols[f]]
	}
	atoi := func(f field) int {
		if l.cols[f] < 0 {
			return 0
		}
		return mustAtoi(fields[l.cols[f]])
	}
	atof := func(f field) float64 {
		if l.cols[f] < 0 {
			return 0
		}
		return mustAtof(fields[l.cols[f]])
	}
	return &Hit{
		QueryID:   str(queryField),
		SubjectID: str(subjectField),

		Identity:   atof(identityField),
		Length:     atoi(lengthField),
		Mismatches: atoi(mismatchField),
		GapOpens:   atoi(gapOpenField),

		QueryStart:   atoi(qStartField),
		QueryEnd:     atoi(qEndField),
		SubjectStart: atoi(sStartField),
		SubjectEnd:   atoi(sEndField),

		EValue:   atof(evalueField),
		BitScore: atof(bitScoreField),
	}, nil
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		panic(err)
	}
	return i
}

func mustAtof(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		panic(err)
	}
	return f
}

// Reader reads BLAST+ tabular hits.
type Reader struct {
	sc     *bufio.Scanner
	line   int
	layout layout
}

// NewReader returns a Reader reading from r. The default twelve
// column layout is used until a "# Fields:" comment is read.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &Reader{sc: sc, layout: defaultLayout}
}

// Read returns the next hit in the report. At the end of the
// report Read returns io.EOF.
func (r *Reader) Read() (*Hit, error) {
	for r.sc.Scan() {
		r.line++
		line := strings.TrimRight(r.sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			const fieldsTag = "Fields:"
			c := strings.TrimSpace(line[1:])
			if !strings.HasPrefix(c, fieldsTag) {
				continue
			}
			l, err := parseFields(c[len(fieldsTag):])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.line, err)
			}
			r.layout = l
			continue
		}
		h, err := newHit(strings.Split(line, "\t"), r.layout)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return h, nil
	}
	err := r.sc.Err()
	if err != nil {
		return nil, err
	}
	return nil, io.EOF
}
