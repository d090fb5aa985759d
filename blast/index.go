// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blast

import (
	"io"
	"math"
	"strings"

	"github.com/biogo/store/llrb"
)

// Query is the summary of the hits for a single query sequence.
type Query struct {
	ID string

	// EValues holds the e-value of each hit
	// in the order they were added.
	EValues []float64

	// Best is the lowest e-value of the
	// query's hits. NaN e-values are ignored.
	Best float64
}

// Compare satisfies the llrb.Comparable interface.
func (q *Query) Compare(b llrb.Comparable) int {
	return strings.Compare(q.ID, b.(*Query).ID)
}

// Index is a collection of query hit summaries ordered by query ID.
type Index struct {
	t llrb.Tree
}

// NewIndex returns an Index holding all the hits read from r.
func NewIndex(r *Reader) (*Index, error) {
	var idx Index
	for {
		h, err := r.Read()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			break
		}
		idx.Add(h)
	}
	return &idx, nil
}

// Add adds the hit h to the index.
func (idx *Index) Add(h *Hit) {
	var q *Query
	c := idx.t.Get(&Query{ID: h.QueryID})
	if c == nil {
		q = &Query{ID: h.QueryID, Best: math.Inf(1)}
		idx.t.Insert(q)
	} else {
		q = c.(*Query)
	}
	q.EValues = append(q.EValues, h.EValue)
	if h.EValue < q.Best {
		q.Best = h.EValue
	}
}

// Get returns the summary for the query with the given id and
// whether the query is present in the index.
func (idx *Index) Get(id string) (Query, bool) {
	c := idx.t.Get(&Query{ID: id})
	if c == nil {
		return Query{}, false
	}
	return *c.(*Query), true
}

// Significant returns whether the query with the given id has at
// least one hit with an e-value strictly less than maxE.
func (idx *Index) Significant(id string, maxE float64) bool {
	q, ok := idx.Get(id)
	return ok && q.Best < maxE
}

// Count returns the number of hits for the query with the given id
// with an e-value strictly less than maxE.
func (idx *Index) Count(id string, maxE float64) int {
	q, ok := idx.Get(id)
	if !ok {
		return 0
	}
	var n int
	for _, e := range q.EValues {
		if e < maxE {
			n++
		}
	}
	return n
}

// Len returns the number of queries in the index.
func (idx *Index) Len() int { return idx.t.Len() }

// Do calls fn on each query summary in ID order until
// fn returns true.
func (idx *Index) Do(fn func(Query) (done bool)) {
	idx.t.Do(func(c llrb.Comparable) bool {
		return fn(*c.(*Query))
	})
}
