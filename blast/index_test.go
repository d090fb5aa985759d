// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blast

import (
	"math"
	"strings"

	"gopkg.in/check.v1"
)

func (s *S) TestIndex(c *check.C) {
	idx, err := NewIndex(NewReader(strings.NewReader(outfmt6 +
		"seq0\tchr3\t99.00\t50\t0\t0\t1\t50\t1\t50\t1e-5\t90\n")))
	c.Assert(err, check.Equals, nil)
	c.Check(idx.Len(), check.Equals, 3)

	q, ok := idx.Get("seq1")
	c.Assert(ok, check.Equals, true)
	c.Check(q.EValues, check.DeepEquals, []float64{1e-50, 2.5e-10})
	c.Check(q.Best, check.Equals, 1e-50)

	_, ok = idx.Get("seq9")
	c.Check(ok, check.Equals, false)

	for _, t := range []struct {
		id    string
		maxE  float64
		sig   bool
		count int
	}{
		{id: "seq1", maxE: 1e-5, sig: true, count: 2},
		{id: "seq1", maxE: 1e-20, sig: true, count: 1},
		{id: "seq1", maxE: 1e-50, sig: false, count: 0},
		{id: "seq2", maxE: 1e-5, sig: false, count: 0},
		{id: "seq2", maxE: 0.01, sig: true, count: 1},

		// Ties are not significant.
		{id: "seq0", maxE: 1e-5, sig: false, count: 0},

		{id: "seq9", maxE: 1, sig: false, count: 0},
		{id: "seq1", maxE: -1, sig: false, count: 0},
		{id: "seq1", maxE: math.NaN(), sig: false, count: 0},
		{id: "seq2", maxE: math.Inf(1), sig: true, count: 1},
	} {
		c.Check(idx.Significant(t.id, t.maxE), check.Equals, t.sig, check.Commentf("id=%s maxE=%v", t.id, t.maxE))
		c.Check(idx.Count(t.id, t.maxE), check.Equals, t.count, check.Commentf("id=%s maxE=%v", t.id, t.maxE))
	}
}

func (s *S) TestIndexNaN(c *check.C) {
	var idx Index
	idx.Add(&Hit{QueryID: "q", EValue: math.NaN()})
	c.Check(idx.Significant("q", math.Inf(1)), check.Equals, false)
	idx.Add(&Hit{QueryID: "q", EValue: 0})
	c.Check(idx.Significant("q", 1e-300), check.Equals, true)
	q, _ := idx.Get("q")
	c.Check(q.Best, check.Equals, 0.0)
	c.Check(q.EValues, check.HasLen, 2)
}

func (s *S) TestIndexDo(c *check.C) {
	var idx Index
	for _, id := range []string{"c", "a", "b", "a"} {
		idx.Add(&Hit{QueryID: id, EValue: 1})
	}
	var got []string
	idx.Do(func(q Query) bool {
		got = append(got, q.ID)
		return false
	})
	c.Check(got, check.DeepEquals, []string{"a", "b", "c"})

	got = got[:0]
	idx.Do(func(q Query) bool {
		got = append(got, q.ID)
		return q.ID == "b"
	})
	c.Check(got, check.DeepEquals, []string{"a", "b"})
}
