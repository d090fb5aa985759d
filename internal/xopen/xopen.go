// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xopen opens plain, gzip and BGZF compressed files.
package xopen

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"
)

// IsBGZF returns whether h begins with a BGZF block header.
func IsBGZF(h []byte) bool {
	const (
		id1, id2 = 0x1f, 0x8b
		deflate  = 8
		fextra   = 1 << 2
	)
	return len(h) >= 14 &&
		h[0] == id1 && h[1] == id2 && h[2] == deflate && h[3]&fextra != 0 &&
		h[12] == 'B' && h[13] == 'C'
}

// IsGzip returns whether h begins with the gzip magic number.
func IsGzip(h []byte) bool {
	return len(h) >= 2 && h[0] == 0x1f && h[1] == 0x8b
}

// multiCloser closes each of its elements in order, returning
// the first error.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var err error
	for _, c := range m {
		cerr := c.Close()
		if err == nil {
			err = cerr
		}
	}
	return err
}

type readCloser struct {
	io.Reader
	multiCloser
}

// Open opens the named file for reading, decompressing BGZF
// and gzip data. The name "-" reads from stdin.
func Open(name string) (io.ReadCloser, error) {
	var (
		f io.Reader = os.Stdin
		c io.Closer = nopCloser{}
	)
	if name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		f, c = file, file
	}
	br := bufio.NewReader(f)
	h, _ := br.Peek(18)
	switch {
	case IsBGZF(h):
		r, err := bgzf.NewReader(br, 1)
		if err != nil {
			c.Close()
			return nil, err
		}
		return readCloser{r, multiCloser{r, c}}, nil
	case IsGzip(h):
		r, err := gzip.NewReader(br)
		if err != nil {
			c.Close()
			return nil, err
		}
		return readCloser{r, multiCloser{r, c}}, nil
	default:
		return readCloser{br, multiCloser{c}}, nil
	}
}

type writeCloser struct {
	*bufio.Writer
	multiCloser
}

// Close flushes buffered data and closes the underlying writers.
func (w writeCloser) Close() error {
	err := w.Flush()
	cerr := w.multiCloser.Close()
	if err == nil {
		err = cerr
	}
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Create creates the named file for writing. Names ending in
// ".gz" are written BGZF compressed. An empty name writes to stdout.
func Create(name string) (io.WriteCloser, error) {
	if name == "" {
		return writeCloser{bufio.NewWriter(os.Stdout), multiCloser{nopCloser{}}}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(name, ".gz") {
		bg := bgzf.NewWriter(f, 1)
		return writeCloser{bufio.NewWriter(bg), multiCloser{bg, f}}, nil
	}
	return writeCloser{bufio.NewWriter(f), multiCloser{f}}, nil
}
