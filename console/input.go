// Copyright (c) Microsoft. All rights reserved.

package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type scanResult struct {
	line string
	ok   bool
	err  error
}

// lineReader scans on its own goroutine, one line per request, so a read
// blocked on a terminal does not hold up cancellation.
type lineReader struct {
	in    *bufio.Scanner
	start sync.Once
	reqs  chan struct{}
	lines chan scanResult
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		in:    bufio.NewScanner(r),
		reqs:  make(chan struct{}),
		lines: make(chan scanResult, 1),
	}
}

// read returns the next line without its line ending. ok is false at end of
// input. It returns ctx.Err() as soon as ctx is done, leaving any pending
// scan to finish in the background.
func (r *lineReader) read(ctx context.Context) (string, bool, error) {
	r.start.Do(func() { go r.loop() })

	select {
	case r.reqs <- struct{}{}:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	select {
	case res := <-r.lines:
		return res.line, res.ok, res.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (r *lineReader) loop() {
	for range r.reqs {
		var res scanResult
		if r.in.Scan() {
			res = scanResult{line: strings.TrimRight(r.in.Text(), "\r"), ok: true}
		} else if err := r.in.Err(); err != nil {
			res.err = fmt.Errorf("read input: %w", err)
		}
		r.lines <- res
	}
}

// close stops the goroutine once its current scan, if any, returns.
func (r *lineReader) close() { close(r.reqs) }
