// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bgiarc unpacks and packs BGI engine ARC archives: a
// directory of named entries, each possibly BSE-wrapped and/or
// holding a CompressedBG___ image or a DSC FORMAT 1.00 compressed
// block. Unpack sniffs every entry's innermost format and emits
// PNG/OGG/raw/verbatim files; Pack builds a fresh V1 or V2 archive
// from a directory of files without attempting to re-encrypt or
// recompress them (spec Non-goals).
package bgiarc

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"cloudeng.io/errors"

	"github.com/bgitools/bgiarc/internal/arcfmt"
	"github.com/bgitools/bgiarc/internal/dispatch"
)

// Entry describes one unpacked archive member after dispatch.
type Entry struct {
	// Name is the original directory name, unmodified.
	Name string
	// OutputName is Name with dispatch's suffix appended, the name
	// the caller should write the bytes under.
	OutputName string
	Kind       dispatch.Kind
	Bytes      []byte
	// Unwrapped records the chain of formats recognised in this entry,
	// innermost last; empty when no format was recognised.
	Unwrapped []string
}

// Progress is sent once per entry processed, whether or not that
// entry's own dispatch produced an error. Unpack sends reports in
// completion order; Index gives the entry's directory position.
type Progress struct {
	Duration time.Duration
	Index    int
	Total    int
	Name     string
	Err      error
}

type unpackOpts struct {
	progressCh  chan<- Progress
	bestEffort  bool
	concurrency int
}

// UnpackOption configures Unpack.
type UnpackOption func(*unpackOpts)

// SendProgress requests a Progress report after each entry is
// dispatched.
func SendProgress(ch chan<- Progress) UnpackOption {
	return func(o *unpackOpts) {
		o.progressCh = ch
	}
}

// BestEffort causes Unpack to continue past a single entry's dispatch
// error, accumulating all such errors via cloudeng.io/errors.M and
// returning them together rather than stopping at the first one.
func BestEffort(v bool) UnpackOption {
	return func(o *unpackOpts) {
		o.bestEffort = v
	}
}

// Concurrency sets the number of entries dispatched in parallel.
// There is no ordering dependency between archive entries, so unlike
// a single compressed stream's blocks, results never need to be
// reassembled in order -- each result is stored straight into its
// entry's own directory slot. The default is runtime.GOMAXPROCS(-1).
func Concurrency(n int) UnpackOption {
	return func(o *unpackOpts) {
		o.concurrency = n
	}
}

// Open parses raw as an ARC container.
func Open(raw []byte) (*arcfmt.Archive, error) {
	return arcfmt.Parse(raw)
}

type unpackJob struct {
	index int
	entry arcfmt.Entry
	data  []byte
}

type unpackResult struct {
	index int
	entry Entry
	err   error
	start time.Time
}

// Unpack dispatches every entry of ar across a pool of worker
// goroutines, sniffing each one's innermost format and producing the
// bytes and name suffix the caller should write it under. Results are
// returned in directory order regardless of completion order. With
// BestEffort(true) a single entry's dispatch failure does not prevent
// the rest from being unpacked; all failures are accumulated and
// returned together.
func Unpack(ar *arcfmt.Archive, opts ...UnpackOption) ([]Entry, error) {
	o := unpackOpts{concurrency: runtime.GOMAXPROCS(-1)}
	for _, fn := range opts {
		fn(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}

	jobCh := make(chan unpackJob, o.concurrency)
	resultCh := make(chan unpackResult, o.concurrency)

	var workers sync.WaitGroup
	workers.Add(o.concurrency)
	for i := 0; i < o.concurrency; i++ {
		go func() {
			defer workers.Done()
			for job := range jobCh {
				start := time.Now()
				res, err := dispatch.Sniff(job.data)
				if err != nil {
					resultCh <- unpackResult{index: job.index, err: fmt.Errorf("%s: %w", job.entry.Name, err), start: start}
					continue
				}
				resultCh <- unpackResult{
					index: job.index,
					start: start,
					entry: Entry{
						Name:       job.entry.Name,
						OutputName: job.entry.Name + res.Suffix,
						Kind:       res.Kind,
						Bytes:      res.Bytes,
						Unwrapped:  res.Unwrapped,
					},
				}
			}
		}()
	}

	go func() {
		for i, e := range ar.Entries {
			jobCh <- unpackJob{index: i, entry: e, data: ar.Bytes(e)}
		}
		close(jobCh)
	}()

	go func() {
		workers.Wait()
		close(resultCh)
	}()

	// All jobs are submitted regardless of bestEffort -- with no
	// ordering dependency between entries there is nothing to gain by
	// stopping workers early, and always draining resultCh keeps the
	// producer and worker goroutines from blocking forever on a full
	// channel.
	slots := make([]Entry, len(ar.Entries))
	failed := make([]error, len(ar.Entries))
	for r := range resultCh {
		if r.err != nil {
			failed[r.index] = r.err
		} else {
			slots[r.index] = r.entry
		}
		if o.progressCh != nil {
			o.progressCh <- Progress{Duration: time.Since(r.start), Index: r.index, Total: len(ar.Entries), Name: ar.Entries[r.index].Name, Err: r.err}
		}
	}

	errs := &errors.M{}
	out := make([]Entry, 0, len(ar.Entries))
	for i, s := range slots {
		if err := failed[i]; err != nil {
			errs.Append(err)
			if !o.bestEffort {
				break
			}
			continue
		}
		out = append(out, s)
	}
	return out, errs.Err()
}

type packOpts struct {
	version    arcfmt.Version
	progressCh chan<- Progress
}

// PackOption configures Pack.
type PackOption func(*packOpts)

// Version selects the ARC container layout to emit; the default is
// arcfmt.V2.
func Version(v arcfmt.Version) PackOption {
	return func(o *packOpts) {
		o.version = v
	}
}

// PackProgress requests one Progress report per input file, in the
// order given; all reports are sent before the archive is written.
func PackProgress(ch chan<- Progress) PackOption {
	return func(o *packOpts) {
		o.progressCh = ch
	}
}

// Pack builds a fresh ARC archive from files, in the order given.
// Entries are written verbatim: Pack never re-encrypts with BSE or
// recompresses with CBG/DSC, matching the spec's packing Non-goal.
func Pack(files []arcfmt.File, opts ...PackOption) ([]byte, error) {
	o := packOpts{version: arcfmt.V2}
	for _, fn := range opts {
		fn(&o)
	}
	if o.progressCh != nil {
		for i, f := range files {
			o.progressCh <- Progress{Index: i, Total: len(files), Name: f.Name}
		}
	}
	return arcfmt.Write(o.version, files)
}
