// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command bgiarc unpacks and packs BGI engine ARC archives.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/errors"
	"github.com/grailbio/base/file"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/bgitools/bgiarc"
	"github.com/bgitools/bgiarc/internal/arcfmt"
	"github.com/bgitools/bgiarc/internal/dispatch"
)

type CommonFlags struct {
	Verbose bool `subcmd:"verbose,false,verbose debug/trace information"`
}

type unpackFlags struct {
	CommonFlags
	ProgressBar bool `subcmd:"progress,true,display a progress bar"`
	BestEffort  bool `subcmd:"best-effort,true,continue past entries that fail to dispatch, reporting all failures at the end"`
}

type packFlags struct {
	CommonFlags
	Version     int  `subcmd:"version,2,'ARC layout version to emit: 1 or 2'"`
	ProgressBar bool `subcmd:"progress,true,display a progress bar"`
}

type listFlags struct {
	CommonFlags
}

var cmdSet *subcmd.CommandSet

func init() {
	unpackCmd := subcmd.NewCommand("unpack",
		subcmd.MustRegisterFlagStruct(&unpackFlags{}, nil, nil),
		unpack, subcmd.AtLeastNArguments(1))
	unpackCmd.Document(`unpack an ARC archive into a directory, decoding CompressedBG___ images to PNG and DSC FORMAT 1.00 blocks where possible.`,
		`arc-file`, `output-dir (defaults to arc-file without its extension)`)

	packCmd := subcmd.NewCommand("pack",
		subcmd.MustRegisterFlagStruct(&packFlags{}, nil, nil),
		pack, subcmd.AtLeastNArguments(1))
	packCmd.Document(`pack a directory of files into a fresh ARC archive. Files are stored verbatim; BSE/CBG/DSC encoding is never reapplied.`,
		`input-dir`, `output-file (defaults to input-dir with .arc appended)`)

	listCmd := subcmd.NewCommand("list",
		subcmd.MustRegisterFlagStruct(&listFlags{}, nil, nil),
		list, subcmd.ExactlyNumArguments(1))
	listCmd.Document(`list an ARC archive's directory without decoding entry payloads.`)

	cmdSet = subcmd.NewCommandSet(unpackCmd, packCmd, listCmd)
	cmdSet.Document(`unpack, pack and inspect BGI engine ARC archives.`)
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

func progressBar(ctx context.Context, wr io.Writer, ch chan bgiarc.Progress, total int) {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(wr),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				fmt.Fprintf(wr, "\n")
				return
			}
			bar.Add(1)
			if p.Err != nil {
				log.Printf("%s: %v", p.Name, p.Err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func unpack(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*unpackFlags)

	arcPath := args[0]
	outDir := strippedExt(arcPath)
	if len(args) > 1 {
		outDir = args[1]
	}

	raw, err := os.ReadFile(arcPath)
	if err != nil {
		return err
	}
	ar, err := bgiarc.Open(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", arcPath, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	var (
		progressCh chan bgiarc.Progress
		wg         sync.WaitGroup
		isTTY      = terminal.IsTerminal(int(os.Stdout.Fd()))
	)
	if cl.ProgressBar {
		progressCh = make(chan bgiarc.Progress, len(ar.Entries))
		wr := os.Stdout
		if !isTTY {
			wr = os.Stderr
		}
		wg.Add(1)
		go func() {
			progressBar(ctx, wr, progressCh, len(ar.Entries))
			wg.Done()
		}()
	}

	entries, unpackErr := bgiarc.Unpack(ar,
		bgiarc.BestEffort(cl.BestEffort),
		bgiarc.SendProgress(progressCh))

	if progressCh != nil {
		close(progressCh)
		wg.Wait()
	}

	errs := &errors.M{}
	errs.Append(unpackErr)
	for _, e := range entries {
		dst := filepath.Join(outDir, e.OutputName)
		if cl.Verbose && len(e.Unwrapped) > 0 {
			log.Printf("%s: unwrapped %v", e.Name, e.Unwrapped)
		}
		wfile, err := file.Create(ctx, dst)
		if err != nil {
			errs.Append(fmt.Errorf("%s: %w", dst, err))
			continue
		}
		if _, err := wfile.Writer(ctx).Write(e.Bytes); err != nil {
			errs.Append(fmt.Errorf("%s: %w", dst, err))
		}
		errs.Append(wfile.Close(ctx))
	}
	return errs.Err()
}

func pack(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*packFlags)

	inDir := args[0]
	outFile := inDir + ".arc"
	if len(args) > 1 {
		outFile = args[1]
	}

	dirEntries, err := os.ReadDir(inDir)
	if err != nil {
		return err
	}
	sort.Slice(dirEntries, func(i, j int) bool { return dirEntries[i].Name() < dirEntries[j].Name() })

	var files []arcfmt.File
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(inDir, de.Name()))
		if err != nil {
			return err
		}
		if cl.Verbose {
			log.Printf("packing %s (%d bytes)", de.Name(), len(content))
		}
		files = append(files, arcfmt.File{Name: de.Name(), Content: content})
	}

	var (
		progressCh chan bgiarc.Progress
		wg         sync.WaitGroup
	)
	if cl.ProgressBar {
		progressCh = make(chan bgiarc.Progress, len(files))
		wg.Add(1)
		go func() {
			progressBar(ctx, os.Stdout, progressCh, len(files))
			wg.Done()
		}()
	}

	version := arcfmt.V2
	if cl.Version == 1 {
		version = arcfmt.V1
	}
	raw, err := bgiarc.Pack(files, bgiarc.Version(version), bgiarc.PackProgress(progressCh))

	if progressCh != nil {
		close(progressCh)
		wg.Wait()
	}
	if err != nil {
		return err
	}
	return os.WriteFile(outFile, raw, 0o644)
}

func list(ctx context.Context, values interface{}, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	ar, err := bgiarc.Open(raw)
	if err != nil {
		return err
	}
	fmt.Printf("version %d, %d entries\n", ar.Version, len(ar.Entries))
	for _, e := range ar.Entries {
		fmt.Printf("%-40s %10d  %s\n", e.Name, e.Size, dispatch.PeekMagic(ar.Bytes(e)))
	}
	return nil
}

func strippedExt(p string) string {
	return p[:len(p)-len(filepath.Ext(p))]
}
