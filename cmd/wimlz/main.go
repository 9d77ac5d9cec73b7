// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command wimlz compresses and decompresses files as sequences of
// independent LZX or LZMS chunks.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/kr/pretty"
	"github.com/ogier/pflag"
	"github.com/ulikunitz/wimlz"
	"github.com/ulikunitz/wimlz/slot"
)

const usageStr = `Usage: wimlz [OPTION]... [FILE]...
Compress or uncompress FILEs as a sequence of LZX or LZMS chunks (by
default, compress FILES in place).

  -c, --stdout          write to standard output and don't delete input files
  -d, --decompress      force decompression
  -f, --force           force overwrite of output file
  -F, --format=NAME     chunk format lzx or lzms; default is lzx
  -s, --chunk-size=N    uncompressed chunk size; default is 32768
      --no-x86          don't translate x86 call instructions
      --dump            print the slot tables of the format and exit
  -h, --help            give this help
  -k, --keep            keep (don't delete) input files
  -v, --verbose         report the compression ratio of every file

With no file, or when FILE is -, read standard input.
`

const defaultChunkSize = 32768

type options struct {
	stdout     bool
	decompress bool
	force      bool
	keep       bool
	verbose    bool
	format     wimlz.Format
	chunkSize  int
	cfg        wimlz.Config
}

func usage(w io.Writer) {
	fmt.Fprint(w, usageStr)
}

// dump prints the slot tables used by the format.
func dump(w io.Writer, f wimlz.Format) {
	switch f {
	case wimlz.LZX:
		t := slot.LZX()
		fmt.Fprintf(w, "LZX position slots: %d\n", t.Len())
		pretty.Fprintf(w, "bases %# v\n", t.Bases())
	case wimlz.LZMS:
		o := slot.LZMSOffsets()
		fmt.Fprintf(w, "LZMS offset slots: %d\n", o.Len())
		pretty.Fprintf(w, "bases %# v\n", o.Bases())
		l := slot.LZMSLengths()
		fmt.Fprintf(w, "LZMS length slots: %d\n", l.Len())
		pretty.Fprintf(w, "bases %# v\n", l.Bases())
	}
}

func main() {
	// setup logger
	cmdName := filepath.Base(os.Args[0])
	log.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	log.SetFlags(0)

	// initialize flags
	pflag.CommandLine = pflag.NewFlagSet(cmdName, pflag.ExitOnError)
	pflag.SetInterspersed(true)
	pflag.Usage = func() { usage(os.Stderr); os.Exit(1) }
	var (
		help       = pflag.BoolP("help", "h", false, "")
		stdout     = pflag.BoolP("stdout", "c", false, "")
		decompress = pflag.BoolP("decompress", "d", false, "")
		force      = pflag.BoolP("force", "f", false, "")
		keep       = pflag.BoolP("keep", "k", false, "")
		verbose    = pflag.BoolP("verbose", "v", false, "")
		formatName = pflag.StringP("format", "F", "lzx", "")
		chunkSize  = pflag.IntP("chunk-size", "s", defaultChunkSize, "")
		noX86      = pflag.Bool("no-x86", false, "")
		dumpTables = pflag.Bool("dump", false, "")
	)
	pflag.Parse()

	if *help {
		usage(os.Stdout)
		os.Exit(0)
	}
	f, err := wimlz.ParseFormat(*formatName)
	if err != nil {
		log.Fatal(err)
	}
	if *dumpTables {
		dump(os.Stdout, f)
		os.Exit(0)
	}
	if !(1 <= *chunkSize && *chunkSize <= f.MaxChunkSize()) {
		log.Fatalf("chunk size %d out of range [1,%d] for %v",
			*chunkSize, f.MaxChunkSize(), f)
	}

	opts := &options{
		stdout:     *stdout,
		decompress: *decompress,
		force:      *force,
		keep:       *keep,
		verbose:    *verbose,
		format:     f,
		chunkSize:  *chunkSize,
		cfg:        wimlz.Config{DisableX86: *noX86},
	}

	args := pflag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}
	failed := false
	for _, path := range args {
		if !processFile(path, opts) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
