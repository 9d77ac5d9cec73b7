// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/wimlz"
)

// A packed file starts with the magic, the format byte and the chunk size
// as uvarint. Every chunk is written as the uvarint uncompressed size
// followed by the uvarint compressed size and the compressed data. A
// compressed size of zero marks a stored chunk. An uncompressed size of
// zero terminates the file.
var magic = []byte("WLZ\x01")

const wlzSuffix = ".wlz"

type packer interface {
	outputPaths(path string) (outputPath, tmpPath string, err error)
	pack(w io.Writer, r io.Reader, opts *options) (n int64, err error)
}

type chunkPacker struct{}

func (p chunkPacker) outputPaths(path string) (out, tmp string, err error) {
	if path == "-" {
		return "-", "-", nil
	}
	if path == "" {
		err = errors.New("path is empty")
		return
	}
	if strings.HasSuffix(path, wlzSuffix) {
		err = fmt.Errorf("path %s has suffix %s -- ignored",
			path, wlzSuffix)
		return
	}
	out = path + wlzSuffix
	tmp = out + ".pack"
	return
}

func writeUvarint(w io.Writer, x uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], x)
	_, err := w.Write(buf[:n])
	return err
}

// pack compresses r chunk by chunk. It returns the number of bytes read.
func (p chunkPacker) pack(w io.Writer, r io.Reader, opts *options) (n int64,
	err error) {

	if w == nil {
		panic("writer w is nil")
	}
	if r == nil {
		panic("reader r is nil")
	}
	c, err := wimlz.NewCompressor(opts.format, opts.cfg)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(w)
	if _, err = bw.Write(magic); err != nil {
		return 0, err
	}
	if err = bw.WriteByte(byte(opts.format)); err != nil {
		return 0, err
	}
	if err = writeUvarint(bw, uint64(opts.chunkSize)); err != nil {
		return 0, err
	}
	chunk := make([]byte, opts.chunkSize)
	for {
		k, err := io.ReadFull(r, chunk)
		if k == 0 {
			if err == io.EOF {
				break
			}
			return n, err
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return n, err
		}
		n += int64(k)
		z, err := c.Compress(chunk[:k])
		if err != nil {
			return n, err
		}
		stored := len(z) >= k
		if err = writeUvarint(bw, uint64(k)); err != nil {
			return n, err
		}
		if stored {
			if err = writeUvarint(bw, 0); err != nil {
				return n, err
			}
			_, err = bw.Write(chunk[:k])
		} else {
			if err = writeUvarint(bw, uint64(len(z))); err != nil {
				return n, err
			}
			_, err = bw.Write(z)
		}
		if err != nil {
			return n, err
		}
	}
	if err = writeUvarint(bw, 0); err != nil {
		return n, err
	}
	err = bw.Flush()
	return n, err
}

type chunkUnpacker struct{}

func (u chunkUnpacker) outputPaths(path string) (out, tmp string, err error) {
	if path == "-" {
		return "-", "-", nil
	}
	if !strings.HasSuffix(path, wlzSuffix) {
		err = fmt.Errorf("path %s has no suffix %s",
			path, wlzSuffix)
		return
	}
	base := filepath.Base(path)
	if base == wlzSuffix {
		err = fmt.Errorf(
			"path %s has only suffix %s as filename",
			path, wlzSuffix)
		return
	}
	out = path[:len(path)-len(wlzSuffix)]
	tmp = out + ".unpack"
	return
}

var errFraming = errors.New("invalid wlz file")

// readSize reads a uvarint that must not exceed max.
func readSize(br *bufio.Reader, max int) (int, error) {
	x, err := binary.ReadUvarint(br)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	if x > uint64(max) {
		return 0, errFraming
	}
	return int(x), nil
}

// pack actually unpacks. The format and the chunk size are taken from the
// file header. It returns the number of bytes written.
func (u chunkUnpacker) pack(w io.Writer, r io.Reader, opts *options) (n int64,
	err error) {

	if w == nil {
		panic("writer w is nil")
	}
	if r == nil {
		panic("reader r is nil")
	}
	br := bufio.NewReader(r)
	hdr := make([]byte, len(magic)+1)
	if _, err = io.ReadFull(br, hdr); err != nil {
		return 0, err
	}
	if string(hdr[:len(magic)]) != string(magic) {
		return 0, errFraming
	}
	f := wimlz.Format(hdr[len(magic)])
	if f != wimlz.LZX && f != wimlz.LZMS {
		return 0, fmt.Errorf("unsupported format %v", f)
	}
	chunkSize, err := readSize(br, f.MaxChunkSize())
	if err != nil {
		return 0, err
	}
	d, err := wimlz.NewDecompressor(f, opts.cfg)
	if err != nil {
		return 0, err
	}
	var (
		chunk []byte
		z     []byte
	)
	for {
		k, err := readSize(br, chunkSize)
		if err != nil {
			return n, err
		}
		if k == 0 {
			break
		}
		m, err := readSize(br, k)
		if err != nil {
			return n, err
		}
		if cap(chunk) < k {
			chunk = make([]byte, chunkSize)
		}
		chunk = chunk[:k]
		if m == 0 {
			if _, err = io.ReadFull(br, chunk); err != nil {
				return n, err
			}
		} else {
			if cap(z) < m {
				z = make([]byte, chunkSize)
			}
			z = z[:m]
			if _, err = io.ReadFull(br, z); err != nil {
				return n, err
			}
			if err = d.Decompress(chunk, z); err != nil {
				return n, err
			}
		}
		if _, err = w.Write(chunk); err != nil {
			return n, err
		}
		n += int64(k)
	}
	return n, nil
}

func signalHandler(tmpPath string) chan<- struct{} {
	quit := make(chan struct{})
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt)
	go func() {
		select {
		case <-quit:
			signal.Stop(sigch)
			return
		case <-sigch:
			if tmpPath != "-" {
				os.Remove(tmpPath)
			}
			os.Exit(7)
		}
	}()
	return quit
}

func packFile(pck packer, path, tmpPath string, opts *options) (n int64,
	err error) {

	// open reader
	var r *os.File
	if path == "-" {
		r = os.Stdin
	} else {
		fi, err := os.Lstat(path)
		if err != nil {
			return 0, err
		}
		if !fi.Mode().IsRegular() {
			return 0, fmt.Errorf("%s is not a regular file", path)
		}
		if r, err = os.Open(path); err != nil {
			return 0, err
		}
	}
	defer func() {
		if err != nil {
			r.Close()
		} else {
			err = r.Close()
		}
	}()

	// open writer
	var w *os.File
	if tmpPath == "-" {
		w = os.Stdout
	} else {
		if opts.force {
			os.Remove(tmpPath)
		}
		w, err = os.OpenFile(tmpPath,
			os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
		if err != nil {
			return 0, err
		}
		defer func() {
			if err != nil {
				w.Close()
			} else {
				err = w.Close()
			}
		}()
	}

	return pck.pack(w, r, opts)
}

// userPathError represents a path error presentable to a user. In
// difference to os.PathError it removes the information of the
// operation returning the error.
type userPathError struct {
	Path string
	Err  error
}

// Error provides the error string for the path error.
func (e *userPathError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// userError converts a path error into an error message without the
// operation that failed.
func userError(err error) error {
	pe, ok := err.(*os.PathError)
	if !ok {
		return err
	}
	return &userPathError{Path: pe.Path, Err: pe.Err}
}

// processFile packs or unpacks a single file. It returns false if an
// error has been reported.
func processFile(path string, opts *options) bool {
	var pck packer
	if opts.decompress {
		pck = chunkUnpacker{}
	} else {
		pck = chunkPacker{}
	}
	outputPath, tmpPath, err := pck.outputPaths(path)
	if err != nil {
		log.Print(userError(err))
		return false
	}
	if opts.stdout {
		outputPath, tmpPath = "-", "-"
	}
	if outputPath != "-" {
		_, err = os.Lstat(outputPath)
		if err == nil && !opts.force {
			log.Printf("file %s exists", outputPath)
			return false
		}
	}
	defer func() {
		if tmpPath != "-" {
			os.Remove(tmpPath)
		}
	}()
	quit := signalHandler(tmpPath)
	defer close(quit)

	n, err := packFile(pck, path, tmpPath, opts)
	if err != nil {
		log.Printf("%s: %s", path, userError(err))
		return false
	}
	if opts.verbose && !opts.decompress && tmpPath != "-" {
		if fi, err := os.Stat(tmpPath); err == nil && n > 0 {
			log.Printf("%s: %d -> %d bytes (%.1f%%)", path, n,
				fi.Size(), 100*float64(fi.Size())/float64(n))
		}
	}
	if tmpPath != "-" && outputPath != "-" {
		if err = os.Rename(tmpPath, outputPath); err != nil {
			log.Print(userError(err))
			return false
		}
	}
	if !opts.keep && !opts.stdout && path != "-" {
		if err = os.Remove(path); err != nil {
			log.Print(userError(err))
			return false
		}
	}
	return true
}
