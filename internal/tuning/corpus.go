// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package tuning supports the measurement of compression ratios for test
// corpora.
package tuning

import (
	"bytes"
	"fmt"
	"io/fs"

	"github.com/ulikunitz/wimlz"
)

// File is a file of a corpus.
type File struct {
	Name string
	Data []byte
}

// Files reads all regular files of the corpus.
func Files(corpus fs.FS) (files []File, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, File{Name: path, Data: data})
			return nil
		})
	return files, err
}

// Size returns the total size of the files.
func Size(files []File) int64 {
	n := int64(0)
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}

// Chunks calls fn for the consecutive chunks of p. Only the last chunk
// may be shorter than chunkSize.
func Chunks(p []byte, chunkSize int, fn func(chunk []byte) error) error {
	if chunkSize <= 0 {
		return fmt.Errorf("tuning: chunk size %d must be positive",
			chunkSize)
	}
	for len(p) > 0 {
		n := chunkSize
		if n > len(p) {
			n = len(p)
		}
		if err := fn(p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Compress compresses the files in chunks of the given size and returns
// the total compressed size. If verify is set every chunk is decompressed
// and compared with the original.
func Compress(files []File, f wimlz.Format, cfg wimlz.Config,
	chunkSize int, verify bool) (compressedSize int64, err error) {

	c, err := wimlz.NewCompressor(f, cfg)
	if err != nil {
		return 0, err
	}
	d, err := wimlz.NewDecompressor(f, cfg)
	if err != nil {
		return 0, err
	}
	var buf []byte
	for _, file := range files {
		err = Chunks(file.Data, chunkSize, func(chunk []byte) error {
			z, err := c.Compress(chunk)
			if err != nil {
				return err
			}
			compressedSize += int64(len(z))
			if !verify {
				return nil
			}
			if cap(buf) < len(chunk) {
				buf = make([]byte, len(chunk))
			}
			buf = buf[:len(chunk)]
			if err = d.Decompress(buf, z); err != nil {
				return err
			}
			if !bytes.Equal(buf, chunk) {
				return fmt.Errorf(
					"tuning: decompressed chunk differs")
			}
			return nil
		})
		if err != nil {
			return compressedSize, fmt.Errorf("%s: %w", file.Name, err)
		}
	}
	return compressedSize, nil
}
