// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ulikunitz/wimlz/internal/tuning"
	"github.com/ulikunitz/zdata"
)

var (
	_silesiaFiles []tuning.File
	silesiaOnce   sync.Once
)

func silesiaFiles() []tuning.File {
	silesiaOnce.Do(func() {
		var err error
		_silesiaFiles, err = tuning.Files(zdata.Silesia)
		if err != nil {
			panic(fmt.Errorf("silesiaFiles() error %w", err))
		}
	})
	return _silesiaFiles
}

// compressBenchmark measures the speed and the compression ratio of the
// candidate over the Silesia corpus.
func compressBenchmark(c candidate) func(b *testing.B) {
	return func(b *testing.B) {
		files := silesiaFiles()
		size := tuning.Size(files)
		cfg, err := c.config()
		if err != nil {
			b.Fatalf("%s: config error %s", c.name, err)
		}
		b.SetBytes(size)
		var compressedSize int64
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			compressedSize, err = tuning.Compress(files, c.format, cfg,
				c.chunkSize, false)
			if err != nil {
				b.Fatalf("Compress error %s", err)
			}
		}
		b.StopTimer()
		r := float64(compressedSize) / float64(size)
		b.ReportMetric(r, "c/u")
	}
}
