// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command tune searches match finder configurations that provide the best
// speed for given compression ratios on the Silesia corpus.
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/kr/pretty"
	"github.com/ogier/pflag"
	"github.com/ulikunitz/lz"
	"github.com/ulikunitz/wimlz"
	"github.com/ulikunitz/wimlz/lzparse"
	"github.com/ulikunitz/wimlz/lzx"
)

// candidate describes a finder configuration. If seq is nil the M4
// finder is used.
type candidate struct {
	name      string
	format    wimlz.Format
	chunkSize int
	seq       lz.SeqConfig
	m4        lzparse.M4Config
	disabled  bool
}

// maxOffset returns the window of the finder.
func (c *candidate) maxOffset() int {
	if c.format == wimlz.LZX {
		return lzx.MaxOffset
	}
	return c.chunkSize
}

// config creates the wimlz configuration for the candidate.
func (c *candidate) config() (wimlz.Config, error) {
	var (
		f   lzparse.Finder
		err error
	)
	if c.seq != nil {
		f, err = lzparse.NewLZ(lzparse.LZConfig{
			MaxOffset: c.maxOffset(),
			Seq:       c.seq,
		})
	} else {
		f, err = lzparse.NewM4(c.m4)
	}
	if err != nil {
		return wimlz.Config{}, err
	}
	return wimlz.Config{MatchFinder: f}, nil
}

type preset struct {
	present bool
	c       candidate
	result  testing.BenchmarkResult
}

// mbPerSec returns the Megabytes (1 000 000 bytes) per seconds that are
// processed.
func mbPerSec(r testing.BenchmarkResult) float64 {
	if v, ok := r.Extra["MB/s"]; ok {
		return v
	}
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

func ratio(r testing.BenchmarkResult) float64 {
	if x, ok := r.Extra["c/u"]; ok {
		return x
	}
	return math.NaN()
}

// Returns the slot index the ratio qualifies for. If no slot can be found ok
// will be false.
func slot(slots []float64, ratio float64) (i int, ok bool) {
	for i, r := range slots {
		if ratio > r {
			return i - 1, i > 0
		}
	}
	return len(slots) - 1, true
}

// worse reports whether a cannot achieve a better ratio than b, because it
// uses the same finder type with smaller tables.
func worse(a, b *candidate) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	switch x := a.seq.(type) {
	case *lz.HSConfig:
		y, ok := b.seq.(*lz.HSConfig)
		if !(ok && x.InputLen == y.InputLen) {
			return false
		}
		return x.HashBits <= y.HashBits
	case *lz.BUHSConfig:
		y, ok := b.seq.(*lz.BUHSConfig)
		if !(ok && x.InputLen == y.InputLen) {
			return false
		}
		return x.HashBits <= y.HashBits && x.BucketSize <= y.BucketSize
	case nil:
		if b.seq != nil {
			return false
		}
		return a.m4.ChainLength <= b.m4.ChainLength &&
			a.m4.TableBits <= b.m4.TableBits
	default:
		return false
	}
}

func findPresets(slots []float64, candidates []candidate) {
	if len(slots) == 0 {
		log.Fatalf("no slots defined")
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i] > slots[j]
	})
	fmt.Printf("slots %.3f\n", slots)
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	presets := make([]preset, len(slots))

	i := 0
	n := len(candidates)
	for len(candidates) > 0 {
		k := len(candidates) - 1
		c := candidates[k]
		candidates = candidates[:k]
		if c.disabled {
			continue
		}
		n--

		i++
		result := testing.Benchmark(compressBenchmark(c))
		fmt.Printf("%d-%d %s %s\n", i, n, c.name, result)
		si, ok := slot(slots, ratio(result))
		if !ok {
			for i := range candidates {
				p := &candidates[i]
				if p.disabled {
					continue
				}
				if worse(p, &c) {
					p.disabled = true
					n--
				}
			}
			continue
		}
		v := mbPerSec(result)
		p := presets[si]
		if p.present && v <= mbPerSec(p.result) {
			fmt.Printf("slot %d - not faster\n", si+1)
			continue
		}
		presets[si] = preset{
			present: true,
			c:       c,
			result:  result,
		}
		fmt.Printf("slot %d - update\n", si+1)
		pretty.Println(c.seq, c.m4)
	}

	fmt.Printf("\n\n### Result ###\n\n")

	for si, p := range presets {
		if si > 0 {
			fmt.Printf("\n")
		}
		if !p.present {
			fmt.Printf("slot %d - not present\n", si+1)
			continue
		}
		fmt.Printf("slot %d - %s\t%.3f c/u\t%.2f MB/s\n",
			si+1, p.c.name, ratio(p.result), mbPerSec(p.result))
		pretty.Println(p.c.seq, p.c.m4)
	}
}

func appendHSCandidates(x []candidate, f wimlz.Format,
	chunkSize int) []candidate {

	y := x
	for hashBits := 8; hashBits <= 20; hashBits++ {
		for _, inputLen := range []int{3, 4} {
			y = append(y, candidate{
				name:      fmt.Sprintf("HS-%d-%d", inputLen, hashBits),
				format:    f,
				chunkSize: chunkSize,
				seq: &lz.HSConfig{
					InputLen: inputLen,
					HashBits: hashBits,
				},
			})
		}
	}
	return y
}

func appendBUHSCandidates(x []candidate, f wimlz.Format,
	chunkSize int) []candidate {

	y := x
	for hashBits := 8; hashBits <= 20; hashBits += 2 {
		for bucketSize := 4; bucketSize <= 32; bucketSize *= 2 {
			y = append(y, candidate{
				name: fmt.Sprintf("BUHS-3-%d-%d", hashBits,
					bucketSize),
				format:    f,
				chunkSize: chunkSize,
				seq: &lz.BUHSConfig{
					InputLen:   3,
					HashBits:   hashBits,
					BucketSize: bucketSize,
				},
			})
		}
	}
	return y
}

func appendM4Candidates(x []candidate, f wimlz.Format,
	chunkSize int) []candidate {

	y := x
	maxOffset := 65535
	if f == wimlz.LZX {
		maxOffset = lzx.MaxOffset
	}
	for tableBits := 12; tableBits <= 18; tableBits += 2 {
		for _, chainLength := range []int{0, 8, 32, 128} {
			y = append(y, candidate{
				name: fmt.Sprintf("M4-%d-%d", tableBits,
					chainLength),
				format:    f,
				chunkSize: chunkSize,
				m4: lzparse.M4Config{
					MaxOffset:   maxOffset,
					TableBits:   tableBits,
					ChainLength: chainLength,
				},
			})
		}
	}
	return y
}

func main() {
	cmdName := filepath.Base(os.Args[0])
	log.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	log.SetFlags(0)

	testing.Init()
	pflag.CommandLine = pflag.NewFlagSet(cmdName, pflag.ExitOnError)
	var (
		formatName = pflag.StringP("format", "F", "lzx", "")
		chunkSize  = pflag.IntP("chunk-size", "s", 0, "")
	)
	pflag.Parse()

	f, err := wimlz.ParseFormat(*formatName)
	if err != nil {
		log.Fatal(err)
	}
	if *chunkSize <= 0 {
		*chunkSize = lzx.WindowSize
		if f == wimlz.LZMS {
			*chunkSize = 1 << 20
		}
	}
	if *chunkSize > f.MaxChunkSize() {
		log.Fatalf("chunk size %d too large for %v", *chunkSize, f)
	}

	candidates := appendHSCandidates(nil, f, *chunkSize)
	candidates = appendBUHSCandidates(candidates, f, *chunkSize)
	candidates = appendM4Candidates(candidates, f, *chunkSize)

	slots := []float64{0.40, 0.38, 0.36, 0.34, 0.32, 0.30, 0.28, 0.26}
	findPresets(slots, candidates)
}
