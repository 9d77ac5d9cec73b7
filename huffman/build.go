// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import (
	"fmt"
	"sort"

	"github.com/ulikunitz/wimlz/internal/errs"
)

// MaxCodeLen is the longest codeword supported by the package.
const MaxCodeLen = 16

// MaxSymbols is the largest alphabet supported by BuildLengths.
const MaxSymbols = 1 << symBits

// The node array used by BuildLengths stores the symbol in the low bits
// and the frequency, the parent index or the depth in the high bits.
const (
	symBits = 10
	symMask = 1<<symBits - 1
)

// BuildLengths computes the codeword lengths of a Huffman code for the
// frequencies, limiting the lengths to maxLen. Symbols with frequency zero
// get length zero. If only one symbol is used, a second codeword is
// assigned to symbol 0 or 1 so that the code is complete.
//
// Frequency ties are broken by symbol value. Encoders that rebuild their
// codes from frequencies, like the adaptive coders of LZMS, rely on the
// function producing exactly the same lengths on both sides.
func BuildLengths(lens []uint8, freqs []uint32, maxLen int) {
	n := len(freqs)
	if n > MaxSymbols {
		panic(fmt.Errorf("huffman: %d symbols exceed maximum %d",
			n, MaxSymbols))
	}
	if len(lens) < n {
		panic("huffman: lens slice too short")
	}
	if !(1 <= maxLen && maxLen <= MaxCodeLen) {
		panic(fmt.Errorf("huffman: invalid maximum length %d", maxLen))
	}

	a := make([]uint64, 0, n)
	for sym, f := range freqs {
		lens[sym] = 0
		if f != 0 {
			a = append(a, uint64(f)<<symBits|uint64(sym))
		}
	}
	switch len(a) {
	case 0:
		return
	case 1:
		sym := int(a[0] & symMask)
		lens[0] = 1
		if sym == 0 {
			sym = 1
		}
		lens[sym] = 1
		return
	}
	if len(a) > 1<<uint(maxLen) {
		panic(fmt.Errorf(
			"huffman: %d symbols can't be coded with length %d",
			len(a), maxLen))
	}
	sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })

	buildTree(a)
	var counts [MaxCodeLen + 2]int
	lengthCounts(a, counts[:maxLen+2], maxLen)

	// The least frequent symbols get the longest codewords.
	i := 0
	for l := maxLen; l >= 1; l-- {
		for k := counts[l]; k > 0; k-- {
			lens[a[i]&symMask] = uint8(l)
			i++
		}
	}
}

// buildTree creates the Huffman tree in place. The array must be sorted by
// frequency. Index i points to the next leaf, index b to the next
// non-leaf without parent and index e to the next non-leaf to allocate.
// Linking a leaf writes its parent index, which is overwritten when e
// reaches the entry.
func buildTree(a []uint64) {
	n := len(a)
	i, b, e := 0, 0, 0
	for {
		var m, k int
		if i != n && (b == e || a[i]>>symBits <= a[b]>>symBits) {
			m = i
			i++
		} else {
			m = b
			b++
		}
		if i != n && (b == e || a[i]>>symBits <= a[b]>>symBits) {
			k = i
			i++
		} else {
			k = b
			b++
		}
		freq := (a[m] &^ symMask) + (a[k] &^ symMask)
		a[m] = a[m]&symMask | uint64(e)<<symBits
		a[k] = a[k]&symMask | uint64(e)<<symBits
		a[e] = a[e]&symMask | freq
		e++
		if n-e <= 1 {
			break
		}
	}
}

// lengthCounts computes the number of codewords per length from the tree
// created by buildTree. Lengths exceeding maxLen are moved to the deepest
// level that still has a free non-leaf.
func lengthCounts(a []uint64, counts []int, maxLen int) {
	for l := range counts {
		counts[l] = 0
	}
	counts[1] = 2
	root := len(a) - 2
	a[root] &= symMask
	for node := root - 1; node >= 0; node-- {
		parent := a[node] >> symBits
		depth := a[parent]>>symBits + 1
		a[node] = a[node]&symMask | depth<<symBits

		l := int(depth)
		if l >= maxLen {
			l = maxLen
			for {
				l--
				if counts[l] != 0 {
					break
				}
			}
		}
		counts[l]--
		counts[l+1] += 2
	}
}

// Codewords assigns the canonical codewords for the code lengths. Shorter
// codewords precede longer ones; codewords of the same length are ordered
// by symbol. The function returns an error if the lengths describe an
// over-subscribed code or exceed MaxCodeLen.
func Codewords(codes []uint32, lens []uint8) error {
	var count [MaxCodeLen + 1]int
	for _, l := range lens {
		if l > MaxCodeLen {
			return fmt.Errorf("huffman: code length %d too large: %w",
				l, errs.ErrMalformed)
		}
		count[l]++
	}
	count[0] = 0
	var next [MaxCodeLen + 1]uint32
	left := 1
	for l := 1; l <= MaxCodeLen; l++ {
		left = left<<1 - count[l]
		if left < 0 {
			return fmt.Errorf("huffman: code over-subscribed: %w",
				errs.ErrMalformed)
		}
		next[l] = (next[l-1] + uint32(count[l-1])) << 1
	}
	for sym, l := range lens {
		if l == 0 {
			codes[sym] = 0
			continue
		}
		codes[sym] = next[l]
		next[l]++
	}
	return nil
}
