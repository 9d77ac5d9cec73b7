// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package wimlz_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/ulikunitz/wimlz"
)

func Example() {
	const text = "The quick brown fox jumps over the lazy dog.\n"
	data := bytes.Repeat([]byte(text), 100)

	for _, f := range []wimlz.Format{wimlz.LZX, wimlz.LZMS} {
		z, err := wimlz.Compress(f, data, wimlz.Config{})
		if err != nil {
			log.Fatalf("Compress error %s", err)
		}
		p, err := wimlz.Decompress(f, z, len(data), wimlz.Config{})
		if err != nil {
			log.Fatalf("Decompress error %s", err)
		}
		fmt.Printf("%v: equal %t smaller %t\n", f, bytes.Equal(p, data),
			len(z) < len(data)/10)
	}
	// Output:
	// LZX: equal true smaller true
	// LZMS: equal true smaller true
}
