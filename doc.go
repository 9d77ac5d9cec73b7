// SPDX-FileCopyrightText: © 2024 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package wimlz compresses and decompresses chunks in the LZX and LZMS
// formats of WIM archives.
//
// A WIM archive splits the data of a resource into chunks that are
// compressed independently. The package operates on single chunks; the
// caller must store the uncompressed size of every chunk, because the
// compressed formats don't contain it.
//
// LZX chunks are limited to 32 KiB. LZMS chunks can be much larger and
// are used for solid resources. Both formats translate the targets of
// x86 call instructions before compression. The translation can be
// switched off, but only for data that has been compressed with the same
// setting.
//
// The packages lzx and lzms provide reusable encoders and decoders. The
// packages slot, lru, rc, huffman and filter implement the building
// blocks of the formats.
package wimlz
