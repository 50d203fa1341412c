// Copyright 2026 The Tssimg Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ----------------

// Package bmp reads and writes the one BMP dialect this module cares
// about: an uncompressed, bottom-up, 8-bit paletted Windows v3 bitmap,
// including the 4 file-header bytes (bfReserved1, bfReserved2) most BMP
// libraries either zero or ignore. Those bytes carry this module's
// scramble seed and share index (see package tssimg), so a codec that
// discards them on load or forces them to zero on save cannot round-trip
// a stego file; that is why this package exists instead of reusing a
// general-purpose BMP decoder for the stego path. golang.org/x/image/bmp
// is used instead for cosmetic preview rendering (see cmd/tssimg-report),
// where the reserved bytes don't matter.
package bmp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/grayraster/tssimg/lib/pixelgrid"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	paletteEntries = 256
	paletteSize    = paletteEntries * 4
)

var (
	// ErrFormatRejected is returned by Load when the file is not a
	// signature-valid, uncompressed, bottom-up, 8-bpp, Win3.x-header BMP.
	ErrFormatRejected = errors.New("bmp: not an uncompressed bottom-up 8-bpp Windows v3 bitmap")
)

// Load reads an 8-bpp BMP file from path into a pixelgrid.Grid, including
// its 4 reserved header bytes.
func Load(path string) (*pixelgrid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode reads an 8-bpp BMP image from r.
func Decode(r io.Reader) (*pixelgrid.Grid, error) {
	var fh [fileHeaderSize]byte
	if _, err := io.ReadFull(r, fh[:]); err != nil {
		return nil, fmt.Errorf("bmp: reading file header: %w", err)
	}
	if fh[0] != 'B' || fh[1] != 'M' {
		return nil, ErrFormatRejected
	}
	bitsOffset := binary.LittleEndian.Uint32(fh[10:14])

	var ih [infoHeaderSize]byte
	if _, err := io.ReadFull(r, ih[:]); err != nil {
		return nil, fmt.Errorf("bmp: reading info header: %w", err)
	}
	dibSize := binary.LittleEndian.Uint32(ih[0:4])
	width := int32(binary.LittleEndian.Uint32(ih[4:8]))
	height := int32(binary.LittleEndian.Uint32(ih[8:12]))
	bpp := binary.LittleEndian.Uint16(ih[14:16])
	compression := binary.LittleEndian.Uint32(ih[16:20])
	colorsUsed := binary.LittleEndian.Uint32(ih[32:36])

	if dibSize != infoHeaderSize || bpp != 8 || compression != 0 || height < 0 || width <= 0 || height == 0 {
		return nil, ErrFormatRejected
	}

	g, err := pixelgrid.New(int(width), int(height))
	if err != nil {
		return nil, err
	}
	copy(g.Reserved[:], fh[6:10])

	entries := colorsUsed
	if entries == 0 {
		entries = paletteEntries
	}
	if entries > paletteEntries {
		return nil, ErrFormatRejected
	}
	var pal [paletteSize]byte
	if _, err := io.ReadFull(r, pal[:entries*4]); err != nil {
		return nil, fmt.Errorf("bmp: reading palette: %w", err)
	}
	for i := uint32(0); i < entries; i++ {
		off := i * 4
		g.Palette[i] = pixelgrid.Color{
			Blue:  pal[off],
			Green: pal[off+1],
			Red:   pal[off+2],
			Alpha: pal[off+3],
		}
	}

	if skip := int64(bitsOffset) - int64(fileHeaderSize+infoHeaderSize+int(entries)*4); skip > 0 {
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return nil, fmt.Errorf("bmp: skipping to pixel data: %w", err)
		}
	}
	if _, err := io.ReadFull(r, g.Pix); err != nil {
		return nil, fmt.Errorf("bmp: reading pixel data: %w", err)
	}
	return g, nil
}

// Save writes g to path as an 8-bpp Windows v3 BMP file, reserved bytes
// included.
func Save(path string, g *pixelgrid.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes g to w as an 8-bpp Windows v3 BMP image.
func Encode(w io.Writer, g *pixelgrid.Grid) error {
	pixelDataSize := len(g.Pix)
	bitsOffset := fileHeaderSize + infoHeaderSize + paletteSize
	fileSize := bitsOffset + pixelDataSize

	var fh [fileHeaderSize]byte
	fh[0], fh[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(fh[2:6], uint32(fileSize))
	copy(fh[6:10], g.Reserved[:])
	binary.LittleEndian.PutUint32(fh[10:14], uint32(bitsOffset))
	if _, err := w.Write(fh[:]); err != nil {
		return fmt.Errorf("bmp: writing file header: %w", err)
	}

	var ih [infoHeaderSize]byte
	binary.LittleEndian.PutUint32(ih[0:4], infoHeaderSize)
	binary.LittleEndian.PutUint32(ih[4:8], uint32(g.Width))
	binary.LittleEndian.PutUint32(ih[8:12], uint32(g.Height))
	binary.LittleEndian.PutUint16(ih[12:14], 1)
	binary.LittleEndian.PutUint16(ih[14:16], 8)
	binary.LittleEndian.PutUint32(ih[32:36], paletteEntries)
	if _, err := w.Write(ih[:]); err != nil {
		return fmt.Errorf("bmp: writing info header: %w", err)
	}

	var pal [paletteSize]byte
	for i, c := range g.Palette {
		off := i * 4
		pal[off] = c.Blue
		pal[off+1] = c.Green
		pal[off+2] = c.Red
		pal[off+3] = c.Alpha
	}
	if _, err := w.Write(pal[:]); err != nil {
		return fmt.Errorf("bmp: writing palette: %w", err)
	}

	if _, err := w.Write(g.Pix); err != nil {
		return fmt.Errorf("bmp: writing pixel data: %w", err)
	}
	return nil
}
