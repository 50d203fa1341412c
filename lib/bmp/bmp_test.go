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

package bmp

import (
	"bytes"
	"testing"

	"github.com/grayraster/tssimg/lib/pixelgrid"
)

func sampleGrid(t *testing.T) *pixelgrid.Grid {
	t.Helper()
	g, err := pixelgrid.New(17, 5) // odd width: exercises row padding
	if err != nil {
		t.Fatal(err)
	}
	for i := range g.Palette {
		g.Palette[i] = pixelgrid.Color{Blue: byte(i), Green: byte(i / 2), Red: byte(i / 3), Alpha: 0}
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			g.Set(x, y, byte((x*7+y*13)%256))
		}
	}
	g.Reserved = [4]byte{0x12, 0x34, 0x01, 0x00}
	return g
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := sampleGrid(t)

	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		t.Fatal(err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Width != g.Width || got.Height != g.Height {
		t.Fatalf("dimensions = (%d, %d), want (%d, %d)", got.Width, got.Height, g.Width, g.Height)
	}
	if got.Reserved != g.Reserved {
		t.Errorf("reserved bytes = %v, want %v", got.Reserved, g.Reserved)
	}
	if !bytes.Equal(got.Pix, g.Pix) {
		t.Errorf("pixel data did not round-trip")
	}
	if got.Palette != g.Palette {
		t.Errorf("palette did not round-trip")
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	data := make([]byte, fileHeaderSize+infoHeaderSize)
	data[0], data[1] = 'X', 'X'
	if _, err := Decode(bytes.NewReader(data)); err != ErrFormatRejected {
		t.Errorf("err = %v, want %v", err, ErrFormatRejected)
	}
}

func TestDecodeRejectsTopDown(t *testing.T) {
	g := sampleGrid(t)
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	// Negate the height field (offset 14+8) to mark it top-down.
	h := int32(raw[22]) | int32(raw[23])<<8 | int32(raw[24])<<16 | int32(raw[25])<<24
	h = -h
	raw[22] = byte(h)
	raw[23] = byte(h >> 8)
	raw[24] = byte(h >> 16)
	raw[25] = byte(h >> 24)

	if _, err := Decode(bytes.NewReader(raw)); err != ErrFormatRejected {
		t.Errorf("err = %v, want %v", err, ErrFormatRejected)
	}
}
