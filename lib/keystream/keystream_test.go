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

package keystream

import (
	"bytes"
	"testing"
)

func TestSeedZeroLiteral(t *testing.T) {
	want := []byte{0xbb, 0xd4, 0x3d, 0x9b, 0xa3, 0x4f, 0x8c, 0x1d}
	got := New(0).Buffer(8)
	if !bytes.Equal(got, want) {
		t.Errorf("New(0).Buffer(8) = %x, want %x", got, want)
	}
}

func TestReproducible(t *testing.T) {
	for _, seed := range []uint16{0, 1, 42, 0xFFFF, 12345} {
		a := New(seed).Buffer(64)
		b := New(seed).Buffer(64)
		if !bytes.Equal(a, b) {
			t.Errorf("seed %d: two Sources diverged", seed)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := New(1).Buffer(16)
	b := New(2).Buffer(16)
	if bytes.Equal(a, b) {
		t.Errorf("seed 1 and seed 2 produced identical streams")
	}
}

func TestXORIntoIsInvolution(t *testing.T) {
	pix := make([]byte, 37)
	for i := range pix {
		pix[i] = byte(i * 7)
	}
	original := append([]byte(nil), pix...)

	buf := New(99).Buffer(len(pix))
	XORInto(pix, buf)
	if bytes.Equal(pix, original) {
		t.Fatalf("XOR with a non-zero keystream did not change the buffer")
	}

	XORInto(pix, buf)
	if !bytes.Equal(pix, original) {
		t.Errorf("XORInto twice with the same buffer did not restore the original, got %x want %x", pix, original)
	}
}

func TestBufferContinuesTheStream(t *testing.T) {
	s := New(7)
	first := s.Buffer(4)
	second := s.Buffer(4)

	whole := New(7).Buffer(8)
	if !bytes.Equal(append(append([]byte(nil), first...), second...), whole) {
		t.Errorf("Buffer calls are not contiguous with the single-call stream")
	}
}
