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

// Package tssimg wires package keystream, sharing, stego, and pixelgrid
// together into the two end-to-end operations a (k, n) threshold image
// sharing scheme offers: Distribute, which conceals a secret raster
// inside n cover rasters such that any k recover it, and Recover, the
// inverse. Both operate purely on in-memory pixelgrid.Grid values; file
// I/O belongs to cmd/tssimg.
package tssimg

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/grayraster/tssimg/lib/keystream"
	"github.com/grayraster/tssimg/lib/pixelgrid"
	"github.com/grayraster/tssimg/lib/sharing"
	"github.com/grayraster/tssimg/lib/stego"
)

var (
	// ErrInvalidParameter is returned for malformed caller input: too few
	// or mismatched covers or shares, a nil cover or share, or disagreeing
	// recovered metadata across shares. A k or n out of range is reported
	// as sharing.ErrInvalidThreshold instead.
	ErrInvalidParameter = errors.New("tssimg: invalid parameter")
)

// directHeaderThreshold is the one k value at which a shadow's implied
// byte length already matches the secret's pixel count divided evenly
// enough that no separate dimension record is needed in the cover. Every
// other k embeds a 32-bit width/height header alongside the shadow (see
// package stego).
const directHeaderThreshold = 8

// Distribute conceals secret inside len(covers) cover rasters, returning
// that many stego rasters recoverable by any k of them. len(covers) must
// equal n. Covers are cloned before mutation; the caller's slice is left
// untouched.
func Distribute(secret *pixelgrid.Grid, k, n int, covers []*pixelgrid.Grid) ([]*pixelgrid.Grid, error) {
	if len(covers) != n {
		return nil, fmt.Errorf("%w: got %d covers, want n=%d", ErrInvalidParameter, len(covers), n)
	}

	var seedBuf [2]byte
	if _, err := rand.Read(seedBuf[:]); err != nil {
		return nil, fmt.Errorf("tssimg: drawing scramble seed: %w", err)
	}
	seed := uint16(seedBuf[0]) | uint16(seedBuf[1])<<8

	scrambled := secret.Clone()
	src := keystream.New(seed)
	keystream.XORInto(scrambled.Pix, src.Buffer(scrambled.PaddedCapacity()))

	shadows, err := sharing.Split(scrambled, k, n, sharing.Options{})
	if err != nil {
		return nil, err
	}

	stegoImages := make([]*pixelgrid.Grid, n)
	for i := 0; i < n; i++ {
		if covers[i] == nil {
			return nil, fmt.Errorf("%w: cover %d is nil", ErrInvalidParameter, i)
		}
		out := covers[i].Clone()
		if k == directHeaderThreshold {
			if err := stego.Embed(out, shadows[i]); err != nil {
				return nil, err
			}
		} else {
			if err := stego.EmbedExtended(out, shadows[i], uint16(secret.Width), uint16(secret.Height)); err != nil {
				return nil, err
			}
		}
		x := uint16(i + 1)
		out.Reserved = [4]byte{byte(seed), byte(seed >> 8), byte(x), byte(x >> 8)}
		stegoImages[i] = out
	}
	return stegoImages, nil
}

// Recover reconstructs the secret raster from any k of the rasters
// Distribute produced. width and height are the secret's dimensions; if
// either is not positive, Recover infers both rather than requiring the
// caller to supply them. At k == 8, the shadow layout carries no
// dimension header of its own (see package stego), so Recover instead
// takes shares[0]'s own Width/Height, exactly as the cover already
// carries them. For every other k, Recover reads them from the header
// embedded in shares[0]. For k != 8 the dimensions in use are
// cross-checked against the header in every share; at k == 8 given
// values are used as they are, with no check against the shares' own
// Width/Height.
func Recover(k, width, height int, shares []*pixelgrid.Grid) (*pixelgrid.Grid, error) {
	if len(shares) != k {
		return nil, fmt.Errorf("%w: got %d shares, want k=%d", ErrInvalidParameter, len(shares), k)
	}
	if k < sharing.MinK || k > sharing.MaxK {
		return nil, sharing.ErrInvalidThreshold
	}
	if len(shares) == 0 || shares[0] == nil {
		return nil, fmt.Errorf("%w: share 0 is nil", ErrInvalidParameter)
	}

	if width <= 0 || height <= 0 {
		if k == directHeaderThreshold {
			width, height = shares[0].Width, shares[0].Height
		} else {
			headerW, headerH, err := stego.ExtractDimensions(shares[0])
			if err != nil {
				return nil, err
			}
			width, height = int(headerW), int(headerH)
		}
	}

	total := width * height
	shadowLen := (total + k - 1) / k

	xs := make([]uint16, k)
	shadows := make([][]byte, k)
	var seed uint16
	for i, s := range shares {
		if s == nil {
			return nil, fmt.Errorf("%w: share %d is nil", ErrInvalidParameter, i)
		}
		gotSeed := uint16(s.Reserved[0]) | uint16(s.Reserved[1])<<8
		x := uint16(s.Reserved[2]) | uint16(s.Reserved[3])<<8
		if i == 0 {
			seed = gotSeed
		} else if gotSeed != seed {
			return nil, fmt.Errorf("%w: shares carry different scramble seeds", ErrInvalidParameter)
		}
		xs[i] = x

		if k == directHeaderThreshold {
			shadow, err := stego.Extract(s, shadowLen)
			if err != nil {
				return nil, err
			}
			shadows[i] = shadow
		} else {
			shadow, gotW, gotH, err := stego.ExtractExtended(s, shadowLen)
			if err != nil {
				return nil, err
			}
			if int(gotW) != width || int(gotH) != height {
				return nil, fmt.Errorf("%w: share %d reports dimensions %dx%d, want %dx%d", ErrInvalidParameter, i, gotW, gotH, width, height)
			}
			shadows[i] = shadow
		}
	}

	recovered, err := sharing.Recover(xs, shadows, k, width, height, sharing.Options{})
	if err != nil {
		return nil, err
	}

	src := keystream.New(seed)
	keystream.XORInto(recovered.Pix, src.Buffer(recovered.PaddedCapacity()))
	return recovered, nil
}
