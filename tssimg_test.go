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

package tssimg

import (
	"errors"
	"testing"

	"github.com/grayraster/tssimg/lib/pixelgrid"
)

func newSecret(t *testing.T, width, height int) *pixelgrid.Grid {
	t.Helper()
	g, err := pixelgrid.New(width, height)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(x, y, byte((x*5+y*11)%256))
		}
	}
	return g
}

func newCovers(t *testing.T, n, width, height int) []*pixelgrid.Grid {
	t.Helper()
	covers := make([]*pixelgrid.Grid, n)
	for i := range covers {
		g, err := pixelgrid.New(width, height)
		if err != nil {
			t.Fatal(err)
		}
		for j := range g.Pix {
			g.Pix[j] = byte(0x55 ^ (j + i))
		}
		covers[i] = g
	}
	return covers
}

func almostEqual(a, b *pixelgrid.Grid) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			diff := int(a.At(x, y)) - int(b.At(x, y))
			if diff < 0 {
				diff = -diff
			}
			if diff > 1 {
				return false
			}
		}
	}
	return true
}

func TestDistributeRecoverRoundTripK8(t *testing.T) {
	const width, height = 32, 32
	const k, n = 8, 10
	secret := newSecret(t, width, height)
	covers := newCovers(t, n, 256, 256)

	stegoImages, err := Distribute(secret, k, n, covers)
	if err != nil {
		t.Fatal(err)
	}

	recovered, err := Recover(k, width, height, stegoImages[:k])
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(secret, recovered) {
		t.Errorf("recovered image diverges from secret by more than the saturation-avoidance tolerance")
	}
}

func TestDistributeRecoverRoundTripNonEightK(t *testing.T) {
	const width, height = 20, 17
	const k, n = 3, 5
	secret := newSecret(t, width, height)
	covers := newCovers(t, n, 128, 128)

	stegoImages, err := Distribute(secret, k, n, covers)
	if err != nil {
		t.Fatal(err)
	}

	picked := []*pixelgrid.Grid{stegoImages[1], stegoImages[2], stegoImages[4]}
	recovered, err := Recover(k, width, height, picked)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(secret, recovered) {
		t.Errorf("recovered image diverges from secret by more than the saturation-avoidance tolerance")
	}
}

func TestRecoverDerivesDimensionsFromHeaderWhenUnspecified(t *testing.T) {
	const width, height = 20, 17
	const k, n = 3, 5
	secret := newSecret(t, width, height)
	covers := newCovers(t, n, 128, 128)

	stegoImages, err := Distribute(secret, k, n, covers)
	if err != nil {
		t.Fatal(err)
	}

	picked := []*pixelgrid.Grid{stegoImages[0], stegoImages[2], stegoImages[3]}
	recovered, err := Recover(k, 0, 0, picked)
	if err != nil {
		t.Fatal(err)
	}
	if recovered.Width != width || recovered.Height != height {
		t.Fatalf("recovered dimensions = (%d, %d), want (%d, %d)", recovered.Width, recovered.Height, width, height)
	}
	if !almostEqual(secret, recovered) {
		t.Errorf("recovered image diverges from secret by more than the saturation-avoidance tolerance")
	}
}

func TestRecoverDerivesDimensionsFromCoverForK8(t *testing.T) {
	// At k == 8 the shadow layout carries no dimension header of its own,
	// so Recover must fall back to shares[0]'s own Width/Height; covers
	// here are sized to match the secret exactly, as they must be for
	// that fallback to recover the right thing.
	const width, height = 16, 16
	const k, n = 8, 9
	secret := newSecret(t, width, height)
	covers := newCovers(t, n, width, height)

	stegoImages, err := Distribute(secret, k, n, covers)
	if err != nil {
		t.Fatal(err)
	}

	recovered, err := Recover(k, 0, 0, stegoImages[:k])
	if err != nil {
		t.Fatal(err)
	}
	if recovered.Width != width || recovered.Height != height {
		t.Fatalf("recovered dimensions = (%d, %d), want (%d, %d)", recovered.Width, recovered.Height, width, height)
	}
	if !almostEqual(secret, recovered) {
		t.Errorf("recovered image diverges from secret by more than the saturation-avoidance tolerance")
	}
}

func TestRecoverRejectsInconsistentSeeds(t *testing.T) {
	const width, height = 16, 16
	const k, n = 4, 6
	secret := newSecret(t, width, height)
	covers := newCovers(t, n, 128, 128)

	stegoImages, err := Distribute(secret, k, n, covers)
	if err != nil {
		t.Fatal(err)
	}
	stegoImages[0].Reserved[0] ^= 0xFF // corrupt the seed's low byte

	if _, err := Recover(k, width, height, stegoImages[:k]); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v, want %v", err, ErrInvalidParameter)
	}
}

func TestDistributeRejectsCoverCountMismatch(t *testing.T) {
	secret := newSecret(t, 8, 8)
	covers := newCovers(t, 3, 64, 64)
	if _, err := Distribute(secret, 2, 4, covers); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v, want %v", err, ErrInvalidParameter)
	}
}
