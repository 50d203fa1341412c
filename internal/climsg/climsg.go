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

// climsg holds flag defaults, usage strings, and validation functions
// common to the tssimg command line tools.
package climsg

import (
	"fmt"

	"github.com/grayraster/tssimg/lib/sharing"
)

const (
	KDefault = 0
	KUsage   = `the threshold k: the number of shares required to recover the secret (2-10)`

	NDefault = 0
	NUsage   = `the total number of shares n to generate (k-255); defaults to the number of cover images found in -dir`

	DirDefault = "."
	DirUsage   = `directory to search for cover (distribute) or stego (recover) .bmp files`

	SecretUsage = `path to the secret BMP image (distribute) or the recovery output path (recover)`
)

// ValidateK reports whether k lies in the threshold scheme's supported
// range, independent of any particular n.
func ValidateK(k int) error {
	if k < sharing.MinK || k > sharing.MaxK {
		return fmt.Errorf("k must be between %d and %d, got %d", sharing.MinK, sharing.MaxK, k)
	}
	return nil
}

// ValidateKN reports whether the (k, n) pair is usable together.
func ValidateKN(k, n int) error {
	if err := ValidateK(k); err != nil {
		return err
	}
	if n < k {
		return fmt.Errorf("n must be at least k (%d), got %d", k, n)
	}
	if n > sharing.MaxN {
		return fmt.Errorf("n must be at most %d, got %d", sharing.MaxN, n)
	}
	return nil
}

// directHeaderThreshold mirrors tssimg.directHeaderThreshold: the one k
// value whose shadow layout needs no 32-bit dimension header alongside it
// (see package stego).
const directHeaderThreshold = 8

// RequiredBits is the number of a cover's padded pixel bytes that must be
// available to hide a secret of the given dimensions at threshold k: one
// per shadow bit (eight per shadow byte), plus 32 for the dimension header
// for every k other than 8.
func RequiredBits(k, width, height int) int {
	l := (width*height + k - 1) / k
	bits := l * 8
	if k != directHeaderThreshold {
		bits += 32
	}
	return bits
}
