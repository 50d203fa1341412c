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

// Package sharing implements the (k, n) threshold polynomial split and
// recovery of an 8-bpp pixel grid over GF(257).
//
// Split partitions a secret's pixels, row-major, into blocks of k
// consecutive pixels, treats each block as the k coefficients of a
// degree-(k-1) polynomial, and evaluates that polynomial at x = 1..n to
// produce n shadow bytes per block. Recover runs the inverse: given any k
// of the n evaluations (and the x each came from), it solves for the
// original k coefficients by Gaussian elimination over GF(257).
//
// Unlike a textbook Shamir split, the k coefficients here are not "one
// secret plus k-1 random blinding coefficients" — they are k consecutive
// secret pixels. Recovering only f(0) would therefore only recover 1 of
// every k secret bytes; Recover always solves for the full coefficient
// vector.
package sharing

import (
	"errors"
	"runtime"
	"sync"

	"github.com/grayraster/tssimg/lib/gf257"
	"github.com/grayraster/tssimg/lib/pixelgrid"
)

const (
	// MinK and MaxK bound the threshold k.
	MinK = 2
	MaxK = 10
	// MaxN bounds the number of shares: the x abscissa is assigned 1..n
	// and must fit the reserved side channel's 8 meaningful bits (see
	// package stego's Reserved-byte layout).
	MaxN = 255
)

var (
	// ErrInvalidThreshold is returned when k or n is out of range.
	ErrInvalidThreshold = errors.New("sharing: k must be in [2, 10] and n must be in [k, 255]")
	// ErrSingularSystem is returned by Recover when the Gaussian
	// elimination finds no pivot for some column: either two shares were
	// given the same x, or a share was corrupted.
	ErrSingularSystem = errors.New("sharing: singular system (duplicate x or corrupt shares)")
	// ErrShareMismatch is returned by Recover when the x/shadow slices
	// passed in disagree on count or shadow length.
	ErrShareMismatch = errors.New("sharing: shares have mismatched count or length")
	// ErrSaturationStuck guards the saturation-avoidance loop in Split.
	// The termination argument (each retry strictly decreases some
	// coefficient toward zero, and only a non-zero coefficient is ever
	// picked) makes this unreachable; the guard exists so a future
	// regression fails loudly instead of spinning forever.
	ErrSaturationStuck = errors.New("sharing: saturation-avoidance loop did not converge")
)

// Options controls whether per-block work is parallelized. Blocks are
// independent (each touches disjoint output positions), so parallelizing
// is safe and does not change observable output; the zero value
// parallelizes across GOMAXPROCS workers. Set Sequential to force a
// single-threaded pass, e.g. for reproducible profiling.
type Options struct {
	Sequential bool
}

func validateThreshold(k, n int) error {
	if k < MinK || k > MaxK || n < k || n > MaxN {
		return ErrInvalidThreshold
	}
	return nil
}

func blockCount(totalPixels, k int) int {
	return (totalPixels + k - 1) / k
}

// Split shares q's pixels among n participants recoverable by any k. It
// returns n shadow streams, each of length ceil(q.Width*q.Height / k).
func Split(q *pixelgrid.Grid, k, n int, opts Options) ([][]byte, error) {
	if err := validateThreshold(k, n); err != nil {
		return nil, err
	}
	total := q.Width * q.Height
	l := blockCount(total, k)
	shadows := make([][]byte, n)
	for i := range shadows {
		shadows[i] = make([]byte, l)
	}

	err := runBlocks(l, opts, func(b int) error {
		coeffs := make([]uint16, k)
		for i := 0; i < k; i++ {
			idx := b*k + i
			if idx >= total {
				continue // trailing block: zero-pad
			}
			coeffs[i] = uint16(q.At(idx%q.Width, idx/q.Width))
		}
		if err := avoidSaturation(coeffs, n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			shadows[i][b] = byte(gf257.Eval(coeffs, uint16(i+1)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shadows, nil
}

// avoidSaturation perturbs coeffs in place until every evaluation
// f(1..n) is <= 255, per the saturation-avoidance rule: if any f_i == 256,
// decrement the first non-zero coefficient (as an 8-bit unsigned value, so
// the decrement never wraps back up through 255) and re-evaluate.
//
// This is a lossy perturbation: each retry irrecoverably lowers one of the
// affected block's secret pixels by 1. One retry usually suffices; a block
// that needs several is altered by as many steps (with k=2, n=3 the block
// (127, 129) ends as (125, 129)). That is a known, accepted property of
// the scheme, not a bug to design away.
func avoidSaturation(coeffs []uint16, n int) error {
	limit := 255 * len(coeffs)
	for iter := 0; ; iter++ {
		saturatedAt := -1
		for x := 1; x <= n; x++ {
			if gf257.Eval(coeffs, uint16(x)) == 256 {
				saturatedAt = x
				break
			}
		}
		if saturatedAt == -1 {
			return nil
		}
		if iter >= limit {
			return ErrSaturationStuck
		}
		for j := range coeffs {
			if coeffs[j] != 0 {
				coeffs[j] = uint16((int(coeffs[j]) - 1 + 256) % 256)
				break
			}
		}
	}
}

// Recover reconstructs a width x height grid from k (x, shadow) pairs. xs
// and shadows must have exactly k entries and every shadow must have the
// same length; that length determines how many blocks (and hence how many
// of width*height pixels, up to k-1 trailing zero-pad bytes) are restored.
func Recover(xs []uint16, shadows [][]byte, k, width, height int, opts Options) (*pixelgrid.Grid, error) {
	if k < MinK || k > MaxK {
		return nil, ErrInvalidThreshold
	}
	if len(xs) != k || len(shadows) != k {
		return nil, ErrShareMismatch
	}
	l := 0
	if k > 0 {
		l = len(shadows[0])
	}
	for _, s := range shadows {
		if len(s) != l {
			return nil, ErrShareMismatch
		}
	}

	out, err := pixelgrid.New(width, height)
	if err != nil {
		return nil, err
	}
	total := width * height

	err = runBlocks(l, opts, func(b int) error {
		ys := make([]uint16, k)
		for i := 0; i < k; i++ {
			ys[i] = uint16(shadows[i][b])
		}
		coeffs, err := solve(xs, ys)
		if err != nil {
			return err
		}
		for i := 0; i < k; i++ {
			idx := b*k + i
			if idx >= total {
				break
			}
			out.Set(idx%width, idx/width, byte(coeffs[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// solve returns the coefficient vector of the unique degree-(k-1)
// polynomial over GF(257) passing through (xs[i], ys[i]) for i in [0, k),
// via Gauss-Jordan elimination with partial pivoting on the augmented
// Vandermonde system A[i][j] = xs[i]^j, A[i][k] = ys[i]. Eliminating both
// above and below each pivot (rather than eliminating below then
// back-substituting) reaches the same row-reduced result in one pass.
func solve(xs []uint16, ys []uint16) ([]uint16, error) {
	k := len(xs)
	a := make([][]uint16, k)
	for i := 0; i < k; i++ {
		row := make([]uint16, k+1)
		power := uint16(1)
		for j := 0; j < k; j++ {
			row[j] = power
			power = gf257.Mul(power, xs[i])
		}
		row[k] = ys[i]
		a[i] = row
	}

	for col := 0; col < k; col++ {
		pivot := -1
		for row := col; row < k; row++ {
			if a[row][col] != 0 {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			return nil, ErrSingularSystem
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv, err := gf257.Inv(a[col][col])
		if err != nil {
			return nil, ErrSingularSystem
		}
		for j := col; j <= k; j++ {
			a[col][j] = gf257.Mul(a[col][j], inv)
		}

		for row := 0; row < k; row++ {
			if row == col {
				continue
			}
			factor := a[row][col]
			if factor == 0 {
				continue
			}
			for j := col; j <= k; j++ {
				a[row][j] = gf257.Sub(a[row][j], gf257.Mul(factor, a[col][j]))
			}
		}
	}

	coeffs := make([]uint16, k)
	for i := 0; i < k; i++ {
		coeffs[i] = a[i][k]
	}
	return coeffs, nil
}

// runBlocks runs work(b) for every b in [0, n), either sequentially or
// spread across GOMAXPROCS workers. Each call touches disjoint output
// positions, so no synchronization beyond waiting for completion and
// surfacing the first error is required.
func runBlocks(n int, opts Options, work func(int) error) error {
	if n == 0 {
		return nil
	}
	workers := runtime.GOMAXPROCS(0)
	if opts.Sequential || workers < 2 || n < 2 {
		for b := 0; b < n; b++ {
			if err := work(b); err != nil {
				return err
			}
		}
		return nil
	}
	if workers > n {
		workers = n
	}

	blocks := make(chan int)
	errOnce := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for b := range blocks {
				if err := work(b); err != nil {
					select {
					case errOnce <- err:
					default:
					}
				}
			}
		}()
	}
	for b := 0; b < n; b++ {
		blocks <- b
	}
	close(blocks)
	wg.Wait()

	select {
	case err := <-errOnce:
		return err
	default:
		return nil
	}
}
