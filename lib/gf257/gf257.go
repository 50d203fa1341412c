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

// Package gf257 implements arithmetic in GF(257), the prime field of
// integers modulo 257.
//
// 257 is prime and just one more than 256, the number of values an 8-bit
// pixel can take. That lets every pixel value map to a distinct field
// element, at the cost of one extra representable value (256) that a pixel
// byte cannot hold. Callers that evaluate a polynomial over pixel data must
// handle the case where an evaluation lands on exactly 256; see the
// "sharing" package for that remediation.
package gf257

import "errors"

// Modulus is the field's prime.
const Modulus = 257

// ErrNotInvertible is returned by Inv for an element with no multiplicative
// inverse. Since Modulus is prime, only zero lacks one.
var ErrNotInvertible = errors.New("gf257: element has no inverse")

// Add returns a+b mod 257.
func Add(a, b uint16) uint16 {
	return (a + b) % Modulus
}

// Sub returns a-b mod 257.
func Sub(a, b uint16) uint16 {
	return (a + Modulus - (b % Modulus)) % Modulus
}

// Mul returns a*b mod 257.
func Mul(a, b uint16) uint16 {
	return uint16((uint32(a) * uint32(b)) % Modulus)
}

// Inv returns the multiplicative inverse of a via the extended Euclidean
// algorithm. Inv(0) is undefined; callers must never request it (Gaussian
// elimination refuses singular rows instead of calling Inv(0), so this
// should only ever be reached with a in [1, 256]).
func Inv(a uint16) (uint16, error) {
	if a%Modulus == 0 {
		return 0, ErrNotInvertible
	}
	var r, newR int64 = Modulus, int64(a % Modulus)
	var t, newT int64 = 0, 1
	for newR != 0 {
		q := r / newR
		r, newR = newR, r-q*newR
		t, newT = newT, t-q*newT
	}
	if r > 1 {
		return 0, ErrNotInvertible
	}
	if t < 0 {
		t += Modulus
	}
	return uint16(t), nil
}

// Eval evaluates the polynomial with the given coefficients (coeffs[i] is
// the coefficient of x^i) at x, mod 257. The result may equal 256; Eval
// itself does not avoid that value, since what to do about it is a
// property of the caller's encoding, not of field arithmetic.
func Eval(coeffs []uint16, x uint16) uint16 {
	result := uint16(0)
	power := uint16(1)
	xm := x % Modulus
	for _, c := range coeffs {
		result = Add(result, Mul(c, power))
		power = Mul(power, xm)
	}
	return result
}
