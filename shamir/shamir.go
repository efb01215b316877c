//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package shamir implements Shamir's Secret Sharing over GF(256). A secret
// byte string is split into n shares such that any k of them reconstruct
// it, and fewer than k reveal nothing about it.
package shamir

import (
	"crypto/rand"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/internal/gf256"
)

// Share is a single point (X, Y) on the secret's polynomial. X identifies
// the share and must be non-zero; Y holds one evaluated byte per secret
// byte position.
type Share struct {
	X byte
	Y []byte
}

// Split divides secret into n shares such that any k of them reconstruct
// it. 2 <= k <= n <= 255 and len(secret) >= 1.
func Split(secret []byte, k, n int) ([]Share, error) {
	if len(secret) == 0 {
		return nil, ceremonyerrors.ErrInvalidOperation.Clone().
			WithMsg("secret must not be empty")
	}
	if k < 2 || n < k || n > 255 {
		return nil, ceremonyerrors.ErrInvalidOperation.Clone().
			WithMsg("threshold and share count out of range: need 2 <= k <= n <= 255")
	}

	shares := make([]Share, n)
	for i := 0; i < n; i++ {
		shares[i] = Share{X: byte(i + 1), Y: make([]byte, len(secret))}
	}

	coeffs := make([]byte, k)
	for p := 0; p < len(secret); p++ {
		coeffs[0] = secret[p]
		if _, err := rand.Read(coeffs[1:]); err != nil {
			return nil, ceremonyerrors.ErrCryptoInternal.Clone().
				WithMsg("failed to draw random polynomial coefficients").
				WithCause(err)
		}

		for i := 0; i < n; i++ {
			x := byte(i + 1)
			shares[i].Y[p] = evalPolynomial(coeffs, x)
		}
	}

	return shares, nil
}

// evalPolynomial evaluates coeffs[0] + coeffs[1]*x + ... + coeffs[k-1]*x^(k-1)
// over GF(256) using Horner's method.
func evalPolynomial(coeffs []byte, x byte) byte {
	result := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = gf256.Add(gf256.Mul(result, x), coeffs[i])
	}
	return result
}

// Combine reconstructs the secret from shares using the first k of them via
// Lagrange interpolation at x=0. It requires at least k shares, all with
// distinct non-zero X values and Y slices of equal length.
func Combine(shares []Share, k int) ([]byte, error) {
	if k < 2 {
		return nil, ceremonyerrors.ErrInvalidOperation.Clone().
			WithMsg("threshold must be at least 2")
	}
	if len(shares) < k {
		return nil, ceremonyerrors.ErrInsufficientShares.Clone().
			WithMsg("not enough shares to reconstruct the secret")
	}

	chosen := shares[:k]

	seenX := make(map[byte]bool, k)
	for _, s := range chosen {
		if s.X == 0 {
			return nil, ceremonyerrors.ErrDuplicateShares.Clone().
				WithMsg("share X value must be non-zero")
		}
		if seenX[s.X] {
			return nil, ceremonyerrors.ErrDuplicateShares.Clone().
				WithMsg("duplicate share index among shares")
		}
		seenX[s.X] = true
	}

	shareLen := len(chosen[0].Y)
	for _, s := range chosen {
		if len(s.Y) != shareLen {
			return nil, ceremonyerrors.ErrInconsistentShareLengths.Clone().
				WithMsg("shares do not all have the same byte length")
		}
	}

	secret := make([]byte, shareLen)
	for p := 0; p < shareLen; p++ {
		var acc byte
		for i := 0; i < k; i++ {
			li, err := lagrangeBasisAtZero(chosen, i)
			if err != nil {
				return nil, err
			}
			acc = gf256.Add(acc, gf256.Mul(chosen[i].Y[p], li))
		}
		secret[p] = acc
	}

	return secret, nil
}

// lagrangeBasisAtZero computes L_i = Π_{j≠i} (x_j / (x_i ⊕ x_j)) over
// GF(256), the Lagrange basis polynomial for point i evaluated at x=0.
func lagrangeBasisAtZero(shares []Share, i int) (byte, error) {
	xi := shares[i].X
	result := byte(1)
	for j, s := range shares {
		if j == i {
			continue
		}
		xj := s.X
		denom := gf256.Add(xi, xj)
		term, ok := gf256.Div(xj, denom)
		if !ok {
			return 0, ceremonyerrors.ErrDivisionByZero.Clone().
				WithMsg("duplicate share index produced a zero denominator")
		}
		result = gf256.Mul(result, term)
	}
	return result, nil
}
