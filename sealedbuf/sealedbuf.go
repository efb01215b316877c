//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package sealedbuf provides an owned, non-copyable container for
// sensitive byte data — keeper passwords, derived keys, plaintext
// secrets — that guarantees a multi-pass overwrite on release.
//
// A Sealed value must not be copied after construction; pass pointers.
// Borrow exposes the underlying bytes for the minimum span required;
// Release wipes them and makes further use a programming error.
package sealedbuf

import (
	"crypto/rand"
	"runtime"
	"sync"
)

// Sealed owns a byte buffer containing sensitive material.
type Sealed struct {
	mu       sync.Mutex
	data     []byte
	passes   int
	released bool
}

// New takes ownership of b and returns a Sealed wrapping it. The caller
// must not retain or mutate b after this call; b's backing array is
// wiped on Release. passes controls how many overwrite rounds Release
// performs (the spec's secure_delete_passes); values below 1 are
// clamped to 1.
func New(b []byte, passes int) *Sealed {
	if passes < 1 {
		passes = 1
	}
	return &Sealed{data: b, passes: passes}
}

// FromString copies s into a new owned buffer and returns a Sealed
// wrapping it. Useful for wrapping a password read from a terminal.
func FromString(s string, passes int) *Sealed {
	b := make([]byte, len(s))
	copy(b, s)
	return New(b, passes)
}

// Len returns the number of bytes held, or 0 if the buffer has been
// released.
func (s *Sealed) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return 0
	}
	return len(s.data)
}

// Borrow invokes fn with a read-only-by-convention view of the sealed
// bytes, scoped to the call. The slice passed to fn must not be retained
// beyond the call; doing so defeats the guarantees this package provides.
func (s *Sealed) Borrow(fn func(b []byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		fn(nil)
		return
	}
	fn(s.data)
}

// Release overwrites the buffer with s.passes rounds alternating random
// data and zero, then marks the Sealed as spent. Release is idempotent
// and safe to call multiple times, including via defer alongside an
// earlier explicit call.
func (s *Sealed) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || len(s.data) == 0 {
		s.released = true
		return
	}

	for pass := 0; pass < s.passes; pass++ {
		if pass%2 == 0 {
			_, _ = rand.Read(s.data)
		} else {
			for i := range s.data {
				s.data[i] = 0
			}
		}
	}
	for i := range s.data {
		s.data[i] = 0
	}
	runtime.KeepAlive(s.data)
	s.released = true
}

// ClearBytes overwrites b with zeros in place. A convenience wrapper for
// one-off buffers (KDF output, intermediate plaintext) that do not
// warrant a full Sealed wrapper.
func ClearBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
