//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

//go:build windows

package sealedbuf

import "errors"

// LockMemory is unsupported on Windows; mlockall has no portable
// equivalent exposed by the standard library.
func LockMemory() error {
	return errors.New("memory locking is not supported on windows")
}
