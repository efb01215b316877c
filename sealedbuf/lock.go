//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

//go:build !windows

package sealedbuf

import (
	"fmt"
	"syscall"
)

// LockMemory locks all current and future process memory pages,
// preventing sealed key material from being written to swap. It is
// best-effort: a shell should call it once at startup and log, not
// fail, on error, since it typically requires CAP_IPC_LOCK or a
// sufficient RLIMIT_MEMLOCK.
func LockMemory() error {
	if err := syscall.Mlockall(syscall.MCL_CURRENT | syscall.MCL_FUTURE); err != nil {
		return fmt.Errorf("failed to lock process memory: %w", err)
	}
	return nil
}
