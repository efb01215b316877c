//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Command ceremonyctl is a reference terminal shell for the ceremony
// engine: it drives create-shares and reconstruct-secret interactively
// over stdin/stdout.
package main

import (
	"fmt"
	"os"

	"github.com/shamirguard/ceremony-engine/cmd/ceremonyctl/internal/cmd"
	logger "github.com/shamirguard/ceremony-engine/log"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
)

func main() {
	if err := sealedbuf.LockMemory(); err != nil {
		logger.WarnErr("main", err)
	}

	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
