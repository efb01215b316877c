//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package cmd implements the ceremonyctl command tree: create and
// reconstruct, each wiring a terminal shell.Terminal to a ceremony.Engine.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shamirguard/ceremony-engine/config"
)

var outputDir string

// NewRootCommand builds the ceremonyctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ceremonyctl",
		Short: "Run Shamir secret-sharing ceremonies",
	}

	root.PersistentFlags().StringVar(&outputDir, "output-dir", "",
		"base directory for session folders (default: "+config.OutputFolderEnvVar+" or platform default)")

	root.AddCommand(newCreateCommand())
	root.AddCommand(newReconstructCommand())

	return root
}

func resolveConfig() config.CeremonyConfig {
	dir := outputDir
	if dir == "" {
		dir = config.ResolveOutputFolder()
	} else {
		_ = os.MkdirAll(dir, 0700)
	}
	return config.Default(dir)
}
