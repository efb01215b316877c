//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shamirguard/ceremony-engine/ceremony"
	"github.com/shamirguard/ceremony-engine/cmd/ceremonyctl/internal/shell"
	logger "github.com/shamirguard/ceremony-engine/log"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
)

func newReconstructCommand() *cobra.Command {
	var file string

	command := &cobra.Command{
		Use:   "reconstruct",
		Short: "Reconstruct a secret from keeper shares",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := resolveConfig()
			term := shell.New(ctx)

			engine, err := ceremony.New(cfg, term)
			if err != nil {
				return err
			}

			result, err := engine.ReconstructSecret(file)
			if err != nil {
				logger.WarnErr("reconstruct", err)
			}

			if _, finalizeErr := engine.FinalizeSession(); finalizeErr != nil {
				logger.WarnErr("reconstruct", finalizeErr)
			}

			if err != nil {
				return err
			}
			fmt.Printf("reconstructed secret (base64): %s\n",
				base64.StdEncoding.EncodeToString(result.ReconstructedSecret))
			sealedbuf.ClearBytes(result.ReconstructedSecret)
			return nil
		},
	}

	command.Flags().StringVar(&file, "file", "", "path to a secret_shares_*.json file (prompted if omitted)")
	return command
}
