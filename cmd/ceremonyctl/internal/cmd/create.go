//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shamirguard/ceremony-engine/ceremony"
	"github.com/shamirguard/ceremony-engine/cmd/ceremonyctl/internal/shell"
	logger "github.com/shamirguard/ceremony-engine/log"
)

func newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Split a secret into encrypted shares and assign them to keepers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := resolveConfig()
			term := shell.New(ctx)

			engine, err := ceremony.New(cfg, term)
			if err != nil {
				return err
			}

			result, err := engine.CreateShares()
			if err != nil {
				logger.WarnErr("create", err)
			}

			if _, finalizeErr := engine.FinalizeSession(); finalizeErr != nil {
				logger.WarnErr("create", finalizeErr)
			}

			if err != nil {
				return err
			}
			fmt.Printf("shares written to %s\n", result.OutputFile)
			return nil
		},
	}
}
