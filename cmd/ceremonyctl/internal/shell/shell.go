//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package shell implements a terminal-driven ceremony.Sink: it prints
// progress and validation events, and answers input-request events by
// reading from stdin, masking SecretText entry with term.ReadPassword.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/shamirguard/ceremony-engine/ceremony"
)

// Terminal drives one ceremony operation interactively. It is not safe
// for concurrent use; the ceremony engine it serves is itself
// single-threaded cooperative per operation.
type Terminal struct {
	ctx    context.Context
	reader *bufio.Reader
}

// New returns a Terminal that answers input requests. Once ctx is
// cancelled, every request that arrives is failed with ctx.Err(),
// propagating as a UserCancellation through the engine; a request
// already waiting for terminal input is not interrupted.
func New(ctx context.Context) *Terminal {
	return &Terminal{ctx: ctx, reader: bufio.NewReader(os.Stdin)}
}

// Emit implements ceremony.Sink.
func (t *Terminal) Emit(evt ceremony.Event) {
	switch evt.Type {
	case ceremony.EventProgress:
		if evt.Percent != nil {
			fmt.Printf("[%3d%%] %s\n", *evt.Percent, evt.Message)
		} else {
			fmt.Printf("       %s\n", evt.Message)
		}
	case ceremony.EventValidationResult:
		if !evt.IsValid {
			fmt.Printf("  ! %s: %s\n", evt.Target, evt.Message)
		}
	case ceremony.EventInputRequested:
		t.answer(evt.Request)
	case ceremony.EventOperationCompleted:
		if evt.Success {
			fmt.Printf("\n%s: %s\n", evt.OperationType, evt.Message)
		} else {
			fmt.Printf("\n%s failed: %s\n", evt.OperationType, evt.Message)
		}
	}
}

func (t *Terminal) answer(req *ceremony.InputRequest) {
	select {
	case <-t.ctx.Done():
		req.Reply <- ceremony.InputResponse{Err: t.ctx.Err()}
		return
	default:
	}

	switch req.Kind {
	case ceremony.KindSecretText:
		fmt.Print(req.Prompt + ": ")
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			req.Reply <- ceremony.InputResponse{Err: err}
			return
		}
		req.Reply <- ceremony.InputResponse{Secret: string(secret)}

	case ceremony.KindYesNo:
		fmt.Print(req.Prompt + " [y/N]: ")
		line := strings.TrimSpace(t.readLine())
		req.Reply <- ceremony.InputResponse{
			Bool: strings.EqualFold(line, "y") || strings.EqualFold(line, "yes"),
		}

	case ceremony.KindInteger:
		fmt.Print(req.Prompt + ": ")
		line := strings.TrimSpace(t.readLine())
		n, err := strconv.Atoi(line)
		if err != nil {
			// Not a number: hand back a value guaranteed to fail the
			// engine's own range check, which re-prompts.
			n = req.Constraints.MinValue - 1
		}
		req.Reply <- ceremony.InputResponse{Integer: n}

	case ceremony.KindFilePath, ceremony.KindText:
		fmt.Print(req.Prompt + ": ")
		req.Reply <- ceremony.InputResponse{Text: strings.TrimSpace(t.readLine())}
	}
}

func (t *Terminal) readLine() string {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}
