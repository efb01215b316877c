//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	logger "github.com/shamirguard/ceremony-engine/log"
	"github.com/shamirguard/ceremony-engine/retry"
)

// AuditEntry is one line of the ceremony's audit trail: who did what,
// when, attributed to a session.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	EventType string    `json:"event_type"`
	User      string    `json:"user"`
	Machine   string    `json:"machine"`
	Message   string    `json:"message"`
}

// FormatLine renders e as the line-delimited audit log format:
// "<iso-ts> | <session_id> | <event_type> | <user>@<machine> | <message>".
func (e AuditEntry) FormatLine() string {
	return fmt.Sprintf("%s | %s | %s | %s@%s | %s",
		e.Timestamp.Format(time.RFC3339), e.SessionID, e.EventType,
		e.User, e.Machine, e.Message)
}

// AuditTrail accumulates AuditEntry values during a ceremony and streams
// them incrementally to a line-delimited log file, in addition to
// keeping them in memory for the structured detail file written at
// finalize. Writes are retried with backoff and then logged and
// swallowed on persistent failure — audit I/O problems must never fail
// the ceremony itself.
type AuditTrail struct {
	mu      sync.Mutex
	entries []AuditEntry
	logPath string
	file    *os.File
	retrier retry.Retrier
	onWriteFailure func(err error)
}

// NewAuditTrail opens (creating if necessary) the line-delimited log
// file at logPath for appending. Writes retry with a backoff tuned for
// local disk I/O (short intervals, a few seconds total) rather than the
// network-call defaults, and each retried attempt is logged through this
// project's logger before the write is finally swallowed.
func NewAuditTrail(logPath string, onWriteFailure func(err error)) (*AuditTrail, error) {
	return NewAuditTrailWithRetrier(logPath, newAuditRetrier(), onWriteFailure)
}

// NewAuditTrailWithRetrier is NewAuditTrail with an injectable
// retry.Retrier, letting tests exercise the retry-then-swallow write
// path (via retry/mock) without waiting out real backoff delays.
func NewAuditTrailWithRetrier(logPath string, r retry.Retrier, onWriteFailure func(err error)) (*AuditTrail, error) {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	return &AuditTrail{
		logPath:        logPath,
		file:           f,
		retrier:        r,
		onWriteFailure: onWriteFailure,
	}, nil
}

// newAuditRetrier builds the default retry strategy for the audit log
// and audit detail writes: short intervals appropriate for a local filesystem, and
// a notification logged on every retried attempt.
func newAuditRetrier() retry.Retrier {
	return retry.NewExponentialRetrier(
		retry.WithBackOffOptions(
			retry.WithInitialInterval(50*time.Millisecond),
			retry.WithMaxInterval(500*time.Millisecond),
			retry.WithMaxElapsedTime(2*time.Second),
		),
		retry.WithNotify(func(err error, _, _ time.Duration) {
			logger.WarnErr("AuditTrail", err)
		}),
	)
}

// Append records entry in memory and attempts to write its line-delimited
// form immediately. A failure to write is retried with backoff, then
// reported via onWriteFailure and otherwise ignored.
func (t *AuditTrail) Append(entry AuditEntry) {
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	file := t.file
	t.mu.Unlock()

	if file == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := t.retrier.RetryWithBackoff(ctx, func() error {
		_, writeErr := file.WriteString(entry.FormatLine() + "\n")
		return writeErr
	})
	if err != nil && t.onWriteFailure != nil {
		t.onWriteFailure(err)
	}
}

// Entries returns a copy of all entries recorded so far, in the order
// they were appended.
func (t *AuditTrail) Entries() []AuditEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]AuditEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// WriteDetailJSON writes the full, ordered entry sequence to path as a
// single JSON array. Like Append, failures are retried then swallowed.
func (t *AuditTrail) WriteDetailJSON(path string) {
	body, err := IndentedJSON(t.Entries())
	if err != nil {
		if t.onWriteFailure != nil {
			t.onWriteFailure(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	writeErr := t.retrier.RetryWithBackoff(ctx, func() error {
		return os.WriteFile(path, body, 0600)
	})
	if writeErr != nil && t.onWriteFailure != nil {
		t.onWriteFailure(writeErr)
	}
}

// Close flushes and closes the underlying log file. Safe to call on a
// nil *AuditTrail.
func (t *AuditTrail) Close() error {
	if t == nil || t.file == nil {
		return nil
	}
	return t.file.Close()
}
