//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/config"
	"github.com/shamirguard/ceremony-engine/journal"
	logger "github.com/shamirguard/ceremony-engine/log"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
)

// adminSessionSalt is the fixed ASCII constant used to derive the admin
// session key. It is a provenance key, not a confidentiality key: a
// per-session salt would prevent third-party verification of a sealed
// session from the admin password alone, since the salt itself would
// then need to be trusted from the (already-tampered-with, in the
// threat model this guards against) session file.
const adminSessionSalt = "ShamirCeremonyAdminSession"

const adminSessionKeySize = 32

// Engine drives one ceremony. A single Engine instance must not run
// create_shares and reconstruct_secret concurrently; use independent
// instances for concurrent ceremonies.
type Engine struct {
	cfg           config.CeremonyConfig
	sink          Sink
	sessionID     string
	sessionFolder string

	mu         sync.Mutex
	journal    *journal.SessionJournal
	auditTrail *journal.AuditTrail
	adminKey   *sealedbuf.Sealed
	finalized  bool
}

// setAdminKey records the session's admin key, derived at ADMIN_BIND, for
// use by FinalizeSession.
func (e *Engine) setAdminKey(key *sealedbuf.Sealed) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.adminKey = key
}

// New constructs an Engine bound to cfg, creates its exclusive session
// folder, and opens its audit trail. Events are delivered to sink.
func New(cfg config.CeremonyConfig, sink Sink) (*Engine, error) {
	sessionID := uuid.NewString()
	sessionFolder := config.SessionFolder(cfg.FileSystem.OutputFolder, sessionID)

	if err := os.MkdirAll(sessionFolder, 0700); err != nil {
		return nil, ceremonyerrors.ErrIO.Clone().
			WithMsg("failed to create session folder").WithCause(err)
	}

	j := journal.New(sessionID, cfg.Organization)

	auditLogPath := filepath.Join(sessionFolder,
		fmt.Sprintf("audit_%s.log", timestampSuffix(time.Now())))
	trail, err := journal.NewAuditTrail(auditLogPath, func(writeErr error) {
		logger.WarnErr("AuditTrail", writeErr)
	})
	if err != nil {
		logger.WarnErr("Engine.New", err)
	}

	return &Engine{
		cfg:           cfg,
		sink:          sink,
		sessionID:     sessionID,
		sessionFolder: sessionFolder,
		journal:       j,
		auditTrail:    trail,
	}, nil
}

// SessionID returns the session's unique identifier.
func (e *Engine) SessionID() string { return e.sessionID }

// SessionFolder returns the session's exclusive write target.
func (e *Engine) SessionFolder() string { return e.sessionFolder }

func timestampSuffix(t time.Time) string {
	return t.Format("20060102_150405")
}

func (e *Engine) emit(evt Event) {
	if e.sink != nil {
		e.sink.Emit(evt)
	}
}

func (e *Engine) emitProgress(message string, percent *int, eventType string) {
	e.emit(Event{Type: EventProgress, Message: message, Percent: percent})
	e.journalAppend(eventType, message)
}

func (e *Engine) emitValidation(isValid bool, message, target string) {
	e.emit(Event{Type: EventValidationResult, IsValid: isValid, Message: message, Target: target})
}

func (e *Engine) emitCompleted(success bool, message, operationType string, result *Result) {
	e.emit(Event{
		Type:          EventOperationCompleted,
		Success:       success,
		Message:       message,
		OperationType: operationType,
		Result:        result,
	})
}

func (e *Engine) journalAppend(eventType, description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.journal.Append(eventType, description)
}

func (e *Engine) audit(eventType, message string) {
	if e.auditTrail == nil {
		return
	}
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	hostname, _ := os.Hostname()
	e.auditTrail.Append(journal.AuditEntry{
		Timestamp: time.Now(),
		SessionID: e.sessionID,
		EventType: eventType,
		User:      user,
		Machine:   hostname,
		Message:   message,
	})
}

// requestInput emits an InputRequested event and blocks until the
// completion handle is fulfilled or failed. This is the engine's only
// suspension point besides outbound event delivery.
func (e *Engine) requestInput(kind InputKind, prompt string, constraints InputConstraints) (InputResponse, error) {
	reply := make(chan InputResponse, 1)
	req := &InputRequest{
		RequestID:   uuid.NewString(),
		Kind:        kind,
		Prompt:      prompt,
		Constraints: constraints,
		Reply:       reply,
	}
	e.emit(Event{Type: EventInputRequested, Request: req})

	resp := <-reply
	if resp.Err != nil {
		return resp, ceremonyerrors.ErrUserCancellation.Clone().
			WithMsg("shell abandoned input request").WithCause(resp.Err)
	}
	return resp, nil
}

// deriveAdminSessionKey derives the 32-byte admin session key from
// password under the fixed provenance salt and the ceremony's
// configured KDF iteration count.
func deriveAdminSessionKey(password *sealedbuf.Sealed, iterations int) *sealedbuf.Sealed {
	var key []byte
	password.Borrow(func(pw []byte) {
		key = pbkdf2.Key(pw, []byte(adminSessionSalt), iterations, adminSessionKeySize, sha256.New)
	})
	return sealedbuf.New(key, 1)
}

// hashSecret returns base64(SHA-256(secret)), the master_secret_hash
// recorded in ShamirSecretOutput.
func hashSecret(secret []byte) string {
	sum := sha256.Sum256(secret)
	return encodeBase64(sum[:])
}
