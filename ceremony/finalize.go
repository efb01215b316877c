//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/journal"
	logger "github.com/shamirguard/ceremony-engine/log"
)

// FinalizeSession seals the session journal with the admin key derived
// during ADMIN_BIND, writes the session file and the audit detail file,
// and emits a README. It must be called at most once per Engine, after
// the operation (create_shares or reconstruct_secret) has returned.
// Journal/audit/README write failures are logged and swallowed. It
// returns an error when called a second time, when no administrator was
// ever bound (no operation got past ADMIN_BIND), or when the journal
// cannot be serialized for sealing.
func (e *Engine) FinalizeSession() (journal.SessionOutput, error) {
	e.mu.Lock()
	if e.finalized {
		e.mu.Unlock()
		return journal.SessionOutput{}, ceremonyerrors.ErrInvalidOperation.Clone().
			WithMsg("session already finalized")
	}
	adminKey := e.adminKey
	e.finalized = true
	e.mu.Unlock()

	if adminKey == nil {
		return journal.SessionOutput{}, ceremonyerrors.ErrInvalidOperation.Clone().
			WithMsg("cannot finalize a session that never bound an administrator")
	}

	output, err := journal.Finalize(e.journal, adminKey)
	if err != nil {
		return journal.SessionOutput{}, err
	}

	sessionFile := filepath.Join(e.sessionFolder,
		fmt.Sprintf("session_complete_%s.json", timestampSuffix(time.Now())))
	body, marshalErr := journal.IndentedJSON(output)
	if marshalErr != nil {
		logger.WarnErr("FinalizeSession", marshalErr)
	} else if writeErr := os.WriteFile(sessionFile, body, 0600); writeErr != nil {
		logger.WarnErr("FinalizeSession", writeErr)
	}

	if e.auditTrail != nil {
		detailPath := filepath.Join(e.sessionFolder,
			fmt.Sprintf("audit_detail_%s.json", timestampSuffix(time.Now())))
		e.auditTrail.WriteDetailJSON(detailPath)
		if closeErr := e.auditTrail.Close(); closeErr != nil {
			logger.WarnErr("FinalizeSession", closeErr)
		}
	}

	journal.WriteSessionReadme(e.sessionFolder, output, func(err error) {
		logger.WarnErr("FinalizeSession", err)
	})

	return output, nil
}
