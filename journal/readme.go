//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package journal

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteSessionReadme writes a short human-readable summary of a session
// folder's contents to <dir>/README.txt. Like the audit writers, a
// failure here is logged and swallowed rather than failing the
// ceremony.
func WriteSessionReadme(dir string, output SessionOutput, onWriteFailure func(err error)) {
	body := fmt.Sprintf(
		"Ceremony session %s\n"+
			"Started:  %s\n"+
			"Ended:    %s\n"+
			"Duration: %s\n\n"+
			"This folder contains:\n"+
			"  secret_shares_*.json   - the emitted keeper shares (create-shares only)\n"+
			"  session_complete_*.json - the sealed session journal (session_data_hash,\n"+
			"                           admin_session_hmac)\n"+
			"  audit_*.log             - line-delimited audit trail\n"+
			"  audit_detail_*.json     - structured audit trail\n\n"+
			"To verify this session was witnessed by its administrator, recompute\n"+
			"SHA-256 and HMAC-SHA256 over session_data using the same admin password\n"+
			"and compare against session_data_hash and admin_session_hmac.\n",
		output.SessionData.SessionID,
		output.SessionData.StartTime,
		output.SessionData.EndTime,
		output.SessionData.Duration,
	)

	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte(body), 0600); err != nil {
		if onWriteFailure != nil {
			onWriteFailure(err)
		}
	}
}
