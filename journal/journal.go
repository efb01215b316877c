//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package journal implements the ceremony session journal: an
// append-only in-memory record of everything that happened during one
// create-shares or reconstruct-secret operation, sealed with a SHA-256
// hash and an admin-derived HMAC-SHA256 when the session finalizes.
//
// A SessionJournal is built during the operation and is never mutated
// after Finalize returns; the sealed SessionOutput it produces is the
// durable, verifiable artifact.
package journal

import (
	"os"
	"time"

	"github.com/shamirguard/ceremony-engine/config"
)

// Event-type labels recorded in SessionJournal.Events and in the audit
// trail. These are descriptive strings, not an enumerated type, because
// the journal format must tolerate new event types without a schema
// migration.
const (
	EventSessionStart        = "SESSION_START"
	EventAdminBound          = "ADMIN_BOUND"
	EventOrgInfoSet          = "ORG_INFO_SET"
	EventParamsSet           = "PARAMS_SET"
	EventSecretAcquired      = "SECRET_ACQUIRED"
	EventSharesSplit         = "SHARES_SPLIT"
	EventKeeperAdded         = "KEEPER_ADDED"
	EventSelfTestPassed      = "SELFTEST_PASSED"
	EventSelfTestFailed      = "SELFTEST_FAILED"
	EventSharesEmitted       = "SHARES_EMITTED"
	EventCreateAbandoned     = "CREATE_ABANDONED"
	EventFileLoaded          = "FILE_LOADED"
	EventRecoveryDecryptOK   = "RECOVERY_DECRYPT_SUCCEEDED"
	EventRecoveryDecryptFail = "RECOVERY_DECRYPT_FAILED"
	EventRecoveryCombined    = "RECOVERY_COMBINED"
	EventRecoveryVerified    = "RECOVERY_VERIFIED"
	EventRecoveryFailed      = "RECOVERY_FAILED"
	EventSessionEnd          = "SESSION_END"
)

// Event is one journal entry: a timestamped, typed, human-readable
// record of a single state transition.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
}

// ShareCreationRecord documents one emitted shares file.
type ShareCreationRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	TotalShares    int       `json:"total_shares"`
	Threshold      int       `json:"threshold"`
	OutputFile     string    `json:"output_file"`
}

// ShareRecoveryRecord documents one reconstruction attempt, successful
// or not.
type ShareRecoveryRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Threshold int       `json:"threshold"`
}

// Summary aggregates a finalized session's outcome counts.
type Summary struct {
	TotalSharesCreated    int `json:"total_shares_created"`
	TotalShareSets        int `json:"total_share_sets"`
	TotalRecoveryAttempts int `json:"total_recovery_attempts"`
	SuccessfulRecoveries  int `json:"successful_recoveries"`
	FailedRecoveries      int `json:"failed_recoveries"`
	TotalEvents           int `json:"total_events"`
}

// SessionJournal is the append-only record of one ceremony run.
type SessionJournal struct {
	SessionID       string                `json:"session_id"`
	StartTime       time.Time             `json:"start_time"`
	EndTime         time.Time             `json:"end_time,omitempty"`
	Duration        time.Duration         `json:"duration,omitempty"`
	HostMachine     string                `json:"host_machine"`
	HostUser        string                `json:"host_user"`
	Organization    config.OrganizationConfig `json:"organization"`
	Events          []Event               `json:"events"`
	SharesCreated   []ShareCreationRecord `json:"shares_created"`
	SharesRecovered []ShareRecoveryRecord `json:"shares_recovered"`
	Summary         *Summary              `json:"summary,omitempty"`
}

// New creates a SessionJournal with a SESSION_START event already
// appended. Host identity is captured from the OS at construction time.
func New(sessionID string, org config.OrganizationConfig) *SessionJournal {
	hostname, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}

	j := &SessionJournal{
		SessionID:    sessionID,
		StartTime:    time.Now(),
		HostMachine:  hostname,
		HostUser:     user,
		Organization: org,
	}
	j.Append(EventSessionStart, "session started")
	return j
}

// Append adds a timestamped event to the journal.
func (j *SessionJournal) Append(eventType, description string) {
	j.Events = append(j.Events, Event{
		Timestamp:   time.Now(),
		EventType:   eventType,
		Description: description,
	})
}

// RecordShareCreation appends a ShareCreationRecord for one emitted
// shares file.
func (j *SessionJournal) RecordShareCreation(totalShares, threshold int, outputFile string) {
	j.SharesCreated = append(j.SharesCreated, ShareCreationRecord{
		Timestamp:   time.Now(),
		TotalShares: totalShares,
		Threshold:   threshold,
		OutputFile:  outputFile,
	})
}

// RecordShareRecovery appends a ShareRecoveryRecord for one
// reconstruction attempt.
func (j *SessionJournal) RecordShareRecovery(success bool, threshold int) {
	j.SharesRecovered = append(j.SharesRecovered, ShareRecoveryRecord{
		Timestamp: time.Now(),
		Success:   success,
		Threshold: threshold,
	})
}

// buildSummary computes the terminal Summary from the journal's current
// contents. Called once, by Finalize.
func (j *SessionJournal) buildSummary() *Summary {
	s := &Summary{
		TotalShareSets: len(j.SharesCreated),
		TotalEvents:    len(j.Events),
	}
	for _, c := range j.SharesCreated {
		s.TotalSharesCreated += c.TotalShares
	}
	for _, r := range j.SharesRecovered {
		s.TotalRecoveryAttempts++
		if r.Success {
			s.SuccessfulRecoveries++
		} else {
			s.FailedRecoveries++
		}
	}
	return s
}
