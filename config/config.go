//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package config defines CeremonyConfig, the value-typed configuration
// consumed by the ceremony orchestrator, along with the pure validator
// functions that check it before a ceremony starts. There is no
// process-wide configuration singleton: a CeremonyConfig is constructed
// by an external loader and passed by value into the engine
// constructor, which keeps its own copy; later changes to the caller's
// value do not reach an engine already constructed.
package config

import "sort"

// SecurityConfig controls password policy, KDF cost, memory-wiping
// thoroughness, and audit retention.
type SecurityConfig struct {
	ConfirmationRequired    bool
	MinPasswordLength       int
	RequireUppercase        bool
	RequireLowercase        bool
	RequireDigit            bool
	RequireSpecialCharacter bool
	KDFIterations           int
	SecureDeletePasses      int
	AuditLogEnabled         bool
	AuditLogRetentionDays   int
}

// FileSystemConfig controls where session folders are created.
type FileSystemConfig struct {
	// OutputFolder is the base directory under which session folders
	// (session_<sessionId>/) are created. Must be a writable path.
	OutputFolder string
}

// OrganizationConfig supplies optional defaults offered during the
// ORG_INFO state of the create-shares ceremony.
type OrganizationConfig struct {
	Name         string
	ContactPhone string
}

// DefaultKeeper is one pre-registered keeper offered during
// COLLECT_KEEPERS before the operator is prompted for ad-hoc keepers.
type DefaultKeeper struct {
	Name           string
	Phone          string
	Email          string
	Department     string
	Title          string
	PreferredOrder int
}

// CeremonyConfig is the complete, value-typed configuration for one
// engine instance.
type CeremonyConfig struct {
	Security       SecurityConfig
	FileSystem     FileSystemConfig
	Organization   OrganizationConfig
	DefaultKeepers []DefaultKeeper
}

// Default returns a CeremonyConfig populated with the specification's
// documented defaults. outputFolder should come from the platform's
// default data directory (see ResolveOutputFolder); an empty string is
// accepted and left for the caller to fill in.
func Default(outputFolder string) CeremonyConfig {
	return CeremonyConfig{
		Security: SecurityConfig{
			ConfirmationRequired:    true,
			MinPasswordLength:       12,
			RequireUppercase:        true,
			RequireLowercase:        true,
			RequireDigit:            true,
			RequireSpecialCharacter: true,
			KDFIterations:           100000,
			SecureDeletePasses:      3,
			AuditLogEnabled:         true,
			AuditLogRetentionDays:   90,
		},
		FileSystem: FileSystemConfig{
			OutputFolder: outputFolder,
		},
	}
}

// SortedDefaultKeepers returns cfg.DefaultKeepers sorted ascending by
// PreferredOrder, as required before they are offered during
// COLLECT_KEEPERS. The input slice is not mutated.
func SortedDefaultKeepers(keepers []DefaultKeeper) []DefaultKeeper {
	sorted := make([]DefaultKeeper, len(keepers))
	copy(sorted, keepers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PreferredOrder < sorted[j].PreferredOrder
	})
	return sorted
}
