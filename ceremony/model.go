//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import "time"

// SecretKeeperRecord is the encrypted envelope around one Share,
// attributed to a named keeper.
type SecretKeeperRecord struct {
	ID             string    `json:"Id"`
	ShareNumber    int       `json:"ShareNumber"`
	Name           string    `json:"Name"`
	Phone          string    `json:"Phone"`
	Email          string    `json:"Email"`
	EncryptedShare string    `json:"EncryptedShare"`
	HMAC           string    `json:"HMAC"`
	Salt           string    `json:"Salt"`
	IV             string    `json:"IV"`
	CreatedAt      time.Time `json:"CreatedAt"`
	SessionID      string    `json:"SessionId"`
}

// CeremonyConfiguration is the configuration subset recorded alongside
// an emitted ShamirSecretOutput, so reconstruction can use the exact
// parameters the ceremony used rather than the current configuration.
type CeremonyConfiguration struct {
	TotalShares         int    `json:"TotalShares"`
	ThresholdRequired   int    `json:"ThresholdRequired"`
	Algorithm           string `json:"Algorithm"`
	EncryptionAlgorithm string `json:"EncryptionAlgorithm"`
	KDFAlgorithm        string `json:"KDFAlgorithm"`
	KDFIterations       int    `json:"KDFIterations"`
}

// OrganizationInfo is the optional organization attribution recorded
// with an output.
type OrganizationInfo struct {
	Name         string `json:"Name,omitempty"`
	ContactPhone string `json:"ContactPhone,omitempty"`
}

// ShamirSecretOutput is the emitted ceremony artifact: the file written
// to <output_folder>/<session_folder>/secret_shares_<timestamp>.json.
type ShamirSecretOutput struct {
	Version          string                `json:"Version"`
	SessionID        string                `json:"SessionId"`
	CreatedAt        time.Time             `json:"CreatedAt"`
	Organization     OrganizationInfo      `json:"Organization"`
	Configuration    CeremonyConfiguration `json:"Configuration"`
	MasterSecretHash string                `json:"MasterSecretHash"`
	Keepers          []SecretKeeperRecord  `json:"Keepers"`
}

// OutputVersion is the schema version stamped on every emitted
// ShamirSecretOutput.
const OutputVersion = "1.0"

// AlgorithmShamirGF256 names the secret-sharing algorithm recorded in
// CeremonyConfiguration.
const AlgorithmShamirGF256 = "Shamir-GF256"

// AlgorithmAESGCM names the encryption algorithm recorded in
// CeremonyConfiguration.
const AlgorithmAESGCM = "AES-256-GCM"

// AlgorithmPBKDF2SHA256 names the KDF recorded in CeremonyConfiguration.
const AlgorithmPBKDF2SHA256 = "PBKDF2-SHA256"
