//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default("/tmp/out")
	assert.Empty(t, ValidateCeremonyConfig(cfg))
}

func TestValidateCeremonyConfigCatchesEachViolation(t *testing.T) {
	cfg := Default("/tmp/out")
	cfg.Security.MinPasswordLength = 4
	cfg.Security.KDFIterations = 100
	cfg.Security.SecureDeletePasses = 0
	cfg.Security.AuditLogRetentionDays = 0
	cfg.FileSystem.OutputFolder = ""

	errs := ValidateCeremonyConfig(cfg)
	assert.Len(t, errs, 5)
}

func TestSortedDefaultKeepersOrdersByPreferredOrder(t *testing.T) {
	keepers := []DefaultKeeper{
		{Name: "Charlie", PreferredOrder: 3},
		{Name: "Alice", PreferredOrder: 1},
		{Name: "Bob", PreferredOrder: 2},
	}
	sorted := SortedDefaultKeepers(keepers)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"},
		[]string{sorted[0].Name, sorted[1].Name, sorted[2].Name})
}
