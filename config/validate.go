//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package config

import "github.com/shamirguard/ceremony-engine/ceremonyerrors"

// ValidateCeremonyConfig runs the FluentValidation-style rule set against
// cfg and returns every violation found, rather than failing fast on the
// first one, so a caller can report them all at once.
func ValidateCeremonyConfig(cfg CeremonyConfig) []*ceremonyerrors.CeremonyError {
	var errs []*ceremonyerrors.CeremonyError

	if cfg.Security.MinPasswordLength < 8 {
		errs = append(errs, ceremonyerrors.ErrValidation.Clone().
			WithMsg("security.min_password_length must be at least 8"))
	}
	if cfg.Security.KDFIterations < 10000 {
		errs = append(errs, ceremonyerrors.ErrValidation.Clone().
			WithMsg("security.kdf_iterations must be at least 10000"))
	}
	if cfg.Security.SecureDeletePasses < 1 || cfg.Security.SecureDeletePasses > 10 {
		errs = append(errs, ceremonyerrors.ErrValidation.Clone().
			WithMsg("security.secure_delete_passes must be between 1 and 10"))
	}
	if cfg.Security.AuditLogRetentionDays < 1 || cfg.Security.AuditLogRetentionDays > 3650 {
		errs = append(errs, ceremonyerrors.ErrValidation.Clone().
			WithMsg("security.audit_log_retention_days must be between 1 and 3650"))
	}
	if cfg.FileSystem.OutputFolder == "" {
		errs = append(errs, ceremonyerrors.ErrValidation.Clone().
			WithMsg("filesystem.output_folder must not be empty"))
	}
	if len(cfg.Organization.Name) > 100 {
		errs = append(errs, ceremonyerrors.ErrValidation.Clone().
			WithMsg("organization.name must be at most 100 characters"))
	}

	seenOrder := make(map[int]bool, len(cfg.DefaultKeepers))
	for _, k := range cfg.DefaultKeepers {
		if seenOrder[k.PreferredOrder] {
			errs = append(errs, ceremonyerrors.ErrValidation.Clone().
				WithMsg("default_keepers have duplicate preferred_order values"))
			break
		}
		seenOrder[k.PreferredOrder] = true
	}

	return errs
}
