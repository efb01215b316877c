//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

// Package validation implements the field validators consumed when
// prompting ceremony participants and when loading configuration: email,
// phone, name, and password-complexity rules.
package validation

import (
	"regexp"
	"strings"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
)

const emailPattern = `^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`
const maxEmailLength = 254

const phonePattern = `^[\d\s\+\-\(\)]+$`
const minConsecutivePhoneDigits = 3
const maxPhoneLength = 20

const namePattern = `^[A-Za-z\s\-']+$`
const maxNameLength = 100

const specialCharacters = `!@#$%^&*()_+=[{]};:<>|./?,-`

var (
	emailRegexp           = regexp.MustCompile(emailPattern)
	phoneRegexp           = regexp.MustCompile(phonePattern)
	phoneDigitRunRegexp   = regexp.MustCompile(`\d{3,}`)
	nameRegexp            = regexp.MustCompile(namePattern)
)

// ValidateEmail checks that email matches the specified address pattern and
// does not exceed the maximum length.
func ValidateEmail(email string) *ceremonyerrors.CeremonyError {
	if len(email) == 0 || len(email) > maxEmailLength {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("email must be non-empty and at most 254 characters")
	}
	if !emailRegexp.MatchString(email) {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("email is not a valid address")
	}
	return nil
}

// ValidatePhone checks that phone consists only of digits, whitespace, and
// the symbols +-(), contains at least three consecutive digits somewhere,
// and does not exceed the maximum length.
func ValidatePhone(phone string) *ceremonyerrors.CeremonyError {
	if len(phone) == 0 || len(phone) > maxPhoneLength {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("phone must be non-empty and at most 20 characters")
	}
	if !phoneRegexp.MatchString(phone) {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("phone contains characters other than digits, whitespace, +, -, ( or )")
	}
	if !phoneDigitRunRegexp.MatchString(phone) {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("phone must contain at least 3 consecutive digits")
	}
	return nil
}

// ValidateName checks that name is non-empty, at most 100 characters, and
// contains only letters, whitespace, hyphens, and apostrophes.
func ValidateName(name string) *ceremonyerrors.CeremonyError {
	if len(name) == 0 || len(name) > maxNameLength {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("name must be non-empty and at most 100 characters")
	}
	if !nameRegexp.MatchString(name) {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("name contains characters other than letters, whitespace, hyphen, or apostrophe")
	}
	return nil
}

// PasswordPolicy describes the password-complexity rules enforced when
// a configuration enables them. It mirrors the Security section of
// CeremonyConfig.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool
}

// ValidatePassword checks password against policy. A zero-value policy
// accepts every password, including the empty one.
func ValidatePassword(password string, policy PasswordPolicy) *ceremonyerrors.CeremonyError {
	if len(password) < policy.MinLength {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("password is shorter than the configured minimum length")
	}
	if policy.RequireUppercase && !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("password must contain an uppercase letter")
	}
	if policy.RequireLowercase && !strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz") {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("password must contain a lowercase letter")
	}
	if policy.RequireDigit && !strings.ContainsAny(password, "0123456789") {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("password must contain a digit")
	}
	if policy.RequireSpecial && !strings.ContainsAny(password, specialCharacters) {
		return ceremonyerrors.ErrValidation.Clone().
			WithMsg("password must contain a special character")
	}
	return nil
}
